package level

import (
	"fmt"

	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/material"
	"github.com/Faultbox/roguelike3d/internal/engine/mesh"
	"github.com/Faultbox/roguelike3d/internal/engine/rigged"
	"github.com/Faultbox/roguelike3d/internal/engine/texture"
	"github.com/Faultbox/roguelike3d/internal/game/entity"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// ClassDummy is the model class of the training dummies.
const ClassDummy = "dummy"

// Layout describes a single room dungeon.
type Layout struct {
	Width, Depth, Height float32
	Wall                 float32 // wall thickness
	Torches              int
	Monsters             int
}

// DefaultLayout is a 20×20 room with four torches and three dummies.
var DefaultLayout = Layout{Width: 20, Depth: 20, Height: 4, Wall: 0.5, Torches: 4, Monsters: 3}

// dummyTints tell the dummies apart.
var dummyTints = [][4]float32{
	{1, 1, 1, 1},
	{0.8, 0.9, 1, 1},
	{1, 0.9, 0.7, 1},
}

// DummyMaterial is the material every dummy starts from.
func DummyMaterial() *material.Material {
	straw := material.New("straw")
	straw.SetTexture(texture.Wood)
	return straw
}

// Dummy builds a monster body: a single upright box standing on its origin.
// The model takes ownership of skin.
func Dummy(skin *material.Material) (*rigged.Model, error) {
	m := rigged.New(ClassDummy, skin)
	body, err := rigged.NewNode(rigged.NodeSpec{
		ID: "Body",
		SubMeshes: []*rigged.SubMesh{rigged.NewSubMesh("Body", 1, mesh.Spec{
			Kind:   mesh.KindBox,
			Size:   math.Vec3{X: 0.8, Y: 1.6, Z: 0.8},
			Offset: math.Vec3{Y: 0.8},
		})},
		Materials: []int{0},
	})
	if err != nil {
		return nil, err
	}
	if _, err := m.AddRoot(body); err != nil {
		return nil, err
	}
	return m, nil
}

// Dungeon builds a walled room centred on the origin with torches on the
// walls, static lights beside them and training dummies along the far
// side. The player starts near the south wall facing north.
func Dungeon(layout Layout, player *entity.Actor) (*Level, error) {
	if layout.Width <= 0 || layout.Depth <= 0 || layout.Height <= 0 {
		return nil, fmt.Errorf("dungeon size %vx%vx%v: must be positive", layout.Width, layout.Depth, layout.Height)
	}
	l := New(math.Vec3{X: 0.1, Y: 0.1, Z: 0.12}, 350)

	hw, hd, h, t := layout.Width/2, layout.Depth/2, layout.Height, layout.Wall
	l.AddWall(mesh.Bounds{Min: math.Vec3{X: -hw, Y: -t, Z: -hd}, Max: math.Vec3{X: hw, Z: hd}})
	l.AddWall(mesh.Bounds{Min: math.Vec3{X: -hw, Y: h, Z: -hd}, Max: math.Vec3{X: hw, Y: h + t, Z: hd}})
	l.AddWall(mesh.Bounds{Min: math.Vec3{X: -hw - t, Z: -hd}, Max: math.Vec3{X: -hw, Y: h, Z: hd}})
	l.AddWall(mesh.Bounds{Min: math.Vec3{X: hw, Z: -hd}, Max: math.Vec3{X: hw + t, Y: h, Z: hd}})
	l.AddWall(mesh.Bounds{Min: math.Vec3{X: -hw, Z: -hd - t}, Max: math.Vec3{X: hw, Y: h, Z: -hd}})
	l.AddWall(mesh.Bounds{Min: math.Vec3{X: -hw, Z: hd}, Max: math.Vec3{X: hw, Y: h, Z: hd + t}})

	// Torches stand upright along the east and west walls. A torch model
	// is centred on its root, so the root sits halfway up.
	upright := math.RotateX(-math.Pi / 2)
	for i := 0; i < layout.Torches; i++ {
		x := -hw + 0.6
		if i%2 == 1 {
			x = hw - 0.6
		}
		z := -hd + layout.Depth*float32(i/2+1)/float32(layout.Torches/2+2)
		torch, err := rigged.Torch(l)
		if err != nil {
			return nil, err
		}
		pos := math.Vec3{X: x, Z: z}
		l.AddObject(&Object{
			Name:      fmt.Sprintf("torch%d", i),
			Position:  pos.Add(math.Vec3{Y: 1.5}),
			Radius:    0.3,
			Model:     torch,
			Transform: math.Translate(pos.X, 1.5, pos.Z).Mul(upright),
		})
		l.AddLight(lighting.Light{
			Position:    pos.Add(math.Vec3{Y: 2.5}),
			Colour:      math.Vec3{X: 0.9, Y: 0.6, Z: 0.3},
			Attenuation: 0.05,
		})
	}

	straw := DummyMaterial()
	for i := 0; i < layout.Monsters; i++ {
		skin := straw.Copy()
		skin.Attributes = append(skin.Attributes, &material.Colour{RGBA: dummyTints[i%len(dummyTints)]})
		body, err := Dummy(skin)
		if err != nil {
			return nil, err
		}
		m := entity.NewActor(fmt.Sprintf("dummy%d", i), entity.TypeMonster)
		m.Model = body
		m.Position = math.Vec3{X: -hw + layout.Width*float32(i+1)/float32(layout.Monsters+1), Z: -hd / 2}
		l.Actors.Add(m)
	}

	if player != nil {
		player.Position = math.Vec3{Z: hd - 2}
		player.Yaw = 0
		l.Actors.SetPlayer(player)
	}
	return l, nil
}
