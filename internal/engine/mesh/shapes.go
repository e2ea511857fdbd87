package mesh

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Shape kinds understood by Build.
const (
	KindBox   = "box"
	KindHilt  = "hilt"
	KindGuard = "guard"
	KindBlade = "blade"
	KindTip   = "tip"
)

// Spec describes procedural geometry. It is what model definition files
// store instead of vertex data.
type Spec struct {
	Kind   string    `yaml:"kind"`
	Size   math.Vec3 `yaml:"size,omitempty"`
	Offset math.Vec3 `yaml:"offset,omitempty"`
}

// Build generates geometry for s.
func Build(s Spec) (Geometry, error) {
	var g Geometry
	switch strings.ToLower(s.Kind) {
	case KindBox:
		if s.Size.X <= 0 || s.Size.Y <= 0 || s.Size.Z <= 0 {
			return Geometry{}, fmt.Errorf("box needs a positive size, got %+v", s.Size)
		}
		g = Box(s.Size)
	case KindHilt:
		g = Box(math.Vec3{X: 0.08, Y: 0.08, Z: 0.6})
	case KindGuard:
		g = Box(math.Vec3{X: 0.5, Y: 0.08, Z: 0.08})
	case KindBlade:
		g = Box(math.Vec3{X: 0.12, Y: 0.02, Z: 1})
	case KindTip:
		g = Wedge(0.12, 0.02, 0.4)
	default:
		return Geometry{}, fmt.Errorf("unknown shape kind %q", s.Kind)
	}
	if s.Offset != (math.Vec3{}) {
		g = g.Scaled(math.Vec3{X: 1, Y: 1, Z: 1}, s.Offset)
	}
	return g, nil
}

// Box returns a box centred on the origin.
func Box(size math.Vec3) Geometry {
	h := size.Scale(0.5)
	faces := []struct {
		normal  math.Vec3
		corners [4]math.Vec3
	}{
		{math.Vec3{Z: 1}, [4]math.Vec3{{X: -h.X, Y: -h.Y, Z: h.Z}, {X: h.X, Y: -h.Y, Z: h.Z}, {X: h.X, Y: h.Y, Z: h.Z}, {X: -h.X, Y: h.Y, Z: h.Z}}},
		{math.Vec3{Z: -1}, [4]math.Vec3{{X: h.X, Y: -h.Y, Z: -h.Z}, {X: -h.X, Y: -h.Y, Z: -h.Z}, {X: -h.X, Y: h.Y, Z: -h.Z}, {X: h.X, Y: h.Y, Z: -h.Z}}},
		{math.Vec3{X: 1}, [4]math.Vec3{{X: h.X, Y: -h.Y, Z: h.Z}, {X: h.X, Y: -h.Y, Z: -h.Z}, {X: h.X, Y: h.Y, Z: -h.Z}, {X: h.X, Y: h.Y, Z: h.Z}}},
		{math.Vec3{X: -1}, [4]math.Vec3{{X: -h.X, Y: -h.Y, Z: -h.Z}, {X: -h.X, Y: -h.Y, Z: h.Z}, {X: -h.X, Y: h.Y, Z: h.Z}, {X: -h.X, Y: h.Y, Z: -h.Z}}},
		{math.Vec3{Y: 1}, [4]math.Vec3{{X: -h.X, Y: h.Y, Z: h.Z}, {X: h.X, Y: h.Y, Z: h.Z}, {X: h.X, Y: h.Y, Z: -h.Z}, {X: -h.X, Y: h.Y, Z: -h.Z}}},
		{math.Vec3{Y: -1}, [4]math.Vec3{{X: -h.X, Y: -h.Y, Z: -h.Z}, {X: h.X, Y: -h.Y, Z: -h.Z}, {X: h.X, Y: -h.Y, Z: h.Z}, {X: -h.X, Y: -h.Y, Z: h.Z}}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	g := Geometry{
		Vertices: make([]gfx.Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range faces {
		base := uint32(len(g.Vertices))
		for i, c := range f.corners {
			g.Vertices = append(g.Vertices, gfx.Vertex{
				Position: c,
				Normal:   f.normal,
				TexCoord: uvs[i],
				Colour:   [4]float32{0, 0, 0, 1},
			})
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	g.ComputeBounds()
	return g
}

// Wedge returns a flat blade point with its base on z=0 and apex at -length.
func Wedge(width, thickness, length float32) Geometry {
	hw, ht := width/2, thickness/2
	apex := math.Vec3{Z: -length}
	base := [4]math.Vec3{
		{X: -hw, Y: ht}, {X: hw, Y: ht}, {X: hw, Y: -ht}, {X: -hw, Y: -ht},
	}

	var g Geometry
	tri := func(a, b, c math.Vec3) {
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		i := uint32(len(g.Vertices))
		for _, p := range []math.Vec3{a, b, c} {
			g.Vertices = append(g.Vertices, gfx.Vertex{
				Position: p,
				Normal:   n,
				TexCoord: [2]float32{p.X/width + 0.5, -p.Z / length},
				Colour:   [4]float32{0, 0, 0, 1},
			})
		}
		g.Indices = append(g.Indices, i, i+1, i+2)
	}
	for i := range base {
		tri(base[i], base[(i+1)%4], apex)
	}
	tri(base[0], base[3], base[2])
	tri(base[0], base[2], base[1])
	g.ComputeBounds()
	return g
}

// FlipWinding reverses the triangle winding in place.
func (g *Geometry) FlipWinding() {
	for i := 0; i+2 < len(g.Indices); i += 3 {
		g.Indices[i+1], g.Indices[i+2] = g.Indices[i+2], g.Indices[i+1]
	}
}

// SphereWireframe returns three unit great circles as line segments.
func SphereWireframe(segments int) Geometry {
	var g Geometry
	step := 2 * math32.Pi / float32(segments)
	circle := func(point func(s, c float32) math.Vec3) {
		for i := 0; i < segments; i++ {
			a, b := float32(i)*step, float32(i+1)*step
			base := uint32(len(g.Vertices))
			g.Vertices = append(g.Vertices,
				gfx.Vertex{Position: point(math32.Sin(a), math32.Cos(a))},
				gfx.Vertex{Position: point(math32.Sin(b), math32.Cos(b))},
			)
			g.Indices = append(g.Indices, base, base+1)
		}
	}
	circle(func(s, c float32) math.Vec3 { return math.Vec3{X: s, Y: c} })
	circle(func(s, c float32) math.Vec3 { return math.Vec3{X: s, Z: c} })
	circle(func(s, c float32) math.Vec3 { return math.Vec3{Y: s, Z: c} })
	g.ComputeBounds()
	return g
}

// BoxWireframe returns the 12 edges of b as line segments.
func BoxWireframe(b Bounds) Geometry {
	lo, hi := b.Min, b.Max
	corners := [8]math.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z}, {X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z}, {X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z}, {X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z}, {X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	g := Geometry{Vertices: make([]gfx.Vertex, 8)}
	for i, c := range corners {
		g.Vertices[i] = gfx.Vertex{Position: c}
	}
	g.Indices = []uint32{
		// bottom
		0, 1, 1, 2, 2, 3, 3, 0,
		// top
		4, 5, 5, 6, 6, 7, 7, 4,
		// verticals
		0, 4, 1, 5, 2, 6, 3, 7,
	}
	g.Bounds = b
	return g
}
