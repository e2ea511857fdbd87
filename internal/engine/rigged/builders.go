package rigged

import (
	"fmt"

	"github.com/Faultbox/roguelike3d/internal/engine/material"
	"github.com/Faultbox/roguelike3d/internal/engine/mesh"
	"github.com/Faultbox/roguelike3d/internal/engine/particle"
	"github.com/Faultbox/roguelike3d/internal/engine/texture"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Model classes built here.
const (
	ClassSword = "sword"
	ClassTorch = "torch"
)

// EmitterTracker is told about emitters a model brings into a level.
type EmitterTracker interface {
	TrackEmitter(e *particle.Emitter)
}

// Sword builds a sword whose blade is length segments long:
//
//	root
//	└─ Hilt (hilt, guard)
//	   └─ Blade × (length-1)
//	      └─ Blade
//	         └─ Tip
//
// The hilt carries a Swing behaviour.
func Sword(length int) (*Model, error) {
	if length < 1 {
		return nil, fmt.Errorf("sword length %d, need at least 1", length)
	}

	basic := material.New("basic")
	basic.SetTexture(texture.Blank)
	m := New(ClassSword, basic)

	root, err := NewNode(NodeSpec{ID: "root"})
	if err != nil {
		return nil, err
	}
	prev, err := m.AddRoot(root)
	if err != nil {
		return nil, err
	}

	hilt, err := NewNode(NodeSpec{
		ID: "Hilt",
		SubMeshes: []*SubMesh{
			NewSubMesh("Hilt", 1, mesh.Spec{Kind: mesh.KindHilt}),
			NewSubMesh("Guard", 1, mesh.Spec{Kind: mesh.KindGuard, Offset: math.Vec3{Z: 0.4}}),
		},
		Materials: []int{0, 0},
		Position:  math.Translate(0, 0, 0.7),
	})
	if err != nil {
		return nil, err
	}
	hiltID, err := m.AddChild(prev, hilt)
	if err != nil {
		return nil, err
	}
	m.SetBehaviour(hiltID, NewSwing(m, hiltID))
	prev = hiltID

	blade := func(z float32) (NodeID, error) {
		n, err := NewNode(NodeSpec{
			ID:         "Blade",
			SubMeshes:  []*SubMesh{NewSubMesh("Blade", 0.5, mesh.Spec{Kind: mesh.KindBlade})},
			Materials:  []int{0},
			Position:   math.Translate(0, 0, z),
			Rigidity:   100,
			Collidable: true,
		})
		if err != nil {
			return NoNode, err
		}
		return m.AddChild(prev, n)
	}
	for i := 0; i < length-1; i++ {
		if prev, err = blade(0.5); err != nil {
			return nil, err
		}
	}
	if prev, err = blade(0.34); err != nil {
		return nil, err
	}

	tip, err := NewNode(NodeSpec{
		ID:         "Tip",
		SubMeshes:  []*SubMesh{NewSubMesh("Tip", -0.5, mesh.Spec{Kind: mesh.KindTip})},
		Materials:  []int{0},
		Position:   math.Translate(0, 0, 0.2),
		Rigidity:   100,
		Collidable: true,
	})
	if err != nil {
		return nil, err
	}
	if _, err := m.AddChild(prev, tip); err != nil {
		return nil, err
	}
	return m, nil
}

// TorchEmitter returns the flame emitter used by Torch.
func TorchEmitter() *particle.Emitter {
	e := particle.NewEmitter(math.Vec3{}, math.Vec3{X: 0.1, Y: 0.1, Z: 0.1}, 0.02, 350)
	e.SetTexture(texture.Flame, math.Vec3{Y: -0.7}, 4,
		[4]float32{0.6, 0.4, 1, 1}, [4]float32{0, 0, 0.6, 1}, true, 0.03)
	return e
}

// Torch builds a wooden torch with a flickering flame. The flame's emitter
// is reported to tracker when it is not nil.
func Torch(tracker EmitterTracker) (*Model, error) {
	wood := material.New("basic")
	wood.SetTexture(texture.Wood)
	m := New(ClassTorch, wood)

	root, err := NewNode(NodeSpec{ID: "root"})
	if err != nil {
		return nil, err
	}
	rootID, err := m.AddRoot(root)
	if err != nil {
		return nil, err
	}

	stick, err := NewNode(NodeSpec{
		ID:         "Torch",
		SubMeshes:  []*SubMesh{NewSubMesh("Torch", 1, mesh.Spec{Kind: mesh.KindBox, Size: math.Vec3{X: 0.1, Y: 0.1, Z: 3}})},
		Materials:  []int{0},
		Position:   math.Translate(0, 0, 1.5),
		Rigidity:   100,
		Collidable: true,
	})
	if err != nil {
		return nil, err
	}
	stickID, err := m.AddChild(rootID, stick)
	if err != nil {
		return nil, err
	}

	flame, err := NewNode(NodeSpec{
		ID:         "Flame",
		SubMeshes:  []*SubMesh{NewSubMesh("Flame", 1, mesh.Spec{Kind: mesh.KindBox, Size: math.Vec3{X: 0.01, Y: 0.01, Z: 0.01}})},
		Materials:  []int{0},
		Position:   math.Translate(0, -0.5, -0.5),
		Rigidity:   100,
		Collidable: true,
	})
	if err != nil {
		return nil, err
	}
	flameID, err := m.AddChild(stickID, flame)
	if err != nil {
		return nil, err
	}

	emitter := TorchEmitter()
	effect := particle.NewEffect(emitter)
	m.SetParticleEffect(nil, flameID, effect)
	m.SetBehaviour(flameID, NewFlicker(effect))
	if tracker != nil {
		tracker.TrackEmitter(emitter)
	}
	return m, nil
}
