package rigged

import (
	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/mesh"
	"github.com/Faultbox/roguelike3d/internal/engine/shaders"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Debug line colours.
var (
	colourIdle     = [4]float32{0.2, 0.9, 0.2, 1}
	colourActive   = [4]float32{0.9, 0.2, 0.2, 1}
	colourBoundary = [4]float32{0.4, 0.4, 0.9, 1}
)

type debugState struct {
	program gfx.Program
	ready   bool
	sphere  gfx.Mesh
	boxes   map[NodeID]gfx.Mesh
}

// ProgramKey returns the program cache key for a model class.
func ProgramKey(class string) string {
	return "rigged/" + class
}

func (m *Model) createDebug(ctx gfx.Context, cache *gfx.ProgramCache) error {
	p, err := cache.GetOrCreate(ctx, ProgramKey(m.Class), shaders.Debug())
	if err != nil {
		return err
	}
	sphere := mesh.SphereWireframe(16)
	sm, err := ctx.UploadMesh(sphere.Vertices, sphere.Indices)
	if err != nil {
		return err
	}
	m.debug = debugState{program: p, ready: true, sphere: sm, boxes: make(map[NodeID]gfx.Mesh)}

	for i := range m.nodes {
		n := &m.nodes[i]
		if n.Collidable || len(n.SubMeshes) == 0 {
			continue
		}
		b := mesh.EmptyBounds()
		for _, s := range n.SubMeshes {
			b.Union(s.Bounds())
		}
		box := mesh.BoxWireframe(b)
		bm, err := ctx.UploadMesh(box.Vertices, box.Indices)
		if err != nil {
			return err
		}
		m.debug.boxes[NodeID(i)] = bm
	}
	return nil
}

func (m *Model) disposeDebug(ctx gfx.Context) {
	if !m.debug.ready {
		return
	}
	ctx.DeleteMesh(m.debug.sphere)
	for _, b := range m.debug.boxes {
		ctx.DeleteMesh(b)
	}
	m.debug = debugState{}
}

// DrawCollision draws each collidable node's collision sphere, red while in
// collide mode, and the bounds of non-collidable parts. It does nothing if
// the class program failed to compile.
func (m *Model) DrawCollision(ctx gfx.Context, cam *camera.Camera) {
	if !m.debug.ready {
		return
	}
	p := m.debug.program
	ctx.UseProgram(p)
	ctx.SetBlend(gfx.BlendOff)
	m.Walk(func(id NodeID, n *Node) bool {
		if n.Collidable {
			r := n.Radius
			mvp := cam.Combined.Mul(math.Translate(n.Origin().X, n.Origin().Y, n.Origin().Z)).Mul(math.Scale(r, r, r))
			colour := colourIdle
			if n.CollideMode {
				colour = colourActive
			}
			ctx.SetMat4(p, "u_mvp", mvp)
			ctx.SetVec4(p, "u_colour", colour)
			ctx.DrawMesh(m.debug.sphere, gfx.Lines)
			return true
		}
		if box, ok := m.debug.boxes[id]; ok {
			ctx.SetMat4(p, "u_mvp", cam.Combined.Mul(n.meshMatrices[0]))
			ctx.SetVec4(p, "u_colour", colourBoundary)
			ctx.DrawMesh(box, gfx.Lines)
		}
		return true
	})
}
