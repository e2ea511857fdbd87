package rigged

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/material"
	"github.com/Faultbox/roguelike3d/internal/engine/mesh"
	"github.com/Faultbox/roguelike3d/internal/engine/particle"
	"github.com/Faultbox/roguelike3d/internal/engine/render"
	"github.com/Faultbox/roguelike3d/internal/logger"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Model is a tree of nodes stored in an arena, plus the material palette
// its submeshes index into. Node 0 is the root.
type Model struct {
	// Class names the kind of model. Instances of a class share programs.
	Class     string
	Materials []*material.Material

	nodes   []Node
	held    bool
	created bool

	debug debugState
}

// New creates an empty model.
func New(class string, materials ...*material.Material) *Model {
	return &Model{Class: class, Materials: materials}
}

// AddRoot adds the root node. A model has exactly one root.
func (m *Model) AddRoot(n Node) (NodeID, error) {
	if len(m.nodes) > 0 {
		return NoNode, errors.New("model already has a root")
	}
	n.Parent = NoNode
	n.Children = nil
	m.nodes = append(m.nodes, n)
	return 0, nil
}

// AddChild appends n to parent's children and returns its id.
func (m *Model) AddChild(parent NodeID, n Node) (NodeID, error) {
	if !m.valid(parent) {
		return NoNode, fmt.Errorf("add child %q: no parent node %d", n.ID, parent)
	}
	id := NodeID(len(m.nodes))
	n.Parent = parent
	n.Children = nil
	m.nodes = append(m.nodes, n)
	m.nodes[parent].Children = append(m.nodes[parent].Children, id)
	return id, nil
}

func (m *Model) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(m.nodes)
}

// Node returns the node with the given id, or nil.
func (m *Model) Node(id NodeID) *Node {
	if !m.valid(id) {
		return nil
	}
	return &m.nodes[id]
}

// Root returns the root id, or NoNode for an empty model.
func (m *Model) Root() NodeID {
	if len(m.nodes) == 0 {
		return NoNode
	}
	return 0
}

// Len returns the number of nodes.
func (m *Model) Len() int { return len(m.nodes) }

// Walk visits nodes depth first in declaration order, parents before
// children. Returning false from fn stops the walk.
func (m *Model) Walk(fn func(id NodeID, n *Node) bool) {
	if len(m.nodes) > 0 {
		m.walk(0, fn)
	}
}

func (m *Model) walk(id NodeID, fn func(NodeID, *Node) bool) bool {
	if !fn(id, &m.nodes[id]) {
		return false
	}
	for _, c := range m.nodes[id].Children {
		if !m.walk(c, fn) {
			return false
		}
	}
	return true
}

// broadcast calls fn on every node in the tree.
func (m *Model) broadcast(fn func(n *Node)) {
	m.Walk(func(_ NodeID, n *Node) bool {
		fn(n)
		return true
	})
}

// SetBehaviour attaches b to a node.
func (m *Model) SetBehaviour(id NodeID, b Behaviour) {
	if n := m.Node(id); n != nil {
		n.Behaviour = b
	}
}

// SetParticleEffect attaches an effect to a node, disposing any previous one.
func (m *Model) SetParticleEffect(ctx gfx.Context, id NodeID, effect *particle.Effect) {
	n := m.Node(id)
	if n == nil {
		return
	}
	if n.Effect != nil && ctx != nil {
		n.Effect.Dispose(ctx)
	}
	n.Effect = effect
}

// Create validates material indices, uploads submeshes, resolves textures
// and derives each node's radius. The debug program for the model's class
// is compiled once through cache; a failure there is logged, not returned.
func (m *Model) Create(ctx gfx.Context, cache *gfx.ProgramCache, textures material.TextureSource) error {
	if len(m.nodes) == 0 {
		return fmt.Errorf("model %s has no nodes", m.Class)
	}
	for _, mat := range m.Materials {
		if err := mat.Resolve(textures); err != nil {
			return fmt.Errorf("model %s: %w", m.Class, err)
		}
	}

	if err := m.createNodes(ctx, textures); err != nil {
		// Submeshes of earlier nodes may already be uploaded.
		m.Dispose(ctx)
		return err
	}

	if cache != nil {
		if err := m.createDebug(ctx, cache); err != nil {
			logger.Warn("collision debug unavailable", zap.String("class", m.Class), zap.Error(err))
		}
	}
	m.created = true
	return nil
}

func (m *Model) createNodes(ctx gfx.Context, textures material.TextureSource) error {
	for i := range m.nodes {
		n := &m.nodes[i]
		for _, idx := range n.Materials {
			if idx < 0 || idx >= len(m.Materials) {
				return fmt.Errorf("model %s node %q: material %d of %d", m.Class, n.ID, idx, len(m.Materials))
			}
		}

		box := mesh.EmptyBounds()
		for _, s := range n.SubMeshes {
			if err := s.Create(ctx); err != nil {
				return fmt.Errorf("model %s node %q: %w", m.Class, n.ID, err)
			}
			box.Union(s.Bounds())
		}
		n.Radius = box.Longest() / 2
		n.RenderRadius = max(n.Radius, 1)
		n.composed = math.Identity()
		n.meshMatrices = make([]math.Mat4, len(n.SubMeshes))
		for j := range n.meshMatrices {
			n.meshMatrices[j] = math.Identity()
		}

		if n.Effect != nil {
			if err := n.Effect.Create(ctx, textures); err != nil {
				return fmt.Errorf("model %s node %q: %w", m.Class, n.ID, err)
			}
		}
	}
	return nil
}

// Held forwards to every node's behaviour the first time the holder
// presses; repeated calls while held do nothing.
func (m *Model) Held() {
	if !m.held {
		m.broadcast(func(n *Node) {
			if n.Behaviour != nil {
				n.Behaviour.Held()
			}
		})
	}
	m.held = true
}

// Released forwards to every node's behaviour once per press.
func (m *Model) Released() {
	if m.held {
		m.broadcast(func(n *Node) {
			if n.Behaviour != nil {
				n.Behaviour.Released()
			}
		})
	}
	m.held = false
}

// Equip tells every behaviour who holds the model and in which hand.
func (m *Model) Equip(holder Holder, side Side) {
	m.broadcast(func(n *Node) {
		if n.Behaviour != nil {
			n.Behaviour.Equip(holder, side)
		}
	})
}

// Cancel aborts whatever every behaviour is doing.
func (m *Model) Cancel() {
	m.held = false
	m.broadcast(func(n *Node) {
		if n.Behaviour != nil {
			n.Behaviour.Cancel()
		}
	})
}

// Update advances particle effects and behaviours.
func (m *Model) Update(dt float32, cam *camera.Camera) {
	m.broadcast(func(n *Node) {
		if n.Effect != nil {
			n.Effect.Update(dt, cam)
		}
		if n.Behaviour != nil {
			n.Behaviour.Update(dt)
		}
	})
}

// ComposeMatrices recomputes world matrices from parent, the holder's
// transform. A node's composed matrix is parent·position·rotation·
// offsetPosition·offsetRotation; its submeshes use the parent's composed
// matrix scaled by the submesh scale.
func (m *Model) ComposeMatrices(parent math.Mat4) {
	if len(m.nodes) > 0 {
		m.compose(0, parent)
	}
}

func (m *Model) compose(id NodeID, parent math.Mat4) {
	n := &m.nodes[id]
	n.composed = parent.Mul(n.Position).Mul(n.Rotation).Mul(n.OffsetPosition).Mul(n.OffsetRotation)
	for i, s := range n.SubMeshes {
		if i < len(n.meshMatrices) {
			n.meshMatrices[i] = parent.Mul(math.Scale(s.Scale, s.Scale, s.Scale))
		}
	}
	for _, c := range n.Children {
		m.compose(c, n.composed)
	}
	if n.Effect != nil {
		n.Effect.SetPosition(n.composed.Translation())
	}
}

// Draw submits every submesh to r, parents first, and appends the visible
// emitters of attached effects to emitters.
func (m *Model) Draw(r render.Renderer, emitters []*particle.Emitter, cam *camera.Camera) []*particle.Emitter {
	m.broadcast(func(n *Node) {
		if n.Effect != nil {
			emitters = n.Effect.VisibleEmitters(emitters, cam)
		}
		for i, s := range n.SubMeshes {
			if i >= len(n.meshMatrices) {
				break
			}
			r.Draw(render.DrawCall{
				Mesh:      s.Mesh(),
				Primitive: s.Primitive,
				Transform: n.meshMatrices[i],
				Material:  m.Materials[n.Materials[i]],
				Radius:    n.RenderRadius,
			})
		}
	})
	return emitters
}

// CheckCollision tests collidable nodes in collide mode against scene,
// depth first. On the first hit the node sways about Y by its recoil and
// the actor hit is returned; hitting level objects or geometry returns the
// holder itself. Nil means nothing was hit.
func (m *Model) CheckCollision(holder Holder, scene Scene) Holder {
	if len(m.nodes) == 0 {
		return nil
	}
	return m.checkCollision(0, holder, scene)
}

func (m *Model) checkCollision(id NodeID, holder Holder, scene Scene) Holder {
	n := &m.nodes[id]
	if n.Collidable && n.CollideMode {
		centre := n.Origin()
		exclude := ""
		if holder != nil {
			exclude = holder.UID()
		}
		hit := scene.CollideSphereActors(centre, n.Radius, exclude)
		if scene.CollideSphereStatics(centre, n.Radius) {
			hit = holder
		}
		if scene.CollideSphere(centre, n.Radius, exclude) {
			hit = holder
		}
		if hit != nil {
			n.Rotation = n.Rotation.Rotate(math.UnitY, n.Recoil())
			return hit
		}
	}
	for _, c := range n.Children {
		if hit := m.checkCollision(c, holder, scene); hit != nil {
			return hit
		}
	}
	return nil
}

// SetCollideMode sets the collide mode of id's subtree, or of the whole
// tree when propagateUp is set. Behaviours are told of the change.
func (m *Model) SetCollideMode(id NodeID, mode, propagateUp bool) {
	if !m.valid(id) {
		return
	}
	if propagateUp {
		for m.nodes[id].Parent != NoNode {
			id = m.nodes[id].Parent
		}
	}
	m.walk(id, func(_ NodeID, n *Node) bool {
		n.CollideMode = mode
		if n.Behaviour != nil {
			n.Behaviour.CollideMode(mode)
		}
		return true
	})
}

// GetNode finds the first node, depth first, whose ID matches ignoring case.
func (m *Model) GetNode(id string) (NodeID, bool) {
	found := NoNode
	m.Walk(func(nid NodeID, n *Node) bool {
		if strings.EqualFold(n.ID, id) {
			found = nid
			return false
		}
		return true
	})
	return found, found != NoNode
}

// BakeLight bakes lights into every submesh using its current matrix.
func (m *Model) BakeLight(ctx gfx.Context, lights *lighting.Manager, bakeStatics bool) {
	m.broadcast(func(n *Node) {
		for i, s := range n.SubMeshes {
			if i < len(n.meshMatrices) {
				s.BakeLight(ctx, lights, bakeStatics, n.meshMatrices[i])
			}
		}
	})
}

// GetLight adds the lights of attached particle effects to lights.
func (m *Model) GetLight(lights *lighting.Manager) {
	m.broadcast(func(n *Node) {
		if n.Effect != nil {
			n.Effect.GetLight(lights)
		}
	})
}

// FixReferences rebuilds every node's parent index from the children lists.
func (m *Model) FixReferences() {
	for i := range m.nodes {
		m.nodes[i].Parent = NoNode
	}
	for i := range m.nodes {
		for _, c := range m.nodes[i].Children {
			if m.valid(c) {
				m.nodes[c].Parent = NodeID(i)
			}
		}
	}
}

// Dispose releases GPU resources held by submeshes, effects and the
// debug meshes. The class program stays in the cache.
func (m *Model) Dispose(ctx gfx.Context) {
	for i := range m.nodes {
		n := &m.nodes[i]
		for _, s := range n.SubMeshes {
			s.Dispose(ctx)
		}
		if n.Effect != nil {
			n.Effect.Dispose(ctx)
		}
		n.meshMatrices = nil
	}
	m.disposeDebug(ctx)
	m.created = false
}

// Created reports whether Create has run since the last Dispose.
func (m *Model) Created() bool { return m.created }
