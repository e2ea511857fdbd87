// Package rigged implements rigged models: trees of nodes that carry
// submeshes, behaviours and particle effects, compose their transforms
// each frame and answer collision queries.
package rigged

import (
	"errors"
	"fmt"

	"github.com/Faultbox/roguelike3d/internal/engine/particle"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// ErrMaterialMismatch is returned when a node's submesh and material index
// counts differ.
var ErrMaterialMismatch = errors.New("submesh and material counts differ")

// NodeID indexes a node in its model's arena.
type NodeID int

// NoNode is the parent of the root and the result of failed lookups.
const NoNode NodeID = -1

// Node is one element of a model tree. Children own their subtrees; Parent
// is a plain index rebuilt by FixReferences and never owns anything.
type Node struct {
	ID        string
	SubMeshes []*SubMesh
	Materials []int

	Position       math.Mat4
	Rotation       math.Mat4
	OffsetPosition math.Mat4
	OffsetRotation math.Mat4

	Rigidity    float32 // 0-100
	Collidable  bool
	CollideMode bool

	Radius       float32
	RenderRadius float32

	Behaviour Behaviour
	Effect    *particle.Effect

	Children []NodeID
	Parent   NodeID

	composed     math.Mat4
	meshMatrices []math.Mat4
}

// NodeSpec holds the construction parameters of a node.
type NodeSpec struct {
	ID         string
	SubMeshes  []*SubMesh
	Materials  []int
	Position   math.Mat4
	Rotation   math.Mat4
	Rigidity   float32
	Collidable bool
}

// NewNode validates spec and returns a detached node. Zero matrices in the
// spec are treated as identity.
func NewNode(spec NodeSpec) (Node, error) {
	if len(spec.SubMeshes) != len(spec.Materials) {
		return Node{}, fmt.Errorf("node %q: %d submeshes, %d materials: %w",
			spec.ID, len(spec.SubMeshes), len(spec.Materials), ErrMaterialMismatch)
	}
	if spec.Rigidity < 0 || spec.Rigidity > 100 {
		return Node{}, fmt.Errorf("node %q: rigidity %v outside 0-100", spec.ID, spec.Rigidity)
	}
	return Node{
		ID:             spec.ID,
		SubMeshes:      spec.SubMeshes,
		Materials:      spec.Materials,
		Position:       orIdentity(spec.Position),
		Rotation:       orIdentity(spec.Rotation),
		OffsetPosition: math.Identity(),
		OffsetRotation: math.Identity(),
		Rigidity:       spec.Rigidity,
		Collidable:     spec.Collidable,
		Parent:         NoNode,
		composed:       math.Identity(),
	}, nil
}

func orIdentity(m math.Mat4) math.Mat4 {
	if m == (math.Mat4{}) {
		return math.Identity()
	}
	return m
}

// Composed returns the node's world matrix from the last ComposeMatrices.
func (n *Node) Composed() math.Mat4 { return n.composed }

// MeshMatrix returns the render matrix of submesh i.
func (n *Node) MeshMatrix(i int) math.Mat4 { return n.meshMatrices[i] }

// Origin returns the world position of the node.
func (n *Node) Origin() math.Vec3 { return n.composed.Translation() }

// Recoil returns the sway in degrees applied per collision tick.
func (n *Node) Recoil() float32 {
	return (100 - n.Rigidity) / 50
}
