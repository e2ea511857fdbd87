package rigged

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/roguelike3d/internal/engine/material"
	"github.com/Faultbox/roguelike3d/internal/engine/particle"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Behaviour kinds stored in definitions.
const (
	BehaviourSwing   = "swing"
	BehaviourFlicker = "flicker"
)

// Definition is the on-disk form of a model. Nodes are listed with their
// children only; parents are rebuilt after loading.
type Definition struct {
	Class     string        `yaml:"class"`
	Materials []MaterialDef `yaml:"materials"`
	Nodes     []NodeDef     `yaml:"nodes"`
}

// MaterialDef describes a material.
type MaterialDef struct {
	Name     string      `yaml:"name"`
	Texture  string      `yaml:"texture,omitempty"`
	Colour   *[4]float32 `yaml:"colour,omitempty,flow"`
	Blending bool        `yaml:"blending,omitempty"`
}

// NodeDef describes a node. Node 0 is the root.
type NodeDef struct {
	ID         string       `yaml:"id"`
	SubMeshes  []*SubMesh   `yaml:"submeshes,omitempty"`
	Materials  []int        `yaml:"materials,omitempty,flow"`
	Position   math.Mat4    `yaml:"position,flow"`
	Rotation   math.Mat4    `yaml:"rotation,flow"`
	Rigidity   float32      `yaml:"rigidity"`
	Collidable bool         `yaml:"collidable"`
	Children   []int        `yaml:"children,omitempty,flow"`
	Behaviour  string       `yaml:"behaviour,omitempty"`
	Emitters   []EmitterDef `yaml:"emitters,omitempty"`
}

// EmitterDef describes a particle emitter.
type EmitterDef struct {
	Origin           math.Vec3  `yaml:"origin"`
	Volume           math.Vec3  `yaml:"volume"`
	Rate             float32    `yaml:"rate"`
	Max              int        `yaml:"max"`
	Lifetime         float32    `yaml:"lifetime"`
	Velocity         math.Vec3  `yaml:"velocity"`
	Size             float32    `yaml:"size"`
	StartColour      [4]float32 `yaml:"start_colour,flow"`
	EndColour        [4]float32 `yaml:"end_colour,flow"`
	Texture          string     `yaml:"texture"`
	Light            bool       `yaml:"light"`
	LightAttenuation float32    `yaml:"light_attenuation"`
}

// Definition returns the model in its on-disk form.
func (m *Model) Definition() Definition {
	d := Definition{Class: m.Class}
	for _, mat := range m.Materials {
		md := MaterialDef{Name: mat.Name, Texture: mat.TextureName(), Blending: mat.Translucent()}
		for _, a := range mat.Attributes {
			if c, ok := a.(*material.Colour); ok {
				rgba := c.RGBA
				md.Colour = &rgba
			}
		}
		d.Materials = append(d.Materials, md)
	}

	for _, n := range m.nodes {
		nd := NodeDef{
			ID:         n.ID,
			Materials:  n.Materials,
			Position:   n.Position,
			Rotation:   n.Rotation,
			Rigidity:   n.Rigidity,
			Collidable: n.Collidable,
		}
		for _, s := range n.SubMeshes {
			nd.SubMeshes = append(nd.SubMeshes, s.clone())
		}
		for _, c := range n.Children {
			nd.Children = append(nd.Children, int(c))
		}
		switch n.Behaviour.(type) {
		case *Swing:
			nd.Behaviour = BehaviourSwing
		case *Flicker:
			nd.Behaviour = BehaviourFlicker
		}
		if n.Effect != nil {
			for _, e := range n.Effect.Emitters {
				nd.Emitters = append(nd.Emitters, EmitterDef{
					Origin:           e.Origin,
					Volume:           e.Volume,
					Rate:             e.Rate,
					Max:              e.Max,
					Lifetime:         e.Lifetime,
					Velocity:         e.Velocity,
					Size:             e.Size,
					StartColour:      e.StartColour,
					EndColour:        e.EndColour,
					Texture:          e.Texture,
					Light:            e.Light,
					LightAttenuation: e.LightAttenuation,
				})
			}
		}
		d.Nodes = append(d.Nodes, nd)
	}
	return d
}

// FromDefinition builds a model from d, checking that the children lists
// form a single tree rooted at node 0, then rebuilds parent references.
func FromDefinition(d Definition) (*Model, error) {
	if len(d.Nodes) == 0 {
		return nil, fmt.Errorf("model %s: no nodes", d.Class)
	}

	m := New(d.Class)
	for _, md := range d.Materials {
		mat := material.New(md.Name)
		if md.Texture != "" {
			mat.SetTexture(md.Texture)
		}
		if md.Colour != nil {
			mat.Attributes = append(mat.Attributes, &material.Colour{RGBA: *md.Colour})
		}
		if md.Blending {
			mat.Attributes = append(mat.Attributes, material.NewBlending())
		}
		m.Materials = append(m.Materials, mat)
	}

	owner := make([]int, len(d.Nodes))
	for i := range owner {
		owner[i] = -1
	}
	m.nodes = make([]Node, len(d.Nodes))
	for i, nd := range d.Nodes {
		n, err := NewNode(NodeSpec{
			ID:         nd.ID,
			SubMeshes:  nd.SubMeshes,
			Materials:  nd.Materials,
			Position:   nd.Position,
			Rotation:   nd.Rotation,
			Rigidity:   nd.Rigidity,
			Collidable: nd.Collidable,
		})
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", d.Class, err)
		}
		for _, c := range nd.Children {
			if c <= 0 || c >= len(d.Nodes) {
				return nil, fmt.Errorf("model %s node %q: child %d out of range", d.Class, nd.ID, c)
			}
			if owner[c] != -1 {
				return nil, fmt.Errorf("model %s: node %d has two parents", d.Class, c)
			}
			owner[c] = i
			n.Children = append(n.Children, NodeID(c))
		}
		m.nodes[i] = n
	}
	for i := 1; i < len(owner); i++ {
		if owner[i] == -1 {
			return nil, fmt.Errorf("model %s: node %d %q is detached", d.Class, i, d.Nodes[i].ID)
		}
	}
	// A cycle among non-root nodes would leave them unreachable from the root.
	if reached := m.countReachable(); reached != len(m.nodes) {
		return nil, fmt.Errorf("model %s: %d of %d nodes reachable from root", d.Class, reached, len(m.nodes))
	}

	m.FixReferences()

	for i, nd := range d.Nodes {
		id := NodeID(i)
		if len(nd.Emitters) > 0 {
			var emitters []*particle.Emitter
			for _, ed := range nd.Emitters {
				e := particle.NewEmitter(ed.Origin, ed.Volume, ed.Rate, ed.Max)
				e.SetTexture(ed.Texture, ed.Velocity, ed.Lifetime, ed.StartColour, ed.EndColour, ed.Light, ed.LightAttenuation)
				if ed.Size > 0 {
					e.Size = ed.Size
				}
				if ed.Lifetime <= 0 {
					e.Lifetime = 1
				}
				emitters = append(emitters, e)
			}
			m.nodes[i].Effect = particle.NewEffect(emitters...)
		}
		switch nd.Behaviour {
		case "":
		case BehaviourSwing:
			m.SetBehaviour(id, NewSwing(m, id))
		case BehaviourFlicker:
			m.SetBehaviour(id, NewFlicker(m.nodes[i].Effect))
		default:
			return nil, fmt.Errorf("model %s node %q: unknown behaviour %q", d.Class, nd.ID, nd.Behaviour)
		}
	}
	return m, nil
}

func (m *Model) countReachable() int {
	count := 0
	seen := make([]bool, len(m.nodes))
	var visit func(NodeID)
	visit = func(id NodeID) {
		if seen[id] {
			return
		}
		seen[id] = true
		count++
		for _, c := range m.nodes[id].Children {
			visit(c)
		}
	}
	visit(0)
	return count
}

// LoadDefinition decodes a YAML model definition and builds the model.
func LoadDefinition(r io.Reader) (*Model, error) {
	var d Definition
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode model definition: %w", err)
	}
	return FromDefinition(d)
}

// LoadFile loads a model definition from path.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadDefinition(f)
}

// SaveDefinition encodes m as YAML.
func SaveDefinition(w io.Writer, m *Model) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m.Definition()); err != nil {
		return fmt.Errorf("encode model definition: %w", err)
	}
	return enc.Close()
}
