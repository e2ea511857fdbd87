package rigged

import (
	"fmt"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/mesh"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// SubMesh is one drawable part of a node. Its matrix is the parent node's
// composed matrix scaled uniformly by Scale.
type SubMesh struct {
	Name      string        `yaml:"name"`
	Primitive gfx.Primitive `yaml:"primitive"`
	Scale     float32       `yaml:"scale"`
	Geometry  mesh.Spec     `yaml:"geometry"`

	geometry mesh.Geometry
	mesh     gfx.Mesh
	created  bool
}

// NewSubMesh creates a triangle submesh.
func NewSubMesh(name string, scale float32, spec mesh.Spec) *SubMesh {
	return &SubMesh{Name: name, Primitive: gfx.Triangles, Scale: scale, Geometry: spec}
}

// Create builds and uploads the geometry.
func (s *SubMesh) Create(ctx gfx.Context) error {
	if s.created {
		return nil
	}
	g, err := mesh.Build(s.Geometry)
	if err != nil {
		return fmt.Errorf("submesh %s: %w", s.Name, err)
	}
	// A negative uniform scale mirrors the mesh and turns it inside out.
	if s.Scale < 0 {
		g.FlipWinding()
	}
	m, err := ctx.UploadMesh(g.Vertices, g.Indices)
	if err != nil {
		return fmt.Errorf("submesh %s: %w", s.Name, err)
	}
	s.geometry = g
	s.mesh = m
	s.created = true
	return nil
}

// Bounds returns the unscaled geometry bounds. Valid after Create.
func (s *SubMesh) Bounds() mesh.Bounds {
	return s.geometry.Bounds
}

// Mesh returns the uploaded mesh handle.
func (s *SubMesh) Mesh() gfx.Mesh { return s.mesh }

// BakeLight writes the light reaching each vertex into its colour, using
// static lights when bakeStatics is set and dynamic ones otherwise.
func (s *SubMesh) BakeLight(ctx gfx.Context, lights *lighting.Manager, bakeStatics bool, world math.Mat4) {
	if !s.created {
		return
	}
	normals := math.FromMat3x3(world.NormalMatrix())
	for i := range s.geometry.Vertices {
		v := &s.geometry.Vertices[i]
		p := world.TransformVec3(v.Position)
		n := normals.TransformDirection(v.Normal)
		c := lights.Evaluate(p, n, bakeStatics).Clamp01()
		v.Colour = [4]float32{c.X, c.Y, c.Z, 1}
	}
	ctx.UpdateMesh(s.mesh, s.geometry.Vertices)
}

// Colour returns the baked colour of vertex i.
func (s *SubMesh) Colour(i int) [4]float32 {
	return s.geometry.Vertices[i].Colour
}

// Dispose deletes the uploaded mesh.
func (s *SubMesh) Dispose(ctx gfx.Context) {
	if !s.created {
		return
	}
	ctx.DeleteMesh(s.mesh)
	s.created = false
	s.geometry = mesh.Geometry{}
}

// clone returns an uncreated copy sharing only the description.
func (s *SubMesh) clone() *SubMesh {
	return &SubMesh{Name: s.Name, Primitive: s.Primitive, Scale: s.Scale, Geometry: s.Geometry}
}
