// Package mesh provides submesh geometry, procedural shapes and bounds.
package mesh

import (
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Geometry holds vertex data ready for upload.
type Geometry struct {
	Vertices []gfx.Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// EmptyBounds returns inverted bounds ready for Extend.
func EmptyBounds() Bounds {
	const big = 1e30
	return Bounds{
		Min: math.Vec3{X: big, Y: big, Z: big},
		Max: math.Vec3{X: -big, Y: -big, Z: -big},
	}
}

// Empty reports whether nothing has been added.
func (b Bounds) Empty() bool {
	return b.Min.X > b.Max.X
}

// Extend grows the box to include p.
func (b *Bounds) Extend(p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Union grows the box to include o.
func (b *Bounds) Union(o Bounds) {
	if o.Empty() {
		return
	}
	b.Extend(o.Min)
	b.Extend(o.Max)
}

// Dimensions returns the box size along each axis.
func (b Bounds) Dimensions() math.Vec3 {
	if b.Empty() {
		return math.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Centre returns the box centre.
func (b Bounds) Centre() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Longest returns the largest dimension.
func (b Bounds) Longest() float32 {
	d := b.Dimensions()
	return max(d.X, d.Y, d.Z)
}

// ComputeBounds recalculates g.Bounds from its vertices.
func (g *Geometry) ComputeBounds() {
	g.Bounds = EmptyBounds()
	for _, v := range g.Vertices {
		g.Bounds.Extend(v.Position)
	}
}

// Scaled returns a copy with every position scaled by s and offset by off.
// Negative scales flip winding so faces stay front-facing.
func (g Geometry) Scaled(s math.Vec3, off math.Vec3) Geometry {
	out := Geometry{
		Vertices: make([]gfx.Vertex, len(g.Vertices)),
		Indices:  append([]uint32(nil), g.Indices...),
	}
	for i, v := range g.Vertices {
		v.Position = v.Position.Mul(s).Add(off)
		v.Normal = math.Vec3{X: v.Normal.X * sign(s.X), Y: v.Normal.Y * sign(s.Y), Z: v.Normal.Z * sign(s.Z)}
		out.Vertices[i] = v
	}
	if sign(s.X)*sign(s.Y)*sign(s.Z) < 0 {
		for i := 0; i+2 < len(out.Indices); i += 3 {
			out.Indices[i+1], out.Indices[i+2] = out.Indices[i+2], out.Indices[i+1]
		}
	}
	out.ComputeBounds()
	return out
}

func sign(f float32) float32 {
	if f < 0 {
		return -1
	}
	return 1
}

// Append merges o into g.
func (g *Geometry) Append(o Geometry) {
	base := uint32(len(g.Vertices))
	g.Vertices = append(g.Vertices, o.Vertices...)
	for _, i := range o.Indices {
		g.Indices = append(g.Indices, base+i)
	}
	g.ComputeBounds()
}

// SmoothNormals averages normals at shared vertex positions.
func SmoothNormals(vertices []gfx.Vertex) {
	const epsilon float32 = 0.001

	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		p := vertices[i].Position
		key := [3]int32{int32(p.X / epsilon), int32(p.Y / epsilon), int32(p.Z / epsilon)}
		posMap[key] = append(posMap[key], i)
	}

	for _, idxs := range posMap {
		if len(idxs) < 2 {
			continue
		}
		var sum math.Vec3
		for _, idx := range idxs {
			sum = sum.Add(vertices[idx].Normal)
		}
		avg := sum.Normalize()
		for _, idx := range idxs {
			vertices[idx].Normal = avg
		}
	}
}
