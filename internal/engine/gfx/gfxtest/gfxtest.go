// Package gfxtest provides a recording gfx.Context for tests.
package gfxtest

import (
	"fmt"
	"image"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Draw records one DrawMesh, DrawMeshRange or DrawFullscreen call.
type Draw struct {
	Program   gfx.Program
	Name      string // Name of the program in use
	Mesh      gfx.Mesh
	Primitive gfx.Primitive
	Count     int // -1 for a full draw
	Target    gfx.Target
	Blend     gfx.Blend
	// Mat4s is a copy of the program's matrix uniforms at draw time.
	Mat4s map[string]math.Mat4
	// Vec3s is a copy of the program's vector uniforms at draw time.
	Vec3s  map[string]math.Vec3
	Vec4s  map[string][4]float32
	Floats map[string]float32
	Ints   map[string]int32
}

// Uniforms holds the last value set for each uniform of a program.
type Uniforms struct {
	Mat4s  map[string]math.Mat4
	Mat3s  map[string][9]float32
	Vec3s  map[string]math.Vec3
	Vec4s  map[string][4]float32
	Floats map[string]float32
	Ints   map[string]int32
}

func newUniforms() *Uniforms {
	return &Uniforms{
		Mat4s:  make(map[string]math.Mat4),
		Mat3s:  make(map[string][9]float32),
		Vec3s:  make(map[string]math.Vec3),
		Vec4s:  make(map[string][4]float32),
		Floats: make(map[string]float32),
		Ints:   make(map[string]int32),
	}
}

// Context is an in-memory gfx.Context. The zero value is not usable; call New.
type Context struct {
	// Fail lists program names whose compilation should fail.
	Fail map[string]bool
	// FailTargets makes CreateTarget fail.
	FailTargets bool

	Compiles map[string]int
	Programs map[gfx.Program]string
	Uniforms map[gfx.Program]*Uniforms
	Meshes   map[gfx.Mesh][]gfx.Vertex
	Textures map[gfx.Texture]image.Rectangle
	Targets  map[gfx.Target][2]int32
	Bound    map[int32]gfx.Texture
	Draws    []Draw
	Clears   int

	// Attachments holds the colour attachment count of each target.
	Attachments map[gfx.Target]int

	Current  gfx.Program
	Target   gfx.Target
	Blend    gfx.Blend
	Depth    [2]bool
	Size     [2]int32
	Deleted  int
	Bindings []gfx.Target

	next uint32
}

var _ gfx.Context = (*Context)(nil)

// New creates an empty recording context.
func New() *Context {
	return &Context{
		Fail:     make(map[string]bool),
		Compiles: make(map[string]int),
		Programs: make(map[gfx.Program]string),
		Uniforms: make(map[gfx.Program]*Uniforms),
		Meshes:   make(map[gfx.Mesh][]gfx.Vertex),
		Textures: make(map[gfx.Texture]image.Rectangle),
		Targets:  make(map[gfx.Target][2]int32),
		Bound:    make(map[int32]gfx.Texture),

		Attachments: make(map[gfx.Target]int),
	}
}

func (c *Context) id() uint32 {
	c.next++
	return c.next
}

// CompileProgram implements gfx.Context.
func (c *Context) CompileProgram(name, vertexSrc, fragmentSrc string) (gfx.Program, error) {
	c.Compiles[name]++
	if c.Fail[name] {
		return 0, fmt.Errorf("%w: %s: 0:1: syntax error", gfx.ErrCompile, name)
	}
	p := gfx.Program(c.id())
	c.Programs[p] = name
	c.Uniforms[p] = newUniforms()
	return p, nil
}

// UseProgram implements gfx.Context.
func (c *Context) UseProgram(p gfx.Program) { c.Current = p }

// DeleteProgram implements gfx.Context.
func (c *Context) DeleteProgram(p gfx.Program) {
	delete(c.Programs, p)
	delete(c.Uniforms, p)
	c.Deleted++
}

func (c *Context) uniforms(p gfx.Program) *Uniforms {
	u, ok := c.Uniforms[p]
	if !ok {
		u = newUniforms()
		c.Uniforms[p] = u
	}
	return u
}

// SetMat4 implements gfx.Context.
func (c *Context) SetMat4(p gfx.Program, name string, m math.Mat4) { c.uniforms(p).Mat4s[name] = m }

// SetMat3 implements gfx.Context.
func (c *Context) SetMat3(p gfx.Program, name string, m [9]float32) {
	c.uniforms(p).Mat3s[name] = m
}

// SetVec3 implements gfx.Context.
func (c *Context) SetVec3(p gfx.Program, name string, v math.Vec3) { c.uniforms(p).Vec3s[name] = v }

// SetVec4 implements gfx.Context.
func (c *Context) SetVec4(p gfx.Program, name string, v [4]float32) {
	c.uniforms(p).Vec4s[name] = v
}

// SetFloat implements gfx.Context.
func (c *Context) SetFloat(p gfx.Program, name string, f float32) { c.uniforms(p).Floats[name] = f }

// SetInt implements gfx.Context.
func (c *Context) SetInt(p gfx.Program, name string, i int32) { c.uniforms(p).Ints[name] = i }

// UploadMesh implements gfx.Context.
func (c *Context) UploadMesh(vertices []gfx.Vertex, indices []uint32) (gfx.Mesh, error) {
	m := gfx.Mesh(c.id())
	c.Meshes[m] = append([]gfx.Vertex(nil), vertices...)
	return m, nil
}

// UpdateMesh implements gfx.Context.
func (c *Context) UpdateMesh(m gfx.Mesh, vertices []gfx.Vertex) {
	c.Meshes[m] = append(c.Meshes[m][:0], vertices...)
}

// DrawMesh implements gfx.Context.
func (c *Context) DrawMesh(m gfx.Mesh, prim gfx.Primitive) { c.record(m, prim, -1) }

// DrawMeshRange implements gfx.Context.
func (c *Context) DrawMeshRange(m gfx.Mesh, prim gfx.Primitive, count int) {
	c.record(m, prim, count)
}

func (c *Context) record(m gfx.Mesh, prim gfx.Primitive, count int) {
	u := c.uniforms(c.Current)
	d := Draw{
		Program:   c.Current,
		Name:      c.Programs[c.Current],
		Mesh:      m,
		Primitive: prim,
		Count:     count,
		Target:    c.Target,
		Blend:     c.Blend,
		Mat4s:     make(map[string]math.Mat4, len(u.Mat4s)),
		Vec3s:     make(map[string]math.Vec3, len(u.Vec3s)),
		Vec4s:     make(map[string][4]float32, len(u.Vec4s)),
		Floats:    make(map[string]float32, len(u.Floats)),
		Ints:      make(map[string]int32, len(u.Ints)),
	}
	for k, v := range u.Mat4s {
		d.Mat4s[k] = v
	}
	for k, v := range u.Vec3s {
		d.Vec3s[k] = v
	}
	for k, v := range u.Vec4s {
		d.Vec4s[k] = v
	}
	for k, v := range u.Floats {
		d.Floats[k] = v
	}
	for k, v := range u.Ints {
		d.Ints[k] = v
	}
	c.Draws = append(c.Draws, d)
}

// DeleteMesh implements gfx.Context.
func (c *Context) DeleteMesh(m gfx.Mesh) {
	delete(c.Meshes, m)
	c.Deleted++
}

// UploadTexture implements gfx.Context.
func (c *Context) UploadTexture(img *image.RGBA) (gfx.Texture, error) {
	t := gfx.Texture(c.id())
	c.Textures[t] = img.Bounds()
	return t, nil
}

// BindTexture implements gfx.Context.
func (c *Context) BindTexture(unit int32, t gfx.Texture) { c.Bound[unit] = t }

// DeleteTexture implements gfx.Context.
func (c *Context) DeleteTexture(t gfx.Texture) {
	delete(c.Textures, t)
	c.Deleted++
}

// CreateTarget implements gfx.Context.
func (c *Context) CreateTarget(width, height int32, colorAttachments int) (gfx.Target, error) {
	if c.FailTargets {
		return 0, fmt.Errorf("framebuffer incomplete: 0x8cd6")
	}
	t := gfx.Target(c.id())
	c.Targets[t] = [2]int32{width, height}
	c.Attachments[t] = colorAttachments
	return t, nil
}

// ResizeTarget implements gfx.Context.
func (c *Context) ResizeTarget(t gfx.Target, width, height int32) {
	c.Targets[t] = [2]int32{width, height}
}

// BindTarget implements gfx.Context.
func (c *Context) BindTarget(t gfx.Target) {
	c.Target = t
	c.Bindings = append(c.Bindings, t)
}

// TargetTexture implements gfx.Context.
func (c *Context) TargetTexture(t gfx.Target, attachment int) gfx.Texture {
	return gfx.Texture(uint32(t)<<8 | uint32(attachment+1))
}

// TargetDepth implements gfx.Context.
func (c *Context) TargetDepth(t gfx.Target) gfx.Texture {
	return gfx.Texture(uint32(t)<<8 | 0xff)
}

// DeleteTarget implements gfx.Context.
func (c *Context) DeleteTarget(t gfx.Target) {
	delete(c.Targets, t)
	delete(c.Attachments, t)
	c.Deleted++
}

// Viewport implements gfx.Context.
func (c *Context) Viewport(width, height int32) { c.Size = [2]int32{width, height} }

// Clear implements gfx.Context.
func (c *Context) Clear(r, g, b, a float32) { c.Clears++ }

// SetBlend implements gfx.Context.
func (c *Context) SetBlend(b gfx.Blend) { c.Blend = b }

// SetDepth implements gfx.Context.
func (c *Context) SetDepth(test, write bool) { c.Depth = [2]bool{test, write} }

// DrawFullscreen implements gfx.Context.
func (c *Context) DrawFullscreen() { c.record(0, gfx.TriangleStrip, 4) }

// ReadPixels implements gfx.Context. Pixels are opaque grey.
func (c *Context) ReadPixels(width, height int32) []byte {
	pix := make([]byte, int(width)*int(height)*4)
	for i := range pix {
		pix[i] = 0x80
		if i%4 == 3 {
			pix[i] = 0xff
		}
	}
	return pix
}

// DrawsWith returns the draws issued with the named program.
func (c *Context) DrawsWith(name string) []Draw {
	var out []Draw
	for _, d := range c.Draws {
		if d.Name == name {
			out = append(out, d)
		}
	}
	return out
}

// Reset forgets recorded draws and bindings but keeps resources.
func (c *Context) Reset() {
	c.Draws = nil
	c.Bindings = nil
	c.Clears = 0
}
