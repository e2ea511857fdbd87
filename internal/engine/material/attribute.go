// Package material provides materials built from bindable attributes.
package material

import (
	"sync"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
)

// Uniform names attributes bind to.
const (
	UniformTexture = "u_texture"
	UniformColour  = "u_colour"
)

// Attribute is one piece of material state.
type Attribute interface {
	// Bind applies the attribute to the context and program.
	Bind(ctx gfx.Context, p gfx.Program)
	// Copy returns an independent copy.
	Copy() Attribute
	// PooledCopy returns a copy from the attribute's pool; call Free when done.
	PooledCopy() Attribute
	// Free returns a pooled copy to its pool. It is a no-op otherwise.
	Free()
}

// Blending enables alpha blending with the given factors.
type Blending struct {
	Src, Dst gfx.BlendFactor

	pooled bool
}

var blendingPool = sync.Pool{New: func() any { return new(Blending) }}

// NewBlending returns standard translucency (src alpha, one minus src alpha).
func NewBlending() *Blending {
	return &Blending{Src: gfx.SrcAlpha, Dst: gfx.OneMinusSrcAlpha}
}

func (b *Blending) Bind(ctx gfx.Context, _ gfx.Program) {
	ctx.SetBlend(gfx.Blend{Enabled: true, Src: b.Src, Dst: b.Dst})
}

func (b *Blending) Copy() Attribute {
	return &Blending{Src: b.Src, Dst: b.Dst}
}

func (b *Blending) PooledCopy() Attribute {
	c := blendingPool.Get().(*Blending)
	c.Src, c.Dst, c.pooled = b.Src, b.Dst, true
	return c
}

func (b *Blending) Free() {
	if b.pooled {
		b.pooled = false
		blendingPool.Put(b)
	}
}

// Texture binds a named texture to a unit. Handle is filled in by Resolve.
type Texture struct {
	Name   string
	Unit   int32
	Handle gfx.Texture

	pooled bool
}

var texturePool = sync.Pool{New: func() any { return new(Texture) }}

func (t *Texture) Bind(ctx gfx.Context, p gfx.Program) {
	ctx.BindTexture(t.Unit, t.Handle)
	ctx.SetInt(p, UniformTexture, t.Unit)
}

func (t *Texture) Copy() Attribute {
	return &Texture{Name: t.Name, Unit: t.Unit, Handle: t.Handle}
}

func (t *Texture) PooledCopy() Attribute {
	c := texturePool.Get().(*Texture)
	c.Name, c.Unit, c.Handle, c.pooled = t.Name, t.Unit, t.Handle, true
	return c
}

func (t *Texture) Free() {
	if t.pooled {
		t.pooled = false
		texturePool.Put(t)
	}
}

// Colour tints the surface.
type Colour struct {
	RGBA [4]float32

	pooled bool
}

var colourPool = sync.Pool{New: func() any { return new(Colour) }}

func (c *Colour) Bind(ctx gfx.Context, p gfx.Program) {
	ctx.SetVec4(p, UniformColour, c.RGBA)
}

func (c *Colour) Copy() Attribute {
	return &Colour{RGBA: c.RGBA}
}

func (c *Colour) PooledCopy() Attribute {
	n := colourPool.Get().(*Colour)
	n.RGBA, n.pooled = c.RGBA, true
	return n
}

func (c *Colour) Free() {
	if c.pooled {
		c.pooled = false
		colourPool.Put(c)
	}
}
