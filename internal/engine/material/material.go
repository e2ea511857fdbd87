package material

import (
	"fmt"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
)

// TextureSource resolves texture names to handles.
type TextureSource interface {
	Get(name string) (gfx.Texture, error)
}

// Material is a named list of attributes.
type Material struct {
	Name       string
	Attributes []Attribute
}

// New creates a material with the given attributes.
func New(name string, attrs ...Attribute) *Material {
	return &Material{Name: name, Attributes: attrs}
}

// SetTexture replaces the material's texture attribute, or adds one.
func (m *Material) SetTexture(name string) {
	for _, a := range m.Attributes {
		if t, ok := a.(*Texture); ok {
			t.Name = name
			t.Handle = 0
			return
		}
	}
	m.Attributes = append(m.Attributes, &Texture{Name: name})
}

// TextureName returns the name of the material's texture, if any.
func (m *Material) TextureName() string {
	for _, a := range m.Attributes {
		if t, ok := a.(*Texture); ok {
			return t.Name
		}
	}
	return ""
}

// Translucent reports whether the material blends.
func (m *Material) Translucent() bool {
	for _, a := range m.Attributes {
		if _, ok := a.(*Blending); ok {
			return true
		}
	}
	return false
}

// Resolve looks up every texture attribute's handle.
func (m *Material) Resolve(src TextureSource) error {
	for _, a := range m.Attributes {
		t, ok := a.(*Texture)
		if !ok {
			continue
		}
		h, err := src.Get(t.Name)
		if err != nil {
			return fmt.Errorf("material %s: %w", m.Name, err)
		}
		t.Handle = h
	}
	return nil
}

// Bind resets blending and colour to opaque white, then binds each attribute.
func (m *Material) Bind(ctx gfx.Context, p gfx.Program) {
	ctx.SetBlend(gfx.BlendOff)
	ctx.SetVec4(p, UniformColour, [4]float32{1, 1, 1, 1})
	for _, a := range m.Attributes {
		a.Bind(ctx, p)
	}
}

// Copy returns a deep copy.
func (m *Material) Copy() *Material {
	c := &Material{Name: m.Name, Attributes: make([]Attribute, len(m.Attributes))}
	for i, a := range m.Attributes {
		c.Attributes[i] = a.Copy()
	}
	return c
}

// PooledCopy returns a copy whose attributes come from the pools. Release
// it with Free.
func (m *Material) PooledCopy() *Material {
	c := &Material{Name: m.Name, Attributes: make([]Attribute, len(m.Attributes))}
	for i, a := range m.Attributes {
		c.Attributes[i] = a.PooledCopy()
	}
	return c
}

// Free releases pooled attributes.
func (m *Material) Free() {
	for _, a := range m.Attributes {
		a.Free()
	}
	m.Attributes = m.Attributes[:0]
}
