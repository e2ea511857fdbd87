// Package gfx defines the graphics context the renderer draws through.
//
// The engine never calls OpenGL directly outside of package glgfx; everything
// above it (materials, particles, rigged models, renderers) talks to a
// Context. Handles are opaque and zero means "none".
package gfx

import (
	"errors"
	"image"

	"github.com/Faultbox/roguelike3d/pkg/math"
)

// ErrCompile is wrapped by CompileProgram failures. The wrapping error
// carries the driver's compile or link log.
var ErrCompile = errors.New("shader compile failed")

// Program is a linked shader program.
type Program uint32

// Mesh is an uploaded vertex/index buffer pair.
type Mesh uint32

// Texture is a 2D texture.
type Texture uint32

// Target is an offscreen render target. Target 0 is the default framebuffer.
type Target uint32

// DefaultTarget is the window framebuffer.
const DefaultTarget Target = 0

// Primitive selects how mesh vertices are assembled.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
	Points
	TriangleStrip
)

// String returns the primitive name.
func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case Lines:
		return "lines"
	case Points:
		return "points"
	case TriangleStrip:
		return "triangle_strip"
	}
	return "unknown"
}

// BlendFactor is a blend equation factor.
type BlendFactor int

const (
	Zero BlendFactor = iota
	One
	SrcAlpha
	OneMinusSrcAlpha
)

// Blend describes the blend state for subsequent draws.
type Blend struct {
	Enabled bool
	Src     BlendFactor
	Dst     BlendFactor
}

// Common blend states.
var (
	BlendOff      = Blend{}
	BlendAlpha    = Blend{Enabled: true, Src: SrcAlpha, Dst: OneMinusSrcAlpha}
	BlendAdditive = Blend{Enabled: true, Src: SrcAlpha, Dst: One}
)

// Vertex is the single interleaved vertex layout used by every mesh.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord [2]float32
	Colour   [4]float32
}

// Context is a graphics device. All methods must be called from the render
// thread.
type Context interface {
	CompileProgram(name, vertexSrc, fragmentSrc string) (Program, error)
	UseProgram(p Program)
	DeleteProgram(p Program)

	SetMat4(p Program, name string, m math.Mat4)
	SetMat3(p Program, name string, m [9]float32)
	SetVec3(p Program, name string, v math.Vec3)
	SetVec4(p Program, name string, v [4]float32)
	SetFloat(p Program, name string, f float32)
	SetInt(p Program, name string, i int32)

	UploadMesh(vertices []Vertex, indices []uint32) (Mesh, error)
	UpdateMesh(m Mesh, vertices []Vertex)
	DrawMesh(m Mesh, prim Primitive)
	DrawMeshRange(m Mesh, prim Primitive, count int)
	DeleteMesh(m Mesh)

	UploadTexture(img *image.RGBA) (Texture, error)
	BindTexture(unit int32, t Texture)
	DeleteTexture(t Texture)

	CreateTarget(width, height int32, colorAttachments int) (Target, error)
	ResizeTarget(t Target, width, height int32)
	BindTarget(t Target)
	TargetTexture(t Target, attachment int) Texture
	TargetDepth(t Target) Texture
	DeleteTarget(t Target)

	Viewport(width, height int32)
	Clear(r, g, b, a float32)
	SetBlend(b Blend)
	SetDepth(test, write bool)
	DrawFullscreen()
	// ReadPixels returns the bound target's colour as bottom-up RGBA rows.
	ReadPixels(width, height int32) []byte
}
