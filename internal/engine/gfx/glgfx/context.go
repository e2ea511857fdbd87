// Package glgfx implements gfx.Context on OpenGL 4.1 core.
package glgfx

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/logger"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Context is an OpenGL graphics context.
// IMPORTANT: Must be created AFTER the OpenGL context is current!
type Context struct {
	uniforms map[gfx.Program]map[string]int32
	meshes   map[gfx.Mesh]*mesh
	targets  map[gfx.Target]*target

	quadVAO uint32
	quadVBO uint32
}

var _ gfx.Context = (*Context)(nil)

// New initializes OpenGL function pointers and default state.
func New() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	// Log OpenGL info
	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	return &Context{
		uniforms: make(map[gfx.Program]map[string]int32),
		meshes:   make(map[gfx.Mesh]*mesh),
		targets:  make(map[gfx.Target]*target),
	}, nil
}

// Close releases context-owned helper resources.
func (c *Context) Close() {
	logger.Info("closing graphics context")
	if c.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &c.quadVAO)
		gl.DeleteBuffers(1, &c.quadVBO)
		c.quadVAO, c.quadVBO = 0, 0
	}
	for m := range c.meshes {
		c.DeleteMesh(m)
	}
	for t := range c.targets {
		c.DeleteTarget(t)
	}
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
func (c *Context) CompileProgram(name, vertexSrc, fragmentSrc string) (gfx.Program, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: %s: link: %s", gfx.ErrCompile, name, string(log))
	}

	p := gfx.Program(program)
	c.uniforms[p] = make(map[string]int32)
	return p, nil
}

// compileShader compiles a single shader of the given type.
func compileShader(source string, shaderType uint32, kind string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s shader: %s", gfx.ErrCompile, kind, string(log))
	}

	return shader, nil
}

// UseProgram implements gfx.Context.
func (c *Context) UseProgram(p gfx.Program) {
	gl.UseProgram(uint32(p))
}

// DeleteProgram implements gfx.Context.
func (c *Context) DeleteProgram(p gfx.Program) {
	gl.DeleteProgram(uint32(p))
	delete(c.uniforms, p)
}

// location returns the cached uniform location, -1 when inactive.
func (c *Context) location(p gfx.Program, name string) int32 {
	locs, ok := c.uniforms[p]
	if !ok {
		locs = make(map[string]int32)
		c.uniforms[p] = locs
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
	locs[name] = loc
	return loc
}

// SetMat4 implements gfx.Context.
func (c *Context) SetMat4(p gfx.Program, name string, m math.Mat4) {
	if loc := c.location(p, name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, m.Ptr())
	}
}

// SetMat3 implements gfx.Context.
func (c *Context) SetMat3(p gfx.Program, name string, m [9]float32) {
	if loc := c.location(p, name); loc >= 0 {
		gl.UniformMatrix3fv(loc, 1, false, &m[0])
	}
}

// SetVec3 implements gfx.Context.
func (c *Context) SetVec3(p gfx.Program, name string, v math.Vec3) {
	if loc := c.location(p, name); loc >= 0 {
		gl.Uniform3f(loc, v.X, v.Y, v.Z)
	}
}

// SetVec4 implements gfx.Context.
func (c *Context) SetVec4(p gfx.Program, name string, v [4]float32) {
	if loc := c.location(p, name); loc >= 0 {
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	}
}

// SetFloat implements gfx.Context.
func (c *Context) SetFloat(p gfx.Program, name string, f float32) {
	if loc := c.location(p, name); loc >= 0 {
		gl.Uniform1f(loc, f)
	}
}

// SetInt implements gfx.Context.
func (c *Context) SetInt(p gfx.Program, name string, i int32) {
	if loc := c.location(p, name); loc >= 0 {
		gl.Uniform1i(loc, i)
	}
}

// UploadTexture implements gfx.Context.
func (c *Context) UploadTexture(img *image.RGBA) (gfx.Texture, error) {
	w, h := int32(img.Rect.Dx()), int32(img.Rect.Dy())
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("empty texture image")
	}

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return gfx.Texture(tex), nil
}

// BindTexture implements gfx.Context.
func (c *Context) BindTexture(unit int32, t gfx.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

// DeleteTexture implements gfx.Context.
func (c *Context) DeleteTexture(t gfx.Texture) {
	tex := uint32(t)
	gl.DeleteTextures(1, &tex)
}

// Viewport implements gfx.Context.
func (c *Context) Viewport(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

// Clear implements gfx.Context.
func (c *Context) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// SetBlend implements gfx.Context.
func (c *Context) SetBlend(b gfx.Blend) {
	if !b.Enabled {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(blendFactor(b.Src), blendFactor(b.Dst))
}

func blendFactor(f gfx.BlendFactor) uint32 {
	switch f {
	case gfx.Zero:
		return gl.ZERO
	case gfx.One:
		return gl.ONE
	case gfx.SrcAlpha:
		return gl.SRC_ALPHA
	case gfx.OneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	}
	return gl.ONE
}

// SetDepth implements gfx.Context.
func (c *Context) SetDepth(test, write bool) {
	if test {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(write)
}

// DrawFullscreen draws a screen-covering quad with the current program.
func (c *Context) DrawFullscreen() {
	if c.quadVAO == 0 {
		// x, y, u, v
		quad := []float32{
			-1, -1, 0, 0,
			1, -1, 1, 0,
			-1, 1, 0, 1,
			1, 1, 1, 1,
		}
		gl.GenVertexArrays(1, &c.quadVAO)
		gl.BindVertexArray(c.quadVAO)
		gl.GenBuffers(1, &c.quadVBO)
		gl.BindBuffer(gl.ARRAY_BUFFER, c.quadVBO)
		gl.BufferData(gl.ARRAY_BUFFER, len(quad)*4, gl.Ptr(quad), gl.STATIC_DRAW)
		gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 4*4, 0)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, 4*4, 2*4)
		gl.EnableVertexAttribArray(2)
	}
	gl.BindVertexArray(c.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
}

// ReadPixels implements gfx.Context.
func (c *Context) ReadPixels(width, height int32) []byte {
	pix := make([]byte, int(width)*int(height)*4)
	gl.ReadPixels(0, 0, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	return pix
}
