package glgfx

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/logger"
)

// target is an offscreen framebuffer with N float colour attachments and a
// sampleable depth texture.
type target struct {
	fbo    uint32
	colors []uint32
	depth  uint32
	width  int32
	height int32
}

// CreateTarget creates a framebuffer with the specified dimensions.
func (c *Context) CreateTarget(width, height int32, colorAttachments int) (gfx.Target, error) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if colorAttachments < 1 {
		colorAttachments = 1
	}

	t := &target{width: width, height: height, colors: make([]uint32, colorAttachments)}

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)

	drawBuffers := make([]uint32, colorAttachments)
	gl.GenTextures(int32(colorAttachments), &t.colors[0])
	for i, tex := range t.colors {
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(i), gl.TEXTURE_2D, tex, 0)
		drawBuffers[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])

	gl.GenTextures(1, &t.depth)
	gl.BindTexture(gl.TEXTURE_2D, t.depth)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.depth, 0)

	t.allocate()

	// Check framebuffer completeness
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		t.destroy()
		return 0, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}

	id := gfx.Target(t.fbo)
	c.targets[id] = t
	logger.Debug("render target created",
		zap.Uint32("fbo", t.fbo),
		zap.Int("attachments", colorAttachments),
		zap.Int32("width", width),
		zap.Int32("height", height),
	)
	return id, nil
}

// allocate (re)specifies texture storage for the current size.
func (t *target) allocate() {
	for _, tex := range t.colors {
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, t.width, t.height, 0, gl.RGBA, gl.FLOAT, nil)
	}
	gl.BindTexture(gl.TEXTURE_2D, t.depth)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, t.width, t.height, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (t *target) destroy() {
	if t.fbo != 0 {
		gl.DeleteFramebuffers(1, &t.fbo)
		t.fbo = 0
	}
	if len(t.colors) > 0 {
		gl.DeleteTextures(int32(len(t.colors)), &t.colors[0])
		t.colors = nil
	}
	if t.depth != 0 {
		gl.DeleteTextures(1, &t.depth)
		t.depth = 0
	}
}

// ResizeTarget updates the target dimensions if they have changed.
func (c *Context) ResizeTarget(id gfx.Target, width, height int32) {
	t, ok := c.targets[id]
	if !ok || (width == t.width && height == t.height) {
		return
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	t.width, t.height = width, height
	t.allocate()
}

// BindTarget makes the target current and sets the viewport to its size.
// Binding gfx.DefaultTarget restores the window framebuffer.
func (c *Context) BindTarget(id gfx.Target) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(id))
	if t, ok := c.targets[id]; ok {
		gl.Viewport(0, 0, t.width, t.height)
	}
}

// TargetTexture returns the colour attachment texture.
func (c *Context) TargetTexture(id gfx.Target, attachment int) gfx.Texture {
	t, ok := c.targets[id]
	if !ok || attachment < 0 || attachment >= len(t.colors) {
		return 0
	}
	return gfx.Texture(t.colors[attachment])
}

// TargetDepth returns the depth attachment texture.
func (c *Context) TargetDepth(id gfx.Target) gfx.Texture {
	if t, ok := c.targets[id]; ok {
		return gfx.Texture(t.depth)
	}
	return 0
}

// DeleteTarget releases all OpenGL resources of the target.
func (c *Context) DeleteTarget(id gfx.Target) {
	if t, ok := c.targets[id]; ok {
		t.destroy()
		delete(c.targets, id)
	}
}
