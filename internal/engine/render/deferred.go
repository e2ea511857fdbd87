package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/shaders"
	"github.com/Faultbox/roguelike3d/internal/logger"
)

// Program cache keys for the deferred passes.
const (
	GBufferKey   = "deferred/gbuffer"
	LightKey     = "deferred/light"
	CompositeKey = "deferred/composite"
)

// G-buffer colour attachments.
const (
	attachmentAlbedo = iota
	attachmentNormal
	attachmentPosition
	attachmentBaked // static light baked into vertex colours
	gbufferAttachments
)

// BufferView selects what the composite pass shows.
type BufferView int

const (
	ViewFinal BufferView = iota
	ViewGeometry
	ViewNormals
	ViewDepth
	ViewLighting
	bufferViews
)

func (v BufferView) String() string {
	switch v {
	case ViewGeometry:
		return "Geometry"
	case ViewNormals:
		return "Normals"
	case ViewDepth:
		return "Depth"
	case ViewLighting:
		return "Lighting"
	}
	return "Final"
}

var blendAccumulate = gfx.Blend{Enabled: true, Src: gfx.One, Dst: gfx.One}

// Deferred writes geometry to a G-buffer, accumulates every dynamic light
// in a second pass and composites the result to the default target.
type Deferred struct {
	ctx   gfx.Context
	cache *gfx.ProgramCache

	geometry, light, composite gfx.Program
	ready                      bool

	gbuffer, lighting gfx.Target
	width, height     int32

	// View is the buffer shown by the composite pass.
	View BufferView

	cam   *camera.Camera
	queue []DrawCall
	stats Stats
}

// NewDeferred creates a deferred renderer. Call CreateShader and
// UpdateResolution before use.
func NewDeferred(ctx gfx.Context, cache *gfx.ProgramCache) *Deferred {
	return &Deferred{ctx: ctx, cache: cache}
}

// CreateShader compiles the three pass programs. All are required.
func (r *Deferred) CreateShader() error {
	var err error
	if r.geometry, err = r.cache.GetOrCreate(r.ctx, GBufferKey, shaders.GBuffer()); err != nil {
		return fmt.Errorf("deferred renderer: %w", err)
	}
	if r.light, err = r.cache.GetOrCreate(r.ctx, LightKey, shaders.Light()); err != nil {
		return fmt.Errorf("deferred renderer: %w", err)
	}
	if r.composite, err = r.cache.GetOrCreate(r.ctx, CompositeKey, shaders.Composite()); err != nil {
		return fmt.Errorf("deferred renderer: %w", err)
	}
	r.ready = true
	return nil
}

// UpdateResolution creates or resizes the G-buffer and light target.
func (r *Deferred) UpdateResolution(width, height int32) error {
	r.width, r.height = width, height
	if r.gbuffer != 0 {
		r.ctx.ResizeTarget(r.gbuffer, width, height)
		r.ctx.ResizeTarget(r.lighting, width, height)
		return nil
	}

	g, err := r.ctx.CreateTarget(width, height, gbufferAttachments)
	if err != nil {
		return fmt.Errorf("create g-buffer: %w", err)
	}
	l, err := r.ctx.CreateTarget(width, height, 1)
	if err != nil {
		r.ctx.DeleteTarget(g)
		return fmt.Errorf("create light target: %w", err)
	}
	r.gbuffer, r.lighting = g, l
	logger.Debug("g-buffer created", zap.Int32("width", width), zap.Int32("height", height))
	return nil
}

// CycleBufferView advances View, wrapping after Lighting.
func (r *Deferred) CycleBufferView() BufferView {
	r.View = (r.View + 1) % bufferViews
	return r.View
}

// Begin binds the G-buffer and clears it.
func (r *Deferred) Begin(cam *camera.Camera) {
	r.cam = cam
	r.queue = r.queue[:0]
	if r.gbuffer == 0 {
		return
	}
	r.ctx.BindTarget(r.gbuffer)
	r.ctx.SetDepth(true, true)
	r.ctx.SetBlend(gfx.BlendOff)
	r.ctx.Clear(0, 0, 0, 0)
}

// Draw queues a submesh.
func (r *Deferred) Draw(d DrawCall) {
	r.queue = append(r.queue, d)
}

// End runs the geometry, light and composite passes.
func (r *Deferred) End(lights *lighting.Manager) {
	r.stats = Stats{}
	if r.ready && r.gbuffer != 0 && r.cam != nil {
		r.geometryPass()
		r.lightPass(lights)
		r.compositePass(lights)
	}
	r.queue = r.queue[:0]
	r.ctx.SetBlend(gfx.BlendOff)
	r.ctx.SetDepth(true, true)
	r.ctx.BindTarget(gfx.DefaultTarget)
}

func (r *Deferred) geometryPass() {
	r.ctx.UseProgram(r.geometry)
	for _, d := range r.queue {
		if !visible(r.cam, d) {
			r.stats.Culled++
			continue
		}
		bindTransform(r.ctx, r.geometry, r.cam, d.Transform)
		if d.Material != nil {
			d.Material.Bind(r.ctx, r.geometry)
		}
		// The G-buffer stores one surface per pixel.
		r.ctx.SetBlend(gfx.BlendOff)
		r.ctx.DrawMesh(d.Mesh, d.Primitive)
		r.stats.Draws++
	}
}

func (r *Deferred) lightPass(lights *lighting.Manager) {
	r.ctx.BindTarget(r.lighting)
	r.ctx.SetDepth(false, false)
	r.ctx.Clear(0, 0, 0, 1)
	if lights == nil {
		return
	}
	r.ctx.SetBlend(blendAccumulate)
	r.ctx.UseProgram(r.light)
	r.ctx.BindTexture(0, r.ctx.TargetTexture(r.gbuffer, attachmentNormal))
	r.ctx.BindTexture(1, r.ctx.TargetTexture(r.gbuffer, attachmentPosition))
	r.ctx.SetInt(r.light, "u_normals", 0)
	r.ctx.SetInt(r.light, "u_positions", 1)
	for _, l := range lights.Dynamics() {
		r.ctx.SetVec3(r.light, "u_lightPosition", l.Position)
		r.ctx.SetVec3(r.light, "u_lightColour", l.Colour)
		r.ctx.SetFloat(r.light, "u_lightAttenuation", l.Attenuation)
		r.ctx.DrawFullscreen()
		r.stats.Lights++
	}
}

func (r *Deferred) compositePass(lights *lighting.Manager) {
	r.ctx.BindTarget(gfx.DefaultTarget)
	r.ctx.Viewport(r.width, r.height)
	r.ctx.SetBlend(gfx.BlendOff)
	r.ctx.SetDepth(false, false)
	r.ctx.Clear(0, 0, 0, 1)

	r.ctx.UseProgram(r.composite)
	samplers := []struct {
		name string
		tex  gfx.Texture
	}{
		{"u_albedo", r.ctx.TargetTexture(r.gbuffer, attachmentAlbedo)},
		{"u_normals", r.ctx.TargetTexture(r.gbuffer, attachmentNormal)},
		{"u_baked", r.ctx.TargetTexture(r.gbuffer, attachmentBaked)},
		{"u_depth", r.ctx.TargetDepth(r.gbuffer)},
		{"u_lighting", r.ctx.TargetTexture(r.lighting, 0)},
	}
	for i, s := range samplers {
		r.ctx.BindTexture(int32(i), s.tex)
		r.ctx.SetInt(r.composite, s.name, int32(i))
	}
	if lights != nil {
		r.ctx.SetVec3(r.composite, uniformAmbient, lights.Ambient)
	}
	r.ctx.SetInt(r.composite, "u_bufferView", int32(r.View))
	r.ctx.DrawFullscreen()
}

// Stats returns counters for the last frame.
func (r *Deferred) Stats() Stats { return r.stats }

// Dispose releases targets and programs.
func (r *Deferred) Dispose() {
	if r.gbuffer != 0 {
		r.ctx.DeleteTarget(r.gbuffer)
		r.ctx.DeleteTarget(r.lighting)
		r.gbuffer, r.lighting = 0, 0
	}
	if r.ready {
		r.cache.Dispose(r.ctx, GBufferKey)
		r.cache.Dispose(r.ctx, LightKey)
		r.cache.Dispose(r.ctx, CompositeKey)
		r.ready = false
	}
}

// Name implements Renderer.
func (r *Deferred) Name() string {
	return "Deferred - " + r.View.String()
}

// String returns Name.
func (r *Deferred) String() string { return r.Name() }
