package render

import (
	"cmp"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/shaders"
	"github.com/Faultbox/roguelike3d/internal/logger"
)

// MaxForwardLights is the highest light count with its own shader permutation.
const MaxForwardLights = 3

// Forward lights each draw in the vertex shader with up to MaxForwardLights
// dynamic lights.
type Forward struct {
	ctx   gfx.Context
	cache *gfx.ProgramCache

	programs  [MaxForwardLights + 1]gfx.Program
	compiled  [MaxForwardLights + 1]bool
	maxLights int

	width, height int32

	cam     *camera.Camera
	opaque  []DrawCall
	blended []DrawCall
	scratch []lighting.Light
	stats   Stats
}

// NewForward creates a forward renderer. Call CreateShader before use.
func NewForward(ctx gfx.Context, cache *gfx.ProgramCache) *Forward {
	return &Forward{
		ctx:       ctx,
		cache:     cache,
		maxLights: MaxForwardLights,
		scratch:   make([]lighting.Light, 0, MaxForwardLights),
	}
}

// PermutationKey names the program for n lights.
func PermutationKey(n int) string {
	return fmt.Sprintf("forward/%d", n)
}

// CreateShader compiles every light permutation. Permutations that fail are
// left out; it is an error only if none compile.
func (f *Forward) CreateShader() error {
	var firstErr error
	for n := 0; n <= MaxForwardLights; n++ {
		p, err := f.cache.GetOrCreate(f.ctx, PermutationKey(n), shaders.Forward(n))
		if err != nil {
			logger.Warn("forward permutation unavailable", zap.Int("lights", n), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		f.programs[n] = p
		f.compiled[n] = true
	}
	if !slices.Contains(f.compiled[:], true) {
		return fmt.Errorf("forward renderer: no shader compiled: %w", firstErr)
	}
	return nil
}

// ClampLights lowers the per-draw light limit, capped at MaxForwardLights.
func (f *Forward) ClampLights(n int) {
	f.maxLights = max(0, min(n, MaxForwardLights))
}

// MaxLights returns the per-draw light limit.
func (f *Forward) MaxLights() int { return f.maxLights }

// program returns the highest compiled permutation with at most n lights.
func (f *Forward) program(n int) (gfx.Program, int, bool) {
	for k := min(n, f.maxLights); k >= 0; k-- {
		if f.compiled[k] {
			return f.programs[k], k, true
		}
	}
	return 0, 0, false
}

// UpdateResolution records the default framebuffer size.
func (f *Forward) UpdateResolution(width, height int32) error {
	f.width, f.height = width, height
	return nil
}

// Begin starts a frame on the default target.
func (f *Forward) Begin(cam *camera.Camera) {
	f.cam = cam
	f.opaque = f.opaque[:0]
	f.blended = f.blended[:0]
	f.ctx.BindTarget(gfx.DefaultTarget)
	f.ctx.Viewport(f.width, f.height)
	f.ctx.SetDepth(true, true)
	f.ctx.SetBlend(gfx.BlendOff)
	f.ctx.Clear(0, 0, 0, 1)
}

// Draw queues a submesh.
func (f *Forward) Draw(d DrawCall) {
	if d.Material != nil && d.Material.Translucent() {
		f.blended = append(f.blended, d)
		return
	}
	f.opaque = append(f.opaque, d)
}

// End draws opaque submissions in order, then translucent ones far to near.
func (f *Forward) End(lights *lighting.Manager) {
	f.stats = Stats{}
	if f.cam != nil {
		cam := f.cam
		slices.SortStableFunc(f.blended, func(a, b DrawCall) int {
			return cmp.Compare(b.Centre().Distance2(cam.Position), a.Centre().Distance2(cam.Position))
		})
		for _, d := range f.opaque {
			f.flush(d, lights)
		}
		for _, d := range f.blended {
			f.flush(d, lights)
		}
	}
	f.opaque = f.opaque[:0]
	f.blended = f.blended[:0]
	f.ctx.SetBlend(gfx.BlendOff)
	f.ctx.SetDepth(true, true)
	f.ctx.BindTarget(gfx.DefaultTarget)
}

func (f *Forward) flush(d DrawCall, lights *lighting.Manager) {
	if !visible(f.cam, d) {
		f.stats.Culled++
		return
	}

	f.scratch = f.scratch[:0]
	if lights != nil {
		f.scratch = lights.LightsFor(f.scratch, d.Centre(), d.Radius, f.maxLights)
	}
	p, n, ok := f.program(len(f.scratch))
	if !ok {
		return
	}

	f.ctx.UseProgram(p)
	bindTransform(f.ctx, p, f.cam, d.Transform)
	if lights != nil {
		f.ctx.SetVec3(p, uniformAmbient, lights.Ambient)
	}
	for i, l := range f.scratch[:n] {
		f.ctx.SetVec3(p, indexed("u_lightPosition", i), l.Position)
		f.ctx.SetVec3(p, indexed("u_lightColour", i), l.Colour)
		f.ctx.SetFloat(p, indexed("u_lightAttenuation", i), l.Attenuation)
	}
	if d.Material != nil {
		d.Material.Bind(f.ctx, p)
	}
	f.ctx.DrawMesh(d.Mesh, d.Primitive)
	f.stats.Draws++
	f.stats.Lights += n
}

// Stats returns counters for the last frame.
func (f *Forward) Stats() Stats { return f.stats }

// Dispose releases the permutation programs.
func (f *Forward) Dispose() {
	for n := range f.programs {
		if f.compiled[n] {
			f.cache.Dispose(f.ctx, PermutationKey(n))
			f.compiled[n] = false
		}
	}
}

// Name implements Renderer.
func (f *Forward) Name() string { return "Forward" }
