package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/material"
	"github.com/Faultbox/roguelike3d/internal/engine/mesh"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

func setup(t *testing.T) (*gfxtest.Context, *gfx.ProgramCache, *camera.Camera, gfx.Mesh) {
	t.Helper()
	ctx := gfxtest.New()
	g := mesh.Box(math.Vec3{X: 1, Y: 1, Z: 1})
	m, err := ctx.UploadMesh(g.Vertices, g.Indices)
	require.NoError(t, err)
	return ctx, gfx.NewProgramCache(), camera.NewPerspective(67, 800, 600), m
}

func drawAt(m gfx.Mesh, z float32, mat *material.Material) DrawCall {
	return DrawCall{
		Mesh:      m,
		Primitive: gfx.Triangles,
		Transform: math.Translate(0, 0, z),
		Material:  mat,
		Radius:    1,
	}
}

func lightsAround(n int) *lighting.Manager {
	m := lighting.NewManager(math.Vec3{X: 0.1, Y: 0.1, Z: 0.1})
	for i := 0; i < n; i++ {
		m.Add(lighting.Light{Position: math.Vec3{X: float32(i), Z: -5}, Colour: math.Vec3{X: 1}, Attenuation: 0.1})
	}
	return m
}

func TestNewSelectsByQuality(t *testing.T) {
	ctx, cache, _, _ := setup(t)

	r, err := New("forward", ctx, cache)
	require.NoError(t, err)
	assert.Equal(t, "Forward", r.Name())

	r, err = New("deferred", ctx, cache)
	require.NoError(t, err)
	assert.Equal(t, "Deferred - Final", r.Name())

	_, err = New("raytraced", ctx, cache)
	assert.True(t, errors.Is(err, ErrUnsupportedLightQuality))
	assert.Contains(t, err.Error(), "raytraced")
}

func TestForwardClampsToThreeLights(t *testing.T) {
	ctx, cache, cam, m := setup(t)
	f := NewForward(ctx, cache)
	require.NoError(t, f.CreateShader())
	require.NoError(t, f.UpdateResolution(800, 600))

	f.Begin(cam)
	f.Draw(drawAt(m, -5, material.New("basic")))
	f.End(lightsAround(5))

	draws := ctx.DrawsWith(PermutationKey(3))
	require.Len(t, draws, 1)
	d := draws[0]
	assert.Contains(t, d.Vec3s, "u_lightPosition[2]")
	assert.NotContains(t, d.Vec3s, "u_lightPosition[3]")
	assert.Equal(t, float32(0.1), d.Floats["u_lightAttenuation[0]"])
	assert.Equal(t, math.Vec3{X: 0.1, Y: 0.1, Z: 0.1}, d.Vec3s[uniformAmbient])
	assert.Equal(t, 1, f.Stats().Draws)
	assert.Equal(t, 3, f.Stats().Lights)
}

func TestForwardLightCountSelectsPermutation(t *testing.T) {
	for n := 0; n <= MaxForwardLights; n++ {
		ctx, cache, cam, m := setup(t)
		f := NewForward(ctx, cache)
		require.NoError(t, f.CreateShader())

		f.Begin(cam)
		f.Draw(drawAt(m, -5, nil))
		f.End(lightsAround(n))

		assert.Len(t, ctx.DrawsWith(PermutationKey(n)), 1, "lights=%d", n)
	}
}

func TestForwardFallsBackWhenPermutationFails(t *testing.T) {
	ctx, cache, cam, m := setup(t)
	ctx.Fail[PermutationKey(3)] = true
	ctx.Fail[PermutationKey(2)] = true

	f := NewForward(ctx, cache)
	require.NoError(t, f.CreateShader())

	f.Begin(cam)
	f.Draw(drawAt(m, -5, nil))
	f.End(lightsAround(5))

	assert.Len(t, ctx.DrawsWith(PermutationKey(1)), 1)
	assert.Empty(t, ctx.DrawsWith(PermutationKey(3)))
}

func TestForwardNoShaders(t *testing.T) {
	ctx, cache, _, _ := setup(t)
	for n := 0; n <= MaxForwardLights; n++ {
		ctx.Fail[PermutationKey(n)] = true
	}
	err := NewForward(ctx, cache).CreateShader()
	require.Error(t, err)
	assert.True(t, errors.Is(err, gfx.ErrCompile))
}

func TestForwardClampLights(t *testing.T) {
	ctx, cache, cam, m := setup(t)
	f := NewForward(ctx, cache)
	require.NoError(t, f.CreateShader())
	f.ClampLights(1)
	assert.Equal(t, 1, f.MaxLights())
	f.ClampLights(10)
	assert.Equal(t, MaxForwardLights, f.MaxLights())
	f.ClampLights(1)

	f.Begin(cam)
	f.Draw(drawAt(m, -5, nil))
	f.End(lightsAround(4))
	assert.Len(t, ctx.DrawsWith(PermutationKey(1)), 1)
}

func TestForwardSortsTranslucentBackToFront(t *testing.T) {
	ctx, cache, cam, m := setup(t)
	f := NewForward(ctx, cache)
	require.NoError(t, f.CreateShader())

	glass := material.New("glass", material.NewBlending())
	f.Begin(cam)
	f.Draw(drawAt(m, -3, glass))
	f.Draw(drawAt(m, -4, material.New("stone")))
	f.Draw(drawAt(m, -9, glass))
	f.End(nil)

	require.Len(t, ctx.Draws, 3)
	z := func(i int) float32 { return ctx.Draws[i].Mat4s[uniformModel].Translation().Z }
	assert.Equal(t, float32(-4), z(0))
	assert.False(t, ctx.Draws[0].Blend.Enabled)
	assert.Equal(t, float32(-9), z(1))
	assert.Equal(t, float32(-3), z(2))
	assert.True(t, ctx.Draws[2].Blend.Enabled)
}

func TestForwardCullsAndRestoresTarget(t *testing.T) {
	ctx, cache, cam, m := setup(t)
	f := NewForward(ctx, cache)
	require.NoError(t, f.CreateShader())

	f.Begin(cam)
	f.Draw(drawAt(m, 10, nil))
	f.End(lightsAround(1))

	assert.Empty(t, ctx.Draws)
	assert.Equal(t, 1, f.Stats().Culled)
	assert.Equal(t, gfx.DefaultTarget, ctx.Target)

	ctx.Reset()
	f.Begin(cam)
	f.End(nil)
	require.NotEmpty(t, ctx.Bindings)
	assert.Equal(t, gfx.DefaultTarget, ctx.Bindings[len(ctx.Bindings)-1])
}

func TestForwardDispose(t *testing.T) {
	ctx, cache, _, _ := setup(t)
	f := NewForward(ctx, cache)
	require.NoError(t, f.CreateShader())
	assert.Equal(t, MaxForwardLights+1, cache.Len())
	f.Dispose()
	assert.Zero(t, cache.Len())
}

func TestDeferredPasses(t *testing.T) {
	ctx, cache, cam, m := setup(t)
	r := NewDeferred(ctx, cache)
	require.NoError(t, r.CreateShader())
	require.NoError(t, r.UpdateResolution(800, 600))
	require.Len(t, ctx.Targets, 2)
	assert.Equal(t, 4, ctx.Attachments[r.gbuffer], "albedo, normal, position and baked light")
	assert.Equal(t, 1, ctx.Attachments[r.lighting])

	r.Begin(cam)
	assert.Equal(t, r.gbuffer, ctx.Target)
	r.Draw(drawAt(m, -5, material.New("basic")))
	r.Draw(drawAt(m, -6, material.New("glass", material.NewBlending())))
	lights := lightsAround(2)
	lights.AddStatic(lighting.Light{Colour: math.Vec3{Y: 1}})
	r.End(lights)

	geometry := ctx.DrawsWith(GBufferKey)
	require.Len(t, geometry, 2)
	for _, d := range geometry {
		assert.Equal(t, r.gbuffer, d.Target)
		assert.False(t, d.Blend.Enabled)
	}

	light := ctx.DrawsWith(LightKey)
	require.Len(t, light, 2)
	assert.Equal(t, r.lighting, light[0].Target)
	assert.Equal(t, blendAccumulate, light[0].Blend)

	composite := ctx.DrawsWith(CompositeKey)
	require.Len(t, composite, 1)
	assert.Equal(t, gfx.DefaultTarget, composite[0].Target)
	assert.Equal(t, int32(ViewFinal), composite[0].Ints["u_bufferView"])
	unit := composite[0].Ints["u_baked"]
	assert.Equal(t, ctx.TargetTexture(r.gbuffer, attachmentBaked), ctx.Bound[unit], "baked light keeps its colour")
	assert.Equal(t, gfx.DefaultTarget, ctx.Target)
}

func TestDeferredBufferViewCycles(t *testing.T) {
	ctx, cache, _, _ := setup(t)
	r := NewDeferred(ctx, cache)

	names := []string{
		"Deferred - Geometry",
		"Deferred - Normals",
		"Deferred - Depth",
		"Deferred - Lighting",
		"Deferred - Final",
	}
	for _, want := range names {
		r.CycleBufferView()
		assert.Equal(t, want, r.Name())
	}
	assert.Equal(t, ViewFinal, r.View)
}

func TestDeferredEndWithoutDrawsRestoresTarget(t *testing.T) {
	ctx, cache, cam, _ := setup(t)
	r := NewDeferred(ctx, cache)
	require.NoError(t, r.CreateShader())
	require.NoError(t, r.UpdateResolution(320, 240))

	r.Begin(cam)
	r.End(nil)
	assert.Equal(t, gfx.DefaultTarget, ctx.Target)
	assert.Len(t, ctx.DrawsWith(CompositeKey), 1)
}

func TestDeferredErrors(t *testing.T) {
	ctx, cache, _, _ := setup(t)
	ctx.Fail[LightKey] = true
	assert.Error(t, NewDeferred(ctx, cache).CreateShader())

	ctx.FailTargets = true
	assert.Error(t, NewDeferred(ctx, cache).UpdateResolution(640, 480))
}

func TestDeferredResizeAndDispose(t *testing.T) {
	ctx, cache, _, _ := setup(t)
	r := NewDeferred(ctx, cache)
	require.NoError(t, r.CreateShader())
	require.NoError(t, r.UpdateResolution(640, 480))
	require.NoError(t, r.UpdateResolution(1024, 768))

	assert.Len(t, ctx.Targets, 2)
	for _, size := range ctx.Targets {
		assert.Equal(t, [2]int32{1024, 768}, size)
	}

	r.Dispose()
	assert.Empty(t, ctx.Targets)
	assert.Zero(t, cache.Len())
}
