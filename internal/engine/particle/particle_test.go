package particle

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

type blankTextures struct{}

func (blankTextures) Get(string) (gfx.Texture, error) { return 1, nil }

func newTorchEmitter() *Emitter {
	e := NewEmitter(math.Vec3{}, math.Vec3{X: 0.1, Y: 0.1, Z: 0.1}, 0.02, 350)
	e.SetTexture("texf", math.Vec3{Y: -0.7}, 4, [4]float32{0.6, 0.4, 1, 1}, [4]float32{0, 0, 0.6, 1}, true, 0.03)
	e.Seed(1)
	return e
}

func TestEmitterRespectsMax(t *testing.T) {
	e := newTorchEmitter()
	e.Max = 10

	e.Update(1)
	assert.Equal(t, 10, e.ActiveParticles())
}

func TestEmitterSpawnsAtRate(t *testing.T) {
	e := newTorchEmitter()
	e.Update(0.11)
	assert.Equal(t, 5, e.ActiveParticles())
}

func TestEmitterExpiresParticles(t *testing.T) {
	e := newTorchEmitter()
	e.Update(0.02)
	require.Equal(t, 1, e.ActiveParticles())

	e.Rate = 0
	e.Update(3.9)
	assert.Equal(t, 1, e.ActiveParticles())
	e.Update(0.2)
	assert.Zero(t, e.ActiveParticles())
}

func TestEmitterSpawnsInsideVolume(t *testing.T) {
	e := newTorchEmitter()
	e.SetPosition(math.Vec3{X: 5, Y: 5, Z: 5})
	e.Velocity = math.Vec3{}
	e.Update(1)

	for _, p := range e.particles {
		d := p.position.Sub(math.Vec3{X: 5, Y: 5, Z: 5})
		assert.LessOrEqual(t, d.X*d.X, float32(0.01+1e-6))
		assert.LessOrEqual(t, d.Y*d.Y, float32(0.01+1e-6))
		assert.LessOrEqual(t, d.Z*d.Z, float32(0.01+1e-6))
	}
}

func TestEmitterRender(t *testing.T) {
	ctx := gfxtest.New()
	cache := gfx.NewProgramCache()
	cam := camera.NewPerspective(67, 800, 600)

	e := newTorchEmitter()
	require.NoError(t, e.Create(ctx, blankTextures{}))
	e.Update(0.11)

	p, err := Begin(ctx, cache, cam)
	require.NoError(t, err)
	assert.Equal(t, gfx.BlendAdditive, ctx.Blend)
	e.Render(ctx, p)
	End(ctx)

	draws := ctx.DrawsWith(ProgramKey)
	require.Len(t, draws, 1)
	assert.Equal(t, gfx.Points, draws[0].Primitive)
	assert.Equal(t, 5, draws[0].Count)
	assert.Equal(t, gfx.BlendOff, ctx.Blend)

	e.Dispose(ctx)
	assert.Empty(t, ctx.Meshes)
}

func TestCreateRejectsZeroMax(t *testing.T) {
	e := NewEmitter(math.Vec3{}, math.Vec3{}, 1, 0)
	assert.Error(t, e.Create(gfxtest.New(), blankTextures{}))
}

func TestCreateRejectsZeroLifetime(t *testing.T) {
	e := newTorchEmitter()
	e.SetTexture("", math.Vec3{}, 0, e.StartColour, e.EndColour, false, 0)
	err := e.Create(gfxtest.New(), blankTextures{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lifetime")
}

func TestComparatorSortsFarToNear(t *testing.T) {
	cam := camera.NewPerspective(67, 800, 600)
	near := NewEmitter(math.Vec3{Z: -2}, math.Vec3{}, 1, 1)
	far := NewEmitter(math.Vec3{Z: -20}, math.Vec3{}, 1, 1)
	mid := NewEmitter(math.Vec3{Z: -8}, math.Vec3{}, 1, 1)

	list := []*Emitter{near, far, mid}
	slices.SortFunc(list, Comparator(cam))
	assert.Equal(t, []*Emitter{far, mid, near}, list)
}

func TestEffectVisibleEmitters(t *testing.T) {
	cam := camera.NewPerspective(67, 800, 600)
	ahead := NewEmitter(math.Vec3{}, math.Vec3{}, 1, 1)
	behind := NewEmitter(math.Vec3{Z: 20}, math.Vec3{}, 1, 1)

	f := NewEffect(ahead, behind)
	f.SetPosition(math.Vec3{Z: -10})

	visible := f.VisibleEmitters(nil, cam)
	assert.Equal(t, []*Emitter{ahead}, visible)

	f.ViewDistance = 5
	assert.Empty(t, f.VisibleEmitters(nil, cam))
}

func TestEffectLight(t *testing.T) {
	e := newTorchEmitter()
	plain := NewEmitter(math.Vec3{}, math.Vec3{}, 1, 1)
	f := NewEffect(e, plain)
	f.SetPosition(math.Vec3{X: 1})

	m := lighting.NewManager(math.Vec3{})
	f.GetLight(m)
	require.Equal(t, 1, m.Len())
	l := m.Lights()[0]
	assert.Equal(t, math.Vec3{X: 1}, l.Position)
	assert.Equal(t, float32(0.03), l.Attenuation)
	assert.InDelta(t, 0.6, l.Colour.X, 1e-6)
}
