package level

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx/gfxtest"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/material"
	"github.com/Faultbox/roguelike3d/internal/engine/mesh"
	"github.com/Faultbox/roguelike3d/internal/engine/render"
	"github.com/Faultbox/roguelike3d/internal/engine/rigged"
	"github.com/Faultbox/roguelike3d/internal/engine/texture"
	"github.com/Faultbox/roguelike3d/internal/game/entity"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

type drawRecorder struct{ calls []render.DrawCall }

func (r *drawRecorder) CreateShader() error                 { return nil }
func (r *drawRecorder) UpdateResolution(int32, int32) error { return nil }
func (r *drawRecorder) Begin(*camera.Camera)                {}
func (r *drawRecorder) Draw(d render.DrawCall)              { r.calls = append(r.calls, d) }
func (r *drawRecorder) End(*lighting.Manager)               {}
func (r *drawRecorder) Dispose()                            {}
func (r *drawRecorder) Name() string                        { return "recorder" }
func (r *drawRecorder) Stats() render.Stats                 { return render.Stats{} }

func (r *drawRecorder) material(m gfx.Mesh) *material.Material {
	for _, d := range r.calls {
		if d.Mesh == m {
			return d.Material
		}
	}
	return nil
}

func TestCollideSphereActors(t *testing.T) {
	l := New(math.Vec3{}, 100)
	hero := entity.NewActor("hero", entity.TypePlayer)
	goblin := entity.NewActor("goblin", entity.TypeMonster)
	goblin.Position = math.Vec3{X: 2}
	l.Actors.Add(hero)
	l.Actors.Add(goblin)

	hit := l.CollideSphereActors(math.Vec3{X: 1.6, Y: 1}, 0.2, "hero")
	require.NotNil(t, hit)
	assert.Equal(t, "goblin", hit.UID())

	assert.Nil(t, l.CollideSphereActors(math.Vec3{Y: 1}, 0.2, "hero"), "holder excluded")
	assert.Nil(t, l.CollideSphereActors(math.Vec3{X: 2, Y: 3}, 0.2, "hero"), "above the head")

	goblin.TakeDamage(100)
	assert.Nil(t, l.CollideSphereActors(math.Vec3{X: 2, Y: 1}, 0.2, "hero"), "dead actors are ignored")
}

func TestCollideSphereStaticsAndGeometry(t *testing.T) {
	l := New(math.Vec3{}, 100)
	l.AddObject(&Object{Name: "pillar", Position: math.Vec3{X: 5}, Radius: 1})
	l.AddWall(mesh.Bounds{Min: math.Vec3{X: -1, Y: -1, Z: -10}, Max: math.Vec3{X: 1, Y: 0, Z: -8}})

	assert.True(t, l.CollideSphereStatics(math.Vec3{X: 3.6}, 0.5))
	assert.False(t, l.CollideSphereStatics(math.Vec3{X: 3}, 0.5))

	assert.True(t, l.CollideSphere(math.Vec3{Y: 0.4, Z: -9}, 0.5, ""))
	assert.False(t, l.CollideSphere(math.Vec3{Y: 1, Z: -9}, 0.5, ""))
	assert.False(t, l.CollideSphere(math.Vec3{Z: -5}, 0.5, ""))
}

func TestDungeon(t *testing.T) {
	hero := entity.NewActor("hero", entity.TypePlayer)
	l, err := Dungeon(DefaultLayout, hero)
	require.NoError(t, err)

	assert.Len(t, l.Walls(), 6)
	assert.Len(t, l.Objects, 4)
	assert.Len(t, l.Emitters(), 4, "every torch flame is tracked")
	assert.Equal(t, 4, l.Actors.Count())
	assert.Same(t, hero, l.Actors.Player())
	assert.False(t, l.CollideSphere(hero.Position.Add(math.Vec3{Y: 1}), hero.Radius, hero.UID()), "player starts in open space")

	var skins []*material.Material
	for _, a := range l.Actors.All() {
		if a.Type == entity.TypeMonster {
			skins = append(skins, a.Model.Materials[0])
		}
	}
	require.Len(t, skins, 3)
	assert.NotSame(t, skins[0], skins[1], "each dummy owns its material")
	assert.Equal(t, texture.Wood, skins[1].TextureName())

	_, err = Dungeon(Layout{}, hero)
	assert.Error(t, err)
}

func created(t *testing.T) (*Level, *gfxtest.Context, *gfx.ProgramCache, *entity.Actor) {
	t.Helper()
	hero := entity.NewActor("hero", entity.TypePlayer)
	sword, err := rigged.Sword(3)
	require.NoError(t, err)
	hero.Equip(sword, rigged.Right)

	l, err := Dungeon(DefaultLayout, hero)
	require.NoError(t, err)
	ctx := gfxtest.New()
	cache := gfx.NewProgramCache()
	require.NoError(t, l.Create(ctx, cache, texture.NewStore(ctx, "", 256)))
	return l, ctx, cache, hero
}

func TestCreateBakesStaticLights(t *testing.T) {
	l, ctx, _, _ := created(t)
	floor := l.walls[0].submesh

	lit := false
	for _, v := range ctx.Meshes[floor.Mesh()] {
		if v.Colour[0] > 0 {
			lit = true
		}
	}
	assert.True(t, lit, "torch lights reach the floor")
}

func TestGetLights(t *testing.T) {
	l, _, _, _ := created(t)
	lights := lighting.NewManager(math.Vec3{})
	lights.Add(lighting.Light{})

	l.GetLights(lights)
	assert.Equal(t, l.Ambient, lights.Ambient)
	assert.Len(t, lights.Statics(), 4)
	assert.Len(t, lights.Dynamics(), 4, "one flame light per torch")
}

func TestRenderSubmitsEverything(t *testing.T) {
	l, ctx, cache, hero := created(t)
	cam := camera.NewPerspective(67, 800, 600)
	cam.Position = hero.Eye()
	cam.Update()

	r := render.NewForward(ctx, cache)
	require.NoError(t, r.CreateShader())
	lights := lighting.NewManager(math.Vec3{})

	l.Update(0.1, cam)
	l.ComposeMatrices()
	l.GetLights(lights)
	r.Begin(cam)
	emitters := l.Render(r, cam, nil)
	r.End(lights)

	assert.NotEmpty(t, emitters)
	assert.Positive(t, r.Stats().Draws)
	assert.Positive(t, l.ActiveParticles())
}

func TestCheckHitsDamagesStruckActor(t *testing.T) {
	l := New(math.Vec3{}, 100)
	hero := entity.NewActor("hero", entity.TypePlayer)
	sword, err := rigged.Sword(3)
	require.NoError(t, err)
	hero.Equip(sword, rigged.Right)
	goblin := entity.NewActor("goblin", entity.TypeMonster)
	goblin.Position = math.Vec3{X: 0.35, Z: -1.5}
	l.Actors.SetPlayer(hero)
	l.Actors.Add(goblin)

	ctx := gfxtest.New()
	require.NoError(t, l.Create(ctx, nil, texture.NewStore(ctx, "", 256)))
	l.ComposeMatrices()

	assert.Empty(t, l.CheckHits(), "not swinging")

	sword.Held()
	sword.Released()
	assert.Equal(t, []string{"goblin"}, l.CheckHits())
	assert.Equal(t, 9, goblin.HP)
	assert.False(t, sword.Node(sword.Root()).CollideMode, "a hit ends the swing")
}

func TestStruckActorFlashes(t *testing.T) {
	l := New(math.Vec3{}, 100)
	hero := entity.NewActor("hero", entity.TypePlayer)
	sword, err := rigged.Sword(3)
	require.NoError(t, err)
	hero.Equip(sword, rigged.Right)
	body, err := Dummy(DummyMaterial())
	require.NoError(t, err)
	goblin := entity.NewActor("goblin", entity.TypeMonster)
	goblin.Model = body
	goblin.Position = math.Vec3{X: 0.35, Z: -1.5}
	l.Actors.SetPlayer(hero)
	l.Actors.Add(goblin)

	ctx := gfxtest.New()
	require.NoError(t, l.Create(ctx, nil, texture.NewStore(ctx, "", 256)))
	l.ComposeMatrices()
	sword.Held()
	sword.Released()
	require.Equal(t, []string{"goblin"}, l.CheckHits())
	require.True(t, l.Flashing("goblin"))

	cam := camera.NewPerspective(67, 800, 600)
	bodyMesh := body.Node(body.Root()).SubMeshes[0].Mesh()
	skin := body.Materials[0]

	rec := &drawRecorder{}
	l.Render(rec, cam, nil)
	tinted := rec.material(bodyMesh)
	require.NotNil(t, tinted)
	assert.NotSame(t, skin, tinted)
	last, ok := tinted.Attributes[len(tinted.Attributes)-1].(*material.Colour)
	require.True(t, ok)
	assert.Equal(t, hitTint, last.RGBA)
	assert.Same(t, skin, body.Materials[0])
	assert.Len(t, skin.Attributes, 1, "shared material untouched")

	l.Update(hitFlash+0.05, cam)
	assert.False(t, l.Flashing("goblin"))
	rec = &drawRecorder{}
	l.Render(rec, cam, nil)
	assert.Same(t, skin, rec.material(bodyMesh))
	assert.Empty(t, tinted.Attributes, "pooled copy released")
	assert.Empty(t, l.pooled)
}

func TestDisposeReleasesMeshes(t *testing.T) {
	l, ctx, _, _ := created(t)
	l.Dispose(ctx)
	assert.Empty(t, ctx.Meshes)
}
