// Package particle provides point-sprite particle emitters and effects.
package particle

import (
	"cmp"
	"fmt"
	"math/rand/v2"

	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/material"
	"github.com/Faultbox/roguelike3d/internal/engine/shaders"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// ProgramKey is the program cache key for the particle shader.
const ProgramKey = "particle"

type particle struct {
	position math.Vec3
	age      float32
}

// Emitter spawns up to Max particles inside a box around its origin.
type Emitter struct {
	Origin   math.Vec3 // offset from the effect position
	Volume   math.Vec3 // spawn box half extents
	Rate     float32   // seconds between spawns
	Max      int
	Lifetime float32
	Velocity math.Vec3
	Size     float32

	StartColour [4]float32
	EndColour   [4]float32

	Texture string

	// Light makes the emitter contribute a point light at its position.
	Light            bool
	LightAttenuation float32
	// LightScale multiplies the light colour; behaviours animate it.
	LightScale float32

	position  math.Vec3
	particles []particle
	spawn     float32
	rng       *rand.Rand

	mesh     gfx.Mesh
	texture  gfx.Texture
	vertices []gfx.Vertex
	created  bool
}

// NewEmitter creates an emitter with white particles that live one second.
func NewEmitter(origin, volume math.Vec3, rate float32, max int) *Emitter {
	return &Emitter{
		Origin:      origin,
		Volume:      volume,
		Rate:        rate,
		Max:         max,
		Lifetime:    1,
		Size:        0.15,
		StartColour: [4]float32{1, 1, 1, 1},
		EndColour:   [4]float32{1, 1, 1, 0},
		LightScale:  1,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// SetTexture sets the sprite and the particle look in one call.
func (e *Emitter) SetTexture(name string, velocity math.Vec3, lifetime float32, start, end [4]float32, light bool, attenuation float32) {
	e.Texture = name
	e.Velocity = velocity
	e.Lifetime = lifetime
	e.StartColour = start
	e.EndColour = end
	e.Light = light
	e.LightAttenuation = attenuation
}

// Seed makes spawning deterministic.
func (e *Emitter) Seed(seed uint64) {
	e.rng = rand.New(rand.NewPCG(seed, seed))
}

// SetPosition moves the emitter. Live particles stay where they are.
func (e *Emitter) SetPosition(p math.Vec3) {
	e.position = p
}

// Position returns the world-space spawn centre.
func (e *Emitter) Position() math.Vec3 {
	return e.position.Add(e.Origin)
}

// Radius bounds how far live particles can be from Position.
func (e *Emitter) Radius() float32 {
	return e.Volume.Length() + e.Velocity.Length()*e.Lifetime + e.Size
}

// ActiveParticles returns the number of live particles.
func (e *Emitter) ActiveParticles() int {
	return len(e.particles)
}

// Update ages particles, removes expired ones and spawns new ones.
func (e *Emitter) Update(dt float32) {
	live := e.particles[:0]
	step := e.Velocity.Scale(dt)
	for _, p := range e.particles {
		p.age += dt
		if p.age >= e.Lifetime {
			continue
		}
		p.position = p.position.Add(step)
		live = append(live, p)
	}
	e.particles = live

	if e.Rate <= 0 {
		return
	}
	e.spawn += dt
	for e.spawn >= e.Rate {
		e.spawn -= e.Rate
		if len(e.particles) >= e.Max {
			continue
		}
		e.particles = append(e.particles, particle{position: e.spawnPoint()})
	}
}

func (e *Emitter) spawnPoint() math.Vec3 {
	r := func(extent float32) float32 {
		return (e.rng.Float32()*2 - 1) * extent
	}
	return e.Position().Add(math.Vec3{X: r(e.Volume.X), Y: r(e.Volume.Y), Z: r(e.Volume.Z)})
}

// Create resolves the texture and allocates the dynamic point mesh.
func (e *Emitter) Create(ctx gfx.Context, textures material.TextureSource) error {
	if e.created {
		return nil
	}
	if e.Max <= 0 {
		return fmt.Errorf("emitter needs a positive particle limit, got %d", e.Max)
	}
	if e.Lifetime <= 0 {
		return fmt.Errorf("emitter needs a positive lifetime, got %g", e.Lifetime)
	}
	if e.Texture != "" {
		t, err := textures.Get(e.Texture)
		if err != nil {
			return fmt.Errorf("emitter texture: %w", err)
		}
		e.texture = t
	}
	e.vertices = make([]gfx.Vertex, e.Max)
	m, err := ctx.UploadMesh(e.vertices, nil)
	if err != nil {
		return fmt.Errorf("emitter mesh: %w", err)
	}
	e.mesh = m
	e.created = true
	return nil
}

// Render writes the live particles to the mesh and draws them as points.
// Call between Begin and End.
func (e *Emitter) Render(ctx gfx.Context, p gfx.Program) {
	n := len(e.particles)
	if !e.created || n == 0 {
		return
	}
	for i, pt := range e.particles {
		t := pt.age / e.Lifetime
		e.vertices[i] = gfx.Vertex{
			Position: pt.position,
			Normal:   math.Vec3{X: e.Size},
			Colour:   lerpColour(e.StartColour, e.EndColour, t),
		}
	}
	ctx.UpdateMesh(e.mesh, e.vertices[:n])
	ctx.BindTexture(0, e.texture)
	ctx.SetInt(p, material.UniformTexture, 0)
	ctx.DrawMeshRange(e.mesh, gfx.Points, n)
}

// Dispose frees the mesh and live particles.
func (e *Emitter) Dispose(ctx gfx.Context) {
	if e.created {
		ctx.DeleteMesh(e.mesh)
	}
	e.created = false
	e.particles = nil
	e.vertices = nil
}

// Distance2 returns the squared distance from the camera.
func (e *Emitter) Distance2(cam *camera.Camera) float32 {
	return e.Position().Distance2(cam.Position)
}

// Comparator orders emitters far to near from cam, for back-to-front
// translucent drawing with slices.SortFunc.
func Comparator(cam *camera.Camera) func(a, b *Emitter) int {
	return func(a, b *Emitter) int {
		return cmp.Compare(b.Distance2(cam), a.Distance2(cam))
	}
}

// PointLight returns the emitter's light. ok is false if it has none.
func (e *Emitter) PointLight() (l lighting.Light, ok bool) {
	if !e.Light {
		return lighting.Light{}, false
	}
	c := math.Vec3{X: e.StartColour[0], Y: e.StartColour[1], Z: e.StartColour[2]}
	return lighting.Light{
		Position:    e.Position(),
		Colour:      c.Scale(e.LightScale),
		Attenuation: e.LightAttenuation,
	}, true
}

// GetLight adds the emitter's light, if any, to the manager.
func (e *Emitter) GetLight(m *lighting.Manager) {
	if l, ok := e.PointLight(); ok {
		m.Add(l)
	}
}

func lerpColour(a, b [4]float32, t float32) [4]float32 {
	return [4]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
		a[3] + (b[3]-a[3])*t,
	}
}

// Begin prepares a batch of emitters: particle program, camera uniforms,
// additive blending and read-only depth.
func Begin(ctx gfx.Context, cache *gfx.ProgramCache, cam *camera.Camera) (gfx.Program, error) {
	p, err := cache.GetOrCreate(ctx, ProgramKey, shaders.Particle())
	if err != nil {
		return 0, err
	}
	ctx.UseProgram(p)
	ctx.SetMat4(p, "u_viewProj", cam.Combined)
	ctx.SetVec3(p, "u_cameraPosition", cam.Position)
	ctx.SetFloat(p, "u_pointSize", cam.ViewportHeight)
	ctx.SetBlend(gfx.BlendAdditive)
	ctx.SetDepth(true, false)
	return p, nil
}

// End restores opaque state after Begin.
func End(ctx gfx.Context) {
	ctx.SetBlend(gfx.BlendOff)
	ctx.SetDepth(true, true)
}
