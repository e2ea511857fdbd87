// Package level holds everything around the player: actors, level objects,
// wall geometry, static lights and the particle emitters they bring.
package level

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/material"
	"github.com/Faultbox/roguelike3d/internal/engine/mesh"
	"github.com/Faultbox/roguelike3d/internal/engine/particle"
	"github.com/Faultbox/roguelike3d/internal/engine/render"
	"github.com/Faultbox/roguelike3d/internal/engine/rigged"
	"github.com/Faultbox/roguelike3d/internal/engine/texture"
	"github.com/Faultbox/roguelike3d/internal/game/entity"
	"github.com/Faultbox/roguelike3d/internal/logger"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// hitFlash is how long a struck actor is drawn tinted, in seconds.
const hitFlash = 0.2

var hitTint = [4]float32{1, 0.3, 0.3, 1}

// Object is a static level object with a collision sphere and an optional
// model.
type Object struct {
	Name      string
	Position  math.Vec3
	Radius    float32
	Model     *rigged.Model
	Transform math.Mat4
}

type wall struct {
	bounds  mesh.Bounds
	submesh *rigged.SubMesh
}

// Level is the scene the in-game screen updates and renders.
type Level struct {
	Ambient      math.Vec3
	MaxParticles int
	// WeaponDamage is dealt to an actor struck by another actor's weapon.
	WeaponDamage int

	Actors  *entity.Manager
	Objects []*Object

	walls    []wall
	wallMat  *material.Material
	statics  []lighting.Light
	emitters []*particle.Emitter
	created  bool

	// flashes holds the remaining hit flash per actor UID. Tinted
	// materials live in pooled until the frame that used them is flushed.
	flashes map[string]float32
	pooled  []*material.Material
}

var _ rigged.Scene = (*Level)(nil)
var _ rigged.EmitterTracker = (*Level)(nil)

// New creates an empty level.
func New(ambient math.Vec3, maxParticles int) *Level {
	stone := material.New("stone")
	stone.SetTexture(texture.Blank)
	return &Level{
		Ambient:      ambient,
		MaxParticles: maxParticles,
		WeaponDamage: 1,
		Actors:       entity.NewManager(),
		wallMat:      stone,
		flashes:      make(map[string]float32),
	}
}

// AddWall adds a solid box of level geometry.
func (l *Level) AddWall(b mesh.Bounds) {
	size := b.Dimensions()
	name := fmt.Sprintf("wall%d", len(l.walls))
	l.walls = append(l.walls, wall{
		bounds:  b,
		submesh: rigged.NewSubMesh(name, 1, mesh.Spec{Kind: mesh.KindBox, Size: size}),
	})
}

// Walls returns the level geometry.
func (l *Level) Walls() []mesh.Bounds {
	out := make([]mesh.Bounds, len(l.walls))
	for i, w := range l.walls {
		out[i] = w.bounds
	}
	return out
}

// AddObject adds a level object.
func (l *Level) AddObject(o *Object) {
	l.Objects = append(l.Objects, o)
}

// AddLight adds a static light. Static lights are baked into vertex
// colours when the level is created.
func (l *Level) AddLight(light lighting.Light) {
	light.Static = true
	l.statics = append(l.statics, light)
}

// TrackEmitter records an emitter for the particle budget.
func (l *Level) TrackEmitter(e *particle.Emitter) {
	l.emitters = append(l.emitters, e)
}

// Emitters returns the tracked emitters.
func (l *Level) Emitters() []*particle.Emitter { return l.emitters }

// ActiveParticles counts live particles in tracked emitters.
func (l *Level) ActiveParticles() int {
	n := 0
	for _, e := range l.emitters {
		n += e.ActiveParticles()
	}
	return n
}

// CollideSphereActors returns the first living actor other than exclude
// whose body touches the sphere. Bodies are upright cylinders of the
// actor's radius, eye height tall.
func (l *Level) CollideSphereActors(centre math.Vec3, radius float32, exclude string) rigged.Holder {
	for _, a := range l.Actors.All() {
		if a.UID() == exclude || !a.IsAlive() {
			continue
		}
		dx, dz := centre.X-a.Position.X, centre.Z-a.Position.Z
		reach := radius + a.Radius
		if dx*dx+dz*dz > reach*reach {
			continue
		}
		if centre.Y < a.Position.Y-radius || centre.Y > a.Position.Y+a.EyeHeight+radius {
			continue
		}
		return a
	}
	return nil
}

// CollideSphereStatics reports whether the sphere touches a level object.
func (l *Level) CollideSphereStatics(centre math.Vec3, radius float32) bool {
	for _, o := range l.Objects {
		r := radius + o.Radius
		if centre.Distance2(o.Position) <= r*r {
			return true
		}
	}
	return false
}

// CollideSphere reports whether the sphere touches level geometry. Actors
// are never part of the geometry, so exclude does not affect the result.
func (l *Level) CollideSphere(centre math.Vec3, radius float32, _ string) bool {
	for _, w := range l.walls {
		if sphereTouchesBox(centre, radius, w.bounds) {
			return true
		}
	}
	return false
}

func sphereTouchesBox(c math.Vec3, r float32, b mesh.Bounds) bool {
	closest := c.Max(b.Min).Min(b.Max)
	return closest.Distance2(c) <= r*r
}

// Create uploads everything and bakes the static lights into the walls.
func (l *Level) Create(ctx gfx.Context, cache *gfx.ProgramCache, textures material.TextureSource) error {
	if err := l.wallMat.Resolve(textures); err != nil {
		return fmt.Errorf("level walls: %w", err)
	}
	for _, w := range l.walls {
		if err := w.submesh.Create(ctx); err != nil {
			return fmt.Errorf("level walls: %w", err)
		}
	}
	for _, o := range l.Objects {
		if o.Model == nil {
			continue
		}
		if err := o.Model.Create(ctx, cache, textures); err != nil {
			return fmt.Errorf("level object %s: %w", o.Name, err)
		}
	}
	for _, a := range l.Actors.All() {
		for _, m := range []*rigged.Model{a.Model, a.Weapon} {
			if m == nil {
				continue
			}
			if err := m.Create(ctx, cache, textures); err != nil {
				return fmt.Errorf("actor %s: %w", a.UID(), err)
			}
		}
	}

	lights := lighting.NewManager(l.Ambient)
	for _, s := range l.statics {
		lights.AddStatic(s)
	}
	for _, w := range l.walls {
		w.submesh.BakeLight(ctx, lights, true, w.transform())
	}
	for _, o := range l.Objects {
		if o.Model != nil {
			o.Model.ComposeMatrices(o.Transform)
			o.Model.BakeLight(ctx, lights, true)
		}
	}
	l.created = true

	logger.Info("level created",
		zap.Int("walls", len(l.walls)),
		zap.Int("objects", len(l.Objects)),
		zap.Int("actors", l.Actors.Count()),
		zap.Int("staticLights", len(l.statics)))
	return nil
}

func (w wall) transform() math.Mat4 {
	c := w.bounds.Centre()
	return math.Translate(c.X, c.Y, c.Z)
}

// Update advances actors, level objects and hit flashes.
func (l *Level) Update(dt float32, cam *camera.Camera) {
	for uid, left := range l.flashes {
		if left -= dt; left > 0 {
			l.flashes[uid] = left
		} else {
			delete(l.flashes, uid)
		}
	}
	for _, a := range l.Actors.All() {
		a.Update(dt, cam)
	}
	for _, o := range l.Objects {
		if o.Model != nil {
			o.Model.Update(dt, cam)
		}
	}
}

// ComposeMatrices places every model in the world.
func (l *Level) ComposeMatrices() {
	for _, a := range l.Actors.All() {
		a.ComposeMatrices()
	}
	for _, o := range l.Objects {
		if o.Model != nil {
			o.Model.ComposeMatrices(o.Transform)
		}
	}
}

// GetLights rebuilds lights for this frame: the ambient colour, static
// level lights and the lights of every particle effect.
func (l *Level) GetLights(lights *lighting.Manager) {
	lights.Clear()
	lights.Ambient = l.Ambient
	for _, s := range l.statics {
		lights.AddStatic(s)
	}
	for _, o := range l.Objects {
		if o.Model != nil {
			o.Model.GetLight(lights)
		}
	}
	for _, a := range l.Actors.All() {
		if a.Weapon != nil {
			a.Weapon.GetLight(lights)
		}
	}
}

// CheckHits runs weapon collision for every armed actor. A weapon that
// strikes another actor damages it; any hit ends the swing.
func (l *Level) CheckHits() []string {
	var struck []string
	for _, a := range l.Actors.All() {
		if a.Weapon == nil || !a.IsAlive() {
			continue
		}
		hit := a.Weapon.CheckCollision(a, l)
		if hit == nil {
			continue
		}
		if victim, ok := hit.(*entity.Actor); ok && victim != a {
			victim.TakeDamage(l.WeaponDamage)
			l.flashes[victim.UID()] = hitFlash
			struck = append(struck, victim.UID())
			logger.Debug("actor struck",
				zap.String("attacker", a.UID()),
				zap.String("victim", victim.UID()),
				zap.Int("hp", victim.HP))
		}
		a.Weapon.Cancel()
	}
	return struck
}

// Flashing reports whether the actor was struck within the last hitFlash
// seconds.
func (l *Level) Flashing(uid string) bool {
	_, ok := l.flashes[uid]
	return ok
}

// Render submits walls, objects and actors to r and appends visible
// emitters. Actors that were just struck are drawn tinted.
func (l *Level) Render(r render.Renderer, cam *camera.Camera, emitters []*particle.Emitter) []*particle.Emitter {
	l.releaseTinted()
	for _, w := range l.walls {
		size := w.bounds.Dimensions()
		r.Draw(render.DrawCall{
			Mesh:      w.submesh.Mesh(),
			Primitive: w.submesh.Primitive,
			Transform: w.transform(),
			Material:  l.wallMat,
			Radius:    size.Length() / 2,
		})
	}
	for _, o := range l.Objects {
		if o.Model != nil {
			emitters = o.Model.Draw(r, emitters, cam)
		}
	}
	for _, a := range l.Actors.All() {
		if a.Model != nil && a.IsAlive() {
			if l.Flashing(a.UID()) {
				emitters = l.drawTinted(r, a.Model, emitters, cam)
			} else {
				emitters = a.Model.Draw(r, emitters, cam)
			}
		}
		if a.Weapon != nil {
			emitters = a.Weapon.Draw(r, emitters, cam)
		}
	}
	return emitters
}

// drawTinted draws m with pooled copies of its materials tinted by hitTint.
// The renderer keeps the copies until End, so they are freed on the next
// Render.
func (l *Level) drawTinted(r render.Renderer, m *rigged.Model, emitters []*particle.Emitter, cam *camera.Camera) []*particle.Emitter {
	shared := m.Materials
	tinted := make([]*material.Material, len(shared))
	for i, mat := range shared {
		c := mat.PooledCopy()
		tint := &material.Colour{RGBA: hitTint}
		c.Attributes = append(c.Attributes, tint.PooledCopy())
		tinted[i] = c
	}
	l.pooled = append(l.pooled, tinted...)

	m.Materials = tinted
	emitters = m.Draw(r, emitters, cam)
	m.Materials = shared
	return emitters
}

func (l *Level) releaseTinted() {
	for _, m := range l.pooled {
		m.Free()
	}
	l.pooled = l.pooled[:0]
}

// DrawCollision draws the collision debug view of every model.
func (l *Level) DrawCollision(ctx gfx.Context, cam *camera.Camera) {
	for _, o := range l.Objects {
		if o.Model != nil {
			o.Model.DrawCollision(ctx, cam)
		}
	}
	for _, a := range l.Actors.All() {
		if a.Weapon != nil {
			a.Weapon.DrawCollision(ctx, cam)
		}
	}
}

// Dispose releases GPU resources.
func (l *Level) Dispose(ctx gfx.Context) {
	l.releaseTinted()
	if !l.created {
		return
	}
	for _, w := range l.walls {
		w.submesh.Dispose(ctx)
	}
	for _, o := range l.Objects {
		if o.Model != nil {
			o.Model.Dispose(ctx)
		}
	}
	for _, a := range l.Actors.All() {
		for _, m := range []*rigged.Model{a.Model, a.Weapon} {
			if m != nil {
				m.Dispose(ctx)
			}
		}
	}
	l.created = false
}
