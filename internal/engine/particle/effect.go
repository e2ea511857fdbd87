package particle

import (
	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/material"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Effect groups emitters that move together.
type Effect struct {
	Emitters []*Emitter

	// ViewDistance culls emitters further than this from the camera.
	// Zero uses the camera's far plane.
	ViewDistance float32

	position math.Vec3
}

// NewEffect creates an effect from emitters.
func NewEffect(emitters ...*Emitter) *Effect {
	return &Effect{Emitters: emitters}
}

// SetPosition moves every emitter.
func (f *Effect) SetPosition(p math.Vec3) {
	f.position = p
	for _, e := range f.Emitters {
		e.SetPosition(p)
	}
}

// Position returns the last position set.
func (f *Effect) Position() math.Vec3 { return f.position }

// Update advances every emitter.
func (f *Effect) Update(dt float32, _ *camera.Camera) {
	for _, e := range f.Emitters {
		e.Update(dt)
	}
}

// VisibleEmitters appends emitters inside the frustum and view distance.
func (f *Effect) VisibleEmitters(dst []*Emitter, cam *camera.Camera) []*Emitter {
	limit := f.ViewDistance
	if limit <= 0 {
		limit = cam.Far
	}
	for _, e := range f.Emitters {
		r := e.Radius()
		if e.Distance2(cam) > (limit+r)*(limit+r) {
			continue
		}
		if !cam.SphereInFrustum(e.Position(), r) {
			continue
		}
		dst = append(dst, e)
	}
	return dst
}

// GetLight adds the emitters' lights to the manager.
func (f *Effect) GetLight(m *lighting.Manager) {
	for _, e := range f.Emitters {
		e.GetLight(m)
	}
}

// ActiveParticles sums live particles over all emitters.
func (f *Effect) ActiveParticles() int {
	n := 0
	for _, e := range f.Emitters {
		n += e.ActiveParticles()
	}
	return n
}

// Create allocates GPU state for every emitter.
func (f *Effect) Create(ctx gfx.Context, textures material.TextureSource) error {
	for _, e := range f.Emitters {
		if err := e.Create(ctx, textures); err != nil {
			return err
		}
	}
	return nil
}

// Dispose frees every emitter.
func (f *Effect) Dispose(ctx gfx.Context) {
	for _, e := range f.Emitters {
		e.Dispose(ctx)
	}
}
