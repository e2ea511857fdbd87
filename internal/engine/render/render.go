// Package render provides the forward and deferred scene renderers.
package render

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/config"
	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/material"
	"github.com/Faultbox/roguelike3d/internal/logger"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// ErrUnsupportedLightQuality is returned by New for a quality it does not know.
var ErrUnsupportedLightQuality = errors.New("unsupported light quality")

// Uniform names shared by the geometry shaders.
const (
	uniformModel        = "u_model"
	uniformNormalMatrix = "u_normalMatrix"
	uniformMVP          = "u_mvp"
	uniformAmbient      = "u_ambient"
)

// DrawCall is one submesh submission.
type DrawCall struct {
	Mesh      gfx.Mesh
	Primitive gfx.Primitive
	Transform math.Mat4
	Material  *material.Material
	// Radius bounds the mesh around the transform's origin; used for culling
	// and light selection.
	Radius float32
}

// Centre returns the world position of the draw's bounding sphere.
func (d DrawCall) Centre() math.Vec3 {
	return d.Transform.Translation()
}

// Renderer draws a frame's geometry. Begin and End bracket a frame; End
// always leaves the default target bound, even with no draws.
type Renderer interface {
	CreateShader() error
	UpdateResolution(width, height int32) error
	Begin(cam *camera.Camera)
	Draw(d DrawCall)
	End(lights *lighting.Manager)
	Dispose()
	Name() string
	Stats() Stats
}

// Stats counts the work done by the last End.
type Stats struct {
	Draws  int
	Culled int
	Lights int
}

// New returns the renderer for quality.
func New(quality string, ctx gfx.Context, cache *gfx.ProgramCache) (Renderer, error) {
	var r Renderer
	switch quality {
	case config.LightQualityForward:
		r = NewForward(ctx, cache)
	case config.LightQualityDeferred:
		r = NewDeferred(ctx, cache)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLightQuality, quality)
	}
	logger.Info("renderer selected", zap.String("quality", quality), zap.String("name", r.Name()))
	return r, nil
}

// bindTransform sets the per-draw matrices.
func bindTransform(ctx gfx.Context, p gfx.Program, cam *camera.Camera, m math.Mat4) {
	ctx.SetMat4(p, uniformModel, m)
	ctx.SetMat3(p, uniformNormalMatrix, m.NormalMatrix())
	ctx.SetMat4(p, uniformMVP, cam.Combined.Mul(m))
}

// visible reports whether d can be seen. Draws without a radius are never
// culled.
func visible(cam *camera.Camera, d DrawCall) bool {
	if d.Radius <= 0 {
		return true
	}
	return cam.SphereInFrustum(d.Centre(), d.Radius)
}

func indexed(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}
