// Package shaders provides embedded GLSL shader sources.
package shaders

import (
	_ "embed"
	"fmt"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
)

// Version is prepended to sources that are assembled at runtime.
const Version = "#version 410 core\n"

//go:embed forward.vert
var forwardVertex string

//go:embed forward.frag
var forwardFragment string

//go:embed gbuffer.vert
var gbufferVertex string

//go:embed gbuffer.frag
var gbufferFragment string

//go:embed fullscreen.vert
var fullscreenVertex string

//go:embed light.frag
var lightFragment string

//go:embed composite.frag
var compositeFragment string

//go:embed particle.vert
var particleVertex string

//go:embed particle.frag
var particleFragment string

//go:embed debug.vert
var debugVertex string

//go:embed debug.frag
var debugFragment string

// Forward returns the vertex-lit forward shader for the given light count.
func Forward(lights int) gfx.Source {
	header := fmt.Sprintf("%s#define NUM_LIGHTS %d\n", Version, lights)
	return gfx.Source{
		Vertex:   header + forwardVertex,
		Fragment: header + forwardFragment,
	}
}

// GBuffer writes albedo, normals and world positions.
func GBuffer() gfx.Source {
	return gfx.Source{Vertex: gbufferVertex, Fragment: gbufferFragment}
}

// Light accumulates a single light from the G-buffer.
func Light() gfx.Source {
	return gfx.Source{Vertex: fullscreenVertex, Fragment: lightFragment}
}

// Composite combines the G-buffer and light accumulation, or shows one buffer.
func Composite() gfx.Source {
	return gfx.Source{Vertex: fullscreenVertex, Fragment: compositeFragment}
}

// Particle draws point-sprite particles.
func Particle() gfx.Source {
	return gfx.Source{Vertex: particleVertex, Fragment: particleFragment}
}

// Debug draws flat-coloured lines.
func Debug() gfx.Source {
	return gfx.Source{Vertex: debugVertex, Fragment: debugFragment}
}
