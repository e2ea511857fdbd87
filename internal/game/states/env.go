package states

import (
	"github.com/Faultbox/roguelike3d/internal/config"
	"github.com/Faultbox/roguelike3d/internal/engine/debug"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/material"
)

// Env holds what states share: the graphics context and its caches, the
// configuration and the window hooks.
type Env struct {
	Config   *config.Config
	Ctx      gfx.Context
	Cache    *gfx.ProgramCache
	Textures material.TextureSource

	Width, Height int

	Screenshots *debug.ScreenshotCapture
	// CaptureMouse hides the cursor for mouse look. May be nil.
	CaptureMouse func(on bool)
}

func (e *Env) captureMouse(on bool) {
	if e.CaptureMouse != nil {
		e.CaptureMouse(on)
	}
}
