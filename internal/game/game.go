// Package game implements the main game loop and state management.
package game

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/config"
	"github.com/Faultbox/roguelike3d/internal/engine/debug"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx/glgfx"
	"github.com/Faultbox/roguelike3d/internal/engine/input"
	"github.com/Faultbox/roguelike3d/internal/engine/texture"
	"github.com/Faultbox/roguelike3d/internal/engine/window"
	"github.com/Faultbox/roguelike3d/internal/game/states"
	"github.com/Faultbox/roguelike3d/internal/logger"
)

// Title is the window title.
const Title = "Roguelike3D"

// maxTextureSize caps the edge of uploaded textures.
const maxTextureSize = 1024

// Game is the main game instance.
type Game struct {
	config *config.Config

	window *window.Window
	ctx    *glgfx.Context
	cache  *gfx.ProgramCache
	input  *input.Input

	env    *states.Env
	states *states.Manager
}

// New creates the window, the graphics context and the first state.
func New(cfg *config.Config) (*Game, error) {
	logger.Info("initializing game",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("lightQuality", cfg.Graphics.LightQuality),
	)

	g := &Game{config: cfg}

	// Window first, the GL context must exist before anything else.
	var err error
	g.window, err = window.New(Title, cfg.Graphics)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	g.ctx, err = glgfx.New()
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create graphics context: %w", err)
	}
	g.cache = gfx.NewProgramCache()
	g.input = input.New()

	width, height := g.window.Size()
	g.env = &states.Env{
		Config:       cfg,
		Ctx:          g.ctx,
		Cache:        g.cache,
		Textures:     texture.NewStore(g.ctx, cfg.Data.TextureDir, maxTextureSize),
		Width:        width,
		Height:       height,
		Screenshots:  debug.NewScreenshotCapture(filepath.Join(config.ConfigDir(), "screenshots"), "roguelike3d"),
		CaptureMouse: g.window.CaptureMouse,
	}

	g.states = states.NewManager()
	g.states.Change(states.NewLoadingState(g.env, g.states))

	logger.Info("game initialized successfully")
	return g, nil
}

// Run starts the main game loop.
func (g *Game) Run() error {
	ctrl := controls{in: g.input, keymap: DefaultKeymap}

	var frameBudget time.Duration
	if g.config.Graphics.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(g.config.Graphics.FPSLimit)
	}

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	logger.Info("starting game loop")

	for !g.states.Quitting() {
		frameStart := time.Now()
		dt := frameStart.Sub(lastTime).Seconds()
		lastTime = frameStart

		if g.input.Update() {
			break
		}
		for _, event := range g.input.Events() {
			if event.Type != input.EventWindowResize {
				continue
			}
			g.env.Width, g.env.Height = event.Width, event.Height
			if err := g.states.Resize(event.Width, event.Height); err != nil {
				return fmt.Errorf("resize error: %w", err)
			}
		}

		if err := g.states.Update(dt, ctrl); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		g.ctx.Viewport(int32(g.env.Width), int32(g.env.Height))
		if err := g.states.Render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			if g.config.Game.ShowFPS {
				g.window.SetTitle(fmt.Sprintf("%s - %d FPS", Title, frameCount))
			}
			logger.Debug("fps", zap.Int("count", frameCount), zap.Float64("dtMs", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}

		if frameBudget > 0 {
			if spent := time.Since(frameStart); spent < frameBudget {
				time.Sleep(frameBudget - spent)
			}
		}
	}

	return nil
}

// Close cleans up game resources.
func (g *Game) Close() {
	logger.Info("closing game")

	if g.states != nil {
		if err := g.states.Close(); err != nil {
			logger.Warn("state exit failed", zap.Error(err))
		}
	}
	if g.env != nil {
		if store, ok := g.env.Textures.(*texture.Store); ok {
			store.Dispose()
		}
	}
	if g.cache != nil && g.ctx != nil {
		g.cache.Clear(g.ctx)
	}
	if g.ctx != nil {
		g.ctx.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
