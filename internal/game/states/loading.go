package states

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/engine/rigged"
	"github.com/Faultbox/roguelike3d/internal/game/entity"
	"github.com/Faultbox/roguelike3d/internal/game/level"
	"github.com/Faultbox/roguelike3d/internal/logger"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// LoadingState builds the level, uploads it and hands over to InGameState.
type LoadingState struct {
	env     *Env
	manager *Manager

	Layout level.Layout

	level     *level.Level
	player    *entity.Actor
	startTime time.Time
}

// NewLoadingState creates a new loading state.
func NewLoadingState(env *Env, manager *Manager) *LoadingState {
	return &LoadingState{
		env:     env,
		manager: manager,
		Layout:  level.DefaultLayout,
	}
}

// Enter builds and creates the level.
func (s *LoadingState) Enter() error {
	s.startTime = time.Now()
	cfg := s.env.Config
	logger.Info("entering LoadingState", zap.Int("swordLength", cfg.Game.SwordLength))

	sword, err := loadModel(cfg.Data.ModelDir, rigged.ClassSword, func() (*rigged.Model, error) {
		return rigged.Sword(cfg.Game.SwordLength)
	})
	if err != nil {
		return err
	}

	s.player = entity.NewActor("player", entity.TypePlayer)
	s.player.Equip(sword, rigged.Right)

	s.level, err = level.Dungeon(s.Layout, s.player)
	if err != nil {
		return fmt.Errorf("build level: %w", err)
	}
	a := cfg.Render.Ambient
	s.level.Ambient = math.Vec3{X: a[0], Y: a[1], Z: a[2]}
	s.level.MaxParticles = cfg.Render.MaxParticles

	if err := s.level.Create(s.env.Ctx, s.env.Cache, s.env.Textures); err != nil {
		return fmt.Errorf("create level: %w", err)
	}
	logger.Info("level loaded", zap.Duration("elapsed", time.Since(s.startTime)))
	return nil
}

// loadModel reads <dir>/<class>.yaml when it exists and builds the model
// with build otherwise.
func loadModel(dir, class string, build func() (*rigged.Model, error)) (*rigged.Model, error) {
	if dir != "" {
		path := filepath.Join(dir, class+".yaml")
		m, err := rigged.LoadFile(path)
		if err == nil {
			logger.Info("model loaded", zap.String("class", class), zap.String("path", path))
			return m, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	return build()
}

// Exit is called when leaving this state.
func (s *LoadingState) Exit() error {
	return nil
}

// Update switches to the game once the level exists.
func (s *LoadingState) Update(dt float64, in Controls) error {
	if s.level != nil {
		s.manager.Change(NewInGameState(s.env, s.manager, s.level, s.player))
		s.level = nil
	}
	return nil
}

// Render clears the screen while loading.
func (s *LoadingState) Render() error {
	s.env.Ctx.Clear(0, 0, 0, 1)
	return nil
}

// Resize is called when the drawable size changes.
func (s *LoadingState) Resize(width, height int) error {
	return nil
}
