package states

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/roguelike3d/internal/config"
	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/lighting"
	"github.com/Faultbox/roguelike3d/internal/engine/particle"
	"github.com/Faultbox/roguelike3d/internal/engine/render"
	"github.com/Faultbox/roguelike3d/internal/game/entity"
	"github.com/Faultbox/roguelike3d/internal/game/level"
	"github.com/Faultbox/roguelike3d/internal/logger"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// InGameState runs the level: each frame Update moves the player and the
// level, then Render rebuilds lights, composes every model, draws the scene
// and finally the visible particles, far to near.
type InGameState struct {
	env     *Env
	manager *Manager

	level  *level.Level
	player *entity.Actor

	cam      *camera.Camera
	look     *camera.FirstPerson
	renderer render.Renderer
	lights   *lighting.Manager
	emitters []*particle.Emitter

	// MoveSpeed is the player's walking speed in units per second.
	MoveSpeed float32

	paused         bool
	showCollision  bool
	screenshotNext bool

	statsTimer       float32
	frames           int
	particleNum      int
	drawnParticleNum int
}

// NewInGameState creates the in-game state for a created level.
func NewInGameState(env *Env, manager *Manager, lvl *level.Level, player *entity.Actor) *InGameState {
	return &InGameState{
		env:           env,
		manager:       manager,
		level:         lvl,
		player:        player,
		look:          camera.NewFirstPerson(),
		lights:        lighting.NewManager(lvl.Ambient),
		MoveSpeed:     4,
		showCollision: env.Config.Render.ShowCollision,
		statsTimer:    1,
	}
}

// Enter creates the renderer and camera.
func (s *InGameState) Enter() error {
	s.cam = camera.NewPerspective(90, float32(s.env.Width), float32(s.env.Height))
	s.cam.Near = 0.01
	s.cam.Far = s.env.Config.Render.ViewDistance
	s.look.Yaw = s.player.Yaw

	r, err := s.createRenderer(s.env.Config.Graphics.LightQuality)
	if err != nil {
		return err
	}
	s.renderer = r
	s.followPlayer()
	s.env.captureMouse(true)

	logger.Info("entering InGameState", zap.String("renderer", s.RenderType()))
	return nil
}

// createRenderer builds the renderer for quality. A deferred renderer that
// cannot compile or allocate its buffers falls back to forward.
func (s *InGameState) createRenderer(quality string) (render.Renderer, error) {
	r, err := render.New(quality, s.env.Ctx, s.env.Cache)
	if err != nil {
		return nil, err
	}
	if f, ok := r.(*render.Forward); ok {
		f.ClampLights(s.env.Config.Render.MaxLights)
		logger.Debug("forward light limit", zap.Int("lights", f.MaxLights()))
	}
	err = r.CreateShader()
	if err == nil {
		err = r.UpdateResolution(int32(s.env.Width), int32(s.env.Height))
	}
	if err == nil {
		return r, nil
	}
	r.Dispose()
	if quality == config.LightQualityForward {
		return nil, fmt.Errorf("forward renderer: %w", err)
	}
	logger.Warn("renderer unavailable, falling back to forward",
		zap.String("quality", quality), zap.Error(err))
	return s.createRenderer(config.LightQualityForward)
}

// Exit releases the renderer and the level.
func (s *InGameState) Exit() error {
	if s.renderer != nil {
		s.renderer.Dispose()
		s.renderer = nil
	}
	s.level.Dispose(s.env.Ctx)
	s.env.captureMouse(false)
	return nil
}

// Paused reports whether the game is paused.
func (s *InGameState) Paused() bool { return s.paused }

// Camera returns the player camera.
func (s *InGameState) Camera() *camera.Camera { return s.cam }

// Renderer returns the active renderer.
func (s *InGameState) Renderer() render.Renderer { return s.renderer }

// RenderType names the renderer and, for deferred, the buffer on show.
func (s *InGameState) RenderType() string {
	if s.renderer == nil {
		return ""
	}
	return s.renderer.Name()
}

// Update handles hotkeys, then advances the level unless paused.
func (s *InGameState) Update(dt float64, in Controls) error {
	if in.Pressed(KeyQuit) {
		s.manager.Quit()
		return nil
	}
	if in.Pressed(KeyPause) {
		s.paused = !s.paused
		s.env.captureMouse(!s.paused)
		if s.paused && s.player.Weapon != nil {
			s.player.Weapon.Cancel()
		}
	}
	if in.Pressed(KeyBufferView) {
		if d, ok := s.renderer.(*render.Deferred); ok {
			view := d.CycleBufferView()
			logger.Info("buffer view", zap.Stringer("view", view))
		}
	}
	if in.Pressed(KeyCollision) {
		s.showCollision = !s.showCollision
	}
	if in.Pressed(KeyScreenshot) {
		s.screenshotNext = true
	}

	step := float32(dt)
	s.statsTimer -= step
	if s.paused {
		return nil
	}

	dx, dy := in.Look()
	s.look.HandleLook(dx, dy)
	s.player.Yaw = s.look.Yaw
	s.move(in, step)

	if s.player.Weapon != nil {
		if in.Down(KeyAttack) {
			s.player.Weapon.Held()
		} else {
			s.player.Weapon.Released()
		}
	}

	s.level.Update(step, s.cam)
	s.level.ComposeMatrices()
	s.level.CheckHits()
	s.followPlayer()
	return nil
}

// move walks the player, sliding along whatever blocks one axis.
func (s *InGameState) move(in Controls, dt float32) {
	var forward, strafe float32
	if in.Down(KeyForward) {
		forward++
	}
	if in.Down(KeyBack) {
		forward--
	}
	if in.Down(KeyRight) {
		strafe++
	}
	if in.Down(KeyLeft) {
		strafe--
	}
	if forward == 0 && strafe == 0 {
		return
	}

	fx, fz := s.look.ForwardDirection()
	rx, rz := s.look.RightDirection()
	dir := math.Vec3{X: fx*forward + rx*strafe, Z: fz*forward + rz*strafe}.Normalize().Scale(s.MoveSpeed * dt)

	for _, d := range []math.Vec3{{X: dir.X}, {Z: dir.Z}} {
		next := s.player.Position.Add(d)
		if !s.blocked(next) {
			s.player.Position = next
		}
	}
}

func (s *InGameState) blocked(pos math.Vec3) bool {
	centre := pos.Add(math.Vec3{Y: s.player.EyeHeight / 2})
	r := s.player.Radius
	return s.level.CollideSphere(centre, r, s.player.UID()) ||
		s.level.CollideSphereStatics(centre, r) ||
		s.level.CollideSphereActors(centre, r, s.player.UID()) != nil
}

func (s *InGameState) followPlayer() {
	s.cam.Position = s.player.Eye()
	s.look.Apply(s.cam)
}

// Render draws one frame.
func (s *InGameState) Render() error {
	if s.renderer == nil {
		return errors.New("in-game state has no renderer")
	}
	ctx := s.env.Ctx

	s.level.GetLights(s.lights)
	s.level.ComposeMatrices()

	s.renderer.Begin(s.cam)
	s.emitters = s.level.Render(s.renderer, s.cam, s.emitters[:0])
	s.renderer.End(s.lights)

	if err := s.drawParticles(); err != nil {
		return err
	}
	if s.showCollision {
		s.level.DrawCollision(ctx, s.cam)
	}

	s.frames++
	if s.statsTimer <= 0 {
		s.logStats()
	}

	if s.screenshotNext {
		s.screenshotNext = false
		if s.env.Screenshots != nil {
			if _, err := s.env.Screenshots.Capture(ctx, s.env.Width, s.env.Height); err != nil {
				logger.Warn("screenshot failed", zap.Error(err))
			}
		}
	}
	return nil
}

func (s *InGameState) drawParticles() error {
	s.particleNum = 0
	if len(s.emitters) == 0 {
		return nil
	}
	slices.SortFunc(s.emitters, particle.Comparator(s.cam))

	p, err := particle.Begin(s.env.Ctx, s.env.Cache, s.cam)
	if err != nil {
		return fmt.Errorf("particles: %w", err)
	}
	for _, e := range s.emitters {
		s.particleNum += e.ActiveParticles()
		e.Render(s.env.Ctx, p)
	}
	particle.End(s.env.Ctx)
	return nil
}

func (s *InGameState) logStats() {
	s.drawnParticleNum = s.particleNum
	stats := s.renderer.Stats()
	logger.Debug("frame stats",
		zap.Int("fps", s.frames),
		zap.String("renderType", s.RenderType()),
		zap.Int("visibleParticles", s.drawnParticleNum),
		zap.Int("draws", stats.Draws),
		zap.Int("culled", stats.Culled),
		zap.Int("lights", stats.Lights),
		zap.Bool("paused", s.paused))
	if total := s.level.ActiveParticles(); total > s.level.MaxParticles {
		logger.Warn("particle budget exceeded",
			zap.Int("active", total), zap.Int("max", s.level.MaxParticles))
	}
	s.statsTimer = 1
	s.frames = 0
}

// VisibleParticles returns the particle count from the last stats tick.
func (s *InGameState) VisibleParticles() int { return s.drawnParticleNum }

// Resize updates the camera and the renderer's buffers.
func (s *InGameState) Resize(width, height int) error {
	s.env.Width, s.env.Height = width, height
	s.cam.SetViewport(float32(width), float32(height))
	if err := s.renderer.UpdateResolution(int32(width), int32(height)); err != nil {
		return fmt.Errorf("resize renderer: %w", err)
	}
	return nil
}
