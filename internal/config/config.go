// Package config handles game configuration loading and management.
package config

import "fmt"

// Light quality settings select the renderer for a screen.
const (
	LightQualityForward  = "forward"
	LightQualityDeferred = "deferred"
)

// Config holds all game settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics" toml:"graphics"`
	Render   RenderConfig   `yaml:"render" toml:"render"`
	Game     GameConfig     `yaml:"game" toml:"game"`
	Data     DataConfig     `yaml:"data" toml:"data"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// DataConfig holds game data file paths.
type DataConfig struct {
	TextureDir string `yaml:"texture_dir" toml:"texture_dir"` // Directory searched for named textures
	ModelDir   string `yaml:"model_dir" toml:"model_dir"`     // Optional rigged model definitions
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width        int    `yaml:"width" toml:"width"`
	Height       int    `yaml:"height" toml:"height"`
	Fullscreen   bool   `yaml:"fullscreen" toml:"fullscreen"`
	VSync        bool   `yaml:"vsync" toml:"vsync"`
	FPSLimit     int    `yaml:"fps_limit" toml:"fps_limit"`
	LightQuality string `yaml:"light_quality" toml:"light_quality"`
}

// RenderConfig holds scene rendering settings.
type RenderConfig struct {
	ViewDistance  float32    `yaml:"view_distance" toml:"view_distance"`
	MaxParticles  int        `yaml:"max_particles" toml:"max_particles"`
	MaxLights     int        `yaml:"max_lights" toml:"max_lights"` // dynamic lights per forward draw
	ShowCollision bool       `yaml:"show_collision" toml:"show_collision"`
	Ambient       [3]float32 `yaml:"ambient" toml:"ambient"`
}

// GameConfig holds gameplay settings.
type GameConfig struct {
	ShowFPS     bool `yaml:"show_fps" toml:"show_fps"`
	SwordLength int  `yaml:"sword_length" toml:"sword_length"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:        800,
			Height:       600,
			Fullscreen:   false,
			VSync:        true,
			FPSLimit:     0,
			LightQuality: LightQualityForward,
		},
		Render: RenderConfig{
			ViewDistance:  100,
			MaxParticles:  350,
			MaxLights:     3,
			ShowCollision: false,
			Ambient:       [3]float32{0.1, 0.1, 0.1},
		},
		Game: GameConfig{
			ShowFPS:     false,
			SwordLength: 3,
		},
		Data: DataConfig{
			TextureDir: "data/textures",
			ModelDir:   "data/models",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports configuration values the game cannot run with.
func (c *Config) Validate() error {
	switch c.Graphics.LightQuality {
	case LightQualityForward, LightQualityDeferred:
	default:
		return fmt.Errorf("graphics.light_quality %q: must be %q or %q",
			c.Graphics.LightQuality, LightQualityForward, LightQualityDeferred)
	}
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("graphics size %dx%d: must be positive", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Render.MaxLights < 0 {
		return fmt.Errorf("render.max_lights %d: must not be negative", c.Render.MaxLights)
	}
	if c.Game.SwordLength < 1 {
		return fmt.Errorf("game.sword_length %d: must be at least 1", c.Game.SwordLength)
	}
	return nil
}
