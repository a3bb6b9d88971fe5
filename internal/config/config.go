// Package config loads sandbox settings from defaults, an optional YAML
// file and BUMPERFIELD_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/plus3/bumperfield/internal/geom"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "BUMPERFIELD_"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Window    Window  `yaml:"window" envPrefix:"WINDOW_"`
	Physics   Physics `yaml:"physics" envPrefix:"PHYSICS_"`
	Player    Player  `yaml:"player" envPrefix:"PLAYER_"`
	Goal      Goal    `yaml:"goal" envPrefix:"GOAL_"`
	Bumpers   Bumpers `yaml:"bumpers" envPrefix:"BUMPERS_"`
	Audio     Audio   `yaml:"audio" envPrefix:"AUDIO_"`
	Seed      uint64  `yaml:"seed" env:"SEED"`
	DebugUI   bool    `yaml:"debug_ui" env:"DEBUG_UI"`
	LogLevel  string  `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string  `yaml:"log_format" env:"LOG_FORMAT"`
}

type Window struct {
	Width  int    `yaml:"width" env:"WIDTH"`
	Height int    `yaml:"height" env:"HEIGHT"`
	Title  string `yaml:"title" env:"TITLE"`
}

type Physics struct {
	PixelsPerMetre float64 `yaml:"pixels_per_metre" env:"PIXELS_PER_METRE"`
	GravityX       float64 `yaml:"gravity_x" env:"GRAVITY_X"`
	GravityY       float64 `yaml:"gravity_y" env:"GRAVITY_Y"`
	Substeps       int     `yaml:"substeps" env:"SUBSTEPS"`
}

type Player struct {
	Radius         float64 `yaml:"radius" env:"RADIUS"`
	StartX         float64 `yaml:"start_x" env:"START_X"`
	StartY         float64 `yaml:"start_y" env:"START_Y"`
	MoveForce      float64 `yaml:"move_force" env:"MOVE_FORCE"`
	LinearDamping  float64 `yaml:"linear_damping" env:"LINEAR_DAMPING"`
	AngularDamping float64 `yaml:"angular_damping" env:"ANGULAR_DAMPING"`
	Restitution    float64 `yaml:"restitution" env:"RESTITUTION"`
}

type Goal struct {
	X float64 `yaml:"x" env:"X"`
	Y float64 `yaml:"y" env:"Y"`
}

type Bumpers struct {
	Count         int     `yaml:"count" env:"COUNT"`
	Radius        float64 `yaml:"radius" env:"RADIUS"`
	SpacingFactor float64 `yaml:"spacing_factor" env:"SPACING_FACTOR"`
	MinX          float64 `yaml:"min_x" env:"MIN_X"`
	MaxX          float64 `yaml:"max_x" env:"MAX_X"`
	MinY          float64 `yaml:"min_y" env:"MIN_Y"`
	MaxY          float64 `yaml:"max_y" env:"MAX_Y"`
	Restitution   float64 `yaml:"restitution" env:"RESTITUTION"`
	Spin          float64 `yaml:"spin" env:"SPIN"`
	MaxAttempts   int     `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
}

type Audio struct {
	Enabled bool    `yaml:"enabled" env:"ENABLED"`
	Volume  float64 `yaml:"volume" env:"VOLUME"`
}

func Default() Config {
	return Config{
		Window: Window{Width: 1280, Height: 720, Title: "bumperfield"},
		Physics: Physics{
			PixelsPerMetre: 200,
			Substeps:       4,
		},
		Player: Player{
			Radius:         35,
			MoveForce:      1500,
			LinearDamping:  0.6,
			AngularDamping: 0.1,
			Restitution:    1.0,
		},
		Bumpers: Bumpers{
			Count:         16,
			Radius:        45,
			SpacingFactor: 2.05,
			MinX:          -500,
			MaxX:          500,
			MinY:          -300,
			MaxY:          300,
			Restitution:   3.0,
			MaxAttempts:   100000,
		},
		Audio:     Audio{Enabled: true, Volume: 0.5},
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Spacing is the minimum distance between bumper centres.
func (b Bumpers) Spacing() float64 {
	return b.Radius * b.SpacingFactor
}

// Area is the rectangle bumpers are drawn from.
func (b Bumpers) Area() geom.Rect {
	return geom.R(b.MinX, b.MinY, b.MaxX, b.MaxY)
}

func (p Player) Start() geom.Vec2 {
	return geom.V(p.StartX, p.StartY)
}

func (g Goal) Position() geom.Vec2 {
	return geom.V(g.X, g.Y)
}

func (p Physics) Gravity() geom.Vec2 {
	return geom.V(p.GravityX, p.GravityY)
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := DecodeYAML(data, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// DecodeYAML overlays data onto cfg. Unknown keys are an error.
func DecodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// ParseEnv overlays BUMPERFIELD_* variables onto cfg.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

var logLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(c.Physics.PixelsPerMetre > 0, "physics.pixels_per_metre %v must be positive", c.Physics.PixelsPerMetre)
	check(c.Physics.Substeps >= 1, "physics.substeps %d must be at least 1", c.Physics.Substeps)
	check(c.Player.Radius > 0, "player.radius %v must be positive", c.Player.Radius)
	check(c.Player.LinearDamping >= 0 && c.Player.AngularDamping >= 0, "player damping must not be negative")
	check(c.Bumpers.Count >= 0, "bumpers.count %d must not be negative", c.Bumpers.Count)
	check(c.Bumpers.Radius > 0, "bumpers.radius %v must be positive", c.Bumpers.Radius)
	check(c.Bumpers.SpacingFactor > 0, "bumpers.spacing_factor %v must be positive", c.Bumpers.SpacingFactor)
	check(c.Bumpers.MinX < c.Bumpers.MaxX, "bumpers.min_x %v must be below max_x %v", c.Bumpers.MinX, c.Bumpers.MaxX)
	check(c.Bumpers.MinY < c.Bumpers.MaxY, "bumpers.min_y %v must be below max_y %v", c.Bumpers.MinY, c.Bumpers.MaxY)
	check(c.Bumpers.MaxAttempts >= 0, "bumpers.max_attempts %d must not be negative", c.Bumpers.MaxAttempts)
	check(c.Audio.Volume >= 0 && c.Audio.Volume <= 1, "audio.volume %v must be within [0, 1]", c.Audio.Volume)
	check(logLevels[c.LogLevel], "unknown log_level %q", c.LogLevel)
	check(c.LogFormat == "console" || c.LogFormat == "json", "unknown log_format %q", c.LogFormat)

	return errors.Join(errs...)
}
