package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/bumperfield/internal/config"
	"github.com/plus3/bumperfield/internal/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bumperfield.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 16, cfg.Bumpers.Count)
	assert.InDelta(t, 92.25, cfg.Bumpers.Spacing(), 1e-9)
	assert.Equal(t, geom.R(-500, -300, 500, 300), cfg.Bumpers.Area())
	assert.Equal(t, geom.Vec2{}, cfg.Player.Start())
	assert.Equal(t, geom.Vec2{}, cfg.Goal.Position())
	assert.Equal(t, 1500.0, cfg.Player.MoveForce)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := writeFile(t, `
bumpers:
  count: 4
  radius: 20
player:
  start_x: 10
log_level: debug
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Bumpers.Count)
	assert.Equal(t, 20.0, cfg.Bumpers.Radius)
	assert.Equal(t, 10.0, cfg.Player.StartX)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Untouched keys keep their defaults.
	assert.Equal(t, 2.05, cfg.Bumpers.SpacingFactor)
	assert.Equal(t, 1280, cfg.Window.Width)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := config.Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := config.Load(writeFile(t, "bumpers:\n  colour: red\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode yaml")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "seed: 7\nbumpers:\n  count: 4\n")
	t.Setenv("BUMPERFIELD_SEED", "42")
	t.Setenv("BUMPERFIELD_BUMPERS_SPIN", "120")
	t.Setenv("BUMPERFIELD_AUDIO_ENABLED", "false")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 4, cfg.Bumpers.Count)
	assert.Equal(t, 120.0, cfg.Bumpers.Spin)
	assert.False(t, cfg.Audio.Enabled)
}

func TestEnvParseError(t *testing.T) {
	t.Setenv("BUMPERFIELD_BUMPERS_COUNT", "many")

	_, err := config.Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*config.Config){
		"negative count":   func(c *config.Config) { c.Bumpers.Count = -1 },
		"zero radius":      func(c *config.Config) { c.Bumpers.Radius = 0 },
		"player radius":    func(c *config.Config) { c.Player.Radius = -3 },
		"inverted x":       func(c *config.Config) { c.Bumpers.MinX, c.Bumpers.MaxX = 10, -10 },
		"empty y":          func(c *config.Config) { c.Bumpers.MaxY = c.Bumpers.MinY },
		"spacing factor":   func(c *config.Config) { c.Bumpers.SpacingFactor = 0 },
		"pixels per metre": func(c *config.Config) { c.Physics.PixelsPerMetre = 0 },
		"substeps":         func(c *config.Config) { c.Physics.Substeps = 0 },
		"volume":           func(c *config.Config) { c.Audio.Volume = 1.5 },
		"log level":        func(c *config.Config) { c.LogLevel = "loud" },
		"log format":       func(c *config.Config) { c.LogFormat = "xml" },
		"window":           func(c *config.Config) { c.Window.Width = 0 },
		"max attempts":     func(c *config.Config) { c.Bumpers.MaxAttempts = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalid)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Bumpers.Count = -1
	cfg.LogLevel = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bumpers.count")
	assert.Contains(t, err.Error(), "log_level")
}

func TestLoadValidates(t *testing.T) {
	_, err := config.Load(writeFile(t, "audio:\n  volume: 3\n"))
	require.ErrorIs(t, err, config.ErrInvalid)
}
