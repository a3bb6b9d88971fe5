// Command bumperfield opens the sandbox window.
package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/bumperfield/internal/audio"
	"github.com/plus3/bumperfield/internal/config"
	"github.com/plus3/bumperfield/internal/debugui"
	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/input"
	"github.com/plus3/bumperfield/internal/logging"
	"github.com/plus3/bumperfield/internal/sandbox"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file.")
	seed := flag.Uint64("seed", 0, "Bumper field seed. 0 keeps the configured seed.")
	debugUI := flag.Bool("debug-ui", false, "Show the Dear ImGui overlay.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// No logger yet; the config decides its shape.
		fallback, _ := zap.NewProduction()
		fallback.Fatal("load config", zap.Error(err))
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *debugUI {
		cfg.DebugUI = true
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("build logger", zap.Error(err))
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("bumperfield stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)

	opts := sandbox.Options{
		Logger: logger,
		Input:  &input.Ebiten{},
	}
	if cfg.Audio.Enabled {
		opts.Audio = audio.NewEbiten()
	}
	if cfg.DebugUI {
		opts.Registry = ecs.NewComponentRegistry()
		debugui.RegisterComponents(opts.Registry)
	}

	sb, err := sandbox.New(cfg, opts)
	if err != nil {
		return err
	}

	game := &sandbox.Game{Sandbox: sb}
	if cfg.DebugUI {
		game.Overlay = debugui.NewBackend(cfg.Window.Title, cfg.Window.Width, cfg.Window.Height)
		debugui.Install(sb)
	}

	logger.Info("starting",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.Bool("debug_ui", cfg.DebugUI),
		zap.Bool("audio", cfg.Audio.Enabled),
	)
	if err := ebiten.RunGame(game); err != nil {
		return err
	}
	logger.Info("bye", zap.Int("bumps", sb.Hud().Bumps))
	return nil
}
