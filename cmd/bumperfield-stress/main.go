// Command bumperfield-stress runs the sandbox headless with a scripted
// player and prints a Markdown report.
package main

import (
	"context"
	"flag"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/bumperfield/internal/audio"
	"github.com/plus3/bumperfield/internal/config"
	"github.com/plus3/bumperfield/internal/geom"
	"github.com/plus3/bumperfield/internal/input"
	"github.com/plus3/bumperfield/internal/logging"
	"github.com/plus3/bumperfield/internal/physics"
	"github.com/plus3/bumperfield/internal/sandbox"
	"go.uber.org/zap"
)

const tickRate = 60

func main() {
	duration := flag.Duration("duration", 10*time.Second, "How long to run for.")
	bumpers := flag.Int("bumpers", -1, "Bumper count. Negative keeps the configured count.")
	seed := flag.Uint64("seed", 0, "Bumper field seed. 0 keeps the configured seed.")
	reseedEvery := flag.Duration("reseed-every", 2*time.Second, "Simulated time between reseeds. 0 disables.")
	configPath := flag.String("config", "", "Path to a YAML config file.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("load config", zap.Error(err))
	}
	applyFlags(&cfg, *seed, *bumpers)

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fallback, _ := zap.NewProduction()
		fallback.Fatal("build logger", zap.Error(err))
	}
	defer logger.Sync()

	report, err := run(cfg, *duration, *reseedEvery, logger)
	if err != nil {
		logger.Error("stress run failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	if err := report.Generate(os.Stdout); err != nil {
		logger.Fatal("write report", zap.Error(err))
	}
}

// applyFlags lays the command line over the loaded config. Zero seeds and
// negative counts leave the config alone.
func applyFlags(cfg *config.Config, seed uint64, bumpers int) {
	if seed != 0 {
		cfg.Seed = seed
	}
	if bumpers >= 0 {
		cfg.Bumpers.Count = bumpers
	}
}

// steer points the stick around a slowly turning circle, with a full
// reversal every few seconds so the player keeps hitting things.
func steer(src *input.Scripted, simTime float64) {
	angle := simTime * 0.7
	if int(simTime/3)%2 == 1 {
		angle += math.Pi
	}
	src.HasStick = true
	src.Stick = geom.V(math.Cos(angle), math.Sin(angle))
}

func run(cfg config.Config, duration, reseedEvery time.Duration, logger *zap.Logger) (*Report, error) {
	src := &input.Scripted{}
	recorder := &audio.Recorder{}

	sb, err := sandbox.New(cfg, sandbox.Options{
		Logger: logger,
		Input:  src,
		Audio:  recorder,
	})
	if err != nil {
		return nil, err
	}

	var events *physics.Events
	sb.Storage.ReadSingleton(&events)

	report := &Report{
		Duration: duration,
		Bumpers:  cfg.Bumpers.Count,
		Seed:     sb.Hud().Seed,
		Substeps: cfg.Physics.Substeps,
		Draws:    sb.Hud().Draws,
	}
	runtime.ReadMemStats(&report.MemStatsStart)

	logger.Info("running", zap.Duration("duration", duration), zap.Int("bumpers", cfg.Bumpers.Count))
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	const dt = 1.0 / tickRate
	reseedTicks := int64(reseedEvery.Seconds() * tickRate)
	start := time.Now()
	var ticks int64

Loop:
	for {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		steer(src, float64(ticks)*dt)
		if reseedTicks > 0 && ticks > 0 && ticks%reseedTicks == 0 {
			src.Tap(ebiten.KeyR)
			report.Reseeds++
		}

		updateStart := time.Now()
		sb.Step(dt)
		report.UpdateTime.Samples = append(report.UpdateTime.Samples, time.Since(updateStart))

		report.ContactEvents += len(events.Contacts)
		src.Advance()
		ticks++
	}

	report.TotalTime = time.Since(start)
	report.TotalUpdates = ticks
	report.SimulatedTime = time.Duration(float64(ticks) * dt * float64(time.Second))
	report.UpdateTime.Finalize()
	report.Bumps = sb.Hud().Bumps
	report.Sounds = recorder.Count()
	report.ReseedDraws = sb.Hud().Draws
	report.Systems = sb.Update.GetStats().Systems
	report.World = sb.Storage.CollectStats()
	runtime.ReadMemStats(&report.MemStatsEnd)

	logger.Info("finished", zap.Int64("ticks", ticks), zap.Int("contact_events", report.ContactEvents))
	return report, nil
}
