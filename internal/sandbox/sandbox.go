// Package sandbox is the bumper field itself: the player ball, the goal
// ring and the bumpers, the systems that move and score them, and the
// ebiten game that hosts it all.
package sandbox

import (
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/bumperfield/internal/audio"
	"github.com/plus3/bumperfield/internal/config"
	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/input"
	"github.com/plus3/bumperfield/internal/physics"
	"go.uber.org/zap"
)

// Options are the parts of a sandbox that come from outside.
type Options struct {
	Logger *zap.Logger
	Input  input.Source
	Audio  audio.Player
	// Registry, when set, is used instead of a fresh one so callers can
	// register their own components first.
	Registry *ecs.ComponentRegistry
}

// Sandbox owns the world and its two schedulers: Update runs once per
// tick, Render once per drawn frame.
type Sandbox struct {
	Storage *ecs.Storage
	Update  *ecs.Scheduler
	Render  *ecs.Scheduler

	cfg     config.Config
	logger  *zap.Logger
	rng     *rand.Rand
	hud     *ecs.Singleton[Hud]
	control *ecs.Singleton[Control]
	screen  *ecs.Singleton[Screen]
	quit    bool
}

const (
	// fullVolumeSpeed is the hit speed, in px/s, that plays at full volume.
	fullVolumeSpeed = 600
	density         = 1
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// New builds the world from cfg and places the first bumper field. A
// zero cfg.Seed picks a random seed.
func New(cfg config.Config, opts Options) (*Sandbox, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	player := opts.Audio
	if player == nil || !cfg.Audio.Enabled {
		player = audio.Nop{}
	}

	registry := opts.Registry
	if registry == nil {
		registry = ecs.NewComponentRegistry()
	}
	RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	physics.Install(storage, physics.Config{
		Gravity:        cfg.Physics.Gravity(),
		PixelsPerMetre: cfg.Physics.PixelsPerMetre,
		Density:        density,
		Substeps:       cfg.Physics.Substeps,
	})
	playerMass := physics.Mass(cfg.Player.Radius, density, cfg.Physics.PixelsPerMetre)
	ecs.NewSingleton[Tuning](storage, Tuning{
		MoveForce:         cfg.Player.MoveForce,
		Spin:              cfg.Bumpers.Spin,
		Volume:            cfg.Audio.Volume,
		FullVolumeImpulse: playerMass * fullVolumeSpeed,
	})

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	sb := &Sandbox{
		Storage: storage,
		Update:  ecs.NewScheduler(storage),
		Render:  ecs.NewScheduler(storage),
		cfg:     cfg,
		logger:  logger,
		rng:     newRand(seed),
		hud:     ecs.NewSingleton[Hud](storage, Hud{Seed: seed}),
		control: ecs.NewSingleton[Control](storage),
		screen:  ecs.NewSingleton[Screen](storage),
	}

	res, err := Setup(storage, cfg, sb.rng)
	if err != nil {
		logger.Error("bumper placement failed", zap.Uint64("seed", seed), zap.Error(err))
		return nil, err
	}
	hud := sb.hud.Get()
	hud.Draws = res.Draws
	hud.Bumpers = len(res.Points)
	logger.Info("bumper field placed",
		zap.Uint64("seed", seed),
		zap.Int("bumpers", len(res.Points)),
		zap.Int("draws", res.Draws),
	)

	sb.Update.Register(&input.System{Source: opts.Input})
	sb.Update.Register(&ControlSystem{Source: opts.Input})
	sb.Update.Register(&MovementSystem{})
	sb.Update.Register(&physics.StepSystem{Modifier: SpinModifier{}})
	sb.Update.Register(&BumpSoundSystem{Player: player, Logger: logger})
	sb.Update.Register(&HudSystem{})
	sb.Update.Register(&FlashSystem{})

	sb.Render.Register(&RenderSystem{})
	return sb, nil
}

// Config returns the configuration the sandbox was built with.
func (sb *Sandbox) Config() config.Config {
	return sb.cfg
}

// Hud returns the live HUD state.
func (sb *Sandbox) Hud() *Hud {
	return sb.hud.Get()
}

// Step advances the world by dt seconds and then acts on any reseed or
// quit request made during the frame.
func (sb *Sandbox) Step(dt float64) {
	sb.Update.Once(dt)

	control := sb.control.Get()
	if control.Reseed {
		control.Reseed = false
		if err := sb.Reseed(sb.rng.Uint64()); err != nil {
			sb.logger.Warn("reseed failed, keeping the current field", zap.Error(err))
		}
	}
	if control.Quit {
		sb.quit = true
	}
}

// RequestReseed asks for a new bumper field after the current frame.
func (sb *Sandbox) RequestReseed() {
	sb.control.Get().Reseed = true
}

// Reseed replaces the bumper field with one drawn from seed. On error
// the field, the HUD and the generator are left as they were.
func (sb *Sandbox) Reseed(seed uint64) error {
	rng := newRand(seed)
	res, err := Refield(sb.Storage, sb.cfg, rng)
	if err != nil {
		return err
	}
	sb.rng = rng
	// Bumpers deleted while flashing leave holes in their archetype.
	sb.Storage.Compact()
	hud := sb.hud.Get()
	hud.Seed = seed
	hud.Draws = res.Draws
	hud.Bumpers = len(res.Points)
	sb.logger.Info("bumper field reseeded",
		zap.Uint64("seed", seed),
		zap.Int("bumpers", len(res.Points)),
		zap.Int("draws", res.Draws),
	)
	return nil
}

// Quit reports whether a quit was requested.
func (sb *Sandbox) Quit() bool {
	return sb.quit
}

// Draw renders the world into screen.
func (sb *Sandbox) Draw(screen *ebiten.Image) {
	sb.screen.Get().Image = screen
	sb.Render.Once(0)
	sb.screen.Get().Image = nil
}
