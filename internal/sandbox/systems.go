package sandbox

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/bumperfield/internal/audio"
	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/input"
	"github.com/plus3/bumperfield/internal/physics"
	"go.uber.org/zap"
)

// MovementSystem turns the player's Move action into an external force.
// The force is scaled by the frame time.
type MovementSystem struct {
	Players ecs.Query[struct {
		*Player
		State *input.ActionState
		Force *physics.ExternalForce
	}]
	Tuning ecs.Singleton[Tuning]
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	tuning := s.Tuning.Get()
	for p := range s.Players.Values() {
		axis := p.State.ClampedAxisPair(input.Move)
		p.Force.Force = axis.Scale(tuning.MoveForce * frame.DeltaTime)
	}
}

// ControlSystem maps R to a reseed and Q or Escape to quit.
type ControlSystem struct {
	Control ecs.Singleton[Control]
	Source  input.Source
}

func (s *ControlSystem) Execute(frame *ecs.UpdateFrame) {
	if s.Source == nil {
		return
	}
	control := s.Control.Get()
	if s.Source.IsKeyJustPressed(ebiten.KeyR) {
		control.Reseed = true
	}
	if s.Source.IsKeyPressed(ebiten.KeyQ) || s.Source.IsKeyPressed(ebiten.KeyEscape) {
		control.Quit = true
	}
}

// HudSystem advances the clock and counts bumper hits.
type HudSystem struct {
	Hud     ecs.Singleton[Hud]
	Events  ecs.Singleton[physics.Events]
	Bumpers ecs.Query[struct{ *Bumper }]
}

func (s *HudSystem) Execute(frame *ecs.UpdateFrame) {
	hud := s.Hud.Get()
	hud.Elapsed += frame.DeltaTime
	hud.Bumpers = s.Bumpers.Len()
	for _, ev := range s.Events.Get().Contacts {
		if _, ok := bumperContact(frame.Storage, ev); ok {
			hud.Bumps++
		}
	}
}

// FlashDuration is how long a bumper stays lit after a hit, in seconds.
const FlashDuration = 0.15

// FlashSystem lights bumpers up when they are hit. The Flash component is
// added and removed through the frame's commands.
type FlashSystem struct {
	Events   ecs.Singleton[physics.Events]
	Flashing ecs.Query[struct{ Flash *Flash }]
}

func (s *FlashSystem) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Flashing.Values() {
		e.Flash.Remaining -= frame.DeltaTime
	}
	for _, ev := range s.Events.Get().Contacts {
		bumper, ok := bumperContact(frame.Storage, ev)
		if !ok {
			continue
		}
		if flash, ok := frame.Storage.GetComponent(bumper, flashType).(*Flash); ok {
			flash.Remaining = FlashDuration
			continue
		}
		frame.Commands.AddComponent(bumper, Flash{Remaining: FlashDuration})
	}
	for id, e := range s.Flashing.Iter() {
		if e.Flash.Remaining <= 0 {
			frame.Commands.RemoveComponent(id, flashType)
		}
	}
}

// MinBumpInterval is the shortest gap between two bump tones, in seconds.
const MinBumpInterval = 0.05

// BumpSoundSystem plays a tone for bumper contacts, louder for harder
// hits.
type BumpSoundSystem struct {
	Events ecs.Singleton[physics.Events]
	Tuning ecs.Singleton[Tuning]

	Player audio.Player
	Logger *zap.Logger

	pcm   []byte
	clock float64
	last  float64
	ready bool
}

func (s *BumpSoundSystem) Execute(frame *ecs.UpdateFrame) {
	if !s.ready {
		s.pcm = audio.Render(audio.DefaultBump.Streamer())
		s.last = math.Inf(-1)
		s.ready = true
	}
	s.clock += frame.DeltaTime

	tuning := s.Tuning.Get()
	for _, ev := range s.Events.Get().Contacts {
		bumper, ok := bumperContact(frame.Storage, ev)
		if !ok {
			continue
		}
		if s.Logger != nil {
			s.Logger.Debug("bumper contact",
				zap.Uint64("bumper", uint64(bumper)),
				zap.Float64("impulse", ev.Impulse),
				zap.Float64("x", ev.Point.X),
				zap.Float64("y", ev.Point.Y),
			)
		}
		if s.Player == nil || s.clock-s.last < MinBumpInterval {
			continue
		}
		volume := tuning.Volume
		if tuning.FullVolumeImpulse > 0 {
			volume *= min(ev.Impulse/tuning.FullVolumeImpulse, 1)
		}
		if volume <= 0 {
			continue
		}
		s.Player.Play(s.pcm, volume)
		s.last = s.clock
	}
}

// SpinModifier makes bumper surfaces drag contacts sideways at
// Tuning.Spin px/s.
type SpinModifier struct{}

func (SpinModifier) ModifySolverContacts(pair *physics.ContactPair) {
	var tuning *Tuning
	if !pair.Storage.ReadSingleton(&tuning) || tuning.Spin == 0 {
		return
	}
	if !isBumper(pair.Storage, pair.A) && !isBumper(pair.Storage, pair.B) {
		return
	}
	pair.TangentVelocity = tuning.Spin
}
