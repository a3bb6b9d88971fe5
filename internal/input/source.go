package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/bumperfield/internal/geom"
)

// Source is where raw device state comes from.
type Source interface {
	IsKeyPressed(key ebiten.Key) bool
	IsKeyJustPressed(key ebiten.Key) bool
	// LeftStick returns the left stick of the n-th connected gamepad with
	// y up, or false if there is no such standard-layout gamepad.
	LeftStick(n int) (geom.Vec2, bool)
}

// Ebiten reads the devices ebiten sees.
type Ebiten struct {
	ids []ebiten.GamepadID
}

func (e *Ebiten) IsKeyPressed(key ebiten.Key) bool {
	return ebiten.IsKeyPressed(key)
}

func (e *Ebiten) IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}

func (e *Ebiten) LeftStick(n int) (geom.Vec2, bool) {
	e.ids = ebiten.AppendGamepadIDs(e.ids[:0])
	if n < 0 || n >= len(e.ids) {
		return geom.Vec2{}, false
	}
	id := e.ids[n]
	if !ebiten.IsStandardGamepadLayoutAvailable(id) {
		return geom.Vec2{}, false
	}
	x := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
	y := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
	return geom.V(x, -y), true
}

// Scripted is a Source driven by code, for tests and headless runs.
type Scripted struct {
	Keys     map[ebiten.Key]bool
	Stick    geom.Vec2
	HasStick bool
	// Just lists keys reported as just pressed until the next Advance.
	Just map[ebiten.Key]bool
}

func (s *Scripted) IsKeyPressed(key ebiten.Key) bool {
	return s.Keys[key]
}

func (s *Scripted) IsKeyJustPressed(key ebiten.Key) bool {
	return s.Just[key]
}

func (s *Scripted) LeftStick(n int) (geom.Vec2, bool) {
	if n != 0 || !s.HasStick {
		return geom.Vec2{}, false
	}
	return s.Stick, true
}

// Hold sets key as held (or released).
func (s *Scripted) Hold(key ebiten.Key, held bool) {
	if s.Keys == nil {
		s.Keys = make(map[ebiten.Key]bool)
	}
	s.Keys[key] = held
}

// Tap marks key as just pressed for the current frame.
func (s *Scripted) Tap(key ebiten.Key) {
	if s.Just == nil {
		s.Just = make(map[ebiten.Key]bool)
	}
	s.Just[key] = true
}

// Advance ends the frame, clearing taps.
func (s *Scripted) Advance() {
	clear(s.Just)
}
