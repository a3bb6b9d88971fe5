// Package input turns keyboard and gamepad state into action values.
package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/geom"
)

// Action names something the player can do.
type Action uint8

const (
	// Move is a dual-axis action, right and up positive.
	Move Action = iota
)

func (a Action) String() string {
	switch a {
	case Move:
		return "move"
	default:
		return "unknown"
	}
}

// DefaultDeadZone is the stick radius below which input reads as zero.
const DefaultDeadZone = 0.1

// VirtualDPad maps four keys to an axis pair.
type VirtualDPad struct {
	Up, Down, Left, Right ebiten.Key
}

func ArrowKeys() VirtualDPad {
	return VirtualDPad{Up: ebiten.KeyArrowUp, Down: ebiten.KeyArrowDown, Left: ebiten.KeyArrowLeft, Right: ebiten.KeyArrowRight}
}

func WASD() VirtualDPad {
	return VirtualDPad{Up: ebiten.KeyW, Down: ebiten.KeyS, Left: ebiten.KeyA, Right: ebiten.KeyD}
}

func (d VirtualDPad) axisPair(src Source) geom.Vec2 {
	var v geom.Vec2
	if src.IsKeyPressed(d.Right) {
		v.X++
	}
	if src.IsKeyPressed(d.Left) {
		v.X--
	}
	if src.IsKeyPressed(d.Up) {
		v.Y++
	}
	if src.IsKeyPressed(d.Down) {
		v.Y--
	}
	return v
}

// InputMap binds the Move action for one entity.
type InputMap struct {
	DPads     []VirtualDPad
	LeftStick bool
	DeadZone  float64
	// Gamepad is the index among connected gamepads.
	Gamepad int
}

// DefaultInputMap binds the left stick, arrow keys and WASD on gamepad 0.
func DefaultInputMap() InputMap {
	return InputMap{
		DPads:     []VirtualDPad{ArrowKeys(), WASD()},
		LeftStick: true,
		DeadZone:  DefaultDeadZone,
	}
}

// ActionState holds the value of each action after the latest update.
type ActionState struct {
	move geom.Vec2
}

// AxisPair returns the summed, unclamped axis pair of a.
func (s *ActionState) AxisPair(a Action) geom.Vec2 {
	if a != Move {
		return geom.Vec2{}
	}
	return s.move
}

// ClampedAxisPair is AxisPair with each axis clamped to [-1, 1].
func (s *ActionState) ClampedAxisPair(a Action) geom.Vec2 {
	return s.AxisPair(a).Clamp(-1, 1)
}

// Pressed reports whether a has any non-zero input.
func (s *ActionState) Pressed(a Action) bool {
	return !s.AxisPair(a).IsZero()
}

// Update reads src through m into s.
func (m *InputMap) Update(src Source, s *ActionState) {
	var v geom.Vec2
	for _, d := range m.DPads {
		v = v.Add(d.axisPair(src))
	}
	if m.LeftStick {
		if stick, ok := src.LeftStick(m.Gamepad); ok && stick.Len() >= m.DeadZone {
			v = v.Add(stick)
		}
	}
	s.move = v
}

// RegisterComponents registers InputMap and ActionState.
func RegisterComponents(r *ecs.ComponentRegistry) {
	ecs.RegisterComponent[InputMap](r)
	ecs.RegisterComponent[ActionState](r)
}

// System refreshes every ActionState from its InputMap.
type System struct {
	Entities ecs.Query[struct {
		Map   *InputMap
		State *ActionState
	}]
	Source Source
}

func (s *System) Execute(frame *ecs.UpdateFrame) {
	if s.Source == nil {
		return
	}
	for e := range s.Entities.Values() {
		e.Map.Update(s.Source, e.State)
	}
}
