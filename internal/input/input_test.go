package input_test

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/geom"
	"github.com/plus3/bumperfield/internal/input"
	"github.com/stretchr/testify/assert"
)

func update(src input.Source) input.ActionState {
	m := input.DefaultInputMap()
	var state input.ActionState
	m.Update(src, &state)
	return state
}

func TestNoInputIsZero(t *testing.T) {
	state := update(&input.Scripted{})
	assert.Equal(t, geom.Vec2{}, state.ClampedAxisPair(input.Move))
	assert.False(t, state.Pressed(input.Move))
}

func TestDPadDirections(t *testing.T) {
	cases := []struct {
		key  ebiten.Key
		want geom.Vec2
	}{
		{ebiten.KeyArrowRight, geom.V(1, 0)},
		{ebiten.KeyArrowLeft, geom.V(-1, 0)},
		{ebiten.KeyArrowUp, geom.V(0, 1)},
		{ebiten.KeyArrowDown, geom.V(0, -1)},
		{ebiten.KeyD, geom.V(1, 0)},
		{ebiten.KeyA, geom.V(-1, 0)},
		{ebiten.KeyW, geom.V(0, 1)},
		{ebiten.KeyS, geom.V(0, -1)},
	}
	for _, tc := range cases {
		src := &input.Scripted{}
		src.Hold(tc.key, true)
		state := update(src)
		assert.Equal(t, tc.want, state.ClampedAxisPair(input.Move), tc.key.String())
		assert.True(t, state.Pressed(input.Move))
	}
}

func TestBindingsSumThenClamp(t *testing.T) {
	src := &input.Scripted{}
	src.Hold(ebiten.KeyArrowRight, true)
	src.Hold(ebiten.KeyD, true)
	src.Hold(ebiten.KeyW, true)
	src.HasStick = true
	src.Stick = geom.V(0.5, -0.4)

	state := update(src)
	assert.InDelta(t, 2.5, state.AxisPair(input.Move).X, 1e-12)
	assert.InDelta(t, 0.6, state.AxisPair(input.Move).Y, 1e-12)
	assert.InDelta(t, 1, state.ClampedAxisPair(input.Move).X, 1e-12)
	assert.InDelta(t, 0.6, state.ClampedAxisPair(input.Move).Y, 1e-12)
}

func TestOpposingKeysCancel(t *testing.T) {
	src := &input.Scripted{}
	src.Hold(ebiten.KeyArrowLeft, true)
	src.Hold(ebiten.KeyD, true)
	assert.Equal(t, geom.Vec2{}, update(src).ClampedAxisPair(input.Move))
}

func TestStickDeadZone(t *testing.T) {
	src := &input.Scripted{HasStick: true, Stick: geom.V(0.05, 0.05)}
	assert.Equal(t, geom.Vec2{}, update(src).ClampedAxisPair(input.Move))

	src.Stick = geom.V(0.3, -0.2)
	assert.Equal(t, geom.V(0.3, -0.2), update(src).ClampedAxisPair(input.Move))
}

func TestStickIgnoredWhenUnbound(t *testing.T) {
	src := &input.Scripted{HasStick: true, Stick: geom.V(1, 1)}
	m := input.InputMap{DPads: []input.VirtualDPad{input.WASD()}}
	var state input.ActionState
	m.Update(src, &state)
	assert.Equal(t, geom.Vec2{}, state.ClampedAxisPair(input.Move))
}

func TestScriptedTaps(t *testing.T) {
	src := &input.Scripted{}
	src.Tap(ebiten.KeyR)
	assert.True(t, src.IsKeyJustPressed(ebiten.KeyR))
	src.Advance()
	assert.False(t, src.IsKeyJustPressed(ebiten.KeyR))
}

func TestSystemUpdatesActionState(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	input.RegisterComponents(registry)
	storage := ecs.NewStorage(registry)

	src := &input.Scripted{}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&input.System{Source: src})

	id := storage.Spawn(input.DefaultInputMap(), input.ActionState{})

	src.Hold(ebiten.KeyArrowUp, true)
	scheduler.Once(1.0 / 60)
	assert.Equal(t, geom.V(0, 1), ecs.ReadComponent[input.ActionState](storage, id).ClampedAxisPair(input.Move))

	src.Hold(ebiten.KeyArrowUp, false)
	scheduler.Once(1.0 / 60)
	assert.Equal(t, geom.Vec2{}, ecs.ReadComponent[input.ActionState](storage, id).ClampedAxisPair(input.Move))
}
