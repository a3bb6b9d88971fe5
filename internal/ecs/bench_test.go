package ecs_test

import (
	"testing"

	"github.com/plus3/bumperfield/internal/ecs"
)

func BenchmarkSpawn(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())

	for b.Loop() {
		storage.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
	}
}

func BenchmarkReadComponent(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})

	for b.Loop() {
		_ = ecs.ReadComponent[Position](storage, id)
	}
}

func BenchmarkViewIter(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())
	for i := range 1000 {
		storage.Spawn(Position{X: float64(i)}, Velocity{DX: 1})
		if i%4 == 0 {
			storage.Spawn(Position{X: float64(i)}, Velocity{DX: 1}, Bumper{})
		}
	}
	view := ecs.NewView[struct {
		*Position
		*Velocity
	}](storage)

	for b.Loop() {
		for item := range view.Values() {
			item.Position.X += item.Velocity.DX
		}
	}
}

func BenchmarkSchedulerOnce(b *testing.B) {
	storage := ecs.NewStorage(newTestRegistry())
	ecs.NewSingleton[Score](storage)
	for range 500 {
		storage.Spawn(Position{}, Velocity{DX: 1, DY: 1})
	}
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&integrateSystem{})

	for b.Loop() {
		scheduler.Once(1.0 / 60.0)
	}
}
