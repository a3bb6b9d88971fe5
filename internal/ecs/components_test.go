package ecs_test

import "github.com/plus3/bumperfield/internal/ecs"

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Radius float64

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type Bumper struct{}

type Score int32

type Target struct {
	Ref *ecs.EntityRef
}

func newTestRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Radius](registry)
	ecs.RegisterComponent[Name](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Bumper](registry)
	ecs.RegisterComponent[Score](registry)
	ecs.RegisterComponent[Target](registry)
	ecs.RegisterComponent[int](registry)
	ecs.RegisterComponent[string](registry)
	ecs.RegisterComponent[float64](registry)
	return registry
}
