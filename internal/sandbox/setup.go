package sandbox

import (
	"fmt"

	"github.com/plus3/bumperfield/internal/config"
	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/geom"
	"github.com/plus3/bumperfield/internal/input"
	"github.com/plus3/bumperfield/internal/physics"
	"github.com/plus3/bumperfield/internal/placement"
)

// SpawnPlayer adds the player ball at cfg's start position.
func SpawnPlayer(storage *ecs.Storage, cfg config.Player) ecs.EntityId {
	return storage.Spawn(
		Player{},
		Shape{Radius: cfg.Radius, Color: PlayerColor, Layer: LayerPlayer, Marker: true},
		physics.RigidBody{Kind: physics.Dynamic},
		physics.Transform{Position: cfg.Start()},
		physics.Ball(cfg.Radius),
		physics.Velocity{},
		physics.ExternalForce{},
		physics.Restitution{Coefficient: cfg.Restitution},
		physics.Damping{Linear: cfg.LinearDamping, Angular: cfg.AngularDamping},
		physics.ActiveHooks{ModifySolverContacts: true},
		input.DefaultInputMap(),
		input.ActionState{},
	)
}

// SpawnGoal adds the goal ring, drawn at the player's size.
func SpawnGoal(storage *ecs.Storage, cfg config.Config) ecs.EntityId {
	return storage.Spawn(
		Goal{},
		Shape{Radius: cfg.Player.Radius, Color: GoalColor, Layer: LayerGoal, Ring: true},
		physics.Transform{Position: cfg.Goal.Position()},
	)
}

// SpawnBumper adds one fixed bumper.
func SpawnBumper(storage *ecs.Storage, pos geom.Vec2, cfg config.Bumpers) ecs.EntityId {
	return storage.Spawn(
		Bumper{},
		Shape{Radius: cfg.Radius, Color: BumperColor, Layer: LayerBumpers},
		physics.RigidBody{Kind: physics.Fixed},
		physics.Transform{Position: pos},
		physics.Ball(cfg.Radius),
		physics.Restitution{Coefficient: cfg.Restitution},
		physics.ContactForceEventThreshold{Value: 0},
		physics.ActiveHooks{ModifySolverContacts: true},
	)
}

func placementParams(cfg config.Bumpers) placement.Params {
	return placement.Params{
		Count:       cfg.Count,
		Spacing:     cfg.Spacing(),
		Area:        cfg.Area(),
		MaxAttempts: cfg.MaxAttempts,
	}
}

// PlaceBumpers draws a bumper field avoiding the given points.
func PlaceBumpers(rng placement.Sampler, cfg config.Bumpers, avoid []geom.Vec2) (placement.Result, error) {
	res, err := placement.Place(rng, placementParams(cfg), avoid)
	if err != nil {
		return res, fmt.Errorf("place bumpers: %w", err)
	}
	return res, nil
}

// Setup spawns the player, the goal ring and a bumper field that keeps
// clear of both start positions.
func Setup(storage *ecs.Storage, cfg config.Config, rng placement.Sampler) (placement.Result, error) {
	res, err := PlaceBumpers(rng, cfg.Bumpers, []geom.Vec2{cfg.Player.Start(), cfg.Goal.Position()})
	if err != nil {
		return res, err
	}

	SpawnPlayer(storage, cfg.Player)
	SpawnGoal(storage, cfg)
	for _, p := range res.Points {
		SpawnBumper(storage, p, cfg.Bumpers)
	}
	return res, nil
}

// Refield replaces every bumper with a fresh field that keeps clear of
// the player's current position and the goal. On error the old field is
// left in place.
func Refield(storage *ecs.Storage, cfg config.Config, rng placement.Sampler) (placement.Result, error) {
	avoid := make([]geom.Vec2, 0, 2)
	players := ecs.NewView[struct {
		*Player
		*physics.Transform
	}](storage)
	for p := range players.Values() {
		avoid = append(avoid, p.Transform.Position)
	}
	goals := ecs.NewView[struct {
		*Goal
		*physics.Transform
	}](storage)
	for g := range goals.Values() {
		avoid = append(avoid, g.Transform.Position)
	}
	if len(avoid) == 0 {
		avoid = append(avoid, cfg.Player.Start(), cfg.Goal.Position())
	}

	res, err := PlaceBumpers(rng, cfg.Bumpers, avoid)
	if err != nil {
		return res, err
	}

	var old []ecs.EntityId
	bumpers := ecs.NewView[struct{ *Bumper }](storage)
	for id := range bumpers.Iter() {
		old = append(old, id)
	}
	for _, id := range old {
		storage.Delete(id)
	}
	for _, p := range res.Points {
		SpawnBumper(storage, p, cfg.Bumpers)
	}
	return res, nil
}
