package physics

import (
	"github.com/jakecoffman/cp"

	"github.com/plus3/bumperfield/internal/ecs"
)

// StepSystem advances every body with a RigidBody, Transform and Collider
// by the frame's delta time. Install must have been called on the storage.
type StepSystem struct {
	Bodies ecs.Query[struct {
		Body        *RigidBody
		Transform   *Transform
		Collider    *Collider
		Velocity    *Velocity                   `ecs:"optional"`
		Force       *ExternalForce              `ecs:"optional"`
		Restitution *Restitution                `ecs:"optional"`
		Friction    *Friction                   `ecs:"optional"`
		Damping     *Damping                    `ecs:"optional"`
		Hooks       *ActiveHooks                `ecs:"optional"`
		Threshold   *ContactForceEventThreshold `ecs:"optional"`
	}]
	Config ecs.Singleton[Config]
	Events ecs.Singleton[Events]

	// Modifier, when set, sees contacts of bodies with active hooks.
	Modifier ContactModifier

	storage *ecs.Storage
	events  *Events
	space   *cp.Space
	handles []*bodyHandle
	points  []ContactPoint
	stamp   uint64
	created uint64
}

func (s *StepSystem) Execute(frame *ecs.UpdateFrame) {
	cfg := s.Config.Get()
	events := s.Events.Get()
	if cfg == nil || events == nil {
		return
	}
	events.Contacts = events.Contacts[:0]
	if frame.DeltaTime <= 0 {
		return
	}
	s.storage = frame.Storage
	s.events = events

	if s.space == nil {
		s.space = cp.NewSpace()
		handler := s.space.NewCollisionHandler(bodyCollision, bodyCollision)
		handler.PreSolveFunc = s.preSolve
		handler.PostSolveFunc = s.postSolve
	}
	s.space.SetGravity(vector(cfg.Gravity))
	s.space.SetCollisionSlop(collisionSlop * cfg.PixelsPerMetre)

	s.collect(cfg)
	substeps := max(cfg.Substeps, 1)
	dt := frame.DeltaTime / float64(substeps)
	for range substeps {
		for _, h := range s.handles {
			h.applyForce()
		}
		s.space.Step(dt)
	}
	for _, h := range s.handles {
		h.writeBack()
	}
}

// collect binds every queried entity to a Chipmunk body, syncs its
// components into the space and drops bodies whose entity is gone.
func (s *StepSystem) collect(cfg *Config) {
	s.stamp++
	for id, e := range s.Bodies.Iter() {
		radius := e.Collider.Radius
		mass := Mass(radius, cfg.Density, cfg.PixelsPerMetre)
		// A dynamic body without Velocity has nowhere to keep its motion
		// and is treated as fixed.
		dynamic := e.Body.Kind == Dynamic && e.Velocity != nil && radius > 0 && mass > 0

		h := e.Body.handle
		if h != nil && (h.stamp == s.stamp || h.dynamic != dynamic || h.radius != radius || dynamic && h.mass != mass) {
			h = nil
		}
		if h == nil {
			h = newBodyHandle(dynamic, radius, mass, e.Transform)
			s.created++
			h.order = s.created
			h.add(s.space)
			s.handles = append(s.handles, h)
			e.Body.handle = h
		}

		h.id = id
		h.stamp = s.stamp
		h.transform = e.Transform
		h.velocity = e.Velocity
		h.force = e.Force
		h.linDamping, h.angDamping = 0, 0
		if e.Damping != nil {
			h.linDamping, h.angDamping = e.Damping.Linear, e.Damping.Angular
		}
		h.hooks = e.Hooks != nil && e.Hooks.ModifySolverContacts
		h.events = e.Threshold != nil
		h.threshold = 0
		if e.Threshold != nil {
			h.threshold = e.Threshold.Value
		}

		restitution, friction := 0.0, DefaultFriction
		if e.Restitution != nil {
			restitution = e.Restitution.Coefficient
		}
		if e.Friction != nil {
			friction = e.Friction.Coefficient
		}
		h.sync(s.space, restitution, friction)
	}

	live := s.handles[:0]
	for _, h := range s.handles {
		if h.stamp != s.stamp {
			h.remove(s.space)
			continue
		}
		live = append(live, h)
	}
	clear(s.handles[len(live):])
	s.handles = live
}
