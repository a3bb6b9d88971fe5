// Package physics plugs a Chipmunk2D space into the ECS: circle
// colliders, dynamic and fixed bodies, damping, restitution, friction,
// contact events and a contact-modification hook. Positions are in
// pixels; mass comes from a density in kg/m² through PixelsPerMetre.
package physics

import (
	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/geom"
)

// BodyKind selects how the solver treats a body.
type BodyKind uint8

const (
	// Dynamic bodies integrate forces and respond to contacts.
	Dynamic BodyKind = iota
	// Fixed bodies never move and have infinite mass.
	Fixed
)

func (k BodyKind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Fixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// RigidBody marks an entity as simulated. The step system attaches its
// Chipmunk body to the component on first sight.
type RigidBody struct {
	Kind BodyKind

	handle *bodyHandle
}

type Transform struct {
	Position geom.Vec2
	Rotation float64
}

// Velocity is required for a Dynamic body to move.
type Velocity struct {
	Linear  geom.Vec2
	Angular float64
}

// ExternalForce is applied every step until overwritten.
type ExternalForce struct {
	Force  geom.Vec2
	Torque float64
}

// Collider is a ball of the given radius centred on the transform.
type Collider struct {
	Radius float64
}

// Ball returns a ball collider.
func Ball(radius float64) Collider {
	return Collider{Radius: radius}
}

// Restitution is multiplied with the other body's. Bodies without one
// have zero restitution.
type Restitution struct {
	Coefficient float64
}

// Friction is multiplied with the other body's. Bodies without one use
// DefaultFriction.
type Friction struct {
	Coefficient float64
}

// Damping slows a body by v *= 1/(1 + dt*damping) each step.
type Damping struct {
	Linear  float64
	Angular float64
}

// ActiveHooks opts a body's contacts into the step system's
// ContactModifier.
type ActiveHooks struct {
	ModifySolverContacts bool
}

// ContactForceEventThreshold makes contacts of this body emit a
// ContactEvent when the contact force exceeds Value.
type ContactForceEventThreshold struct {
	Value float64
}

// Config is the physics singleton.
type Config struct {
	Gravity        geom.Vec2
	PixelsPerMetre float64
	// Density in kg/m² used for every dynamic collider.
	Density float64
	// Substeps splits each frame step.
	Substeps int
}

// DefaultConfig mirrors a top-down table: no gravity, 200 px per metre.
func DefaultConfig() Config {
	return Config{
		PixelsPerMetre: 200,
		Density:        1,
		Substeps:       4,
	}
}

// ContactEvent reports a contact whose force passed a threshold.
type ContactEvent struct {
	A, B    ecs.EntityId
	Point   geom.Vec2
	Normal  geom.Vec2
	Impulse float64
	Force   float64
}

// Events collects the contact events of the latest step.
type Events struct {
	Contacts []ContactEvent
}

// RegisterComponents registers every physics component and singleton.
func RegisterComponents(r *ecs.ComponentRegistry) {
	ecs.RegisterComponent[RigidBody](r)
	ecs.RegisterComponent[Transform](r)
	ecs.RegisterComponent[Velocity](r)
	ecs.RegisterComponent[ExternalForce](r)
	ecs.RegisterComponent[Collider](r)
	ecs.RegisterComponent[Restitution](r)
	ecs.RegisterComponent[Friction](r)
	ecs.RegisterComponent[Damping](r)
	ecs.RegisterComponent[ActiveHooks](r)
	ecs.RegisterComponent[ContactForceEventThreshold](r)
	ecs.RegisterComponent[Config](r)
	ecs.RegisterComponent[Events](r)
}

// Install adds the physics singletons to storage.
func Install(storage *ecs.Storage, cfg Config) {
	ecs.NewSingleton[Config](storage, cfg)
	ecs.NewSingleton[Events](storage)
}
