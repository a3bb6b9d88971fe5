package physics

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/geom"
)

// DefaultFriction applies to bodies without a Friction component.
const DefaultFriction = 0.5

// bodyHandle ties one entity to its Chipmunk body and shape. The pointers
// to ECS components are refreshed every frame.
type bodyHandle struct {
	id    ecs.EntityId
	order uint64
	stamp uint64

	body  *cp.Body
	shape *cp.Shape

	dynamic bool
	radius  float64
	mass    float64
	placed  geom.Vec2

	transform *Transform
	velocity  *Velocity
	force     *ExternalForce

	linDamping float64
	angDamping float64
	hooks      bool
	events     bool
	threshold  float64
}

func newBodyHandle(dynamic bool, radius, mass float64, t *Transform) *bodyHandle {
	h := &bodyHandle{dynamic: dynamic, radius: radius, mass: mass}
	if dynamic {
		h.body = cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
		h.body.SetVelocityUpdateFunc(h.updateVelocity)
	} else {
		h.body = cp.NewStaticBody()
	}
	h.body.SetPosition(vector(t.Position))
	h.body.SetAngle(t.Rotation)
	h.body.UserData = h
	h.placed = t.Position

	h.shape = cp.NewCircle(h.body, radius, cp.Vector{})
	h.shape.SetCollisionType(bodyCollision)
	h.shape.SetFriction(DefaultFriction)
	h.shape.UserData = h
	return h
}

func (h *bodyHandle) add(space *cp.Space) {
	space.AddBody(h.body)
	space.AddShape(h.shape)
}

func (h *bodyHandle) remove(space *cp.Space) {
	space.RemoveShape(h.shape)
	space.RemoveBody(h.body)
}

// sync pushes the ECS state of the frame into the Chipmunk body.
func (h *bodyHandle) sync(space *cp.Space, restitution, friction float64) {
	if h.shape.Elasticity() != restitution {
		h.shape.SetElasticity(restitution)
	}
	if h.shape.Friction() != friction {
		h.shape.SetFriction(friction)
	}

	if !h.dynamic {
		// Static shapes are only indexed when added.
		if h.transform.Position != h.placed {
			space.RemoveShape(h.shape)
			h.body.SetPosition(vector(h.transform.Position))
			space.AddShape(h.shape)
			h.placed = h.transform.Position
		}
		return
	}
	h.body.SetPosition(vector(h.transform.Position))
	h.body.SetAngle(h.transform.Rotation)
	h.body.SetVelocityVector(vector(h.velocity.Linear))
	h.body.SetAngularVelocity(h.velocity.Angular)
}

// applyForce loads the persistent ExternalForce before a substep;
// Chipmunk clears body forces after integrating them.
func (h *bodyHandle) applyForce() {
	if !h.dynamic {
		h.body.SetAngularVelocity(0)
		return
	}
	if h.force == nil {
		return
	}
	h.body.SetForce(vector(h.force.Force))
	h.body.SetTorque(h.force.Torque)
}

func (h *bodyHandle) writeBack() {
	if !h.dynamic {
		return
	}
	h.transform.Position = point(h.body.Position())
	h.transform.Rotation = h.body.Angle()
	h.velocity.Linear = point(h.body.Velocity())
	h.velocity.Angular = h.body.AngularVelocity()
}

// updateVelocity integrates like Chipmunk and then applies damping as
// v *= 1/(1 + dt*damping).
func (h *bodyHandle) updateVelocity(body *cp.Body, gravity cp.Vector, damping, dt float64) {
	cp.BodyUpdateVelocity(body, gravity, damping, dt)
	body.SetVelocityVector(body.Velocity().Mult(1 / (1 + dt*h.linDamping)))
	body.SetAngularVelocity(body.AngularVelocity() / (1 + dt*h.angDamping))
}

// spin makes a fixed body's surface slide at tangentVelocity relative to
// whatever it touches. Fixed bodies never rotate, but the solver reads
// their angular velocity at the contact point.
func (h *bodyHandle) spin(tangentVelocity float64) {
	if h.dynamic || h.radius <= 0 {
		return
	}
	h.body.SetAngularVelocity(tangentVelocity / h.radius)
}

// Mass returns the mass in kg of a ball of radius px at the given density
// (kg/m²) and scale.
func Mass(radius, density, pixelsPerMetre float64) float64 {
	r := radius / pixelsPerMetre
	return density * math.Pi * r * r
}

func vector(v geom.Vec2) cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

func point(v cp.Vector) geom.Vec2 {
	return geom.V(v.X, v.Y)
}
