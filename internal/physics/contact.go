package physics

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/geom"
)

// bodyCollision is the collision type of every shape the plugin creates.
const bodyCollision cp.CollisionType = 1

// collisionSlop is in metres and scaled by PixelsPerMetre.
const collisionSlop = 0.005

// ContactPoint is one point of a contact manifold.
type ContactPoint struct {
	Point geom.Vec2
	Depth float64
}

// ContactPair is the contact a ContactModifier sees. A is always the body
// created first, and Normal points from A to B.
type ContactPair struct {
	A, B    ecs.EntityId
	Storage *ecs.Storage

	Normal geom.Vec2
	Points []ContactPoint
	// Friction and Restitution are the combined coefficients the solver
	// resolves this contact with.
	Friction    float64
	Restitution float64

	// TangentVelocity is the relative velocity of B with respect to A
	// along Normal.Perp() that friction drives toward. It takes effect
	// when one of the bodies is fixed.
	TangentVelocity float64
	// Ignore drops the contact for the current step.
	Ignore bool
}

// ContactModifier edits contacts before they are resolved. It is only
// called for pairs where at least one body has
// ActiveHooks.ModifySolverContacts set.
type ContactModifier interface {
	ModifySolverContacts(pair *ContactPair)
}

// ContactModifierFunc adapts a function to ContactModifier.
type ContactModifierFunc func(pair *ContactPair)

func (f ContactModifierFunc) ModifySolverContacts(pair *ContactPair) {
	f(pair)
}

// handles returns the arbiter's bodies in creation order and whether that
// swaps Chipmunk's order.
func handles(arb *cp.Arbiter) (*bodyHandle, *bodyHandle, bool) {
	sa, sb := arb.Shapes()
	a, b := sa.UserData.(*bodyHandle), sb.UserData.(*bodyHandle)
	if a.order > b.order {
		return b, a, true
	}
	return a, b, false
}

func (s *StepSystem) preSolve(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	if s.Modifier == nil {
		return true
	}
	a, b, swapped := handles(arb)
	if !a.hooks && !b.hooks {
		return true
	}

	set := arb.ContactPointSet()
	normal := point(set.Normal)
	if swapped {
		normal = normal.Neg()
	}
	pair := ContactPair{
		A:           a.id,
		B:           b.id,
		Storage:     s.storage,
		Normal:      normal,
		Points:      s.points[:0],
		Friction:    a.shape.Friction() * b.shape.Friction(),
		Restitution: a.shape.Elasticity() * b.shape.Elasticity(),
	}
	for i := range set.Count {
		p := set.Points[i]
		pair.Points = append(pair.Points, ContactPoint{
			Point: point(p.PointA.Add(p.PointB).Mult(0.5)),
			Depth: -p.Distance,
		})
	}
	s.Modifier.ModifySolverContacts(&pair)
	s.points = pair.Points

	if pair.Ignore {
		return false
	}
	if pair.TangentVelocity != 0 {
		a.spin(pair.TangentVelocity)
		b.spin(pair.TangentVelocity)
	}
	return true
}

func (s *StepSystem) postSolve(arb *cp.Arbiter, space *cp.Space, _ interface{}) {
	a, b, swapped := handles(arb)
	threshold := 0.0
	switch {
	case a.events && b.events:
		threshold = min(a.threshold, b.threshold)
	case a.events:
		threshold = a.threshold
	case b.events:
		threshold = b.threshold
	default:
		return
	}

	set := arb.ContactPointSet()
	if set.Count == 0 {
		return
	}
	impulse := math.Abs(arb.TotalImpulse().Dot(set.Normal))
	force := impulse / space.TimeStep()
	if force <= threshold {
		return
	}

	normal := point(set.Normal)
	if swapped {
		normal = normal.Neg()
	}
	p := set.Points[0]
	s.events.Contacts = append(s.events.Contacts, ContactEvent{
		A:       a.id,
		B:       b.id,
		Point:   point(p.PointA.Add(p.PointB).Mult(0.5)),
		Normal:  normal,
		Impulse: impulse,
		Force:   force,
	})
}
