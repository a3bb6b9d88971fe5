package sandbox

import (
	"image/color"
	"reflect"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/bumperfield/internal/ecs"
	"github.com/plus3/bumperfield/internal/input"
	"github.com/plus3/bumperfield/internal/physics"
)

type Player struct{}

// Goal marks the goal ring. It has no collider.
type Goal struct{}

type Bumper struct{}

var bumperType = reflect.TypeFor[Bumper]()

// Flash is added to a bumper when it is hit and removed once Remaining
// runs out. Bumpers draw brighter while it lasts.
type Flash struct {
	Remaining float64
}

var flashType = reflect.TypeFor[Flash]()

// Layer orders drawing, lowest first.
type Layer int

const (
	LayerBumpers Layer = iota
	LayerGoal
	LayerPlayer
)

// Shape is how an entity is drawn.
type Shape struct {
	Radius float64
	Color  color.RGBA
	Layer  Layer
	// Ring draws an outline instead of a disc.
	Ring bool
	// Marker draws a line from the centre showing rotation.
	Marker bool
}

var (
	PlayerColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	BumperColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	GoalColor   = color.RGBA{R: 80, G: 220, B: 120, A: 255}
	FlashColor  = color.RGBA{R: 255, G: 230, B: 200, A: 255}
	ClearColor  = color.RGBA{A: 255}
)

// Hud is what the overlay text shows.
type Hud struct {
	Bumps   int
	Elapsed float64
	Seed    uint64
	Draws   int
	Bumpers int
}

// Tuning holds values that can change while running.
type Tuning struct {
	MoveForce float64
	// Spin is the tangent velocity in px/s bumpers impose on contacts.
	Spin   float64
	Volume float64
	// FullVolumeImpulse is the contact impulse that plays at full volume.
	FullVolumeImpulse float64
}

// Control carries requests made during a frame. The sandbox acts on them
// after the frame.
type Control struct {
	Reseed bool
	Quit   bool
}

// Screen is the image the render systems draw into.
type Screen struct {
	Image *ebiten.Image
}

// RegisterComponents registers sandbox, physics and input components.
func RegisterComponents(r *ecs.ComponentRegistry) {
	physics.RegisterComponents(r)
	input.RegisterComponents(r)
	ecs.RegisterComponent[Player](r)
	ecs.RegisterComponent[Goal](r)
	ecs.RegisterComponent[Bumper](r)
	ecs.RegisterComponent[Flash](r)
	ecs.RegisterComponent[Shape](r)
	ecs.RegisterComponent[Hud](r)
	ecs.RegisterComponent[Tuning](r)
	ecs.RegisterComponent[Control](r)
	ecs.RegisterComponent[Screen](r)
}

func isBumper(storage *ecs.Storage, id ecs.EntityId) bool {
	return storage.HasComponent(id, bumperType)
}

// bumperContact returns the bumper side of a contact, if any.
func bumperContact(storage *ecs.Storage, ev physics.ContactEvent) (ecs.EntityId, bool) {
	switch {
	case isBumper(storage, ev.A):
		return ev.A, true
	case isBumper(storage, ev.B):
		return ev.B, true
	default:
		return 0, false
	}
}
