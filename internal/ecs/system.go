package ecs

// System is a unit of per-frame behaviour. Systems are structs whose Query
// and Singleton fields are bound by the Scheduler on registration; any
// other fields are private state kept between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// UpdateFrame is what a system sees for one tick.
type UpdateFrame struct {
	DeltaTime float64
	Commands  *Commands
	Storage   *Storage
}
