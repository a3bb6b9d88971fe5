package ecs

import (
	"reflect"
	"unsafe"
)

// Singleton gives typed access to the one instance of T held by a Storage,
// outside of any entity. Use it for world state, tuning and input.
type Singleton[T any] struct {
	storage *Storage
	ptr     unsafe.Pointer
}

// NewSingleton returns an accessor for T, storing initial (or the zero
// value) first if the storage has no T yet.
func NewSingleton[T any](storage *Storage, initial ...T) *Singleton[T] {
	t := reflect.TypeFor[T]()
	if storage.getSingletonEntry(t) == nil {
		var value T
		if len(initial) > 0 {
			value = initial[0]
		}
		storage.AddSingleton(value)
	}
	s := &Singleton[T]{}
	s.Init(storage)
	return s
}

// Init binds the accessor to storage. The Scheduler calls this for
// Singleton fields of registered systems.
func (s *Singleton[T]) Init(storage *Storage) {
	s.storage = storage
	s.ptr = nil
	s.refresh()
}

func (s *Singleton[T]) refresh() {
	if s.storage == nil {
		return
	}
	if entry := s.storage.getSingletonEntry(reflect.TypeFor[T]()); entry != nil {
		s.ptr = entry.dataPtr
	} else {
		s.ptr = nil
	}
}

// Get returns the instance, or nil if none has been added or it was
// removed.
func (s *Singleton[T]) Get() *T {
	s.refresh()
	return (*T)(s.ptr)
}

// Exists reports whether the storage holds a T.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}
