package ecs

import (
	"reflect"
	"slices"
	"weak"

	"github.com/kamstrup/intmap"
)

// Archetype stores every entity that has exactly one particular set of
// component types. Each type gets its own column; an entity's slot is the
// same in every column.
type Archetype struct {
	id      uint32
	types   []reflect.Type
	columns []componentStorage
	refs    *intmap.Map[EntityId, weak.Pointer[EntityRef]]
}

func newArchetype(id uint32, types []reflect.Type, registry *ComponentRegistry) *Archetype {
	a := &Archetype{
		id:      id,
		types:   types,
		columns: make([]componentStorage, len(types)),
		refs:    intmap.New[EntityId, weak.Pointer[EntityRef]](64),
	}
	for i, t := range types {
		a.columns[i] = registry.newStorage(t)
	}
	return a
}

// ID returns the archetype hash.
func (a *Archetype) ID() uint32 {
	return a.id
}

// Types returns the component types of this archetype, sorted by name.
func (a *Archetype) Types() []reflect.Type {
	return a.types
}

// Len returns the number of live entities.
func (a *Archetype) Len() int {
	if len(a.columns) == 0 {
		return 0
	}
	return a.columns[0].len()
}

// HasComponent reports whether t is one of the archetype's types.
func (a *Archetype) HasComponent(t reflect.Type) bool {
	return slices.Contains(a.types, t)
}

func (a *Archetype) column(t reflect.Type) int {
	return slices.Index(a.types, t)
}

func (a *Archetype) spawn(components []any) uint32 {
	slot := -1
	for _, c := range components {
		idx := a.column(componentType(c))
		if idx < 0 {
			continue
		}
		slot = a.columns[idx].append(c)
	}
	return uint32(slot)
}

// GetComponent returns a pointer to the component of type t stored for the
// entity in slot index, or nil.
func (a *Archetype) GetComponent(index uint32, t reflect.Type) any {
	idx := a.column(t)
	if idx < 0 {
		return nil
	}
	return a.columns[idx].get(int(index))
}

func (a *Archetype) delete(index uint32) {
	id := NewEntityId(a.id, index)
	if wp, ok := a.refs.Get(id); ok {
		if ref := wp.Value(); ref != nil {
			ref.Id = 0
			ref.Archetype = nil
		}
		a.refs.Del(id)
	}
	for _, col := range a.columns {
		col.remove(int(index))
	}
}

// Compact removes holes left by deleted entities. Live EntityRefs are
// rewritten to the new slots; bare EntityIds into this archetype become stale.
func (a *Archetype) Compact() {
	if len(a.columns) == 0 {
		return
	}
	moved := a.columns[0].compact()
	for _, col := range a.columns[1:] {
		col.compact()
	}

	refs := intmap.New[EntityId, weak.Pointer[EntityRef]](a.refs.Len())
	a.refs.ForEach(func(oldId EntityId, wp weak.Pointer[EntityRef]) bool {
		ref := wp.Value()
		newSlot, ok := moved[int(oldId.Index())]
		if ref == nil || !ok {
			return true
		}
		newId := NewEntityId(a.id, uint32(newSlot))
		ref.Id = newId
		refs.Put(newId, wp)
		return true
	})
	a.refs = refs
}

// Iter yields the ids of every live entity in the archetype.
func (a *Archetype) Iter() func(yield func(EntityId) bool) {
	return func(yield func(EntityId) bool) {
		if len(a.columns) == 0 {
			return
		}
		for slot := range a.columns[0].slots() {
			if !yield(NewEntityId(a.id, uint32(slot))) {
				return
			}
		}
	}
}
