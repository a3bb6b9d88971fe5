package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

var entityIdType = reflect.TypeFor[EntityId]()

// View reads entities through a struct type T whose fields describe what
// to fetch:
//
//   - a pointer field *C is filled with the entity's C component; the
//     entity must have C unless the field is tagged `ecs:"optional"`
//     (embedded fields are always required)
//   - an EntityId field is filled with the entity's id
type View[T any] struct {
	storage *Storage
	fields  []viewField
}

type viewField struct {
	offset    uintptr
	component reflect.Type // nil for the EntityId field
	optional  bool
}

// NewView builds a view over storage. Panics if T is not a struct of
// pointer or EntityId fields.
func NewView[T any](storage *Storage) *View[T] {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("ecs: View type parameter must be a struct")
	}

	fields := make([]viewField, 0, structType.NumField())
	for i := range structType.NumField() {
		f := structType.Field(i)

		if f.Type == entityIdType {
			fields = append(fields, viewField{offset: f.Offset})
			continue
		}
		if f.Type.Kind() != reflect.Pointer {
			panic("ecs: View struct fields must be pointers or EntityId, got " + f.Type.String())
		}

		optional := false
		if tag := f.Tag.Get("ecs"); tag != "" && !f.Anonymous {
			if tag != "optional" {
				panic("ecs: invalid ecs tag value \"" + tag + "\" (only \"optional\" is supported)")
			}
			optional = true
		}
		fields = append(fields, viewField{
			offset:    f.Offset,
			component: f.Type.Elem(),
			optional:  optional,
		})
	}

	return &View[T]{storage: storage, fields: fields}
}

func (v *View[T]) matches(a *Archetype) bool {
	for _, f := range v.fields {
		if f.component != nil && !f.optional && !a.HasComponent(f.component) {
			return false
		}
	}
	return true
}

// columns maps each view field to an archetype column, -1 when absent or
// when the field is the EntityId.
func (v *View[T]) columns(a *Archetype) []int {
	cols := make([]int, len(v.fields))
	for i, f := range v.fields {
		cols[i] = -1
		if f.component != nil {
			cols[i] = a.column(f.component)
		}
	}
	return cols
}

func (v *View[T]) fill(dst unsafe.Pointer, a *Archetype, slot int, cols []int) bool {
	for i, f := range v.fields {
		field := unsafe.Add(dst, f.offset)
		if f.component == nil {
			*(*EntityId)(field) = NewEntityId(a.id, uint32(slot))
			continue
		}

		var component any
		if cols[i] >= 0 {
			component = a.columns[cols[i]].get(slot)
		}
		if component == nil {
			if !f.optional {
				return false
			}
			*(*unsafe.Pointer)(field) = nil
			continue
		}
		*(*unsafe.Pointer)(field) = (*iface)(unsafe.Pointer(&component)).data
	}
	return true
}

// Fill populates *dst for the entity and reports whether it has every
// required component.
func (v *View[T]) Fill(id EntityId, dst *T) bool {
	a, ok := v.storage.archetypes[id.ArchetypeId()]
	if !ok || !v.matches(a) {
		return false
	}
	return v.fill(unsafe.Pointer(dst), a, int(id.Index()), v.columns(a))
}

// Get returns the populated struct for id, or nil.
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// GetRef is Get through an EntityRef.
func (v *View[T]) GetRef(ref *EntityRef) *T {
	id, ok := v.storage.ResolveEntityRef(ref)
	if !ok {
		return nil
	}
	return v.Get(id)
}

func (v *View[T]) iterArchetype(a *Archetype) iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		if len(a.columns) == 0 {
			return
		}
		cols := v.columns(a)
		var result T
		for slot := range a.columns[0].slots() {
			if !v.fill(unsafe.Pointer(&result), a, slot, cols) {
				continue
			}
			if !yield(NewEntityId(a.id, uint32(slot)), result) {
				return
			}
		}
	}
}

// Iter yields every matching entity, archetypes in creation order.
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		for _, a := range v.storage.ordered {
			if !v.matches(a) {
				continue
			}
			for id, item := range v.iterArchetype(a) {
				if !yield(id, item) {
					return
				}
			}
		}
	}
}

// Values is Iter without the ids.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range v.Iter() {
			if !yield(item) {
				return
			}
		}
	}
}
