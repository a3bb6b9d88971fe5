package ecs

import (
	"reflect"
	"sort"
	"unsafe"
	"weak"
)

// Storage owns all archetypes and singletons of one world.
type Storage struct {
	archetypes map[uint32]*Archetype
	ordered    []*Archetype // creation order
	singletons map[reflect.Type]*singletonEntry
	registry   *ComponentRegistry
}

type singletonEntry struct {
	value   any
	dataPtr unsafe.Pointer
}

// NewStorage returns an empty storage that accepts the types in registry.
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		archetypes: make(map[uint32]*Archetype),
		singletons: make(map[reflect.Type]*singletonEntry),
		registry:   registry,
	}
}

// Registry returns the component registry the storage was built with.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// Spawn creates an entity from the given component values (or pointers to
// them) and returns its id. Panics when called without components.
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("ecs: cannot spawn entity without components")
	}
	types := componentTypes(components)
	archetype := s.archetypeFor(types)
	return NewEntityId(archetype.id, archetype.spawn(components))
}

// Delete removes the entity. Unknown ids are ignored.
func (s *Storage) Delete(id EntityId) {
	if archetype, ok := s.archetypes[id.ArchetypeId()]; ok {
		archetype.delete(id.Index())
	}
}

// Exists reports whether id names a live entity.
func (s *Storage) Exists(id EntityId) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok || len(archetype.columns) == 0 {
		return false
	}
	return archetype.columns[0].has(int(id.Index()))
}

// AddComponent moves the entity into the archetype that also holds
// component's type and returns the new id. If the entity already has that
// type the value is overwritten in place.
func (s *Storage) AddComponent(id EntityId, component any) EntityId {
	old, ok := s.archetypes[id.ArchetypeId()]
	if !ok || !s.Exists(id) {
		return 0
	}
	t := componentType(component)
	if idx := old.column(t); idx >= 0 {
		if ptr := old.columns[idx].get(int(id.Index())); ptr != nil {
			reflect.ValueOf(ptr).Elem().Set(reflect.ValueOf(derefComponent(component)))
		}
		return id
	}

	types := make([]reflect.Type, 0, len(old.types)+1)
	types = append(types, old.types...)
	types = append(types, t)
	sort.Sort(byTypeName(types))

	return s.move(id, old, types, component)
}

// RemoveComponent moves the entity into the archetype without t and
// returns the new id. Removing the last component deletes the entity and
// returns 0.
func (s *Storage) RemoveComponent(id EntityId, t reflect.Type) EntityId {
	old, ok := s.archetypes[id.ArchetypeId()]
	if !ok || !s.Exists(id) {
		return 0
	}
	if !old.HasComponent(t) {
		return id
	}

	types := make([]reflect.Type, 0, len(old.types)-1)
	for _, existing := range old.types {
		if existing != t {
			types = append(types, existing)
		}
	}
	if len(types) == 0 {
		old.delete(id.Index())
		return 0
	}

	return s.move(id, old, types, nil)
}

func (s *Storage) move(id EntityId, old *Archetype, types []reflect.Type, extra any) EntityId {
	target := s.archetypeFor(types)

	components := make([]any, 0, len(types))
	for _, t := range types {
		if extra != nil && t == componentType(extra) {
			components = append(components, extra)
			continue
		}
		components = append(components, old.GetComponent(id.Index(), t))
	}

	newId := NewEntityId(target.id, target.spawn(components))

	wp, hasRef := old.refs.Get(id)
	if hasRef {
		old.refs.Del(id)
		if ref := wp.Value(); ref != nil {
			ref.Id = newId
			ref.Archetype = target
			target.refs.Put(newId, wp)
		}
	}

	old.delete(id.Index())
	return newId
}

// GetComponent returns a pointer to the entity's component of type t, or nil.
func (s *Storage) GetComponent(id EntityId, t reflect.Type) any {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	if !ok {
		return nil
	}
	return archetype.GetComponent(id.Index(), t)
}

// HasComponent reports whether the entity's archetype includes t.
func (s *Storage) HasComponent(id EntityId, t reflect.Type) bool {
	archetype, ok := s.archetypes[id.ArchetypeId()]
	return ok && archetype.HasComponent(t)
}

// GetArchetypeById returns the archetype with the given hash, or nil.
func (s *Storage) GetArchetypeById(id uint32) *Archetype {
	return s.archetypes[id]
}

// Archetypes yields every archetype in creation order.
func (s *Storage) Archetypes() func(yield func(*Archetype) bool) {
	return func(yield func(*Archetype) bool) {
		for _, a := range s.ordered {
			if !yield(a) {
				return
			}
		}
	}
}

// Compact compacts every archetype.
func (s *Storage) Compact() {
	for _, a := range s.ordered {
		a.Compact()
	}
}

// CreateEntityRef returns the stable reference for id, creating it if
// needed. Returns nil if id does not name a live entity.
func (s *Storage) CreateEntityRef(id EntityId) *EntityRef {
	if !s.Exists(id) {
		return nil
	}
	archetype := s.archetypes[id.ArchetypeId()]

	if wp, ok := archetype.refs.Get(id); ok {
		if ref := wp.Value(); ref != nil {
			return ref
		}
		archetype.refs.Del(id)
	}

	ref := &EntityRef{Id: id, Archetype: archetype}
	archetype.refs.Put(id, weak.Make(ref))
	return ref
}

// ResolveEntityRef returns the current id of the referenced entity.
func (s *Storage) ResolveEntityRef(ref *EntityRef) (EntityId, bool) {
	if !ref.Valid() {
		return 0, false
	}
	return ref.Id, true
}

// AddSingleton stores value as the single instance of its type, replacing
// any previous instance.
func (s *Storage) AddSingleton(value any) {
	t := componentType(value)
	if !s.registry.IsRegistered(t) {
		panic("ecs: singleton type " + t.String() + " not registered")
	}
	ptr := reflect.New(t)
	ptr.Elem().Set(reflect.ValueOf(derefComponent(value)))

	if entry, ok := s.singletons[t]; ok {
		// keep the address stable for cached Singleton accessors
		reflect.NewAt(t, entry.dataPtr).Elem().Set(ptr.Elem())
		return
	}
	s.singletons[t] = &singletonEntry{
		value:   ptr.Interface(),
		dataPtr: ptr.UnsafePointer(),
	}
}

// RemoveSingleton deletes the singleton of type t.
func (s *Storage) RemoveSingleton(t reflect.Type) {
	delete(s.singletons, t)
}

// ReadSingleton points *target at the stored singleton of type T and
// reports whether it exists.
func (s *Storage) ReadSingleton(target any) bool {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Pointer {
		panic("ecs: ReadSingleton expects a **T")
	}
	entry := s.singletons[rv.Elem().Type().Elem()]
	if entry == nil {
		return false
	}
	rv.Elem().Set(reflect.ValueOf(entry.value))
	return true
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

func (s *Storage) archetypeFor(types []reflect.Type) *Archetype {
	id := hashTypes(types)
	archetype, ok := s.archetypes[id]
	if !ok {
		archetype = newArchetype(id, types, s.registry)
		s.archetypes[id] = archetype
		s.ordered = append(s.ordered, archetype)
	}
	return archetype
}

func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func derefComponent(component any) any {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Pointer {
		return v.Elem().Interface()
	}
	return component
}

// componentTypes returns the sorted value types of components. Components
// must be plain values: pointers to pointers, maps, channels and funcs are
// rejected.
func componentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, c := range components {
		t := componentType(c)
		switch t.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func:
			panic("ecs: components cannot be pointers, maps, channels, or functions")
		}
		types = append(types, t)
	}
	sort.Sort(byTypeName(types))
	return types
}

// hashTypes is FNV-1a over the runtime type pointers of a sorted type list.
func hashTypes(types []reflect.Type) uint32 {
	const (
		offset uint32 = 2166136261
		prime  uint32 = 16777619
	)
	h := offset
	for _, t := range types {
		p := uintptr((*iface)(unsafe.Pointer(&t)).data)
		h ^= uint32(p)
		h *= prime
		h ^= uint32(uint64(p) >> 32)
		h *= prime
	}
	return h
}

// iface mirrors the runtime layout of a non-empty interface value.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}

// ComponentReader is satisfied by Storage and anything else that can look
// up components by entity.
type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's T component, or nil.
func ReadComponent[T any](reader ComponentReader, id EntityId) *T {
	c, _ := reader.GetComponent(id, reflect.TypeFor[T]()).(*T)
	return c
}
