package ecs

import "iter"

// Query is a View that caches its matching archetypes and snapshots the
// matching entities once per frame. The Scheduler calls Execute before the
// owning system runs; standalone users call it themselves.
type Query[T any] struct {
	view     *View[T]
	storage  *Storage
	matched  []*Archetype
	seen     int
	ids      []EntityId
	items    []T
	executed bool
}

// NewQuery returns a query over storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init binds the query to storage and drops any cached state.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.matched = nil
	q.seen = -1
	q.executed = false
}

// Execute snapshots the matching entities.
func (q *Query[T]) Execute() {
	if n := len(q.storage.ordered); n != q.seen {
		q.matched = q.matched[:0]
		for _, a := range q.storage.ordered {
			if q.view.matches(a) {
				q.matched = append(q.matched, a)
			}
		}
		q.seen = n
	}

	q.ids = q.ids[:0]
	q.items = q.items[:0]
	for _, a := range q.matched {
		for id, item := range q.view.iterArchetype(a) {
			q.ids = append(q.ids, id)
			q.items = append(q.items, item)
		}
	}
	q.executed = true
}

// Len returns the number of entities in the current snapshot.
func (q *Query[T]) Len() int {
	q.mustBeExecuted("Len")
	return len(q.ids)
}

// Iter yields the snapshot. Panics if Execute has never run.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	q.mustBeExecuted("Iter")
	return func(yield func(EntityId, T) bool) {
		for i := range q.ids {
			if !yield(q.ids[i], q.items[i]) {
				return
			}
		}
	}
}

// Values yields the snapshot without ids.
func (q *Query[T]) Values() iter.Seq[T] {
	q.mustBeExecuted("Values")
	return func(yield func(T) bool) {
		for i := range q.items {
			if !yield(q.items[i]) {
				return
			}
		}
	}
}

// First returns the first entity of the snapshot, if any.
func (q *Query[T]) First() (T, bool) {
	q.mustBeExecuted("First")
	if len(q.items) == 0 {
		var zero T
		return zero, false
	}
	return q.items[0], true
}

func (q *Query[T]) mustBeExecuted(method string) {
	if !q.executed {
		panic("ecs: Query." + method + "() called before Query.Execute()")
	}
}
