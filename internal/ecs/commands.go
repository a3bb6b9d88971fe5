package ecs

import "reflect"

// Commands buffers structural changes made while systems run. The
// Scheduler flushes the buffer after the last system of a frame.
type Commands struct {
	deletes []EntityId
	removes []removeCommand
	adds    []addCommand
	spawns  [][]any
	defers  []func()
}

type addCommand struct {
	entity    EntityId
	component any
}

type removeCommand struct {
	entity EntityId
	typ    reflect.Type
}

// Spawn queues a new entity.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, components)
}

// Delete queues an entity deletion.
func (c *Commands) Delete(entity EntityId) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues adding component to entity.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addCommand{entity: entity, component: component})
}

// RemoveComponent queues removing the component of type t from entity.
func (c *Commands) RemoveComponent(entity EntityId, t reflect.Type) {
	c.removes = append(c.removes, removeCommand{entity: entity, typ: t})
}

// Defer queues fn to run after all structural changes are applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Empty reports whether nothing is queued.
func (c *Commands) Empty() bool {
	return len(c.deletes)+len(c.removes)+len(c.adds)+len(c.spawns)+len(c.defers) == 0
}

// Flush applies the buffer to storage in a fixed order: deletes, component
// removals, component additions, spawns, then deferred functions. Ids are
// followed across the archetype moves earlier commands cause, and commands
// aimed at an entity deleted in the same flush are dropped.
func (c *Commands) Flush(storage *Storage) {
	current := make(map[EntityId]EntityId)
	resolve := func(id EntityId) EntityId {
		if moved, ok := current[id]; ok {
			return moved
		}
		return id
	}

	for _, id := range c.deletes {
		storage.Delete(id)
		current[id] = 0
	}

	for _, cmd := range c.removes {
		id := resolve(cmd.entity)
		if id == 0 {
			continue
		}
		current[cmd.entity] = storage.RemoveComponent(id, cmd.typ)
	}

	for _, cmd := range c.adds {
		id := resolve(cmd.entity)
		if id == 0 {
			continue
		}
		current[cmd.entity] = storage.AddComponent(id, cmd.component)
	}

	for _, components := range c.spawns {
		storage.Spawn(components...)
	}

	for _, fn := range c.defers {
		fn()
	}

	c.deletes = c.deletes[:0]
	c.removes = c.removes[:0]
	c.adds = c.adds[:0]
	c.spawns = c.spawns[:0]
	c.defers = c.defers[:0]
}
