package ecs

import "iter"

// componentStorage is the type-erased column an archetype keeps per
// component type. Slots are stable until compact is called.
type componentStorage interface {
	append(item any) int
	remove(slot int)
	get(slot int) any
	has(slot int) bool
	len() int
	compact() map[int]int
	slots() iter.Seq[int]
}

const blockSize = 64

// blockStorage keeps values of T in fixed-size blocks so pointers handed
// out by get stay valid while the column grows.
type blockStorage[T any] struct {
	blocks []*[blockSize]T
	live   []*[blockSize]bool
	free   []int
	next   int
	count  int
}

func (s *blockStorage[T]) append(item any) int {
	var value T
	switch v := item.(type) {
	case T:
		value = v
	case *T:
		value = *v
	default:
		return -1
	}

	var slot int
	if n := len(s.free); n > 0 {
		slot = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		slot = s.next
		s.next++
		if slot/blockSize >= len(s.blocks) {
			s.blocks = append(s.blocks, new([blockSize]T))
			s.live = append(s.live, new([blockSize]bool))
		}
	}

	s.blocks[slot/blockSize][slot%blockSize] = value
	s.live[slot/blockSize][slot%blockSize] = true
	s.count++
	return slot
}

func (s *blockStorage[T]) get(slot int) any {
	if !s.has(slot) {
		return nil
	}
	return &s.blocks[slot/blockSize][slot%blockSize]
}

func (s *blockStorage[T]) has(slot int) bool {
	if slot < 0 || slot >= s.next {
		return false
	}
	return s.live[slot/blockSize][slot%blockSize]
}

func (s *blockStorage[T]) remove(slot int) {
	if !s.has(slot) {
		return
	}
	var zero T
	s.blocks[slot/blockSize][slot%blockSize] = zero
	s.live[slot/blockSize][slot%blockSize] = false
	s.free = append(s.free, slot)
	s.count--
}

func (s *blockStorage[T]) len() int {
	return s.count
}

// compact packs live values to the front and returns old slot -> new slot.
func (s *blockStorage[T]) compact() map[int]int {
	moved := make(map[int]int, s.count)
	write := 0
	for read := 0; read < s.next; read++ {
		if !s.live[read/blockSize][read%blockSize] {
			continue
		}
		moved[read] = write
		if read != write {
			s.blocks[write/blockSize][write%blockSize] = s.blocks[read/blockSize][read%blockSize]
			s.live[write/blockSize][write%blockSize] = true
		}
		write++
	}

	var zero T
	for slot := write; slot < s.next; slot++ {
		s.blocks[slot/blockSize][slot%blockSize] = zero
		s.live[slot/blockSize][slot%blockSize] = false
	}

	keep := (write + blockSize - 1) / blockSize
	s.blocks = s.blocks[:keep]
	s.live = s.live[:keep]
	s.free = s.free[:0]
	s.next = write
	return moved
}

func (s *blockStorage[T]) slots() iter.Seq[int] {
	return func(yield func(int) bool) {
		for slot := 0; slot < s.next; slot++ {
			if s.live[slot/blockSize][slot%blockSize] && !yield(slot) {
				return
			}
		}
	}
}
