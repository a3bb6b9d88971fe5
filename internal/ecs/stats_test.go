package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorageStats(t *testing.T) {
	registry := NewComponentRegistry()
	RegisterComponent[int](registry)
	RegisterComponent[string](registry)
	RegisterComponent[float64](registry)
	storage := NewStorage(registry)

	stats := storage.CollectStats()
	assert.Equal(t, 0, stats.ArchetypeCount)
	assert.Equal(t, 0, stats.TotalEntityCount)
	assert.Equal(t, 0, stats.SingletonCount)

	storage.Spawn(42, "hello")
	storage.Spawn(100, "world")
	storage.Spawn(200.0, "test")
	NewSingleton[float64](storage, 3.14)
	NewSingleton[string](storage, "singleton")

	stats = storage.CollectStats()
	assert.Equal(t, 2, stats.ArchetypeCount)
	assert.Equal(t, 3, stats.TotalEntityCount)
	assert.Equal(t, 2, stats.SingletonCount)
	assert.Equal(t, []string{"float64", "string"}, stats.SingletonTypes)

	require.Len(t, stats.ArchetypeBreakdown, 2)
	counts := map[int]bool{}
	for _, arch := range stats.ArchetypeBreakdown {
		counts[arch.EntityCount] = true
		assert.Len(t, arch.ComponentTypes, 2)
	}
	assert.True(t, counts[1])
	assert.True(t, counts[2])
}

func TestBlockStorageCompact(t *testing.T) {
	s := &blockStorage[int]{}
	for i := range blockSize + 10 {
		assert.Equal(t, i, s.append(i))
	}
	for i := 0; i < blockSize; i += 2 {
		s.remove(i)
	}

	moved := s.compact()

	assert.Equal(t, blockSize/2+10, s.len())
	assert.Equal(t, 0, moved[1])
	assert.Equal(t, 1, moved[3])
	for slot := range s.slots() {
		assert.NotNil(t, s.get(slot))
	}
	assert.Equal(t, blockSize+9, *s.get(moved[blockSize+9]).(*int))
	assert.Equal(t, -1, s.append("wrong type"))
}
