package cache_test

import (
	"fmt"
	"testing"

	"github.com/relaykit/relay/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_GetSet(t *testing.T) {
	c := cache.New[string, int]()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	c.Set("a", 2)
	v, _ = c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string, string]()
	c.Set("a", "x")

	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	// Deleting an absent key is a no-op.
	c.Delete("a")
	assert.Equal(t, 0, c.Len())
}

func TestCache_BoundedNeverExceedsMax(t *testing.T) {
	const max = 3
	c := cache.New[string, int](cache.WithMaxSize(max))

	for i := 0; i < 10; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
		assert.LessOrEqual(t, c.Len(), max)
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := cache.New[string, int](cache.WithMaxSize(2))

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // evicts "a"

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should be evicted")

	_, ok = c.Get("b")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestCache_GetRefreshesRecency(t *testing.T) {
	c := cache.New[string, int](cache.WithMaxSize(2))

	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so that "b" becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently touched entry should be evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestCache_SetRefreshesRecency(t *testing.T) {
	c := cache.New[string, int](cache.WithMaxSize(2))

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10) // refresh, not insert
	c.Set("c", 3)  // evicts "b"

	_, ok := c.Get("b")
	assert.False(t, ok)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestCache_KeysOrderedByRecency(t *testing.T) {
	c := cache.New[string, int]()

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)
	c.Get("a")

	assert.Equal(t, []string{"a", "c", "b"}, c.Keys())
}
