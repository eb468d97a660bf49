// Package cache provides a generic key-value store with optional capacity
// and least-recently-used eviction.
package cache

import "container/list"

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a bounded key-value store. When a maximum size is configured,
// inserting a new key beyond capacity evicts the least recently touched
// entry first. Recency is refreshed by both Get and Set.
//
// Cache is not safe for concurrent use; callers running across goroutines
// must serialize access themselves.
type Cache[K comparable, V any] struct {
	max     int
	entries map[K]*list.Element
	order   *list.List // front = most recently used
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	max int
}

// WithMaxSize bounds the cache to n entries. Zero or negative means unbounded.
func WithMaxSize(n int) Option {
	return func(o *options) {
		o.max = n
	}
}

// New creates an empty cache.
func New[K comparable, V any](opts ...Option) *Cache[K, V] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return &Cache[K, V]{
		max:     o.max,
		entries: make(map[K]*list.Element),
		order:   list.New(),
	}
}

// Get returns the value for key. A hit refreshes the key's recency; a miss
// never evicts.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	el, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	c.order.MoveToFront(el)
	return el.Value.(*entry[K, V]).value, true
}

// Set stores value under key. Re-setting an existing key updates the value
// and recency without touching capacity. Inserting a new key over capacity
// evicts exactly one entry: the least recently used.
func (c *Cache[K, V]) Set(key K, value V) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*entry[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}

	if c.max > 0 && c.order.Len() >= c.max {
		c.evictOldest()
	}

	c.entries[key] = c.order.PushFront(&entry[K, V]{key: key, value: value})
}

// Delete removes key if present.
func (c *Cache[K, V]) Delete(key K) {
	el, ok := c.entries[key]
	if !ok {
		return
	}

	c.order.Remove(el)
	delete(c.entries, key)
}

// Len returns the number of stored entries.
func (c *Cache[K, V]) Len() int {
	return c.order.Len()
}

// Keys returns all keys ordered from most to least recently used.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*entry[K, V]).key)
	}
	return keys
}

func (c *Cache[K, V]) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}

	c.order.Remove(el)
	delete(c.entries, el.Value.(*entry[K, V]).key)
}
