// File path: internal/store/cache.go
package store

import (
	"container/list"
	"sync"
)

// lookupCache is a small LRU keyed by query signature. Batched id lookups and
// class scans pass through it so repeated questions in one session do not
// re-read identical row sets. A nil cache (size zero) computes every call.
type lookupCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type cacheEntry struct {
	key   string
	value any
}

func newLookupCache(capacity int) *lookupCache {
	if capacity <= 0 {
		return nil
	}
	return &lookupCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

func (c *lookupCache) get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).value, true
}

func (c *lookupCache) set(key string, value any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}
	elem := c.order.PushFront(&cacheEntry{key: key, value: value})
	c.entries[key] = elem
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *lookupCache) purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element, c.capacity)
}

// getOrCompute returns the rows cached under key or runs compute and caches
// the result. The cache keeps its own copy and every hit hands out a fresh
// one, so callers are free to sort or append to what they get back without
// corrupting the row set other callers receive. Errors are never cached.
func getOrCompute[T any](c *lookupCache, key string, compute func() ([]T, error)) ([]T, error) {
	if cached, ok := c.get(key); ok {
		if typed, ok := cached.([]T); ok {
			return append([]T(nil), typed...), nil
		}
	}
	rows, err := compute()
	if err != nil {
		return nil, err
	}
	c.set(key, append([]T(nil), rows...))
	return rows, nil
}
