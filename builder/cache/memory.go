package cache

import (
	"runtime"
	"sync"
	"weak"
)

// Cache is a small in-process cache keyed by comparable keys. Implementations
// must be safe for concurrent use.
type Cache[K comparable, V any] interface {
	Get(key K) (*V, bool)
	Set(key K, value *V)
	Invalidate(key K)
	Clear()
	Len() int
}

// GetOrCompute returns the cached value for key, computing and storing it on
// a miss. Concurrent callers may compute the same key twice; the result is
// identical so the duplicate work is harmless.
func GetOrCompute[K comparable, V any](c Cache[K, V], key K, compute func() (*V, error)) (*V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.Set(key, v)
	return v, nil
}

// NoopCache never stores anything. Used when caching is disabled.
type NoopCache[K comparable, V any] struct{}

func NewNoop[K comparable, V any]() *NoopCache[K, V] {
	return &NoopCache[K, V]{}
}

func (c *NoopCache[K, V]) Get(K) (*V, bool) { return nil, false }
func (c *NoopCache[K, V]) Set(K, *V)        {}
func (c *NoopCache[K, V]) Invalidate(K)     {}
func (c *NoopCache[K, V]) Clear()           {}
func (c *NoopCache[K, V]) Len() int         { return 0 }

// MemoryCache holds values strongly until invalidated or cleared.
type MemoryCache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*V
}

func NewMemory[K comparable, V any]() *MemoryCache[K, V] {
	return &MemoryCache[K, V]{entries: make(map[K]*V)}
}

func (c *MemoryCache[K, V]) Get(key K) (*V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *MemoryCache[K, V]) Set(key K, value *V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *MemoryCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *MemoryCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*V)
}

func (c *MemoryCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// WeakCache holds values through weak pointers, letting the garbage
// collector reclaim entries under memory pressure. Suited to long-running
// serve sessions where rendered HTML can always be recomputed.
type WeakCache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]weak.Pointer[V]
}

func NewWeak[K comparable, V any]() *WeakCache[K, V] {
	return &WeakCache[K, V]{entries: make(map[K]weak.Pointer[V])}
}

func (c *WeakCache[K, V]) Get(key K) (*V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	v := p.Value()
	if v == nil {
		delete(c.entries, key)
		return nil, false
	}
	return v, true
}

func (c *WeakCache[K, V]) Set(key K, value *V) {
	c.mu.Lock()
	c.entries[key] = weak.Make(value)
	c.mu.Unlock()

	// Drop the map entry once the value is collected. The cleanup must not
	// capture value, or it would never become unreachable.
	runtime.AddCleanup(value, func(k K) {
		c.mu.Lock()
		if p, ok := c.entries[k]; ok && p.Value() == nil {
			delete(c.entries, k)
		}
		c.mu.Unlock()
	}, key)
}

func (c *WeakCache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *WeakCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]weak.Pointer[V])
}

func (c *WeakCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, p := range c.entries {
		if p.Value() != nil {
			n++
		}
	}
	return n
}
