// Package cache provides a bounded, TTL-based cache for capability
// fingerprints. It exists so the staleness window of cross-request caching is
// explicit and test-controllable rather than hidden in a static map.
package cache

import (
	"sync"
	"time"
)

// Clock returns the current time. Injected so tests control expiry
// deterministically.
type Clock func() time.Time

// FingerprintCache caches a value per tenant key with a fixed TTL and a
// maximum entry count. A zero TTL disables caching entirely: Get always
// misses and Set is a no-op, so every read goes to the ledger.
//
// Eviction is all-at-once when the bound is hit. The cache holds at most
// maxSize fingerprints (a few dozen bytes each), so a full reset is cheaper
// than LRU bookkeeping and the entries repopulate on the next read.
type FingerprintCache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	maxSize int
	now     Clock
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Option configures a FingerprintCache.
type Option[V any] func(*FingerprintCache[V])

// WithClock overrides the time source.
func WithClock[V any](clock Clock) Option[V] {
	return func(c *FingerprintCache[V]) {
		c.now = clock
	}
}

// New creates a FingerprintCache with the given TTL and size bound.
// A non-positive maxSize defaults to 1024 entries.
func New[V any](ttl time.Duration, maxSize int, opts ...Option[V]) *FingerprintCache[V] {
	if maxSize <= 0 {
		maxSize = 1024
	}

	c := &FingerprintCache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the cache holds entries at all.
func (c *FingerprintCache[V]) Enabled() bool {
	return c.ttl > 0
}

// Get returns the cached value for key if present and not expired.
func (c *FingerprintCache[V]) Get(key string) (V, bool) {
	var zero V
	if !c.Enabled() {
		return zero, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.now().After(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

// Set stores value for key, evicting everything first if the bound is hit.
func (c *FingerprintCache[V]) Set(key string, value V) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.entries = make(map[string]entry[V])
	}
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate removes the entry for key. Regeneration calls this so the new
// fingerprint is observable immediately instead of after the TTL.
func (c *FingerprintCache[V]) Invalidate(key string) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, expired or not.
func (c *FingerprintCache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
