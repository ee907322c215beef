// Package session provides the in-process TTL store that hosts live views and scan sessions.
package session

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps live objects keyed by ID with a sliding expiration.
// Entries that are not touched within ttl are evicted; the eviction callback
// runs for explicit deletes as well, so owners can release resources there.
type MemoryStore[T any] struct {
	cache *cache.Cache
}

// NewMemoryStore creates a MemoryStore. If ttl is 0 it defaults to 30 minutes.
// Expired entries are purged every cleanupInterval (defaults to ttl/2).
func NewMemoryStore[T any](ttl, cleanupInterval time.Duration, onEvict func(id string, v T)) *MemoryStore[T] {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = ttl / 2
	}
	c := cache.New(ttl, cleanupInterval)
	if onEvict != nil {
		c.OnEvicted(func(id string, x interface{}) {
			if v, ok := x.(T); ok {
				onEvict(id, v)
			}
		})
	}
	return &MemoryStore[T]{cache: c}
}

// Save stores v under id and resets its expiration.
func (s *MemoryStore[T]) Save(id string, v T) {
	s.cache.Set(id, v, cache.DefaultExpiration)
}

// Get returns the value for id and refreshes its expiration.
func (s *MemoryStore[T]) Get(id string) (T, bool) {
	var zero T
	x, found := s.cache.Get(id)
	if !found {
		return zero, false
	}
	v, ok := x.(T)
	if !ok {
		return zero, false
	}
	s.cache.Set(id, v, cache.DefaultExpiration)
	return v, true
}

// Delete removes id and triggers the eviction callback.
func (s *MemoryStore[T]) Delete(id string) {
	s.cache.Delete(id)
}

// Len returns the number of stored entries, including expired ones not yet purged.
func (s *MemoryStore[T]) Len() int {
	return s.cache.ItemCount()
}

// Flush evicts every entry, running the eviction callback for each.
func (s *MemoryStore[T]) Flush() {
	for id := range s.cache.Items() {
		s.cache.Delete(id)
	}
}
