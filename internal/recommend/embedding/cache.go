// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

// Package embedding implements the semantic-similarity component: a
// bounded TTL cache for event description vectors, a rate-limited and
// circuit-broken batch fetcher against the embedding collaborator, and
// the two-tower cosine scorer.
package embedding

import (
	"strings"
	"sync"
	"time"

	"github.com/aasimsyed/showlist/internal/metrics"
)

// Clock abstracts "now" for TTL decisions. It is satisfied by the
// engine's clock, so tests and hosts can pin time across the whole
// pipeline with one value.
type Clock interface {
	Now() time.Time
}

// systemClock is the default Clock backed by time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Cache defaults.
const (
	// DefaultCapacity bounds the cache to a few hundred shows.
	DefaultCapacity = 300

	// DefaultTTL keeps vectors for a week; event descriptions change
	// rarely inside that horizon.
	DefaultTTL = 7 * 24 * time.Hour
)

// CacheKey builds the canonical cache key for an artist/venue pair.
func CacheKey(artist, venue string) string {
	return strings.TrimSpace(artist) + "|" + strings.TrimSpace(venue)
}

// cacheEntry is a node in the age-ordered doubly-linked list.
type cacheEntry struct {
	key       string
	vector    []float64
	prev      *cacheEntry
	next      *cacheEntry
	expiresAt time.Time
}

// Cache is a thread-safe bounded cache of embedding vectors with TTL.
//
// Eviction is by entry age: when an insert exceeds capacity the single
// globally-oldest entry (by insertion or last refresh) is dropped.
// Unlike an LRU, Get does not refresh an entry's position; only writing
// a key again does. Expired entries are purged lazily on read and count
// as misses.
type Cache struct {
	mu sync.Mutex

	capacity int
	ttl      time.Duration
	clock    Clock

	// items maps keys to list nodes for O(1) lookup; head.next is the
	// newest entry, tail.prev the oldest.
	items map[string]*cacheEntry
	head  *cacheEntry
	tail  *cacheEntry

	hits        int64
	misses      int64
	evictions   int64
	expirations int64
}

// CacheStats is a point-in-time snapshot of cache counters.
type CacheStats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
	Size        int
}

// NewCache creates a cache with the given capacity and TTL. Zero or
// negative values fall back to the defaults; a nil clock uses wall time.
func NewCache(capacity int, ttl time.Duration, clock Clock) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = systemClock{}
	}

	c := &Cache{
		capacity: capacity,
		ttl:      ttl,
		clock:    clock,
		items:    make(map[string]*cacheEntry, capacity),
		head:     &cacheEntry{},
		tail:     &cacheEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns the vector for a key. An expired entry is purged and
// reported as a miss. The returned slice is shared; callers must not
// mutate it.
func (c *Cache) Get(key string) ([]float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.items[key]
	if !exists {
		c.misses++
		metrics.EmbeddingCacheMisses.Inc()
		return nil, false
	}

	if c.clock.Now().After(entry.expiresAt) {
		c.removeEntry(entry)
		c.expirations++
		c.misses++
		metrics.EmbeddingCacheExpirations.Inc()
		metrics.EmbeddingCacheMisses.Inc()
		metrics.EmbeddingCacheSize.Set(float64(len(c.items)))
		return nil, false
	}

	c.hits++
	metrics.EmbeddingCacheHits.Inc()
	return entry.vector, true
}

// Contains reports whether a non-expired entry exists, without touching
// hit/miss counters or purging. The fetcher uses this to decide what to
// request without skewing access stats.
func (c *Cache) Contains(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.items[key]
	return exists && !c.clock.Now().After(entry.expiresAt)
}

// Put stores a copy of the vector under the key, refreshing the entry's
// age and TTL if it already exists. Empty vectors are never stored: a
// vectorless answer from the collaborator carries no signal worth
// pinning in a bounded cache.
func (c *Cache) Put(key string, vector []float64) {
	if len(vector) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.ttl)

	if entry, exists := c.items[key]; exists {
		entry.vector = append([]float64(nil), vector...)
		entry.expiresAt = expiresAt
		c.moveToFront(entry)
		return
	}

	entry := &cacheEntry{
		key:       key,
		vector:    append([]float64(nil), vector...),
		expiresAt: expiresAt,
	}
	c.addToFront(entry)
	c.items[key] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}

	metrics.EmbeddingCacheSize.Set(float64(len(c.items)))
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*cacheEntry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
	metrics.EmbeddingCacheSize.Set(0)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		Size:        len(c.items),
	}
}

// Internal list operations, called with the lock held.

func (c *Cache) addToFront(entry *cacheEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *Cache) moveToFront(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

func (c *Cache) removeEntry(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}

func (c *Cache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	c.removeEntry(oldest)
	c.evictions++
	metrics.EmbeddingCacheEvictions.Inc()
}
