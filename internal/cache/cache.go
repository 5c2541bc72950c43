// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

// Package cache provides a thread-safe in-memory TTL cache. It fronts the
// expensive statistics queries; entries are invalidated when a new catch
// is recorded.
package cache

import (
	"sync"
	"time"
)

// Keys for the cached statistics payloads
const (
	KeyPlatformStats  = "stats:platform"
	UserStatsKeyspace = "stats:user:"
)

// Entry represents a cached item with expiration
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Cache provides a thread-safe in-memory cache with TTL support
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration

	statsMu   sync.Mutex
	hits      int64
	misses    int64
	evictions int64
}

// Stats is a snapshot of cache performance counters
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	TotalKeys int64
}

// New creates a cache whose entries expire after ttl. Expired entries
// are dropped lazily on Get; run Sweep periodically to evict abandoned
// keys in bulk.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
	}
}

// Get retrieves a value by key. Expired entries count as misses and are
// removed on access.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.record(&c.misses)
		return nil, false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.record(&c.misses)
		c.record(&c.evictions)
		return nil, false
	}

	c.record(&c.hits)
	return entry.Data, true
}

// Set stores a value with the cache's default TTL
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = Entry{
		Data:      value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Delete removes one entry, no-op when absent
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.record(&c.evictions)
}

// Clear drops every entry. Called after a new catch is recorded so the
// stats endpoints serve fresh aggregates.
func (c *Cache) Clear() {
	c.mu.Lock()
	evicted := int64(len(c.entries))
	c.entries = make(map[string]Entry)
	c.mu.Unlock()

	c.statsMu.Lock()
	c.evictions += evicted
	c.statsMu.Unlock()
}

// GetStats returns a snapshot of the performance counters
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	total := int64(len(c.entries))
	c.mu.RUnlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		TotalKeys: total,
	}
}

func (c *Cache) record(counter *int64) {
	c.statsMu.Lock()
	*counter++
	c.statsMu.Unlock()
}

// Sweep removes all expired entries and returns how many were evicted.
func (c *Cache) Sweep() int64 {
	now := time.Now()
	var evicted int64

	c.mu.Lock()
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evicted++
		}
	}
	c.mu.Unlock()

	if evicted > 0 {
		c.statsMu.Lock()
		c.evictions += evicted
		c.statsMu.Unlock()
	}
	return evicted
}
