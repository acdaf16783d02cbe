// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package cache

import (
	"sync"
	"time"
)

// lruEntry is one cached payload in the doubly-linked recency list.
type lruEntry struct {
	key       string
	value     []byte
	prev      *lruEntry
	next      *lruEntry
	expiresAt time.Time
}

// LRUCache is a thread-safe least-recently-used byte cache with TTL
// support. It provides O(1) Get, Add, Remove and eviction.
//
// A doubly-linked list keeps recency order and a map gives O(1) lookup;
// head.next is the most recently used entry, tail.prev the least.
// Expiration is lazy: an expired entry is dropped when Get finds it.
type LRUCache struct {
	mu sync.RWMutex

	capacity int
	ttl      time.Duration

	items map[string]*lruEntry
	head  *lruEntry
	tail  *lruEntry

	hits   int64
	misses int64
}

// NewLRUCache creates an LRU cache holding at most capacity payloads,
// each valid for ttl after insertion. A ttl of zero disables expiry.
func NewLRUCache(capacity int, ttl time.Duration) *LRUCache {
	if capacity <= 0 {
		capacity = 256
	}

	c := &LRUCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*lruEntry, capacity),
		head:     &lruEntry{},
		tail:     &lruEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the cached payload for key and refreshes its recency.
// The returned slice is the cached backing array; callers must not
// mutate it.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.ttl > 0 && time.Now().After(e.expiresAt) {
		c.unlink(e)
		delete(c.items, key)
		c.misses++
		return nil, false
	}

	c.unlink(e)
	c.pushFront(e)
	c.hits++
	return e.value, true
}

// Add inserts or replaces the payload for key, evicting the least
// recently used entry when the cache is full.
func (c *LRUCache) Add(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		e.expiresAt = time.Now().Add(c.ttl)
		c.unlink(e)
		c.pushFront(e)
		return
	}

	if len(c.items) >= c.capacity {
		oldest := c.tail.prev
		if oldest != c.head {
			c.unlink(oldest)
			delete(c.items, oldest.key)
		}
	}

	e := &lruEntry{key: key, value: value, expiresAt: time.Now().Add(c.ttl)}
	c.items[key] = e
	c.pushFront(e)
}

// Remove drops key from the cache. It reports whether the key was
// present.
func (c *LRUCache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		return false
	}
	c.unlink(e)
	delete(c.items, key)
	return true
}

// Purge empties the cache. Hit/miss counters survive a purge so cache
// effectiveness stays observable across asset invalidations.
func (c *LRUCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*lruEntry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// Len returns the number of live entries, counting expired ones not yet
// collected by Get.
func (c *LRUCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns cumulative hit and miss counts.
func (c *LRUCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *LRUCache) unlink(e *lruEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (c *LRUCache) pushFront(e *lruEntry) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}
