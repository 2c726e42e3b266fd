// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides the small caching primitives flare uses around
// the frame loop: a sharded LRU for deduplicating pipeline and layout
// creation, and a bounded set for rate-limiting repeated diagnostics.
package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// DefaultShardCount is the number of shards. Power of two so shard
	// selection is a mask, not a modulo.
	DefaultShardCount = 16

	// DefaultCapacity is the default maximum entries per shard.
	DefaultCapacity = 256

	shardMask = DefaultShardCount - 1
)

// Hasher computes the shard-selection hash for a key.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Uint64Hasher returns the key itself (identity hash).
func Uint64Hasher(u uint64) uint64 { return u }

// Stats are cumulative cache statistics.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Sharded is a thread-safe sharded LRU cache. Each shard has its own
// lock and LRU list; statistics are atomic.
type Sharded[K comparable, V any] struct {
	shards   [DefaultShardCount]*shard[K, V]
	hasher   Hasher[K]
	capacity int // per shard

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*node[K, V]
	head    *node[K, V] // most recently used
	tail    *node[K, V] // least recently used
	size    int
}

type node[K comparable, V any] struct {
	key   K
	value V
	prev  *node[K, V]
	next  *node[K, V]
}

// NewSharded creates a sharded cache holding up to capacity entries per
// shard. A capacity <= 0 uses DefaultCapacity.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *Sharded[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Sharded[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{entries: make(map[K]*node[K, V])}
	}
	return c
}

func (c *Sharded[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get retrieves a cached value, refreshing its LRU position on hit.
func (c *Sharded[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	n, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.moveToFront(n)
	v := n.value
	s.mu.Unlock()
	c.hits.Add(1)
	return v, true
}

// Set stores a value, evicting the least recently used entries if the
// shard is at capacity. The value is stored as-is, not copied.
func (c *Sharded[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.entries[key]; ok {
		n.value = value
		s.moveToFront(n)
		return
	}
	c.evictionsLocked(s)
	s.pushFront(&node[K, V]{key: key, value: value})
	s.entries[key] = s.head
}

// GetOrCreate returns the cached value for key, calling create under the
// shard lock on a miss. Keep create fast; it holds the lock to prevent
// duplicate creation of the same entry.
func (c *Sharded[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.entries[key]; ok {
		s.moveToFront(n)
		c.hits.Add(1)
		return n.value
	}

	c.misses.Add(1)
	value := create()
	c.evictionsLocked(s)
	s.pushFront(&node[K, V]{key: key, value: value})
	s.entries[key] = s.head
	return value
}

// Delete removes an entry, reporting whether it existed.
func (c *Sharded[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.entries[key]
	if !ok {
		return false
	}
	s.unlink(n)
	delete(s.entries, key)
	return true
}

// Clear removes every entry from every shard.
func (c *Sharded[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]*node[K, V])
		s.head, s.tail, s.size = nil, nil, 0
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (c *Sharded[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Stats returns a snapshot of the cumulative statistics.
func (c *Sharded[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (c *Sharded[K, V]) evictionsLocked(s *shard[K, V]) {
	for s.size >= c.capacity {
		oldest := s.tail
		if oldest == nil {
			return
		}
		s.unlink(oldest)
		delete(s.entries, oldest.key)
		c.evictions.Add(1)
	}
}

func (s *shard[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.size++
}

func (s *shard[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	s.size--
}

func (s *shard[K, V]) moveToFront(n *node[K, V]) {
	if s.head == n {
		return
	}
	s.unlink(n)
	s.pushFront(n)
}
