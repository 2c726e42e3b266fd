// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package cache

import "sync"

// DefaultDedupCapacity bounds a Dedup created with capacity <= 0.
const DefaultDedupCapacity = 64

// Dedup is a bounded set of strings used to rate-limit repeated
// diagnostics: the first Seen for a key returns false, every later call
// returns true until the key is evicted.
//
// Eviction is oldest-first (insertion order) once the capacity is
// reached, so a long-running process eventually repeats a warning rather
// than suppressing it forever. Dedup is an explicit, constructor-injected
// component, not a process-wide global.
type Dedup struct {
	mu       sync.Mutex
	capacity int
	seen     map[string]struct{}
	order    []string
}

// NewDedup creates a Dedup holding up to capacity keys.
func NewDedup(capacity int) *Dedup {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	return &Dedup{
		capacity: capacity,
		seen:     make(map[string]struct{}, capacity),
	}
}

// Seen records key and reports whether it was already present.
func (d *Dedup) Seen(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if len(d.order) >= d.capacity {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
	d.seen[key] = struct{}{}
	d.order = append(d.order, key)
	return false
}

// Len returns the number of keys currently tracked.
func (d *Dedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// Reset forgets every key.
func (d *Dedup) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = make(map[string]struct{}, d.capacity)
	d.order = d.order[:0]
}
