// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package cache

import (
	"sync"
	"time"
)

type lfuNode struct {
	key        string
	value      interface{}
	freq       int
	expiresAt  time.Time
	prev, next *lfuNode
}

// bucket holds nodes of equal frequency, most recent at the front.
type bucket struct {
	head, tail lfuNode
	size       int
}

func newBucket() *bucket {
	b := &bucket{}
	b.head.next = &b.tail
	b.tail.prev = &b.head
	return b
}

func (b *bucket) pushFront(n *lfuNode) {
	n.prev = &b.head
	n.next = b.head.next
	b.head.next.prev = n
	b.head.next = n
	b.size++
}

func (b *bucket) unlink(n *lfuNode) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
	b.size--
}

func (b *bucket) back() *lfuNode {
	if b.size == 0 {
		return nil
	}
	return b.tail.prev
}

// LFU is a capacity-bounded cache that evicts the least frequently used
// entry, breaking ties by least recent use. Get, Set and eviction are O(1).
// Entries also carry a TTL and expire lazily.
type LFU struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	nodes    map[string]*lfuNode
	buckets  map[int]*bucket
	minFreq  int

	hits      int64
	misses    int64
	evictions int64
}

// NewLFU creates an LFU cache holding at most capacity entries.
func NewLFU(capacity int, ttl time.Duration) *LFU {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LFU{
		capacity: capacity,
		ttl:      ttl,
		nodes:    make(map[string]*lfuNode, capacity),
		buckets:  make(map[int]*bucket),
	}
}

// Get returns the value for key and bumps its frequency.
func (c *LFU) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if time.Now().After(n.expiresAt) {
		c.removeLocked(n)
		c.evictions++
		c.misses++
		return nil, false
	}

	c.touchLocked(n)
	c.hits++
	return n.value, true
}

// Set stores value with the default TTL.
func (c *LFU) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value, evicting the least frequently used entry if full.
func (c *LFU) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl)
	if n, ok := c.nodes[key]; ok {
		n.value = value
		n.expiresAt = expiresAt
		c.touchLocked(n)
		return
	}

	if len(c.nodes) >= c.capacity {
		c.evictLocked()
	}

	n := &lfuNode{key: key, value: value, freq: 1, expiresAt: expiresAt}
	c.bucketFor(1).pushFront(n)
	c.nodes[key] = n
	c.minFreq = 1
}

// Delete removes key.
func (c *LFU) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.nodes[key]; ok {
		c.removeLocked(n)
		c.evictions++
	}
}

// Clear removes every entry.
func (c *LFU) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictions += int64(len(c.nodes))
	c.nodes = make(map[string]*lfuNode, c.capacity)
	c.buckets = make(map[int]*bucket)
	c.minFreq = 0
}

// Len returns the number of stored entries.
func (c *LFU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

// Frequency returns the access count of key, or 0 when absent.
func (c *LFU) Frequency(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.nodes[key]; ok {
		return n.freq
	}
	return 0
}

// GetStats returns a snapshot of the counters.
func (c *LFU) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Hits: c.hits, Misses: c.misses, Evictions: c.evictions, Size: len(c.nodes)}
}

// HitRate returns hits as a percentage of lookups.
func (c *LFU) HitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return hitRate(c.hits, c.misses)
}

// Close is a no-op; LFU runs no background work.
func (c *LFU) Close() {}

func (c *LFU) bucketFor(freq int) *bucket {
	b, ok := c.buckets[freq]
	if !ok {
		b = newBucket()
		c.buckets[freq] = b
	}
	return b
}

func (c *LFU) touchLocked(n *lfuNode) {
	old := c.buckets[n.freq]
	old.unlink(n)
	if old.size == 0 {
		delete(c.buckets, n.freq)
		if c.minFreq == n.freq {
			c.minFreq++
		}
	}
	n.freq++
	c.bucketFor(n.freq).pushFront(n)
}

func (c *LFU) removeLocked(n *lfuNode) {
	if b, ok := c.buckets[n.freq]; ok {
		b.unlink(n)
		if b.size == 0 {
			delete(c.buckets, n.freq)
		}
	}
	delete(c.nodes, n.key)
	if len(c.nodes) == 0 {
		c.minFreq = 0
	}
}

func (c *LFU) evictLocked() {
	b, ok := c.buckets[c.minFreq]
	if !ok {
		// minFreq can go stale after removeLocked; fall back to a scan.
		for freq, candidate := range c.buckets {
			if !ok || freq < c.minFreq {
				b, c.minFreq, ok = candidate, freq, true
			}
		}
		if !ok {
			return
		}
	}
	if victim := b.back(); victim != nil {
		c.removeLocked(victim)
		c.evictions++
	}
}
