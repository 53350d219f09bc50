// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

// Package cache provides the in-process caches used by Pathwise: a TTL map
// for learning-style profiles and a capacity-bounded LFU for computed
// personalization results.
package cache

import (
	"fmt"
	"time"
)

// Cacher is satisfied by both cache implementations. personalize.ResultCache
// and the memory profile store only need Get and Set.
type Cacher interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	SetWithTTL(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Clear()
	Len() int
	GetStats() Stats
	HitRate() float64
	Close()
}

// Policy selects the eviction strategy.
type Policy string

const (
	// PolicyTTL expires entries by age and evicts the soonest-expiring entry
	// when a capacity is set and reached.
	PolicyTTL Policy = "ttl"

	// PolicyLFU evicts the least frequently used entry when full.
	PolicyLFU Policy = "lfu"
)

// Defaults applied by NewCacher.
const (
	DefaultTTL      = 5 * time.Minute
	DefaultCapacity = 10000
)

// Config describes a cache to build.
type Config struct {
	Policy   Policy
	TTL      time.Duration
	Capacity int
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// NewCacher builds a cache from cfg. An empty policy selects TTL.
func NewCacher(cfg Config) (Cacher, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	switch cfg.Policy {
	case PolicyTTL, "":
		return New(cfg.TTL, cfg.Capacity), nil
	case PolicyLFU:
		capacity := cfg.Capacity
		if capacity <= 0 {
			capacity = DefaultCapacity
		}
		return NewLFU(capacity, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache policy %q", cfg.Policy)
	}
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100.0
}

var (
	_ Cacher = (*Cache)(nil)
	_ Cacher = (*LFU)(nil)
)
