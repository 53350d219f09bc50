// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

// Package profilecache caches learner profiles in front of the AI engine.
//
// Three backends implement Store: an in-process TTL cache, an embedded
// BadgerDB with native entry TTL, and a shared Redis instance. All of them
// use the key learning_style:{learnerID}. CachingProvider wraps any
// personalize.ProfileProvider with one of them.
package profilecache

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/pathwise/internal/config"
	"github.com/tomtom215/pathwise/internal/personalize"
)

// KeyPrefix is shared by every backend.
const KeyPrefix = "learning_style:"

// Store holds learning styles keyed by learner.
type Store interface {
	// Get returns the cached style; ok is false on a miss.
	Get(ctx context.Context, learnerID string) (style *personalize.LearningStyle, ok bool, err error)
	Set(ctx context.Context, learnerID string, style *personalize.LearningStyle) error
	Delete(ctx context.Context, learnerID string) error
	// Name labels metrics and logs.
	Name() string
	Close() error
}

// Key returns the storage key for a learner.
func Key(learnerID string) string {
	return KeyPrefix + learnerID
}

// New builds the backend named by cfg.Backend. It returns nil, nil for
// the "none" backend.
func New(cfg *config.ProfileCacheConfig) (Store, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	switch cfg.Backend {
	case config.ProfileCacheNone:
		return nil, nil
	case config.ProfileCacheMemory, "":
		return NewMemoryStore(ttl), nil
	case config.ProfileCacheBadger:
		return NewBadgerStore(cfg.BadgerPath, ttl)
	case config.ProfileCacheRedis:
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, ttl)
	default:
		return nil, fmt.Errorf("unknown profile cache backend %q", cfg.Backend)
	}
}
