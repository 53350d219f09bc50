// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package profilecache

import (
	"context"
	"time"

	"github.com/tomtom215/pathwise/internal/cache"
	"github.com/tomtom215/pathwise/internal/personalize"
)

const memoryCapacity = 50000

// MemoryStore keeps profiles in process. Entries are copies, so callers may
// modify what they get back.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore returns a store whose entries expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.New(ttl, memoryCapacity)}
}

func (s *MemoryStore) Get(_ context.Context, learnerID string) (*personalize.LearningStyle, bool, error) {
	v, ok := s.cache.Get(Key(learnerID))
	if !ok {
		return nil, false, nil
	}
	style, ok := v.(personalize.LearningStyle)
	if !ok {
		return nil, false, nil
	}
	return &style, true, nil
}

func (s *MemoryStore) Set(_ context.Context, learnerID string, style *personalize.LearningStyle) error {
	s.cache.Set(Key(learnerID), *style)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, learnerID string) error {
	s.cache.Delete(Key(learnerID))
	return nil
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Close() error {
	s.cache.Close()
	return nil
}
