// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package profilecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/pathwise/internal/personalize"
)

// RedisStore shares profiles between replicas, using the same key layout
// the AI engine writes.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore connects to addr. The connection is lazy; use Ping to check it.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, learnerID string) (*personalize.LearningStyle, bool, error) {
	data, err := s.client.Get(ctx, Key(learnerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", learnerID, err)
	}
	var style personalize.LearningStyle
	if err := json.Unmarshal(data, &style); err != nil {
		return nil, false, fmt.Errorf("decode cached profile %s: %w", learnerID, err)
	}
	return &style, true, nil
}

func (s *RedisStore) Set(ctx context.Context, learnerID string, style *personalize.LearningStyle) error {
	data, err := json.Marshal(style)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := s.client.Set(ctx, Key(learnerID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", learnerID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, learnerID string) error {
	if err := s.client.Del(ctx, Key(learnerID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", learnerID, err)
	}
	return nil
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) Close() error {
	return s.client.Close()
}
