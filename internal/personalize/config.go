// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package personalize

import (
	"fmt"
	"time"
)

// Hard limits on the request surface.
const (
	// MaxResultsLimit caps the number of items a single call may return.
	MaxResultsLimit = 10

	// MaxIDLength bounds learner and topic identifiers.
	MaxIDLength = 128
)

// Config contains all configuration for the personalization engine.
type Config struct {
	// HistoryLimit is the number of most recent sessions fed to the
	// progress aggregator.
	HistoryLimit int `json:"history_limit"`

	// MaxResults is the truncation length of the final list.
	MaxResults int `json:"max_results"`

	// RecentInteractionWindow is how many of the current session's latest
	// interactions drive the real-time rules.
	RecentInteractionWindow int `json:"recent_interaction_window"`

	// RequestTimeout bounds a whole call including provider fetches.
	// Zero leaves the caller's deadline in charge.
	RequestTimeout time.Duration `json:"request_timeout"`

	// ResultCache controls the optional result cache.
	ResultCache ResultCacheConfig `json:"result_cache"`
}

// ResultCacheConfig configures caching of computed results.
type ResultCacheConfig struct {
	Enabled  bool          `json:"enabled"`
	TTL      time.Duration `json:"ttl"`
	Capacity int           `json:"capacity"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		HistoryLimit:            10,
		MaxResults:              MaxResultsLimit,
		RecentInteractionWindow: 5,
		RequestTimeout:          10 * time.Second,
		ResultCache: ResultCacheConfig{
			Enabled:  false,
			TTL:      30 * time.Second,
			Capacity: 10000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.HistoryLimit < 1 || c.HistoryLimit > 100 {
		return fmt.Errorf("history_limit must be in [1, 100], got %d", c.HistoryLimit)
	}
	if c.MaxResults < 1 || c.MaxResults > MaxResultsLimit {
		return fmt.Errorf("max_results must be in [1, %d], got %d", MaxResultsLimit, c.MaxResults)
	}
	if c.RecentInteractionWindow < 1 {
		return fmt.Errorf("recent_interaction_window must be positive, got %d", c.RecentInteractionWindow)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be non-negative, got %v", c.RequestTimeout)
	}
	if c.ResultCache.Enabled {
		if c.ResultCache.TTL <= 0 {
			return fmt.Errorf("result_cache.ttl must be positive when enabled, got %v", c.ResultCache.TTL)
		}
		if c.ResultCache.Capacity < 1 {
			return fmt.Errorf("result_cache.capacity must be positive when enabled, got %d", c.ResultCache.Capacity)
		}
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
