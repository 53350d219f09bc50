// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package profilecache

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pathwise/internal/metrics"
	"github.com/tomtom215/pathwise/internal/personalize"
)

// CachingProvider serves profiles from a Store and falls through to the
// wrapped provider on a miss. Cache errors are logged and treated as misses.
// Upstream failures are never cached.
type CachingProvider struct {
	next   personalize.ProfileProvider
	store  Store
	logger zerolog.Logger
}

var _ personalize.ProfileProvider = (*CachingProvider)(nil)

// NewCachingProvider wraps next with store.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCachingProvider(next personalize.ProfileProvider, store Store, logger zerolog.Logger) *CachingProvider {
	return &CachingProvider{
		next:   next,
		store:  store,
		logger: logger.With().Str("backend", store.Name()).Logger(),
	}
}

// GetLearningStyle implements personalize.ProfileProvider.
func (p *CachingProvider) GetLearningStyle(ctx context.Context, learnerID string) (*personalize.LearningStyle, error) {
	style, ok, err := p.store.Get(ctx, learnerID)
	switch {
	case err != nil:
		metrics.RecordProfileCache(p.store.Name(), "error")
		p.logger.Warn().Err(err).Str("learner_id", learnerID).Msg("Profile cache read failed")
	case ok:
		metrics.RecordProfileCache(p.store.Name(), "hit")
		return style, nil
	default:
		metrics.RecordProfileCache(p.store.Name(), "miss")
	}

	style, err = p.next.GetLearningStyle(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	if err := p.store.Set(ctx, learnerID, style); err != nil {
		p.logger.Warn().Err(err).Str("learner_id", learnerID).Msg("Profile cache write failed")
	}
	return style, nil
}
