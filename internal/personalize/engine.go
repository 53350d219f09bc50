// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package personalize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ProfileProvider supplies a learner's LearningStyle.
type ProfileProvider interface {
	GetLearningStyle(ctx context.Context, learnerID string) (*LearningStyle, error)
}

// CatalogProvider supplies the content for a topic sorted by ascending difficulty.
type CatalogProvider interface {
	ListContent(ctx context.Context, topicID string) ([]ContentItem, error)
}

// HistoryProvider supplies a learner's most recent sessions for a topic,
// newest first, each with its interactions.
type HistoryProvider interface {
	RecentSessions(ctx context.Context, learnerID, topicID string, limit int) ([]LearningSession, error)
}

// Engine runs the personalization pipeline. It holds no per-call state and
// is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	profiles ProfileProvider
	catalog  CatalogProvider
	history  HistoryProvider

	rules []Rule
	cache ResultCache
}

// NewEngine creates a personalization engine over the given providers.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger, profiles ProfileProvider, catalog CatalogProvider, history HistoryProvider) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if profiles == nil || catalog == nil || history == nil {
		return nil, errors.New("profile, catalog and history providers are required")
	}

	return &Engine{
		config:   cfg.Clone(),
		logger:   logger.With().Str("component", "personalize").Logger(),
		profiles: profiles,
		catalog:  catalog,
		history:  history,
		rules:    DefaultRules(),
	}, nil
}

// SetRules replaces the real-time rule chain. Call before serving traffic.
func (e *Engine) SetRules(rules ...Rule) {
	e.rules = append([]Rule(nil), rules...)
}

// SetResultCache enables result caching. Call before serving traffic.
func (e *Engine) SetResultCache(c ResultCache) {
	e.cache = c
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// fetched holds the provider outputs for one call.
type fetched struct {
	style    LearningStyle
	fallback bool
	catalog  []ContentItem
	sessions []LearningSession
}

// GetPersonalizedContent returns an ordered list of at most MaxResults items
// for the learner and topic. A profile failure falls back to the default
// style; a catalog or history failure returns a *ProviderError.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) GetPersonalizedContent(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	req.LearnerID = strings.TrimSpace(req.LearnerID)
	req.TopicID = strings.TrimSpace(req.TopicID)
	if err := ValidateRequest(&req); err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("learner_id", req.LearnerID).
		Str("topic_id", req.TopicID).
		Logger()

	if e.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.RequestTimeout)
		defer cancel()
	}

	data, err := e.fetch(ctx, &req, logger)
	if err != nil {
		return nil, err
	}

	progress := AggregateProgress(data.sessions)
	recent := RecentInteractions(data.sessions, req.Session.SessionID, e.config.RecentInteractionWindow)

	var cacheKey string
	if e.cache != nil {
		cacheKey = CacheKey(&req, recent)
		if cached, ok := e.cache.Get(cacheKey); ok {
			if res, ok := cached.(*Result); ok {
				out := res.clone()
				out.RequestID = req.RequestID
				out.Diagnostics.Cached = true
				out.Diagnostics.LatencyMS = time.Since(start).Milliseconds()
				logger.Debug().Int("returned", len(out.Items)).Msg("served personalization from cache")
				return out, nil
			}
		}
	}

	result := e.run(&req, data, &progress, recent, logger)
	result.Diagnostics.LatencyMS = time.Since(start).Milliseconds()

	if e.cache != nil {
		e.cache.Set(cacheKey, result.clone())
	}

	logger.Debug().
		Int("catalog", result.Diagnostics.Stages.Catalog).
		Int("returned", result.Diagnostics.Stages.Returned).
		Int("target_difficulty", result.Diagnostics.TargetDifficulty).
		Bool("profile_fallback", data.fallback).
		Int64("latency_ms", result.Diagnostics.LatencyMS).
		Msg("personalization complete")

	return result, nil
}

// fetch loads profile, catalog and history concurrently.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) fetch(ctx context.Context, req *Request, logger zerolog.Logger) (*fetched, error) {
	data := &fetched{}
	var profileErr error

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		style, err := e.profiles.GetLearningStyle(gctx, req.LearnerID)
		switch {
		case err != nil:
			profileErr = err
		case style == nil:
			profileErr = ErrProfileUnavailable
		default:
			if verr := style.Validate(); verr != nil {
				profileErr = fmt.Errorf("%w: %v", ErrProfileUnavailable, verr)
			} else {
				data.style = *style
			}
		}
		return nil
	})

	g.Go(func() error {
		items, err := e.catalog.ListContent(gctx, req.TopicID)
		if err != nil {
			return &ProviderError{Source: SourceCatalog, Err: err}
		}
		data.catalog = items
		return nil
	})

	g.Go(func() error {
		sessions, err := e.history.RecentSessions(gctx, req.LearnerID, req.TopicID, e.config.HistoryLimit)
		if err != nil {
			return &ProviderError{Source: SourceHistory, Err: err}
		}
		data.sessions = sessions
		return nil
	})

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("personalization aborted: %w", ctxErr)
	}
	if err != nil {
		logger.Error().Err(err).Msg("provider fetch failed")
		return nil, err
	}

	if profileErr != nil {
		logger.Warn().Err(profileErr).Msg("learner profile unavailable, using default learning style")
		data.style = DefaultLearningStyle()
		data.fallback = true
	}

	data.catalog = normalizeCatalog(data.catalog)
	data.sessions = normalizeSessions(data.sessions, e.config.HistoryLimit)
	return data, nil
}

// run executes the synchronous pipeline stages in their fixed order.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) run(req *Request, data *fetched, progress *UserProgress, recent []Interaction, logger zerolog.Logger) *Result {
	style := &data.style
	diag := Diagnostics{
		ProfileFallback: data.fallback,
		Progress:        *progress,
	}
	diag.Stages.Catalog = len(data.catalog)

	diag.TargetDifficulty = TargetDifficulty(style, progress)
	candidates := FilterByDifficulty(data.catalog, diag.TargetDifficulty)
	diag.Stages.Difficulty = len(candidates)

	candidates = RankByModality(candidates, style.ModalityPreferences)

	candidates = FilterByCognitiveLoad(candidates,
		style.CognitivePatterns.CognitiveLoadTolerance, req.Session.CurrentCognitiveLoad)
	diag.Stages.Load = len(candidates)

	candidates = Sequence(candidates, style.CognitivePatterns.AttentionSpan)
	diag.Stages.Sequenced = len(candidates)

	if stats, ok := ComputeRecentStats(recent); ok {
		diag.Recent = stats
		candidates, diag.RulesApplied = ApplyRules(candidates, e.rules, stats)
	}
	diag.Stages.Adapted = len(candidates)

	candidates = Truncate(candidates, e.config.MaxResults)
	diag.Stages.Returned = len(candidates)

	logger.Debug().
		Int("after_difficulty", diag.Stages.Difficulty).
		Int("after_load", diag.Stages.Load).
		Int("after_sequence", diag.Stages.Sequenced).
		Int("after_rules", diag.Stages.Adapted).
		Strs("rules_applied", diag.RulesApplied).
		Msg("pipeline stages complete")

	items := make([]ContentItem, len(candidates))
	copy(items, candidates)

	return &Result{
		RequestID:   req.RequestID,
		Items:       items,
		Diagnostics: diag,
		GeneratedAt: time.Now().UTC(),
	}
}

// normalizeCatalog returns a copy ordered by ascending difficulty. Providers
// already return this order; the stable sort keeps their tie order.
func normalizeCatalog(items []ContentItem) []ContentItem {
	out := make([]ContentItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].DifficultyLevel < out[b].DifficultyLevel
	})
	return out
}

// normalizeSessions returns at most limit sessions, newest first.
func normalizeSessions(sessions []LearningSession, limit int) []LearningSession {
	out := make([]LearningSession, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].StartedAt.After(out[b].StartedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ValidateRequest rejects malformed requests before any I/O.
func ValidateRequest(req *Request) error {
	if err := validateID("learner_id", req.LearnerID); err != nil {
		return err
	}
	if err := validateID("topic_id", req.TopicID); err != nil {
		return err
	}
	if len(req.Session.SessionID) > MaxIDLength {
		return &ValidationError{Field: "session_context.session_id", Reason: fmt.Sprintf("must be at most %d characters", MaxIDLength)}
	}
	load := req.Session.CurrentCognitiveLoad
	if math.IsNaN(load) || math.IsInf(load, 0) || load < 0 {
		return &ValidationError{Field: "session_context.current_cognitive_load", Reason: "must be a non-negative finite number"}
	}
	return nil
}

func validateID(field, id string) error {
	if id == "" {
		return &ValidationError{Field: field, Reason: "is required"}
	}
	if len(id) > MaxIDLength {
		return &ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %d characters", MaxIDLength)}
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return &ValidationError{Field: field, Reason: "must not contain whitespace or control characters"}
		}
	}
	return nil
}
