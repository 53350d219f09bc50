// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pathwise/internal/events"
	"github.com/tomtom215/pathwise/internal/logging"
	"github.com/tomtom215/pathwise/internal/personalize"
)

// Personalizer produces personalized content. *personalize.Engine satisfies it.
type Personalizer interface {
	GetPersonalizedContent(ctx context.Context, req personalize.Request) (*personalize.Result, error)
}

// Store is the catalog and session store. *database.DB satisfies it.
type Store interface {
	personalize.CatalogProvider
	personalize.HistoryProvider

	GetContentItem(ctx context.Context, id string) (*personalize.ContentItem, error)
	UpsertContentItem(ctx context.Context, item *personalize.ContentItem) (bool, error)
	GetSession(ctx context.Context, id string) (*personalize.LearningSession, error)
	CreateSession(ctx context.Context, s *personalize.LearningSession) (*personalize.LearningSession, error)
	EndSession(ctx context.Context, id string, engagement, load *float64) (*personalize.LearningSession, error)
	RecordInteraction(ctx context.Context, in *personalize.Interaction) (*personalize.Interaction, error)
	Ping(ctx context.Context) error
}

// EventPublisher receives a PersonalizationServed event per successful
// personalization. *events.Publisher satisfies it.
type EventPublisher interface {
	PublishServed(ctx context.Context, ev *events.PersonalizationServed) error
}

// BreakerStater reports a circuit breaker state. *aiengine.Client satisfies it.
type BreakerStater interface {
	State() string
}

// Pinger checks a dependency's connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerConfig tunes the handlers.
type HandlerConfig struct {
	// HistoryLimit bounds the sessions read for the progress endpoint.
	HistoryLimit int
	// PublishTimeout bounds each best-effort event publish.
	PublishTimeout time.Duration
}

// Handler serves the HTTP endpoints.
type Handler struct {
	engine    Personalizer
	store     Store
	publisher EventPublisher
	config    HandlerConfig
	logger    zerolog.Logger

	profileBreaker BreakerStater
	profileCache   Pinger

	startTime time.Time
}

// NewHandler creates a handler. publisher may be nil.
func NewHandler(engine Personalizer, store Store, publisher EventPublisher, cfg HandlerConfig) *Handler {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = personalize.DefaultConfig().HistoryLimit
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 2 * time.Second
	}
	return &Handler{
		engine:    engine,
		store:     store,
		publisher: publisher,
		config:    cfg,
		logger:    logging.WithComponent("api"),
		startTime: time.Now(),
	}
}

// SetProfileBreaker reports the AI-engine breaker state on readiness.
func (h *Handler) SetProfileBreaker(b BreakerStater) {
	h.profileBreaker = b
}

// SetProfileCache reports profile cache connectivity on readiness. The
// profile cache never gates readiness: lookups fall through to the AI engine.
func (h *Handler) SetProfileCache(p Pinger) {
	h.profileCache = p
}
