// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/pathwise/internal/auth"
	"github.com/tomtom215/pathwise/internal/events"
	"github.com/tomtom215/pathwise/internal/logging"
	"github.com/tomtom215/pathwise/internal/metrics"
	"github.com/tomtom215/pathwise/internal/models"
	"github.com/tomtom215/pathwise/internal/personalize"
)

// PersonalizedContent handles POST /api/v1/personalized-content.
func (h *Handler) PersonalizedContent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body models.PersonalizeRequest
	if !decodeAndValidate(w, r, &body, false) {
		metrics.RecordPersonalization("invalid", time.Since(start), 0, nil, false, false)
		return
	}
	if !auth.SubjectAllowed(r.Context(), body.LearnerID) {
		respondError(w, r, http.StatusForbidden, ErrCodeForbidden, "Token subject does not match learner_id", nil)
		return
	}

	req := body.ToDomain(logging.RequestIDFromContext(r.Context()))
	res, err := h.engine.GetPersonalizedContent(r.Context(), req)
	if err != nil {
		status, code, outcome := classifyPersonalizeError(err)
		metrics.RecordPersonalization(outcome, time.Since(start), 0, nil, false, false)
		respondError(w, r, status, code, personalizeErrorMessage(code, err), err)
		return
	}

	d := &res.Diagnostics
	metrics.RecordPersonalization("ok", time.Since(start), len(res.Items), d.RulesApplied, d.ProfileFallback, d.Cached)
	h.publishServed(r.Context(), &req, res)

	md := newMetadata(r, start)
	md.Cached = d.Cached
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   models.StatusSuccess,
		Data:     res,
		Metadata: md,
	})
}

// classifyPersonalizeError maps an engine error to status, error code and
// metric outcome. Deadlines are checked first because a timed-out provider
// call also surfaces as a *ProviderError.
func classifyPersonalizeError(err error) (status int, code, outcome string) {
	switch {
	case errors.Is(err, personalize.ErrInvalidRequest):
		return http.StatusBadRequest, ErrCodeValidation, "invalid"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout, "timeout"
	case errors.Is(err, personalize.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, ErrCodeCatalogUnavailable, "catalog_unavailable"
	case errors.Is(err, personalize.ErrHistoryUnavailable):
		return http.StatusServiceUnavailable, ErrCodeHistoryUnavailable, "history_unavailable"
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "error"
	}
}

func personalizeErrorMessage(code string, err error) string {
	switch code {
	case ErrCodeValidation:
		return err.Error()
	case ErrCodeTimeout:
		return "Personalization timed out"
	case ErrCodeCatalogUnavailable:
		return "Content catalog is unavailable"
	case ErrCodeHistoryUnavailable:
		return "Learning history is unavailable"
	default:
		return "Personalization failed"
	}
}

// publishServed emits the served event. Failures are logged and counted by
// the publisher; they never fail the request.
func (h *Handler) publishServed(ctx context.Context, req *personalize.Request, res *personalize.Result) {
	if h.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.config.PublishTimeout)
	defer cancel()

	if err := h.publisher.PublishServed(ctx, events.NewPersonalizationServed(req, res)); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("learner_id", req.LearnerID).
			Str("topic_id", req.TopicID).
			Msg("Failed to publish personalization event")
	}
}
