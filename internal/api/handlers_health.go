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

	"github.com/tomtom215/pathwise/internal/models"
)

const readinessTimeout = 2 * time.Second

var errNoStore = errors.New("store not configured")

// HealthLive is the liveness probe. It never touches dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Time{})
}

// HealthReady returns 200 only when the database answers a ping. The
// AI-engine breaker state and profile cache connectivity are included
// when configured.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	var pingErr error
	if h.store == nil {
		pingErr = errNoStore
	} else {
		pingErr = h.store.Ping(ctx)
	}
	dbConnected := pingErr == nil

	data := map[string]interface{}{
		"database_connected": dbConnected,
		"ready_to_serve":     dbConnected,
		"uptime":             time.Since(h.startTime).Seconds(),
	}
	// An open breaker degrades to the default style; it is reported, not fatal.
	if h.profileBreaker != nil {
		data["ai_engine_breaker"] = h.profileBreaker.State()
	}
	if h.profileCache != nil {
		cacheErr := h.profileCache.Ping(ctx)
		if cacheErr != nil {
			h.logger.Warn().Err(cacheErr).Msg("Profile cache unreachable")
		}
		data["profile_cache_connected"] = cacheErr == nil
	}
	if dbConnected {
		respondSuccess(w, r, http.StatusOK, data, start)
		return
	}

	h.logger.Warn().Err(pingErr).Msg("Readiness check failed")
	respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
		Status:   models.StatusError,
		Data:     data,
		Metadata: newMetadata(r, start),
		Error: &models.APIError{
			Code:    ErrCodeServiceUnavailable,
			Message: "Database is not reachable",
		},
	})
}
