// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/pathwise/internal/auth"
	"github.com/tomtom215/pathwise/internal/database"
	"github.com/tomtom215/pathwise/internal/models"
	"github.com/tomtom215/pathwise/internal/personalize"
)

// ProgressResponse is the body of the progress endpoint.
type ProgressResponse struct {
	LearnerID string                   `json:"learner_id"`
	TopicID   string                   `json:"topic_id"`
	Progress  personalize.UserProgress `json:"progress"`
}

// LearnerProgress handles
// GET /api/v1/learners/{learnerID}/topics/{topicID}/progress.
func (h *Handler) LearnerProgress(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	learnerID, ok := pathID(w, r, "learner_id", chi.URLParam(r, "learnerID"))
	if !ok {
		return
	}
	topicID, ok := pathID(w, r, "topic_id", chi.URLParam(r, "topicID"))
	if !ok {
		return
	}
	if !auth.SubjectAllowed(r.Context(), learnerID) {
		respondError(w, r, http.StatusForbidden, ErrCodeForbidden, "Token subject does not match learner", nil)
		return
	}

	sessions, err := h.store.RecentSessions(r.Context(), learnerID, topicID, h.config.HistoryLimit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to load learning history", err)
		return
	}

	respondSuccess(w, r, http.StatusOK, ProgressResponse{
		LearnerID: learnerID,
		TopicID:   topicID,
		Progress:  personalize.AggregateProgress(sessions),
	}, start)
}

// TopicContent handles GET /api/v1/topics/{topicID}/content.
func (h *Handler) TopicContent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	topicID, ok := pathID(w, r, "topic_id", chi.URLParam(r, "topicID"))
	if !ok {
		return
	}

	items, err := h.store.ListContent(r.Context(), topicID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to load content catalog", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, items, start)
}

// ContentItem handles GET /api/v1/content/{itemID}.
func (h *Handler) ContentItem(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	itemID, ok := pathID(w, r, "item_id", chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	item, err := h.store.GetContentItem(r.Context(), itemID)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Content item not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to load content item", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, item, start)
}

// UpsertContent handles PUT /api/v1/content/{itemID}. It returns 201 when
// the item is new and 200 when it replaced an existing one.
func (h *Handler) UpsertContent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !auth.ServiceAllowed(r.Context()) {
		respondError(w, r, http.StatusForbidden, ErrCodeForbidden, "Catalog changes require the service role", nil)
		return
	}
	itemID, ok := pathID(w, r, "item_id", chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	var body models.UpsertContentRequest
	if !decodeAndValidate(w, r, &body, false) {
		return
	}

	item := body.ToDomain(itemID)
	if err := item.Validate(); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	created, err := h.store.UpsertContentItem(r.Context(), item)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, "Failed to save content item", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondSuccess(w, r, status, item, start)
}

// CreateSession handles POST /api/v1/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body models.CreateSessionRequest
	if !decodeAndValidate(w, r, &body, false) {
		return
	}
	if !auth.SubjectAllowed(r.Context(), body.LearnerID) {
		respondError(w, r, http.StatusForbidden, ErrCodeForbidden, "Token subject does not match learner_id", nil)
		return
	}

	session, err := h.store.CreateSession(r.Context(), body.ToDomain())
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to create session")
		return
	}
	respondSuccess(w, r, http.StatusCreated, session, start)
}

// EndSession handles POST /api/v1/sessions/{sessionID}/end. The body is
// optional.
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sessionID, ok := pathID(w, r, "session_id", chi.URLParam(r, "sessionID"))
	if !ok {
		return
	}
	var body models.EndSessionRequest
	if !decodeAndValidate(w, r, &body, true) {
		return
	}
	if !h.authorizeSession(w, r, sessionID) {
		return
	}

	session, err := h.store.EndSession(r.Context(), sessionID, body.EngagementScore, body.CognitiveLoadDetected)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to end session")
		return
	}
	respondSuccess(w, r, http.StatusOK, session, start)
}

// RecordInteraction handles POST /api/v1/sessions/{sessionID}/interactions.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	sessionID, ok := pathID(w, r, "session_id", chi.URLParam(r, "sessionID"))
	if !ok {
		return
	}
	var body models.RecordInteractionRequest
	if !decodeAndValidate(w, r, &body, false) {
		return
	}
	if !h.authorizeSession(w, r, sessionID) {
		return
	}

	interaction, err := h.store.RecordInteraction(r.Context(), body.ToDomain(sessionID))
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to record interaction")
		return
	}
	respondSuccess(w, r, http.StatusCreated, interaction, start)
}

// authorizeSession checks that the caller may write to the session's
// learner. It writes the error response and returns false otherwise.
func (h *Handler) authorizeSession(w http.ResponseWriter, r *http.Request, sessionID string) bool {
	if auth.ClaimsFromContext(r.Context()) == nil {
		return true
	}
	session, err := h.store.GetSession(r.Context(), sessionID)
	if err != nil {
		h.respondStoreError(w, r, err, "Failed to load session")
		return false
	}
	if !auth.SubjectAllowed(r.Context(), session.LearnerID) {
		respondError(w, r, http.StatusForbidden, ErrCodeForbidden, "Session belongs to another learner", nil)
		return false
	}
	return true
}

func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Session not found", nil)
	case errors.Is(err, database.ErrSessionClosed):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, "Session has already ended", nil)
	case errors.Is(err, database.ErrConflict):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, "Resource already exists", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabase, message, err)
	}
}
