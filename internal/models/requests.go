// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package models

import (
	"time"

	"github.com/tomtom215/pathwise/internal/personalize"
)

// SessionContextRequest is the caller's live session state.
type SessionContextRequest struct {
	SessionID            string  `json:"session_id,omitempty" validate:"omitempty,identifier"`
	CurrentCognitiveLoad float64 `json:"current_cognitive_load" validate:"finite,gte=0"`
}

// PersonalizeRequest is the body of POST /api/v1/personalized-content.
type PersonalizeRequest struct {
	LearnerID      string                `json:"learner_id" validate:"required,identifier"`
	TopicID        string                `json:"topic_id" validate:"required,identifier"`
	SessionContext SessionContextRequest `json:"session_context"`
}

// ToDomain converts the body to an engine request.
func (r *PersonalizeRequest) ToDomain(requestID string) personalize.Request {
	return personalize.Request{
		LearnerID: r.LearnerID,
		TopicID:   r.TopicID,
		Session: personalize.SessionContext{
			SessionID:            r.SessionContext.SessionID,
			CurrentCognitiveLoad: r.SessionContext.CurrentCognitiveLoad,
		},
		RequestID: requestID,
	}
}

// CreateSessionRequest is the body of POST /api/v1/sessions.
type CreateSessionRequest struct {
	ID        string    `json:"id,omitempty" validate:"omitempty,identifier"`
	LearnerID string    `json:"learner_id" validate:"required,identifier"`
	TopicID   string    `json:"topic_id" validate:"required,identifier"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// ToDomain converts the body to a new session.
func (r *CreateSessionRequest) ToDomain() *personalize.LearningSession {
	return &personalize.LearningSession{
		ID:        r.ID,
		LearnerID: r.LearnerID,
		TopicID:   r.TopicID,
		StartedAt: r.StartedAt,
	}
}

// EndSessionRequest is the body of POST /api/v1/sessions/{sessionID}/end.
// Both fields are optional. A missing engagement score is derived from the
// session's interactions.
type EndSessionRequest struct {
	EngagementScore       *float64 `json:"engagement_score,omitempty" validate:"omitempty,finite,gte=0,lte=1"`
	CognitiveLoadDetected *float64 `json:"cognitive_load_detected,omitempty" validate:"omitempty,finite,gte=0"`
}

// RecordInteractionRequest is the body of
// POST /api/v1/sessions/{sessionID}/interactions.
type RecordInteractionRequest struct {
	ID              string    `json:"id,omitempty" validate:"omitempty,identifier"`
	ContentItemID   string    `json:"content_item_id,omitempty" validate:"omitempty,identifier"`
	ContentType     string    `json:"content_type" validate:"required,oneof=video audio document interactive"`
	Accuracy        float64   `json:"accuracy" validate:"finite,gte=0,lte=1"`
	EngagementScore float64   `json:"engagement_score" validate:"finite,gte=0,lte=1"`
	DifficultyLevel int       `json:"difficulty_level,omitempty" validate:"omitempty,gte=1,lte=10"`
	Timestamp       time.Time `json:"timestamp,omitempty"`
}

// ToDomain converts the body to an interaction on sessionID.
func (r *RecordInteractionRequest) ToDomain(sessionID string) *personalize.Interaction {
	return &personalize.Interaction{
		ID:              r.ID,
		SessionID:       sessionID,
		ContentItemID:   r.ContentItemID,
		ContentType:     personalize.ContentType(r.ContentType),
		Accuracy:        r.Accuracy,
		EngagementScore: r.EngagementScore,
		DifficultyLevel: r.DifficultyLevel,
		Timestamp:       r.Timestamp,
	}
}

// UpsertContentRequest is the body of PUT /api/v1/content/{itemID}.
// The item ID comes from the path.
type UpsertContentRequest struct {
	TopicID            string   `json:"topic_id" validate:"required,identifier"`
	Title              string   `json:"title" validate:"required,max=512"`
	ContentType        string   `json:"content_type" validate:"required,oneof=video audio document interactive"`
	DifficultyLevel    int      `json:"difficulty_level" validate:"required,gte=1,lte=10"`
	Modalities         []string `json:"modalities" validate:"required,min=1,max=3,unique,dive,oneof=visual auditory kinesthetic"`
	CognitiveLoadLevel int      `json:"cognitive_load_level" validate:"required,gte=1,lte=10"`
	EstimatedDuration  int      `json:"estimated_duration" validate:"gte=0"`
	ContentURL         string   `json:"content_url,omitempty" validate:"omitempty,url"`
}

// ToDomain converts the body to a catalog item with the given ID.
func (r *UpsertContentRequest) ToDomain(itemID string) *personalize.ContentItem {
	modalities := make([]personalize.Modality, len(r.Modalities))
	for i, m := range r.Modalities {
		modalities[i] = personalize.Modality(m)
	}
	return &personalize.ContentItem{
		ID:                 itemID,
		TopicID:            r.TopicID,
		Title:              r.Title,
		ContentType:        personalize.ContentType(r.ContentType),
		DifficultyLevel:    r.DifficultyLevel,
		Modalities:         modalities,
		CognitiveLoadLevel: r.CognitiveLoadLevel,
		EstimatedDuration:  r.EstimatedDuration,
		ContentURL:         r.ContentURL,
	}
}
