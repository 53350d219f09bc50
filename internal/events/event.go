// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/pathwise/internal/personalize"
)

// SchemaVersion is bumped on breaking payload changes.
const SchemaVersion = 1

// DefaultTopic carries PersonalizationServed events.
const DefaultTopic = "content.personalized"

// PersonalizationServed records that a learner was shown a content list.
type PersonalizationServed struct {
	SchemaVersion    int       `json:"schema_version"`
	EventID          string    `json:"event_id"`
	RequestID        string    `json:"request_id,omitempty"`
	LearnerID        string    `json:"learner_id"`
	TopicID          string    `json:"topic_id"`
	SessionID        string    `json:"session_id,omitempty"`
	ItemIDs          []string  `json:"item_ids"`
	TargetDifficulty int       `json:"target_difficulty"`
	ProfileFallback  bool      `json:"profile_fallback"`
	RulesApplied     []string  `json:"rules_applied,omitempty"`
	Cached           bool      `json:"cached,omitempty"`
	ServedAt         time.Time `json:"served_at"`
}

// NewPersonalizationServed builds the event for a completed request.
func NewPersonalizationServed(req *personalize.Request, res *personalize.Result) *PersonalizationServed {
	ids := make([]string, len(res.Items))
	for i := range res.Items {
		ids[i] = res.Items[i].ID
	}
	servedAt := res.GeneratedAt
	if servedAt.IsZero() {
		servedAt = time.Now().UTC()
	}
	return &PersonalizationServed{
		SchemaVersion:    SchemaVersion,
		EventID:          uuid.New().String(),
		RequestID:        res.RequestID,
		LearnerID:        req.LearnerID,
		TopicID:          req.TopicID,
		SessionID:        req.Session.SessionID,
		ItemIDs:          ids,
		TargetDifficulty: res.Diagnostics.TargetDifficulty,
		ProfileFallback:  res.Diagnostics.ProfileFallback,
		RulesApplied:     append([]string(nil), res.Diagnostics.RulesApplied...),
		Cached:           res.Diagnostics.Cached,
		ServedAt:         servedAt,
	}
}

// Validate checks the fields consumers rely on.
func (e *PersonalizationServed) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.LearnerID == "" {
		return fmt.Errorf("learner_id is required")
	}
	if e.TopicID == "" {
		return fmt.Errorf("topic_id is required")
	}
	if e.ServedAt.IsZero() {
		return fmt.Errorf("served_at is required")
	}
	return nil
}

// Marshal encodes the event as JSON.
func (e *PersonalizationServed) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalPersonalizationServed decodes and validates a payload.
func UnmarshalPersonalizationServed(data []byte) (*PersonalizationServed, error) {
	var e PersonalizationServed
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}
	return &e, nil
}
