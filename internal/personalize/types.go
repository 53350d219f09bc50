// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package personalize

import (
	"fmt"
	"math"
	"time"
)

// Modality is a sensory channel through which content is delivered.
type Modality string

const (
	ModalityVisual      Modality = "visual"
	ModalityAuditory    Modality = "auditory"
	ModalityKinesthetic Modality = "kinesthetic"
)

// Valid reports whether m is one of the known modalities.
func (m Modality) Valid() bool {
	switch m {
	case ModalityVisual, ModalityAuditory, ModalityKinesthetic:
		return true
	default:
		return false
	}
}

// ContentType classifies the delivery format of a content item.
type ContentType string

const (
	ContentTypeVideo       ContentType = "video"
	ContentTypeAudio       ContentType = "audio"
	ContentTypeDocument    ContentType = "document"
	ContentTypeInteractive ContentType = "interactive"
)

// Valid reports whether c is one of the known content types.
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeVideo, ContentTypeAudio, ContentTypeDocument, ContentTypeInteractive:
		return true
	default:
		return false
	}
}

// Level bounds shared by difficulty and cognitive load.
const (
	MinLevel = 1
	MaxLevel = 10
)

// ModalityPreferences holds a learner's affinity for each modality in [0, 1].
type ModalityPreferences struct {
	Visual      float64 `json:"visual"`
	Auditory    float64 `json:"auditory"`
	Kinesthetic float64 `json:"kinesthetic"`
}

// For returns the preference for a single modality. Unknown modalities score 0.
func (p ModalityPreferences) For(m Modality) float64 {
	switch m {
	case ModalityVisual:
		return p.Visual
	case ModalityAuditory:
		return p.Auditory
	case ModalityKinesthetic:
		return p.Kinesthetic
	default:
		return 0
	}
}

// CognitivePatterns describes processing characteristics, each in [0, 1].
// AttentionSpan is expressed in hours when converted to a session budget.
type CognitivePatterns struct {
	ProcessingSpeed        float64 `json:"processing_speed"`
	AttentionSpan          float64 `json:"attention_span"`
	WorkingMemory          float64 `json:"working_memory"`
	CognitiveLoadTolerance float64 `json:"cognitive_load_tolerance"`
}

// DifficultyProgression controls where a learner starts and how fast difficulty rises.
type DifficultyProgression struct {
	StartingDifficulty float64 `json:"starting_difficulty"`
	ProgressionRate    float64 `json:"progression_rate"`
	MaxDifficulty      float64 `json:"max_difficulty"`
}

// OptimalConditions groups the profile's recommended learning conditions.
type OptimalConditions struct {
	PreferredContentMix   ModalityPreferences   `json:"preferred_content_mix"`
	DifficultyProgression DifficultyProgression `json:"difficulty_progression"`
}

// LearningStyle is the externally supplied learner profile.
// Every field is normalized to [0, 1]; conversions to working scales
// happen only inside the pipeline stages.
type LearningStyle struct {
	ModalityPreferences ModalityPreferences `json:"modality_preferences"`
	CognitivePatterns   CognitivePatterns   `json:"cognitive_patterns"`
	OptimalConditions   OptimalConditions   `json:"optimal_conditions"`
}

// DefaultLearningStyle returns the profile substituted when the profile
// provider cannot supply one.
func DefaultLearningStyle() LearningStyle {
	const third = 1.0 / 3.0
	prefs := ModalityPreferences{Visual: third, Auditory: third, Kinesthetic: third}
	return LearningStyle{
		ModalityPreferences: prefs,
		CognitivePatterns: CognitivePatterns{
			ProcessingSpeed:        0.5,
			AttentionSpan:          0.5,
			WorkingMemory:          0.5,
			CognitiveLoadTolerance: 0.5,
		},
		OptimalConditions: OptimalConditions{
			PreferredContentMix: prefs,
			DifficultyProgression: DifficultyProgression{
				StartingDifficulty: 0.3,
				ProgressionRate:    0.1,
				MaxDifficulty:      0.8,
			},
		},
	}
}

// Validate checks that every field lies in [0, 1].
func (s *LearningStyle) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"modality_preferences.visual", s.ModalityPreferences.Visual},
		{"modality_preferences.auditory", s.ModalityPreferences.Auditory},
		{"modality_preferences.kinesthetic", s.ModalityPreferences.Kinesthetic},
		{"cognitive_patterns.processing_speed", s.CognitivePatterns.ProcessingSpeed},
		{"cognitive_patterns.attention_span", s.CognitivePatterns.AttentionSpan},
		{"cognitive_patterns.working_memory", s.CognitivePatterns.WorkingMemory},
		{"cognitive_patterns.cognitive_load_tolerance", s.CognitivePatterns.CognitiveLoadTolerance},
		{"optimal_conditions.preferred_content_mix.visual", s.OptimalConditions.PreferredContentMix.Visual},
		{"optimal_conditions.preferred_content_mix.auditory", s.OptimalConditions.PreferredContentMix.Auditory},
		{"optimal_conditions.preferred_content_mix.kinesthetic", s.OptimalConditions.PreferredContentMix.Kinesthetic},
		{"optimal_conditions.difficulty_progression.starting_difficulty", s.OptimalConditions.DifficultyProgression.StartingDifficulty},
		{"optimal_conditions.difficulty_progression.progression_rate", s.OptimalConditions.DifficultyProgression.ProgressionRate},
		{"optimal_conditions.difficulty_progression.max_difficulty", s.OptimalConditions.DifficultyProgression.MaxDifficulty},
	}
	for _, f := range fields {
		if !isUnit(f.value) {
			return fmt.Errorf("%s must be in [0, 1], got %v", f.name, f.value)
		}
	}
	return nil
}

func isUnit(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// ContentItem is a unit of learning content. Items are read-only inputs;
// the engine copies slices and never modifies an item.
type ContentItem struct {
	ID                 string      `json:"id"`
	TopicID            string      `json:"topic_id"`
	Title              string      `json:"title"`
	ContentType        ContentType `json:"content_type"`
	DifficultyLevel    int         `json:"difficulty_level"`
	Modalities         []Modality  `json:"modalities"`
	CognitiveLoadLevel int         `json:"cognitive_load_level"`
	EstimatedDuration  int         `json:"estimated_duration"` // seconds
	ContentURL         string      `json:"content_url,omitempty"`
}

// Validate checks the catalog invariants for an item.
func (c *ContentItem) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("content item id is required")
	}
	if !c.ContentType.Valid() {
		return fmt.Errorf("content item %s: unknown content type %q", c.ID, c.ContentType)
	}
	if c.DifficultyLevel < MinLevel || c.DifficultyLevel > MaxLevel {
		return fmt.Errorf("content item %s: difficulty_level must be in [%d, %d], got %d", c.ID, MinLevel, MaxLevel, c.DifficultyLevel)
	}
	if c.CognitiveLoadLevel < MinLevel || c.CognitiveLoadLevel > MaxLevel {
		return fmt.Errorf("content item %s: cognitive_load_level must be in [%d, %d], got %d", c.ID, MinLevel, MaxLevel, c.CognitiveLoadLevel)
	}
	if len(c.Modalities) == 0 {
		return fmt.Errorf("content item %s: at least one modality is required", c.ID)
	}
	for _, m := range c.Modalities {
		if !m.Valid() {
			return fmt.Errorf("content item %s: unknown modality %q", c.ID, m)
		}
	}
	if c.EstimatedDuration < 0 {
		return fmt.Errorf("content item %s: estimated_duration must be non-negative, got %d", c.ID, c.EstimatedDuration)
	}
	return nil
}

// Interaction is one recorded learner response to a content item.
type Interaction struct {
	ID              string      `json:"id"`
	SessionID       string      `json:"session_id"`
	ContentItemID   string      `json:"content_item_id,omitempty"`
	ContentType     ContentType `json:"content_type"`
	Accuracy        float64     `json:"accuracy"`
	EngagementScore float64     `json:"engagement_score"`
	DifficultyLevel int         `json:"difficulty_level"` // 0 when not recorded
	Timestamp       time.Time   `json:"timestamp"`
}

// LearningSession is a historical study session with its interactions
// ordered oldest first.
type LearningSession struct {
	ID                    string        `json:"id"`
	LearnerID             string        `json:"learner_id"`
	TopicID               string        `json:"topic_id"`
	StartedAt             time.Time     `json:"started_at"`
	EndedAt               *time.Time    `json:"ended_at,omitempty"`
	EngagementScore       *float64      `json:"engagement_score,omitempty"`
	CognitiveLoadDetected *float64      `json:"cognitive_load_detected,omitempty"`
	Interactions          []Interaction `json:"interactions"`
}

// IsOpen reports whether the session has not been ended.
func (s *LearningSession) IsOpen() bool {
	return s.EndedAt == nil
}

// UserProgress is a summary derived from recent sessions. It is never persisted.
type UserProgress struct {
	AverageAccuracy        float64       `json:"average_accuracy"`
	CurrentDifficultyLevel float64       `json:"current_difficulty_level"`
	EngagementTrend        float64       `json:"engagement_trend"`
	CognitiveLoadHistory   []float64     `json:"cognitive_load_history"`
	PreferredContentTypes  []ContentType `json:"preferred_content_types"`
	SessionsConsidered     int           `json:"sessions_considered"`
}

// SessionContext carries the caller's live session counters.
// The engine reads it and never changes it.
type SessionContext struct {
	SessionID            string  `json:"session_id,omitempty"`
	CurrentCognitiveLoad float64 `json:"current_cognitive_load"`
}

// Request is a personalization request.
type Request struct {
	LearnerID string         `json:"learner_id"`
	TopicID   string         `json:"topic_id"`
	Session   SessionContext `json:"session_context"`
	RequestID string         `json:"request_id,omitempty"`
}

// StageCounts records how many candidates survived each pipeline stage.
type StageCounts struct {
	Catalog    int `json:"catalog"`
	Difficulty int `json:"difficulty"`
	Load       int `json:"load"`
	Sequenced  int `json:"sequenced"`
	Adapted    int `json:"adapted"`
	Returned   int `json:"returned"`
}

// Diagnostics explains how a result was produced.
type Diagnostics struct {
	TargetDifficulty int          `json:"target_difficulty"`
	ProfileFallback  bool         `json:"profile_fallback"`
	Progress         UserProgress `json:"progress"`
	Recent           RecentStats  `json:"recent"`
	RulesApplied     []string     `json:"rules_applied,omitempty"`
	Stages           StageCounts  `json:"stages"`
	Cached           bool         `json:"cached,omitempty"`
	LatencyMS        int64        `json:"latency_ms"`
}

// Result is the ordered, bounded content list for a request.
type Result struct {
	RequestID   string        `json:"request_id"`
	Items       []ContentItem `json:"items"`
	Diagnostics Diagnostics   `json:"diagnostics"`
	GeneratedAt time.Time     `json:"generated_at"`
}

func (r *Result) clone() *Result {
	out := *r
	out.Items = make([]ContentItem, len(r.Items))
	copy(out.Items, r.Items)
	out.Diagnostics.RulesApplied = append([]string(nil), r.Diagnostics.RulesApplied...)
	return &out
}
