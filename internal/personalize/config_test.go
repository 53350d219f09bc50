// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package personalize

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.HistoryLimit != 10 || cfg.MaxResults != 10 || cfg.RecentInteractionWindow != 5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ResultCache.Enabled {
		t.Error("result cache must be disabled by default")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"history limit zero", func(c *Config) { c.HistoryLimit = 0 }, "history_limit"},
		{"max results above cap", func(c *Config) { c.MaxResults = 11 }, "max_results"},
		{"window zero", func(c *Config) { c.RecentInteractionWindow = 0 }, "recent_interaction_window"},
		{"negative timeout", func(c *Config) { c.RequestTimeout = -time.Second }, "request_timeout"},
		{"cache without ttl", func(c *Config) { c.ResultCache.Enabled = true; c.ResultCache.TTL = 0 }, "result_cache.ttl"},
		{"cache without capacity", func(c *Config) { c.ResultCache.Enabled = true; c.ResultCache.Capacity = 0 }, "result_cache.capacity"},
		{"disabled cache ignores ttl", func(c *Config) { c.ResultCache.TTL = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.MaxResults = 3
	if cfg.MaxResults == 3 {
		t.Error("Clone shares state with original")
	}
}

func TestLearningStyle_Validate(t *testing.T) {
	t.Parallel()

	def := DefaultLearningStyle()
	if err := def.Validate(); err != nil {
		t.Fatalf("default style invalid: %v", err)
	}

	bad := DefaultLearningStyle()
	bad.CognitivePatterns.AttentionSpan = -0.1
	if err := bad.Validate(); err == nil || !strings.Contains(err.Error(), "attention_span") {
		t.Errorf("Validate() error = %v, want attention_span", err)
	}
}

func TestContentItem_Validate(t *testing.T) {
	t.Parallel()

	valid := item("ok", 5, 5, 60, ContentTypeVideo, ModalityVisual)
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*ContentItem)
	}{
		{"missing id", func(c *ContentItem) { c.ID = "" }},
		{"bad type", func(c *ContentItem) { c.ContentType = "podcast" }},
		{"difficulty zero", func(c *ContentItem) { c.DifficultyLevel = 0 }},
		{"load eleven", func(c *ContentItem) { c.CognitiveLoadLevel = 11 }},
		{"no modalities", func(c *ContentItem) { c.Modalities = nil }},
		{"bad modality", func(c *ContentItem) { c.Modalities = []Modality{"olfactory"} }},
		{"negative duration", func(c *ContentItem) { c.EstimatedDuration = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			it := item("ok", 5, 5, 60, ContentTypeVideo, ModalityVisual)
			tt.mutate(&it)
			if err := it.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	verr := error(&ValidationError{Field: "topic_id", Reason: "is required"})
	if !errors.Is(verr, ErrInvalidRequest) {
		t.Error("ValidationError should match ErrInvalidRequest")
	}
	if verr.Error() != "invalid topic_id: is required" {
		t.Errorf("Error() = %q", verr.Error())
	}

	cause := errors.New("boom")
	perr := error(&ProviderError{Source: SourceHistory, Err: cause})
	if !errors.Is(perr, ErrHistoryUnavailable) || !errors.Is(perr, cause) {
		t.Error("ProviderError should match its sentinel and cause")
	}
	if errors.Is(perr, ErrCatalogUnavailable) {
		t.Error("history error should not match catalog sentinel")
	}
	if _, ok := IsProviderError(verr); ok {
		t.Error("ValidationError is not a provider error")
	}
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	req := Request{LearnerID: "l1", TopicID: "t1", Session: SessionContext{SessionID: "s1", CurrentCognitiveLoad: 1}}
	recent := []Interaction{interactionAt(1, ContentTypeVideo, 0.5, 0.5, 3)}

	base := CacheKey(&req, recent)
	if base != CacheKey(&req, recent) {
		t.Error("CacheKey is not deterministic")
	}
	if !strings.HasPrefix(base, "personalize:l1:t1:") {
		t.Errorf("CacheKey = %q", base)
	}

	changed := req
	changed.Session.CurrentCognitiveLoad = 1.5
	if CacheKey(&changed, recent) == base {
		t.Error("load change should change key")
	}

	more := append(recent, interactionAt(2, ContentTypeAudio, 0.5, 0.5, 3))
	if CacheKey(&req, more) == base {
		t.Error("new interaction should change key")
	}
}
