// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package personalize

import (
	"math"
	"reflect"
	"testing"
	"time"
)

func ruleCandidates() []ContentItem {
	return []ContentItem{
		item("v2", 2, 1, 60, ContentTypeVideo, ModalityVisual),
		item("a3", 3, 1, 60, ContentTypeAudio, ModalityAuditory),
		item("v5", 5, 1, 60, ContentTypeVideo, ModalityVisual),
		item("d6", 6, 1, 60, ContentTypeDocument, ModalityVisual),
		item("i8", 8, 1, 60, ContentTypeInteractive, ModalityKinesthetic),
	}
}

func TestStrugglingRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		acc  float64
		want []string
	}{
		{"below threshold", 0.59, []string{"v2", "a3", "v5"}},
		{"at threshold", 0.6, []string{"v2", "a3", "v5", "d6", "i8"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := itemIDs(StrugglingRule(ruleCandidates(), RecentStats{Count: 1, AvgAccuracy: tt.acc, AvgEngagement: 1}))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisengagedRule(t *testing.T) {
	t.Parallel()

	stats := RecentStats{Count: 2, AvgAccuracy: 0.7, AvgEngagement: 0.3, LastContentType: ContentTypeVideo}
	got := itemIDs(DisengagedRule(ruleCandidates(), stats))
	if want := []string{"a3", "d6", "i8"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	stats.AvgEngagement = 0.5
	if got := DisengagedRule(ruleCandidates(), stats); len(got) != 5 {
		t.Errorf("engagement at threshold removed items: %v", itemIDs(got))
	}
}

func TestExcellingRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		acc  float64
		eng  float64
		want int
	}{
		{"both above", 0.85, 0.75, 3},
		{"accuracy at threshold", 0.8, 0.9, 5},
		{"engagement at threshold", 0.9, 0.7, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExcellingRule(ruleCandidates(), RecentStats{Count: 3, AvgAccuracy: tt.acc, AvgEngagement: tt.eng})
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d (%v)", len(got), tt.want, itemIDs(got))
			}
			for _, it := range got {
				if tt.want == 3 && it.DifficultyLevel < 4 {
					t.Errorf("item %s below difficulty 4 survived", it.ID)
				}
			}
		})
	}
}

func TestApplyRules_OrderAndNames(t *testing.T) {
	t.Parallel()

	// Struggling and disengaged together.
	stats := RecentStats{Count: 5, AvgAccuracy: 0.4, AvgEngagement: 0.2, LastContentType: ContentTypeAudio}
	got, applied := ApplyRules(ruleCandidates(), DefaultRules(), stats)
	if ids := itemIDs(got); !reflect.DeepEqual(ids, []string{"v2", "v5"}) {
		t.Errorf("items = %v, want [v2 v5]", ids)
	}
	if !reflect.DeepEqual(applied, []string{"struggling", "disengaged"}) {
		t.Errorf("applied = %v", applied)
	}

	// Rules that keep everything are not reported.
	_, applied = ApplyRules(ruleCandidates(), DefaultRules(), RecentStats{Count: 1, AvgAccuracy: 0.7, AvgEngagement: 0.6})
	if len(applied) != 0 {
		t.Errorf("applied = %v, want none", applied)
	}
}

func TestApplyRules_MayEmpty(t *testing.T) {
	t.Parallel()

	only := []ContentItem{item("v2", 2, 1, 60, ContentTypeVideo, ModalityVisual)}
	stats := RecentStats{Count: 5, AvgAccuracy: 0.3, AvgEngagement: 0.1, LastContentType: ContentTypeVideo}
	got, _ := ApplyRules(only, DefaultRules(), stats)
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestApplyRules_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	in := ruleCandidates()
	_, _ = ApplyRules(in, DefaultRules(), RecentStats{Count: 1, AvgAccuracy: 0.1, AvgEngagement: 0.1, LastContentType: ContentTypeVideo})
	if !reflect.DeepEqual(itemIDs(in), itemIDs(ruleCandidates())) {
		t.Errorf("input modified: %v", itemIDs(in))
	}
}

func TestCurrentSession(t *testing.T) {
	t.Parallel()

	ended := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	closed := LearningSession{ID: "closed", EndedAt: &ended}
	open := LearningSession{ID: "open"}

	tests := []struct {
		name     string
		sessions []LearningSession
		id       string
		want     string
	}{
		{"explicit id", []LearningSession{open, closed}, "closed", "closed"},
		{"unknown id", []LearningSession{open}, "missing", ""},
		{"newest open", []LearningSession{open, closed}, "", "open"},
		{"newest closed", []LearningSession{closed, open}, "", ""},
		{"no sessions", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CurrentSession(tt.sessions, tt.id)
			gotID := ""
			if got != nil {
				gotID = got.ID
			}
			if gotID != tt.want {
				t.Errorf("CurrentSession() = %q, want %q", gotID, tt.want)
			}
		})
	}
}

func TestRecentInteractions(t *testing.T) {
	t.Parallel()

	var interactions []Interaction
	for m := 1; m <= 7; m++ {
		interactions = append(interactions, interactionAt(m, ContentTypeVideo, 0.5, 0.5, 4))
	}
	sessions := []LearningSession{openSession("s-live", interactions...)}

	got := RecentInteractions(sessions, "s-live", 5)
	if len(got) != 5 {
		t.Fatalf("len = %d, want 5", len(got))
	}
	if got[0].ID != "i-7" || got[4].ID != "i-3" {
		t.Errorf("window = %s..%s, want i-7..i-3", got[0].ID, got[4].ID)
	}

	few := RecentInteractions([]LearningSession{openSession("s-live", interactions[:2]...)}, "s-live", 5)
	if len(few) != 2 {
		t.Errorf("len = %d, want 2", len(few))
	}

	if none := RecentInteractions(sessions, "other", 5); none != nil {
		t.Errorf("unknown session returned %d interactions", len(none))
	}
}

func TestRecentInteractions_TimestampTies(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	sessions := []LearningSession{openSession("s",
		Interaction{ID: "first", Timestamp: ts, ContentType: ContentTypeVideo},
		Interaction{ID: "second", Timestamp: ts, ContentType: ContentTypeAudio},
	)}

	got := RecentInteractions(sessions, "s", 5)
	if got[0].ID != "second" {
		t.Errorf("most recent = %s, want second", got[0].ID)
	}
}

func TestComputeRecentStats(t *testing.T) {
	t.Parallel()

	if _, ok := ComputeRecentStats(nil); ok {
		t.Error("expected ok=false for no interactions")
	}

	recent := []Interaction{
		{ContentType: ContentTypeAudio, Accuracy: 0.9, EngagementScore: 0.4},
		{ContentType: ContentTypeVideo, Accuracy: 0.5, EngagementScore: 0.6},
	}
	stats, ok := ComputeRecentStats(recent)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if math.Abs(stats.AvgAccuracy-0.7) > 1e-9 || math.Abs(stats.AvgEngagement-0.5) > 1e-9 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastContentType != ContentTypeAudio {
		t.Errorf("LastContentType = %s, want audio", stats.LastContentType)
	}
	if stats.Count != 2 {
		t.Errorf("Count = %d, want 2", stats.Count)
	}
}
