// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package personalize

import (
	"math"
	"reflect"
	"testing"
)

func TestTargetDifficulty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		starting float64
		current  float64
		want     int
	}{
		{"default profile no history", 0.3, 3, 6},
		{"rounds half up", 0.25, 3, 6},
		{"rounds down", 0.2, 3.4, 5},
		{"clamps high", 1.0, 7, 10},
		{"clamps low", 0, 0, 1},
		{"fractional progress", 0.1, 4.6, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			style := DefaultLearningStyle()
			style.OptimalConditions.DifficultyProgression.StartingDifficulty = tt.starting
			progress := UserProgress{CurrentDifficultyLevel: tt.current}
			if got := TargetDifficulty(&style, &progress); got != tt.want {
				t.Errorf("TargetDifficulty() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFilterByDifficulty(t *testing.T) {
	t.Parallel()

	var items []ContentItem
	for d := 1; d <= 10; d++ {
		items = append(items, item(string(rune('a'+d-1)), d, 1, 60, ContentTypeVideo, ModalityVisual))
	}

	got := FilterByDifficulty(items, 5)
	var levels []int
	for _, it := range got {
		levels = append(levels, it.DifficultyLevel)
	}
	if want := []int{3, 4, 5, 6, 7}; !reflect.DeepEqual(levels, want) {
		t.Errorf("levels = %v, want %v", levels, want)
	}

	edge := FilterByDifficulty(items, 1)
	if len(edge) != 3 {
		t.Errorf("target 1 kept %d items, want 3", len(edge))
	}
}

func TestModalityScore(t *testing.T) {
	t.Parallel()

	prefs := ModalityPreferences{Visual: 0.8, Auditory: 0.1, Kinesthetic: 0.4}
	tests := []struct {
		name       string
		modalities []Modality
		want       float64
	}{
		{"visual", []Modality{ModalityVisual}, 0.8},
		{"visual auditory", []Modality{ModalityVisual, ModalityAuditory}, 0.45},
		{"all", []Modality{ModalityVisual, ModalityAuditory, ModalityKinesthetic}, 1.3 / 3},
		{"none", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			it := ContentItem{Modalities: tt.modalities}
			if got := ModalityScore(&it, prefs); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ModalityScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRankByModality_StableAndMonotonic(t *testing.T) {
	t.Parallel()

	prefs := ModalityPreferences{Visual: 0.8, Auditory: 0.1, Kinesthetic: 0.5}
	items := []ContentItem{
		item("a1", 1, 1, 60, ContentTypeAudio, ModalityAuditory),
		item("v1", 2, 1, 60, ContentTypeVideo, ModalityVisual),
		item("k1", 3, 1, 60, ContentTypeInteractive, ModalityKinesthetic),
		item("v2", 4, 1, 60, ContentTypeVideo, ModalityVisual),
		item("a2", 5, 1, 60, ContentTypeAudio, ModalityAuditory),
	}

	got := RankByModality(items, prefs)
	want := []string{"v1", "v2", "k1", "a1", "a2"}
	if ids := itemIDs(got); !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}

	for i := 1; i < len(got); i++ {
		if ModalityScore(&got[i-1], prefs) < ModalityScore(&got[i], prefs) {
			t.Errorf("score at %d below score at %d", i-1, i)
		}
	}

	if items[0].ID != "a1" {
		t.Error("input slice was reordered")
	}
}

func TestFilterByCognitiveLoad(t *testing.T) {
	t.Parallel()

	items := []ContentItem{
		item("l1", 5, 1, 60, ContentTypeVideo, ModalityVisual),
		item("l2", 5, 2, 60, ContentTypeVideo, ModalityVisual),
		item("l3", 5, 3, 60, ContentTypeVideo, ModalityVisual),
	}

	tests := []struct {
		name      string
		tolerance float64
		current   float64
		want      []string
	}{
		{"tolerance 0.5 fresh session", 0.5, 0, []string{"l1", "l2"}},
		{"exact boundary kept", 1.0, 2, []string{"l1", "l2", "l3"}},
		{"accumulated load", 0.5, 1.5, []string{"l1"}},
		{"saturated", 0.5, 2.5, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := itemIDs(FilterByCognitiveLoad(items, tt.tolerance, tt.current))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("kept = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBandOf(t *testing.T) {
	t.Parallel()

	want := map[int]Band{
		1: BandFoundational, 3: BandFoundational,
		4: BandIntermediate, 7: BandIntermediate,
		8: BandAdvanced, 10: BandAdvanced,
	}
	for level, band := range want {
		if got := BandOf(level); got != band {
			t.Errorf("BandOf(%d) = %s, want %s", level, got, band)
		}
	}
}

func TestSequence(t *testing.T) {
	t.Parallel()

	t.Run("band order with rank kept inside bands", func(t *testing.T) {
		t.Parallel()
		ranked := []ContentItem{
			item("adv", 9, 1, 100, ContentTypeVideo, ModalityVisual),
			item("int-a", 6, 1, 100, ContentTypeVideo, ModalityVisual),
			item("fnd", 2, 1, 100, ContentTypeVideo, ModalityVisual),
			item("int-b", 4, 1, 100, ContentTypeVideo, ModalityVisual),
		}
		got := itemIDs(Sequence(ranked, 1))
		want := []string{"fnd", "int-a", "int-b", "adv"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("sequence = %v, want %v", got, want)
		}
	})

	t.Run("overflow is skipped and walk continues", func(t *testing.T) {
		t.Parallel()
		// budget = 0.25 * 3600 = 900s
		ranked := []ContentItem{
			item("f1", 1, 1, 600, ContentTypeVideo, ModalityVisual),
			item("f2", 2, 1, 400, ContentTypeVideo, ModalityVisual),
			item("i1", 5, 1, 300, ContentTypeVideo, ModalityVisual),
			item("i2", 6, 1, 100, ContentTypeVideo, ModalityVisual),
		}
		got := itemIDs(Sequence(ranked, 0.25))
		want := []string{"f1", "i1"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("sequence = %v, want %v", got, want)
		}
	})

	t.Run("exact fit", func(t *testing.T) {
		t.Parallel()
		ranked := []ContentItem{
			item("a", 1, 1, 900, ContentTypeVideo, ModalityVisual),
			item("b", 2, 1, 900, ContentTypeVideo, ModalityVisual),
		}
		if got := Sequence(ranked, 0.5); len(got) != 2 {
			t.Errorf("len = %d, want 2", len(got))
		}
	})

	t.Run("zero attention span keeps zero-length items only", func(t *testing.T) {
		t.Parallel()
		ranked := []ContentItem{
			item("long", 1, 1, 60, ContentTypeVideo, ModalityVisual),
			item("instant", 1, 1, 0, ContentTypeVideo, ModalityVisual),
		}
		if got := itemIDs(Sequence(ranked, 0)); !reflect.DeepEqual(got, []string{"instant"}) {
			t.Errorf("sequence = %v, want [instant]", got)
		}
	})
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	items := make([]ContentItem, 12)
	if got := Truncate(items, 10); len(got) != 10 {
		t.Errorf("len = %d, want 10", len(got))
	}
	if got := Truncate(items[:3], 10); len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}
