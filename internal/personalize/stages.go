// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package personalize

import (
	"math"
	"sort"
)

// Scale conversions between the normalized profile and the integer item scales.
// These are the only places the two scales meet.
const (
	difficultyScale  = 10.0   // startingDifficulty [0,1] -> level
	loadScale        = 5.0    // cognitiveLoadTolerance [0,1] -> load units
	secondsPerHour   = 3600.0 // attentionSpan [0,1] hours -> seconds
	difficultyWindow = 2
)

// Band partitions items by difficulty for sequencing.
type Band int

const (
	BandFoundational Band = iota
	BandIntermediate
	BandAdvanced
)

// String returns the band name.
func (b Band) String() string {
	switch b {
	case BandFoundational:
		return "foundational"
	case BandIntermediate:
		return "intermediate"
	case BandAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// BandOf returns the band for a difficulty level.
func BandOf(level int) Band {
	switch {
	case level <= 3:
		return BandFoundational
	case level <= 7:
		return BandIntermediate
	default:
		return BandAdvanced
	}
}

// TargetDifficulty combines the profile's starting difficulty with the
// learner's recent level and clamps to [1, 10].
func TargetDifficulty(style *LearningStyle, progress *UserProgress) int {
	raw := style.OptimalConditions.DifficultyProgression.StartingDifficulty*difficultyScale +
		progress.CurrentDifficultyLevel
	target := int(math.Round(raw))
	if target < MinLevel {
		return MinLevel
	}
	if target > MaxLevel {
		return MaxLevel
	}
	return target
}

// FilterByDifficulty keeps items within two levels of target.
func FilterByDifficulty(items []ContentItem, target int) []ContentItem {
	return keep(items, func(item *ContentItem) bool {
		delta := item.DifficultyLevel - target
		if delta < 0 {
			delta = -delta
		}
		return delta <= difficultyWindow
	})
}

// ModalityScore is the mean preference over the item's modalities.
func ModalityScore(item *ContentItem, prefs ModalityPreferences) float64 {
	if len(item.Modalities) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range item.Modalities {
		sum += prefs.For(m)
	}
	return sum / float64(len(item.Modalities))
}

// RankByModality returns items ordered by descending modality score.
// Ties keep their input order.
func RankByModality(items []ContentItem, prefs ModalityPreferences) []ContentItem {
	type scored struct {
		item  ContentItem
		score float64
	}
	ranked := make([]scored, len(items))
	for i := range items {
		ranked[i] = scored{item: items[i], score: ModalityScore(&items[i], prefs)}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	out := make([]ContentItem, len(ranked))
	for i := range ranked {
		out[i] = ranked[i].item
	}
	return out
}

// MaxCognitiveLoad converts a tolerance in [0, 1] to load units.
func MaxCognitiveLoad(tolerance float64) float64 {
	return tolerance * loadScale
}

// FilterByCognitiveLoad drops items that would push the session past the
// learner's tolerance.
func FilterByCognitiveLoad(items []ContentItem, tolerance, currentLoad float64) []ContentItem {
	maxLoad := MaxCognitiveLoad(tolerance)
	return keep(items, func(item *ContentItem) bool {
		return float64(item.CognitiveLoadLevel)+currentLoad <= maxLoad
	})
}

// SessionBudget converts an attention span in [0, 1] hours to seconds.
func SessionBudget(attentionSpan float64) float64 {
	return attentionSpan * secondsPerHour
}

// Sequence orders items foundational, intermediate, advanced (rank order
// kept within each band) and packs them greedily into the session budget.
// An item that would overflow is skipped and the walk continues.
func Sequence(items []ContentItem, attentionSpan float64) []ContentItem {
	var bands [3][]ContentItem
	for i := range items {
		b := BandOf(items[i].DifficultyLevel)
		bands[b] = append(bands[b], items[i])
	}

	budget := SessionBudget(attentionSpan)
	total := 0.0
	out := make([]ContentItem, 0, len(items))
	for _, band := range bands {
		for i := range band {
			d := float64(band[i].EstimatedDuration)
			if total+d > budget {
				continue
			}
			out = append(out, band[i])
			total += d
		}
	}
	return out
}

// Truncate returns at most n items.
func Truncate(items []ContentItem, n int) []ContentItem {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// keep returns a new slice holding the items pred accepts, in order.
func keep(items []ContentItem, pred func(*ContentItem) bool) []ContentItem {
	out := make([]ContentItem, 0, len(items))
	for i := range items {
		if pred(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}
