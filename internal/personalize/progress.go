// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package personalize

import "sort"

// Progress defaults used when history is missing.
const (
	defaultAverageAccuracy  = 0.5
	defaultDifficultyLevel  = 3.0
	defaultSessionLoad      = 3.0
	engagementWindow        = 3
	minSessionsForTrend     = 2
	unsetInteractionDiffLvl = 0
)

// AggregateProgress derives a UserProgress from sessions ordered newest first.
// It is a pure function of its input.
func AggregateProgress(sessions []LearningSession) UserProgress {
	progress := UserProgress{
		AverageAccuracy:        defaultAverageAccuracy,
		CurrentDifficultyLevel: defaultDifficultyLevel,
		CognitiveLoadHistory:   make([]float64, 0, len(sessions)),
		PreferredContentTypes:  []ContentType{},
		SessionsConsidered:     len(sessions),
	}
	if len(sessions) == 0 {
		return progress
	}

	progress.AverageAccuracy = averageAccuracy(sessions)
	progress.CurrentDifficultyLevel = currentDifficulty(&sessions[0])
	progress.EngagementTrend = engagementTrend(sessions)

	for i := range sessions {
		load := defaultSessionLoad
		if sessions[i].CognitiveLoadDetected != nil {
			load = *sessions[i].CognitiveLoadDetected
		}
		progress.CognitiveLoadHistory = append(progress.CognitiveLoadHistory, load)
	}

	progress.PreferredContentTypes = preferredContentTypes(sessions)
	return progress
}

// averageAccuracy is the mean of per-session mean accuracy. An empty
// session counts as a single interaction of accuracy 0.
func averageAccuracy(sessions []LearningSession) float64 {
	total := 0.0
	for i := range sessions {
		interactions := sessions[i].Interactions
		if len(interactions) == 0 {
			continue
		}
		sum := 0.0
		for j := range interactions {
			sum += interactions[j].Accuracy
		}
		total += sum / float64(len(interactions))
	}
	return total / float64(len(sessions))
}

// currentDifficulty averages the newest session's interaction levels. A
// session with no interactions yet contributes no offset.
func currentDifficulty(newest *LearningSession) float64 {
	if len(newest.Interactions) == 0 {
		return 0
	}
	sum := 0.0
	for i := range newest.Interactions {
		level := newest.Interactions[i].DifficultyLevel
		if level == unsetInteractionDiffLvl {
			sum += defaultDifficultyLevel
			continue
		}
		sum += float64(level)
	}
	return sum / float64(len(newest.Interactions))
}

// engagementTrend compares the newest three sessions against the three
// before them. Each window is divided by its full width, so short windows
// pull toward zero.
func engagementTrend(sessions []LearningSession) float64 {
	if len(sessions) < minSessionsForTrend {
		return 0
	}
	recentEnd := min(engagementWindow, len(sessions))
	olderEnd := min(2*engagementWindow, len(sessions))
	return windowEngagement(sessions[:recentEnd]) - windowEngagement(sessions[recentEnd:olderEnd])
}

// windowEngagement sums recorded session scores over engagementWindow.
// A session without a score counts as 0.
func windowEngagement(sessions []LearningSession) float64 {
	sum := 0.0
	for i := range sessions {
		if sessions[i].EngagementScore != nil {
			sum += *sessions[i].EngagementScore
		}
	}
	return sum / engagementWindow
}

// preferredContentTypes ranks content types by interaction count, ties by name.
func preferredContentTypes(sessions []LearningSession) []ContentType {
	counts := make(map[ContentType]int)
	for i := range sessions {
		for j := range sessions[i].Interactions {
			ct := sessions[i].Interactions[j].ContentType
			if ct == "" {
				continue
			}
			counts[ct]++
		}
	}

	types := make([]ContentType, 0, len(counts))
	for ct := range counts {
		types = append(types, ct)
	}
	sort.Slice(types, func(a, b int) bool {
		if counts[types[a]] != counts[types[b]] {
			return counts[types[a]] > counts[types[b]]
		}
		return types[a] < types[b]
	})
	return types
}
