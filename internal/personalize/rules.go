// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package personalize

import "sort"

// RecentStats summarizes the latest interactions of the current session.
type RecentStats struct {
	Count           int         `json:"count"`
	AvgAccuracy     float64     `json:"avg_accuracy"`
	AvgEngagement   float64     `json:"avg_engagement"`
	LastContentType ContentType `json:"last_content_type,omitempty"`
}

// RuleFunc narrows the candidate list. It must only remove items and must
// not modify its input.
type RuleFunc func(candidates []ContentItem, stats RecentStats) []ContentItem

// Rule is a named real-time adaptation. Rules run left to right.
type Rule struct {
	Name  string
	Apply RuleFunc
}

// Thresholds for the default rules.
const (
	strugglingAccuracy = 0.6
	easierMaxLevel     = 5
	disengagedLevel    = 0.5
	excellingAccuracy  = 0.8
	excellingEngage    = 0.7
	harderMinLevel     = 4
)

// DefaultRules returns the standard rule chain in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "struggling", Apply: StrugglingRule},
		{Name: "disengaged", Apply: DisengagedRule},
		{Name: "excelling", Apply: ExcellingRule},
	}
}

// StrugglingRule drops items above difficulty 5 when accuracy is below 0.6.
func StrugglingRule(candidates []ContentItem, stats RecentStats) []ContentItem {
	if stats.AvgAccuracy >= strugglingAccuracy {
		return candidates
	}
	return keep(candidates, func(item *ContentItem) bool {
		return item.DifficultyLevel <= easierMaxLevel
	})
}

// DisengagedRule switches away from the most recent content type when
// engagement is below 0.5.
func DisengagedRule(candidates []ContentItem, stats RecentStats) []ContentItem {
	if stats.AvgEngagement >= disengagedLevel {
		return candidates
	}
	return keep(candidates, func(item *ContentItem) bool {
		return item.ContentType != stats.LastContentType
	})
}

// ExcellingRule drops items below difficulty 4 when accuracy is above 0.8
// and engagement above 0.7.
func ExcellingRule(candidates []ContentItem, stats RecentStats) []ContentItem {
	if stats.AvgAccuracy <= excellingAccuracy || stats.AvgEngagement <= excellingEngage {
		return candidates
	}
	return keep(candidates, func(item *ContentItem) bool {
		return item.DifficultyLevel >= harderMinLevel
	})
}

// ApplyRules runs rules in order and returns the narrowed list together with
// the names of rules that removed at least one item.
func ApplyRules(candidates []ContentItem, rules []Rule, stats RecentStats) ([]ContentItem, []string) {
	var applied []string
	for _, r := range rules {
		before := len(candidates)
		candidates = r.Apply(candidates, stats)
		if len(candidates) < before {
			applied = append(applied, r.Name)
		}
	}
	return candidates, applied
}

// CurrentSession picks the session that step 7 treats as live. A non-empty
// sessionID must match exactly; otherwise the newest session counts only
// while it is still open.
func CurrentSession(sessions []LearningSession, sessionID string) *LearningSession {
	if sessionID != "" {
		for i := range sessions {
			if sessions[i].ID == sessionID {
				return &sessions[i]
			}
		}
		return nil
	}
	if len(sessions) > 0 && sessions[0].IsOpen() {
		return &sessions[0]
	}
	return nil
}

// RecentInteractions returns up to window interactions from the current
// session, newest first. Equal timestamps keep recording order, later first.
func RecentInteractions(sessions []LearningSession, sessionID string, window int) []Interaction {
	current := CurrentSession(sessions, sessionID)
	if current == nil || len(current.Interactions) == 0 || window <= 0 {
		return nil
	}

	recent := make([]Interaction, len(current.Interactions))
	for i := range current.Interactions {
		recent[i] = current.Interactions[len(current.Interactions)-1-i]
	}
	sort.SliceStable(recent, func(a, b int) bool {
		return recent[a].Timestamp.After(recent[b].Timestamp)
	})
	if len(recent) > window {
		recent = recent[:window]
	}
	return recent
}

// ComputeRecentStats averages accuracy and engagement over recent, which
// must be ordered newest first. ok is false when recent is empty.
func ComputeRecentStats(recent []Interaction) (stats RecentStats, ok bool) {
	if len(recent) == 0 {
		return RecentStats{}, false
	}
	var acc, eng float64
	for i := range recent {
		acc += recent[i].Accuracy
		eng += recent[i].EngagementScore
	}
	n := float64(len(recent))
	return RecentStats{
		Count:           len(recent),
		AvgAccuracy:     acc / n,
		AvgEngagement:   eng / n,
		LastContentType: recent[0].ContentType,
	}, true
}
