// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package personalize

import (
	"hash/fnv"
	"strconv"
)

// ResultCache stores computed results. internal/cache.Cacher satisfies it.
type ResultCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
}

// CacheKey identifies a result by learner, topic, the session snapshot and
// the recent-interaction snapshot. Any change to the live session or a new
// interaction produces a different key.
func CacheKey(req *Request, recent []Interaction) string {
	h := fnv.New64a()
	write := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}

	write(req.LearnerID)
	write(req.TopicID)
	write(req.Session.SessionID)
	write(strconv.FormatFloat(req.Session.CurrentCognitiveLoad, 'g', -1, 64))
	for i := range recent {
		write(recent[i].ID)
		write(strconv.FormatInt(recent[i].Timestamp.UnixNano(), 10))
		write(string(recent[i].ContentType))
		write(strconv.FormatFloat(recent[i].Accuracy, 'g', -1, 64))
		write(strconv.FormatFloat(recent[i].EngagementScore, 'g', -1, 64))
	}

	return "personalize:" + req.LearnerID + ":" + req.TopicID + ":" + strconv.FormatUint(h.Sum64(), 16)
}
