// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

/*
Package personalize selects and orders learning content for a learner.

Given a learner, a topic and the live session state, the Engine picks a
bounded list of content items whose difficulty, modality and cognitive
load fit the learner's profile and recent performance.

# Pipeline

Each call runs the same fixed sequence:

 1. Fetch the learning style, the topic catalog and the recent session
    history concurrently. A missing or invalid learning style is replaced
    by DefaultLearningStyle; catalog and history failures are fatal.
 2. Derive a UserProgress summary (AggregateProgress).
 3. Compute the target difficulty and keep items within two levels of it.
 4. Rank by modality match (stable, descending).
 5. Drop items that exceed the learner's cognitive-load tolerance given
    the load already accumulated in the session.
 6. Sequence into foundational, intermediate and advanced bands and pack
    greedily into the attention-span budget.
 7. Narrow with the real-time rules driven by the current session's
    latest interactions.
 8. Truncate.

The stages are exported so they can be tested and reused on their own.

# Scales

LearningStyle fields are always in [0, 1]. Item difficulty and cognitive
load are integers in [1, 10]. The conversions (x10 for difficulty, x5 for
load, x3600 for the time budget) live in stages.go only.

# Providers

The engine depends on three interfaces: ProfileProvider, CatalogProvider
and HistoryProvider. Production implementations live in internal/aiengine,
internal/profilecache and internal/database; tests use in-memory fakes.

# Errors

Malformed requests return a *ValidationError before any provider is
called. Catalog and history failures return a *ProviderError that matches
ErrCatalogUnavailable or ErrHistoryUnavailable. An empty list is a
successful result.

# Usage

	engine, err := personalize.NewEngine(personalize.DefaultConfig(), logger, profiles, store, store)
	if err != nil {
	    return err
	}

	res, err := engine.GetPersonalizedContent(ctx, personalize.Request{
	    LearnerID: "learner-42",
	    TopicID:   "fractions",
	    Session:   personalize.SessionContext{SessionID: sid, CurrentCognitiveLoad: 1.5},
	})
*/
package personalize
