// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package database

import (
	"context"
	"fmt"
	"time"
)

var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS content_items (
		id                   VARCHAR PRIMARY KEY,
		topic_id             VARCHAR NOT NULL,
		title                VARCHAR NOT NULL DEFAULT '',
		content_type         VARCHAR NOT NULL CHECK (content_type IN ('video', 'audio', 'document', 'interactive')),
		difficulty_level     INTEGER NOT NULL CHECK (difficulty_level BETWEEN 1 AND 10),
		cognitive_load_level INTEGER NOT NULL CHECK (cognitive_load_level BETWEEN 1 AND 10),
		estimated_duration   INTEGER NOT NULL CHECK (estimated_duration >= 0),
		modalities           VARCHAR NOT NULL,
		content_url          VARCHAR NOT NULL DEFAULT '',
		created_at           TIMESTAMP NOT NULL,
		updated_at           TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS learning_sessions (
		id                      VARCHAR PRIMARY KEY,
		learner_id              VARCHAR NOT NULL,
		topic_id                VARCHAR NOT NULL,
		started_at              TIMESTAMP NOT NULL,
		ended_at                TIMESTAMP,
		engagement_score        DOUBLE CHECK (engagement_score BETWEEN 0 AND 1),
		cognitive_load_detected DOUBLE CHECK (cognitive_load_detected >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS learning_interactions (
		id               VARCHAR PRIMARY KEY,
		session_id       VARCHAR NOT NULL,
		content_item_id  VARCHAR NOT NULL DEFAULT '',
		content_type     VARCHAR NOT NULL DEFAULT '',
		accuracy         DOUBLE NOT NULL CHECK (accuracy BETWEEN 0 AND 1),
		engagement_score DOUBLE NOT NULL CHECK (engagement_score BETWEEN 0 AND 1),
		difficulty_level INTEGER NOT NULL DEFAULT 0 CHECK (difficulty_level BETWEEN 0 AND 10),
		occurred_at      TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_learner_topic ON learning_sessions(learner_id, topic_id, started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_interactions_session ON learning_interactions(session_id, occurred_at)`,
}

func (db *DB) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, q := range schemaQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
