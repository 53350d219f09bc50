// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/pathwise/internal/metrics"
	"github.com/tomtom215/pathwise/internal/personalize"
)

const sessionColumns = `id, learner_id, topic_id, started_at, ended_at, engagement_score, cognitive_load_detected`

// RecentSessions returns up to limit sessions for the learner and topic,
// newest first, each with its interactions oldest first.
func (db *DB) RecentSessions(ctx context.Context, learnerID, topicID string, limit int) (sessions []personalize.LearningSession, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("SELECT", "learning_sessions", time.Since(start), err) }()

	if limit <= 0 {
		return []personalize.LearningSession{}, nil
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + sessionColumns + `
	FROM learning_sessions
	WHERE learner_id = ? AND topic_id = ?
	ORDER BY started_at DESC, id DESC
	LIMIT ?`

	rows, err := db.conn.QueryContext(ctx, query, learnerID, topicID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	sessions = make([]personalize.LearningSession, 0, limit)
	index := make(map[string]int, limit)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			closeWithLog(rows, "session rows")
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		index[s.ID] = len(sessions)
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		closeWithLog(rows, "session rows")
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}
	closeWithLog(rows, "session rows")

	if len(sessions) == 0 {
		return sessions, nil
	}

	ids := make([]any, len(sessions))
	for i := range sessions {
		ids[i] = sessions[i].ID
	}
	interactions, err := db.interactionsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range interactions {
		pos, ok := index[interactions[i].SessionID]
		if !ok {
			continue
		}
		sessions[pos].Interactions = append(sessions[pos].Interactions, interactions[i])
	}
	return sessions, nil
}

func (db *DB) interactionsFor(ctx context.Context, sessionIDs []any) ([]personalize.Interaction, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(sessionIDs)), ", ")
	query := `SELECT id, session_id, content_item_id, content_type, accuracy,
		engagement_score, difficulty_level, occurred_at
	FROM learning_interactions
	WHERE session_id IN (` + placeholders + `)
	ORDER BY occurred_at ASC, id ASC`

	rows, err := db.conn.QueryContext(ctx, query, sessionIDs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interactions: %w", err)
	}
	defer closeWithLog(rows, "interaction rows")

	var out []personalize.Interaction
	for rows.Next() {
		var (
			in          personalize.Interaction
			contentType string
		)
		if err := rows.Scan(&in.ID, &in.SessionID, &in.ContentItemID, &contentType, &in.Accuracy,
			&in.EngagementScore, &in.DifficultyLevel, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		in.ContentType = personalize.ContentType(contentType)
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interactions: %w", err)
	}
	return out, nil
}

// GetSession returns a session with its interactions, or ErrNotFound.
func (db *DB) GetSession(ctx context.Context, id string) (*personalize.LearningSession, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	s, err := db.getSessionRow(ctx, id)
	if err != nil {
		return nil, err
	}
	interactions, err := db.interactionsFor(ctx, []any{id})
	if err != nil {
		return nil, err
	}
	s.Interactions = interactions
	return s, nil
}

func (db *DB) getSessionRow(ctx context.Context, id string) (*personalize.LearningSession, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM learning_sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session %s: %w", id, err)
	}
	return s, nil
}

// CreateSession starts a new open session. An empty ID gets a UUID and a
// zero StartedAt becomes now. The stored session is returned.
func (db *DB) CreateSession(ctx context.Context, s *personalize.LearningSession) (created *personalize.LearningSession, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("INSERT", "learning_sessions", time.Since(start), err) }()

	out := *s
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.StartedAt.IsZero() {
		out.StartedAt = db.now()
	}
	out.StartedAt = out.StartedAt.UTC()
	out.EndedAt = nil
	out.EngagementScore = nil
	out.Interactions = []personalize.Interaction{}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO learning_sessions (id, learner_id, topic_id, started_at, cognitive_load_detected)
		VALUES (?, ?, ?, ?, ?)`,
		out.ID, out.LearnerID, out.TopicID, out.StartedAt, nullFloat(out.CognitiveLoadDetected),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("session %s: %w", out.ID, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &out, nil
}

// EndSession closes an open session. When engagement is nil the mean
// interaction engagement is stored instead (nothing if there are none).
// A nil load leaves the detected load unchanged.
func (db *DB) EndSession(ctx context.Context, id string, engagement, load *float64) (ended *personalize.LearningSession, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("UPDATE", "learning_sessions", time.Since(start), err) }()

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	s, err := db.getSessionRow(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.IsOpen() {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionClosed)
	}

	if engagement == nil {
		var mean sql.NullFloat64
		if err := db.conn.QueryRowContext(ctx,
			`SELECT AVG(engagement_score) FROM learning_interactions WHERE session_id = ?`, id,
		).Scan(&mean); err != nil {
			return nil, fmt.Errorf("failed to average engagement for session %s: %w", id, err)
		}
		if mean.Valid {
			engagement = &mean.Float64
		}
	}
	if load == nil {
		load = s.CognitiveLoadDetected
	}

	endedAt := db.now()
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE learning_sessions
		SET ended_at = ?, engagement_score = ?, cognitive_load_detected = ?
		WHERE id = ? AND ended_at IS NULL`,
		endedAt, nullFloat(engagement), nullFloat(load), id,
	); err != nil {
		return nil, fmt.Errorf("failed to end session %s: %w", id, err)
	}

	s.EndedAt = &endedAt
	s.EngagementScore = engagement
	s.CognitiveLoadDetected = load
	s.Interactions = nil
	return s, nil
}

// RecordInteraction appends an interaction to an open session. An empty ID
// gets a UUID and a zero Timestamp becomes now.
func (db *DB) RecordInteraction(ctx context.Context, in *personalize.Interaction) (recorded *personalize.Interaction, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("INSERT", "learning_interactions", time.Since(start), err) }()

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	s, err := db.getSessionRow(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if !s.IsOpen() {
		return nil, fmt.Errorf("session %s: %w", in.SessionID, ErrSessionClosed)
	}

	out := *in
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = db.now()
	}
	out.Timestamp = out.Timestamp.UTC()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO learning_interactions (
			id, session_id, content_item_id, content_type, accuracy,
			engagement_score, difficulty_level, occurred_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		out.ID, out.SessionID, out.ContentItemID, string(out.ContentType), out.Accuracy,
		out.EngagementScore, out.DifficultyLevel, out.Timestamp,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("interaction %s: %w", out.ID, ErrConflict)
		}
		return nil, fmt.Errorf("failed to record interaction: %w", err)
	}
	return &out, nil
}

func scanSession(row rowScanner) (*personalize.LearningSession, error) {
	var (
		s          personalize.LearningSession
		endedAt    sql.NullTime
		engagement sql.NullFloat64
		load       sql.NullFloat64
	)
	if err := row.Scan(&s.ID, &s.LearnerID, &s.TopicID, &s.StartedAt, &endedAt, &engagement, &load); err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	if engagement.Valid {
		v := engagement.Float64
		s.EngagementScore = &v
	}
	if load.Valid {
		v := load.Float64
		s.CognitiveLoadDetected = &v
	}
	s.Interactions = []personalize.Interaction{}
	return &s, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
