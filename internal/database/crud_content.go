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

	"github.com/tomtom215/pathwise/internal/metrics"
	"github.com/tomtom215/pathwise/internal/personalize"
)

const contentColumns = `id, topic_id, title, content_type, difficulty_level,
	cognitive_load_level, estimated_duration, modalities, content_url`

// ListContent returns every item for topicID ordered by difficulty then id.
// An unknown topic yields an empty, non-nil slice.
func (db *DB) ListContent(ctx context.Context, topicID string) (items []personalize.ContentItem, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("SELECT", "content_items", time.Since(start), err) }()

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + contentColumns + `
	FROM content_items
	WHERE topic_id = ?
	ORDER BY difficulty_level ASC, id ASC`

	rows, err := db.conn.QueryContext(ctx, query, topicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list content for topic %s: %w", topicID, err)
	}
	defer closeWithLog(rows, "content rows")

	items = make([]personalize.ContentItem, 0)
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan content item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating content items: %w", err)
	}
	return items, nil
}

// GetContentItem returns one item or ErrNotFound.
func (db *DB) GetContentItem(ctx context.Context, id string) (*personalize.ContentItem, error) {
	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+contentColumns+` FROM content_items WHERE id = ?`, id)
	item, err := scanContentItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content item %s: %w", id, err)
	}
	return item, nil
}

// UpsertContentItem inserts or replaces a catalog item. It reports whether
// the item was newly created. The item must already be valid.
func (db *DB) UpsertContentItem(ctx context.Context, item *personalize.ContentItem) (created bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("UPSERT", "content_items", time.Since(start), err) }()

	if err := item.Validate(); err != nil {
		return false, err
	}

	ctx, cancel := db.queryContext(ctx)
	defer cancel()

	var exists bool
	if err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM content_items WHERE id = ?)`, item.ID,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check content item %s: %w", item.ID, err)
	}

	now := db.now()
	query := `INSERT INTO content_items (
		id, topic_id, title, content_type, difficulty_level,
		cognitive_load_level, estimated_duration, modalities, content_url,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		topic_id = excluded.topic_id,
		title = excluded.title,
		content_type = excluded.content_type,
		difficulty_level = excluded.difficulty_level,
		cognitive_load_level = excluded.cognitive_load_level,
		estimated_duration = excluded.estimated_duration,
		modalities = excluded.modalities,
		content_url = excluded.content_url,
		updated_at = excluded.updated_at`

	_, err = db.conn.ExecContext(ctx, query,
		item.ID, item.TopicID, item.Title, string(item.ContentType), item.DifficultyLevel,
		item.CognitiveLoadLevel, item.EstimatedDuration, joinModalities(item.Modalities), item.ContentURL,
		now, now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert content item %s: %w", item.ID, err)
	}
	return !exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContentItem(row rowScanner) (*personalize.ContentItem, error) {
	var (
		item        personalize.ContentItem
		contentType string
		modalities  string
	)
	if err := row.Scan(
		&item.ID, &item.TopicID, &item.Title, &contentType, &item.DifficultyLevel,
		&item.CognitiveLoadLevel, &item.EstimatedDuration, &modalities, &item.ContentURL,
	); err != nil {
		return nil, err
	}
	item.ContentType = personalize.ContentType(contentType)
	item.Modalities = splitModalities(modalities)
	return &item, nil
}

// Modalities are stored as a comma-separated list in declaration order.
func joinModalities(ms []personalize.Modality) string {
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = string(m)
	}
	return strings.Join(parts, ",")
}

func splitModalities(s string) []personalize.Modality {
	if s == "" {
		return []personalize.Modality{}
	}
	parts := strings.Split(s, ",")
	out := make([]personalize.Modality, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, personalize.Modality(p))
		}
	}
	return out
}
