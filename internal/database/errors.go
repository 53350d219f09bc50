// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package database

import (
	"errors"
	"io"
	"strings"

	"github.com/tomtom215/pathwise/internal/logging"
)

var (
	// ErrNotFound is returned when a session or item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSessionClosed is returned when writing to an ended session.
	ErrSessionClosed = errors.New("session already ended")

	// ErrConflict is returned when an insert collides with an existing ID.
	ErrConflict = errors.New("already exists")
)

func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "primary key") ||
		strings.Contains(msg, "unique constraint")
}
