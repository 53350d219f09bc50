// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package models

import (
	"time"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the envelope returned by every HTTP endpoint.
// Data is set when Status is "success"; Error when it is "error".
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries per-response timing.
//
// QueryTimeMS is the wall time spent in the handler's store or engine call.
// Cached is set when the engine served the result from its result cache.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
	RequestID   string    `json:"request_id,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is the machine-readable error body.
//
// Codes in use:
//   - BAD_REQUEST: malformed JSON or path parameters
//   - VALIDATION_ERROR: body or request fails field validation
//   - UNAUTHORIZED / FORBIDDEN: bearer token missing, invalid or for another learner
//   - NOT_FOUND / CONFLICT: store lookups and duplicate or closed sessions
//   - CATALOG_UNAVAILABLE / HISTORY_UNAVAILABLE: a required provider failed
//   - SERVICE_UNAVAILABLE: readiness probe failed
//   - TIMEOUT: the personalization deadline elapsed
//   - DATABASE_ERROR / INTERNAL_ERROR: anything else
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
