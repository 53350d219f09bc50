// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

/*
Package models defines the HTTP wire types for Pathwise.

Domain types (ContentItem, LearningSession, Result and friends) live in
internal/personalize and are serialized directly. This package holds what
only exists at the HTTP edge:

  - APIResponse, Metadata and APIError: the envelope every endpoint returns
  - Request bodies with go-playground/validator tags, validated through
    internal/validation before they are converted to domain types

Success example:

	{
	  "status": "success",
	  "data": {"request_id": "...", "items": [...], "diagnostics": {...}},
	  "metadata": {"timestamp": "2026-03-01T09:00:00Z", "query_time_ms": 12}
	}

Error example:

	{
	  "status": "error",
	  "data": null,
	  "metadata": {"timestamp": "2026-03-01T09:00:00Z", "query_time_ms": 0},
	  "error": {"code": "VALIDATION_ERROR", "message": "learner_id is required",
	            "details": {"field": "learner_id", "tag": "required"}}
	}
*/
package models
