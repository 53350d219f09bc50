// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

/*
Package api is the HTTP surface of Pathwise, routed with chi.

Endpoints:

	POST /api/v1/personalized-content                          personalize
	GET  /api/v1/learners/{learnerID}/topics/{topicID}/progress progress aggregate
	GET  /api/v1/topics/{topicID}/content                      catalog listing
	GET  /api/v1/content/{itemID}                              one catalog item
	PUT  /api/v1/content/{itemID}                              catalog upsert (service role)
	POST /api/v1/sessions                                      start a session
	POST /api/v1/sessions/{sessionID}/end                      end a session
	POST /api/v1/sessions/{sessionID}/interactions             record an interaction
	GET  /health/live, /health/ready                           probes
	GET  /metrics                                              Prometheus

Every response, including errors, is a models.APIResponse envelope.

Middleware order: request ID and logging context, real IP, panic recovery
and CORS globally; rate limiting, Prometheus instrumentation and optional
bearer authentication on /api/v1.

Error mapping for the personalization endpoint:

	personalize.ErrInvalidRequest     400 VALIDATION_ERROR
	context.DeadlineExceeded          504 TIMEOUT
	personalize.ErrCatalogUnavailable 503 CATALOG_UNAVAILABLE
	personalize.ErrHistoryUnavailable 503 HISTORY_UNAVAILABLE
	anything else                     500 INTERNAL_ERROR

A profile provider failure is not an error: the engine falls back to the
default learning style and flags it in the result diagnostics.
*/
package api
