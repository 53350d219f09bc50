// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

// Package metrics registers the Prometheus instrumentation for Pathwise and
// provides small helpers for recording it. Everything registers against the
// default registry via promauto and is served on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Personalization pipeline

	PersonalizationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalization_requests_total",
			Help: "Personalization calls by outcome",
		},
		[]string{"outcome"}, // ok, invalid, catalog_unavailable, history_unavailable, timeout, error
	)

	PersonalizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "personalization_duration_seconds",
			Help:    "End-to-end personalization latency",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	PersonalizationResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "personalization_result_items",
			Help:    "Number of items returned per personalization",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	PersonalizationRulesApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalization_rules_applied_total",
			Help: "Real-time adaptation rules that removed at least one item",
		},
		[]string{"rule"},
	)

	ProfileFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "personalization_profile_fallbacks_total",
			Help: "Calls served with the default learning style",
		},
	)

	ResultCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalization_result_cache_total",
			Help: "Result cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	// Providers

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_request_duration_seconds",
			Help:    "Latency of upstream provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "result"},
	)

	ProfileCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_cache_lookups_total",
			Help: "Learning-style cache lookups",
		},
		[]string{"backend", "result"}, // result: hit, miss, error
	)

	// Database

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Events

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Personalization events by publish result",
		},
		[]string{"topic", "result"}, // success, failure, discarded
	)

	// Auth

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Bearer token checks by result",
		},
		[]string{"result"}, // success, missing, invalid
	)

	// Circuit breakers

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected, canceled
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordPersonalization records one engine call. itemCount is ignored
// unless outcome is "ok".
func RecordPersonalization(outcome string, duration time.Duration, itemCount int, rules []string, fallback, cached bool) {
	PersonalizationRequests.WithLabelValues(outcome).Inc()
	PersonalizationDuration.Observe(duration.Seconds())
	if outcome != "ok" {
		return
	}
	PersonalizationResultSize.Observe(float64(itemCount))
	for _, r := range rules {
		PersonalizationRulesApplied.WithLabelValues(r).Inc()
	}
	if fallback {
		ProfileFallbacks.Inc()
	}
	if cached {
		ResultCacheLookups.WithLabelValues("hit").Inc()
	} else {
		ResultCacheLookups.WithLabelValues("miss").Inc()
	}
}

// RecordProvider records the latency of an upstream call.
func RecordProvider(provider string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ProviderDuration.WithLabelValues(provider, result).Observe(duration.Seconds())
}

// RecordProfileCache records a learning-style cache lookup.
func RecordProfileCache(backend, result string) {
	ProfileCacheLookups.WithLabelValues(backend, result).Inc()
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge up or down.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEventPublish records the outcome of one event publish.
func RecordEventPublish(topic string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordEventDiscarded counts an event dropped because no transport is
// configured.
func RecordEventDiscarded(topic string) {
	EventsPublished.WithLabelValues(topic, "discarded").Inc()
}

// RecordAuth records one bearer token check.
func RecordAuth(result string) {
	AuthAttempts.WithLabelValues(result).Inc()
}
