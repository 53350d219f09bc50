// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func getCounterValue(counter prometheus.Counter) float64 {
	var m io_prometheus_client.Metric
	if err := counter.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getHistogramCount(h prometheus.Observer) uint64 {
	metric, ok := h.(prometheus.Metric)
	if !ok {
		return 0
	}
	var m io_prometheus_client.Metric
	if err := metric.Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordPersonalization_OK(t *testing.T) {
	okBefore := getCounterValue(PersonalizationRequests.WithLabelValues("ok"))
	fallbackBefore := getCounterValue(ProfileFallbacks)
	ruleBefore := getCounterValue(PersonalizationRulesApplied.WithLabelValues("struggling"))
	hitBefore := getCounterValue(ResultCacheLookups.WithLabelValues("hit"))
	sizeBefore := getHistogramCount(PersonalizationResultSize)

	RecordPersonalization("ok", 20*time.Millisecond, 3, []string{"struggling"}, true, true)

	if got := getCounterValue(PersonalizationRequests.WithLabelValues("ok")); got != okBefore+1 {
		t.Errorf("ok requests = %v, want %v", got, okBefore+1)
	}
	if got := getCounterValue(ProfileFallbacks); got != fallbackBefore+1 {
		t.Errorf("fallbacks = %v, want %v", got, fallbackBefore+1)
	}
	if got := getCounterValue(PersonalizationRulesApplied.WithLabelValues("struggling")); got != ruleBefore+1 {
		t.Errorf("rule counter = %v, want %v", got, ruleBefore+1)
	}
	if got := getCounterValue(ResultCacheLookups.WithLabelValues("hit")); got != hitBefore+1 {
		t.Errorf("cache hits = %v, want %v", got, hitBefore+1)
	}
	if got := getHistogramCount(PersonalizationResultSize); got != sizeBefore+1 {
		t.Errorf("result size samples = %d, want %d", got, sizeBefore+1)
	}
}

func TestRecordPersonalization_FailureSkipsResultMetrics(t *testing.T) {
	sizeBefore := getHistogramCount(PersonalizationResultSize)
	fallbackBefore := getCounterValue(ProfileFallbacks)

	RecordPersonalization("catalog_unavailable", time.Millisecond, 0, nil, true, false)

	if got := getHistogramCount(PersonalizationResultSize); got != sizeBefore {
		t.Errorf("failed call should not observe result size")
	}
	if got := getCounterValue(ProfileFallbacks); got != fallbackBefore {
		t.Errorf("failed call should not count a fallback")
	}
}

func TestRecordDBQuery(t *testing.T) {
	before := getCounterValue(DBQueryErrors.WithLabelValues("SELECT", "content_items"))

	RecordDBQuery("SELECT", "content_items", 5*time.Millisecond, nil)
	RecordDBQuery("SELECT", "content_items", 5*time.Millisecond, errors.New("boom"))

	if got := getCounterValue(DBQueryErrors.WithLabelValues("SELECT", "content_items")); got != before+1 {
		t.Errorf("errors = %v, want %v", got, before+1)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	before := getCounterValue(APIRequestsTotal.WithLabelValues("POST", "/api/v1/personalized-content", "200"))
	RecordAPIRequest("POST", "/api/v1/personalized-content", 200, 30*time.Millisecond)
	if got := getCounterValue(APIRequestsTotal.WithLabelValues("POST", "/api/v1/personalized-content", "200")); got != before+1 {
		t.Errorf("api requests = %v, want %v", got, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("active = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active = %v, want %v", got, before)
	}
}

func TestRecordProviderAndEvents(t *testing.T) {
	failBefore := getCounterValue(EventsPublished.WithLabelValues("content.personalized", "failure"))

	RecordProvider("profile", 10*time.Millisecond, errors.New("timeout"))
	RecordProfileCache("memory", "hit")
	RecordEventPublish("content.personalized", errors.New("nats down"))

	if got := getCounterValue(EventsPublished.WithLabelValues("content.personalized", "failure")); got != failBefore+1 {
		t.Errorf("event failures = %v, want %v", got, failBefore+1)
	}
	if got := testutil.ToFloat64(ProfileCacheLookups.WithLabelValues("memory", "hit")); got < 1 {
		t.Errorf("profile cache hits = %v", got)
	}
}

func TestRecordAuth(t *testing.T) {
	before := getCounterValue(AuthAttempts.WithLabelValues("invalid"))
	RecordAuth("invalid")
	if got := getCounterValue(AuthAttempts.WithLabelValues("invalid")); got != before+1 {
		t.Errorf("auth invalid = %v, want %v", got, before+1)
	}
}

func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/health/live", 200, time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Logf("lint: %s: %s", p.Metric, p.Text)
	}
}
