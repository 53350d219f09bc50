// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

/*
Package aiengine is the HTTP client for the AI engine's learning-style
endpoint. It implements personalize.ProfileProvider.

Resilience:
  - HTTP 429 and 503 are retried with exponential backoff, honoring
    Retry-After when it carries a number of seconds.
  - Every lookup runs through a gobreaker circuit breaker that opens when
    the failure ratio crosses the configured threshold.
  - A 404 or a success:false body is ErrProfileNotFound and does not count
    against the breaker.
  - A lookup cut short by the caller's context is excluded from the
    breaker counts.

The engine treats every error from this package as "use the default
style", so callers never see these errors directly.
*/
package aiengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pathwise/internal/config"
	"github.com/tomtom215/pathwise/internal/metrics"
	"github.com/tomtom215/pathwise/internal/personalize"
)

// maxErrorBodySize bounds how much of an error body ends up in a message.
const maxErrorBodySize = 4 * 1024

var (
	// ErrProfileNotFound means the engine has no profile for the learner.
	ErrProfileNotFound = errors.New("learning style not found")

	// ErrInvalidProfile means the engine returned values outside [0, 1].
	ErrInvalidProfile = errors.New("invalid learning style")
)

// StatusError is a non-2xx response that was not retried away.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ai engine returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("ai engine returned status %d: %s", e.StatusCode, e.Body)
}

// learningStyleResponse mirrors GET /learning-style/{id}.
type learningStyleResponse struct {
	Success       bool                       `json:"success"`
	LearningStyle *personalize.LearningStyle `json:"learning_style"`
	Message       string                     `json:"message,omitempty"`
}

// Client talks to the AI engine.
type Client struct {
	baseURL        string
	client         *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
	breaker        *breaker
}

var _ personalize.ProfileProvider = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg *config.AIEngineConfig) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		client:         &http.Client{Timeout: cfg.Timeout},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: 200 * time.Millisecond,
		breaker:        newBreaker("ai-engine", cfg),
	}
}

// GetLearningStyle fetches and validates the learner's profile.
func (c *Client) GetLearningStyle(ctx context.Context, learnerID string) (style *personalize.LearningStyle, err error) {
	start := time.Now()
	defer func() { metrics.RecordProvider("profile", time.Since(start), err) }()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return c.breaker.execute(func() (*personalize.LearningStyle, error) {
		style, err := c.fetch(ctx, learnerID)
		if err != nil && ctx.Err() != nil {
			return nil, &callerDoneError{err: err}
		}
		return style, err
	})
}

func (c *Client) fetch(ctx context.Context, learnerID string) (*personalize.LearningStyle, error) {
	reqURL := c.baseURL + "/learning-style/" + url.PathEscape(learnerID)

	resp, err := c.doWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("learner %s: %w", learnerID, ErrProfileNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: readBodyForError(resp.Body)}
	}

	var body learningStyleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode learning style: %w", err)
	}
	if !body.Success || body.LearningStyle == nil {
		return nil, fmt.Errorf("learner %s: %w", learnerID, ErrProfileNotFound)
	}
	if err := body.LearningStyle.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return body.LearningStyle, nil
}

// doWithRetry retries 429 and 503 up to maxRetries times.
func (c *Client) doWithRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("ai engine request failed: %w", err)
		}

		if !retryable(resp.StatusCode) || attempt >= c.maxRetries {
			return resp, nil
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if d, ok := parseRetryAfter(resp.Header.Get("Retry-After")); ok {
			delay = d
		}
		_ = resp.Body.Close()

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable
}

// parseRetryAfter accepts the delta-seconds form only.
func parseRetryAfter(v string) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	return strings.TrimSpace(string(body))
}
