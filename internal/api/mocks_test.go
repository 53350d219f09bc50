// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pathwise/internal/auth"
	"github.com/tomtom215/pathwise/internal/database"
	"github.com/tomtom215/pathwise/internal/events"
	"github.com/tomtom215/pathwise/internal/personalize"
)

// mockEngine returns a canned result or error and records requests.
type mockEngine struct {
	mu       sync.Mutex
	result   *personalize.Result
	err      error
	requests []personalize.Request
}

func (m *mockEngine) GetPersonalizedContent(_ context.Context, req personalize.Request) (*personalize.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	res := *m.result
	res.RequestID = req.RequestID
	return &res, nil
}

func (m *mockEngine) calls() []personalize.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]personalize.Request(nil), m.requests...)
}

// mockStore is an in-memory Store using the database sentinel errors.
type mockStore struct {
	mu           sync.Mutex
	content      map[string]personalize.ContentItem
	sessions     map[string]*personalize.LearningSession
	err          error // returned by every read and write when set
	pingErr      error
	historyLimit int
	nextID       int
}

func newMockStore() *mockStore {
	return &mockStore{
		content:  make(map[string]personalize.ContentItem),
		sessions: make(map[string]*personalize.LearningSession),
	}
}

func (m *mockStore) ListContent(_ context.Context, topicID string) ([]personalize.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	items := []personalize.ContentItem{}
	for _, item := range m.content {
		if item.TopicID == topicID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *mockStore) RecentSessions(_ context.Context, learnerID, topicID string, limit int) ([]personalize.LearningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.historyLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	out := []personalize.LearningSession{}
	for _, s := range m.sessions {
		if s.LearnerID == learnerID && s.TopicID == topicID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockStore) GetContentItem(_ context.Context, id string) (*personalize.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	item, ok := m.content[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &item, nil
}

func (m *mockStore) UpsertContentItem(_ context.Context, item *personalize.ContentItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, exists := m.content[item.ID]
	m.content[item.ID] = *item
	return !exists, nil
}

func (m *mockStore) GetSession(_ context.Context, id string) (*personalize.LearningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *s
	return &out, nil
}

func (m *mockStore) CreateSession(_ context.Context, s *personalize.LearningSession) (*personalize.LearningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := *s
	if out.ID == "" {
		m.nextID++
		out.ID = fmt.Sprintf("session-%d", m.nextID)
	}
	if _, exists := m.sessions[out.ID]; exists {
		return nil, fmt.Errorf("session %s: %w", out.ID, database.ErrConflict)
	}
	if out.StartedAt.IsZero() {
		out.StartedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	}
	out.Interactions = []personalize.Interaction{}
	m.sessions[out.ID] = &out
	ret := out
	return &ret, nil
}

func (m *mockStore) EndSession(_ context.Context, id string, engagement, load *float64) (*personalize.LearningSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if !s.IsOpen() {
		return nil, fmt.Errorf("session %s: %w", id, database.ErrSessionClosed)
	}
	ended := s.StartedAt.Add(time.Hour)
	s.EndedAt = &ended
	s.EngagementScore = engagement
	if load != nil {
		s.CognitiveLoadDetected = load
	}
	out := *s
	return &out, nil
}

func (m *mockStore) RecordInteraction(_ context.Context, in *personalize.Interaction) (*personalize.Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[in.SessionID]
	if !ok {
		return nil, database.ErrNotFound
	}
	if !s.IsOpen() {
		return nil, fmt.Errorf("session %s: %w", in.SessionID, database.ErrSessionClosed)
	}
	out := *in
	if out.ID == "" {
		out.ID = fmt.Sprintf("interaction-%d", len(s.Interactions)+1)
	}
	s.Interactions = append(s.Interactions, out)
	return &out, nil
}

func (m *mockStore) Ping(context.Context) error {
	return m.pingErr
}

func (m *mockStore) lastHistoryLimit() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.historyLimit
}

// mockPublisher records published events.
type mockPublisher struct {
	mu     sync.Mutex
	events []*events.PersonalizationServed
	err    error
}

func (m *mockPublisher) PublishServed(_ context.Context, ev *events.PersonalizationServed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return m.err
}

func (m *mockPublisher) published() []*events.PersonalizationServed {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*events.PersonalizationServed(nil), m.events...)
}

// envelope mirrors models.APIResponse with raw data for assertions.
type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata struct {
		Timestamp   time.Time `json:"timestamp"`
		QueryTimeMS int64     `json:"query_time_ms"`
		RequestID   string    `json:"request_id"`
		Cached      bool      `json:"cached"`
	} `json:"metadata"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

type testServer struct {
	api       *Handler
	handler   http.Handler
	engine    *mockEngine
	store     *mockStore
	publisher *mockPublisher
}

func sampleResult() *personalize.Result {
	return &personalize.Result{
		Items: []personalize.ContentItem{
			{ID: "item-1", TopicID: "algebra", Title: "Intro", ContentType: personalize.ContentTypeVideo,
				DifficultyLevel: 2, Modalities: []personalize.Modality{personalize.ModalityVisual}, CognitiveLoadLevel: 2},
			{ID: "item-2", TopicID: "algebra", Title: "Practice", ContentType: personalize.ContentTypeInteractive,
				DifficultyLevel: 3, Modalities: []personalize.Modality{personalize.ModalityKinesthetic}, CognitiveLoadLevel: 3},
		},
		Diagnostics: personalize.Diagnostics{TargetDifficulty: 3},
		GeneratedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// newTestServer builds the full router over mocks. cfg tweaks the
// middleware config before the router is built.
func newTestServer(t *testing.T, jwt *auth.JWTManager, cfg func(*ChiMiddlewareConfig)) *testServer {
	t.Helper()

	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = true
	if cfg != nil {
		cfg(mwCfg)
	}

	ts := &testServer{
		engine:    &mockEngine{result: sampleResult()},
		store:     newMockStore(),
		publisher: &mockPublisher{},
	}
	h := NewHandler(ts.engine, ts.store, ts.publisher, HandlerConfig{HistoryLimit: 7})
	ts.api = h
	ts.handler = NewRouter(h, NewChiMiddleware(mwCfg), jwt, time.Second).Setup()
	return ts
}

// do sends a request and decodes the envelope.
func (ts *testServer) do(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}
