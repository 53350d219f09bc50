// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package api

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/pathwise/internal/personalize"
)

const upsertBody = `{
	"topic_id": "algebra",
	"title": "Linear equations",
	"content_type": "video",
	"difficulty_level": 3,
	"modalities": ["visual", "auditory"],
	"cognitive_load_level": 2,
	"estimated_duration": 600
}`

func floatPtr(v float64) *float64 { return &v }

func TestLearnerProgress(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ended := started.Add(30 * time.Minute)
	ts.store.sessions["s1"] = &personalize.LearningSession{
		ID: "s1", LearnerID: "learner-1", TopicID: "algebra",
		StartedAt: started, EndedAt: &ended, EngagementScore: floatPtr(0.8),
		Interactions: []personalize.Interaction{
			{ID: "i1", SessionID: "s1", ContentType: personalize.ContentTypeVideo, Accuracy: 0.9, EngagementScore: 0.8, DifficultyLevel: 4, Timestamp: started},
		},
	}

	rec, env := ts.do(t, http.MethodGet, "/api/v1/learners/learner-1/topics/algebra/progress", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body ProgressResponse
	decodeData(t, env, &body)
	if body.LearnerID != "learner-1" || body.TopicID != "algebra" {
		t.Errorf("ids = %q/%q", body.LearnerID, body.TopicID)
	}
	if body.Progress.SessionsConsidered != 1 {
		t.Errorf("sessions_considered = %d, want 1", body.Progress.SessionsConsidered)
	}
	if body.Progress.AverageAccuracy != 0.9 {
		t.Errorf("average_accuracy = %v, want 0.9", body.Progress.AverageAccuracy)
	}
	if got := ts.store.lastHistoryLimit(); got != 7 {
		t.Errorf("history limit = %d, want 7", got)
	}
}

func TestLearnerProgress_StoreError(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)
	ts.store.err = errors.New("disk gone")

	rec, env := ts.do(t, http.MethodGet, "/api/v1/learners/learner-1/topics/algebra/progress", "", "")
	if rec.Code != http.StatusInternalServerError || env.Error == nil || env.Error.Code != ErrCodeDatabase {
		t.Errorf("status = %d, envelope %+v", rec.Code, env)
	}
	if strings.Contains(rec.Body.String(), "disk gone") {
		t.Error("internal error text leaked to the client")
	}
}

func TestTopicContent(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)
	ts.store.content["a"] = personalize.ContentItem{ID: "a", TopicID: "algebra"}
	ts.store.content["b"] = personalize.ContentItem{ID: "b", TopicID: "geometry"}

	rec, env := ts.do(t, http.MethodGet, "/api/v1/topics/algebra/content", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var items []personalize.ContentItem
	decodeData(t, env, &items)
	if len(items) != 1 || items[0].ID != "a" {
		t.Errorf("items = %+v", items)
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/topics/history/content", "", "")
	if rec.Code != http.StatusOK || string(env.Data) != "[]" {
		t.Errorf("empty topic: status = %d, data %s", rec.Code, env.Data)
	}
}

func TestContentItem(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)
	ts.store.content["item-3"] = personalize.ContentItem{ID: "item-3", TopicID: "algebra", Title: "Factoring"}

	rec, env := ts.do(t, http.MethodGet, "/api/v1/content/item-3", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var item personalize.ContentItem
	decodeData(t, env, &item)
	if item.ID != "item-3" || item.Title != "Factoring" {
		t.Errorf("item = %+v", item)
	}

	rec, env = ts.do(t, http.MethodGet, "/api/v1/content/missing", "", "")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("missing item: status = %d, error %+v", rec.Code, env.Error)
	}

	ts.store.err = errors.New("disk full")
	rec, _ = ts.do(t, http.MethodGet, "/api/v1/content/item-3", "", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("store failure: status = %d, want 500", rec.Code)
	}
}

func TestUpsertContent(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)

	rec, env := ts.do(t, http.MethodPut, "/api/v1/content/item-9", upsertBody, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("first upsert status = %d, body %s", rec.Code, rec.Body.String())
	}
	var item personalize.ContentItem
	decodeData(t, env, &item)
	if item.ID != "item-9" || item.DifficultyLevel != 3 || len(item.Modalities) != 2 {
		t.Errorf("item = %+v", item)
	}

	rec, _ = ts.do(t, http.MethodPut, "/api/v1/content/item-9", upsertBody, "")
	if rec.Code != http.StatusOK {
		t.Errorf("second upsert status = %d, want 200", rec.Code)
	}
}

func TestUpsertContent_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode string
	}{
		{"unknown modality", "/api/v1/content/item-1", strings.Replace(upsertBody, `"auditory"`, `"olfactory"`, 1), ErrCodeValidation},
		{"difficulty too high", "/api/v1/content/item-1", strings.Replace(upsertBody, `"difficulty_level": 3`, `"difficulty_level": 12`, 1), ErrCodeValidation},
		{"not json", "/api/v1/content/item-1", "title=x", ErrCodeBadRequest},
		{"id with encoded space", "/api/v1/content/item%201", upsertBody, ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t, nil, nil)
			rec, env := ts.do(t, http.MethodPut, tt.path, tt.body, "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
			if len(ts.store.content) != 0 {
				t.Error("invalid item was stored")
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/sessions", `{"learner_id":"learner-1","topic_id":"algebra"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var session personalize.LearningSession
	decodeData(t, env, &session)
	if session.ID == "" || session.LearnerID != "learner-1" || !session.IsOpen() {
		t.Fatalf("session = %+v", session)
	}

	path := "/api/v1/sessions/" + session.ID
	rec, _ = ts.do(t, http.MethodPost, path+"/interactions",
		`{"content_type":"video","accuracy":0.75,"engagement_score":0.5,"difficulty_level":3}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("interaction status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec, env = ts.do(t, http.MethodPost, path+"/end", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("end status = %d, body %s", rec.Code, rec.Body.String())
	}
	decodeData(t, env, &session)
	if session.IsOpen() {
		t.Error("session still open after end")
	}

	rec, env = ts.do(t, http.MethodPost, path+"/end", `{"engagement_score":0.4}`, "")
	if rec.Code != http.StatusConflict || env.Error == nil || env.Error.Code != ErrCodeConflict {
		t.Errorf("second end: status = %d, error %+v", rec.Code, env.Error)
	}

	rec, _ = ts.do(t, http.MethodPost, path+"/interactions", `{"content_type":"audio","accuracy":0.5,"engagement_score":0.5}`, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("interaction on ended session status = %d, want 409", rec.Code)
	}
}

func TestSessionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"end unknown session", "/api/v1/sessions/missing/end", "", http.StatusNotFound, ErrCodeNotFound},
		{"interaction on unknown session", "/api/v1/sessions/missing/interactions",
			`{"content_type":"video","accuracy":0.5,"engagement_score":0.5}`, http.StatusNotFound, ErrCodeNotFound},
		{"interaction missing type", "/api/v1/sessions/s1/interactions",
			`{"accuracy":0.5,"engagement_score":0.5}`, http.StatusBadRequest, ErrCodeValidation},
		{"end engagement out of range", "/api/v1/sessions/s1/end",
			`{"engagement_score":3}`, http.StatusBadRequest, ErrCodeValidation},
		{"create without topic", "/api/v1/sessions", `{"learner_id":"learner-1"}`, http.StatusBadRequest, ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t, nil, nil)
			rec, env := ts.do(t, http.MethodPost, tt.path, tt.body, "")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestCreateSession_Conflict(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, nil, nil)
	body := `{"id":"fixed","learner_id":"learner-1","topic_id":"algebra"}`

	if rec, _ := ts.do(t, http.MethodPost, "/api/v1/sessions", body, ""); rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}
	rec, env := ts.do(t, http.MethodPost, "/api/v1/sessions", body, "")
	if rec.Code != http.StatusConflict || env.Error == nil || env.Error.Code != ErrCodeConflict {
		t.Errorf("duplicate create: status = %d, error %+v", rec.Code, env.Error)
	}
}
