// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/pathwise/internal/logging"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(testSecret)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func TestNewJWTManager_ShortSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTManager("short"); err == nil {
		t.Error("expected error for short secret")
	}
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	valid, err := m.GenerateToken("learner-1", "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	other, _ := NewJWTManager(strings.Repeat("x", 40))
	wrongKey, _ := other.GenerateToken("learner-1", "", time.Hour)
	expired, _ := m.GenerateToken("learner-1", "", -time.Hour)
	noSubject, _ := m.GenerateToken("", "", time.Hour)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "learner-1"},
	}).SignedString([]byte(testSecret))

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "learner-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid", valid, false},
		{"wrong key", wrongKey, true},
		{"expired", expired, true},
		{"no subject", noSubject, true},
		{"no expiry", noExp, true},
		{"hs512", hs512, true},
		{"garbage", "not.a.jwt", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := m.ValidateToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidToken) {
					t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.Subject != "learner-1" {
				t.Errorf("Subject = %q", claims.Subject)
			}
		})
	}
}

func TestMiddleware_Disabled(t *testing.T) {
	t.Parallel()

	mw := NewMiddleware(nil, nil)
	if mw.Enabled() {
		t.Fatal("Enabled() = true without manager")
	}

	called := false
	h := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if !SubjectAllowed(r.Context(), "anyone") || !ServiceAllowed(r.Context()) {
			t.Error("everything is allowed without auth")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/x", nil))
	if !called || rec.Code != http.StatusNoContent {
		t.Errorf("called = %v, code = %d", called, rec.Code)
	}
}

func TestMiddleware_Enforces(t *testing.T) {
	t.Parallel()

	m := newTestManager(t)
	token, _ := m.GenerateToken("learner-1", "", time.Hour)
	serviceToken, _ := m.GenerateToken("importer", RoleService, time.Hour)

	var gotCode string
	mw := NewMiddleware(m, func(w http.ResponseWriter, _ *http.Request, status int, code, _ string) {
		gotCode = code
		w.WriteHeader(status)
	})

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantLearner bool
		wantService bool
	}{
		{"missing header", "", http.StatusUnauthorized, false, false},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized, false, false},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, false, false},
		{"bad token", "Bearer nope", http.StatusUnauthorized, false, false},
		{"learner token", "Bearer " + token, http.StatusOK, true, false},
		{"lowercase scheme", "bearer " + token, http.StatusOK, true, false},
		{"service token", "Bearer " + serviceToken, http.StatusOK, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var learnerOK, serviceOK bool
			var loggedLearner string
			h := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				learnerOK = SubjectAllowed(r.Context(), "learner-1")
				serviceOK = ServiceAllowed(r.Context())
				loggedLearner = logging.LearnerIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if gotCode != "UNAUTHORIZED" {
					t.Errorf("code = %q", gotCode)
				}
				if rec.Header().Get("WWW-Authenticate") == "" {
					t.Error("missing WWW-Authenticate header")
				}
				return
			}
			if learnerOK != tt.wantLearner || serviceOK != tt.wantService {
				t.Errorf("learnerOK = %v, serviceOK = %v", learnerOK, serviceOK)
			}
			if loggedLearner == "" {
				t.Error("learner ID not added to logging context")
			}
		})
	}
}

func TestSubjectAllowed_OtherLearner(t *testing.T) {
	t.Parallel()

	ctx := ContextWithClaims(context.Background(), &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "a"}})
	if SubjectAllowed(ctx, "b") {
		t.Error("learner a must not act for learner b")
	}
	if ServiceAllowed(ctx) {
		t.Error("learner token is not a service token")
	}
}
