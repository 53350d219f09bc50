// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/pathwise/internal/logging"
	"github.com/tomtom215/pathwise/internal/metrics"
)

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware enforces bearer tokens when a manager is configured.
type Middleware struct {
	manager *JWTManager
	onError ErrorWriter
}

// NewMiddleware returns a middleware. A nil manager disables checks.
func NewMiddleware(manager *JWTManager, onError ErrorWriter) *Middleware {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{manager: manager, onError: onError}
}

// Enabled reports whether tokens are checked.
func (m *Middleware) Enabled() bool {
	return m.manager != nil
}

// Authenticate rejects requests without a valid bearer token.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	if m.manager == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r.Header.Get("Authorization"))
		if err == nil {
			var claims *Claims
			claims, err = m.manager.ValidateToken(token)
			if err == nil {
				ctx := ContextWithClaims(r.Context(), claims)
				ctx = logging.ContextWithLearnerID(ctx, claims.Subject)
				metrics.RecordAuth("success")
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		reason := "invalid"
		if errors.Is(err, ErrMissingToken) {
			reason = "missing"
		}
		metrics.RecordAuth(reason)
		logging.Ctx(r.Context()).Debug().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")

		w.Header().Set("WWW-Authenticate", `Bearer realm="pathwise"`)
		m.onError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "a valid bearer token is required")
	})
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

// ContextWithClaims stores verified claims.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the verified claims, or nil without auth.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}

// SubjectAllowed reports whether the caller may act for learnerID. With
// auth disabled there are no claims and every learner is allowed.
func SubjectAllowed(ctx context.Context, learnerID string) bool {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return true
	}
	return claims.Role == RoleService || claims.Subject == learnerID
}

// RoleService marks trusted callers, such as the catalog importer, that act
// for any learner.
const RoleService = "service"

// ServiceAllowed reports whether the caller may change shared data such as
// the catalog.
func ServiceAllowed(ctx context.Context) bool {
	claims := ClaimsFromContext(ctx)
	return claims == nil || claims.Role == RoleService
}
