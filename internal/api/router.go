// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/pathwise/internal/auth"
	"github.com/tomtom215/pathwise/internal/middleware"
)

// Router wires the handler to chi.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
	timeout       time.Duration
}

// NewRouter creates a router. A nil jwt manager disables authentication;
// a zero timeout disables the per-request handler timeout.
func NewRouter(handler *Handler, mw *ChiMiddleware, jwt *auth.JWTManager, timeout time.Duration) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		auth:          auth.NewMiddleware(jwt, writeAuthError),
		timeout:       timeout,
	}
}

// Setup builds the http.Handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed", nil)
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.auth.Authenticate)
		if router.timeout > 0 {
			r.Use(requestDeadline(router.timeout))
		}

		r.Post("/personalized-content", router.handler.PersonalizedContent)
		r.Get("/learners/{learnerID}/topics/{topicID}/progress", router.handler.LearnerProgress)
		r.Get("/topics/{topicID}/content", router.handler.TopicContent)
		r.Get("/content/{itemID}", router.handler.ContentItem)
		r.Put("/content/{itemID}", router.handler.UpsertContent)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", router.handler.CreateSession)
			r.Post("/{sessionID}/end", router.handler.EndSession)
			r.Post("/{sessionID}/interactions", router.handler.RecordInteraction)
		})
	})

	return r
}

// requestDeadline bounds the request context. Handlers map the resulting
// context errors to their own responses.
func requestDeadline(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
