// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

// Package main is the Pathwise server.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, optional YAML file, environment)
//  2. Logging (zerolog)
//  3. DuckDB catalog and history store
//  4. AI-engine profile client, optionally behind the profile cache
//  5. Personalization engine, optionally with the result cache
//  6. Event publisher (NATS JetStream when EVENTS_ENABLED, else in-process)
//  7. HTTP router and server
//  8. Supervisor tree, which runs until SIGINT or SIGTERM
//
// Example:
//
//	export AI_ENGINE_URL=http://ai-engine:8001
//	export DUCKDB_PATH=/data/pathwise.duckdb
//	export JWT_SECRET=$(openssl rand -base64 32)
//	./pathwise
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/pathwise/internal/aiengine"
	"github.com/tomtom215/pathwise/internal/api"
	"github.com/tomtom215/pathwise/internal/auth"
	"github.com/tomtom215/pathwise/internal/cache"
	"github.com/tomtom215/pathwise/internal/config"
	"github.com/tomtom215/pathwise/internal/database"
	"github.com/tomtom215/pathwise/internal/events"
	"github.com/tomtom215/pathwise/internal/logging"
	"github.com/tomtom215/pathwise/internal/personalize"
	"github.com/tomtom215/pathwise/internal/profilecache"
	"github.com/tomtom215/pathwise/internal/supervisor"
	"github.com/tomtom215/pathwise/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Pathwise exited with error")
		os.Exit(1)
	}
}

//nolint:gocyclo // sequential startup wiring
func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("db_path", cfg.Database.Path).
		Str("ai_engine", cfg.AIEngine.BaseURL).
		Str("profile_cache", cfg.ProfileCache.Backend).
		Bool("events_enabled", cfg.Events.Enabled).
		Bool("auth_enabled", cfg.Security.JWTSecret != "").
		Msg("Starting Pathwise")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	aiClient := aiengine.NewClient(&cfg.AIEngine)
	var profiles personalize.ProfileProvider = aiClient
	profileStore, err := profilecache.New(&cfg.ProfileCache)
	if err != nil {
		return fmt.Errorf("initialize profile cache: %w", err)
	}
	if profileStore != nil {
		defer func() {
			if err := profileStore.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing profile cache")
			}
		}()
		profiles = profilecache.NewCachingProvider(profiles, profileStore, logging.WithComponent("profilecache"))
		logging.Info().Str("backend", profileStore.Name()).Dur("ttl", cfg.ProfileCache.TTL).Msg("Profile cache enabled")
	}

	engine, err := personalize.NewEngine(
		cfg.Personalization.EngineConfig(),
		logging.WithComponent("personalize"),
		profiles, db, db,
	)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	if cfg.Personalization.ResultCache.Enabled {
		resultCache, err := cache.NewCacher(cfg.Personalization.ResultCache.CacheConfig())
		if err != nil {
			return fmt.Errorf("initialize result cache: %w", err)
		}
		defer resultCache.Close()
		engine.SetResultCache(resultCache)
		logging.Info().Str("policy", cfg.Personalization.ResultCache.Policy).Msg("Result cache enabled")
	}

	publisher, err := events.New(&cfg.Events)
	if err != nil {
		return fmt.Errorf("initialize event publisher: %w", err)
	}
	logging.Info().
		Str("backend", publisher.Backend()).
		Str("topic", publisher.Topic()).
		Bool("discarding", publisher.Discarding()).
		Msg("Event publisher ready")

	var jwtManager *auth.JWTManager
	if cfg.Security.JWTSecret != "" {
		jwtManager, err = auth.NewJWTManager(cfg.Security.JWTSecret)
		if err != nil {
			_ = publisher.Close()
			return fmt.Errorf("initialize auth: %w", err)
		}
	} else {
		logging.Warn().Msg("JWT_SECRET is empty: API authentication is DISABLED")
	}

	handler := api.NewHandler(engine, db, publisher, api.HandlerConfig{
		HistoryLimit: cfg.Personalization.HistoryLimit,
	})
	handler.SetProfileBreaker(aiClient)
	if pinger, ok := profileStore.(api.Pinger); ok {
		handler.SetProfileCache(pinger)
	}
	router := api.NewRouter(
		handler,
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)),
		jwtManager,
		cfg.Server.Timeout,
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		_ = publisher.Close()
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddMessagingService(services.NewCloserService("events-publisher", publisher))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	logging.Info().Msg("Pathwise stopped")
	return nil
}
