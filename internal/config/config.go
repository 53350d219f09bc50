// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

// Package config loads Pathwise configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence.
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("load configuration")
//	}
package config

import (
	"time"

	"github.com/tomtom215/pathwise/internal/cache"
	"github.com/tomtom215/pathwise/internal/personalize"
)

// Profile cache backends.
const (
	ProfileCacheNone   = "none"
	ProfileCacheMemory = "memory"
	ProfileCacheBadger = "badger"
	ProfileCacheRedis  = "redis"
)

// Config is the root configuration.
type Config struct {
	Server          ServerConfig          `koanf:"server"`
	Database        DatabaseConfig        `koanf:"database"`
	AIEngine        AIEngineConfig        `koanf:"ai_engine"`
	ProfileCache    ProfileCacheConfig    `koanf:"profile_cache"`
	Personalization PersonalizationConfig `koanf:"personalization"`
	Events          EventsConfig          `koanf:"events"`
	Security        SecurityConfig        `koanf:"security"`
	Logging         LoggingConfig         `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"` // per-request handler timeout
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = DuckDB default
}

// AIEngineConfig points at the learning-style service.
type AIEngineConfig struct {
	BaseURL    string        `koanf:"base_url"`
	Timeout    time.Duration `koanf:"timeout"`
	MaxRetries int           `koanf:"max_retries"`

	// Circuit breaker
	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
}

// ProfileCacheConfig selects where fetched learning styles are cached.
type ProfileCacheConfig struct {
	Backend string        `koanf:"backend"` // none, memory, badger, redis
	TTL     time.Duration `koanf:"ttl"`

	BadgerPath string `koanf:"badger_path"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

// PersonalizationConfig mirrors personalize.Config with koanf tags.
type PersonalizationConfig struct {
	HistoryLimit            int               `koanf:"history_limit"`
	MaxResults              int               `koanf:"max_results"`
	RecentInteractionWindow int               `koanf:"recent_interaction_window"`
	RequestTimeout          time.Duration     `koanf:"request_timeout"`
	ResultCache             ResultCacheConfig `koanf:"result_cache"`
}

// ResultCacheConfig configures the engine's optional result cache.
type ResultCacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Policy   string        `koanf:"policy"` // lfu or ttl
	TTL      time.Duration `koanf:"ttl"`
	Capacity int           `koanf:"capacity"`
}

// EventsConfig controls publication of personalization events.
type EventsConfig struct {
	Enabled       bool          `koanf:"enabled"` // false = in-process gochannel only
	NATSURL       string        `koanf:"nats_url"`
	Topic         string        `koanf:"topic"`
	TrackMsgID    bool          `koanf:"track_msg_id"`
	AutoProvision bool          `koanf:"auto_provision"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// SecurityConfig holds edge security settings.
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"` // empty disables auth
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns host:port for net/http.
func (s *ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}

// EngineConfig converts the loaded section to the engine's configuration.
func (p *PersonalizationConfig) EngineConfig() *personalize.Config {
	return &personalize.Config{
		HistoryLimit:            p.HistoryLimit,
		MaxResults:              p.MaxResults,
		RecentInteractionWindow: p.RecentInteractionWindow,
		RequestTimeout:          p.RequestTimeout,
		ResultCache: personalize.ResultCacheConfig{
			Enabled:  p.ResultCache.Enabled,
			TTL:      p.ResultCache.TTL,
			Capacity: p.ResultCache.Capacity,
		},
	}
}

// CacheConfig returns the settings for building the result cache.
func (r *ResultCacheConfig) CacheConfig() cache.Config {
	return cache.Config{
		Policy:   cache.Policy(r.Policy),
		TTL:      r.TTL,
		Capacity: r.Capacity,
	}
}
