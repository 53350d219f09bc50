// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/pathwise/internal/cache"
)

// Validate checks ranges and cross-field rules.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateAIEngine,
		c.validateProfileCache,
		c.validatePersonalization,
		c.validateEvents,
		c.validateSecurity,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive, got %v", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateAIEngine() error {
	if err := validateHTTPURL(c.AIEngine.BaseURL, "AI_ENGINE_URL"); err != nil {
		return err
	}
	if c.AIEngine.Timeout <= 0 {
		return fmt.Errorf("AI_ENGINE_TIMEOUT must be positive, got %v", c.AIEngine.Timeout)
	}
	if c.AIEngine.MaxRetries < 0 || c.AIEngine.MaxRetries > 10 {
		return fmt.Errorf("AI_ENGINE_MAX_RETRIES must be between 0 and 10, got %d", c.AIEngine.MaxRetries)
	}
	if c.AIEngine.BreakerFailureRatio <= 0 || c.AIEngine.BreakerFailureRatio > 1 {
		return fmt.Errorf("AI_ENGINE_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", c.AIEngine.BreakerFailureRatio)
	}
	return nil
}

func (c *Config) validateProfileCache() error {
	pc := c.ProfileCache
	switch pc.Backend {
	case ProfileCacheNone:
		return nil
	case ProfileCacheMemory:
	case ProfileCacheBadger:
		if strings.TrimSpace(pc.BadgerPath) == "" {
			return fmt.Errorf("PROFILE_CACHE_PATH is required when PROFILE_CACHE_BACKEND=badger")
		}
	case ProfileCacheRedis:
		if strings.TrimSpace(pc.RedisAddr) == "" {
			return fmt.Errorf("REDIS_ADDR is required when PROFILE_CACHE_BACKEND=redis")
		}
		if pc.RedisDB < 0 {
			return fmt.Errorf("REDIS_DB must be non-negative, got %d", pc.RedisDB)
		}
	default:
		return fmt.Errorf("PROFILE_CACHE_BACKEND must be one of none, memory, badger, redis; got %q", pc.Backend)
	}
	if pc.TTL <= 0 {
		return fmt.Errorf("PROFILE_CACHE_TTL must be positive, got %v", pc.TTL)
	}
	return nil
}

func (c *Config) validatePersonalization() error {
	if err := c.Personalization.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("personalization: %w", err)
	}
	if c.Personalization.ResultCache.Enabled {
		switch cache.Policy(c.Personalization.ResultCache.Policy) {
		case cache.PolicyLFU, cache.PolicyTTL:
		default:
			return fmt.Errorf("RESULT_CACHE_POLICY must be lfu or ttl, got %q", c.Personalization.ResultCache.Policy)
		}
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	if err := validateNATSURL(c.Events.NATSURL); err != nil {
		return err
	}
	if strings.TrimSpace(c.Events.Topic) == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when EVENTS_ENABLED=true")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if secret := c.Security.JWTSecret; secret != "" && len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters when set, got %d", len(secret))
	}
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL accepts an http(s) base URL with a host and no query.
func validateHTTPURL(rawURL, fieldName string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", fieldName, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsed.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsed.RawQuery)
	}
	return nil
}

func validateNATSURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("NATS_URL failed to parse URL: %w", err)
	}
	switch parsed.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("NATS_URL scheme must be nats, tls, ws or wss, got: %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("NATS_URL host is required")
	}
	return nil
}
