// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pathwise/config.yaml",
	"/etc/pathwise/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Database: DatabaseConfig{
			Path:      "/data/pathwise.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		AIEngine: AIEngineConfig{
			BaseURL:             "http://ai-engine:8001",
			Timeout:             5 * time.Second,
			MaxRetries:          2,
			BreakerMaxRequests:  3,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      30 * time.Second,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
		},
		ProfileCache: ProfileCacheConfig{
			Backend:    ProfileCacheMemory,
			TTL:        time.Hour,
			BadgerPath: "/data/profiles",
			RedisAddr:  "",
			RedisDB:    0,
		},
		Personalization: PersonalizationConfig{
			HistoryLimit:            10,
			MaxResults:              10,
			RecentInteractionWindow: 5,
			RequestTimeout:          10 * time.Second,
			ResultCache: ResultCacheConfig{
				Enabled:  false,
				Policy:   "lfu",
				TTL:      30 * time.Second,
				Capacity: 10000,
			},
		},
		Events: EventsConfig{
			Enabled:       false,
			NATSURL:       "nats://127.0.0.1:4222",
			Topic:         "content.personalized",
			TrackMsgID:    true,
			AutoProvision: true,
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		Security: SecurityConfig{
			JWTSecret:         "",
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads defaults, then the config file, then environment
// variables, and validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths accept comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"ai_engine_url":                   "ai_engine.base_url",
	"ai_engine_timeout":               "ai_engine.timeout",
	"ai_engine_max_retries":           "ai_engine.max_retries",
	"ai_engine_breaker_max_requests":  "ai_engine.breaker_max_requests",
	"ai_engine_breaker_interval":      "ai_engine.breaker_interval",
	"ai_engine_breaker_timeout":       "ai_engine.breaker_timeout",
	"ai_engine_breaker_min_requests":  "ai_engine.breaker_min_requests",
	"ai_engine_breaker_failure_ratio": "ai_engine.breaker_failure_ratio",

	"profile_cache_backend": "profile_cache.backend",
	"profile_cache_ttl":     "profile_cache.ttl",
	"profile_cache_path":    "profile_cache.badger_path",
	"redis_addr":            "profile_cache.redis_addr",
	"redis_password":        "profile_cache.redis_password",
	"redis_db":              "profile_cache.redis_db",

	"history_limit":             "personalization.history_limit",
	"max_results":               "personalization.max_results",
	"recent_interaction_window": "personalization.recent_interaction_window",
	"personalize_timeout":       "personalization.request_timeout",
	"result_cache_enabled":      "personalization.result_cache.enabled",
	"result_cache_policy":       "personalization.result_cache.policy",
	"result_cache_ttl":          "personalization.result_cache.ttl",
	"result_cache_capacity":     "personalization.result_cache.capacity",

	"events_enabled":      "events.enabled",
	"nats_url":            "events.nats_url",
	"events_topic":        "events.topic",
	"nats_track_msg_id":   "events.track_msg_id",
	"nats_auto_provision": "events.auto_provision",
	"nats_max_reconnects": "events.max_reconnects",
	"nats_reconnect_wait": "events.reconnect_wait",

	"jwt_secret":          "security.jwt_secret",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
