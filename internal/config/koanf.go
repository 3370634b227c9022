// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mediatok/config.yaml",
	"/etc/mediatok/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "MEDIATOK_CONFIG_PATH"

// EnvPrefix is the prefix shared by all MediaTok environment variables.
const EnvPrefix = "MEDIATOK_"

// defaultConfig returns a Config with all default values. The defaults are
// loaded first, then overridden by the config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8200,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Upstream: UpstreamConfig{
			Timeout:           30 * time.Second,
			RequestsPerSecond: 0, // Unthrottled; backends signal pressure via 429
			Burst:             1,
		},
		Breaker: BreakerConfig{
			MaxRequests:      3,
			Interval:         time.Minute,
			Timeout:          2 * time.Minute,
			FailureThreshold: 0.6,
			MinRequests:      10,
		},
		Security: SecurityConfig{
			JWTSecret:            "",
			SessionTimeout:       7 * 24 * time.Hour,
			RateLimitReqs:        300,
			RateLimitWindow:      time.Minute,
			RateLimitDisabled:    false,
			ConnectRateLimitReqs: 10,
			CORSOrigins:          []string{"*"},
		},
		Store: StoreConfig{
			Path:     "/data/mediatok/sessions",
			InMemory: false,
		},
		API: APIConfig{
			DefaultPageSize: 30,
			MaxPageSize:     100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
//
// Precedence is ENV > file > defaults. The returned Config has passed
// Validate.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct.
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file.
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority).
	// MEDIATOK_HTTP_PORT -> server.port, MEDIATOK_JWT_SECRET -> security.jwt_secret
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings.
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

// findConfigFile searches for a config file in the default paths. Returns the
// first file found, or empty string if none exists.
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

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// set through environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults): nothing to do.
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
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

// envTransformFunc maps MEDIATOK_-prefixed environment variable names to
// koanf config paths. Unknown variables map to "" and are ignored, so stray
// MEDIATOK_ vars never clobber config keys.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))

	envMappings := map[string]string{
		// Server
		"http_port":    "server.port",
		"http_host":    "server.host",
		"http_timeout": "server.timeout",
		"environment":  "server.environment",

		// Upstream media server clients
		"upstream_timeout":             "upstream.timeout",
		"upstream_requests_per_second": "upstream.requests_per_second",
		"upstream_burst":               "upstream.burst",

		// Circuit breaker
		"breaker_max_requests":      "breaker.max_requests",
		"breaker_interval":          "breaker.interval",
		"breaker_timeout":           "breaker.timeout",
		"breaker_failure_threshold": "breaker.failure_threshold",
		"breaker_min_requests":      "breaker.min_requests",

		// Security
		"jwt_secret":                  "security.jwt_secret",
		"session_timeout":             "security.session_timeout",
		"rate_limit_requests":         "security.rate_limit_reqs",
		"rate_limit_window":           "security.rate_limit_window",
		"disable_rate_limit":          "security.rate_limit_disabled",
		"connect_rate_limit_requests": "security.connect_rate_limit_reqs",
		"cors_origins":                "security.cors_origins",

		// Session store
		"store_path":      "store.path",
		"store_in_memory": "store.in_memory",

		// API
		"api_default_page_size": "api.default_page_size",
		"api_max_page_size":     "api.max_page_size",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped variables are dropped rather than guessed at.
	return ""
}
