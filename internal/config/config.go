// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root application configuration, populated from defaults,
// an optional YAML file, and MEDIATOK_-prefixed environment variables.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Breaker  BreakerConfig  `koanf:"breaker"`
	Security SecurityConfig `koanf:"security"`
	Store    StoreConfig    `koanf:"store"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`     // Read/write timeout for API requests
	Environment string        `koanf:"environment"` // "development", "staging", or "production"
}

// UpstreamConfig tunes the HTTP clients that talk to the user's media server.
type UpstreamConfig struct {
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerSecond throttles outbound calls per backend client.
	// 0 disables client-side throttling; server 429 responses are still
	// retried with backoff.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
}

// BreakerConfig tunes the per-session circuit breaker wrapped around each
// backend client.
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"` // Probes allowed while half-open
	Interval         time.Duration `koanf:"interval"`     // Closed-state counter reset period
	Timeout          time.Duration `koanf:"timeout"`      // Open-state cool-down before half-open
	FailureThreshold float64       `koanf:"failure_threshold"`
	MinRequests      uint32        `koanf:"min_requests"`
}

// SecurityConfig holds session and rate-limit settings.
type SecurityConfig struct {
	// JWTSecret signs browser session tokens and derives the key that
	// encrypts media server credentials at rest. Required in production.
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// ConnectRateLimitReqs is the stricter per-IP budget for the connect
	// endpoint, which forwards credentials upstream.
	ConnectRateLimitReqs int `koanf:"connect_rate_limit_reqs"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// StoreConfig holds the session store settings.
type StoreConfig struct {
	Path     string `koanf:"path"`      // BadgerDB directory
	InMemory bool   `koanf:"in_memory"` // Ephemeral store, sessions lost on restart
}

// APIConfig holds feed pagination settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig mirrors the logging package's configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is "json" (production) or "console" (development).
	Format string `koanf:"format"`

	// Caller includes file and line in log output.
	Caller bool `koanf:"caller"`
}

// minJWTSecretLength is the minimum production JWT secret length. 32 bytes
// matches the HS256 key size recommendation.
const minJWTSecretLength = 32

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Validate checks that the configuration is internally consistent.
// Called automatically by LoadWithKoanf.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateUpstream(); err != nil {
		return err
	}
	if err := c.validateBreaker(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	switch strings.ToLower(c.Server.Environment) {
	case "development", "staging", "production":
		return nil
	default:
		return fmt.Errorf("server.environment must be development, staging, or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateUpstream() error {
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive, got %s", c.Upstream.Timeout)
	}
	if c.Upstream.RequestsPerSecond < 0 {
		return fmt.Errorf("upstream.requests_per_second must not be negative, got %f", c.Upstream.RequestsPerSecond)
	}
	if c.Upstream.RequestsPerSecond > 0 && c.Upstream.Burst < 1 {
		return fmt.Errorf("upstream.burst must be at least 1 when throttling is enabled, got %d", c.Upstream.Burst)
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if c.Breaker.FailureThreshold <= 0 || c.Breaker.FailureThreshold > 1 {
		return fmt.Errorf("breaker.failure_threshold must be in (0, 1], got %f", c.Breaker.FailureThreshold)
	}
	if c.Breaker.MinRequests == 0 {
		return fmt.Errorf("breaker.min_requests must be at least 1")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("security.session_timeout must be positive, got %s", c.Security.SessionTimeout)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.ConnectRateLimitReqs < 1 {
			return fmt.Errorf("security.connect_rate_limit_reqs must be at least 1, got %d", c.Security.ConnectRateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}

	// A missing secret is tolerated outside production (a random one is
	// generated at startup) but refused in production: sessions and encrypted
	// credentials must survive restarts there.
	if c.IsProduction() {
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("MEDIATOK_JWT_SECRET is required when MEDIATOK_ENVIRONMENT=production")
		}
		if len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("security.jwt_secret must be at least %d characters in production, got %d", minJWTSecretLength, len(c.Security.JWTSecret))
		}
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("api.default_page_size must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size (%d) must not be smaller than api.default_page_size (%d)", c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
