// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

// Package main is the entry point for the MediaTok server.
//
// MediaTok turns an Emby, Jellyfin, or Plex library into a vertical
// swipe feed of short videos. The server is a thin session-holding proxy:
// the browser authenticates against its own media server through MediaTok,
// and MediaTok streams feed pages, favorites, and playback URLs on its
// behalf without ever exposing the upstream token to the client.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables over config file over defaults (Koanf v2)
//  2. Session store: BadgerDB-backed persistent sessions with encrypted upstream tokens
//  3. Authentication: JWT session tokens signed with the configured secret
//  4. Feed service: paginated vertical-video feeds with single-flight page fetches
//  5. HTTP server: REST API under /api/v1 plus Prometheus /metrics
//
// All long-running work (HTTP server, expired-session sweeps) runs under a
// suture supervisor tree with automatic restart and graceful shutdown.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config.yaml, built-in defaults.
// Common settings:
//
//   - MEDIATOK_HTTP_PORT: listen port (default 8200)
//   - MEDIATOK_JWT_SECRET: 32+ character secret for token signing
//   - MEDIATOK_STORE_PATH: session store directory
//   - MEDIATOK_CORS_ORIGINS: allowed browser origins
//
// Outside production an empty JWT secret is replaced with a random one at
// startup; sessions then do not survive a restart.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting new connections, drains in-flight requests (10s timeout), and
// closes the session store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediatok/mediatok/internal/api"
	"github.com/mediatok/mediatok/internal/auth"
	"github.com/mediatok/mediatok/internal/config"
	"github.com/mediatok/mediatok/internal/feed"
	"github.com/mediatok/mediatok/internal/logging"
	"github.com/mediatok/mediatok/internal/session"
	"github.com/mediatok/mediatok/internal/supervisor"
	"github.com/mediatok/mediatok/internal/supervisor/services"
)

const sessionCleanupInterval = 5 * time.Minute

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting MediaTok")
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("store_path", cfg.Store.Path).
		Bool("store_in_memory", cfg.Store.InMemory).
		Msg("Configuration loaded")

	// Config validation already rejects an empty secret in production.
	if cfg.Security.JWTSecret == "" {
		secret, err := auth.GenerateRandomSecret()
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to generate JWT secret")
		}
		cfg.Security.JWTSecret = secret
		logging.Warn().Msg("No JWT secret configured; generated a random one. Sessions will not survive a restart.")
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	store, err := session.OpenBadgerStore(cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()
	logging.Info().Msg("Session store opened")

	encryptor, err := session.NewTokenEncryptor(cfg.Security.JWTSecret)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token encryption")
	}
	if err := encryptor.ValidateEncryptionSetup(); err != nil {
		logging.Fatal().Err(err).Msg("Token encryption self-check failed")
	}

	sessions := session.NewManager(store, encryptor, cfg.Security.SessionTimeout)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Align the active-sessions gauge with whatever survived the restart.
	sessions.SyncGauge(ctx)

	feedService := feed.NewService(cfg.API.DefaultPageSize, cfg.API.MaxPageSize)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (MEDIATOK_DISABLE_RATE_LIMIT=true)")
		logging.Warn().Msg("This should only be used for local development and tests!")
	}
	if len(cfg.Security.CORSOrigins) == 0 {
		logging.Info().Msg("No CORS origins configured; cross-origin browser requests will be rejected")
	}

	handler := api.NewHandler(cfg, sessions, store, jwtManager, feedService)
	chiMiddleware := api.NewChiMiddlewareFromConfig(&cfg.Security)
	router := api.NewRouter(handler, chiMiddleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewSessionCleanupService(sessions, sessionCleanupInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel until the supervisor finishes.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
