// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

// Package logging provides centralized zerolog-based structured logging for MediaTok.
//
// The package exposes a global logger configured once at startup, a
// context-aware logger that carries request and correlation IDs, an slog
// adapter for the supervisor tree, and a security logger that sanitizes
// credentials and identifiers before they reach the log stream.
//
// # Quick Start
//
//	import "github.com/mediatok/mediatok/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("backend", "plex").Msg("Client connected")
//	logging.Error().Err(err).Int("code", 500).Msg("Request failed")
//
//	// Context-aware logging in handlers and services
//	logging.Ctx(ctx).Debug().Str("library", libID).Msg("Serving feed page")
//
// # Configuration
//
// Levels: trace, debug, info, warn, error, fatal, panic (default: info).
// Formats: json for production, console for development (default: json).
//
// # Structured Logging
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Prefer structured fields over string formatting:
//
//	logging.Info().Str("user", username).Int("count", n).Msg("Items served")
//
// # Context-Aware Logging
//
// The request ID middleware seeds each request's context with a request ID
// and a fresh correlation ID. Ctx picks both up so every log line of a
// request is correlatable:
//
//	logging.Ctx(r.Context()).Info().Msg("Processing request")
//	// {"level":"info","correlation_id":"abc12345","request_id":"...","message":"Processing request"}
//
// # slog Adapter
//
// NewSlogLogger returns an slog.Logger backed by zerolog, used to route
// sutureslog supervisor events through the same pipeline:
//
//	slogger := logging.NewSlogLogger()
//
// # Security Logging
//
// Authentication events go through SecurityLogger, which masks tokens,
// session IDs, usernames, and emails before logging:
//
//	secLog := logging.NewSecurityLogger()
//	secLog.LogLoginFailure(username, "plex", clientIP, userAgent, "upstream rejected token")
//
// # Thread Safety
//
// All exported functions are safe for concurrent use. The global logger
// is protected by sync.RWMutex for configuration changes.
//
// # See Also
//
//   - github.com/rs/zerolog: Underlying logging library
//   - internal/middleware: Request ID middleware for correlation
//   - internal/supervisor: Suture tree logging via the slog adapter
package logging
