// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mediatok/mediatok/internal/auth"
	"github.com/mediatok/mediatok/internal/logging"
	"github.com/mediatok/mediatok/internal/mediaclient"
	"github.com/mediatok/mediatok/internal/session"
)

type authContextKey string

const (
	claimsContextKey authContextKey = "claims"
	clientContextKey authContextKey = "media_client"
)

// GetClaims returns the validated token claims for the request, or nil
// outside the Authenticate middleware.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims
}

// GetClient returns the session's media client, or nil outside the
// Authenticate middleware.
func GetClient(ctx context.Context) mediaclient.MediaClient {
	client, _ := ctx.Value(clientContextKey).(mediaclient.MediaClient)
	return client
}

// Authenticate validates the Bearer token, resolves the session it names,
// and attaches the session's circuit-breaker-wrapped media client to the
// request context. 401s never distinguish between a bad token and a
// missing session.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Authentication required", nil)
			return
		}

		claims, err := h.jwt.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Invalid or expired session", nil)
			return
		}

		client, err := h.clientForSession(r.Context(), claims.SessionID)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) || errors.Is(err, session.ErrSessionExpired) {
				h.clients.forget(claims.SessionID)
				respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Invalid or expired session", nil)
				return
			}
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to resolve session", err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		ctx = context.WithValue(ctx, clientContextKey, client)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientForSession returns the cached breaker client for the session,
// rebuilding it from the persisted ServerConfig on a cache miss (process
// restart, eviction). Resolving also slides the session expiry.
func (h *Handler) clientForSession(ctx context.Context, sessionID string) (*mediaclient.BreakerClient, error) {
	serverCfg, err := h.sessions.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if client, ok := h.clients.get(sessionID); ok {
		return client, nil
	}

	inner, err := mediaclient.FromConfig(serverCfg, h.clientOptions())
	if err != nil {
		return nil, err
	}

	client := mediaclient.NewBreakerClient(inner, breakerName(sessionID), h.breakerSettings())
	h.clients.put(sessionID, client)
	return client, nil
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
