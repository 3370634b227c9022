// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/mediatok/mediatok/internal/auth"
	"github.com/mediatok/mediatok/internal/cache"
	"github.com/mediatok/mediatok/internal/config"
	"github.com/mediatok/mediatok/internal/feed"
	"github.com/mediatok/mediatok/internal/logging"
	"github.com/mediatok/mediatok/internal/mediaclient"
	"github.com/mediatok/mediatok/internal/models"
	"github.com/mediatok/mediatok/internal/session"
)

// Handler owns the HTTP handlers and their collaborators.
type Handler struct {
	cfg      *config.Config
	sessions *session.Manager
	jwt      *auth.JWTManager
	feed     *feed.Service
	clients  *clientCache
	libCache *cache.Cache
	secLog   *logging.SecurityLogger

	startTime time.Time

	// connect performs the upstream authentication handshake. Defaults to
	// mediaclient.Connect; swappable in tests.
	connect connectFunc

	// readyCheck reports whether the session store is usable. Wired to
	// the store's Count in production; swappable in tests.
	readyCheck func(r *http.Request) error
}

// connectFunc matches mediaclient.Connect.
type connectFunc func(ctx context.Context, serverType models.ServerType, rawURL, username, password string, opts mediaclient.Options) (mediaclient.MediaClient, *models.ServerConfig, error)

// NewHandler wires the handler with its collaborators.
func NewHandler(cfg *config.Config, sessions *session.Manager, store session.Store, jwtMgr *auth.JWTManager, feedSvc *feed.Service) *Handler {
	return &Handler{
		cfg:       cfg,
		sessions:  sessions,
		jwt:       jwtMgr,
		feed:      feedSvc,
		clients:   newClientCache(),
		libCache:  cache.New(librariesCacheTTL),
		secLog:    logging.NewSecurityLogger(),
		startTime: time.Now(),
		connect:   mediaclient.Connect,
		readyCheck: func(r *http.Request) error {
			_, err := store.Count(r.Context())
			return err
		},
	}
}

// clientOptions builds the media-client HTTP options from config.
func (h *Handler) clientOptions() mediaclient.Options {
	return mediaclient.Options{
		Timeout:           h.cfg.Upstream.Timeout,
		RequestsPerSecond: h.cfg.Upstream.RequestsPerSecond,
		Burst:             h.cfg.Upstream.Burst,
	}
}

// breakerSettings builds the circuit breaker settings from config.
func (h *Handler) breakerSettings() mediaclient.BreakerSettings {
	return mediaclient.BreakerSettings{
		MaxRequests:      h.cfg.Breaker.MaxRequests,
		Interval:         h.cfg.Breaker.Interval,
		Timeout:          h.cfg.Breaker.Timeout,
		FailureThreshold: h.cfg.Breaker.FailureThreshold,
		MinRequests:      h.cfg.Breaker.MinRequests,
	}
}

// Connect authenticates against a media server and opens a session.
//
// On success the response carries a signed JWT plus the connected server's
// identity; the upstream token itself never leaves the server.
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", nil)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	serverType := models.ServerType(req.ServerType)
	if err := validateCredentialShape(serverType, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	client, serverCfg, err := h.connect(r.Context(), serverType, req.URL, req.Username, req.Password, h.clientOptions())
	if err != nil {
		h.secLog.LogLoginFailure(req.Username, string(serverType), clientIP(r), r.UserAgent(), "upstream authentication failed")
		respondUpstreamError(w, err)
		return
	}

	sess, err := h.sessions.Create(r.Context(), serverCfg)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to persist session", err)
		return
	}

	token, err := h.jwt.GenerateToken(sess.ID, serverCfg.Username, string(serverCfg.ServerType))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue token", err)
		return
	}

	// Cache the already-authenticated client so the first feed request
	// does not rebuild it.
	h.clients.put(sess.ID, mediaclient.NewBreakerClient(client, breakerName(sess.ID), h.breakerSettings()))

	h.secLog.LogLoginSuccess(serverCfg.UserID, serverCfg.Username, string(serverType), clientIP(r), r.UserAgent())
	h.secLog.LogSessionCreated(serverCfg.UserID, sess.ID, string(serverType), clientIP(r))

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"username":   serverCfg.Username,
		"serverType": serverCfg.ServerType,
		"url":        serverCfg.URL,
	})
}

// validateCredentialShape enforces the backend-specific credential rules
// the validator tags cannot express.
func validateCredentialShape(serverType models.ServerType, req *ConnectRequest) error {
	switch serverType {
	case models.ServerTypePlex:
		if req.Password == "" {
			return errPlexTokenRequired
		}
	default:
		if req.Username == "" {
			return errUsernameRequired
		}
	}
	return nil
}

// Logout revokes the session behind the presented token. Idempotent: a
// second logout with the same token still returns success.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "Authentication required", nil)
		return
	}

	if err := h.sessions.Revoke(r.Context(), claims.SessionID); err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to revoke session", err)
		return
	}
	h.clients.forget(claims.SessionID)
	h.libCache.Delete(librariesCacheKey(claims.SessionID))

	h.secLog.LogLogout(claims.Username, claims.SessionID, clientIP(r))

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"loggedOut": true,
	})
}

// librariesCacheTTL bounds how stale a cached library listing can get.
const librariesCacheTTL = time.Minute

func librariesCacheKey(sessionID string) string {
	return cache.GenerateKey("libraries", sessionID)
}

// breakerName derives a bounded-cardinality breaker label from a session ID.
func breakerName(sessionID string) string {
	return "session-" + logging.SanitizeSessionID(sessionID)
}

// clientIP extracts the caller address for security logging. RealIP
// middleware has already folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	return r.RemoteAddr
}

// clientCache holds one breaker-wrapped media client per session so
// breaker state survives across requests. Entries are evicted on logout
// and when a session fails to resolve.
type clientCache struct {
	mu sync.Mutex
	m  map[string]*mediaclient.BreakerClient
}

func newClientCache() *clientCache {
	return &clientCache{m: make(map[string]*mediaclient.BreakerClient)}
}

func (c *clientCache) get(sessionID string) (*mediaclient.BreakerClient, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	client, ok := c.m[sessionID]
	return client, ok
}

func (c *clientCache) put(sessionID string, client *mediaclient.BreakerClient) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[sessionID] = client
}

func (c *clientCache) forget(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, sessionID)
}
