// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediatok/mediatok/internal/logging"
	"github.com/mediatok/mediatok/internal/metrics"
	"github.com/mediatok/mediatok/internal/models"
)

// Manager is the session layer's public surface: it creates sessions with
// encrypted tokens, resolves session IDs back to usable server configs, and
// keeps the store free of expired entries.
type Manager struct {
	store     Store
	encryptor *TokenEncryptor
	timeout   time.Duration
}

// NewManager wires a store and encryptor together. timeout is the sliding
// session lifetime.
func NewManager(store Store, encryptor *TokenEncryptor, timeout time.Duration) *Manager {
	return &Manager{
		store:     store,
		encryptor: encryptor,
		timeout:   timeout,
	}
}

// Create persists a new session for a freshly authenticated server config.
// The token is encrypted before it reaches the store; the returned session
// carries the ciphertext.
func (m *Manager) Create(ctx context.Context, server *models.ServerConfig) (*Session, error) {
	encrypted, err := m.encryptor.Encrypt(server.Token)
	if err != nil {
		metrics.RecordSessionOperation("create", "error")
		return nil, fmt.Errorf("encrypt token: %w", err)
	}

	now := time.Now()
	sess := &Session{
		ID:             uuid.NewString(),
		Server:         *server,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(m.timeout),
	}
	sess.Server.Token = encrypted

	if err := m.store.Create(ctx, sess); err != nil {
		metrics.RecordSessionOperation("create", "error")
		return nil, fmt.Errorf("store session: %w", err)
	}

	metrics.RecordSessionOperation("create", "success")
	metrics.SessionsActive.Inc()

	logging.Ctx(ctx).Debug().
		Str("session_id", logging.SanitizeSessionID(sess.ID)).
		Str("backend", string(server.ServerType)).
		Msg("Session created")

	return sess, nil
}

// Resolve returns the decrypted server config for a session ID and slides
// the session's expiry forward.
func (m *Manager) Resolve(ctx context.Context, id string) (*models.ServerConfig, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		metrics.RecordSessionOperation("resolve", "error")
		return nil, err
	}

	token, err := m.encryptor.Decrypt(sess.Server.Token)
	if err != nil {
		// Wrong or rotated secret; the stored session is unusable.
		metrics.RecordSessionOperation("resolve", "error")
		return nil, fmt.Errorf("decrypt token: %w", err)
	}

	// Sliding window: active sessions stay alive. A failed touch is not
	// worth failing the request over.
	if err := m.store.Touch(ctx, id, time.Now().Add(m.timeout)); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("session_id", logging.SanitizeSessionID(id)).
			Msg("Failed to extend session expiry")
	}

	metrics.RecordSessionOperation("resolve", "success")

	server := sess.Server
	server.Token = token
	return &server, nil
}

// Revoke deletes a session. Revoking an unknown session is not an error.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		metrics.RecordSessionOperation("revoke", "error")
		return err
	}

	metrics.RecordSessionOperation("revoke", "success")
	m.syncGauge(ctx)
	return nil
}

// CleanupExpired drops expired sessions and realigns the gauge. Returns the
// number of sessions removed.
func (m *Manager) CleanupExpired(ctx context.Context) (int, error) {
	count, err := m.store.CleanupExpired(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logging.Info().Int("count", count).Msg("Expired sessions removed")
	}
	m.syncGauge(ctx)
	return count, nil
}

// StartCleanupRoutine periodically drops expired sessions until ctx ends.
func (m *Manager) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.CleanupExpired(ctx); err != nil {
					logging.Warn().Err(err).Msg("Session cleanup failed")
				}
			}
		}
	}()
}

// SyncGauge aligns the active-sessions gauge with the store. Called once at
// startup so restarts report persisted sessions.
func (m *Manager) SyncGauge(ctx context.Context) {
	m.syncGauge(ctx)
}

func (m *Manager) syncGauge(ctx context.Context) {
	count, err := m.store.Count(ctx)
	if err != nil {
		return
	}
	metrics.SessionsActive.Set(float64(count))
}
