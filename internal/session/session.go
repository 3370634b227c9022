// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package session

import (
	"context"
	"errors"
	"time"

	"github.com/mediatok/mediatok/internal/models"
)

var (
	// ErrSessionNotFound is returned when a session ID does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a session exists but has expired.
	ErrSessionExpired = errors.New("session expired")
)

// Session binds a browser to a connected media server. The embedded server
// config holds the backend credentials; its Token field is ciphertext while
// the session is at rest in the store.
type Session struct {
	ID             string              `json:"id"`
	Server         models.ServerConfig `json:"server"`
	CreatedAt      time.Time           `json:"createdAt"`
	LastAccessedAt time.Time           `json:"lastAccessedAt"`
	ExpiresAt      time.Time           `json:"expiresAt"`
}

// IsExpired reports whether the session's lifetime has run out.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store persists sessions. Implementations must treat expired sessions as
// absent on Get.
type Store interface {
	Create(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error

	// Touch updates LastAccessedAt and extends the expiry, implementing the
	// sliding session window.
	Touch(ctx context.Context, id string, newExpiry time.Time) error

	// CleanupExpired removes expired sessions and returns how many were
	// dropped.
	CleanupExpired(ctx context.Context) (int, error)

	Count(ctx context.Context) (int, error)
	Close() error
}
