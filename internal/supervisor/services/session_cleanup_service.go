// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package services

import (
	"context"
	"time"

	"github.com/mediatok/mediatok/internal/logging"
)

// SessionCleaner removes expired sessions from the store. Defined here to
// avoid an import cycle with the session package; satisfied by
// *session.Manager.
type SessionCleaner interface {
	CleanupExpired(ctx context.Context) (int, error)
}

// SessionCleanupService periodically sweeps expired sessions as a supervised
// service. Errors from individual sweeps are logged, not returned, so a
// flaky store read does not trip the supervisor's restart budget.
type SessionCleanupService struct {
	cleaner  SessionCleaner
	interval time.Duration
	name     string
}

// NewSessionCleanupService creates a cleanup service sweeping at the given
// interval.
func NewSessionCleanupService(cleaner SessionCleaner, interval time.Duration) *SessionCleanupService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SessionCleanupService{
		cleaner:  cleaner,
		interval: interval,
		name:     "session-cleanup",
	}
}

// Serve implements suture.Service.
func (s *SessionCleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.cleaner.CleanupExpired(ctx); err != nil {
				logging.Warn().Err(err).Msg("Session cleanup failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *SessionCleanupService) String() string {
	return s.name
}
