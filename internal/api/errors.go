// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package api

import (
	"errors"
	"net/http"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mediatok/mediatok/internal/feed"
	"github.com/mediatok/mediatok/internal/mediaclient"
)

// Credential shape errors surfaced as VALIDATION_ERROR messages.
var (
	errPlexTokenRequired = errors.New("password (X-Plex-Token) is required for Plex")
	errUsernameRequired  = errors.New("username is required for Emby and Jellyfin")
)

// respondUpstreamError translates media-client and feed errors into the
// API error taxonomy:
//
//   - open circuit breaker        -> 503 UPSTREAM_UNAVAILABLE
//   - in-flight page for cursor   -> 409 PAGE_IN_FLIGHT
//   - rejected credentials        -> 401 UPSTREAM_AUTH_ERROR
//   - upstream non-2xx / timeout  -> 502 UPSTREAM_ERROR
//
// Anything else is a plain 500. Error detail is logged, never echoed to
// the client verbatim beyond the generic message.
func respondUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Media server is temporarily unavailable", err)
	case errors.Is(err, feed.ErrPageInFlight):
		respondError(w, http.StatusConflict, "PAGE_IN_FLIGHT", "A page request for this feed is already in flight", nil)
	case isAuthError(err):
		respondError(w, http.StatusUnauthorized, "UPSTREAM_AUTH_ERROR", "Media server rejected the credentials", err)
	case isFetchError(err):
		respondError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Media server request failed", err)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", err)
	}
}

func isAuthError(err error) bool {
	var authErr *mediaclient.AuthError
	return errors.As(err, &authErr)
}

func isFetchError(err error) bool {
	var fetchErr *mediaclient.FetchError
	return errors.As(err, &fetchErr)
}
