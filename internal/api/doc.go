// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

/*
Package api provides the HTTP surface of MediaTok: a chi router exposing
connect/logout, library listing, the vertical feed, favorites, and health
probes, plus the middleware factories the router is assembled from.

# Endpoints

	POST /api/v1/auth/connect     authenticate against a media server, returns a JWT
	POST /api/v1/auth/logout      revoke the session behind the presented JWT
	GET  /api/v1/libraries        list the server's top-level libraries
	GET  /api/v1/feed             one page of the vertical feed (parentId, library, feedType, skip, limit)
	GET  /api/v1/favorites        favorited item IDs for a library
	POST /api/v1/favorites/toggle add or remove a favorite
	GET  /api/v1/health/live      liveness probe
	GET  /api/v1/health/ready     readiness probe (session store check)
	GET  /metrics                 Prometheus metrics

All JSON responses use the models.APIResponse envelope. Errors carry a
machine-readable code (see models.APIError) so the UI can branch on
UPSTREAM_AUTH_ERROR vs UPSTREAM_UNAVAILABLE without string matching.

# Authentication

/connect exchanges media-server credentials for a signed JWT whose subject
is a session ID. The session stores the upstream ServerConfig (token
encrypted at rest); every authenticated request resolves the session and is
served through a per-session circuit-breaker-wrapped media client.

# Middleware

CORS (go-chi/cors) and rate limiting (go-chi/httprate) come from factories
in this package; request IDs and Prometheus instrumentation come from
internal/middleware. Connect gets a stricter rate limit than the rest of
the API to slow credential stuffing.
*/
package api
