// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

/*
Package middleware provides HTTP middleware for the MediaTok API.

Two chi-compatible middlewares live here:

  - RequestID: UUID-based request tracking for distributed tracing. Honors
    X-Request-ID from upstream proxies, echoes the ID in the response, and
    seeds the logging context so every log line of a request carries the
    request and correlation IDs.
  - PrometheusMetrics: request count, latency histogram, and in-flight gauge
    per route pattern and status code.

Both are mounted router-wide in internal/api; CORS, rate limiting, and
compression come from the chi ecosystem (go-chi/cors, go-chi/httprate,
chi/middleware.Compress) and are configured there.

Usage:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Thread Safety:

Both middlewares are stateless apart from context values and Prometheus
collectors, which handle their own synchronization.

See Also:

  - internal/api: router wiring and the remaining middleware stack
  - internal/metrics: Prometheus metric definitions
*/
package middleware
