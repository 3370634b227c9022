// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - HTTP API latency and throughput
  - Upstream media-server request performance (per backend and operation)
  - Circuit breaker state transitions
  - Session store activity
  - Feed paging and vertical-filter yield

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8200/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Upstream Metrics:
  - upstream_requests_total: Requests to media servers (counter)
    Labels: backend (emby, jellyfin, plex), operation, status
  - upstream_request_duration_seconds: Upstream latency (histogram)
    Labels: backend, operation

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests through the breaker (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_state_transitions_total: State transitions (counter)
    Labels: name, from_state, to_state

Session Metrics:
  - sessions_active: Active media server sessions (gauge)
  - session_operations_total: Store operations (counter)
    Labels: operation (create, get, delete), result (ok, miss, error)

Feed Metrics:
  - feed_pages_served_total: Feed pages served (counter)
    Labels: backend, feed_type
  - feed_vertical_items_per_page: Post-filter page yield (histogram)
    Labels: backend, feed_type
  - favorite_toggles_total: Favorite add/remove operations (counter)
    Labels: backend, action

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use route patterns, never raw paths with IDs
  - Upstream operations are fixed constants per adapter
  - Session and user identifiers never appear as labels

# See Also

  - internal/middleware: HTTP middleware with metrics integration
  - internal/mediaclient: upstream request and breaker metrics recording
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
