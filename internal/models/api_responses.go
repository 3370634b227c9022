// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package models

import "time"

// APIResponse is the standardized response wrapper used by all HTTP
// endpoints.
//
// Example success:
//
//	{
//	  "status": "success",
//	  "data": {...},
//	  "metadata": {"timestamp": "2026-01-03T12:00:00Z"}
//	}
//
// Example error:
//
//	{
//	  "status": "error",
//	  "error": {"code": "AUTHENTICATION_ERROR", "message": "Invalid session"},
//	  "metadata": {"timestamp": "2026-01-03T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError carries a machine-readable code plus a human-readable message.
//
// Common codes:
//   - VALIDATION_ERROR: invalid input parameters
//   - AUTHENTICATION_ERROR: invalid or missing session token
//   - UPSTREAM_AUTH_ERROR: the media server rejected the credentials
//   - UPSTREAM_ERROR: the media server returned a failure
//   - UPSTREAM_UNAVAILABLE: circuit breaker open, backend considered down
//   - PAGE_IN_FLIGHT: a feed page request for the same cursor is running
//   - NOT_FOUND: resource does not exist
//   - RATE_LIMIT_EXCEEDED: too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
