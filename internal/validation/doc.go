// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

// Package validation provides struct validation using go-playground/validator v10.
//
// A single thread-safe validator instance (struct metadata is cached) checks
// the API's request structs against their `validate` tags and translates
// failures into the VALIDATION_ERROR response shape the handlers use.
//
// # Usage
//
//	type ConnectRequest struct {
//	    URL        string `validate:"required,max=2048"`
//	    Username   string `validate:"max=255"`
//	    ServerType string `validate:"required,oneof=emby jellyfin plex"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Error Translation
//
// Human-readable messages are generated for the tags MediaTok uses:
//
//	required   -> "URL is required"
//	url        -> "URL must be a valid URL"
//	oneof=a b  -> "ServerType must be one of: a b"
//	min=1      -> "Limit must be at least 1"
//	max=100    -> "Limit must be at most 100"
//
// ToAPIError produces a single-field response with field/tag/value details,
// or a combined message plus a "fields" list when several fields fail:
//
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "ServerType must be one of: emby jellyfin plex",
//	    "details": {"field": "ServerType", "tag": "oneof", "value": "kodi"}
//	}
//
// # See Also
//
//   - internal/api: Request handlers using validation
//   - github.com/go-playground/validator/v10: Underlying library
package validation
