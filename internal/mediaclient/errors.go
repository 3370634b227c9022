// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

// Package mediaclient error taxonomy.
//
// errors.go - AuthError and FetchError definitions
package mediaclient

import (
	"fmt"

	"github.com/mediatok/mediatok/internal/models"
)

// AuthError reports a failed backend authentication: rejected credentials or
// token, an unreachable host, or a CORS-blocked browser request surfacing as
// a network failure. Hint carries backend-specific wording for the user
// (Plex users are told to re-enter their X-Plex-Token, not a password).
type AuthError struct {
	Backend models.ServerType
	Hint    string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s authentication failed: %v", e.Backend, e.Err)
	}
	return fmt.Sprintf("%s authentication failed", e.Backend)
}

func (e *AuthError) Unwrap() error { return e.Err }

// newAuthError builds an AuthError with the backend's default hint.
func newAuthError(backend models.ServerType, err error) *AuthError {
	hint := "Connection failed. Check the address and credentials, and make sure the server allows cross-origin requests."
	if backend == models.ServerTypePlex {
		hint = "Plex connection failed. Make sure you are using a valid X-Plex-Token as the password."
	}
	return &AuthError{Backend: backend, Hint: hint, Err: err}
}

// FetchError reports a failed library or feed call: a non-2xx response or a
// transport failure outside of authentication.
type FetchError struct {
	Backend    models.ServerType
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s returned status %d", e.Backend, e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Backend, e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
