// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

// Package session persists connected media server sessions.
//
// A session is created when a browser connects to its Emby, Jellyfin, or
// Plex server and holds everything needed to rebuild a backend client later:
// URL, username, user/machine ID, token, and server type. Sessions live in
// BadgerDB (or in memory for tests and throwaway deployments) and the token
// is encrypted with AES-256-GCM before it is stored; see encryption.go.
//
// The Manager is the only entry point the API layer uses: Create on connect,
// Resolve on every authenticated request (which also slides the expiry
// window forward), and Revoke on logout. A background cleanup routine drops
// expired sessions and keeps the active-sessions gauge honest.
package session
