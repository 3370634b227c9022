// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

/*
Package services provides suture.Service wrappers for MediaTok components.

Each wrapper translates a component's native lifecycle into suture's
context-aware Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

HTTPServerService wraps *http.Server, starting ListenAndServe in a goroutine
and draining connections via Shutdown when the context is canceled.

SessionCleanupService runs the periodic expired-session sweep against the
session manager, logging sweep errors instead of returning them so transient
store failures do not exhaust the supervisor's restart budget.

Wrappers define their dependency interfaces locally (HTTPServer,
SessionCleaner) to stay mockable and avoid import cycles.
*/
package services
