// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

/*
Package mediaclient normalizes the Emby/Jellyfin and Plex REST APIs behind a
single feed/paging/favoriting contract.

# Architecture

The package is a closed set of tagged adapters behind one capability
interface:

  - MediaClient: the contract (authenticate, libraries, vertical feed pages,
    favorites, playback/image URL construction)
  - EmbyClient: Emby and Jellyfin (same wire protocol, different branding)
  - PlexClient: Plex, including its playlist-as-favorites emulation
  - BreakerClient: circuit-breaker decorator over any MediaClient
  - New/Connect/FromConfig: factory selection and authentication

Each adapter holds only its own immutable ServerConfig; there is no shared
mutable base state. All network operations take a context.Context and perform
exactly one logical API call (the Plex HTTP 429 backoff being the only
transport-level retry). URL constructors never perform I/O.

# Error taxonomy

  - *AuthError: rejected credentials/token or unreachable server during
    authentication. Carries a backend-specific user hint.
  - *FetchError: non-2xx on library or feed calls.
  - Silent degradation: Plex machine-identifier resolution failure, a missing
    favorites playlist, or a missing playlist entry on remove all resolve to
    safe defaults ("1", empty response, no-op) and are never surfaced as
    errors.

Nothing is retried at the operation level; retry policy belongs to callers.

# Vertical feed invariant

Every item returned by GetVerticalVideos satisfies height >= width*0.8 with
width > 0, regardless of backend. Cursor semantics differ per backend and per
feed type and are deliberately not unified; see the adapter documentation.
*/
package mediaclient
