// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package mediaclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/mediatok/mediatok/internal/models"
)

// NormalizeURL prepends http:// when the address has no scheme, matching
// what users type into the login form.
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		return "http://" + trimmed
	}
	return trimmed
}

// New builds the adapter matching the server-type tag, unauthenticated.
// Jellyfin reuses the Emby adapter; the two speak the same wire protocol.
func New(serverType models.ServerType, rawURL string, opts Options) (MediaClient, error) {
	url := NormalizeURL(rawURL)
	switch serverType {
	case models.ServerTypeEmby, models.ServerTypeJellyfin:
		return NewEmbyClient(url, serverType, opts), nil
	case models.ServerTypePlex:
		return NewPlexClient(url, opts), nil
	default:
		return nil, fmt.Errorf("unsupported server type %q", serverType)
	}
}

// Connect builds the matching adapter and authenticates it, returning the
// ready client and the session config to persist.
func Connect(ctx context.Context, serverType models.ServerType, rawURL, username, password string, opts Options) (MediaClient, *models.ServerConfig, error) {
	client, err := New(serverType, rawURL, opts)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := client.Authenticate(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// FromConfig reconstructs an authenticated client from a persisted session
// config without any network I/O.
func FromConfig(cfg *models.ServerConfig, opts Options) (MediaClient, error) {
	switch cfg.ServerType {
	case models.ServerTypeEmby, models.ServerTypeJellyfin:
		return NewEmbyClientFromConfig(cfg, opts), nil
	case models.ServerTypePlex:
		return NewPlexClientFromConfig(cfg, opts), nil
	default:
		return nil, fmt.Errorf("unsupported server type %q", cfg.ServerType)
	}
}
