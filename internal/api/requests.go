// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package api

// ConnectRequest is the login payload for POST /api/v1/auth/connect.
//
// Field requirements differ per backend: Emby/Jellyfin need a username
// (password may be blank for passwordless accounts); Plex takes an
// X-Plex-Token in the password field and the username is optional. The
// backend-specific checks live in the handler since validator tags cannot
// express them.
type ConnectRequest struct {
	URL        string `json:"url" validate:"required,max=2048"`
	Username   string `json:"username" validate:"max=255"`
	Password   string `json:"password" validate:"max=1024"`
	ServerType string `json:"serverType" validate:"required,oneof=emby jellyfin plex"`
}

// FeedQuery is the parsed query string for GET /api/v1/feed.
type FeedQuery struct {
	ParentID string `validate:"max=255"`
	Library  string `validate:"max=255"`
	FeedType string `validate:"required,oneof=latest random favorites"`
	Skip     int    `validate:"min=0"`
	Limit    int    `validate:"min=0,max=100"`
}

// ToggleFavoriteRequest is the payload for POST /api/v1/favorites/toggle.
// IsFavorite reflects the item's current state: true means the item is
// favorited now and should be removed.
type ToggleFavoriteRequest struct {
	ItemID     string `json:"itemId" validate:"required,max=255"`
	IsFavorite bool   `json:"isFavorite"`
	Library    string `json:"library" validate:"max=255"`
}
