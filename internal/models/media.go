// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

/*
media.go - Common media data model

This file defines the backend-neutral shapes shared by every media-server
adapter: server connection config, libraries, feed items, and feed paging
responses. Adapters for Emby/Jellyfin and Plex map their wire formats into
these types so the feed layer and the HTTP API never see backend-specific
JSON.

Field naming follows the Emby JSON convention (PascalCase keys) because the
browser client was originally written against the Emby API and the common
item shape deliberately mirrors it.
*/

package models

// ServerType identifies which media-server backend a ServerConfig talks to.
type ServerType string

// Supported media-server backends.
const (
	ServerTypeEmby     ServerType = "emby"
	ServerTypeJellyfin ServerType = "jellyfin"
	ServerTypePlex     ServerType = "plex"
)

// Valid reports whether t is one of the supported backends.
func (t ServerType) Valid() bool {
	switch t {
	case ServerTypeEmby, ServerTypeJellyfin, ServerTypePlex:
		return true
	}
	return false
}

// ServerConfig holds the credentials and session data for one backend
// connection. It is immutable once authentication succeeds: reconnecting a
// stored session reconstructs a client from the same values.
//
// For Plex, Token is the X-Plex-Token and UserID stores the server's machine
// identifier ("1" when resolution failed and a lazy re-fetch is needed).
type ServerConfig struct {
	URL        string     `json:"url"`
	Username   string     `json:"username"`
	UserID     string     `json:"userId"`
	Token      string     `json:"token"`
	ServerType ServerType `json:"serverType"`
}

// Library is one top-level media library (Emby "view", Plex "section").
type Library struct {
	ID             string `json:"Id"`
	Name           string `json:"Name"`
	CollectionType string `json:"CollectionType,omitempty"`
}

// PlexExtension carries Plex-only opaque fields on a mapped MediaItem.
// Only the Plex adapter that produced the item interprets these values;
// they exist so playback and image URLs can be constructed later without
// another metadata round trip.
type PlexExtension struct {
	// Thumb is the raw thumbnail path (e.g. /library/metadata/123/thumb/456).
	Thumb string `json:"thumb,omitempty"`
	// PartKey is the first media part's stream key for direct play.
	PartKey string `json:"partKey,omitempty"`
}

// MediaItem is the common feed item shape produced by every adapter.
type MediaItem struct {
	ID             string            `json:"Id"`
	Name           string            `json:"Name"`
	Type           string            `json:"Type,omitempty"`
	MediaType      string            `json:"MediaType,omitempty"`
	Overview       string            `json:"Overview,omitempty"`
	ProductionYear int               `json:"ProductionYear,omitempty"`
	Width          int               `json:"Width,omitempty"`
	Height         int               `json:"Height,omitempty"`
	RunTimeTicks   int64             `json:"RunTimeTicks,omitempty"`
	ImageTags      map[string]string `json:"ImageTags,omitempty"`

	// Plex is the optional backend-extension field. Nil for Emby/Jellyfin
	// items. Never exposed through the HTTP API.
	Plex *PlexExtension `json:"-"`
}

// verticalAspectRatio is the minimum height/width ratio for an item to be
// considered portrait-ish enough for the vertical feed.
const verticalAspectRatio = 0.8

// IsVertical reports whether the item passes the vertical-video filter:
// height >= width*0.8 with a known, positive width. Items with unknown
// dimensions are excluded.
func (i *MediaItem) IsVertical() bool {
	return i.Width > 0 && float64(i.Height) >= float64(i.Width)*verticalAspectRatio
}

// RuntimeMinutes converts RunTimeTicks (100ns units) to whole minutes,
// rounded to nearest. Returns 0 when the runtime is unknown.
func (i *MediaItem) RuntimeMinutes() int {
	if i.RunTimeTicks <= 0 {
		return 0
	}
	const ticksPerMinute = 10_000_000 * 60
	return int((i.RunTimeTicks + ticksPerMinute/2) / ticksPerMinute)
}

// FilterVertical returns the items that pass the vertical-video filter,
// preserving order. The input slice is not modified.
func FilterVertical(items []MediaItem) []MediaItem {
	filtered := make([]MediaItem, 0, len(items))
	for i := range items {
		if items[i].IsVertical() {
			filtered = append(filtered, items[i])
		}
	}
	return filtered
}

// VideoResponse is one page of a vertical feed.
//
// NextStartIndex is the cursor callers pass as "skip" on the next call. Its
// exact semantics are backend- and feed-specific (Plex standard feeds advance
// by the unfiltered raw item count) but it is always monotonically usable.
type VideoResponse struct {
	Items          []MediaItem `json:"items"`
	NextStartIndex int         `json:"nextStartIndex"`
	TotalCount     int         `json:"totalCount"`
}

// FeedType governs sort order, page size, and cursor behavior of a feed.
type FeedType string

// Feed types supported by every adapter.
const (
	FeedLatest    FeedType = "latest"
	FeedRandom    FeedType = "random"
	FeedFavorites FeedType = "favorites"
)

// Valid reports whether t is a known feed type.
func (t FeedType) Valid() bool {
	switch t {
	case FeedLatest, FeedRandom, FeedFavorites:
		return true
	}
	return false
}
