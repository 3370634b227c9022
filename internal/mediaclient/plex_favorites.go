// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

/*
plex_favorites.go - Playlist-as-favorites emulation

Plex has no per-item favorite primitive usable outside its own apps, so
favorites are emulated with one dedicated playlist per library, named
"Tok-<libraryName>" and lazily created on the first add. The invariant is
one playlist == one library's favorite set.

Plex's playlist search fuzzy-matches titles, so every lookup re-checks for
an exact title match to avoid cross-library collisions. Plex appends new
playlist entries at the end, so the favorites feed fetches the whole
playlist, filters, REVERSES (newest favorite first), then slices
client-side. A missing playlist means "no favorites yet", never an error.

Removal needs the playlist-specific entry id, not the item's rating key:
the playlist's items are re-fetched to resolve it, and a missing entry
(already removed, or a race with another client) is a silent no-op. The
read-then-act sequence is unguarded; a concurrent toggle from another
session can produce a stale no-op, which is accepted.
*/

package mediaclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mediatok/mediatok/internal/logging"
	"github.com/mediatok/mediatok/internal/models"
)

// plexFavoritesPlaylistPrefix names the per-library favorites playlists.
const plexFavoritesPlaylistPrefix = "Tok-"

// plexPlaylistContainerSize bounds playlist fetches. Plex appends new
// favorites at the end, so the whole playlist must be visible.
const plexPlaylistContainerSize = 2000

// plexPlaylistsResponse is the /playlists search envelope.
type plexPlaylistsResponse struct {
	MediaContainer struct {
		Metadata []plexPlaylist `json:"Metadata"`
	} `json:"MediaContainer"`
}

type plexPlaylist struct {
	RatingKey string `json:"ratingKey"`
	Title     string `json:"title"`
}

// plexPlaylistItemsResponse is the /playlists/{key}/items envelope.
type plexPlaylistItemsResponse struct {
	MediaContainer struct {
		Metadata []plexMetadata `json:"Metadata"`
	} `json:"MediaContainer"`
}

// playlistTitle returns the favorites playlist name for a library.
func playlistTitle(libraryName string) string {
	return plexFavoritesPlaylistPrefix + libraryName
}

// findPlaylist resolves the library's favorites playlist by exact title,
// or nil when it does not exist. Lookup failures degrade to "not found".
func (c *PlexClient) findPlaylist(ctx context.Context, libraryName string) *plexPlaylist {
	title := playlistTitle(libraryName)

	query := url.Values{}
	query.Set("title", title)

	var playlists plexPlaylistsResponse
	err := c.doRequest(ctx, plexRequest{
		op:         "find_playlist",
		method:     http.MethodGet,
		path:       "/playlists",
		query:      query,
		acceptJSON: true,
		expectOK:   true,
	}, &playlists)
	if err != nil {
		logging.Debug().Err(err).Str("title", title).Msg("Plex playlist lookup failed")
		return nil
	}

	// The search fuzzy-matches, so insist on an exact title.
	for i := range playlists.MediaContainer.Metadata {
		if playlists.MediaContainer.Metadata[i].Title == title {
			return &playlists.MediaContainer.Metadata[i]
		}
	}
	return nil
}

// playlistItems fetches the playlist's full entry list.
func (c *PlexClient) playlistItems(ctx context.Context, ratingKey string) ([]plexMetadata, error) {
	query := url.Values{}
	query.Set("X-Plex-Container-Start", "0")
	query.Set("X-Plex-Container-Size", strconv.Itoa(plexPlaylistContainerSize))

	var items plexPlaylistItemsResponse
	err := c.doRequest(ctx, plexRequest{
		op:         "playlist_items",
		method:     http.MethodGet,
		path:       "/playlists/" + ratingKey + "/items",
		query:      query,
		acceptJSON: true,
		expectOK:   true,
	}, &items)
	if err != nil {
		return nil, err
	}
	return items.MediaContainer.Metadata, nil
}

// favoritesFeed serves a feed page from the per-library playlist: fetch
// all, filter vertical, reverse so the most recently favorited item comes
// first, then slice skip/limit client-side.
func (c *PlexClient) favoritesFeed(ctx context.Context, libraryName string, skip, limit int) (*models.VideoResponse, error) {
	empty := &models.VideoResponse{Items: []models.MediaItem{}}

	playlist := c.findPlaylist(ctx, libraryName)
	if playlist == nil {
		return empty, nil
	}

	raw, err := c.playlistItems(ctx, playlist.RatingKey)
	if err != nil {
		// "No favorites yet" rather than a feed failure.
		logging.Debug().Err(err).Msg("Plex playlist fetch failed, returning empty favorites feed")
		return empty, nil
	}

	filtered := models.FilterVertical(mapPlexItems(raw))
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}

	from := skip
	if from > len(filtered) {
		from = len(filtered)
	}
	to := skip + limit
	if to > len(filtered) {
		to = len(filtered)
	}

	return &models.VideoResponse{
		Items:          filtered[from:to],
		NextStartIndex: skip + limit,
		TotalCount:     len(filtered),
	}, nil
}

// GetFavorites returns the rating keys currently in the library's
// favorites playlist. A missing playlist or failed lookup yields an empty
// set.
func (c *PlexClient) GetFavorites(ctx context.Context, libraryName string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	playlist := c.findPlaylist(ctx, libraryName)
	if playlist == nil {
		return ids, nil
	}

	items, err := c.playlistItems(ctx, playlist.RatingKey)
	if err != nil {
		logging.Debug().Err(err).Msg("Plex playlist fetch failed, returning empty favorites set")
		return ids, nil
	}

	for i := range items {
		ids[items[i].RatingKey] = struct{}{}
	}
	return ids, nil
}

// ToggleFavorite adds the item to the library's favorites playlist
// (creating the playlist with the item as its sole entry when absent, in a
// single request) or removes it by playlist-entry id. isFavorite is the
// item's current state: true requests removal.
func (c *PlexClient) ToggleFavorite(ctx context.Context, itemID string, isFavorite bool, libraryName string) error {
	playlist := c.findPlaylist(ctx, libraryName)
	machineID := c.machineIdentifier(ctx)
	itemURI := "server://" + machineID + "/com.plexapp.plugins.library/library/metadata/" + itemID

	if isFavorite {
		return c.removeFavorite(ctx, playlist, itemID)
	}
	return c.addFavorite(ctx, playlist, libraryName, itemURI)
}

// addFavorite PUTs onto an existing playlist or POSTs a new playlist with
// the item as its initial entry, avoiding a create-then-add race.
func (c *PlexClient) addFavorite(ctx context.Context, playlist *plexPlaylist, libraryName, itemURI string) error {
	// Some Plex deployments require the token as a query parameter on
	// mutating requests; the header is still sent.
	if playlist != nil {
		query := url.Values{}
		query.Set("uri", itemURI)
		query.Set("X-Plex-Token", c.token)
		return c.doRequest(ctx, plexRequest{
			op:          "favorite_add",
			method:      http.MethodPut,
			path:        "/playlists/" + playlist.RatingKey + "/items",
			query:       query,
			acceptJSON:  true,
			expectNoErr: true,
		}, nil)
	}

	query := url.Values{}
	query.Set("type", "video")
	query.Set("title", playlistTitle(libraryName))
	query.Set("smart", "0")
	query.Set("uri", itemURI)
	query.Set("X-Plex-Token", c.token)
	return c.doRequest(ctx, plexRequest{
		op:          "favorite_create",
		method:      http.MethodPost,
		path:        "/playlists",
		query:       query,
		acceptJSON:  true,
		expectNoErr: true,
	}, nil)
}

// removeFavorite resolves the playlist-entry id for the item and deletes
// it. Missing playlist or entry is a silent no-op. The DELETE response
// status is deliberately not inspected, matching the relaxed semantics the
// feature shipped with.
func (c *PlexClient) removeFavorite(ctx context.Context, playlist *plexPlaylist, itemID string) error {
	if playlist == nil {
		return nil
	}

	items, err := c.playlistItems(ctx, playlist.RatingKey)
	if err != nil {
		// Lookup failure degrades to a no-op, same as a missing entry.
		logging.Debug().Err(err).Msg("Plex playlist fetch failed during favorite removal")
		return nil
	}

	var entryID int
	for i := range items {
		if items[i].RatingKey == itemID && items[i].PlaylistItemID != 0 {
			entryID = items[i].PlaylistItemID
			break
		}
	}
	if entryID == 0 {
		return nil
	}

	query := url.Values{}
	query.Set("X-Plex-Token", c.token)
	return c.doRequest(ctx, plexRequest{
		op:         "favorite_remove",
		method:     http.MethodDelete,
		path:       "/playlists/" + playlist.RatingKey + "/items/" + strconv.Itoa(entryID),
		query:      query,
		acceptJSON: true,
		ignoreCode: true,
	}, nil)
}
