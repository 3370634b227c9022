// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

/*
plex_feed.go - Plex feed paging, item mapping, and URL construction

Standard feeds (latest/random) use Plex's windowed paging headers with
container sizes tuned per feed type: 50 for latest, 80 for random. The wider
random window compensates for the post-fetch aspect-ratio filter reducing the
effective yield. The cursor advances by the UNFILTERED raw item count so it
tracks the server's paging state, not the client-filtered subset; unifying
the two would skip or duplicate items across pages.

Favorites feeds are served from the per-library playlist; see
plex_favorites.go.
*/

package mediaclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mediatok/mediatok/internal/models"
)

// Container sizes per feed type. Random fetches a wider window because the
// vertical filter discards an unpredictable share of each page.
const (
	plexContainerSizeLatest = 50
	plexContainerSizeRandom = 80
)

// plexLibraryResponse is the /library/sections/{id}/all envelope.
type plexLibraryResponse struct {
	MediaContainer struct {
		TotalSize int            `json:"totalSize"`
		Metadata  []plexMetadata `json:"Metadata"`
	} `json:"MediaContainer"`
}

// plexMetadata is one Plex media item as returned by library and playlist
// endpoints.
type plexMetadata struct {
	RatingKey      string      `json:"ratingKey"`
	Title          string      `json:"title"`
	Type           string      `json:"type"`
	Summary        string      `json:"summary"`
	Year           int         `json:"year"`
	Duration       int64       `json:"duration"` // milliseconds
	Thumb          string      `json:"thumb"`
	PlaylistItemID int         `json:"playlistItemID"`
	Media          []plexMedia `json:"Media"`
}

type plexMedia struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Part   []plexPart `json:"Part"`
}

type plexPart struct {
	Key string `json:"key"`
}

// GetVerticalVideos fetches one page of the vertical feed. Favorites are
// served from the per-library playlist; latest/random use windowed library
// paging with server-side sort.
func (c *PlexClient) GetVerticalVideos(ctx context.Context, parentID, libraryName string, feedType models.FeedType, skip, limit int) (*models.VideoResponse, error) {
	if feedType == models.FeedFavorites {
		return c.favoritesFeed(ctx, libraryName, skip, limit)
	}

	if parentID == "" {
		return &models.VideoResponse{Items: []models.MediaItem{}}, nil
	}

	size := plexContainerSizeLatest
	sort := "addedAt:desc"
	if feedType == models.FeedRandom {
		size = plexContainerSizeRandom
		sort = "random"
	}

	query := url.Values{}
	query.Set("type", "1")
	query.Set("sort", sort)
	query.Set("X-Plex-Container-Start", strconv.Itoa(skip))
	query.Set("X-Plex-Container-Size", strconv.Itoa(size))

	var page plexLibraryResponse
	err := c.doRequest(ctx, plexRequest{
		op:         "feed",
		method:     http.MethodGet,
		path:       "/library/sections/" + parentID + "/all",
		query:      query,
		acceptJSON: true,
		expectOK:   true,
	}, &page)
	if err != nil {
		return nil, err
	}

	raw := page.MediaContainer.Metadata
	mapped := mapPlexItems(raw)

	return &models.VideoResponse{
		Items: models.FilterVertical(mapped),
		// Cursor tracks the server's window, not the filtered subset.
		NextStartIndex: skip + len(raw),
		TotalCount:     page.MediaContainer.TotalSize,
	}, nil
}

// mapPlexItems converts Plex metadata entries into the common item shape.
// Duration converts from milliseconds to 100ns ticks so downstream time
// formatting stays backend-agnostic. The raw thumb path and first media
// part's key ride along as the opaque Plex extension.
func mapPlexItems(items []plexMetadata) []models.MediaItem {
	mapped := make([]models.MediaItem, 0, len(items))
	for _, p := range items {
		item := models.MediaItem{
			ID:             p.RatingKey,
			Name:           p.Title,
			Type:           p.Type,
			MediaType:      "Video",
			Overview:       p.Summary,
			ProductionYear: p.Year,
			RunTimeTicks:   p.Duration * 10_000,
			Plex:           &models.PlexExtension{Thumb: p.Thumb},
		}
		if len(p.Media) > 0 {
			item.Width = p.Media[0].Width
			item.Height = p.Media[0].Height
			if len(p.Media[0].Part) > 0 {
				item.Plex.PartKey = p.Media[0].Part[0].Key
			}
		}
		if p.Thumb != "" {
			item.ImageTags = map[string]string{"Primary": "true"}
		}
		mapped = append(mapped, item)
	}
	return mapped
}

// VideoURL prefers direct play via the stored media-part key; it falls back
// to an HLS universal-transcode URL when no part key is available. Both
// embed the token as a query parameter because header-token auth is
// unreliable for media byte-range requests behind some proxies.
func (c *PlexClient) VideoURL(item *models.MediaItem) string {
	if item.Plex != nil && item.Plex.PartKey != "" {
		return fmt.Sprintf("%s%s?X-Plex-Token=%s", c.baseURL, item.Plex.PartKey, url.QueryEscape(c.token))
	}

	return fmt.Sprintf("%s/video/:/transcode/universal/start?path=%s&mediaIndex=0&partIndex=0&protocol=hls&offset=0&fastSeek=1&directPlay=0&directStream=1&subtitleSize=100&audioBoost=100&X-Plex-Token=%s",
		c.baseURL, url.QueryEscape("/library/metadata/"+item.ID), url.QueryEscape(c.token))
}

// ImageURL always routes through the photo-transcode endpoint at a fixed
// 800x1200 target so bandwidth stays predictable regardless of source
// image size.
func (c *PlexClient) ImageURL(itemID, tag string, imageType ImageType) string {
	thumb := "/library/metadata/" + itemID + "/thumb"
	return fmt.Sprintf("%s/photo/:/transcode?url=%s&width=800&height=1200&X-Plex-Token=%s",
		c.baseURL, url.QueryEscape(thumb), url.QueryEscape(c.token))
}
