// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

/*
emby.go - Emby/Jellyfin REST API adapter

One adapter serves both Emby and Jellyfin: the wire protocol is identical,
only the ServerType tag on the resulting config differs. Authentication
exchanges username/password for an access token and user id; feed fetching
uses server-side paging (StartIndex/Limit) and server-side sort, with the
vertical-aspect filter applied client-side because the Items API has no
aspect-ratio query parameter.

Cursor semantics: NextStartIndex is always skip+limit; callers detect the
end of the feed by comparing it against TotalCount.

API Reference: https://dev.emby.media/doc/restapi/index.html
*/

package mediaclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/mediatok/mediatok/internal/metrics"
	"github.com/mediatok/mediatok/internal/models"
)

// embyFavoritesPageSize bounds the id-only favorites lookup. Personal
// favorite sets are small; one page is enough in practice.
const embyFavoritesPageSize = 1000

// EmbyClient talks to an Emby or Jellyfin server.
type EmbyClient struct {
	baseURL    string
	serverType models.ServerType
	token      string
	userID     string
	username   string
	deviceID   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewEmbyClient creates an unauthenticated Emby/Jellyfin client for the
// given server URL. serverType must be emby or jellyfin.
func NewEmbyClient(baseURL string, serverType models.ServerType, opts Options) *EmbyClient {
	deviceID := opts.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	return &EmbyClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serverType: serverType,
		deviceID:   deviceID,
		httpClient: &http.Client{Timeout: opts.timeout()},
		limiter:    opts.limiter(),
	}
}

// NewEmbyClientFromConfig reconstructs an authenticated client from a
// persisted session config. Performs no I/O.
func NewEmbyClientFromConfig(cfg *models.ServerConfig, opts Options) *EmbyClient {
	c := NewEmbyClient(cfg.URL, cfg.ServerType, opts)
	c.token = cfg.Token
	c.userID = cfg.UserID
	c.username = cfg.Username
	return c
}

// embyAuthResponse is the AuthenticateByName response subset we need.
type embyAuthResponse struct {
	AccessToken string `json:"AccessToken"`
	User        struct {
		ID   string `json:"Id"`
		Name string `json:"Name"`
	} `json:"User"`
}

// embyItemsResponse is the Users/{id}/Items paged envelope.
type embyItemsResponse struct {
	Items            []models.MediaItem `json:"Items"`
	TotalRecordCount int                `json:"TotalRecordCount"`
}

// Authenticate exchanges username/password for an access token and user id.
func (c *EmbyClient) Authenticate(ctx context.Context, username, password string) (*models.ServerConfig, error) {
	body, err := json.Marshal(map[string]string{
		"Username": username,
		"Pw":       password,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Users/AuthenticateByName", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	if err := waitLimiter(ctx, c.limiter); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(string(c.serverType), "authenticate", "error", time.Since(start))
		return nil, newAuthError(c.serverType, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordUpstreamRequest(string(c.serverType), "authenticate", strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, newAuthError(c.serverType, fmt.Errorf("authenticate returned status %d", resp.StatusCode))
	}

	var auth embyAuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
		return nil, newAuthError(c.serverType, fmt.Errorf("decode auth response: %w", err))
	}

	c.token = auth.AccessToken
	c.userID = auth.User.ID
	c.username = auth.User.Name

	return &models.ServerConfig{
		URL:        c.baseURL,
		Username:   auth.User.Name,
		UserID:     auth.User.ID,
		Token:      auth.AccessToken,
		ServerType: c.serverType,
	}, nil
}

// GetLibraries lists the user's views (top-level libraries).
func (c *EmbyClient) GetLibraries(ctx context.Context) ([]models.Library, error) {
	var views struct {
		Items []models.Library `json:"Items"`
	}
	if err := c.doJSONRequest(ctx, "libraries", "/Users/"+c.userID+"/Views", nil, &views); err != nil {
		return nil, err
	}
	return views.Items, nil
}

// GetVerticalVideos fetches one feed page with server-side paging and sort.
// The vertical-aspect filter runs client-side on the returned page; the
// cursor still advances by the requested limit so server paging state is
// preserved.
func (c *EmbyClient) GetVerticalVideos(ctx context.Context, parentID, libraryName string, feedType models.FeedType, skip, limit int) (*models.VideoResponse, error) {
	query := url.Values{}
	query.Set("Recursive", "true")
	query.Set("IncludeItemTypes", "Movie,Video")
	query.Set("Fields", "Overview,Width,Height,ProductionYear")
	query.Set("StartIndex", strconv.Itoa(skip))
	query.Set("Limit", strconv.Itoa(limit))
	if parentID != "" {
		query.Set("ParentId", parentID)
	}

	switch feedType {
	case models.FeedRandom:
		query.Set("SortBy", "Random")
	case models.FeedFavorites:
		query.Set("Filters", "IsFavorite")
		query.Set("SortBy", "DateCreated")
		query.Set("SortOrder", "Descending")
	default:
		query.Set("SortBy", "DateCreated")
		query.Set("SortOrder", "Descending")
	}

	var page embyItemsResponse
	if err := c.doJSONRequest(ctx, "feed", "/Users/"+c.userID+"/Items", query, &page); err != nil {
		return nil, err
	}

	return &models.VideoResponse{
		Items:          models.FilterVertical(page.Items),
		NextStartIndex: skip + limit,
		TotalCount:     page.TotalRecordCount,
	}, nil
}

// GetFavorites returns the ids of the user's favorited items. Emby marks
// favorites per item, so the library name is not needed for the lookup.
func (c *EmbyClient) GetFavorites(ctx context.Context, libraryName string) (map[string]struct{}, error) {
	query := url.Values{}
	query.Set("Recursive", "true")
	query.Set("Filters", "IsFavorite")
	query.Set("Limit", strconv.Itoa(embyFavoritesPageSize))

	var page embyItemsResponse
	if err := c.doJSONRequest(ctx, "favorites", "/Users/"+c.userID+"/Items", query, &page); err != nil {
		return nil, err
	}

	ids := make(map[string]struct{}, len(page.Items))
	for i := range page.Items {
		ids[page.Items[i].ID] = struct{}{}
	}
	return ids, nil
}

// ToggleFavorite flips native per-item favorite marking: POST adds,
// DELETE removes.
func (c *EmbyClient) ToggleFavorite(ctx context.Context, itemID string, isFavorite bool, libraryName string) error {
	method := http.MethodPost
	if isFavorite {
		method = http.MethodDelete
	}

	endpoint := "/Users/" + c.userID + "/FavoriteItems/" + itemID
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	if err := waitLimiter(ctx, c.limiter); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(string(c.serverType), "toggle_favorite", "error", time.Since(start))
		return &FetchError{Backend: c.serverType, Op: "toggle favorite", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordUpstreamRequest(string(c.serverType), "toggle_favorite", strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return &FetchError{Backend: c.serverType, Op: "toggle favorite", StatusCode: resp.StatusCode}
	}
	return nil
}

// VideoURL builds a direct-play stream URL embedding the access token.
func (c *EmbyClient) VideoURL(item *models.MediaItem) string {
	return fmt.Sprintf("%s/Videos/%s/stream.mp4?Static=true&api_key=%s&DeviceId=%s",
		c.baseURL, item.ID, url.QueryEscape(c.token), url.QueryEscape(c.deviceID))
}

// ImageURL builds a poster/backdrop URL from the item id and image tag.
func (c *EmbyClient) ImageURL(itemID, tag string, imageType ImageType) string {
	return fmt.Sprintf("%s/Items/%s/Images/%s?tag=%s&quality=90",
		c.baseURL, itemID, imageType, url.QueryEscape(tag))
}

// Config returns a copy of the held session config.
func (c *EmbyClient) Config() models.ServerConfig {
	return models.ServerConfig{
		URL:        c.baseURL,
		Username:   c.username,
		UserID:     c.userID,
		Token:      c.token,
		ServerType: c.serverType,
	}
}

// setHeaders applies the Emby client-identity and auth headers.
func (c *EmbyClient) setHeaders(req *http.Request) {
	req.Header.Set("X-Emby-Authorization",
		fmt.Sprintf(`MediaBrowser Client="MediaTok", Device="MediaTok", DeviceId="%s", Version="1.0.0"`, c.deviceID))
	if c.token != "" {
		req.Header.Set("X-Emby-Token", c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
}

// doJSONRequest performs a GET against the Emby API and decodes the JSON
// response into result. Non-200 responses become *FetchError.
func (c *EmbyClient) doJSONRequest(ctx context.Context, op, endpoint string, query url.Values, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	c.setHeaders(req)

	if err := waitLimiter(ctx, c.limiter); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(string(c.serverType), op, "error", time.Since(start))
		return &FetchError{Backend: c.serverType, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordUpstreamRequest(string(c.serverType), op, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return &FetchError{Backend: c.serverType, Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}
