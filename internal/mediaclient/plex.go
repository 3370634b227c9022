// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

/*
plex.go - Plex Media Server adapter core

This file holds the PlexClient struct, its HTTP request plumbing, and the
identity/authentication/library operations. Feed paging lives in
plex_feed.go and the playlist-as-favorites emulation in plex_favorites.go.

Plex quirks handled here:
  - The "password" supplied at login is really an X-Plex-Token; it is
    validated against /identity rather than exchanged.
  - The server's machine identifier is required to build favorite-item URIs.
    It is stored as the config's UserID, with "1" as the unresolved sentinel;
    a lazy /identity re-fetch self-heals stale configs and tolerates both
    casing conventions of the response field. Resolution failure degrades to
    "1" instead of failing the operation.
  - HTTP 429 responses are retried with exponential backoff, honoring
    Retry-After when present.
*/

package mediaclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/mediatok/mediatok/internal/logging"
	"github.com/mediatok/mediatok/internal/metrics"
	"github.com/mediatok/mediatok/internal/models"
)

// plexUnresolvedMachineID is the sentinel stored when the machine
// identifier could not be resolved.
const plexUnresolvedMachineID = "1"

// PlexClient talks to a Plex Media Server using token authentication.
type PlexClient struct {
	baseURL    string
	token      string
	username   string
	httpClient *http.Client
	limiter    *rate.Limiter

	// machineID is the one mutable field: the lazy /identity re-resolve
	// can run from concurrent requests sharing a session's client.
	mu        sync.Mutex
	machineID string
}

// NewPlexClient creates an unauthenticated Plex client for the given
// server URL.
func NewPlexClient(baseURL string, opts Options) *PlexClient {
	return &PlexClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: opts.timeout()},
		limiter:    opts.limiter(),
	}
}

// NewPlexClientFromConfig reconstructs an authenticated client from a
// persisted session config. Performs no I/O.
func NewPlexClientFromConfig(cfg *models.ServerConfig, opts Options) *PlexClient {
	c := NewPlexClient(cfg.URL, opts)
	c.token = cfg.Token
	c.machineID = cfg.UserID
	c.username = cfg.Username
	return c
}

// plexIdentityResponse is the /identity envelope. Plex deployments disagree
// on the casing of the identifier field, so both spellings are decoded and
// the lowercase one wins when present.
type plexIdentityResponse struct {
	MediaContainer plexIdentityContainer `json:"MediaContainer"`
}

type plexIdentityContainer struct {
	MachineIdentifierLower string `json:"machineIdentifier"`
	MachineIdentifierUpper string `json:"MachineIdentifier"`
}

// identifier returns the machine identifier under either casing, or "".
func (c plexIdentityContainer) identifier() string {
	if c.MachineIdentifierLower != "" {
		return c.MachineIdentifierLower
	}
	return c.MachineIdentifierUpper
}

// plexSectionsResponse is the /library/sections envelope.
type plexSectionsResponse struct {
	MediaContainer struct {
		Directory []struct {
			Key   string `json:"key"`
			Title string `json:"title"`
			Type  string `json:"type"`
		} `json:"Directory"`
	} `json:"MediaContainer"`
}

// Authenticate validates the supplied password as an X-Plex-Token against
// /identity and stores the resolved machine identifier as the config's
// UserID for later favorite-URI construction. Username is cosmetic for
// Plex and defaults to "Plex User".
func (c *PlexClient) Authenticate(ctx context.Context, username, password string) (*models.ServerConfig, error) {
	token := password

	var identity plexIdentityResponse
	err := c.doRequest(ctx, plexRequest{
		op:         "authenticate",
		method:     http.MethodGet,
		path:       "/identity",
		token:      token,
		acceptJSON: true,
		expectOK:   true,
	}, &identity)
	if err != nil {
		return nil, newAuthError(models.ServerTypePlex, err)
	}

	machineID := identity.MediaContainer.identifier()
	if machineID == "" {
		machineID = plexUnresolvedMachineID
	}
	if username == "" {
		username = "Plex User"
	}

	c.token = token
	c.username = username
	c.mu.Lock()
	c.machineID = machineID
	c.mu.Unlock()

	return &models.ServerConfig{
		URL:        c.baseURL,
		Username:   username,
		UserID:     machineID,
		Token:      token,
		ServerType: models.ServerTypePlex,
	}, nil
}

// GetLibraries maps Plex library sections into the common library shape.
func (c *PlexClient) GetLibraries(ctx context.Context) ([]models.Library, error) {
	var sections plexSectionsResponse
	err := c.doRequest(ctx, plexRequest{
		op:         "libraries",
		method:     http.MethodGet,
		path:       "/library/sections",
		acceptJSON: true,
		expectOK:   true,
	}, &sections)
	if err != nil {
		return nil, err
	}

	libraries := make([]models.Library, 0, len(sections.MediaContainer.Directory))
	for _, d := range sections.MediaContainer.Directory {
		libraries = append(libraries, models.Library{
			ID:             d.Key,
			Name:           d.Title,
			CollectionType: d.Type,
		})
	}
	return libraries, nil
}

// Config returns a copy of the held session config.
func (c *PlexClient) Config() models.ServerConfig {
	c.mu.Lock()
	machineID := c.machineID
	c.mu.Unlock()

	return models.ServerConfig{
		URL:        c.baseURL,
		Username:   c.username,
		UserID:     machineID,
		Token:      c.token,
		ServerType: models.ServerTypePlex,
	}
}

// machineIdentifier returns the server's machine identifier, lazily
// re-fetching /identity when only the unresolved sentinel is stored.
// Resolution failure falls back to the sentinel; it never fails the
// calling operation. The lock is not held across the network call, so
// concurrent callers may each fetch /identity once; the fetch is
// idempotent and both store the same identifier.
func (c *PlexClient) machineIdentifier(ctx context.Context) string {
	c.mu.Lock()
	if c.machineID != "" && c.machineID != plexUnresolvedMachineID {
		id := c.machineID
		c.mu.Unlock()
		return id
	}
	c.mu.Unlock()

	var identity plexIdentityResponse
	err := c.doRequest(ctx, plexRequest{
		op:         "identity",
		method:     http.MethodGet,
		path:       "/identity",
		acceptJSON: true,
		expectOK:   true,
	}, &identity)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to resolve Plex machine identifier, using fallback")
		return plexUnresolvedMachineID
	}

	if id := identity.MediaContainer.identifier(); id != "" {
		c.mu.Lock()
		c.machineID = id
		c.mu.Unlock()
		return id
	}
	return plexUnresolvedMachineID
}

// plexRequest holds configuration for one Plex API request.
type plexRequest struct {
	op          string // metrics/error label
	method      string
	path        string
	query       url.Values
	token       string // overrides the client token when set
	acceptJSON  bool
	expectOK    bool // require HTTP 200
	expectNoErr bool // accept 200 and 204
	ignoreCode  bool // transport errors only; any status is accepted
}

// doRequest executes a Plex API request and optionally decodes the JSON
// response. Status failures become *FetchError.
func (c *PlexClient) doRequest(ctx context.Context, cfg plexRequest, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, cfg.method, c.baseURL+cfg.path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	token := cfg.token
	if token == "" {
		token = c.token
	}
	req.Header.Set("X-Plex-Token", token)
	if cfg.acceptJSON {
		req.Header.Set("Accept", "application/json")
	}
	if len(cfg.query) > 0 {
		req.URL.RawQuery = cfg.query.Encode()
	}

	if err := waitLimiter(ctx, c.limiter); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.doRequestWithRateLimit(req)
	if err != nil {
		metrics.RecordUpstreamRequest("plex", cfg.op, "error", time.Since(start))
		return &FetchError{Backend: models.ServerTypePlex, Op: cfg.op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordUpstreamRequest("plex", cfg.op, strconv.Itoa(resp.StatusCode), time.Since(start))

	switch {
	case cfg.ignoreCode:
		// Relaxed semantics: the caller treats any completed request as
		// success (Plex playlist DELETE).
	case cfg.expectNoErr:
		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
			return &FetchError{Backend: models.ServerTypePlex, Op: cfg.op, StatusCode: resp.StatusCode}
		}
	case cfg.expectOK:
		if resp.StatusCode != http.StatusOK {
			return &FetchError{Backend: models.ServerTypePlex, Op: cfg.op, StatusCode: resp.StatusCode}
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode %s response: %w", cfg.op, err)
		}
	}
	return nil
}

// doRequestWithRateLimit executes the request, retrying on HTTP 429 with
// exponential backoff (1s, 2s, 4s, 8s, 16s), honoring Retry-After.
func (c *PlexClient) doRequestWithRateLimit(req *http.Request) (*http.Response, error) {
	const maxRetries = 5
	baseDelay := 1 * time.Second

	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		_ = resp.Body.Close()

		if attempt == maxRetries {
			return nil, fmt.Errorf("rate limit exceeded after %d retries", maxRetries)
		}

		retryDelay := baseDelay * (1 << attempt)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				retryDelay = seconds
			}
		}

		logging.Warn().Dur("retry_delay", retryDelay).Int("attempt", attempt+1).Msg("Plex API rate limited (HTTP 429), retrying")

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("unreachable code: retry loop should return or error")
}
