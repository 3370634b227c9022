// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

// Package feed turns raw MediaClient pages into the responses the swipe UI
// consumes: vertical items enriched with playable stream and poster URLs, a
// cursor for the next page, and a hasMore flag.
//
// Cursor semantics are backend-specific and deliberately not unified here;
// the package treats NextStartIndex as opaque and only derives hasMore from
// it. The service also enforces the contract the clients themselves do not:
// at most one in-flight page request per feed cursor.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mediatok/mediatok/internal/logging"
	"github.com/mediatok/mediatok/internal/mediaclient"
	"github.com/mediatok/mediatok/internal/metrics"
	"github.com/mediatok/mediatok/internal/models"
)

// ErrPageInFlight is returned when a page is requested for a cursor that
// already has a request running. Callers should drop the request rather
// than queue it; the client retries on the next swipe.
var ErrPageInFlight = errors.New("a page request for this feed is already in flight")

// Item is a feed entry with resolved URLs. The embedded MediaItem keeps the
// backend-agnostic shape; StreamURL and PosterURL are built by the owning
// client without I/O.
type Item struct {
	models.MediaItem
	StreamURL      string `json:"streamUrl"`
	PosterURL      string `json:"posterUrl"`
	RuntimeMinutes int    `json:"runtimeMinutes"`
}

// Page is one served feed page.
type Page struct {
	Items          []Item `json:"items"`
	NextStartIndex int    `json:"nextStartIndex"`
	TotalCount     int    `json:"totalCount"`
	HasMore        bool   `json:"hasMore"`
}

// Request describes one page fetch.
type Request struct {
	ParentID    string
	LibraryName string
	FeedType    models.FeedType
	Skip        int
	Limit       int
}

// Service fetches and enriches feed pages. It is shared across sessions;
// per-cursor state is keyed by the caller-provided cursor key.
type Service struct {
	defaultPageSize int
	maxPageSize     int

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService builds a feed service with the configured page size bounds.
func NewService(defaultPageSize, maxPageSize int) *Service {
	return &Service{
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		inFlight:        make(map[string]struct{}),
	}
}

// FetchPage fetches one vertical feed page through the given client.
// cursorKey identifies the feed cursor (session + library + feed type); a
// second request for the same key while one is running fails fast with
// ErrPageInFlight.
func (s *Service) FetchPage(ctx context.Context, client mediaclient.MediaClient, cursorKey string, req Request) (*Page, error) {
	if !req.FeedType.Valid() {
		return nil, fmt.Errorf("unknown feed type %q", req.FeedType)
	}

	if err := s.acquire(cursorKey); err != nil {
		return nil, err
	}
	defer s.release(cursorKey)

	req = s.clamp(req)

	resp, err := client.GetVerticalVideos(ctx, req.ParentID, req.LibraryName, req.FeedType, req.Skip, req.Limit)
	if err != nil {
		return nil, err
	}

	backend := string(client.Config().ServerType)
	metrics.RecordFeedPage(backend, string(req.FeedType), len(resp.Items))

	logging.Ctx(ctx).Debug().
		Str("backend", backend).
		Str("feed_type", string(req.FeedType)).
		Int("skip", req.Skip).
		Int("items", len(resp.Items)).
		Int("next", resp.NextStartIndex).
		Msg("Feed page served")

	return &Page{
		Items:          enrich(client, resp.Items),
		NextStartIndex: resp.NextStartIndex,
		TotalCount:     resp.TotalCount,
		HasMore:        hasMore(req.Skip, resp),
	}, nil
}

// acquire marks a cursor as busy.
func (s *Service) acquire(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[key]; busy {
		return ErrPageInFlight
	}
	s.inFlight[key] = struct{}{}
	return nil
}

func (s *Service) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, key)
}

// clamp bounds skip and limit to sane values.
func (s *Service) clamp(req Request) Request {
	if req.Skip < 0 {
		req.Skip = 0
	}
	if req.Limit <= 0 {
		req.Limit = s.defaultPageSize
	}
	if req.Limit > s.maxPageSize {
		req.Limit = s.maxPageSize
	}
	return req
}

// hasMore reports whether another page can follow this one. The cursor must
// have advanced (an empty raw window means the feed is drained) and must
// still be short of the backend's total.
func hasMore(skip int, resp *models.VideoResponse) bool {
	return resp.NextStartIndex > skip && resp.NextStartIndex < resp.TotalCount
}

// enrich resolves stream and poster URLs for each item. URL construction is
// pure string templating on the client, never I/O.
func enrich(client mediaclient.MediaClient, items []models.MediaItem) []Item {
	enriched := make([]Item, 0, len(items))
	for i := range items {
		item := items[i]
		enriched = append(enriched, Item{
			MediaItem:      item,
			StreamURL:      client.VideoURL(&item),
			PosterURL:      client.ImageURL(item.ID, item.ImageTags["Primary"], mediaclient.ImagePrimary),
			RuntimeMinutes: item.RuntimeMinutes(),
		})
	}
	return enriched
}
