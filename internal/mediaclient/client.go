// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package mediaclient

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/mediatok/mediatok/internal/models"
)

// ImageType selects which artwork an image URL points at.
type ImageType string

// Image types understood by every adapter.
const (
	ImagePrimary  ImageType = "Primary"
	ImageBackdrop ImageType = "Backdrop"
)

// MediaClient is the capability interface implemented by every backend
// adapter. Implementations hold an immutable ServerConfig and perform no
// shared mutable state beyond it; every method that touches the network
// takes a context for cancellation.
type MediaClient interface {
	// Authenticate performs the backend login/handshake and returns the
	// session config to persist. Fails with *AuthError when credentials are
	// rejected or the server is unreachable.
	Authenticate(ctx context.Context, username, password string) (*models.ServerConfig, error)

	// GetLibraries enumerates the server's top-level libraries.
	// Fails with *FetchError on a non-2xx response.
	GetLibraries(ctx context.Context) ([]models.Library, error)

	// GetVerticalVideos fetches one page of the vertical feed. Every
	// returned item passes the vertical-video filter. NextStartIndex is the
	// cursor for the next call; its semantics are backend-specific but
	// always usable as the next skip value.
	GetVerticalVideos(ctx context.Context, parentID, libraryName string, feedType models.FeedType, skip, limit int) (*models.VideoResponse, error)

	// GetFavorites returns the set of favorited item IDs for a library.
	GetFavorites(ctx context.Context, libraryName string) (map[string]struct{}, error)

	// ToggleFavorite adds (isFavorite=false) or removes (isFavorite=true)
	// an item from the library's favorite set.
	ToggleFavorite(ctx context.Context, itemID string, isFavorite bool, libraryName string) error

	// VideoURL constructs a direct playback URL for an item. Never
	// performs I/O.
	VideoURL(item *models.MediaItem) string

	// ImageURL constructs a poster/backdrop URL. Never performs I/O.
	ImageURL(itemID, tag string, imageType ImageType) string

	// Config returns a copy of the held server config.
	Config() models.ServerConfig
}

// Compile-time interface checks for all adapters.
var (
	_ MediaClient = (*EmbyClient)(nil)
	_ MediaClient = (*PlexClient)(nil)
	_ MediaClient = (*BreakerClient)(nil)
)

// Options tunes adapter HTTP behavior. The zero value is usable.
type Options struct {
	// Timeout is the per-request HTTP timeout. Default: 30s.
	Timeout time.Duration

	// RequestsPerSecond throttles outbound calls to the media server.
	// Zero disables throttling.
	RequestsPerSecond float64

	// Burst is the outbound limiter burst size. Default: 5 when
	// RequestsPerSecond is set.
	Burst int

	// DeviceID identifies this installation to the media server. A random
	// ID is generated when empty.
	DeviceID string
}

// limiter builds the shared outbound rate limiter, or nil when throttling
// is disabled.
func (o Options) limiter() *rate.Limiter {
	if o.RequestsPerSecond <= 0 {
		return nil
	}
	burst := o.Burst
	if burst <= 0 {
		burst = 5
	}
	return rate.NewLimiter(rate.Limit(o.RequestsPerSecond), burst)
}

// timeout returns the effective HTTP timeout.
func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return 30 * time.Second
	}
	return o.Timeout
}

// waitLimiter blocks until the outbound limiter admits a request.
// A nil limiter admits immediately.
func waitLimiter(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}
