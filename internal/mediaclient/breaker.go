// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package mediaclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mediatok/mediatok/internal/logging"
	"github.com/mediatok/mediatok/internal/metrics"
	"github.com/mediatok/mediatok/internal/models"
)

// BreakerSettings tunes the circuit breaker around a media client.
// Zero values fall back to production defaults.
type BreakerSettings struct {
	// MaxRequests allowed through in half-open state. Default: 3.
	MaxRequests uint32
	// Interval resets failure counts in closed state. Default: 1m.
	Interval time.Duration
	// Timeout before transitioning open -> half-open. Default: 2m.
	Timeout time.Duration
	// FailureThreshold is the failure ratio that trips the breaker.
	// Default: 0.6.
	FailureThreshold float64
	// MinRequests before the threshold is evaluated. Default: 10.
	MinRequests uint32
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	if s.MaxRequests == 0 {
		s.MaxRequests = 3
	}
	if s.Interval == 0 {
		s.Interval = time.Minute
	}
	if s.Timeout == 0 {
		s.Timeout = 2 * time.Minute
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 0.6
	}
	if s.MinRequests == 0 {
		s.MinRequests = 10
	}
	return s
}

// BreakerClient wraps a MediaClient with the circuit breaker pattern so a
// slow or unreachable media server cannot pile up requests. URL
// construction and config access pass straight through: they perform no
// I/O and must keep working while the circuit is open.
//
// Rejected credentials count as successes for tripping purposes: an
// *AuthError means the server answered, and a user mistyping a password
// should not open the circuit for everyone else.
type BreakerClient struct {
	inner MediaClient
	cb    *gobreaker.CircuitBreaker[interface{}]
	name  string
}

// NewBreakerClient wraps client with a named circuit breaker.
func NewBreakerClient(client MediaClient, name string, settings BreakerSettings) *BreakerClient {
	settings = settings.withDefaults()

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= settings.FailureThreshold
			if shouldTrip {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var authErr *AuthError
			return errors.As(err, &authErr)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := breakerStateString(from)
			toStr := breakerStateString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &BreakerClient{inner: client, cb: cb, name: name}
}

// execute runs fn under the breaker and records request metrics.
func (b *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return result, nil
}

// castResult type-casts a breaker result with error checking.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// Authenticate performs the login handshake with breaker protection.
func (b *BreakerClient) Authenticate(ctx context.Context, username, password string) (*models.ServerConfig, error) {
	return castResult[*models.ServerConfig](b.execute(func() (interface{}, error) {
		return b.inner.Authenticate(ctx, username, password)
	}))
}

// GetLibraries lists libraries with breaker protection.
func (b *BreakerClient) GetLibraries(ctx context.Context) ([]models.Library, error) {
	return castResult[[]models.Library](b.execute(func() (interface{}, error) {
		return b.inner.GetLibraries(ctx)
	}))
}

// GetVerticalVideos fetches a feed page with breaker protection.
func (b *BreakerClient) GetVerticalVideos(ctx context.Context, parentID, libraryName string, feedType models.FeedType, skip, limit int) (*models.VideoResponse, error) {
	return castResult[*models.VideoResponse](b.execute(func() (interface{}, error) {
		return b.inner.GetVerticalVideos(ctx, parentID, libraryName, feedType, skip, limit)
	}))
}

// GetFavorites fetches the favorite-id set with breaker protection.
func (b *BreakerClient) GetFavorites(ctx context.Context, libraryName string) (map[string]struct{}, error) {
	return castResult[map[string]struct{}](b.execute(func() (interface{}, error) {
		return b.inner.GetFavorites(ctx, libraryName)
	}))
}

// ToggleFavorite toggles favorite state with breaker protection.
func (b *BreakerClient) ToggleFavorite(ctx context.Context, itemID string, isFavorite bool, libraryName string) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.inner.ToggleFavorite(ctx, itemID, isFavorite, libraryName)
	})
	return err
}

// VideoURL passes through: no I/O, never gated by the breaker.
func (b *BreakerClient) VideoURL(item *models.MediaItem) string {
	return b.inner.VideoURL(item)
}

// ImageURL passes through: no I/O, never gated by the breaker.
func (b *BreakerClient) ImageURL(itemID, tag string, imageType ImageType) string {
	return b.inner.ImageURL(itemID, tag, imageType)
}

// Config passes through to the wrapped client.
func (b *BreakerClient) Config() models.ServerConfig {
	return b.inner.Config()
}

func breakerStateFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
