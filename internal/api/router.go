// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediatok/mediatok/internal/middleware"
)

// Router assembles the HTTP surface from the handler and the middleware
// factory.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter builds a router around the given handler and middleware
// factory.
func NewRouter(handler *Handler, cm *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: cm,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware stack, applied to all routes in order. CORS must
	// be global to handle OPTIONS preflight.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(router.chiMiddleware.CORS())

	// Health endpoints: permissive rate limiting so monitoring can poll
	// frequently.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Authentication endpoints. Connect forwards credentials upstream and
	// gets the strictest rate limit.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.With(router.chiMiddleware.RateLimitConnect()).Post("/connect", router.handler.Connect)
		r.With(router.chiMiddleware.RateLimit(), router.handler.Authenticate).Post("/logout", router.handler.Logout)
	})

	// Core feed endpoints. All require a valid session.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.handler.Authenticate)

		r.Get("/libraries", router.handler.Libraries)
		r.Get("/feed", router.handler.Feed)
		r.Get("/favorites", router.handler.Favorites)
		r.Post("/favorites/toggle", router.handler.ToggleFavorite)
	})

	// Observability
	r.Handle("/metrics", promhttp.Handler())

	return r
}
