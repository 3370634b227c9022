// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package api

import (
	"net/http"
	"sort"

	"github.com/mediatok/mediatok/internal/feed"
	"github.com/mediatok/mediatok/internal/logging"
	"github.com/mediatok/mediatok/internal/metrics"
	"github.com/mediatok/mediatok/internal/models"
)

// Libraries lists the connected server's top-level libraries. Listings are
// cached per session for a short TTL since libraries rarely change.
func (h *Handler) Libraries(w http.ResponseWriter, r *http.Request) {
	client := GetClient(r.Context())
	claims := GetClaims(r.Context())

	cacheKey := librariesCacheKey(claims.SessionID)
	if cached, ok := h.libCache.Get(cacheKey); ok {
		if libraries, ok := cached.([]models.Library); ok {
			respondSuccess(w, http.StatusOK, map[string]interface{}{
				"libraries": libraries,
			})
			return
		}
	}

	libraries, err := client.GetLibraries(r.Context())
	if err != nil {
		respondUpstreamError(w, err)
		return
	}
	h.libCache.Set(cacheKey, libraries)

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"libraries": libraries,
	})
}

// Feed serves one page of the vertical feed.
//
// Query parameters: parentId (library ID), library (library name, used by
// the favorites feed), feedType (latest|random|favorites), skip, limit.
// The page-size clamp and single-in-flight enforcement live in the feed
// service.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	client := GetClient(r.Context())
	claims := GetClaims(r.Context())

	query := FeedQuery{
		ParentID: r.URL.Query().Get("parentId"),
		Library:  r.URL.Query().Get("library"),
		FeedType: r.URL.Query().Get("feedType"),
		Skip:     getIntParam(r, "skip", 0),
		Limit:    getIntParam(r, "limit", 0),
	}
	if query.FeedType == "" {
		query.FeedType = string(models.FeedLatest)
	}

	if apiErr := validateRequest(&query); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	cursorKey := claims.SessionID + "|" + query.ParentID + "|" + query.FeedType
	page, err := h.feed.FetchPage(r.Context(), client, cursorKey, feed.Request{
		ParentID:    query.ParentID,
		LibraryName: query.Library,
		FeedType:    models.FeedType(query.FeedType),
		Skip:        query.Skip,
		Limit:       query.Limit,
	})
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, page)
}

// Favorites returns the favorited item IDs for a library, sorted for a
// stable response shape.
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	client := GetClient(r.Context())
	library := r.URL.Query().Get("library")

	favorites, err := client.GetFavorites(r.Context(), library)
	if err != nil {
		respondUpstreamError(w, err)
		return
	}

	itemIDs := make([]string, 0, len(favorites))
	for id := range favorites {
		itemIDs = append(itemIDs, id)
	}
	sort.Strings(itemIDs)

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"itemIds": itemIDs,
	})
}

// ToggleFavorite adds or removes a favorite. IsFavorite carries the
// item's current state, so true requests a removal.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	client := GetClient(r.Context())

	var req ToggleFavoriteRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", nil)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if err := client.ToggleFavorite(r.Context(), req.ItemID, req.IsFavorite, req.Library); err != nil {
		respondUpstreamError(w, err)
		return
	}

	backend := string(client.Config().ServerType)
	metrics.RecordFavoriteToggle(backend, !req.IsFavorite)
	logging.Ctx(r.Context()).Debug().
		Str("backend", backend).
		Str("item_id", sanitizeLogValue(req.ItemID)).
		Bool("was_favorite", req.IsFavorite).
		Msg("Favorite toggled")

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"itemId":     req.ItemID,
		"isFavorite": !req.IsFavorite,
	})
}
