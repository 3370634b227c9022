// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/mediatok/mediatok/internal/auth"
	"github.com/mediatok/mediatok/internal/config"
	"github.com/mediatok/mediatok/internal/feed"
	"github.com/mediatok/mediatok/internal/mediaclient"
	"github.com/mediatok/mediatok/internal/models"
	"github.com/mediatok/mediatok/internal/session"
)

// fakeClient is a canned MediaClient for handler tests.
type fakeClient struct {
	cfg       models.ServerConfig
	libraries []models.Library
	page      *models.VideoResponse
	favorites map[string]struct{}

	librariesErr   error
	pageErr        error
	toggleErr      error
	librariesCalls int

	toggledID   string
	toggledFrom bool
}

func (f *fakeClient) Authenticate(_ context.Context, _, _ string) (*models.ServerConfig, error) {
	cfg := f.cfg
	return &cfg, nil
}

func (f *fakeClient) GetLibraries(_ context.Context) ([]models.Library, error) {
	f.librariesCalls++
	return f.libraries, f.librariesErr
}

func (f *fakeClient) GetVerticalVideos(_ context.Context, _, _ string, _ models.FeedType, _, _ int) (*models.VideoResponse, error) {
	if f.pageErr != nil {
		return nil, f.pageErr
	}
	return f.page, nil
}

func (f *fakeClient) GetFavorites(_ context.Context, _ string) (map[string]struct{}, error) {
	return f.favorites, nil
}

func (f *fakeClient) ToggleFavorite(_ context.Context, itemID string, isFavorite bool, _ string) error {
	if f.toggleErr != nil {
		return f.toggleErr
	}
	f.toggledID = itemID
	f.toggledFrom = isFavorite
	return nil
}

func (f *fakeClient) VideoURL(item *models.MediaItem) string {
	return "http://media.test/stream/" + item.ID
}

func (f *fakeClient) ImageURL(itemID, _ string, _ mediaclient.ImageType) string {
	return "http://media.test/image/" + itemID
}

func (f *fakeClient) Config() models.ServerConfig {
	return f.cfg
}

// testEnv bundles a wired handler with its fake upstream.
type testEnv struct {
	router http.Handler
	client *fakeClient
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Security: config.SecurityConfig{
			JWTSecret:            strings.Repeat("s", 32),
			SessionTimeout:       time.Hour,
			RateLimitReqs:        1000,
			RateLimitWindow:      time.Minute,
			RateLimitDisabled:    true,
			ConnectRateLimitReqs: 1000,
			CORSOrigins:          []string{"*"},
		},
		API: config.APIConfig{
			DefaultPageSize: 30,
			MaxPageSize:     100,
		},
	}
	return cfg
}

func verticalTestItem(id string) models.MediaItem {
	return models.MediaItem{
		ID:           id,
		Name:         "clip " + id,
		Width:        1080,
		Height:       1920,
		RunTimeTicks: 600_000_000,
		ImageTags:    map[string]string{"Primary": "tag-" + id},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := session.OpenBadgerStore(config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := testConfig()
	encryptor, err := session.NewTokenEncryptor(cfg.Security.JWTSecret)
	if err != nil {
		t.Fatalf("NewTokenEncryptor() error = %v", err)
	}
	sessions := session.NewManager(store, encryptor, cfg.Security.SessionTimeout)

	jwtMgr, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	client := &fakeClient{
		cfg: models.ServerConfig{
			URL:        "http://media.test",
			Username:   "alice",
			UserID:     "user-1",
			Token:      "upstream-token",
			ServerType: models.ServerTypeEmby,
		},
		libraries: []models.Library{
			{ID: "lib-1", Name: "Shorts", CollectionType: "homevideos"},
		},
		page: &models.VideoResponse{
			Items:          []models.MediaItem{verticalTestItem("v1"), verticalTestItem("v2")},
			NextStartIndex: 2,
			TotalCount:     10,
		},
		favorites: map[string]struct{}{"v2": {}, "v1": {}},
	}

	handler := NewHandler(cfg, sessions, store, jwtMgr, feed.NewService(cfg.API.DefaultPageSize, cfg.API.MaxPageSize))
	handler.connect = func(ctx context.Context, serverType models.ServerType, rawURL, username, password string, _ mediaclient.Options) (mediaclient.MediaClient, *models.ServerConfig, error) {
		if password == "wrong" {
			return nil, nil, &mediaclient.AuthError{Backend: serverType}
		}
		return client.authenticateForConnect(ctx, username, password)
	}

	router := NewRouter(handler, NewChiMiddlewareFromConfig(&cfg.Security))
	return &testEnv{router: router.Setup(), client: client}
}

// Authenticate on fakeClient returns only the config; wrap so connect can
// hand back the client too.
func (f *fakeClient) authenticateForConnect(ctx context.Context, username, password string) (mediaclient.MediaClient, *models.ServerConfig, error) {
	cfg, err := f.Authenticate(ctx, username, password)
	return f, cfg, err
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
	}
	return rec, &env
}

func connectAndGetToken(t *testing.T, env *testEnv) string {
	t.Helper()

	rec, resp := doRequest(t, env.router, http.MethodPost, "/api/v1/auth/connect", "", ConnectRequest{
		URL:        "http://media.test",
		Username:   "alice",
		Password:   "secret",
		ServerType: "emby",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("connect status = %d, body %s", rec.Code, rec.Body.String())
	}

	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal connect data: %v", err)
	}
	if data.Token == "" {
		t.Fatal("expected a session token")
	}
	return data.Token
}

func TestConnect_Success(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := doRequest(t, env.router, http.MethodPost, "/api/v1/auth/connect", "", ConnectRequest{
		URL:        "http://media.test",
		Username:   "alice",
		Password:   "secret",
		ServerType: "emby",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp.Status != "success" {
		t.Errorf("status field = %q, want success", resp.Status)
	}

	var data struct {
		Token      string `json:"token"`
		Username   string `json:"username"`
		ServerType string `json:"serverType"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.Username != "alice" || data.ServerType != "emby" {
		t.Errorf("unexpected identity %+v", data)
	}
	if strings.Contains(rec.Body.String(), "upstream-token") {
		t.Error("upstream token must never appear in the connect response")
	}
}

func TestConnect_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		req  ConnectRequest
	}{
		{"missing url", ConnectRequest{ServerType: "emby", Username: "alice"}},
		{"unknown server type", ConnectRequest{URL: "http://x.test", ServerType: "kodi", Username: "alice"}},
		{"emby without username", ConnectRequest{URL: "http://x.test", ServerType: "emby"}},
		{"jellyfin without username", ConnectRequest{URL: "http://x.test", ServerType: "jellyfin"}},
		{"plex without token", ConnectRequest{URL: "http://x.test", ServerType: "plex", Username: "alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doRequest(t, env.router, http.MethodPost, "/api/v1/auth/connect", "", tt.req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("expected VALIDATION_ERROR, got %+v", resp.Error)
			}
		})
	}
}

func TestConnect_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/connect", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestConnect_UpstreamAuthError(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := doRequest(t, env.router, http.MethodPost, "/api/v1/auth/connect", "", ConnectRequest{
		URL:        "http://media.test",
		Username:   "alice",
		Password:   "wrong",
		ServerType: "emby",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "UPSTREAM_AUTH_ERROR" {
		t.Errorf("expected UPSTREAM_AUTH_ERROR, got %+v", resp.Error)
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doRequest(t, env.router, http.MethodGet, "/api/v1/libraries", tt.token, nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if resp.Error == nil || resp.Error.Code != "AUTHENTICATION_ERROR" {
				t.Errorf("expected AUTHENTICATION_ERROR, got %+v", resp.Error)
			}
		})
	}
}

func TestLibraries(t *testing.T) {
	env := newTestEnv(t)
	token := connectAndGetToken(t, env)

	rec, resp := doRequest(t, env.router, http.MethodGet, "/api/v1/libraries", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var data struct {
		Libraries []models.Library `json:"libraries"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if len(data.Libraries) != 1 || data.Libraries[0].Name != "Shorts" {
		t.Errorf("unexpected libraries %+v", data.Libraries)
	}
}

func TestLibraries_CachedPerSession(t *testing.T) {
	env := newTestEnv(t)
	token := connectAndGetToken(t, env)

	for i := 0; i < 3; i++ {
		rec, _ := doRequest(t, env.router, http.MethodGet, "/api/v1/libraries", token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}

	if env.client.librariesCalls != 1 {
		t.Errorf("expected 1 upstream libraries call, got %d", env.client.librariesCalls)
	}
}

func TestFeed(t *testing.T) {
	env := newTestEnv(t)
	token := connectAndGetToken(t, env)

	rec, resp := doRequest(t, env.router, http.MethodGet, "/api/v1/feed?parentId=lib-1&feedType=latest", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var page feed.Page
	if err := json.Unmarshal(resp.Data, &page); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(page.Items))
	}
	if !page.HasMore {
		t.Error("expected hasMore for a mid-feed page")
	}
	if page.Items[0].StreamURL != "http://media.test/stream/v1" {
		t.Errorf("streamUrl = %q", page.Items[0].StreamURL)
	}
	if page.Items[0].PosterURL != "http://media.test/image/v1" {
		t.Errorf("posterUrl = %q", page.Items[0].PosterURL)
	}
	if page.Items[0].RuntimeMinutes != 1 {
		t.Errorf("runtimeMinutes = %d, want 1", page.Items[0].RuntimeMinutes)
	}
}

func TestFeed_DefaultsToLatest(t *testing.T) {
	env := newTestEnv(t)
	token := connectAndGetToken(t, env)

	rec, _ := doRequest(t, env.router, http.MethodGet, "/api/v1/feed?parentId=lib-1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestFeed_InvalidFeedType(t *testing.T) {
	env := newTestEnv(t)
	token := connectAndGetToken(t, env)

	rec, resp := doRequest(t, env.router, http.MethodGet, "/api/v1/feed?feedType=trending", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %+v", resp.Error)
	}
}

func TestFeed_UpstreamError(t *testing.T) {
	env := newTestEnv(t)
	token := connectAndGetToken(t, env)
	env.client.pageErr = &mediaclient.FetchError{Backend: models.ServerTypeEmby, Op: "items", StatusCode: 500}

	rec, resp := doRequest(t, env.router, http.MethodGet, "/api/v1/feed?feedType=latest", token, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "UPSTREAM_ERROR" {
		t.Errorf("expected UPSTREAM_ERROR, got %+v", resp.Error)
	}
}

func TestFavorites(t *testing.T) {
	env := newTestEnv(t)
	token := connectAndGetToken(t, env)

	rec, resp := doRequest(t, env.router, http.MethodGet, "/api/v1/favorites?library=Shorts", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var data struct {
		ItemIDs []string `json:"itemIds"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if len(data.ItemIDs) != 2 || data.ItemIDs[0] != "v1" || data.ItemIDs[1] != "v2" {
		t.Errorf("itemIds = %v, want sorted [v1 v2]", data.ItemIDs)
	}
}

func TestToggleFavorite(t *testing.T) {
	env := newTestEnv(t)
	token := connectAndGetToken(t, env)

	rec, resp := doRequest(t, env.router, http.MethodPost, "/api/v1/favorites/toggle", token, ToggleFavoriteRequest{
		ItemID:     "v1",
		IsFavorite: true,
		Library:    "Shorts",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	if env.client.toggledID != "v1" || !env.client.toggledFrom {
		t.Errorf("toggle forwarded id=%q wasFavorite=%v", env.client.toggledID, env.client.toggledFrom)
	}

	var data struct {
		ItemID     string `json:"itemId"`
		IsFavorite bool   `json:"isFavorite"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
	if data.IsFavorite {
		t.Error("removing a favorite must report isFavorite=false")
	}
}

func TestToggleFavorite_MissingItemID(t *testing.T) {
	env := newTestEnv(t)
	token := connectAndGetToken(t, env)

	rec, resp := doRequest(t, env.router, http.MethodPost, "/api/v1/favorites/toggle", token, ToggleFavoriteRequest{
		Library: "Shorts",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %+v", resp.Error)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	env := newTestEnv(t)
	token := connectAndGetToken(t, env)

	rec, _ := doRequest(t, env.router, http.MethodPost, "/api/v1/auth/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, body %s", rec.Code, rec.Body.String())
	}

	// The token still verifies but its session is gone.
	rec, resp := doRequest(t, env.router, http.MethodGet, "/api/v1/libraries", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("post-logout status = %d, want 401", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "AUTHENTICATION_ERROR" {
		t.Errorf("expected AUTHENTICATION_ERROR, got %+v", resp.Error)
	}
}

func TestHealthLive(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := doRequest(t, env.router, http.MethodGet, "/api/v1/health/live", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resp.Status != "success" {
		t.Errorf("status field = %q", resp.Status)
	}
}

func TestHealthReady(t *testing.T) {
	env := newTestEnv(t)

	rec, resp := doRequest(t, env.router, http.MethodGet, "/api/v1/health/ready", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if resp.Status != "ready" {
		t.Errorf("status field = %q, want ready", resp.Status)
	}
}

func TestHealthReady_StoreDown(t *testing.T) {
	store, err := session.OpenBadgerStore(config.StoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadgerStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := testConfig()
	encryptor, err := session.NewTokenEncryptor(cfg.Security.JWTSecret)
	if err != nil {
		t.Fatalf("NewTokenEncryptor() error = %v", err)
	}
	jwtMgr, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	handler := NewHandler(cfg, session.NewManager(store, encryptor, time.Hour), store, jwtMgr, feed.NewService(30, 100))
	handler.readyCheck = func(_ *http.Request) error {
		return fmt.Errorf("store unavailable")
	}

	router := NewRouter(handler, NewChiMiddlewareFromConfig(&cfg.Security)).Setup()

	rec, resp := doRequest(t, router, http.MethodGet, "/api/v1/health/ready", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Status != "not_ready" {
		t.Errorf("status field = %q, want not_ready", resp.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("expected Prometheus exposition output from /metrics")
	}
}
