// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package mediaclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mediatok/mediatok/internal/models"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare host", "emby.local:8096", "http://emby.local:8096"},
		{"http kept", "http://emby.local:8096", "http://emby.local:8096"},
		{"https kept", "https://plex.example.com", "https://plex.example.com"},
		{"whitespace trimmed", "  plex.local:32400 ", "http://plex.local:32400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkStringEqual(t, "normalized URL", NormalizeURL(tt.input), tt.want)
		})
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		serverType models.ServerType
		wantEmby   bool
		wantPlex   bool
	}{
		{"emby", models.ServerTypeEmby, true, false},
		{"jellyfin shares the emby adapter", models.ServerTypeJellyfin, true, false},
		{"plex", models.ServerTypePlex, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.serverType, "media.local:8096", Options{})
			checkNoError(t, err)

			_, isEmby := client.(*EmbyClient)
			_, isPlex := client.(*PlexClient)
			checkTrue(t, "emby adapter", isEmby == tt.wantEmby)
			checkTrue(t, "plex adapter", isPlex == tt.wantPlex)
		})
	}
}

func TestNew_UnknownServerType(t *testing.T) {
	_, err := New(models.ServerType("kodi"), "media.local", Options{})
	checkError(t, err)
}

func TestConnect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkStringEqual(t, "path", r.URL.Path, "/Users/AuthenticateByName")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"AccessToken": "tok", "User": {"Id": "u1", "Name": "alice"}}`))
	}))
	defer server.Close()

	client, cfg, err := Connect(context.Background(), models.ServerTypeEmby, server.URL, "alice", "pw", Options{})
	checkNoError(t, err)
	checkTrue(t, "client not nil", client != nil)
	checkStringEqual(t, "cfg.Token", cfg.Token, "tok")
	checkStringEqual(t, "cfg.UserID", cfg.UserID, "u1")
}

func TestConnect_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, _, err := Connect(context.Background(), models.ServerTypeEmby, server.URL, "alice", "bad", Options{})
	checkError(t, err)
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name       string
		serverType models.ServerType
	}{
		{"emby", models.ServerTypeEmby},
		{"jellyfin", models.ServerTypeJellyfin},
		{"plex", models.ServerTypePlex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &models.ServerConfig{
				URL:        "http://media.local",
				Username:   "alice",
				UserID:     "u1",
				Token:      "tok",
				ServerType: tt.serverType,
			}

			client, err := FromConfig(cfg, Options{})
			checkNoError(t, err)

			// Reconstructed without I/O; the config round-trips.
			got := client.Config()
			checkStringEqual(t, "URL", got.URL, cfg.URL)
			checkStringEqual(t, "Token", got.Token, cfg.Token)
			checkStringEqual(t, "ServerType", string(got.ServerType), string(tt.serverType))
		})
	}
}

func TestFromConfig_UnknownServerType(t *testing.T) {
	_, err := FromConfig(&models.ServerConfig{ServerType: "kodi"}, Options{})
	checkError(t, err)
}
