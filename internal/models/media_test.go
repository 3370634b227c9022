// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

package models

import "testing"

func TestMediaItemIsVertical(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		want   bool
	}{
		{name: "portrait 1080x1920", width: 1080, height: 1920, want: true},
		{name: "square", width: 1000, height: 1000, want: true},
		{name: "exactly at threshold", width: 1000, height: 800, want: true},
		{name: "just below threshold", width: 1000, height: 799, want: false},
		{name: "landscape 1920x1080", width: 1920, height: 1080, want: false},
		{name: "zero width excluded", width: 0, height: 1920, want: false},
		{name: "unknown dimensions excluded", width: 0, height: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := MediaItem{Width: tt.width, Height: tt.height}
			if got := item.IsVertical(); got != tt.want {
				t.Errorf("IsVertical() with %dx%d = %v, want %v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestFilterVertical(t *testing.T) {
	items := []MediaItem{
		{ID: "a", Width: 1080, Height: 1920},
		{ID: "b", Width: 1920, Height: 1080},
		{ID: "c", Width: 720, Height: 720},
		{ID: "d", Width: 0, Height: 480},
	}

	filtered := FilterVertical(items)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 items, got %d", len(filtered))
	}
	if filtered[0].ID != "a" || filtered[1].ID != "c" {
		t.Errorf("expected order [a c], got [%s %s]", filtered[0].ID, filtered[1].ID)
	}

	// Every survivor must satisfy the invariant.
	for i := range filtered {
		if !filtered[i].IsVertical() {
			t.Errorf("item %s in filtered output fails vertical filter", filtered[i].ID)
		}
	}
}

func TestMediaItemRuntimeMinutes(t *testing.T) {
	tests := []struct {
		name  string
		ticks int64
		want  int
	}{
		{name: "zero", ticks: 0, want: 0},
		{name: "negative treated as unknown", ticks: -5, want: 0},
		{name: "one minute", ticks: 600_000_000, want: 1},
		{name: "90 seconds rounds to 2", ticks: 900_000_000, want: 2},
		{name: "two hours", ticks: 72_000_000_000, want: 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := MediaItem{RunTimeTicks: tt.ticks}
			if got := item.RuntimeMinutes(); got != tt.want {
				t.Errorf("RuntimeMinutes(%d) = %d, want %d", tt.ticks, got, tt.want)
			}
		})
	}
}

func TestServerTypeValid(t *testing.T) {
	for _, st := range []ServerType{ServerTypeEmby, ServerTypeJellyfin, ServerTypePlex} {
		if !st.Valid() {
			t.Errorf("%q should be valid", st)
		}
	}
	if ServerType("kodi").Valid() {
		t.Error("unknown server type should not be valid")
	}
}

func TestFeedTypeValid(t *testing.T) {
	for _, ft := range []FeedType{FeedLatest, FeedRandom, FeedFavorites} {
		if !ft.Valid() {
			t.Errorf("%q should be valid", ft)
		}
	}
	if FeedType("trending").Valid() {
		t.Error("unknown feed type should not be valid")
	}
}
