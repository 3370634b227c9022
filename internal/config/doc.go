// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

// Package config loads and validates MediaTok's runtime configuration.
//
// Configuration is layered with Koanf v2, later layers overriding earlier
// ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (config.yaml, /etc/mediatok/config.yaml, or the
//     path in MEDIATOK_CONFIG_PATH)
//  3. MEDIATOK_-prefixed environment variables
//
// Every setting maps to a dotted koanf path via an explicit table in
// envTransformFunc; unmapped variables are ignored rather than guessed at.
// Comma-separated values are supported for list settings such as
// MEDIATOK_CORS_ORIGINS.
//
// Usage:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The returned Config has passed Validate: ports, timeouts, page sizes, and
// breaker thresholds are in range, and in production a strong JWT secret is
// present.
package config
