// MediaTok - Vertical Swipe Feed for Emby, Jellyfin, and Plex
// Copyright 2026 MediaTok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatok/mediatok

/*
Package supervisor provides process supervision for MediaTok using suture v4.

The package implements a small hierarchical supervisor tree that manages the
lifecycle of the long-running services in the application, with automatic
restart, failure isolation, and graceful shutdown.

# Overview

The tree organizes services into two layers:

	RootSupervisor ("mediatok")
	├── DataSupervisor ("data-layer")
	│   └── SessionCleanupService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash in the session cleanup loop never takes the HTTP server down, and a
listener failure does not stop store maintenance. Supervisor events are
logged through sutureslog into the application's slog handler.

# Usage

	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddDataService(services.NewSessionCleanupService(sessions, 5*time.Minute))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	return tree.Serve(ctx)

Serve blocks until the context is canceled, then shuts every service down
within the configured ShutdownTimeout.
*/
package supervisor
