// Pathwise - Adaptive Learning Content Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pathwise

/*
Package supervisor runs the long-lived Pathwise services under a suture v4
tree.

	root ("pathwise")
	├── messaging-layer
	│   └── events-publisher   closes the event publisher on stop
	└── api-layer
	    └── http-server        ListenAndServe with graceful Shutdown

The layers restart independently: a publisher failure does not take the
HTTP server down. Supervisor events are logged through sutureslog, which
writes to the zerolog bridge in internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddMessagingService(services.NewCloserService("events-publisher", publisher))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx) // returns when ctx is canceled
*/
package supervisor
