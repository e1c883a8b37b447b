// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

/*
Package supervisor runs the long-lived KMart services under suture v4.

The tree is split into three layers so a failure in one is restarted
without touching the others:

	kmart
	├── data-layer
	│   └── badger-gc        (badger interaction backend only)
	├── messaging-layer
	│   ├── websocket-hub
	│   ├── event-router
	│   └── model-trainer
	└── api-layer
	    └── http-server

Supervisor events (start, stop, failure, backoff) are logged through the
sutureslog hook, which takes the slog bridge from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	if err != nil {
	    return err
	}
	tree.AddMessagingService(hub)
	tree.AddAPIService(services.NewHTTPServerService(srv, addr, 10*time.Second, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

After Serve returns, UnstoppedServiceReport lists services that ignored
the shutdown timeout.
*/
package supervisor
