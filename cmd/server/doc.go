// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

/*
Command server runs the KMart recommendation, search and interaction
tracking API.

Startup order:

 1. Configuration (koanf: defaults, config.yaml, environment)
 2. Product catalog (CSV, or the built-in fixture)
 3. Interaction log (csv, badger, duckdb or memory backend)
 4. Recommendation engine, warmed with TF-IDF and optional embeddings
 5. Event bus (watermill gochannel or NATS) and the interaction tracker
 6. WebSocket hub, event router and model trainer
 7. HTTP API

Everything long-lived runs under a suture supervisor tree:

	kmart
	├── data-layer       badger-gc
	├── messaging-layer  websocket-hub, event-router, model-trainer
	└── api-layer        http-server

# Configuration

Common environment variables:

	HTTP_HOST, HTTP_PORT          listen address (default 0.0.0.0:8000)
	CATALOG_PATH                  product CSV
	INTERACTIONS_BACKEND          csv | badger | duckdb | memory
	INTERACTIONS_PATH             file or directory for the backend
	EMBEDDINGS_PATH               precomputed product embedding table
	EMBEDDER_URL                  remote query embedder for semantic search
	EVENTS_TRANSPORT              memory | nats
	NATS_URL, NATS_EMBEDDED       NATS connection or in-process server
	TRAIN_INTERVAL, RETRAIN_AFTER background training schedule
	CORS_ORIGINS                  comma-separated allowed origins
	LOG_LEVEL, LOG_FORMAT         zerolog level and json | console

A config.yaml in the working directory, or the file named by CONFIG_PATH,
is read before the environment.

# Signals

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
SHUTDOWN_TIMEOUT, then the event bus and the interaction log are closed.
*/
package main
