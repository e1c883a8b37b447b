// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

// Package logging provides the zerolog-based structured logging layer for KMart.
//
// A single global logger is configured once at startup with Init and used
// through the level helpers (Info, Warn, Error, Debug). Components that
// need their own logger take a zerolog.Logger and add a "component" field.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Int("products", n).Msg("catalog loaded")
//
// # Request context
//
// The HTTP layer stores a request ID and a short correlation ID in the
// request context. Ctx(ctx) returns a logger carrying both:
//
//	logging.Ctx(r.Context()).Warn().Err(err).Msg("search fell back to keyword match")
//
// # Adapters
//
// Two adapters route third-party logging into zerolog:
//   - SlogHandler implements slog.Handler (used by sutureslog for supervisor events)
//   - WatermillAdapter implements watermill.LoggerAdapter (used by the event bus)
package logging
