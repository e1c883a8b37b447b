// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

// Package middleware holds the HTTP instrumentation middleware: Prometheus
// request metrics and the structured access log.
//
// Both wrap http.HandlerFunc and are adapted to chi with a one-line shim in
// the api package. Both read the chi route pattern after the handler ran, so
// metric labels and log fields use "/products/{id}" rather than the raw path.
package middleware
