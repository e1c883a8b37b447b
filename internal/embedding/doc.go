// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

// Package embedding provides the dense-vector side of search and
// similarity: a precomputed product embedding table aligned with catalog
// rows, and an optional remote query embedder.
//
// Both are optional. A missing or inconsistent table disables the
// embedding strategies; an unconfigured, rate limited or failing embedder
// makes semantic search unavailable. Callers fall back to lexical and
// attribute strategies in those cases.
//
// The embedder speaks a minimal JSON protocol:
//
//	POST <url>  {"inputs": ["red running shoes"]}
//	200 OK      [[0.013, -0.402, ...]]
//
// Calls go through a golang.org/x/time/rate limiter and a sony/gobreaker
// circuit breaker.
package embedding
