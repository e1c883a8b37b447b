// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

// Package catalog holds the product catalog: the typed Product entity, the
// CSV loader that maps raw rows onto it, and an immutable Store indexed by
// product id.
//
// A Store is built once at startup and never mutated, so it is shared
// between goroutines without locking. Rows keep their file order; that
// order is the tie-breaker for every ranking and the row index used by
// the embedding table.
package catalog
