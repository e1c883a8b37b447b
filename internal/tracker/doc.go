// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

// Package tracker validates, enriches and records user interactions.
//
// Each category (product-view, favorites, cart, chat, review, search)
// accepts a fixed set of interaction kinds. Accepted events are enriched
// with catalog attributes of the referenced product, appended to the
// interaction log and then announced on the event bus. Publishing is
// best effort: a bus failure is logged and never fails the request.
//
// The package also answers interaction history queries by user and by
// product.
package tracker
