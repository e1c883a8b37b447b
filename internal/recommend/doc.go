// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

// Package recommend ranks catalog products for recommendation, search,
// trending and item-to-item similarity.
//
// # Strategy Chains
//
// Every operation runs an ordered chain of named strategies. A strategy
// declares a precondition and a run function; the chain skips strategies
// whose precondition fails and moves to the next one when a strategy
// returns ErrComputation or has no signal for the query. The name of the
// strategy that answered is returned with the result.
//
//	Recommend:  collaborative -> popularity
//	Search:     semantic -> tfidf -> keyword
//	Trending:   window -> all_time
//	SimilarTo:  embedding -> attribute
//
// The last strategy of each chain is always available.
//
// # Caching
//
// Recommend, Search and SimilarTo results are kept in an LRU keyed by
// operation and arguments. The cache is purged after every successful
// training run. Trending reads the live interaction log and is never cached.
//
// # Thread Safety
//
// The engine is safe for concurrent use. Training builds a new factor
// model off to the side and swaps it in; concurrent Train calls fail
// with ErrTrainingInProgress.
package recommend
