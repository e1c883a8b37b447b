// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

// Package algorithms implements the numeric models behind the ranking engine.
//
// The package works on plain string ids and float slices and knows nothing
// about products or HTTP, so the models can be trained and tested in
// isolation.
//
//   - ALS: implicit-feedback matrix factorization (Hu, Koren, Volinsky, 2008)
//     used by the collaborative recommendation strategy.
//   - TFIDF: a term-frequency index over product text used by search.
//   - RankByCount and RatioScore: the popularity heuristics used by
//     trending and the recommendation fallback.
//
// # Thread Safety
//
// ALS and TFIDF build a new model off to the side and swap it in under a
// write lock, so queries keep reading the previous snapshot while a
// training run is in progress.
package algorithms
