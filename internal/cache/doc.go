// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

// Package cache provides a generic, thread-safe LRU cache with TTL expiry.
//
// The ranking engine keeps one LRU of result lists keyed by operation and
// arguments and purges it whenever the factor model is retrained:
//
//	results := cache.NewLRU[[]recommend.Ranked](1024, 5*time.Minute)
//	if v, ok := results.Get("recommend|u1|10"); ok {
//	    return v
//	}
//	results.Add("recommend|u1|10", ranked)
//	...
//	results.Purge() // after Train
package cache
