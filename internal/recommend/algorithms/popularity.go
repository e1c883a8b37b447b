// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package algorithms

import "sort"

// Count is an id with its number of occurrences.
type Count struct {
	ID    string
	Count int
}

// RankByCount counts occurrences of each non-empty id and returns them by
// count descending. Ties keep the order in which ids first appeared.
func RankByCount(ids []string) []Count {
	pos := make(map[string]int)
	var out []Count
	for _, id := range ids {
		if id == "" {
			continue
		}
		if i, ok := pos[id]; ok {
			out[i].Count++
			continue
		}
		pos[id] = len(out)
		out = append(out, Count{ID: id, Count: 1})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Count > out[b].Count
	})
	return out
}

// RatioScore is the catalog popularity heuristic rating / (price + 1).
// Cheaper well-rated items score higher.
func RatioScore(rating, price float64) float64 {
	return rating / (price + 1)
}
