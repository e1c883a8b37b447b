// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package interactions

import (
	"sort"
	"time"
)

// newestFirst returns up to limit events matching keep, newest first.
// Equal timestamps keep reverse append order.
func newestFirst(events []Event, keep func(*Event) bool, limit int) []Event {
	if limit <= 0 {
		return []Event{}
	}
	out := make([]Event, 0, min(limit, 16))
	for i := len(events) - 1; i >= 0; i-- {
		if keep(&events[i]) {
			out = append(out, events[i])
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Timestamp.After(out[b].Timestamp)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// chronological returns events strictly after since, oldest first.
// Equal timestamps keep append order.
func chronological(events []Event, since time.Time) []Event {
	out := make([]Event, 0, len(events))
	for i := range events {
		if since.IsZero() || events[i].Timestamp.After(since) {
			out = append(out, events[i])
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Timestamp.Before(out[b].Timestamp)
	})
	return out
}
