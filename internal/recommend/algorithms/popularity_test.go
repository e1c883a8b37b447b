// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package algorithms

import (
	"reflect"
	"testing"
)

func TestRankByCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ids  []string
		want []Count
	}{
		{"empty", nil, nil},
		{"skips empty ids", []string{"", "a", ""}, []Count{{"a", 1}}},
		{
			"ties keep first appearance",
			[]string{"b", "a", "c", "a", "b", "c", "d"},
			[]Count{{"b", 2}, {"a", 2}, {"c", 2}, {"d", 1}},
		},
		{
			"count descending",
			[]string{"x", "y", "y", "z", "z", "z"},
			[]Count{{"z", 3}, {"y", 2}, {"x", 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RankByCount(tt.ids); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RankByCount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRatioScore(t *testing.T) {
	t.Parallel()

	if got := RatioScore(4, 0); got != 4 {
		t.Errorf("RatioScore(4, 0) = %v, want 4", got)
	}
	if got := RatioScore(5, 9); got != 0.5 {
		t.Errorf("RatioScore(5, 9) = %v, want 0.5", got)
	}
}
