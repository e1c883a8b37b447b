// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package recommend

import (
	"time"

	"github.com/tomtom215/kmart/internal/catalog"
)

// ScoredProduct is a product with the score the answering strategy gave it.
type ScoredProduct struct {
	Product catalog.Product
	Score   float64
}

// TrendingProduct is a product with its interaction count.
type TrendingProduct struct {
	Product catalog.Product
	Count   int
}

// Result is a ranked list and the strategy that produced it.
type Result[T any] struct {
	Items    []T
	Strategy string

	// Skipped names strategies that were unavailable or had no signal.
	Skipped []string

	// Cached is true when the result was served from the LRU.
	Cached bool
}

// TrainingStatus describes the collaborative model.
type TrainingStatus struct {
	IsTraining     bool      `json:"is_training"`
	Trained        bool      `json:"trained"`
	ModelVersion   int       `json:"model_version"`
	LastTrainedAt  time.Time `json:"last_trained_at,omitempty"`
	LastDurationMS int64     `json:"last_duration_ms"`
	LastError      string    `json:"last_error,omitempty"`
	Interactions   int       `json:"interactions"`
	Users          int       `json:"users"`
	Items          int       `json:"items"`
}

// StrategyState reports whether each named strategy is currently usable.
type StrategyState struct {
	Collaborative bool `json:"collaborative"`
	Semantic      bool `json:"semantic"`
	TFIDF         bool `json:"tfidf"`
	Embedding     bool `json:"embedding"`
}
