// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package algorithms

import (
	"context"
	"sync"
	"time"
)

// Interaction is one weighted user-item observation used for training.
type Interaction struct {
	UserID string
	ItemID string

	// Confidence is the implicit-feedback strength. Non-positive values
	// are ignored by ALS.
	Confidence float64
}

// ItemScore pairs an item id with its model score.
type ItemScore struct {
	ItemID string
	Score  float64
}

// Model carries the name and training stamp of a fitted model. The
// embedding type guards its own fitted state with mu as well.
type Model struct {
	name string

	mu      sync.RWMutex
	version int
	fitted  time.Time
}

// Name identifies the model in logs and metrics.
func (m *Model) Name() string { return m.name }

// IsTrained reports whether at least one fit has completed.
func (m *Model) IsTrained() bool { return m.Version() > 0 }

// Version counts completed fits.
func (m *Model) Version() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// LastTrainedAt is the completion time of the latest fit.
func (m *Model) LastTrainedAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fitted
}

// stamp records a completed fit. mu must be held for writing.
func (m *Model) stamp() {
	m.version++
	m.fitted = time.Now()
}

func canceled(ctx context.Context) bool {
	return ctx.Err() != nil
}
