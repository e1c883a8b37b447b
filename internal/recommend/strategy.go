// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/metrics"
)

// strategy is one step of a ranking chain.
type strategy[Q, T any] struct {
	name string

	// available is the precondition. Nil means always available.
	available func(q Q) bool

	run func(ctx context.Context, q Q) ([]T, error)
}

// chain tries strategies in order.
type chain[Q, T any] struct {
	op         string
	strategies []strategy[Q, T]
}

//nolint:gocritic // zerolog.Logger is designed to be passed by value
func (c *chain[Q, T]) run(ctx context.Context, q Q, logger zerolog.Logger) (Result[T], error) {
	start := time.Now()
	var skipped []string

	for _, s := range c.strategies {
		if s.available != nil && !s.available(q) {
			skipped = append(skipped, s.name)
			continue
		}

		items, err := s.run(ctx, q)
		if err == nil {
			metrics.RecordRanking(c.op, s.name, skipped, time.Since(start))
			return Result[T]{Items: items, Strategy: s.name, Skipped: skipped}, nil
		}
		if !errors.Is(err, ErrComputation) && !errors.Is(err, errNoSignal) {
			return Result[T]{}, fmt.Errorf("%s %s: %w", c.op, s.name, err)
		}

		ev := logger.Debug()
		if errors.Is(err, ErrComputation) {
			ev = logger.Warn()
		}
		ev.Err(err).Str("operation", c.op).Str("strategy", s.name).Msg("Strategy fell through")
		skipped = append(skipped, s.name)
	}

	return Result[T]{}, fmt.Errorf("%w: no %s strategy produced a result", ErrComputation, c.op)
}

// rankByScore sorts descending by score, keeping input order for ties, and
// truncates to k.
func rankByScore(items []ScoredProduct, k int) []ScoredProduct {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Score > items[b].Score
	})
	if len(items) > k {
		items = items[:k]
	}
	return items
}
