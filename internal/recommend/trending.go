// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/kmart/internal/recommend/algorithms"
)

type trendingQuery struct {
	days int
	k    int
	now  time.Time
}

// Trending returns up to k products by interaction count over the
// trailing days window. When the window is quiet the all-time counts are
// used instead; days <= 0 always uses all-time counts.
func (e *Engine) Trending(ctx context.Context, days, k int) (Result[TrendingProduct], error) {
	if k <= 0 {
		return emptyResult[TrendingProduct](), nil
	}
	q := trendingQuery{days: days, k: k, now: e.now()}
	return e.trendingChain.run(ctx, q, e.logger)
}

func (e *Engine) newTrendingChain() *chain[trendingQuery, TrendingProduct] {
	return &chain[trendingQuery, TrendingProduct]{
		op: "trending",
		strategies: []strategy[trendingQuery, TrendingProduct]{
			{
				name:      "window",
				available: func(q trendingQuery) bool { return q.days > 0 },
				run: func(ctx context.Context, q trendingQuery) ([]TrendingProduct, error) {
					since := q.now.Add(-time.Duration(q.days) * 24 * time.Hour)
					items, err := e.countSince(ctx, since, q.k)
					if errors.Is(err, errNoSignal) {
						e.logger.Info().Int("days", q.days).
							Msg("No recent interactions, using all-time counts")
					}
					return items, err
				},
			},
			{
				name: "all_time",
				run: func(ctx context.Context, q trendingQuery) ([]TrendingProduct, error) {
					items, err := e.countSince(ctx, time.Time{}, q.k)
					if errors.Is(err, errNoSignal) {
						return []TrendingProduct{}, nil
					}
					return items, err
				},
			},
		},
	}
}

// countSince ranks product ids seen since the given time. It reports no
// signal when no event in range references a product.
func (e *Engine) countSince(ctx context.Context, since time.Time, k int) ([]TrendingProduct, error) {
	events, err := e.log.Events(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("read interactions: %w", err)
	}

	ids := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ProductID
	}
	counts := algorithms.RankByCount(ids)
	if len(counts) == 0 {
		return nil, errNoSignal
	}

	out := make([]TrendingProduct, 0, min(k, len(counts)))
	for _, c := range counts {
		if len(out) == k {
			break
		}
		p, ok := e.catalog.Get(c.ID)
		if !ok {
			continue
		}
		out = append(out, TrendingProduct{Product: p, Count: c.Count})
	}
	return out, nil
}
