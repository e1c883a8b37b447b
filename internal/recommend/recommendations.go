// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package recommend

import (
	"context"
	"math"
	"strconv"

	"github.com/tomtom215/kmart/internal/recommend/algorithms"
)

type recommendQuery struct {
	userID string
	k      int
}

// Recommend returns up to k products for userID. Users the model has not
// seen get the cold-start list; an unknown user is never an error.
func (e *Engine) Recommend(ctx context.Context, userID string, k int) (Result[ScoredProduct], error) {
	if k <= 0 {
		return emptyResult[ScoredProduct](), nil
	}
	q := recommendQuery{userID: userID, k: k}
	return e.cached("recommend", userID+"|"+strconv.Itoa(k), func() (Result[ScoredProduct], error) {
		return e.recommendChain.run(ctx, q, e.logger)
	})
}

func (e *Engine) newRecommendChain() *chain[recommendQuery, ScoredProduct] {
	return &chain[recommendQuery, ScoredProduct]{
		op: "recommend",
		strategies: []strategy[recommendQuery, ScoredProduct]{
			{
				name:      "collaborative",
				available: func(recommendQuery) bool { return e.als.Ready() },
				run:       e.collaborative,
			},
			{
				name: "popularity",
				run:  e.popularity,
			},
		},
	}
}

// collaborative scores every item with the factor model, drops scores
// outside the sanity bound and items missing from the catalog.
func (e *Engine) collaborative(_ context.Context, q recommendQuery) ([]ScoredProduct, error) {
	scores, known := e.als.Score(q.userID)
	if scores == nil {
		return nil, errNoSignal
	}
	if !known {
		e.logger.Debug().Str("user_id", q.userID).Msg("Unknown user, using cold-start row")
	}

	out := make([]ScoredProduct, 0, len(scores))
	for _, s := range scores {
		if !withinBound(s.Score, e.ranking.ScoreBound) {
			continue
		}
		p, ok := e.catalog.Get(s.ItemID)
		if !ok {
			continue
		}
		out = append(out, ScoredProduct{Product: p, Score: s.Score})
	}
	if len(out) == 0 {
		return nil, errNoSignal
	}
	return rankByScore(out, q.k), nil
}

func withinBound(score, bound float64) bool {
	return !math.IsNaN(score) && math.Abs(score) < bound
}

// popularity scores every product by rating / (price + 1).
func (e *Engine) popularity(_ context.Context, q recommendQuery) ([]ScoredProduct, error) {
	n := e.catalog.Len()
	out := make([]ScoredProduct, n)
	for i := 0; i < n; i++ {
		p := e.catalog.At(i)
		out[i] = ScoredProduct{Product: p, Score: algorithms.RatioScore(p.Rating, p.Price)}
	}
	return rankByScore(out, q.k), nil
}
