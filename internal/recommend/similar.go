// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package recommend

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/tomtom215/kmart/internal/catalog"
	"github.com/tomtom215/kmart/internal/embedding"
)

type similarQuery struct {
	target catalog.Product
	row    int
	k      int
}

// SimilarTo returns up to k products most similar to productID, never
// including productID itself. It returns ErrNotFound for unknown ids.
func (e *Engine) SimilarTo(ctx context.Context, productID string, k int) (Result[ScoredProduct], error) {
	row, ok := e.catalog.Index(productID)
	if !ok {
		return Result[ScoredProduct]{}, fmt.Errorf("product %q: %w", productID, ErrNotFound)
	}
	if k <= 0 {
		return emptyResult[ScoredProduct](), nil
	}
	q := similarQuery{target: e.catalog.At(row), row: row, k: k}
	return e.cached("similar", productID+"|"+strconv.Itoa(k), func() (Result[ScoredProduct], error) {
		return e.similarChain.run(ctx, q, e.logger)
	})
}

func (e *Engine) newSimilarChain() *chain[similarQuery, ScoredProduct] {
	return &chain[similarQuery, ScoredProduct]{
		op: "similar",
		strategies: []strategy[similarQuery, ScoredProduct]{
			{
				name:      "embedding",
				available: func(similarQuery) bool { return e.table.Load() != nil },
				run:       e.embeddingSimilar,
			},
			{
				name: "attribute",
				run:  e.attributeSimilar,
			},
		},
	}
}

func (e *Engine) embeddingSimilar(_ context.Context, q similarQuery) ([]ScoredProduct, error) {
	table := e.table.Load()
	if table == nil {
		return nil, errNoSignal
	}
	target := table.Vector(q.row)
	out := e.scoreOthers(q, func(i int, _ *catalog.Product) float64 {
		return embedding.Cosine(target, table.Vector(i))
	})
	if len(out) == 0 {
		return nil, errNoSignal
	}
	return rankByScore(out, q.k), nil
}

func (e *Engine) attributeSimilar(_ context.Context, q similarQuery) ([]ScoredProduct, error) {
	out := e.scoreOthers(q, func(_ int, p *catalog.Product) float64 {
		return AttributeSimilarity(&q.target, p, e.ranking.PartialCategoryWeight)
	})
	return rankByScore(out, q.k), nil
}

// scoreOthers scores every product except the target and keeps those at
// or above the similarity floor, in catalog order.
func (e *Engine) scoreOthers(q similarQuery, score func(i int, p *catalog.Product) float64) []ScoredProduct {
	out := make([]ScoredProduct, 0, e.catalog.Len())
	for i := 0; i < e.catalog.Len(); i++ {
		p := e.catalog.At(i)
		if p.ID == q.target.ID {
			continue
		}
		s := score(i, &p)
		if s < e.ranking.MinSimilarity {
			continue
		}
		out = append(out, ScoredProduct{Product: p, Score: s})
	}
	return out
}

// AttributeSimilarity averages price closeness and a category bonus:
//
//	priceCloseness = 1 / (1 + |pa - pb| / max(pa, pb, 1))
//	categoryBonus  = 1 when categories match, partial otherwise
func AttributeSimilarity(a, b *catalog.Product, partial float64) float64 {
	scale := math.Max(math.Max(a.Price, b.Price), 1)
	closeness := 1 / (1 + math.Abs(a.Price-b.Price)/scale)

	bonus := partial
	if a.Category == b.Category {
		bonus = 1
	}
	return (closeness + bonus) / 2
}
