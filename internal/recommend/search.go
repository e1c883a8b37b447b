// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package recommend

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/kmart/internal/embedding"
)

type searchQuery struct {
	text string
	k    int
}

// Search returns up to k products matching query. An empty query is
// answered by the keyword strategy and matches every product.
func (e *Engine) Search(ctx context.Context, query string, k int) (Result[ScoredProduct], error) {
	if k <= 0 {
		return emptyResult[ScoredProduct](), nil
	}
	q := searchQuery{text: strings.TrimSpace(query), k: k}
	return e.cached("search", strconv.Itoa(k)+"|"+q.text, func() (Result[ScoredProduct], error) {
		return e.searchChain.run(ctx, q, e.logger)
	})
}

func (e *Engine) newSearchChain() *chain[searchQuery, ScoredProduct] {
	return &chain[searchQuery, ScoredProduct]{
		op: "search",
		strategies: []strategy[searchQuery, ScoredProduct]{
			{
				name:      "semantic",
				available: func(q searchQuery) bool { return q.text != "" && e.semanticAvailable() },
				run:       e.semantic,
			},
			{
				name:      "tfidf",
				available: func(q searchQuery) bool { return q.text != "" && e.tfidf.Ready() },
				run:       e.tfidfSearch,
			},
			{
				name: "keyword",
				run:  e.keyword,
			},
		},
	}
}

func (e *Engine) semanticAvailable() bool {
	return e.table.Load() != nil && e.embedder != nil && e.embedder.Available()
}

// semantic ranks products by cosine similarity to the embedded query.
func (e *Engine) semantic(ctx context.Context, q searchQuery) ([]ScoredProduct, error) {
	table := e.table.Load()
	if table == nil {
		return nil, errNoSignal
	}

	vec, err := e.embedder.Embed(ctx, q.text)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", ErrComputation, err)
	}
	if len(vec) != table.Dimensions() {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, table has %d",
			ErrComputation, len(vec), table.Dimensions())
	}

	out := make([]ScoredProduct, table.Len())
	for i := range out {
		out[i] = ScoredProduct{Product: e.catalog.At(i), Score: embedding.Cosine(vec, table.Vector(i))}
	}
	return rankByScore(out, q.k), nil
}

// tfidfSearch ranks products with a positive TF-IDF cosine to the query.
func (e *Engine) tfidfSearch(_ context.Context, q searchQuery) ([]ScoredProduct, error) {
	scores, ok := e.tfidf.Query(q.text)
	if !ok {
		return nil, errNoSignal
	}

	out := make([]ScoredProduct, 0, q.k)
	for i, s := range scores {
		if s <= 0 || i >= e.catalog.Len() {
			continue
		}
		out = append(out, ScoredProduct{Product: e.catalog.At(i), Score: s})
	}
	if len(out) == 0 {
		return nil, errNoSignal
	}
	return rankByScore(out, q.k), nil
}

// keyword returns the first k products whose name or description contains
// the query, each with the neutral keyword score.
func (e *Engine) keyword(_ context.Context, q searchQuery) ([]ScoredProduct, error) {
	out := make([]ScoredProduct, 0, q.k)
	for i := 0; i < e.catalog.Len() && len(out) < q.k; i++ {
		p := e.catalog.At(i)
		if p.Matches(q.text) {
			out = append(out, ScoredProduct{Product: p, Score: e.ranking.KeywordScore})
		}
	}
	return out, nil
}
