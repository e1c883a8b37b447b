// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package api

import (
	"github.com/tomtom215/kmart/internal/catalog"
	"github.com/tomtom215/kmart/internal/recommend"
)

// ProductRecommendation is one entry of a recommendation list.
type ProductRecommendation struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Score       float64 `json:"score"`
}

// SearchResult is one search hit.
type SearchResult ProductRecommendation

// TrendingProduct is a product with its interaction count in the window.
type TrendingProduct struct {
	ProductID        string  `json:"product_id"`
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Price            float64 `json:"price"`
	InteractionCount int     `json:"interaction_count"`
}

// SimilarProduct is a product ranked by similarity to another.
type SimilarProduct struct {
	ProductID       string  `json:"product_id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	SimilarityScore float64 `json:"similarity_score"`
}

// ProductDetails is the body of GET /products/{id}.
type ProductDetails struct {
	ProductID   string  `json:"product_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Condition   string  `json:"condition"`
	Location    string  `json:"location"`
	Rating      float64 `json:"rating"`
	Category    string  `json:"category,omitempty"`
}

func toRecommendations(items []recommend.ScoredProduct) []ProductRecommendation {
	out := make([]ProductRecommendation, len(items))
	for i, it := range items {
		out[i] = ProductRecommendation{
			ProductID:   it.Product.ID,
			Name:        it.Product.Name,
			Description: it.Product.Description,
			Price:       it.Product.Price,
			Score:       it.Score,
		}
	}
	return out
}

func toSearchResults(items []recommend.ScoredProduct) []SearchResult {
	out := make([]SearchResult, len(items))
	for i, rec := range toRecommendations(items) {
		out[i] = SearchResult(rec)
	}
	return out
}

func toTrending(items []recommend.TrendingProduct) []TrendingProduct {
	out := make([]TrendingProduct, len(items))
	for i, it := range items {
		out[i] = TrendingProduct{
			ProductID:        it.Product.ID,
			Name:             it.Product.Name,
			Description:      it.Product.Description,
			Price:            it.Product.Price,
			InteractionCount: it.Count,
		}
	}
	return out
}

func toSimilar(items []recommend.ScoredProduct) []SimilarProduct {
	out := make([]SimilarProduct, len(items))
	for i, it := range items {
		out[i] = SimilarProduct{
			ProductID:       it.Product.ID,
			Name:            it.Product.Name,
			Description:     it.Product.Description,
			Price:           it.Product.Price,
			SimilarityScore: it.Score,
		}
	}
	return out
}

func toDetails(p *catalog.Product) ProductDetails {
	return ProductDetails{
		ProductID:   p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Condition:   p.Condition,
		Location:    p.Location,
		Rating:      p.Rating,
		Category:    p.Category,
	}
}

// rankingMeta copies the strategy bookkeeping of a ranking result.
func rankingMeta[T any](res *recommend.Result[T]) func(*APIMeta) {
	return func(m *APIMeta) {
		m.Strategy = res.Strategy
		m.Skipped = res.Skipped
		m.Cached = res.Cached
		n := len(res.Items)
		m.Count = &n
	}
}
