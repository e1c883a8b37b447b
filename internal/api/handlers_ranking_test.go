// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package api

import (
	"context"
	"net/http"
	"slices"
	"testing"

	"github.com/tomtom215/kmart/internal/interactions"
)

func productIDs[T any](items []T, id func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}

func TestRecommendations_PopularityForUntrainedModel(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/recommendations", map[string]interface{}{"user_id": "alice"})
	resp := decodeEnvelope(t, rec, http.StatusOK)

	items := decodeData[[]ProductRecommendation](t, resp)
	got := productIDs(items, func(p ProductRecommendation) string { return p.ProductID })
	want := []string{"p5", "p2", "p3", "p4", "p1"}
	if !slices.Equal(got, want) {
		t.Errorf("recommendations = %v, want %v", got, want)
	}
	if resp.Meta == nil || resp.Meta.Strategy != "popularity" {
		t.Errorf("meta = %+v, want strategy popularity", resp.Meta)
	}
	if resp.Meta.Count == nil || *resp.Meta.Count != 5 {
		t.Errorf("meta.count = %v, want 5", resp.Meta.Count)
	}
	if items[0].Name != "USB Cable" || items[0].Price != 5 {
		t.Errorf("first item = %+v", items[0])
	}
}

func TestRecommendations_RespectsCount(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"two", 2, 2},
		{"zero", 0, 0},
		{"more than catalog", 50, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := env.do(t, http.MethodPost, "/recommendations", map[string]interface{}{
				"user_id":             "bob",
				"num_recommendations": tt.n,
			})
			items := decodeData[[]ProductRecommendation](t, decodeEnvelope(t, rec, http.StatusOK))
			if len(items) != tt.want {
				t.Errorf("len = %d, want %d", len(items), tt.want)
			}
		})
	}
}

func TestRecommendations_OpaqueUserID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/recommendations", map[string]interface{}{
		"user_id":             "jane doe",
		"num_recommendations": 2,
	})
	items := decodeData[[]ProductRecommendation](t, decodeEnvelope(t, rec, http.StatusOK))
	if len(items) != 2 {
		t.Errorf("len = %d, want 2", len(items))
	}
}

func TestRecommendations_RejectsBadRequests(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name string
		body interface{}
		code string
	}{
		{"missing user", map[string]interface{}{"num_recommendations": 3}, ErrCodeValidationFailed},
		{"user with control character", map[string]interface{}{"user_id": "a\u0000b"}, ErrCodeValidationFailed},
		{"negative count", map[string]interface{}{"user_id": "a", "num_recommendations": -1}, ErrCodeValidationFailed},
		{"count too large", map[string]interface{}{"user_id": "a", "num_recommendations": 1000}, ErrCodeValidationFailed},
		{"malformed json", `{"user_id":`, ErrCodeInvalidJSON},
		{"empty body", "", ErrCodeInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wantErrorCode(t, env.do(t, http.MethodPost, "/recommendations", tt.body), http.StatusBadRequest, tt.code)
		})
	}
}

func TestSearch_KeywordBeforeWarm(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/search", map[string]interface{}{"query": "PHONE", "num_results": 5})
	resp := decodeEnvelope(t, rec, http.StatusOK)

	items := decodeData[[]SearchResult](t, resp)
	got := productIDs(items, func(p SearchResult) string { return p.ProductID })
	if !slices.Equal(got, []string{"p1", "p2"}) {
		t.Errorf("search = %v, want [p1 p2]", got)
	}
	for _, it := range items {
		if it.Score != 0.5 {
			t.Errorf("%s score = %v, want 0.5", it.ProductID, it.Score)
		}
	}
	if resp.Meta.Strategy != "keyword" {
		t.Errorf("strategy = %q, want keyword", resp.Meta.Strategy)
	}
	if !slices.Contains(resp.Meta.Skipped, "semantic") {
		t.Errorf("skipped = %v, want semantic listed", resp.Meta.Skipped)
	}
}

func TestSearch_TFIDFAfterWarm(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	if err := env.handler.engine.Warm(context.Background()); err != nil {
		t.Fatalf("Warm() error = %v", err)
	}

	rec := env.do(t, http.MethodPost, "/search", map[string]interface{}{"query": "oak table"})
	resp := decodeEnvelope(t, rec, http.StatusOK)

	items := decodeData[[]SearchResult](t, resp)
	if len(items) == 0 || items[0].ProductID != "p4" {
		t.Errorf("search = %+v, want p4 first", items)
	}
	if resp.Meta.Strategy != "tfidf" {
		t.Errorf("strategy = %q, want tfidf", resp.Meta.Strategy)
	}
}

func TestSearch_BlankQueryRejected(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, q := range []string{"", "   "} {
		rec := env.do(t, http.MethodPost, "/search", map[string]interface{}{"query": q})
		wantErrorCode(t, rec, http.StatusBadRequest, ErrCodeValidationFailed)
	}
}

func TestTrending(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	ctx := context.Background()
	for _, pid := range []string{"p3", "p3", "p3", "p1", "p1", "p4"} {
		if _, err := env.log.Append(ctx, &interactions.Event{
			UserID:    "u",
			ProductID: pid,
			Kind:      interactions.KindView,
			Timestamp: testNow.AddDate(0, 0, -1),
		}); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	tests := []struct {
		name  string
		query string
		want  []string
		count int
	}{
		{"defaults", "/trending", []string{"p3", "p1", "p4"}, 3},
		{"limit", "/trending?limit=2", []string{"p3", "p1"}, 3},
		{"all time", "/trending?days=0&limit=1", []string{"p3"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			items := decodeData[[]TrendingProduct](t, decodeEnvelope(t, env.do(t, http.MethodGet, tt.query, nil), http.StatusOK))
			got := productIDs(items, func(p TrendingProduct) string { return p.ProductID })
			if !slices.Equal(got, tt.want) {
				t.Errorf("trending = %v, want %v", got, tt.want)
			}
			if items[0].InteractionCount != tt.count {
				t.Errorf("interaction_count = %d, want %d", items[0].InteractionCount, tt.count)
			}
		})
	}
}

func TestTrending_BadQuery(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, q := range []string{"/trending?days=-1", "/trending?days=abc", "/trending?limit=101"} {
		wantErrorCode(t, env.do(t, http.MethodGet, q, nil), http.StatusBadRequest, ErrCodeBadRequest)
	}
}

func TestSimilarProducts(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/similar-products/p2?limit=2", nil)
	resp := decodeEnvelope(t, rec, http.StatusOK)

	items := decodeData[[]SimilarProduct](t, resp)
	got := productIDs(items, func(p SimilarProduct) string { return p.ProductID })
	if !slices.Equal(got, []string{"p5", "p1"}) {
		t.Errorf("similar = %v, want [p5 p1]", got)
	}
	if slices.Contains(got, "p2") {
		t.Error("similar products must not contain the target")
	}
	if resp.Meta.Strategy != "attribute" {
		t.Errorf("strategy = %q, want attribute", resp.Meta.Strategy)
	}
	if items[0].SimilarityScore <= items[1].SimilarityScore {
		t.Errorf("scores not descending: %v, %v", items[0].SimilarityScore, items[1].SimilarityScore)
	}
}

func TestSimilarProducts_UnknownProduct(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	wantErrorCode(t, env.do(t, http.MethodGet, "/similar-products/ghost", nil), http.StatusNotFound, ErrCodeNotFound)
}

func TestProductDetail(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/products/p1", nil)
	details := decodeData[ProductDetails](t, decodeEnvelope(t, rec, http.StatusOK))

	want := ProductDetails{
		ProductID:   "p1",
		Name:        "Samsung Galaxy Phone",
		Description: "Android phone",
		Price:       500,
		Condition:   "New",
		Location:    "Kampala",
		Rating:      4.5,
		Category:    "electronics",
	}
	if details != want {
		t.Errorf("details = %+v, want %+v", details, want)
	}

	wantErrorCode(t, env.do(t, http.MethodGet, "/products/ghost", nil), http.StatusNotFound, ErrCodeNotFound)
}
