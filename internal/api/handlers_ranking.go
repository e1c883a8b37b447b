// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Recommendations handles POST /recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := RecommendationRequest{NumRecommendations: defaultRecommendations}
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	res, err := h.engine.Recommend(ctx, req.UserID, req.NumRecommendations)
	if err != nil {
		rw.ServiceError("recommend", err)
		return
	}
	rw.SuccessWithMeta(toRecommendations(res.Items), rankingMeta(&res))
}

// Search handles POST /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	req := SearchRequest{NumResults: defaultSearchResults}
	if !decodeAndValidate(rw, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	res, err := h.engine.Search(ctx, req.Query, req.NumResults)
	if err != nil {
		rw.ServiceError("search", err)
		return
	}
	rw.SuccessWithMeta(toSearchResults(res.Items), rankingMeta(&res))
}

// Trending handles GET /trending?days=7&limit=10. days=0 counts the whole log.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	days, err := queryInt(r, "days", defaultTrendingDays, 0, maxTrendingDay)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}
	limit, err := queryInt(r, "limit", defaultTrendingLimit, 0, maxResults)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	res, err := h.engine.Trending(ctx, days, limit)
	if err != nil {
		rw.ServiceError("trending", err)
		return
	}
	rw.SuccessWithMeta(toTrending(res.Items), rankingMeta(&res))
}

// SimilarProducts handles GET /similar-products/{id}?limit=5.
func (h *Handler) SimilarProducts(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := queryInt(r, "limit", defaultSimilarLimit, 0, maxResults)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	res, err := h.engine.SimilarTo(ctx, chi.URLParam(r, "id"), limit)
	if err != nil {
		rw.ServiceError("similar", err)
		return
	}
	rw.SuccessWithMeta(toSimilar(res.Items), rankingMeta(&res))
}

// ProductDetail handles GET /products/{id}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	p, ok := h.catalog.Get(chi.URLParam(r, "id"))
	if !ok {
		rw.NotFound("Product not found")
		return
	}
	rw.Success(toDetails(&p))
}
