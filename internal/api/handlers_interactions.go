// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/kmart/internal/tracker"
)

// TrackInteraction returns the handler for POST /interactions/{category}.
// The search category takes a body without product_id.
func (h *Handler) TrackInteraction(category string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rw := NewResponseWriter(w, r)

		var treq *tracker.Request
		if category == tracker.CategorySearch {
			var req SearchInteractionRequest
			if !decodeAndValidate(rw, r, &req) {
				return
			}
			treq = req.toTracker()
		} else {
			var req ProductInteractionRequest
			if !decodeAndValidate(rw, r, &req) {
				return
			}
			treq = req.toTracker()
		}

		ctx, cancel := h.requestContext(r)
		defer cancel()

		resp, err := h.tracker.Track(ctx, category, treq)
		if err != nil {
			rw.ServiceError("track_"+category, err)
			return
		}
		rw.Success(resp)
	}
}

// UserInteractions handles GET /interactions/user/{id}?limit=50.
func (h *Handler) UserInteractions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := queryInt(r, "limit", tracker.DefaultHistoryLimit, 1, maxHistory)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	history, err := h.tracker.UserHistory(ctx, chi.URLParam(r, "id"), limit)
	if err != nil {
		rw.ServiceError("user_history", err)
		return
	}
	rw.Success(history)
}

// ProductInteractions handles GET /interactions/product/{id}?limit=50.
func (h *Handler) ProductInteractions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, err := queryInt(r, "limit", tracker.DefaultHistoryLimit, 1, maxHistory)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	history, err := h.tracker.ProductHistory(ctx, chi.URLParam(r, "id"), limit)
	if err != nil {
		rw.ServiceError("product_history", err)
		return
	}
	rw.Success(history)
}

// EndpointDirectory is the body of POST /user_interactions.
type EndpointDirectory struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// InteractionEndpoints handles POST /user_interactions, a directory of the
// interaction endpoints kept for older mobile clients.
func (h *Handler) InteractionEndpoints(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(EndpointDirectory{
		Message: "Please use specific interaction endpoints:",
		Endpoints: map[string]string{
			"product_view":             "POST /interactions/product-view",
			"favorites":                "POST /interactions/favorites",
			"cart":                     "POST /interactions/cart",
			"chat":                     "POST /interactions/chat",
			"review":                   "POST /interactions/review",
			"search":                   "POST /interactions/search",
			"get_user_interactions":    "GET /interactions/user/{user_id}",
			"get_product_interactions": "GET /interactions/product/{product_id}",
		},
	})
}
