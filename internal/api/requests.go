// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kmart/internal/tracker"
	"github.com/tomtom215/kmart/internal/validation"
)

// Request body limits and query defaults.
const (
	maxBodyBytes = 1 << 20

	defaultRecommendations = 10
	defaultSearchResults   = 10
	defaultTrendingDays    = 7
	defaultTrendingLimit   = 10
	defaultSimilarLimit    = 5

	maxResults     = 100
	maxHistory     = 500
	maxTrendingDay = 3650
)

// RecommendationRequest is the body of POST /recommendations.
type RecommendationRequest struct {
	UserID             string `json:"user_id" validate:"required,identifier"`
	NumRecommendations int    `json:"num_recommendations" validate:"gte=0,lte=100"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query      string `json:"query" validate:"required,notblank,max=512"`
	NumResults int    `json:"num_results" validate:"gte=0,lte=100"`
}

// ProductInteractionRequest is the body of every interaction category
// except search.
type ProductInteractionRequest struct {
	UserID          string         `json:"user_id" validate:"required,identifier"`
	ProductID       string         `json:"product_id" validate:"required,identifier"`
	InteractionType string         `json:"interaction_type"`
	Metadata        map[string]any `json:"metadata"`
}

// SearchInteractionRequest is the body of POST /interactions/search.
type SearchInteractionRequest struct {
	UserID          string         `json:"user_id" validate:"required,identifier"`
	InteractionType string         `json:"interaction_type"`
	Metadata        map[string]any `json:"metadata"`
}

func (r *ProductInteractionRequest) toTracker() *tracker.Request {
	return &tracker.Request{
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Kind:      r.InteractionType,
		Metadata:  r.Metadata,
	}
}

func (r *SearchInteractionRequest) toTracker() *tracker.Request {
	return &tracker.Request{
		UserID:   r.UserID,
		Kind:     r.InteractionType,
		Metadata: r.Metadata,
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes
// the error response itself and reports whether the handler may continue.
// Fields already set on dst act as defaults for absent keys.
func decodeAndValidate(rw *ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(rw.w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
		case errors.Is(err, io.EOF):
			rw.Error(http.StatusBadRequest, ErrCodeInvalidJSON, "Request body is required")
		default:
			rw.Error(http.StatusBadRequest, ErrCodeInvalidJSON, "Invalid JSON in request body")
		}
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		rw.ValidationError(verr)
		return false
	}
	return true
}

// queryInt parses an integer query parameter within [lo, hi]. Absent or
// empty parameters yield def.
func queryInt(r *http.Request, name string, def, lo, hi int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%s must be between %d and %d", name, lo, hi)
	}
	return v, nil
}
