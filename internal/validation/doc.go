// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

// Package validation validates API request structs with go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Field names in error messages
// use the struct's json tag, so clients see the names they sent:
//
//	type RecommendationRequest struct {
//	    UserID             string `json:"user_id" validate:"required,identifier"`
//	    NumRecommendations int    `json:"num_recommendations" validate:"min=0,max=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr.Code, apiErr.Message, apiErr.Details
//	}
//
// Custom tags:
//   - identifier: non-empty, at most 128 bytes, no control characters
//   - notblank: contains at least one non-whitespace character
package validation
