// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package tracker

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/tomtom215/kmart/internal/interactions"
)

// Categories.
const (
	CategoryProductView = "product-view"
	CategoryFavorites   = "favorites"
	CategoryCart        = "cart"
	CategoryChat        = "chat"
	CategoryReview      = "review"
	CategorySearch      = "search"
)

var (
	// ErrInvalidInteractionType is returned when the kind is not allowed
	// for the category. Nothing is appended.
	ErrInvalidInteractionType = errors.New("invalid interaction type")

	// ErrUnknownCategory is returned for a category that does not exist.
	ErrUnknownCategory = errors.New("unknown interaction category")
)

// allowedKinds is the kind table. Keep in sync with categoryOrder.
var allowedKinds = map[string][]string{
	CategoryProductView: {interactions.KindView, interactions.KindViewDetails},
	CategoryFavorites:   {interactions.KindLike, interactions.KindUnlike},
	CategoryCart:        {interactions.KindAddToCart},
	CategoryChat:        {interactions.KindChatMessage},
	CategoryReview:      {interactions.KindRating},
	CategorySearch:      {interactions.KindSearch},
}

var categoryOrder = []string{
	CategoryProductView,
	CategoryFavorites,
	CategoryCart,
	CategoryChat,
	CategoryReview,
	CategorySearch,
}

// Categories returns every category in display order.
func Categories() []string {
	return slices.Clone(categoryOrder)
}

// AllowedKinds returns the kinds accepted by category, or nil for an
// unknown category.
func AllowedKinds(category string) []string {
	return slices.Clone(allowedKinds[category])
}

// checkKind validates kind against the category table.
func checkKind(category, kind string) error {
	kinds, ok := allowedKinds[category]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if !slices.Contains(kinds, kind) {
		return fmt.Errorf("%w %q for %s: must be one of %s",
			ErrInvalidInteractionType, kind, category, quoted(kinds))
	}
	return nil
}

func quoted(values []string) string {
	q := make([]string, len(values))
	for i, v := range values {
		q[i] = "'" + v + "'"
	}
	return strings.Join(q, " or ")
}

// successMessage is the response message for an accepted interaction.
func successMessage(category, kind string) string {
	switch category {
	case CategoryCart:
		return "Product added to cart tracked successfully"
	case CategoryChat:
		return "Chat interaction tracked successfully"
	case CategoryReview:
		return "Review interaction tracked successfully"
	case CategorySearch:
		return "Search interaction tracked successfully"
	default:
		return "Product " + kind + " tracked successfully"
	}
}
