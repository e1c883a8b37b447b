// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package tracker

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/kmart/internal/catalog"
	"github.com/tomtom215/kmart/internal/interactions"
)

// Metadata keys written by enrichment.
const (
	KeyProductName    = "product_name"
	KeyCategory       = "category"
	KeyPrice          = "price"
	KeySource         = "source"
	KeyQuantity       = "quantity"
	KeySellerInfo     = "seller_info"
	KeyMessageLength  = "message_length"
	KeyChatRoomID     = "chat_room_id"
	KeyRatingValue    = "rating_value"
	KeyPreviousRating = "previous_rating"
	KeyReviewText     = "review_text"
)

// DefaultSource is recorded on product views that do not name a source.
const DefaultSource = "flutter_app"

// enrich merges catalog attributes into md for a found product. Catalog
// attributes overwrite; category extras only fill missing keys.
func enrich(category string, md map[string]any, p *catalog.Product) {
	md[KeyProductName] = p.Name

	switch category {
	case CategoryProductView:
		md[KeyCategory] = p.Category
		md[KeyPrice] = p.Price
		setDefault(md, KeySource, DefaultSource)
	case CategoryFavorites:
		md[KeyCategory] = p.Category
		md[KeyPrice] = p.Price
	case CategoryCart:
		md[KeyCategory] = p.Category
		md[KeyPrice] = p.Price
		setDefault(md, KeyQuantity, 1)
	case CategoryChat:
		setDefault(md, KeySellerInfo, "")
		setDefault(md, KeyMessageLength, 0)
		setDefault(md, KeyChatRoomID, "")
	case CategoryReview:
		md[KeyCategory] = p.Category
		setDefault(md, KeyRatingValue, 0)
		setDefault(md, KeyPreviousRating, nil)
	}
}

// applyEventFields copies category fields from md onto ev. This runs
// whether or not the product was found.
func applyEventFields(category string, md map[string]any, ev *interactions.Event) {
	switch category {
	case CategoryCart:
		q := 1
		if v, ok := asInt(md[KeyQuantity]); ok {
			q = v
		}
		ev.Quantity = &q
	case CategoryReview:
		r := 0.0
		if v, ok := asFloat(md[KeyRatingValue]); ok {
			r = v
		}
		ev.Rating = &r
		if s, ok := md[KeyReviewText].(string); ok {
			ev.Review = s
		}
	}
}

func setDefault(md map[string]any, key string, value any) {
	if _, ok := md[key]; !ok {
		md[key] = value
	}
}

func asFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
