// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package tracker

import (
	"context"
	"fmt"
	"time"
)

// UserInteraction is one entry of a user's history.
type UserInteraction struct {
	InteractionID string         `json:"interaction_id"`
	ProductID     string         `json:"product_id"`
	Kind          string         `json:"interaction_type"`
	Timestamp     time.Time      `json:"timestamp"`
	Quantity      *int           `json:"quantity"`
	Rating        *float64       `json:"rating"`
	Review        string         `json:"review"`
	Metadata      map[string]any `json:"metadata"`
}

// UserHistory is the newest-first history of one user.
type UserHistory struct {
	UserID            string            `json:"user_id"`
	TotalInteractions int               `json:"total_interactions"`
	Interactions      []UserInteraction `json:"interactions"`
}

// ProductInteraction is one entry of a product's history.
type ProductInteraction struct {
	InteractionID string         `json:"interaction_id"`
	UserID        string         `json:"user_id"`
	Kind          string         `json:"interaction_type"`
	Timestamp     time.Time      `json:"timestamp"`
	Quantity      *int           `json:"quantity"`
	Rating        *float64       `json:"rating"`
	Review        string         `json:"review"`
	Metadata      map[string]any `json:"metadata"`
}

// ProductHistory is the newest-first history of one product.
type ProductHistory struct {
	ProductID         string               `json:"product_id"`
	TotalInteractions int                  `json:"total_interactions"`
	Interactions      []ProductInteraction `json:"interactions"`
}

// UserHistory returns up to limit of the user's interactions, newest
// first. A limit <= 0 uses the configured default.
func (t *Tracker) UserHistory(ctx context.Context, userID string, limit int) (UserHistory, error) {
	evs, err := t.log.ByUser(ctx, userID, t.limit(limit))
	if err != nil {
		return UserHistory{}, fmt.Errorf("getting user interactions: %w", err)
	}

	out := UserHistory{UserID: userID, Interactions: make([]UserInteraction, len(evs))}
	for i := range evs {
		ev := &evs[i]
		out.Interactions[i] = UserInteraction{
			InteractionID: ev.ID,
			ProductID:     ev.ProductID,
			Kind:          ev.Kind,
			Timestamp:     ev.Timestamp,
			Quantity:      ev.Quantity,
			Rating:        ev.Rating,
			Review:        ev.Review,
			Metadata:      nonNil(ev.Metadata),
		}
	}
	out.TotalInteractions = len(out.Interactions)
	return out, nil
}

// ProductHistory returns up to limit of the product's interactions,
// newest first. A limit <= 0 uses the configured default.
func (t *Tracker) ProductHistory(ctx context.Context, productID string, limit int) (ProductHistory, error) {
	evs, err := t.log.ByProduct(ctx, productID, t.limit(limit))
	if err != nil {
		return ProductHistory{}, fmt.Errorf("getting product interactions: %w", err)
	}

	out := ProductHistory{ProductID: productID, Interactions: make([]ProductInteraction, len(evs))}
	for i := range evs {
		ev := &evs[i]
		out.Interactions[i] = ProductInteraction{
			InteractionID: ev.ID,
			UserID:        ev.UserID,
			Kind:          ev.Kind,
			Timestamp:     ev.Timestamp,
			Quantity:      ev.Quantity,
			Rating:        ev.Rating,
			Review:        ev.Review,
			Metadata:      nonNil(ev.Metadata),
		}
	}
	out.TotalInteractions = len(out.Interactions)
	return out, nil
}

func (t *Tracker) limit(n int) int {
	if n <= 0 {
		return t.historyLimit
	}
	return n
}

func nonNil(md map[string]any) map[string]any {
	if md == nil {
		return map[string]any{}
	}
	return md
}

