// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package interactions

import (
	"context"
	"errors"
	"time"
)

// Interaction kinds.
const (
	KindView        = "view"
	KindViewDetails = "view_details"
	KindLike        = "like"
	KindUnlike      = "unlike"
	KindAddToCart   = "add_to_cart"
	KindChatMessage = "chat_message"
	KindRating      = "rating"
	KindSearch      = "search"
)

// ErrTransientIO wraps storage failures. Callers may retry.
var ErrTransientIO = errors.New("interaction log I/O failure")

// ErrClosed is returned by operations on a closed log.
var ErrClosed = errors.New("interaction log closed")

// Event is one recorded user interaction.
type Event struct {
	ID        string    `json:"interaction_id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Kind      string    `json:"interaction_type"`
	Timestamp time.Time `json:"timestamp"`

	Quantity            *int     `json:"quantity,omitempty"`
	Value               *float64 `json:"value,omitempty"`
	Rating              *float64 `json:"rating,omitempty"`
	Review              string   `json:"review,omitempty"`
	Sentiment           string   `json:"sentiment,omitempty"`
	SocialSharePlatform string   `json:"social_share_platform,omitempty"`

	Metadata map[string]any `json:"metadata"`
}

// Log is the interaction log contract shared by every backend.
type Log interface {
	// Append stores e and returns its id. Empty ID and zero Timestamp are
	// assigned by the log; e itself is not modified.
	Append(ctx context.Context, e *Event) (string, error)

	// ByUser returns the user's events, newest first, at most limit.
	ByUser(ctx context.Context, userID string, limit int) ([]Event, error)

	// ByProduct returns the product's events, newest first, at most limit.
	ByProduct(ctx context.Context, productID string, limit int) ([]Event, error)

	// Events returns events strictly after since in chronological order.
	// A zero since returns every event.
	Events(ctx context.Context, since time.Time) ([]Event, error)

	// Len returns the number of stored events.
	Len(ctx context.Context) (int, error)

	// Backend names the storage engine.
	Backend() string

	Close() error
}
