// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package tracker

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/catalog"
	"github.com/tomtom215/kmart/internal/events"
	"github.com/tomtom215/kmart/internal/interactions"
	"github.com/tomtom215/kmart/internal/logging"
	"github.com/tomtom215/kmart/internal/metrics"
)

// DefaultHistoryLimit caps history queries that do not pass a limit.
const DefaultHistoryLimit = 50

// Publisher announces stored interactions.
type Publisher interface {
	Publish(ctx context.Context, ev *events.Interaction) error
}

// Request is one interaction reported by a client. ProductID is ignored
// for search interactions.
type Request struct {
	UserID    string
	ProductID string
	Kind      string
	Metadata  map[string]any
}

// Response acknowledges a stored interaction.
type Response struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	InteractionID string `json:"interaction_id,omitempty"`
}

// Options configures a Tracker.
type Options struct {
	Catalog   *catalog.Store
	Log       interactions.Log
	Publisher Publisher // optional

	HistoryLimit int
	Now          func() time.Time
	Logger       zerolog.Logger
}

// Tracker records interactions. It is safe for concurrent use.
type Tracker struct {
	catalog      *catalog.Store
	log          interactions.Log
	publisher    Publisher
	historyLimit int
	now          func() time.Time
	logger       zerolog.Logger
}

// New creates a Tracker.
func New(opts Options) (*Tracker, error) {
	if opts.Catalog == nil {
		return nil, errors.New("tracker: catalog is required")
	}
	if opts.Log == nil {
		return nil, errors.New("tracker: interaction log is required")
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{
		catalog:      opts.Catalog,
		log:          opts.Log,
		publisher:    opts.Publisher,
		historyLimit: opts.HistoryLimit,
		now:          opts.Now,
		logger:       opts.Logger.With().Str("component", "tracker").Logger(),
	}, nil
}

// TrackProductView records a product card tap or details page view.
func (t *Tracker) TrackProductView(ctx context.Context, req *Request) (Response, error) {
	return t.Track(ctx, CategoryProductView, req)
}

// TrackFavorite records a like or unlike.
func (t *Tracker) TrackFavorite(ctx context.Context, req *Request) (Response, error) {
	return t.Track(ctx, CategoryFavorites, req)
}

// TrackCart records an add to cart.
func (t *Tracker) TrackCart(ctx context.Context, req *Request) (Response, error) {
	return t.Track(ctx, CategoryCart, req)
}

// TrackChat records a chat message about a product.
func (t *Tracker) TrackChat(ctx context.Context, req *Request) (Response, error) {
	return t.Track(ctx, CategoryChat, req)
}

// TrackReview records a rating.
func (t *Tracker) TrackReview(ctx context.Context, req *Request) (Response, error) {
	return t.Track(ctx, CategoryReview, req)
}

// TrackSearch records a search. The product id is always stored empty.
func (t *Tracker) TrackSearch(ctx context.Context, req *Request) (Response, error) {
	return t.Track(ctx, CategorySearch, req)
}

// Track validates, enriches, stores and announces one interaction.
func (t *Tracker) Track(ctx context.Context, category string, req *Request) (Response, error) {
	if err := checkKind(category, req.Kind); err != nil {
		reason := "invalid_kind"
		if errors.Is(err, ErrUnknownCategory) {
			reason = "unknown_category"
		}
		metrics.RecordRejected(category, reason)
		return Response{}, err
	}

	ev := t.build(category, req)

	id, err := t.log.Append(ctx, &ev)
	if err != nil {
		metrics.RecordRejected(category, "append_error")
		t.logger.Error().Err(err).
			Str("request_id", logging.RequestIDFromContext(ctx)).
			Str("category", category).
			Str("user_id", ev.UserID).
			Msg("Failed to store interaction")
		return Response{}, fmt.Errorf("tracking %s interaction: %w", category, err)
	}
	ev.ID = id
	metrics.RecordTracked(category, ev.Kind)

	t.publish(ctx, category, &ev)

	return Response{
		Success:       true,
		Message:       successMessage(category, ev.Kind),
		InteractionID: id,
	}, nil
}

func (t *Tracker) build(category string, req *Request) interactions.Event {
	md := make(map[string]any, len(req.Metadata)+4)
	maps.Copy(md, req.Metadata)

	ev := interactions.Event{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Kind:      req.Kind,
		Timestamp: t.now().UTC(),
		Metadata:  md,
	}

	if category == CategorySearch {
		ev.ProductID = ""
		return ev
	}

	if p, ok := t.catalog.Get(req.ProductID); ok {
		enrich(category, md, &p)
	}
	applyEventFields(category, md, &ev)
	return ev
}

func (t *Tracker) publish(ctx context.Context, category string, ev *interactions.Event) {
	if t.publisher == nil {
		return
	}
	msg := &events.Interaction{
		ID:        ev.ID,
		Category:  category,
		UserID:    ev.UserID,
		ProductID: ev.ProductID,
		Kind:      ev.Kind,
		Timestamp: ev.Timestamp,
		Metadata:  ev.Metadata,
	}
	if err := t.publisher.Publish(ctx, msg); err != nil {
		t.logger.Warn().Err(err).
			Str("interaction_id", ev.ID).
			Str("category", category).
			Msg("Failed to publish interaction event")
	}
}
