// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package api

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/catalog"
	"github.com/tomtom215/kmart/internal/interactions"
	"github.com/tomtom215/kmart/internal/recommend"
	"github.com/tomtom215/kmart/internal/tracker"
	"github.com/tomtom215/kmart/internal/websocket"
)

// Trainer runs one training pass of the collaborative model.
// *recommend.Engine satisfies it; the supervisor wraps it to announce
// finished runs on the websocket feed.
type Trainer interface {
	Train(ctx context.Context) error
}

// HandlerOptions configures NewHandler. Engine, Tracker, Catalog and Log
// are required.
type HandlerOptions struct {
	Engine  *recommend.Engine
	Tracker *tracker.Tracker
	Catalog *catalog.Store
	Log     interactions.Log

	// Trainer backs POST /admin/train. Defaults to Engine.
	Trainer Trainer

	// Hub serves the live feed. Without it /ws/interactions answers 503.
	Hub *websocket.Hub

	// CORSOrigins restricts websocket upgrades. "*" allows any origin.
	CORSOrigins []string

	// RequestTimeout bounds ranking and tracking calls. Zero means no
	// limit beyond the request context.
	RequestTimeout time.Duration

	Logger zerolog.Logger
}

// Handler holds the services behind every endpoint.
type Handler struct {
	engine   *recommend.Engine
	tracker  *tracker.Tracker
	catalog  *catalog.Store
	log      interactions.Log
	trainer  Trainer
	hub      *websocket.Hub
	upgrader *gorillaws.Upgrader

	corsOrigins []string
	timeout     time.Duration
	startTime   time.Time
	logger      zerolog.Logger
}

// NewHandler builds a Handler.
//
//nolint:gocritic // HandlerOptions is passed once at startup
func NewHandler(opts HandlerOptions) (*Handler, error) {
	switch {
	case opts.Engine == nil:
		return nil, errors.New("api: engine is required")
	case opts.Tracker == nil:
		return nil, errors.New("api: tracker is required")
	case opts.Catalog == nil:
		return nil, errors.New("api: catalog is required")
	case opts.Log == nil:
		return nil, errors.New("api: interaction log is required")
	}

	h := &Handler{
		engine:      opts.Engine,
		tracker:     opts.Tracker,
		catalog:     opts.Catalog,
		log:         opts.Log,
		trainer:     opts.Trainer,
		hub:         opts.Hub,
		corsOrigins: opts.CORSOrigins,
		timeout:     opts.RequestTimeout,
		startTime:   time.Now(),
		logger:      opts.Logger.With().Str("component", "api").Logger(),
	}
	if h.trainer == nil {
		h.trainer = opts.Engine
	}
	h.upgrader = &gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkWebSocketOrigin,
	}
	return h, nil
}

// requestContext applies the per-request timeout.
func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

// checkWebSocketOrigin allows requests without an Origin header (non-browser
// clients) and origins listed in the CORS configuration.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(h.corsOrigins, "*") || slices.Contains(h.corsOrigins, origin)
}
