// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/kmart/internal/middleware"
	"github.com/tomtom215/kmart/internal/tracker"
)

// NewRouter configures every HTTP route. A nil mw uses the default
// middleware configuration.
func NewRouter(h *Handler, mw *ChiMiddleware) http.Handler {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}

	r := chi.NewRouter()

	// Global stack, applied to every route in order.
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered
	r.Use(chiMiddleware(middleware.AccessLog))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	// Banner and health
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/", h.Root)
		r.Get("/health", h.Health)
	})

	// Ranking
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Post("/recommendations", h.Recommendations)
		r.Post("/search", h.Search)
		r.Get("/trending", h.Trending)
		r.Get("/similar-products/{id}", h.SimilarProducts)
		r.Get("/products/{id}", h.ProductDetail)
	})

	// Interaction tracking
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitTracking))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Route("/interactions", func(r chi.Router) {
			for _, category := range tracker.Categories() {
				r.Post("/"+category, h.TrackInteraction(category))
			}
			r.Get("/user/{id}", h.UserInteractions)
			r.Get("/product/{id}", h.ProductInteractions)
		})
		r.Post("/user_interactions", h.InteractionEndpoints)
	})

	// Operations
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitAdmin))
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Post("/admin/train", h.AdminTrain)
	})

	r.With(
		mw.RateLimitCustom(RateLimitWebSocket),
		chiMiddleware(middleware.PrometheusMetrics),
	).Get("/ws/interactions", h.LiveInteractions)

	r.Handle("/metrics", promhttp.Handler())

	return r
}
