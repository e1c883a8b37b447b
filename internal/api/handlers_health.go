// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/kmart/internal/logging"
	"github.com/tomtom215/kmart/internal/recommend"
	"github.com/tomtom215/kmart/internal/websocket"
)

// Banner is the body of GET /.
const Banner = "KMart ML API is running!"

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string                   `json:"status"`
	UptimeSeconds int64                    `json:"uptime_seconds"`
	Products      int                      `json:"products"`
	LogBackend    string                   `json:"log_backend"`
	Interactions  int                      `json:"interactions"`
	Model         recommend.TrainingStatus `json:"model"`
	Strategies    recommend.StrategyState  `json:"strategies"`
	LiveClients   int                      `json:"live_clients"`
}

// Root handles GET / with the plain banner.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"message": Banner})
}

// Health handles GET /health. A failing log read degrades the status
// instead of failing the probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := HealthStatus{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Products:      h.catalog.Len(),
		LogBackend:    h.log.Backend(),
		Model:         h.engine.Status(),
		Strategies:    h.engine.Strategies(),
	}
	if h.hub != nil {
		status.LiveClients = h.hub.ClientCount()
	}

	n, err := h.log.Len(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check could not read the interaction log")
		status.Status = "degraded"
	}
	status.Interactions = n

	rw.Success(status)
}

// TrainResult is the body of a successful POST /admin/train.
type TrainResult struct {
	Message string                   `json:"message"`
	Model   recommend.TrainingStatus `json:"model"`
}

// AdminTrain handles POST /admin/train. It runs training synchronously and
// answers 409 while another run is active.
func (h *Handler) AdminTrain(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if err := h.trainer.Train(r.Context()); err != nil {
		rw.ServiceError("train", err)
		return
	}
	rw.Success(TrainResult{
		Message: "Model trained successfully",
		Model:   h.engine.Status(),
	})
}

// LiveInteractions handles GET /ws/interactions.
func (h *Handler) LiveInteractions(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		NewResponseWriter(w, r).ServiceUnavailable("Live feed is not enabled")
		return
	}

	err := h.hub.ServeWS(w, r, h.upgrader)
	switch {
	case err == nil:
	case errors.Is(err, websocket.ErrHubStopped):
		NewResponseWriter(w, r).ServiceUnavailable("Live feed is shutting down")
	default:
		// The upgrader has already written an HTTP error.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
	}
}
