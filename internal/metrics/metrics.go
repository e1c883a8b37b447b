// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Ranking Metrics
	RankingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_requests_total",
			Help: "Ranking operations by the strategy that produced the result",
		},
		[]string{"operation", "strategy"},
	)

	RankingFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_fallbacks_total",
			Help: "Strategies that were skipped or failed before a later strategy answered",
		},
		[]string{"operation", "strategy"},
	)

	RankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_duration_seconds",
			Help:    "Duration of ranking operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"operation"},
	)

	RankingCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_cache_hits_total",
			Help: "Ranking result cache hits",
		},
		[]string{"operation"},
	)

	RankingCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_cache_misses_total",
			Help: "Ranking result cache misses",
		},
		[]string{"operation"},
	)

	// Model Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_training_runs_total",
			Help: "Collaborative filtering training runs by result",
		},
		[]string{"result"}, // "success", "error", "skipped", "busy"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "model_training_duration_seconds",
			Help:    "Duration of collaborative filtering training in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)

	ModelTrained = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_trained",
			Help: "1 when a trained factor model is serving recommendations",
		},
	)

	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_users",
			Help: "Users in the current factor model",
		},
	)

	ModelItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_items",
			Help: "Items in the current factor model",
		},
	)

	// Interaction Metrics
	InteractionsTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_tracked_total",
			Help: "Interactions appended to the log",
		},
		[]string{"category", "kind"},
	)

	InteractionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_rejected_total",
			Help: "Interactions rejected before or during append",
		},
		[]string{"category", "reason"}, // "invalid_kind", "append_error"
	)

	LogAppendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interaction_log_append_duration_seconds",
			Help:    "Interaction log append latency in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"backend"},
	)

	LogAppendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interaction_log_append_errors_total",
			Help: "Interaction log append failures",
		},
		[]string{"backend"},
	)

	// Embedder Metrics
	EmbedderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "embedder_requests_total",
			Help: "Query embedder calls by result",
		},
		[]string{"result"}, // "success", "error", "breaker_open", "rate_limited"
	)

	EmbedderBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "embedder_breaker_state",
			Help: "Query embedder circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Interaction events published on the event bus",
		},
		[]string{"transport", "result"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Interaction events handled by event bus subscribers",
		},
		[]string{"handler"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_clients",
			Help: "Connected live-feed websocket clients",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Messages queued to websocket clients",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRanking records which strategy answered an operation, and the
// strategies that were passed over on the way.
func RecordRanking(operation, strategy string, skipped []string, duration time.Duration) {
	RankingRequests.WithLabelValues(operation, strategy).Inc()
	for _, s := range skipped {
		RankingFallbacks.WithLabelValues(operation, s).Inc()
	}
	RankingDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheLookup records a ranking cache hit or miss.
func RecordCacheLookup(operation string, hit bool) {
	if hit {
		RankingCacheHits.WithLabelValues(operation).Inc()
		return
	}
	RankingCacheMisses.WithLabelValues(operation).Inc()
}

// RecordTraining records a training run. users and items are only applied on success.
func RecordTraining(result string, duration time.Duration, users, items int) {
	TrainingRuns.WithLabelValues(result).Inc()
	if result != "success" {
		return
	}
	TrainingDuration.Observe(duration.Seconds())
	ModelTrained.Set(1)
	ModelUsers.Set(float64(users))
	ModelItems.Set(float64(items))
}

// RecordAppend records one interaction log append.
func RecordAppend(backend string, duration time.Duration, err error) {
	LogAppendDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if err != nil {
		LogAppendErrors.WithLabelValues(backend).Inc()
	}
}

// RecordTracked records an accepted interaction.
func RecordTracked(category, kind string) {
	InteractionsTracked.WithLabelValues(category, kind).Inc()
}

// RecordRejected records a rejected interaction.
func RecordRejected(category, reason string) {
	InteractionsRejected.WithLabelValues(category, reason).Inc()
}

// RecordPublish records an event bus publish attempt.
func RecordPublish(transport string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(transport, result).Inc()
}
