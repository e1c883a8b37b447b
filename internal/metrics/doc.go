// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

/*
Package metrics defines the Prometheus collectors of the service.

All collectors are registered on the default registry through promauto and
exposed at /metrics by promhttp.Handler:

	curl http://localhost:8000/metrics

# Available Metrics

HTTP:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Ranking:
  - ranking_requests_total{operation,strategy}
  - ranking_fallbacks_total{operation,strategy}
  - ranking_duration_seconds{operation}
  - ranking_cache_hits_total / ranking_cache_misses_total{operation}
  - model_training_runs_total{result}, model_training_duration_seconds
  - model_trained, model_users, model_items

Interactions:
  - interactions_tracked_total{category,kind}
  - interactions_rejected_total{category,reason}
  - interaction_log_append_duration_seconds{backend}
  - interaction_log_append_errors_total{backend}

Embedder, events and websocket:
  - embedder_requests_total{result}, embedder_breaker_state
  - events_published_total{transport,result}, events_consumed_total{handler}
  - websocket_clients, websocket_messages_sent_total

The endpoint label carries the chi route pattern, never the raw path, so
product and user ids do not create series.
*/
package metrics
