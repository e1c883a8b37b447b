// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

/*
Package api provides the HTTP surface of the KMart service.

Routes are served by a chi router (see NewRouter) with a production
middleware stack: request ids wired into the logging context, real-IP
extraction, panic recovery, CORS, per-group rate limits, security headers,
Prometheus metrics and an access log.

# Endpoints

Ranking:

	POST /recommendations          {user_id, num_recommendations=10}
	POST /search                   {query, num_results=10}
	GET  /trending                 ?days=7&limit=10
	GET  /similar-products/{id}    ?limit=5
	GET  /products/{id}

Interaction tracking:

	POST /interactions/{category}  product-view, favorites, cart, chat, review, search
	GET  /interactions/user/{id}   ?limit=50
	GET  /interactions/product/{id} ?limit=50
	POST /user_interactions        endpoint directory

Operations:

	GET  /                         banner
	GET  /health
	POST /admin/train
	GET  /ws/interactions          live interaction feed
	GET  /metrics

# Response Format

Every JSON endpoint except the banner answers with the standard envelope:

	{
	  "success": true,
	  "data": [...],
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3, "strategy": "collaborative"}
	}

Failures carry an error object instead of data:

	{
	  "success": false,
	  "error": {"code": "NOT_FOUND", "message": "Product not found", "request_id": "..."}
	}

Error classification (sentinel error to status code) lives in errors.go.
*/
package api
