// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

/*
Package websocket pushes tracked interactions to connected clients.

The Hub owns the set of clients and runs as a supervised service. It is
registered as an event router consumer, so every interaction stored by
the tracker is broadcast to every client as:

	{"type": "interaction", "data": {"interaction_id": "...", "category": "cart", ...}}

Other message types:
  - model_trained: a training run finished
  - ping / pong: client keepalive; a client sending {"type":"ping"}
    receives {"type":"pong"}

Each client has a reader and a writer goroutine. A client whose send
buffer is full is dropped rather than slowing the broadcast.
*/
package websocket
