// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/events"
	"github.com/tomtom215/kmart/internal/metrics"
)

// Message types.
const (
	MessageTypeInteraction  = "interaction"
	MessageTypeModelTrained = "model_trained"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
)

// Message is one frame sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ErrHubStopped is returned when a client connects while the hub is not running.
var ErrHubStopped = errors.New("websocket hub not running")

// Hub tracks clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	runMu   sync.Mutex
	stopped chan struct{}

	logger zerolog.Logger
}

// NewHub creates a stopped hub. Serve runs it.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHub(logger zerolog.Logger) *Hub {
	stopped := make(chan struct{})
	close(stopped)
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		stopped:    stopped,
		logger:     logger.With().Str("component", "websocket-hub").Logger(),
	}
}

// Serve runs the hub until ctx is canceled, then closes every client.
// Client lifecycle events are handled before broadcasts.
func (h *Hub) Serve(ctx context.Context) error {
	done := make(chan struct{})
	h.runMu.Lock()
	h.stopped = done
	h.runMu.Unlock()
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.Register:
			h.add(c)
			continue
		case c := <-h.Unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case c := <-h.Register:
			h.add(c)
		case c := <-h.Unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// String names the service for the supervisor.
func (h *Hub) String() string { return "websocket-hub" }

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(n))
	h.logger.Info().Str("session", c.session).Int("total_clients", n).Msg("Websocket client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Set(float64(n))
	h.logger.Info().Str("session", c.session).Int("total_clients", n).Msg("Websocket client disconnected")
}

func (h *Hub) done() <-chan struct{} {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	return h.stopped
}

// unregister removes c, or does nothing when the hub has stopped and
// already dropped it.
func (h *Hub) unregister(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done():
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	n := h.ClientCount()
	h.closeAllClients()
	reason := "context_canceled"
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		reason = "context_deadline"
	}
	h.logger.Info().Str("reason", reason).Int("clients_closed", n).Msg("Websocket hub stopped")
}

// broadcastToClients sends msg to every client in id order and drops
// clients whose buffer is full.
func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var dropped []*Client
	for _, c := range h.sortedClients() {
		select {
		case c.send <- msg:
			metrics.WSMessagesSent.Inc()
		default:
			dropped = append(dropped, c)
		}
	}
	for _, c := range dropped {
		close(c.send)
		delete(h.clients, c)
		h.logger.Warn().Str("session", c.session).Msg("Dropping slow websocket client")
	}
	if len(dropped) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.sortedClients() {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.WSConnections.Set(0)
}

// sortedClients must be called with mu held.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastJSON queues a message for every client. It never blocks; a
// full queue drops the message.
func (h *Hub) BroadcastJSON(messageType string, data any) {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
	default:
		h.logger.Warn().Str("type", messageType).Msg("Broadcast queue full, dropping message")
	}
}

// HandleInteraction broadcasts a tracked interaction. It is an
// events.ConsumerFunc.
func (h *Hub) HandleInteraction(_ context.Context, ev events.Interaction) error {
	h.BroadcastJSON(MessageTypeInteraction, ev)
	return nil
}

// ServeWS upgrades the request and registers the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader) error {
	select {
	case <-h.done():
		return ErrHubStopped
	default:
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade: %w", err)
	}

	c := NewClient(h, conn)
	select {
	case h.Register <- c:
	case <-h.done():
		_ = conn.Close()
		return ErrHubStopped
	case <-r.Context().Done():
		_ = conn.Close()
		return r.Context().Err()
	}
	c.Start()
	return nil
}

// MarshalMessage encodes msg as JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
