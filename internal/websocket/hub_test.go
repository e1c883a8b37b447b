// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/events"
)

// startHub runs a hub until the test ends.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.Serve(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	waitUntil(t, func() bool {
		select {
		case <-hub.done():
			return false
		default:
			return true
		}
	})
	return hub
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 5s")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// fakeClient is a registered client without a connection.
func fakeClient(hub *Hub, buffer int) *Client {
	return &Client{id: clientIDCounter.Add(1), session: "test", hub: hub, send: make(chan Message, buffer)}
}

func receiveMessage(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestHub_BroadcastToRegisteredClients(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	a, b := fakeClient(hub, 4), fakeClient(hub, 4)
	hub.Register <- a
	hub.Register <- b
	waitUntil(t, func() bool { return hub.ClientCount() == 2 })

	hub.BroadcastJSON(MessageTypeModelTrained, map[string]any{"users": 3})

	for _, c := range []*Client{a, b} {
		if msg := receiveMessage(t, c); msg.Type != MessageTypeModelTrained {
			t.Errorf("Type = %q, want model_trained", msg.Type)
		}
	}
}

func TestHub_HandleInteraction(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	c := fakeClient(hub, 4)
	hub.Register <- c
	waitUntil(t, func() bool { return hub.ClientCount() == 1 })

	ev := events.Interaction{ID: "int_1", Category: "cart", UserID: "u1", Kind: "add_to_cart"}
	if err := hub.HandleInteraction(context.Background(), ev); err != nil {
		t.Fatalf("HandleInteraction() error = %v", err)
	}

	msg := receiveMessage(t, c)
	if msg.Type != MessageTypeInteraction {
		t.Fatalf("Type = %q, want interaction", msg.Type)
	}
	if got, ok := msg.Data.(events.Interaction); !ok || got.ID != "int_1" {
		t.Errorf("Data = %#v", msg.Data)
	}
}

func TestHub_Unregister(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	c := fakeClient(hub, 1)
	hub.Register <- c
	waitUntil(t, func() bool { return hub.ClientCount() == 1 })

	hub.unregister(c)
	waitUntil(t, func() bool { return hub.ClientCount() == 0 })
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed after unregister")
	}

	// A second unregister must not close the channel again.
	hub.unregister(c)
}

func TestHub_DropsSlowClient(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	slow := fakeClient(hub, 1)
	hub.Register <- slow
	waitUntil(t, func() bool { return hub.ClientCount() == 1 })

	hub.BroadcastJSON("a", nil)
	hub.BroadcastJSON("b", nil)
	waitUntil(t, func() bool { return hub.ClientCount() == 0 })

	if msg := <-slow.send; msg.Type != "a" {
		t.Errorf("buffered message = %q, want a", msg.Type)
	}
	if _, ok := <-slow.send; ok {
		t.Error("dropped client channel should be closed")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.Serve(ctx) }()

	c := fakeClient(hub, 1)
	hub.Register <- c
	waitUntil(t, func() bool { return hub.ClientCount() == 1 })

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return")
	}

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after shutdown", hub.ClientCount())
	}
	if _, ok := <-c.send; ok {
		t.Error("client channel should be closed on shutdown")
	}

	// unregister after shutdown returns instead of blocking
	hub.unregister(c)
}

func TestHub_BroadcastQueueFull(t *testing.T) {
	t.Parallel()

	hub := NewHub(zerolog.Nop())
	for i := 0; i < cap(hub.broadcast)+10; i++ {
		hub.BroadcastJSON("x", i)
	}
	if len(hub.broadcast) != cap(hub.broadcast) {
		t.Errorf("queue length = %d, want %d", len(hub.broadcast), cap(hub.broadcast))
	}
}

func TestHub_String(t *testing.T) {
	t.Parallel()

	if got := NewHub(zerolog.Nop()).String(); got != "websocket-hub" {
		t.Errorf("String() = %q", got)
	}
}

func TestMarshalMessage(t *testing.T) {
	t.Parallel()

	data, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"pong"}` {
		t.Errorf("MarshalMessage() = %s", data)
	}
}

func newWSServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := &websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.ServeWS(w, r, upgrader); errors.Is(err, ErrHubStopped) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatal(err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var frame map[string]any
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("decode frame %s: %v", data, err)
	}
	return frame
}

func TestServeWS_LiveFeed(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	conn := dial(t, newWSServer(t, hub))
	waitUntil(t, func() bool { return hub.ClientCount() == 1 })

	if err := hub.HandleInteraction(context.Background(), events.Interaction{ID: "int_live", Category: "favorites", Kind: "like"}); err != nil {
		t.Fatal(err)
	}

	frame := readFrame(t, conn)
	if frame["type"] != MessageTypeInteraction {
		t.Fatalf("frame = %v", frame)
	}
	data, _ := frame["data"].(map[string]any)
	if data["interaction_id"] != "int_live" || data["category"] != "favorites" {
		t.Errorf("data = %v", data)
	}
}

func TestServeWS_PingPong(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	conn := dial(t, newWSServer(t, hub))

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatal(err)
	}
	if frame := readFrame(t, conn); frame["type"] != MessageTypePong {
		t.Errorf("frame = %v, want pong", frame)
	}
}

func TestServeWS_ClientDisconnect(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	conn := dial(t, newWSServer(t, hub))
	waitUntil(t, func() bool { return hub.ClientCount() == 1 })

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
	waitUntil(t, func() bool { return hub.ClientCount() == 0 })
}

func TestServeWS_HubStopped(t *testing.T) {
	t.Parallel()

	srv := newWSServer(t, NewHub(zerolog.Nop()))
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err == nil {
		t.Fatal("Dial() should fail while the hub is stopped")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("response = %v, want 503", resp)
	}
}
