// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/events"
	"github.com/tomtom215/kmart/internal/recommend"
	"github.com/tomtom215/kmart/internal/websocket"
)

type fakeTrainer struct {
	err   error
	calls int
}

func (f *fakeTrainer) Train(context.Context) error {
	f.calls++
	return f.err
}

func TestRoot_Banner(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != Banner || len(body) != 1 {
		t.Errorf("banner = %v", body)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	decodeEnvelope(t, env.do(t, http.MethodPost, "/interactions/product-view", map[string]interface{}{
		"user_id": "u1", "product_id": "p1", "interaction_type": "view",
	}), http.StatusOK)

	status := decodeData[HealthStatus](t, decodeEnvelope(t, env.do(t, http.MethodGet, "/health", nil), http.StatusOK))
	if status.Status != "healthy" {
		t.Errorf("status = %q, want healthy", status.Status)
	}
	if status.Products != 5 {
		t.Errorf("products = %d, want 5", status.Products)
	}
	if status.LogBackend != "memory" {
		t.Errorf("log_backend = %q, want memory", status.LogBackend)
	}
	if status.Interactions != 1 {
		t.Errorf("interactions = %d, want 1", status.Interactions)
	}
	if status.Model.Trained || status.Strategies.Collaborative {
		t.Errorf("model should be untrained: %+v", status.Model)
	}
}

func TestAdminTrain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"in progress", recommend.ErrTrainingInProgress, http.StatusConflict, ErrCodeTrainingInProgress},
		{"insufficient data", recommend.ErrInsufficientData, http.StatusUnprocessableEntity, ErrCodeInsufficientData},
		{"storage failure", errors.New("disk on fire"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			trainer := &fakeTrainer{err: tt.err}
			env := newTestEnv(t, func(o *HandlerOptions) { o.Trainer = trainer })

			rec := env.do(t, http.MethodPost, "/admin/train", nil)
			wantErrorCode(t, rec, tt.status, tt.code)
			if strings.Contains(rec.Body.String(), "disk on fire") {
				t.Error("internal error detail leaked to the client")
			}
			if trainer.calls != 1 {
				t.Errorf("Train calls = %d, want 1", trainer.calls)
			}
		})
	}
}

func TestAdminTrain_Success(t *testing.T) {
	t.Parallel()
	trainer := &fakeTrainer{}
	env := newTestEnv(t, func(o *HandlerOptions) { o.Trainer = trainer })

	res := decodeData[TrainResult](t, decodeEnvelope(t, env.do(t, http.MethodPost, "/admin/train", nil), http.StatusOK))
	if res.Message == "" {
		t.Error("message is empty")
	}
}

func TestAdminTrain_EngineRejectsEmptyLog(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	wantErrorCode(t, env.do(t, http.MethodPost, "/admin/train", nil), http.StatusUnprocessableEntity, ErrCodeInsufficientData)
}

func TestLiveInteractions_NoHub(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	wantErrorCode(t, env.do(t, http.MethodGet, "/ws/interactions", nil), http.StatusServiceUnavailable, ErrCodeServiceUnavailable)
}

func TestLiveInteractions_Feed(t *testing.T) {
	t.Parallel()

	hub := websocket.NewHub(zerolog.Nop())
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

	env := newTestEnv(t, func(o *HandlerOptions) { o.Hub = hub })
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/interactions"

	// The hub may still be starting; it answers 503 until it runs.
	var conn *gorillaws.Conn
	deadline := time.Now().Add(5 * time.Second)
	for {
		c, resp, err := gorillaws.DefaultDialer.Dial(url, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err == nil {
			conn = c
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("dial: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Cleanup(func() { _ = conn.Close() })

	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := hub.HandleInteraction(ctx, events.Interaction{
		ID:        "int_1",
		Category:  "cart",
		UserID:    "u1",
		ProductID: "p1",
		Kind:      "add_to_cart",
	}); err != nil {
		t.Fatalf("HandleInteraction() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg struct {
		Type string             `json:"type"`
		Data events.Interaction `json:"data"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != websocket.MessageTypeInteraction || msg.Data.ID != "int_1" {
		t.Errorf("message = %+v", msg)
	}
}

func TestCheckWebSocketOrigin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", []string{"https://shop.example"}, "", true},
		{"listed origin", []string{"https://shop.example"}, "https://shop.example", true},
		{"other origin", []string{"https://shop.example"}, "https://evil.example", false},
		{"wildcard", []string{"*"}, "https://evil.example", true},
		{"nothing configured", nil, "https://shop.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := &Handler{corsOrigins: tt.allowed}
			r := httptest.NewRequest(http.MethodGet, "/ws/interactions", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(r); got != tt.want {
				t.Errorf("checkWebSocketOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", recommend.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"wrapped not found", errors.Join(errors.New("similar"), recommend.ErrNotFound), http.StatusNotFound, ErrCodeNotFound},
		{"conflict", recommend.ErrTrainingInProgress, http.StatusConflict, ErrCodeTrainingInProgress},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable, ErrCodeTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			status, code, _ := errorStatus(tt.err)
			if status != tt.status || code != tt.code {
				t.Errorf("errorStatus() = %d %s, want %d %s", status, code, tt.status, tt.code)
			}
		})
	}
}
