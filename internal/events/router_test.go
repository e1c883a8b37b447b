// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recorder struct {
	mu   sync.Mutex
	ids  []string
	fail int
	seen chan string
}

func newRecorder(fail int) *recorder {
	return &recorder{fail: fail, seen: make(chan string, 16)}
}

func (r *recorder) consume(_ context.Context, ev Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail > 0 {
		r.fail--
		return errors.New("transient")
	}
	r.ids = append(r.ids, ev.ID)
	r.seen <- ev.ID
	return nil
}

func startRouter(t *testing.T, r *Router) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	select {
	case <-r.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("Serve() returned early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("router not ready")
	}

	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("router did not stop")
		}
	}
}

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Errorf("consumed %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func TestRouter_DeliversToEveryConsumer(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus("interaction.tracked", zerolog.Nop())
	defer bus.Close()

	a, b := newRecorder(0), newRecorder(0)
	r := NewRouter(bus, zerolog.Nop())
	r.AddConsumer("a", a.consume)
	r.AddConsumer("b", b.consume)
	stop := startRouter(t, r)
	defer stop()

	if err := bus.Publish(context.Background(), testInteraction("int_r1")); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	waitFor(t, a.seen, "int_r1")
	waitFor(t, b.seen, "int_r1")
}

func TestRouter_RetriesFailedConsumer(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus("t", zerolog.Nop())
	defer bus.Close()

	rec := newRecorder(2)
	r := NewRouter(bus, zerolog.Nop())
	r.config.RetryInitialInterval = time.Millisecond
	r.AddConsumer("flaky", rec.consume)
	stop := startRouter(t, r)
	defer stop()

	if err := bus.Publish(context.Background(), testInteraction("int_retry")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, rec.seen, "int_retry")
}

func TestRouter_SkipsUndecodable(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus("t", zerolog.Nop())
	defer bus.Close()

	rec := newRecorder(0)
	r := NewRouter(bus, zerolog.Nop())
	r.AddConsumer("rec", rec.consume)
	stop := startRouter(t, r)
	defer stop()

	bad, _ := NewMessage(testInteraction("bad"))
	bad.Payload = []byte("not json")
	if err := bus.publisher.Publish(bus.Topic(), bad); err != nil {
		t.Fatal(err)
	}
	if err := bus.Publish(context.Background(), testInteraction("int_good")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, rec.seen, "int_good")
}

func TestRouter_RestartsAfterStop(t *testing.T) {
	t.Parallel()

	bus := NewMemoryBus("t", zerolog.Nop())
	defer bus.Close()

	rec := newRecorder(0)
	r := NewRouter(bus, zerolog.Nop())
	r.AddConsumer("rec", rec.consume)

	startRouter(t, r)()

	// Ready stays closed after the first run, so wait on the second run
	// by publishing until the consumer sees a message.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = r.Serve(ctx) }()

	deadline := time.After(5 * time.Second)
	for {
		if err := bus.Publish(ctx, testInteraction("int_again")); err != nil {
			t.Fatal(err)
		}
		select {
		case id := <-rec.seen:
			if id != "int_again" {
				t.Errorf("consumed %q, want int_again", id)
			}
			return
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatal("restarted router never consumed")
		}
	}
}

func TestRouter_String(t *testing.T) {
	t.Parallel()

	if got := NewRouter(NewMemoryBus("t", zerolog.Nop()), zerolog.Nop()).String(); got != "event-router" {
		t.Errorf("String() = %q", got)
	}
}
