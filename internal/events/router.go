// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/metrics"
)

// ConsumerFunc handles one decoded interaction. A returned error is
// retried by the router middleware.
type ConsumerFunc func(ctx context.Context, ev Interaction) error

type consumer struct {
	name string
	fn   ConsumerFunc
}

// RouterConfig tunes the watermill router.
type RouterConfig struct {
	CloseTimeout         time.Duration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
}

// DefaultRouterConfig returns the router defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
	}
}

// Router dispatches bus messages to registered consumers. It implements
// suture.Service; each Serve call builds a fresh watermill router, so the
// service can be restarted.
type Router struct {
	bus       *Bus
	config    RouterConfig
	logger    zerolog.Logger
	consumers []consumer

	readyOnce sync.Once
	ready     chan struct{}
}

// NewRouter creates a router over bus with the default config.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRouter(bus *Bus, logger zerolog.Logger) *Router {
	return &Router{
		bus:    bus,
		config: DefaultRouterConfig(),
		logger: logger.With().Str("component", "event-router").Logger(),
		ready:  make(chan struct{}),
	}
}

// AddConsumer registers fn under name. Consumers must be added before Serve.
func (r *Router) AddConsumer(name string, fn ConsumerFunc) {
	r.consumers = append(r.consumers, consumer{name: name, fn: fn})
}

// Ready closes once the first run has subscribed every consumer.
func (r *Router) Ready() <-chan struct{} { return r.ready }

// Serve runs the router until ctx is canceled.
func (r *Router) Serve(ctx context.Context) error {
	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: r.config.CloseTimeout}, r.bus.WatermillLogger())
	if err != nil {
		return fmt.Errorf("create watermill router: %w", err)
	}

	wmRouter.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      r.config.RetryMaxRetries,
			InitialInterval: r.config.RetryInitialInterval,
			Logger:          r.bus.WatermillLogger(),
		}.Middleware,
	)

	for _, c := range r.consumers {
		wmRouter.AddConsumerHandler(c.name, r.bus.Topic(), r.bus.Subscriber(), r.handler(c))
	}

	go func() {
		select {
		case <-wmRouter.Running():
			r.readyOnce.Do(func() { close(r.ready) })
			r.logger.Info().Int("consumers", len(r.consumers)).Msg("Event router running")
		case <-ctx.Done():
		}
	}()

	if err := wmRouter.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

// String names the service for the supervisor.
func (r *Router) String() string { return "event-router" }

func (r *Router) handler(c consumer) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ev, err := Decode(msg)
		if err != nil {
			// A malformed payload never decodes; ack it and move on.
			r.logger.Warn().Err(err).Str("consumer", c.name).Msg("Dropping undecodable message")
			return nil
		}
		if err := c.fn(msg.Context(), ev); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		metrics.EventsConsumed.WithLabelValues(c.name).Inc()
		return nil
	}
}
