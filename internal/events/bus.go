// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/config"
	"github.com/tomtom215/kmart/internal/logging"
	"github.com/tomtom215/kmart/internal/metrics"
)

// Transport names.
const (
	TransportMemory = "memory"
	TransportNATS   = "nats"
)

// ErrBusClosed is returned by Publish and Subscribe after Close.
var ErrBusClosed = errors.New("event bus closed")

// Bus publishes interactions to one topic and hands out subscriptions to it.
type Bus struct {
	transport  string
	topic      string
	publisher  message.Publisher
	subscriber message.Subscriber
	server     *EmbeddedServer
	wmLogger   watermill.LoggerAdapter
	logger     zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// Open builds the bus described by cfg.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(cfg config.EventsConfig, logger zerolog.Logger) (*Bus, error) {
	logger = logger.With().Str("component", "events").Str("transport", cfg.Transport).Logger()

	switch cfg.Transport {
	case TransportMemory:
		return NewMemoryBus(cfg.Topic, logger), nil
	case TransportNATS:
		return openNATS(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown events transport %q", cfg.Transport)
	}
}

// NewMemoryBus returns an in-process bus backed by a watermill gochannel.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMemoryBus(topic string, logger zerolog.Logger) *Bus {
	wmLogger := logging.NewWatermillAdapter(logger)
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, wmLogger)
	return &Bus{
		transport:  TransportMemory,
		topic:      topic,
		publisher:  ch,
		subscriber: ch,
		wmLogger:   wmLogger,
		logger:     logger,
	}
}

// Publish sends ev to the bus topic.
func (b *Bus) Publish(ctx context.Context, ev *Interaction) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	msg, err := NewMessage(ev)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	err = b.publisher.Publish(b.topic, msg)
	metrics.RecordPublish(b.transport, err)
	if err != nil {
		return fmt.Errorf("publish to %s: %w", b.topic, err)
	}
	return nil
}

// Subscribe returns a channel of messages from the bus topic. The channel
// closes when ctx ends or the bus is closed. Every message must be acked.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	return b.subscriber.Subscribe(ctx, b.topic)
}

// Topic returns the topic interactions are published on.
func (b *Bus) Topic() string { return b.topic }

// Transport returns the transport name.
func (b *Bus) Transport() string { return b.transport }

// Subscriber exposes the underlying subscriber for the router.
func (b *Bus) Subscriber() message.Subscriber { return b.subscriber }

// WatermillLogger returns the logger adapter shared by the bus components.
func (b *Bus) WatermillLogger() watermill.LoggerAdapter { return b.wmLogger }

// Close closes the subscriber, the publisher and the embedded server.
// It is safe to call more than once.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close subscriber: %w", err))
	}
	if any(b.publisher) != any(b.subscriber) {
		if err := b.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if b.server != nil {
		b.server.Shutdown()
	}
	return errors.Join(errs...)
}
