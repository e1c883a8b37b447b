// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package embedding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/kmart/internal/metrics"
)

// Embedder turns query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)

	// Available reports whether Embed is currently worth calling.
	Available() bool
}

var (
	// ErrRateLimited is returned when the client-side limiter has no token.
	ErrRateLimited = errors.New("embedder rate limited")

	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("embedder unavailable")
)

// maxResponseBytes bounds embedder response bodies.
const maxResponseBytes = 4 << 20

// HTTPConfig configures an HTTPEmbedder.
type HTTPConfig struct {
	URL               string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	FailureThreshold  uint32
	BreakerTimeout    time.Duration
}

// HTTPEmbedder calls a remote embedding service.
type HTTPEmbedder struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]float64]
	logger  zerolog.Logger
}

// NewHTTPEmbedder creates an embedder for cfg.URL.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHTTPEmbedder(cfg HTTPConfig, logger zerolog.Logger) *HTTPEmbedder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	logger = logger.With().Str("component", "embedder").Logger()
	metrics.EmbedderBreakerState.Set(0)

	cb := gobreaker.NewCircuitBreaker[[]float64](gobreaker.Settings{
		Name:        "query-embedder",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Cancellation by the caller says nothing about embedder health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Embedder circuit breaker state change")
			metrics.EmbedderBreakerState.Set(stateToFloat(to))
		},
	})

	return &HTTPEmbedder{
		url:     cfg.URL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cb:      cb,
		logger:  logger,
	}
}

// Available reports false while the breaker is open.
func (e *HTTPEmbedder) Available() bool {
	return e.cb.State() != gobreaker.StateOpen
}

// Embed returns the vector for text.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if !e.limiter.Allow() {
		metrics.EmbedderRequests.WithLabelValues("rate_limited").Inc()
		return nil, ErrRateLimited
	}

	vec, err := e.cb.Execute(func() ([]float64, error) {
		return e.call(ctx, text)
	})
	switch {
	case err == nil:
		metrics.EmbedderRequests.WithLabelValues("success").Inc()
		return vec, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.EmbedderRequests.WithLabelValues("breaker_open").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		metrics.EmbedderRequests.WithLabelValues("error").Inc()
		e.logger.Debug().Err(err).Msg("Embedder call failed")
		return nil, err
	}
}

type embedRequest struct {
	Inputs []string `json:"inputs"`
}

func (e *HTTPEmbedder) call(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embedRequest{Inputs: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("encode embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, fmt.Errorf("embedder returned HTTP %d", resp.StatusCode)
	}

	var vectors [][]float64
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(vectors) != 1 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embedder returned %d vectors, want 1", len(vectors))
	}
	return vectors[0], nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

var _ Embedder = (*HTTPEmbedder)(nil)
