// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package main

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/config"
	"github.com/tomtom215/kmart/internal/embedding"
	"github.com/tomtom215/kmart/internal/interactions"
	"github.com/tomtom215/kmart/internal/supervisor/services"
)

// newEmbedder returns the remote query embedder, or nil when EMBEDDER_URL
// is unset. The nil is untyped so the engine sees no embedder at all.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newEmbedder(cfg *config.Config, logger zerolog.Logger) embedding.Embedder {
	if cfg.Embedder.URL == "" {
		return nil
	}
	return embedding.NewHTTPEmbedder(embedding.HTTPConfig{
		URL:               cfg.Embedder.URL,
		Timeout:           cfg.Embedder.Timeout,
		RequestsPerSecond: cfg.Embedder.RequestsPerSecond,
		Burst:             cfg.Embedder.Burst,
		FailureThreshold:  cfg.Embedder.FailureThreshold,
		BreakerTimeout:    cfg.Embedder.BreakerTimeout,
	}, logger)
}

// badgerGC returns the Badger backend behind log, or nil for other backends.
func badgerGC(log interactions.Log) services.GarbageCollector {
	if inst, ok := log.(*interactions.Instrumented); ok {
		log = inst.Unwrap()
	}
	if b, ok := log.(*interactions.BadgerLog); ok {
		return b
	}
	return nil
}
