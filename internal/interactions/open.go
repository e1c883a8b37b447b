// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package interactions

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/config"
	"github.com/tomtom215/kmart/internal/metrics"
)

// Open builds the configured backend wrapped with append metrics.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func Open(ctx context.Context, cfg config.InteractionsConfig, logger zerolog.Logger) (Log, error) {
	var (
		l   Log
		err error
	)
	switch cfg.Backend {
	case "memory":
		l = NewMemoryLog()
	case "csv":
		l, err = OpenCSV(ctx, cfg.Path, cfg.SyncWrites, logger)
	case "badger":
		l, err = OpenBadger(BadgerOptions{Path: cfg.Path, SyncWrites: cfg.SyncWrites}, logger)
	case "duckdb":
		l, err = OpenDuckDB(ctx, cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unknown interaction backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(l), nil
}

// Instrumented records append latency and failures for the wrapped log.
type Instrumented struct {
	Log
}

// Instrument wraps l with metrics.
func Instrument(l Log) *Instrumented {
	return &Instrumented{Log: l}
}

// Append delegates and records the outcome.
func (i *Instrumented) Append(ctx context.Context, e *Event) (string, error) {
	start := time.Now()
	id, err := i.Log.Append(ctx, e)
	metrics.RecordAppend(i.Log.Backend(), time.Since(start), err)
	return id, err
}

// Unwrap returns the underlying backend.
func (i *Instrumented) Unwrap() Log { return i.Log }
