// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/kmart/internal/interactions"
)

// GarbageCollector reclaims value log space. Satisfied by *interactions.BadgerLog.
type GarbageCollector interface {
	RunGC(ratio float64) error
}

// BadgerGCService periodically runs value log GC on the Badger interaction log.
type BadgerGCService struct {
	gc       GarbageCollector
	interval time.Duration
	ratio    float64
	logger   zerolog.Logger
}

// NewBadgerGCService creates the service. A non-positive interval becomes
// 10m and a ratio outside (0, 1) becomes 0.5.
func NewBadgerGCService(gc GarbageCollector, interval time.Duration, ratio float64, logger zerolog.Logger) *BadgerGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}
	return &BadgerGCService{
		gc:       gc,
		interval: interval,
		ratio:    ratio,
		logger:   logger.With().Str("service", "badger-gc").Logger(),
	}
}

// Serve implements suture.Service. A closed log stops the service for good.
func (s *BadgerGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			err := s.gc.RunGC(s.ratio)
			if errors.Is(err, interactions.ErrClosed) {
				s.logger.Info().Msg("Interaction log closed, stopping GC")
				return suture.ErrDoNotRestart
			}
			if err != nil {
				s.logger.Warn().Err(err).Msg("Value log GC failed")
				continue
			}
			s.logger.Debug().Dur("duration", time.Since(start)).Msg("Value log GC complete")
		}
	}
}

func (s *BadgerGCService) String() string {
	return "badger-gc"
}
