// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/kmart/internal/interactions"
	"github.com/tomtom215/kmart/internal/metrics"
	"github.com/tomtom215/kmart/internal/recommend/algorithms"
)

// Train reads the whole interaction log and fits a new factor model.
// Returns immediately with ErrTrainingInProgress if another run is active.
// The result cache is purged after a successful run.
func (e *Engine) Train(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	start := time.Now()
	e.setStatus(func(s *TrainingStatus) {
		s.IsTraining = true
		s.LastError = ""
	})
	e.logger.Info().Msg("Starting model training")

	users, items, n, err := e.train(ctx)
	duration := time.Since(start)

	e.setStatus(func(s *TrainingStatus) {
		s.IsTraining = false
		s.LastDurationMS = duration.Milliseconds()
		if err != nil {
			s.LastError = err.Error()
			return
		}
		s.Trained = true
		s.ModelVersion = e.als.Version()
		s.LastTrainedAt = e.als.LastTrainedAt()
		s.Interactions, s.Users, s.Items = n, users, items
	})

	if err != nil {
		metrics.RecordTraining("error", duration, 0, 0)
		e.logger.Warn().Err(err).Dur("duration", duration).Msg("Model training failed")
		return err
	}

	metrics.RecordTraining("success", duration, users, items)
	e.flushCache()
	e.logger.Info().
		Int("users", users).
		Int("items", items).
		Int("interactions", n).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("Model training complete")
	return nil
}

func (e *Engine) train(ctx context.Context) (users, items, n int, err error) {
	if e.recommendCfg.TrainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.recommendCfg.TrainTimeout)
		defer cancel()
	}

	events, err := e.log.Events(ctx, time.Time{})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("load interactions: %w", err)
	}

	data := TrainingData(events, e.recommendCfg.KindWeights)
	if len(data) < e.recommendCfg.MinInteractions {
		return 0, 0, 0, fmt.Errorf("%w: %d usable, need %d",
			ErrInsufficientData, len(data), e.recommendCfg.MinInteractions)
	}

	if err := e.als.Train(ctx, data); err != nil {
		return 0, 0, 0, fmt.Errorf("train als: %w", err)
	}
	users, items = e.als.Size()
	return users, items, len(data), nil
}

// TrainingData converts logged events to weighted observations. Kinds
// without a positive weight are dropped. Rating events are scaled by the
// rating value when one is present.
func TrainingData(events []interactions.Event, weights map[string]float64) []algorithms.Interaction {
	out := make([]algorithms.Interaction, 0, len(events))
	for i := range events {
		ev := &events[i]
		if ev.UserID == "" || ev.ProductID == "" {
			continue
		}
		w := weights[ev.Kind]
		if ev.Kind == interactions.KindRating && ev.Rating != nil {
			w *= *ev.Rating
		}
		if w <= 0 {
			continue
		}
		out = append(out, algorithms.Interaction{UserID: ev.UserID, ItemID: ev.ProductID, Confidence: w})
	}
	return out
}

func (e *Engine) setStatus(update func(*TrainingStatus)) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	update(&e.status)
}
