// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/kmart/internal/events"
	"github.com/tomtom215/kmart/internal/recommend"
	"github.com/tomtom215/kmart/internal/websocket"
)

// ModelEngine is the part of *recommend.Engine the trainer drives.
type ModelEngine interface {
	Train(ctx context.Context) error
	Status() recommend.TrainingStatus
}

// Announcer receives a model_trained message after every successful run.
// Satisfied by *websocket.Hub.
type Announcer interface {
	BroadcastJSON(messageType string, data any)
}

// TrainerConfig schedules training runs.
type TrainerConfig struct {
	// TrainOnStartup runs once as soon as the service starts.
	TrainOnStartup bool

	// Interval between scheduled runs. Zero disables the schedule.
	Interval time.Duration

	// RetrainAfter triggers a run once this many interactions arrived
	// since the last completed one. Zero disables it.
	RetrainAfter int
}

// TrainerService retrains the collaborative model in the background.
//
// Runs are triggered at startup, on the interval and when enough new
// interactions have been tracked. It also serves manual runs from the
// admin endpoint through Train.
type TrainerService struct {
	engine    ModelEngine
	announcer Announcer
	cfg       TrainerConfig
	pending   atomic.Int64
	kick      chan struct{}
	logger    zerolog.Logger
}

// NewTrainerService creates the trainer. announcer may be nil.
func NewTrainerService(engine ModelEngine, announcer Announcer, cfg TrainerConfig, logger zerolog.Logger) *TrainerService {
	return &TrainerService{
		engine:    engine,
		announcer: announcer,
		cfg:       cfg,
		kick:      make(chan struct{}, 1),
		logger:    logger.With().Str("service", "model-trainer").Logger(),
	}
}

// Serve implements suture.Service.
func (s *TrainerService) Serve(ctx context.Context) error {
	if s.cfg.TrainOnStartup {
		s.run(ctx, "startup")
	}

	var tick <-chan time.Time
	if s.cfg.Interval > 0 {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			s.run(ctx, "schedule")
		case <-s.kick:
			s.run(ctx, "threshold")
		}
	}
}

// HandleInteraction counts a tracked interaction toward RetrainAfter.
// It never blocks; a run already queued absorbs further triggers.
func (s *TrainerService) HandleInteraction(_ context.Context, _ events.Interaction) error {
	n := s.pending.Add(1)
	if s.cfg.RetrainAfter > 0 && n >= int64(s.cfg.RetrainAfter) {
		select {
		case s.kick <- struct{}{}:
		default:
		}
	}
	return nil
}

// Pending returns the interactions seen since the last completed run.
func (s *TrainerService) Pending() int64 {
	return s.pending.Load()
}

// Train runs one training pass now and announces the new model.
//
// A run rejected for insufficient data still consumes the pending count,
// so the next threshold run waits for another RetrainAfter interactions.
func (s *TrainerService) Train(ctx context.Context) error {
	seen := s.pending.Load()
	if err := s.engine.Train(ctx); err != nil {
		if errors.Is(err, recommend.ErrInsufficientData) {
			s.pending.Add(-seen)
		}
		return err
	}
	s.pending.Add(-seen)

	if s.announcer != nil {
		s.announcer.BroadcastJSON(websocket.MessageTypeModelTrained, s.engine.Status())
	}
	return nil
}

func (s *TrainerService) run(ctx context.Context, trigger string) {
	err := s.Train(ctx)
	switch {
	case err == nil:
		s.logger.Debug().Str("trigger", trigger).Msg("Training run finished")
	case errors.Is(err, recommend.ErrTrainingInProgress), errors.Is(err, recommend.ErrInsufficientData):
		s.logger.Debug().Err(err).Str("trigger", trigger).Msg("Training run skipped")
	case ctx.Err() != nil:
		// shutting down
	default:
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("Training run failed")
	}
}

func (s *TrainerService) String() string {
	return "model-trainer"
}
