// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/kmart/internal/api"
	"github.com/tomtom215/kmart/internal/catalog"
	"github.com/tomtom215/kmart/internal/config"
	"github.com/tomtom215/kmart/internal/events"
	"github.com/tomtom215/kmart/internal/interactions"
	"github.com/tomtom215/kmart/internal/logging"
	"github.com/tomtom215/kmart/internal/recommend"
	"github.com/tomtom215/kmart/internal/supervisor"
	"github.com/tomtom215/kmart/internal/supervisor/services"
	"github.com/tomtom215/kmart/internal/tracker"
	"github.com/tomtom215/kmart/internal/websocket"
)

//nolint:gocyclo // sequential startup
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})
	logger := logging.Logger()

	logging.Info().
		Str("catalog", cfg.Catalog.Path).
		Str("interactions_backend", cfg.Interactions.Backend).
		Str("events_transport", cfg.Events.Transport).
		Msg("Starting KMart")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	products, err := catalog.Load(ctx, cfg.Catalog.Path, cfg.Catalog.FallbackToDefault, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load product catalog")
	}
	logging.Info().Int("products", products.Len()).Msg("Catalog loaded")

	log, err := interactions.Open(ctx, cfg.Interactions, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open interaction log")
	}
	defer func() {
		if err := log.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing interaction log")
		}
	}()
	if n, err := log.Len(ctx); err == nil {
		logging.Info().Str("backend", log.Backend()).Int("interactions", n).Msg("Interaction log opened")
	}

	engine, err := recommend.NewEngine(recommend.Options{
		Catalog:        products,
		Log:            log,
		Embedder:       newEmbedder(cfg, logger),
		EmbeddingsPath: cfg.Embeddings.Path,
		Recommend:      cfg.Recommend,
		Ranking:        cfg.Ranking,
		Cache:          cfg.Cache,
		Logger:         logger,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}
	if err := engine.Warm(ctx); err != nil {
		// Vector and TF-IDF strategies stay disabled; the fallbacks still answer.
		logging.Warn().Err(err).Msg("Engine warm-up incomplete")
	}

	bus, err := events.Open(cfg.Events, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open event bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	track, err := tracker.New(tracker.Options{
		Catalog:      products,
		Log:          log,
		Publisher:    bus,
		HistoryLimit: cfg.Interactions.HistoryLimit,
		Logger:       logger,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create interaction tracker")
	}

	hub := websocket.NewHub(logger)

	trainer := services.NewTrainerService(engine, hub, services.TrainerConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		Interval:       cfg.Recommend.TrainInterval,
		RetrainAfter:   cfg.Recommend.RetrainAfter,
	}, logger)

	router := events.NewRouter(bus, logger)
	router.AddConsumer("websocket-feed", hub.HandleInteraction)
	router.AddConsumer("retrain-counter", trainer.HandleInteraction)

	handler, err := api.NewHandler(api.HandlerOptions{
		Engine:         engine,
		Tracker:        track,
		Catalog:        products,
		Log:            log,
		Trainer:        trainer,
		Hub:            hub,
		CORSOrigins:    cfg.Security.CORSOrigins,
		RequestTimeout: cfg.Server.Timeout,
		Logger:         logger,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMITING=true)")
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); set explicit origins in production")
			break
		}
	}

	mw := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, mw),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if gc := badgerGC(log); gc != nil && cfg.Interactions.GCInterval > 0 {
		tree.AddDataService(services.NewBadgerGCService(gc, cfg.Interactions.GCInterval, cfg.Interactions.GCRatio, logger))
		logging.Info().Dur("interval", cfg.Interactions.GCInterval).Msg("Badger value log GC scheduled")
	}

	tree.AddMessagingService(hub)
	tree.AddMessagingService(router)
	tree.AddMessagingService(trainer)

	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout, logger))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	// The channel receives exactly once and is never closed.
	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("KMart stopped")
}
