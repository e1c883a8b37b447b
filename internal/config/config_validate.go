// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/kmart/internal/logging"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateCatalog,
		c.validateInteractions,
		c.validateEmbedder,
		c.validateRecommend,
		c.validateRanking,
		c.validateCache,
		c.validateEvents,
		c.validateSecurity,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("SERVER_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

func (c *Config) validateCatalog() error {
	if c.Catalog.Path == "" && !c.Catalog.FallbackToDefault {
		return fmt.Errorf("CATALOG_PATH is required when CATALOG_FALLBACK=false")
	}
	return nil
}

// InteractionBackends lists the supported interaction log backends.
var InteractionBackends = []string{"csv", "badger", "duckdb", "memory"}

func (c *Config) validateInteractions() error {
	if !contains(InteractionBackends, c.Interactions.Backend) {
		return fmt.Errorf("INTERACTIONS_BACKEND must be one of %s, got %q",
			strings.Join(InteractionBackends, ", "), c.Interactions.Backend)
	}
	if c.Interactions.Backend != "memory" && c.Interactions.Path == "" {
		return fmt.Errorf("INTERACTIONS_PATH is required for the %s backend", c.Interactions.Backend)
	}
	if c.Interactions.HistoryLimit < 1 {
		return fmt.Errorf("HISTORY_LIMIT must be at least 1, got %d", c.Interactions.HistoryLimit)
	}
	if c.Interactions.GCInterval > 0 && (c.Interactions.GCRatio <= 0 || c.Interactions.GCRatio >= 1) {
		return fmt.Errorf("BADGER_GC_RATIO must be between 0 and 1, got %v", c.Interactions.GCRatio)
	}
	return nil
}

func (c *Config) validateEmbedder() error {
	if c.Embedder.URL == "" {
		return nil
	}
	u, err := url.Parse(c.Embedder.URL)
	if err != nil {
		return fmt.Errorf("EMBEDDER_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("EMBEDDER_URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("EMBEDDER_URL host is required")
	}
	if c.Embedder.RequestsPerSecond <= 0 {
		return fmt.Errorf("EMBEDDER_RPS must be positive, got %v", c.Embedder.RequestsPerSecond)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.NumFactors < 1 {
		return fmt.Errorf("RECOMMEND_FACTORS must be at least 1, got %d", r.NumFactors)
	}
	if r.NumIterations < 1 {
		return fmt.Errorf("RECOMMEND_ITERATIONS must be at least 1, got %d", r.NumIterations)
	}
	if r.Regularization <= 0 || r.Alpha <= 0 {
		return fmt.Errorf("recommend.regularization and recommend.alpha must be positive")
	}
	for kind, w := range r.KindWeights {
		if w < 0 {
			return fmt.Errorf("recommend.kind_weights.%s must not be negative, got %v", kind, w)
		}
	}
	return nil
}

func (c *Config) validateRanking() error {
	r := c.Ranking
	if r.ScoreBound <= 0 {
		return fmt.Errorf("ranking.score_bound must be positive, got %v", r.ScoreBound)
	}
	if r.PartialCategoryWeight < 0 || r.PartialCategoryWeight > 1 {
		return fmt.Errorf("ranking.partial_category_weight must be within [0, 1], got %v", r.PartialCategoryWeight)
	}
	if r.MinSimilarity < -1 || r.MinSimilarity > 1 {
		return fmt.Errorf("MIN_SIMILARITY must be within [-1, 1], got %v", r.MinSimilarity)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return fmt.Errorf("CACHE_CAPACITY must be at least 1 when the cache is enabled, got %d", c.Cache.Capacity)
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Transport {
	case "memory":
	case "nats":
		if !c.Events.EmbeddedNATS && c.Events.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required for the nats transport unless NATS_EMBEDDED=true")
		}
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be memory or nats, got %q", c.Events.Transport)
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC must not be empty")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitDisabled && c.Security.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitRequests)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
