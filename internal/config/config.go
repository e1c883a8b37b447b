// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
	Catalog      CatalogConfig      `koanf:"catalog"`
	Interactions InteractionsConfig `koanf:"interactions"`
	Embeddings   EmbeddingsConfig   `koanf:"embeddings"`
	Embedder     EmbedderConfig     `koanf:"embedder"`
	Recommend    RecommendConfig    `koanf:"recommend"`
	Ranking      RankingConfig      `koanf:"ranking"`
	Cache        CacheConfig        `koanf:"cache"`
	Events       EventsConfig       `koanf:"events"`
	Security     SecurityConfig     `koanf:"security"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CatalogConfig locates the product catalog.
type CatalogConfig struct {
	// Path is the product CSV file.
	Path string `koanf:"path"`

	// FallbackToDefault serves the built-in fixture when Path does not exist.
	FallbackToDefault bool `koanf:"fallback_to_default"`
}

// InteractionsConfig selects and configures the interaction log backend.
type InteractionsConfig struct {
	// Backend is one of csv, badger, duckdb, memory.
	Backend string `koanf:"backend"`

	// Path is the CSV file, the Badger directory or the DuckDB file.
	Path string `koanf:"path"`

	// SyncWrites fsyncs every append (csv and badger).
	SyncWrites bool `koanf:"sync_writes"`

	// HistoryLimit is the default limit for history queries.
	HistoryLimit int `koanf:"history_limit"`

	// GCInterval is how often the Badger value log is collected. Zero disables it.
	GCInterval time.Duration `koanf:"gc_interval"`
	GCRatio    float64       `koanf:"gc_ratio"`
}

// EmbeddingsConfig locates the optional precomputed product embedding table.
type EmbeddingsConfig struct {
	Path string `koanf:"path"`
}

// EmbedderConfig configures the optional remote query embedder.
type EmbedderConfig struct {
	URL               string        `koanf:"url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	FailureThreshold  uint32        `koanf:"failure_threshold"`
	BreakerTimeout    time.Duration `koanf:"breaker_timeout"`
}

// RecommendConfig configures the collaborative filtering model and its training schedule.
type RecommendConfig struct {
	NumFactors      int           `koanf:"num_factors"`
	NumIterations   int           `koanf:"num_iterations"`
	Regularization  float64       `koanf:"regularization"`
	Alpha           float64       `koanf:"alpha"`
	NumWorkers      int           `koanf:"num_workers"`
	TrainOnStartup  bool          `koanf:"train_on_startup"`
	TrainInterval   time.Duration `koanf:"train_interval"`
	TrainTimeout    time.Duration `koanf:"train_timeout"`
	RetrainAfter    int           `koanf:"retrain_after"`
	MinInteractions int           `koanf:"min_interactions"`

	// KindWeights maps interaction kinds to implicit-feedback confidence.
	KindWeights map[string]float64 `koanf:"kind_weights"`
}

// RankingConfig holds the tunables of the search and similarity strategies.
type RankingConfig struct {
	ScoreBound            float64 `koanf:"score_bound"`
	KeywordScore          float64 `koanf:"keyword_score"`
	MinSimilarity         float64 `koanf:"min_similarity"`
	PartialCategoryWeight float64 `koanf:"partial_category_weight"`
}

// CacheConfig configures the ranking result cache.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

// EventsConfig configures the interaction event bus.
type EventsConfig struct {
	// Transport is memory (watermill gochannel) or nats.
	Transport string `koanf:"transport"`

	// Topic receives one message per tracked interaction.
	Topic string `koanf:"topic"`

	NATSURL string `koanf:"nats_url"`

	// EmbeddedNATS starts an in-process NATS server and ignores NATSURL.
	EmbeddedNATS bool   `koanf:"embedded_nats"`
	NATSHost     string `koanf:"nats_host"`
	NATSPort     int    `koanf:"nats_port"`
}

// SecurityConfig configures CORS and rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Load reads configuration from defaults, the optional file and the environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
