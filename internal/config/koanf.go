// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the config file locations searched in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/kmart/config.yaml",
	"/etc/kmart/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. They are loaded first and
// overridden by the config file and the environment.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Catalog: CatalogConfig{
			Path:              "data_csv/product_data_cleaned.csv",
			FallbackToDefault: true,
		},
		Interactions: InteractionsConfig{
			Backend:      "csv",
			Path:         "data_csv/product_interactions_data_fixed.csv",
			SyncWrites:   false,
			HistoryLimit: 50,
			GCInterval:   10 * time.Minute,
			GCRatio:      0.5,
		},
		Embeddings: EmbeddingsConfig{
			Path: "", // Vector strategies disabled unless a table is configured
		},
		Embedder: EmbedderConfig{
			URL:               "",
			Timeout:           5 * time.Second,
			RequestsPerSecond: 20,
			Burst:             5,
			FailureThreshold:  5,
			BreakerTimeout:    30 * time.Second,
		},
		Recommend: RecommendConfig{
			NumFactors:      32,
			NumIterations:   15,
			Regularization:  0.01,
			Alpha:           40.0,
			NumWorkers:      4,
			TrainOnStartup:  true,
			TrainInterval:   6 * time.Hour,
			TrainTimeout:    10 * time.Minute,
			RetrainAfter:    500,
			MinInteractions: 10,
			KindWeights: map[string]float64{
				"view":         1.0,
				"view_details": 2.0,
				"like":         3.0,
				"unlike":       0.0,
				"add_to_cart":  4.0,
				"chat_message": 2.0,
				"rating":       1.0, // multiplied by the rating value
			},
		},
		Ranking: RankingConfig{
			ScoreBound:            1e6,
			KeywordScore:          0.5,
			MinSimilarity:         0.0,
			PartialCategoryWeight: 0.5,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1024,
			TTL:      5 * time.Minute,
		},
		Events: EventsConfig{
			Transport:    "memory",
			Topic:        "interaction.tracked",
			NATSURL:      "nats://127.0.0.1:4222",
			EmbeddedNATS: false,
			NATSHost:     "127.0.0.1",
			NATSPort:     4222,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// LoadWithKoanf layers defaults, the optional YAML file and environment
// variables (ENV > file > defaults), then validates the result.
func LoadWithKoanf() (*Config, error) {
	return loadFrom(findConfigFile())
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it exists, else the first
// existing default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are parsed as comma-separated lists when they arrive as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	"http_host":             "server.host",
	"http_port":             "server.port",
	"server_timeout":        "server.timeout",
	"shutdown_timeout":      "server.shutdown_timeout",
	"log_level":             "logging.level",
	"log_format":            "logging.format",
	"log_caller":            "logging.caller",
	"catalog_path":          "catalog.path",
	"catalog_fallback":      "catalog.fallback_to_default",
	"interactions_backend":  "interactions.backend",
	"interactions_path":     "interactions.path",
	"interactions_sync":     "interactions.sync_writes",
	"history_limit":         "interactions.history_limit",
	"badger_gc_interval":    "interactions.gc_interval",
	"badger_gc_ratio":       "interactions.gc_ratio",
	"embeddings_path":       "embeddings.path",
	"embedder_url":          "embedder.url",
	"embedder_timeout":      "embedder.timeout",
	"embedder_rps":          "embedder.requests_per_second",
	"embedder_burst":        "embedder.burst",
	"recommend_factors":     "recommend.num_factors",
	"recommend_iterations":  "recommend.num_iterations",
	"recommend_workers":     "recommend.num_workers",
	"train_on_startup":      "recommend.train_on_startup",
	"train_interval":        "recommend.train_interval",
	"train_timeout":         "recommend.train_timeout",
	"retrain_after":         "recommend.retrain_after",
	"min_interactions":      "recommend.min_interactions",
	"min_similarity":        "ranking.min_similarity",
	"cache_enabled":         "cache.enabled",
	"cache_capacity":        "cache.capacity",
	"cache_ttl":             "cache.ttl",
	"events_transport":      "events.transport",
	"events_topic":          "events.topic",
	"nats_url":              "events.nats_url",
	"nats_embedded":         "events.embedded_nats",
	"nats_host":             "events.nats_host",
	"nats_port":             "events.nats_port",
	"cors_origins":          "security.cors_origins",
	"rate_limit_requests":   "security.rate_limit_requests",
	"rate_limit_window":     "security.rate_limit_window",
	"disable_rate_limiting": "security.rate_limit_disabled",
}

// envTransformFunc maps an environment variable name to a koanf path.
// Unmapped variables return "" and are skipped.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - INTERACTIONS_BACKEND -> interactions.backend
//   - NATS_EMBEDDED -> events.embedded_nats
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
