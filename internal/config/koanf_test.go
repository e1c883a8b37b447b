// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Server.Addr() != "0.0.0.0:8000" {
		t.Errorf("Server.Addr() = %q, want 0.0.0.0:8000", cfg.Server.Addr())
	}
	if cfg.Interactions.Backend != "csv" {
		t.Errorf("Interactions.Backend = %q, want csv", cfg.Interactions.Backend)
	}
	if cfg.Interactions.HistoryLimit != 50 {
		t.Errorf("Interactions.HistoryLimit = %d, want 50", cfg.Interactions.HistoryLimit)
	}
	if !cfg.Catalog.FallbackToDefault {
		t.Error("Catalog.FallbackToDefault should be true by default")
	}
	if cfg.Ranking.ScoreBound != 1e6 {
		t.Errorf("Ranking.ScoreBound = %v, want 1e6", cfg.Ranking.ScoreBound)
	}
	if cfg.Ranking.KeywordScore != 0.5 {
		t.Errorf("Ranking.KeywordScore = %v, want 0.5", cfg.Ranking.KeywordScore)
	}
	if cfg.Ranking.PartialCategoryWeight != 0.5 {
		t.Errorf("Ranking.PartialCategoryWeight = %v, want 0.5", cfg.Ranking.PartialCategoryWeight)
	}
	if w := cfg.Recommend.KindWeights["add_to_cart"]; w != 4.0 {
		t.Errorf("KindWeights[add_to_cart] = %v, want 4", w)
	}
	if cfg.Events.Transport != "memory" {
		t.Errorf("Events.Transport = %q, want memory", cfg.Events.Transport)
	}
	if cfg.Events.Topic != "interaction.tracked" {
		t.Errorf("Events.Topic = %q, want interaction.tracked", cfg.Events.Topic)
	}
	if cfg.Security.RateLimitWindow != time.Minute {
		t.Errorf("Security.RateLimitWindow = %v, want 1m", cfg.Security.RateLimitWindow)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFrom_DefaultsOnly(t *testing.T) {
	cfg, err := loadFrom("")
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if len(cfg.Recommend.KindWeights) != 7 {
		t.Errorf("KindWeights has %d entries, want 7", len(cfg.Recommend.KindWeights))
	}
}

func TestLoadFrom_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
interactions:
  backend: badger
  path: /tmp/kmart-badger
recommend:
  num_factors: 8
  kind_weights:
    view: 0.5
cache:
  ttl: 30s
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Interactions.Backend != "badger" {
		t.Errorf("Interactions.Backend = %q, want badger", cfg.Interactions.Backend)
	}
	if cfg.Recommend.NumFactors != 8 {
		t.Errorf("Recommend.NumFactors = %d, want 8", cfg.Recommend.NumFactors)
	}
	if cfg.Recommend.KindWeights["view"] != 0.5 {
		t.Errorf("KindWeights[view] = %v, want 0.5", cfg.Recommend.KindWeights["view"])
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v, want 30s", cfg.Cache.TTL)
	}
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("HTTP_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("TRAIN_INTERVAL", "2h")

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "http://b.example" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Recommend.TrainInterval != 2*time.Hour {
		t.Errorf("Recommend.TrainInterval = %v, want 2h", cfg.Recommend.TrainInterval)
	}
}

func TestLoadFrom_InvalidFails(t *testing.T) {
	t.Setenv("INTERACTIONS_BACKEND", "mongodb")

	if _, err := loadFrom(""); err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}

func TestLoadFrom_MissingFileFails(t *testing.T) {
	if _, err := loadFrom(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"INTERACTIONS_BACKEND", "interactions.backend"},
		{"NATS_EMBEDDED", "events.embedded_nats"},
		{"DISABLE_RATE_LIMITING", "security.rate_limit_disabled"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.env); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile_EnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}
