// KMart - E-commerce Recommendation, Search and Interaction Tracking API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/kmart

// Package config loads KMart configuration with koanf.
//
// Values are layered in order of increasing priority:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file (CONFIG_PATH, then config.yaml, then /etc/kmart/config.yaml)
//  3. Environment variables listed in envMappings
//
// Environment variables that are not listed are ignored. Slice fields such
// as security.cors_origins accept comma-separated strings from the
// environment.
package config
