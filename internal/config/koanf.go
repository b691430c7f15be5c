// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"showlist.yaml",
	"showlist.yml",
	"/etc/showlist/config.yaml",
	"/etc/showlist/config.yml",
}

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "SHOWLIST_CONFIG_PATH"

// envPrefix namespaces the override environment variables.
const envPrefix = "SHOWLIST_"

// Load assembles the configuration from layered sources:
//  1. Defaults: built-in values from defaultConfig
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: SHOWLIST_-prefixed overrides
//
// Precedence is ENV > file > defaults. The merged result is unmarshaled
// into a typed Config and validated before it is returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
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

// findConfigFile searches for a config file. The path named by
// SHOWLIST_CONFIG_PATH is checked first, then the default paths in
// order. Returns empty string if nothing exists.
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

// envTransformFunc maps SHOWLIST_-prefixed environment variable names to
// koanf config paths.
//
// Examples:
//   - SHOWLIST_KEEP_THRESHOLD -> engine.keep_threshold
//   - SHOWLIST_WEIGHT_GENRE -> engine.weights.genre
//   - SHOWLIST_DATA_DIR -> storage.data_dir
//   - SHOWLIST_LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	envMappings := map[string]string{
		// Engine scoring
		"weight_two_tower":        "engine.weights.two_tower",
		"weight_rule_based":       "engine.weights.rule_based",
		"weight_genre":            "engine.weights.genre",
		"weight_learned":          "engine.weights.learned",
		"keep_threshold":          "engine.keep_threshold",
		"default_limit":           "engine.limits.default_limit",
		"max_limit":               "engine.limits.max_limit",
		"train_min_favorites":     "engine.training.min_favorites",
		"train_min_new_favorites": "engine.training.min_new_favorites",
		"train_timeout":           "engine.training.timeout",

		// Embedding cache and fetcher
		"embedding_cache_capacity":      "embedding.cache_capacity",
		"embedding_cache_ttl":           "embedding.cache_ttl",
		"embedding_fetch_batch_size":    "embedding.fetch_batch_size",
		"embedding_requests_per_second": "embedding.requests_per_second",
		"embedding_fetch_burst":         "embedding.fetch_burst",
		"embedding_breaker_failures":    "embedding.breaker_failures",
		"embedding_breaker_timeout":     "embedding.breaker_timeout",

		// Storage
		"data_dir":            "storage.data_dir",
		"storage_in_memory":   "storage.in_memory",
		"keep_model_versions": "storage.keep_model_versions",

		// Change notifications
		"recompute_quiet": "events.recompute_quiet",
		"training_quiet":  "events.training_quiet",

		// Supervision tree
		"supervisor_failure_threshold": "supervisor.failure_threshold",
		"supervisor_failure_decay":     "supervisor.failure_decay",
		"supervisor_failure_backoff":   "supervisor.failure_backoff",
		"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated SHOWLIST_ variables (such
	// as SHOWLIST_CONFIG_PATH itself) never pollute the config map.
	return ""
}
