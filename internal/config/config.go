// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package config

import (
	"path/filepath"
	"time"
)

// Config is the root application configuration, assembled from defaults,
// an optional YAML file, and SHOWLIST_-prefixed environment variables.
type Config struct {
	Engine     EngineConfig     `koanf:"engine"`
	Embedding  EmbeddingConfig  `koanf:"embedding"`
	Storage    StorageConfig    `koanf:"storage"`
	Events     EventsConfig     `koanf:"events"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// EngineConfig tunes the recommendation engine. The values here mirror
// recommend.Config; cmd/showlist maps one onto the other at startup.
type EngineConfig struct {
	Weights       WeightsConfig  `koanf:"weights"`
	KeepThreshold float64        `koanf:"keep_threshold" validate:"gte=0,lte=100"` // Minimum blended score for reason-less candidates
	Limits        LimitsConfig   `koanf:"limits"`
	Training      TrainingConfig `koanf:"training"`
}

// WeightsConfig blends the four component scores into the final score.
// Weights are fractions; they are applied as-is and never renormalized.
type WeightsConfig struct {
	TwoTower  float64 `koanf:"two_tower" validate:"gte=0,lte=1"`  // Embedding similarity share
	RuleBased float64 `koanf:"rule_based" validate:"gte=0,lte=1"` // Affinity-rule share
	Genre     float64 `koanf:"genre" validate:"gte=0,lte=1"`      // Genre-overlap share
	Learned   float64 `koanf:"learned" validate:"gte=0,lte=1"`    // Learned-model share
}

// LimitsConfig bounds how many recommendations a pass returns.
type LimitsConfig struct {
	DefaultLimit int `koanf:"default_limit" validate:"gte=1"` // Used when the caller passes limit <= 0
	MaxLimit     int `koanf:"max_limit" validate:"gte=1"`     // Hard ceiling on requested limits
}

// TrainingConfig gates background training of the learned scorer.
type TrainingConfig struct {
	MinFavorites    int           `koanf:"min_favorites" validate:"gte=1"`     // Minimum history before the first training run
	MinNewFavorites int           `koanf:"min_new_favorites" validate:"gte=1"` // Growth required between runs
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`            // Per-run training deadline
}

// EmbeddingConfig tunes the embedding cache and the batch fetcher that
// fills it from the embedding collaborator.
type EmbeddingConfig struct {
	CacheCapacity     int           `koanf:"cache_capacity" validate:"gte=1"`     // Max cached vectors before oldest-entry eviction
	CacheTTL          time.Duration `koanf:"cache_ttl" validate:"gt=0"`           // Vector freshness window
	FetchBatchSize    int           `koanf:"fetch_batch_size" validate:"gte=1"`   // Pairs per collaborator request
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"` // Collaborator call rate limit
	FetchBurst        int           `koanf:"fetch_burst" validate:"gte=1"`        // Rate limiter burst
	BreakerFailures   int           `koanf:"breaker_failures" validate:"gte=1"`   // Consecutive failures before the breaker opens
	BreakerTimeout    time.Duration `koanf:"breaker_timeout" validate:"gt=0"`     // Open-state duration before probing again
}

// StorageConfig locates the on-disk stores. With InMemory set the CLI
// runs on an ephemeral in-memory backend and DataDir may be empty.
type StorageConfig struct {
	DataDir           string `koanf:"data_dir"`                             // Root directory for all persisted state
	InMemory          bool   `koanf:"in_memory"`                            // Ephemeral backend, nothing touches disk
	KeepModelVersions int    `koanf:"keep_model_versions" validate:"gte=1"` // Learned-model snapshots retained per model
}

// RecommendationsDir returns the badger directory for the recommendation
// list store.
func (s StorageConfig) RecommendationsDir() string {
	return filepath.Join(s.DataDir, "recommendations")
}

// ModelsDir returns the directory for persisted learned-model snapshots.
func (s StorageConfig) ModelsDir() string {
	return filepath.Join(s.DataDir, "models")
}

// EventsConfig sets the quiet periods for the change-notification
// coalescers. Training waits longer than recompute so an interactive
// refresh always lands first.
type EventsConfig struct {
	RecomputeQuiet time.Duration `koanf:"recompute_quiet" validate:"gt=0"`
	TrainingQuiet  time.Duration `koanf:"training_quiet" validate:"gt=0"`
}

// SupervisorConfig tunes the suture supervision tree used in watch mode.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gt=0"` // Failures before entering backoff
	FailureDecay     float64       `koanf:"failure_decay" validate:"gt=0"`     // Failure decay rate in seconds
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gt=0"`   // Wait once the threshold is exceeded
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`  // Max graceful-shutdown wait
}

// LoggingConfig configures the zerolog-backed logging package.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with every field set to its default.
// The values mirror the package-level defaults in internal/recommend,
// internal/recommend/embedding, internal/events, and internal/supervisor
// so that file config, env config, and direct library use agree.
func defaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			Weights: WeightsConfig{
				TwoTower:  0.35,
				RuleBased: 0.5,
				Genre:     0.2,
				Learned:   0.10,
			},
			KeepThreshold: 20,
			Limits: LimitsConfig{
				DefaultLimit: 20,
				MaxLimit:     100,
			},
			Training: TrainingConfig{
				MinFavorites:    10,
				MinNewFavorites: 3,
				Timeout:         time.Minute,
			},
		},
		Embedding: EmbeddingConfig{
			CacheCapacity:     300,
			CacheTTL:          7 * 24 * time.Hour,
			FetchBatchSize:    30,
			RequestsPerSecond: 4,
			FetchBurst:        2,
			BreakerFailures:   3,
			BreakerTimeout:    time.Minute,
		},
		Storage: StorageConfig{
			DataDir:           "data",
			InMemory:          false,
			KeepModelVersions: 3,
		},
		Events: EventsConfig{
			RecomputeQuiet: 500 * time.Millisecond,
			TrainingQuiet:  2 * time.Second,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
