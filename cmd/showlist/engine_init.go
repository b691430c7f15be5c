// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/config"
	"github.com/aasimsyed/showlist/internal/recommend"
	"github.com/aasimsyed/showlist/internal/recommend/embedding"
	"github.com/aasimsyed/showlist/internal/recommend/scoring"
	"github.com/aasimsyed/showlist/internal/recommend/storage"
	"github.com/aasimsyed/showlist/internal/supervisor"
)

// components holds the assembled engine and its backing stores.
type components struct {
	Engine  *recommend.Engine
	Store   *storage.Store
	Backend storage.Backend
	Logger  zerolog.Logger

	closeOnce sync.Once
}

// Close releases the engine and storage. Safe to call more than once;
// main closes explicitly before fatal exits because zerolog's Fatal
// skips deferred calls.
func (c *components) Close() {
	c.closeOnce.Do(func() {
		c.Engine.Dispose()
		if err := c.Backend.Close(); err != nil {
			c.Logger.Error().Err(err).Msg("Error closing storage backend")
		}
	})
}

// initComponents builds the engine with its scorer, stores, and the
// optional file-backed collaborators.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initComponents(ctx context.Context, cfg *config.Config, opts runOptions, logger zerolog.Logger) (*components, error) {
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage backend: %w", err)
	}

	store := storage.NewStore(backend, recommend.NewRealClock(), logger)

	// The learned scorer needs somewhere to persist snapshots; without
	// a disk the capability probe stays on the heuristic scorer.
	var modelStore *storage.ModelStore
	scoringCfg := buildScoringConfig(cfg)
	if cfg.Storage.InMemory {
		scoringCfg.UseLearned = false
		logger.Info().Msg("In-memory storage selected, learned scorer disabled")
	} else {
		modelStore, err = storage.NewModelStore(cfg.Storage.ModelsDir())
		if err != nil {
			logger.Warn().Err(err).Msg("Model store unavailable, falling back to heuristic scorer")
			scoringCfg.UseLearned = false
		}
	}

	scorer := scoring.Select(ctx, scoringCfg, modelStore, logger)

	engine, err := recommend.NewEngine(buildEngineConfig(cfg), scorer, logger)
	if err != nil {
		scorer.Dispose()
		closeBackend(backend, logger)
		return nil, fmt.Errorf("create engine: %w", err)
	}
	engine.SetListStore(store)

	if lookup := newFileGenreLookup(opts.GenresPath, logger); lookup != nil {
		engine.SetGenreLookup(lookup)
	}

	if provider := newFileEmbeddingProvider(opts.EmbeddingsPath, logger); provider != nil {
		cache := embedding.NewCache(cfg.Embedding.CacheCapacity, cfg.Embedding.CacheTTL, nil)
		fetcher := embedding.NewFetcher(provider, cache, buildFetcherConfig(cfg), logger)
		engine.SetEmbeddings(cache, fetcher)
	}

	logger.Info().
		Str("scorer", scorer.Name()).
		Bool("in_memory", cfg.Storage.InMemory).
		Bool("genres", opts.GenresPath != "").
		Bool("embeddings", opts.EmbeddingsPath != "").
		Msg("Engine initialized")

	return &components{
		Engine:  engine,
		Store:   store,
		Backend: backend,
		Logger:  logger,
	}, nil
}

// openBackend opens the configured recommendation store backend.
func openBackend(cfg *config.Config) (storage.Backend, error) {
	if cfg.Storage.InMemory {
		return storage.NewMemoryBackend(), nil
	}

	dir := cfg.Storage.RecommendationsDir()
	if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for local state
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return storage.NewBadgerBackend(dir)
}

//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func closeBackend(backend storage.Backend, logger zerolog.Logger) {
	if err := backend.Close(); err != nil {
		logger.Error().Err(err).Msg("Error closing storage backend")
	}
}

// buildEngineConfig maps the app config onto the engine configuration.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	return &recommend.Config{
		Weights: recommend.BlendWeights{
			TwoTower:  cfg.Engine.Weights.TwoTower,
			RuleBased: cfg.Engine.Weights.RuleBased,
			Genre:     cfg.Engine.Weights.Genre,
			Learned:   cfg.Engine.Weights.Learned,
		},
		KeepThreshold: cfg.Engine.KeepThreshold,
		Limits: recommend.LimitsConfig{
			DefaultLimit: cfg.Engine.Limits.DefaultLimit,
			MaxLimit:     cfg.Engine.Limits.MaxLimit,
		},
		Training: recommend.TrainingConfig{
			MinFavorites:    cfg.Engine.Training.MinFavorites,
			MinNewFavorites: cfg.Engine.Training.MinNewFavorites,
			Timeout:         cfg.Engine.Training.Timeout,
		},
	}
}

// buildScoringConfig maps the app config onto scorer selection.
func buildScoringConfig(cfg *config.Config) scoring.Config {
	sc := scoring.DefaultConfig()
	sc.Learned.KeepVersions = cfg.Storage.KeepModelVersions
	return sc
}

// buildFetcherConfig maps the app config onto the embedding fetcher.
func buildFetcherConfig(cfg *config.Config) embedding.FetcherConfig {
	return embedding.FetcherConfig{
		BatchSize:                  cfg.Embedding.FetchBatchSize,
		RequestsPerSecond:          cfg.Embedding.RequestsPerSecond,
		Burst:                      cfg.Embedding.FetchBurst,
		BreakerName:                "embedding-provider",
		BreakerConsecutiveFailures: uint32(cfg.Embedding.BreakerFailures), //nolint:gosec // validated >= 1
		BreakerTimeout:             cfg.Embedding.BreakerTimeout,
	}
}

// buildTreeConfig maps the app config onto the supervision tree.
func buildTreeConfig(cfg *config.Config) supervisor.TreeConfig {
	return supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureDecay:     cfg.Supervisor.FailureDecay,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Supervisor.ShutdownTimeout,
	}
}
