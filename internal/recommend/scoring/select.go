// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package scoring

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/recommend"
	"github.com/aasimsyed/showlist/internal/recommend/storage"
)

// Config selects and parameterizes the scorer variant.
type Config struct {
	// UseLearned enables the learned scorer. When false the heuristic
	// scorer is used directly.
	UseLearned bool

	// Heuristic parameterizes the heuristic scorer (also the learned
	// scorer's untrained fallback).
	Heuristic HeuristicConfig

	// Learned parameterizes the learned scorer.
	Learned LearnedConfig
}

// DefaultConfig returns the default scoring configuration.
func DefaultConfig() Config {
	return Config{
		UseLearned: true,
		Heuristic:  DefaultHeuristicConfig(),
		Learned:    DefaultLearnedConfig(),
	}
}

// Select constructs the scorer for the given configuration. The choice
// is made once here; callers hold a recommend.Scorer and never branch on
// the variant again. Any failure bringing up the learned scorer degrades
// to the heuristic scorer so scoring stays available.
func Select(ctx context.Context, config Config, store *storage.ModelStore, logger zerolog.Logger) recommend.Scorer {
	if !config.UseLearned {
		logger.Debug().Msg("learned scorer disabled, using heuristic scorer")
		return NewHeuristicScorer(config.Heuristic)
	}

	learned := NewLearnedScorer(config.Learned, store, logger)
	if err := learned.Init(ctx); err != nil {
		logger.Warn().
			Err(err).
			Msg("learned scorer unavailable, falling back to heuristic scorer")
		learned.Dispose()
		return NewHeuristicScorer(config.Heuristic)
	}
	return learned
}
