// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights defines the blend contribution of each score component.
	Weights BlendWeights `json:"weights"`

	// KeepThreshold is the final-score cutoff: candidates at or below it
	// are dropped unless their explanation carries at least one reason.
	// Default: 20.
	KeepThreshold float64 `json:"keep_threshold"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Training contains training trigger parameters.
	Training TrainingConfig `json:"training"`
}

// BlendWeights defines the contribution of each score component to the
// final 0-100 score. The components live on different native scales:
// two-tower, genre, and learned are 0-1 and stretched to 0-100 before
// weighting, rule-based is weighted on its native 0-70 scale. The
// weights are empirical constants and are deliberately not renormalized;
// components can jointly exceed 100 and the keep threshold assumes these
// proportions.
type BlendWeights struct {
	// TwoTower is the weight of the embedding-similarity score.
	// Default: 0.35.
	TwoTower float64 `json:"two_tower"`

	// RuleBased is the weight of the affinity-count score, applied to
	// its native 0-70 scale.
	// Default: 0.5.
	RuleBased float64 `json:"rule_based"`

	// Genre is the weight of the genre-overlap score.
	// Default: 0.2.
	Genre float64 `json:"genre"`

	// Learned is the weight of the model (or heuristic fallback) score.
	// Default: 0.10.
	Learned float64 `json:"learned"`
}

// Blend computes the final 0-100 score from a component breakdown.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w BlendWeights) Blend(c ComponentScores) float64 {
	return c.TwoTower*100*w.TwoTower +
		c.RuleBased*w.RuleBased +
		c.Genre*100*w.Genre +
		c.Learned*100*w.Learned
}

// ToMap returns the weights as a string-keyed map.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w BlendWeights) ToMap() map[string]float64 {
	return map[string]float64{
		"two_tower":  w.TwoTower,
		"rule_based": w.RuleBased,
		"genre":      w.Genre,
		"learned":    w.Learned,
	}
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultLimit is the number of recommendations returned when the
	// caller does not supply a positive limit.
	// Default: 20.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit is the largest allowed result size.
	// Default: 100.
	MaxLimit int `json:"max_limit"`
}

// TrainingConfig contains training trigger parameters.
type TrainingConfig struct {
	// MinFavorites is the smallest favorites set worth training on.
	// Default: 10.
	MinFavorites int `json:"min_favorites"`

	// MinNewFavorites is how much the favorites set must have grown
	// since the last completed training run before training again.
	// Default: 3.
	MinNewFavorites int `json:"min_new_favorites"`

	// Timeout is the maximum time allowed for a training run.
	// Default: 1m.
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns a Config with the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: BlendWeights{
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
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.TwoTower < 0 {
		return fmt.Errorf("weights.two_tower must be non-negative, got %f", c.Weights.TwoTower)
	}
	if c.Weights.RuleBased < 0 {
		return fmt.Errorf("weights.rule_based must be non-negative, got %f", c.Weights.RuleBased)
	}
	if c.Weights.Genre < 0 {
		return fmt.Errorf("weights.genre must be non-negative, got %f", c.Weights.Genre)
	}
	if c.Weights.Learned < 0 {
		return fmt.Errorf("weights.learned must be non-negative, got %f", c.Weights.Learned)
	}

	if c.KeepThreshold < 0 || c.KeepThreshold > 100 {
		return fmt.Errorf("keep_threshold must be in [0, 100], got %f", c.KeepThreshold)
	}

	if c.Limits.DefaultLimit < 1 {
		return fmt.Errorf("limits.default_limit must be positive, got %d", c.Limits.DefaultLimit)
	}
	if c.Limits.MaxLimit < c.Limits.DefaultLimit {
		return fmt.Errorf("limits.max_limit must be >= limits.default_limit, got %d < %d", c.Limits.MaxLimit, c.Limits.DefaultLimit)
	}

	if c.Training.MinFavorites < 1 {
		return fmt.Errorf("training.min_favorites must be positive, got %d", c.Training.MinFavorites)
	}
	if c.Training.MinNewFavorites < 1 {
		return fmt.Errorf("training.min_new_favorites must be positive, got %d", c.Training.MinNewFavorites)
	}
	if c.Training.Timeout <= 0 {
		return fmt.Errorf("training.timeout must be positive, got %v", c.Training.Timeout)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - all nested structs contain only value types
	return &Config{
		Weights:       c.Weights,
		KeepThreshold: c.KeepThreshold,
		Limits:        c.Limits,
		Training:      c.Training,
	}
}
