// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package scoring

import (
	"context"
	"math"

	"github.com/aasimsyed/showlist/internal/recommend"
)

// HeuristicConfig holds the weights and squash parameters for the
// heuristic scorer.
type HeuristicConfig struct {
	// ArtistWeight scales the artist-affinity feature.
	ArtistWeight float64

	// VenueWeight scales the venue-affinity feature.
	VenueWeight float64

	// TimeWeight scales the time-of-day bucket frequency feature.
	TimeWeight float64

	// BonusWeight scales the candidate completeness bonus.
	BonusWeight float64

	// BaseBonus is the unconditional part of the completeness bonus.
	BaseBonus float64

	// TicketBonus is added when the candidate has a ticket link.
	TicketBonus float64

	// MapBonus is added when the candidate has a map link.
	MapBonus float64

	// SquashCenter centers the logistic squash.
	SquashCenter float64

	// SquashSteepness controls the slope of the logistic squash.
	SquashSteepness float64
}

// DefaultHeuristicConfig returns the default heuristic configuration.
func DefaultHeuristicConfig() HeuristicConfig {
	return HeuristicConfig{
		ArtistWeight:    0.4,
		VenueWeight:     0.3,
		TimeWeight:      0.2,
		BonusWeight:     0.1,
		BaseBonus:       0.5,
		TicketBonus:     0.3,
		MapBonus:        0.2,
		SquashCenter:    0.5,
		SquashSteepness: 4.0,
	}
}

// HeuristicScorer scores candidates with a fixed weighted sum of affinity
// features pushed through a logistic squash. It requires no training and
// is always ready.
type HeuristicScorer struct {
	baseScorer
	config HeuristicConfig
}

// NewHeuristicScorer creates a heuristic scorer with the given config.
// Zero weights are filled from defaults so a partially populated config
// still behaves sensibly.
func NewHeuristicScorer(config HeuristicConfig) *HeuristicScorer {
	defaults := DefaultHeuristicConfig()
	if config.ArtistWeight == 0 && config.VenueWeight == 0 && config.TimeWeight == 0 && config.BonusWeight == 0 {
		config.ArtistWeight = defaults.ArtistWeight
		config.VenueWeight = defaults.VenueWeight
		config.TimeWeight = defaults.TimeWeight
		config.BonusWeight = defaults.BonusWeight
	}
	if config.BaseBonus == 0 && config.TicketBonus == 0 && config.MapBonus == 0 {
		config.BaseBonus = defaults.BaseBonus
		config.TicketBonus = defaults.TicketBonus
		config.MapBonus = defaults.MapBonus
	}
	if config.SquashSteepness == 0 {
		config.SquashCenter = defaults.SquashCenter
		config.SquashSteepness = defaults.SquashSteepness
	}

	return &HeuristicScorer{
		baseScorer: newBaseScorer("heuristic"),
		config:     config,
	}
}

// Init is a no-op; the heuristic scorer has no state to load.
func (h *HeuristicScorer) Init(_ context.Context) error {
	return nil
}

// Score computes the weighted affinity sum for one profile/candidate pair.
//
// Profile features: [0] artist affinity, [1] venue affinity, [2..5]
// time-of-day bucket frequencies. Candidate features: [2] encoded time
// bucket, [3] ticket link flag, [4] map link flag.
func (h *HeuristicScorer) Score(profileFeatures, candidateFeatures []float64) float64 {
	artist := featureAt(profileFeatures, 0)
	venue := featureAt(profileFeatures, 1)

	// Recover the candidate's bucket index from its encoded feature and
	// read the matching bucket frequency out of the profile.
	bucketIdx := int(math.Round(featureAt(candidateFeatures, 2) * float64(recommend.NumTimeBuckets)))
	if bucketIdx < 0 {
		bucketIdx = 0
	}
	if bucketIdx >= recommend.NumTimeBuckets {
		bucketIdx = recommend.NumTimeBuckets - 1
	}
	timeFreq := featureAt(profileFeatures, 2+bucketIdx)

	bonus := h.config.BaseBonus +
		h.config.TicketBonus*featureAt(candidateFeatures, 3) +
		h.config.MapBonus*featureAt(candidateFeatures, 4)

	raw := h.config.ArtistWeight*artist +
		h.config.VenueWeight*venue +
		h.config.TimeWeight*timeFreq +
		h.config.BonusWeight*bonus

	return clamp01(logistic(raw, h.config.SquashCenter, h.config.SquashSteepness))
}

// Train is a no-op; heuristic weights are fixed.
func (h *HeuristicScorer) Train(_ context.Context, _ []recommend.TrainingExample) error {
	return nil
}

// Dispose releases resources. The heuristic scorer holds none.
func (h *HeuristicScorer) Dispose() {}
