// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

// Package scoring implements the score-model variants behind the
// recommend.Scorer contract.
//
// Two interchangeable scorers exist:
//
//   - LearnedScorer: a small feed-forward network trained on the user's
//     favorites, persisted across restarts.
//   - HeuristicScorer: a weighted affinity sum through a logistic squash,
//     always available, used directly or as the untrained fallback.
//
// Selection between variants happens once at construction via Select;
// call sites never branch on the variant at scoring time.
//
// # Thread Safety
//
// Scorers are safe for concurrent use. Training acquires an exclusive
// lock while scoring uses a shared lock.
package scoring

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/aasimsyed/showlist/internal/recommend"
)

// baseScorer provides common state for all scorer variants.
type baseScorer struct {
	name          string
	trained       bool
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// newBaseScorer creates a base with the given name.
func newBaseScorer(name string) baseScorer {
	return baseScorer{name: name}
}

// Name returns the scorer identifier.
func (b *baseScorer) Name() string {
	return b.name
}

// IsTrained reports whether a training pass has completed.
func (b *baseScorer) IsTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trained
}

// Version returns the model version.
func (b *baseScorer) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastTrainedAt returns when the model was last trained.
func (b *baseScorer) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// markTrained updates the trained state.
// Must be called while holding the training lock.
func (b *baseScorer) markTrained() {
	b.trained = true
	b.version++
	b.lastTrainedAt = time.Now()
}

// acquireTrainLock acquires the exclusive training lock.
func (b *baseScorer) acquireTrainLock() {
	b.mu.Lock()
}

// releaseTrainLock releases the exclusive training lock.
func (b *baseScorer) releaseTrainLock() {
	b.mu.Unlock()
}

// acquireScoreLock acquires the shared scoring lock.
func (b *baseScorer) acquireScoreLock() {
	b.mu.RLock()
}

// releaseScoreLock releases the shared scoring lock.
func (b *baseScorer) releaseScoreLock() {
	b.mu.RUnlock()
}

// featureAt reads a feature by index, treating missing positions as zero
// so malformed vectors degrade instead of panicking.
func featureAt(features []float64, idx int) float64 {
	if idx < 0 || idx >= len(features) {
		return 0
	}
	return features[idx]
}

// logistic squashes x into (0,1) around the given center with the given
// steepness.
func logistic(x, center, steepness float64) float64 {
	return 1.0 / (1.0 + math.Exp(-steepness*(x-center)))
}

// clamp01 bounds a score to [0,1], mapping NaN to 0.
func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// relu is the hidden-layer activation.
func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// sigmoid is the output activation.
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// Ensure all scorers implement the contract.
var (
	_ recommend.Scorer = (*HeuristicScorer)(nil)
	_ recommend.Scorer = (*LearnedScorer)(nil)
)
