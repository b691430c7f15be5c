// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package embedding

import "math"

// Pair identifies the event description an embedding belongs to.
type Pair struct {
	Artist string `json:"artist"`
	Venue  string `json:"venue"`
}

// Key returns the pair's cache key.
func (p Pair) Key() string {
	return CacheKey(p.Artist, p.Venue)
}

// PairEmbedding is one collaborator result: a pair and its vector.
type PairEmbedding struct {
	Pair   Pair      `json:"pair"`
	Vector []float64 `json:"vector"`
}

// TwoTower scores user-taste against candidate events in embedding
// space: one tower is the mean of the user's favorited-event vectors,
// the other the candidate's vector, compared by cosine similarity.
type TwoTower struct{}

// NewTwoTower creates a two-tower scorer.
func NewTwoTower() *TwoTower {
	return &TwoTower{}
}

// UserVector returns the arithmetic mean of the given vectors. Vectors
// whose length differs from the first one are skipped; nil is returned
// when nothing usable remains.
func (t *TwoTower) UserVector(vectors [][]float64) []float64 {
	var sum []float64
	count := 0

	for _, v := range vectors {
		if len(v) == 0 {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(v))
		}
		if len(v) != len(sum) {
			continue
		}
		for i, x := range v {
			sum[i] += x
		}
		count++
	}

	if count == 0 {
		return nil
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum
}

// Score maps cosine similarity into [0,1] as (cosine+1)/2. Empty,
// zero-norm, or dimension-mismatched inputs score exactly 0 rather than
// the midpoint, so "no data" never outranks a weak real signal. Never
// returns NaN.
func (t *TwoTower) Score(user, item []float64) float64 {
	if len(user) == 0 || len(item) == 0 || len(user) != len(item) {
		return 0
	}

	cos, ok := cosine(user, item)
	if !ok {
		return 0
	}
	return (cos + 1) / 2
}

// cosine returns the cosine similarity of two equal-length vectors. The
// boolean is false when either norm is zero.
func cosine(a, b []float64) (float64, bool) {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
