// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package scoring

import (
	"context"
	"math"
	"math/rand"
	"testing"
)

func TestFeatureAt(t *testing.T) {
	t.Parallel()

	features := []float64{0.1, 0.2, 0.3}

	tests := []struct {
		name string
		idx  int
		want float64
	}{
		{name: "first", idx: 0, want: 0.1},
		{name: "last", idx: 2, want: 0.3},
		{name: "past end", idx: 3, want: 0},
		{name: "negative", idx: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := featureAt(features, tt.idx); got != tt.want {
				t.Errorf("featureAt(%d) = %f, want %f", tt.idx, got, tt.want)
			}
		})
	}

	if got := featureAt(nil, 0); got != 0 {
		t.Errorf("featureAt(nil, 0) = %f, want 0", got)
	}
}

func TestClamp01(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{name: "in range", x: 0.5, want: 0.5},
		{name: "below zero", x: -1, want: 0},
		{name: "above one", x: 2, want: 1},
		{name: "zero", x: 0, want: 0},
		{name: "one", x: 1, want: 1},
		{name: "NaN", x: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := clamp01(tt.x); got != tt.want {
				t.Errorf("clamp01(%f) = %f, want %f", tt.x, got, tt.want)
			}
		})
	}
}

func TestLogistic(t *testing.T) {
	t.Parallel()

	// At the center the squash returns exactly 0.5.
	if got := logistic(0.5, 0.5, 4); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("logistic(center) = %f, want 0.5", got)
	}

	// Monotonically increasing.
	low := logistic(0.2, 0.5, 4)
	high := logistic(0.8, 0.5, 4)
	if low >= high {
		t.Errorf("logistic not increasing: f(0.2) = %f >= f(0.8) = %f", low, high)
	}

	// Symmetric around the center.
	if sum := low + high; math.Abs(sum-1.0) > 1e-12 {
		t.Errorf("logistic(0.2) + logistic(0.8) = %f, want 1.0", sum)
	}

	// Bounded in (0,1).
	if got := logistic(-100, 0.5, 4); got < 0 || got >= 0.5 {
		t.Errorf("logistic(-100) = %f, want within [0, 0.5)", got)
	}
	if got := logistic(100, 0.5, 4); got > 1 || got <= 0.5 {
		t.Errorf("logistic(100) = %f, want within (0.5, 1]", got)
	}
}

func TestReluAndSigmoid(t *testing.T) {
	t.Parallel()

	if got := relu(-1); got != 0 {
		t.Errorf("relu(-1) = %f, want 0", got)
	}
	if got := relu(2.5); got != 2.5 {
		t.Errorf("relu(2.5) = %f, want 2.5", got)
	}

	if got := sigmoid(0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("sigmoid(0) = %f, want 0.5", got)
	}
	if got := sigmoid(10); got <= 0.99 {
		t.Errorf("sigmoid(10) = %f, want > 0.99", got)
	}
	if got := sigmoid(-10); got >= 0.01 {
		t.Errorf("sigmoid(-10) = %f, want < 0.01", got)
	}
}

func TestDropoutMask(t *testing.T) {
	t.Parallel()

	//nolint:gosec // G404: deterministic rand is fine in tests
	rng := rand.New(rand.NewSource(42))

	// No dropout: mask is always the identity.
	for i := 0; i < 100; i++ {
		if got := dropoutMask(rng, 1.0); got != 1.0 {
			t.Fatalf("dropoutMask(keep=1) = %f, want 1.0", got)
		}
	}

	// With dropout: mask is either 0 or the inverted keep rate, and both
	// occur over enough draws.
	keep := 0.8
	var zeros, kept int
	for i := 0; i < 1000; i++ {
		switch got := dropoutMask(rng, keep); got {
		case 0:
			zeros++
		case 1.0 / keep:
			kept++
		default:
			t.Fatalf("dropoutMask(keep=0.8) = %f, want 0 or %f", got, 1.0/keep)
		}
	}
	if zeros == 0 || kept == 0 {
		t.Errorf("dropoutMask never produced both outcomes: zeros = %d, kept = %d", zeros, kept)
	}
}

func TestContextCancelled(t *testing.T) {
	t.Parallel()

	if ContextCancelled(context.Background()) {
		t.Error("ContextCancelled(background) = true, want false")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if !ContextCancelled(ctx) {
		t.Error("ContextCancelled(canceled) = false, want true")
	}
}
