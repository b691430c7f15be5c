// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package scoring

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/recommend"
	"github.com/aasimsyed/showlist/internal/recommend/storage"
)

// LearnedConfig holds hyperparameters for the learned scorer.
type LearnedConfig struct {
	// InputSize is the combined feature vector length.
	InputSize int

	// Hidden1 is the first hidden layer width.
	Hidden1 int

	// Hidden2 is the second hidden layer width.
	Hidden2 int

	// LearningRate for mini-batch gradient descent.
	LearningRate float64

	// Epochs is the number of passes over the training set.
	Epochs int

	// BatchSize caps each mini-batch.
	BatchSize int

	// Dropout is the hidden-unit drop probability during training.
	Dropout float64

	// ValidationSplit is the fraction of examples held out for
	// validation-loss tracking.
	ValidationSplit float64

	// Seed for reproducible initialization and shuffling.
	Seed int64

	// ModelName is the identifier used for persistence.
	ModelName string

	// KeepVersions is how many persisted snapshots to retain; older
	// versions are pruned after each save.
	KeepVersions int
}

// DefaultLearnedConfig returns the default learned scorer configuration.
func DefaultLearnedConfig() LearnedConfig {
	return LearnedConfig{
		InputSize:       recommend.FeatureVectorSize,
		Hidden1:         32,
		Hidden2:         16,
		LearningRate:    0.05,
		Epochs:          10,
		BatchSize:       32,
		Dropout:         0.2,
		ValidationSplit: 0.2,
		Seed:            42,
		ModelName:       "learned",
		KeepVersions:    3,
	}
}

// LearnedScorer scores candidates with a small feed-forward network
// (input -> hidden -> hidden -> sigmoid output) trained on the user's
// favorites. Until a training pass completes it delegates to an embedded
// heuristic scorer, so a fresh install still produces useful scores.
type LearnedScorer struct {
	baseScorer
	config   LearnedConfig
	store    *storage.ModelStore
	fallback *HeuristicScorer
	logger   zerolog.Logger

	// Network weights, guarded by the baseScorer lock. w1 and w2 are
	// row-major [out][in] matrices.
	w1, b1 []float64
	w2, b2 []float64
	w3     []float64
	b3     float64

	// trainingMu serializes Train calls; the baseScorer lock is only
	// held for the final weight swap so scoring continues during
	// training.
	trainingMu sync.Mutex
	rng        *rand.Rand
}

// NewLearnedScorer creates a learned scorer. The store may be nil, in
// which case trained weights are not persisted. Call Init before use.
func NewLearnedScorer(config LearnedConfig, store *storage.ModelStore, logger zerolog.Logger) *LearnedScorer {
	defaults := DefaultLearnedConfig()
	if config.InputSize <= 0 {
		config.InputSize = defaults.InputSize
	}
	if config.Hidden1 <= 0 {
		config.Hidden1 = defaults.Hidden1
	}
	if config.Hidden2 <= 0 {
		config.Hidden2 = defaults.Hidden2
	}
	if config.LearningRate <= 0 {
		config.LearningRate = defaults.LearningRate
	}
	if config.Epochs <= 0 {
		config.Epochs = defaults.Epochs
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.Dropout < 0 || config.Dropout >= 1 {
		config.Dropout = defaults.Dropout
	}
	if config.ValidationSplit <= 0 || config.ValidationSplit >= 1 {
		config.ValidationSplit = defaults.ValidationSplit
	}
	if config.Seed == 0 {
		config.Seed = defaults.Seed
	}
	if config.ModelName == "" {
		config.ModelName = defaults.ModelName
	}
	if config.KeepVersions <= 0 {
		config.KeepVersions = defaults.KeepVersions
	}

	return &LearnedScorer{
		baseScorer: newBaseScorer(config.ModelName),
		config:     config,
		store:      store,
		fallback:   NewHeuristicScorer(DefaultHeuristicConfig()),
		logger:     logger,
		//nolint:gosec // G404: math/rand is acceptable for ML initialization (not security)
		rng: rand.New(rand.NewSource(config.Seed)),
	}
}

// Init restores persisted weights if available, otherwise initializes a
// fresh untrained network. A load failure is not fatal: the scorer logs
// it and starts untrained.
func (l *LearnedScorer) Init(ctx context.Context) error {
	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	l.acquireTrainLock()
	defer l.releaseTrainLock()

	if l.store != nil {
		var state storage.NetworkState
		meta, err := l.store.LoadLatest(ctx, l.config.ModelName, &state)
		switch {
		case err == nil && l.stateMatches(&state):
			l.w1, l.b1 = state.W1, state.B1
			l.w2, l.b2 = state.W2, state.B2
			l.w3, l.b3 = state.W3, state.B3
			l.trained = true
			l.version = meta.Version
			l.lastTrainedAt = meta.TrainedAt
			l.logger.Info().
				Str("model", l.config.ModelName).
				Int("version", meta.Version).
				Time("trained_at", meta.TrainedAt).
				Msg("restored learned scorer weights")
			return nil
		case err == nil:
			l.logger.Warn().
				Str("model", l.config.ModelName).
				Msg("persisted weights have mismatched dimensions, starting untrained")
		case errors.Is(err, storage.ErrModelNotFound):
			// First run, nothing persisted yet.
		default:
			l.logger.Warn().
				Err(err).
				Str("model", l.config.ModelName).
				Msg("failed to load persisted weights, starting untrained")
		}
	}

	l.initializeLocked()
	return nil
}

// stateMatches reports whether a persisted state fits this configuration.
func (l *LearnedScorer) stateMatches(state *storage.NetworkState) bool {
	in, h1, h2 := l.config.InputSize, l.config.Hidden1, l.config.Hidden2
	return state.InputSize == in &&
		state.Hidden1 == h1 &&
		state.Hidden2 == h2 &&
		len(state.W1) == h1*in && len(state.B1) == h1 &&
		len(state.W2) == h2*h1 && len(state.B2) == h2 &&
		len(state.W3) == h2
}

// initializeLocked allocates fresh weights with small random values.
// Must be called while holding the training lock.
func (l *LearnedScorer) initializeLocked() {
	in, h1, h2 := l.config.InputSize, l.config.Hidden1, l.config.Hidden2

	initSlice := func(n int) []float64 {
		s := make([]float64, n)
		for i := range s {
			s[i] = (l.rng.Float64() - 0.5) * 0.01
		}
		return s
	}

	l.w1, l.b1 = initSlice(h1*in), make([]float64, h1)
	l.w2, l.b2 = initSlice(h2*h1), make([]float64, h2)
	l.w3, l.b3 = initSlice(h2), 0
	l.trained = false
}

// Score runs the network on the combined feature vector. Until trained
// it delegates to the heuristic fallback.
func (l *LearnedScorer) Score(profileFeatures, candidateFeatures []float64) float64 {
	l.acquireScoreLock()
	if !l.trained || l.w1 == nil {
		l.releaseScoreLock()
		return l.fallback.Score(profileFeatures, candidateFeatures)
	}
	net := l.netLocked()
	out := net.forward(recommend.CombineFeatures(profileFeatures, candidateFeatures))
	l.releaseScoreLock()
	return clamp01(out)
}

// RawScore exposes the untrained-aware network output without the
// heuristic fallback, for callers that need to know whether the model
// itself produced the value.
func (l *LearnedScorer) RawScore(profileFeatures, candidateFeatures []float64) (float64, bool) {
	l.acquireScoreLock()
	defer l.releaseScoreLock()
	if !l.trained || l.w1 == nil {
		return 0, false
	}
	net := l.netLocked()
	return clamp01(net.forward(recommend.CombineFeatures(profileFeatures, candidateFeatures))), true
}

// Train fits the network to the given examples with mini-batch gradient
// descent, holding out a validation slice and keeping the epoch with the
// lowest validation loss. Training runs on a copy of the weights; a
// canceled or failed run leaves the current weights untouched. An empty
// example set is a successful no-op and does not mark the scorer trained.
//
//nolint:gocyclo // ML training loops are inherently long
func (l *LearnedScorer) Train(ctx context.Context, examples []recommend.TrainingExample) error {
	if len(examples) == 0 {
		return nil
	}

	l.trainingMu.Lock()
	defer l.trainingMu.Unlock()

	start := time.Now()

	l.acquireScoreLock()
	net := l.snapshotLocked()
	l.releaseScoreLock()
	if net == nil {
		net = newNetwork(l.config.InputSize, l.config.Hidden1, l.config.Hidden2)
		net.initialize(l.rng)
	}

	shuffled := make([]recommend.TrainingExample, len(examples))
	copy(shuffled, examples)
	l.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	valN := int(float64(len(shuffled)) * l.config.ValidationSplit)
	val := shuffled[:valN]
	train := shuffled[valN:]
	if len(val) == 0 {
		val = train
	}

	best := net.clone()
	bestLoss := math.Inf(1)

	for epoch := 0; epoch < l.config.Epochs; epoch++ {
		if ContextCancelled(ctx) {
			return ctx.Err()
		}

		l.rng.Shuffle(len(train), func(i, j int) {
			train[i], train[j] = train[j], train[i]
		})

		for begin := 0; begin < len(train); begin += l.config.BatchSize {
			end := begin + l.config.BatchSize
			if end > len(train) {
				end = len(train)
			}
			net.trainBatch(train[begin:end], l.config.LearningRate, l.config.Dropout, l.rng)
		}

		loss := net.validationLoss(val)
		if loss < bestLoss {
			bestLoss = loss
			best = net.clone()
		}
	}

	l.acquireTrainLock()
	l.w1, l.b1 = best.w1, best.b1
	l.w2, l.b2 = best.w2, best.b2
	l.w3, l.b3 = best.w3, best.b3
	l.markTrained()
	version := l.version
	l.releaseTrainLock()

	duration := time.Since(start)
	l.persist(ctx, version, len(examples), duration)

	l.logger.Info().
		Str("model", l.config.ModelName).
		Int("version", version).
		Int("examples", len(examples)).
		Int("training", len(train)).
		Int("validation", len(val)).
		Float64("validation_loss", bestLoss).
		Dur("duration", duration).
		Msg("learned scorer training complete")

	return nil
}

// persist saves the current weights best-effort; a failure is logged but
// does not fail the training run.
func (l *LearnedScorer) persist(ctx context.Context, version, examples int, trainingDuration time.Duration) {
	if l.store == nil {
		return
	}

	l.acquireScoreLock()
	state := storage.NetworkState{
		InputSize: l.config.InputSize,
		Hidden1:   l.config.Hidden1,
		Hidden2:   l.config.Hidden2,
		W1:        append([]float64(nil), l.w1...),
		B1:        append([]float64(nil), l.b1...),
		W2:        append([]float64(nil), l.w2...),
		B2:        append([]float64(nil), l.b2...),
		W3:        append([]float64(nil), l.w3...),
		B3:        l.b3,
	}
	trainedAt := l.lastTrainedAt
	l.releaseScoreLock()

	meta := storage.ModelMetadata{
		TrainedAt:          trainedAt,
		ExampleCount:       examples,
		TrainingDurationMS: trainingDuration.Milliseconds(),
	}
	if err := l.store.Save(ctx, l.config.ModelName, version, state, meta); err != nil {
		l.logger.Warn().
			Err(err).
			Str("model", l.config.ModelName).
			Int("version", version).
			Msg("failed to persist learned scorer weights")
		return
	}

	if l.config.KeepVersions > 0 {
		if err := l.store.Prune(ctx, l.config.ModelName, l.config.KeepVersions); err != nil {
			l.logger.Warn().
				Err(err).
				Str("model", l.config.ModelName).
				Msg("failed to prune old model snapshots")
		}
	}
}

// Dispose releases the network weights.
func (l *LearnedScorer) Dispose() {
	l.acquireTrainLock()
	defer l.releaseTrainLock()
	l.w1, l.b1, l.w2, l.b2, l.w3 = nil, nil, nil, nil, nil
	l.b3 = 0
	l.trained = false
}

// netLocked wraps the current weights in a network view. Callers must
// hold at least the scoring lock.
func (l *LearnedScorer) netLocked() *network {
	return &network{
		in: l.config.InputSize, h1: l.config.Hidden1, h2: l.config.Hidden2,
		w1: l.w1, b1: l.b1,
		w2: l.w2, b2: l.b2,
		w3: l.w3, b3: l.b3,
	}
}

// snapshotLocked deep-copies the current weights, or returns nil when
// the network has not been initialized. Callers must hold at least the
// scoring lock.
func (l *LearnedScorer) snapshotLocked() *network {
	if l.w1 == nil {
		return nil
	}
	return l.netLocked().clone()
}

// network is the raw weight set worked on during training, detached from
// the scorer's locks.
type network struct {
	in, h1, h2 int
	w1, b1     []float64
	w2, b2     []float64
	w3         []float64
	b3         float64
}

func newNetwork(in, h1, h2 int) *network {
	return &network{
		in: in, h1: h1, h2: h2,
		w1: make([]float64, h1*in), b1: make([]float64, h1),
		w2: make([]float64, h2*h1), b2: make([]float64, h2),
		w3: make([]float64, h2),
	}
}

func (n *network) initialize(rng *rand.Rand) {
	for _, s := range [][]float64{n.w1, n.w2, n.w3} {
		for i := range s {
			s[i] = (rng.Float64() - 0.5) * 0.01
		}
	}
}

func (n *network) clone() *network {
	c := &network{in: n.in, h1: n.h1, h2: n.h2, b3: n.b3}
	c.w1 = append([]float64(nil), n.w1...)
	c.b1 = append([]float64(nil), n.b1...)
	c.w2 = append([]float64(nil), n.w2...)
	c.b2 = append([]float64(nil), n.b2...)
	c.w3 = append([]float64(nil), n.w3...)
	return c
}

// forward runs an inference pass without dropout.
func (n *network) forward(features []float64) float64 {
	a1 := make([]float64, n.h1)
	for h := 0; h < n.h1; h++ {
		sum := n.b1[h]
		row := h * n.in
		for i := 0; i < n.in; i++ {
			sum += n.w1[row+i] * featureAt(features, i)
		}
		a1[h] = relu(sum)
	}

	a2 := make([]float64, n.h2)
	for k := 0; k < n.h2; k++ {
		sum := n.b2[k]
		row := k * n.h1
		for h := 0; h < n.h1; h++ {
			sum += n.w2[row+h] * a1[h]
		}
		a2[k] = relu(sum)
	}

	z3 := n.b3
	for k := 0; k < n.h2; k++ {
		z3 += n.w3[k] * a2[k]
	}
	return sigmoid(z3)
}

// trainBatch accumulates binary cross-entropy gradients over one
// mini-batch with inverted dropout on both hidden layers, then applies
// the averaged update.
//
//nolint:gocyclo // backpropagation is inherently index-heavy
func (n *network) trainBatch(batch []recommend.TrainingExample, lr, dropout float64, rng *rand.Rand) {
	if len(batch) == 0 {
		return
	}

	gw1 := make([]float64, len(n.w1))
	gb1 := make([]float64, len(n.b1))
	gw2 := make([]float64, len(n.w2))
	gb2 := make([]float64, len(n.b2))
	gw3 := make([]float64, len(n.w3))
	var gb3 float64

	keep := 1.0 - dropout

	z1 := make([]float64, n.h1)
	a1 := make([]float64, n.h1)
	m1 := make([]float64, n.h1)
	z2 := make([]float64, n.h2)
	a2 := make([]float64, n.h2)
	m2 := make([]float64, n.h2)
	dz2 := make([]float64, n.h2)

	for _, ex := range batch {
		x := ex.Features

		// Forward with dropout masks recorded for backprop.
		for h := 0; h < n.h1; h++ {
			sum := n.b1[h]
			row := h * n.in
			for i := 0; i < n.in; i++ {
				sum += n.w1[row+i] * featureAt(x, i)
			}
			z1[h] = sum
			m1[h] = dropoutMask(rng, keep)
			a1[h] = relu(sum) * m1[h]
		}
		for k := 0; k < n.h2; k++ {
			sum := n.b2[k]
			row := k * n.h1
			for h := 0; h < n.h1; h++ {
				sum += n.w2[row+h] * a1[h]
			}
			z2[k] = sum
			m2[k] = dropoutMask(rng, keep)
			a2[k] = relu(sum) * m2[k]
		}
		z3 := n.b3
		for k := 0; k < n.h2; k++ {
			z3 += n.w3[k] * a2[k]
		}
		out := sigmoid(z3)

		// Backward. Sigmoid + cross-entropy collapses to (out - label).
		dz3 := out - ex.Label
		gb3 += dz3
		for k := 0; k < n.h2; k++ {
			gw3[k] += dz3 * a2[k]
			d := dz3 * n.w3[k] * m2[k]
			if z2[k] <= 0 {
				d = 0
			}
			dz2[k] = d
			gb2[k] += d
			row := k * n.h1
			for h := 0; h < n.h1; h++ {
				gw2[row+h] += d * a1[h]
			}
		}
		for h := 0; h < n.h1; h++ {
			var d float64
			for k := 0; k < n.h2; k++ {
				d += dz2[k] * n.w2[k*n.h1+h]
			}
			d *= m1[h]
			if z1[h] <= 0 {
				d = 0
			}
			gb1[h] += d
			row := h * n.in
			for i := 0; i < n.in; i++ {
				gw1[row+i] += d * featureAt(x, i)
			}
		}
	}

	scale := lr / float64(len(batch))
	for i := range n.w1 {
		n.w1[i] -= scale * gw1[i]
	}
	for i := range n.b1 {
		n.b1[i] -= scale * gb1[i]
	}
	for i := range n.w2 {
		n.w2[i] -= scale * gw2[i]
	}
	for i := range n.b2 {
		n.b2[i] -= scale * gb2[i]
	}
	for i := range n.w3 {
		n.w3[i] -= scale * gw3[i]
	}
	n.b3 -= scale * gb3
}

// dropoutMask returns the inverted-dropout multiplier for one unit:
// 1/keep with probability keep, otherwise 0.
func dropoutMask(rng *rand.Rand, keep float64) float64 {
	if keep >= 1.0 {
		return 1.0
	}
	if rng.Float64() < keep {
		return 1.0 / keep
	}
	return 0
}

// validationLoss computes mean binary cross-entropy without dropout.
func (n *network) validationLoss(examples []recommend.TrainingExample) float64 {
	if len(examples) == 0 {
		return 0
	}
	var total float64
	for _, ex := range examples {
		p := n.forward(ex.Features)
		p = math.Min(math.Max(p, 1e-7), 1-1e-7)
		total += -(ex.Label*math.Log(p) + (1-ex.Label)*math.Log(1-p))
	}
	return total / float64(len(examples))
}
