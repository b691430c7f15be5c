// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package embedding

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/aasimsyed/showlist/internal/metrics"
)

// Provider is the embedding collaborator: given artist/venue pairs it
// returns description vectors. Implementations are external services;
// calls may be slow or fail.
type Provider interface {
	Embeddings(ctx context.Context, pairs []Pair, locale string) ([]PairEmbedding, error)
}

// FetcherConfig tunes batching and collaborator protection.
type FetcherConfig struct {
	// BatchSize caps the number of distinct pairs per collaborator
	// request.
	BatchSize int

	// RequestsPerSecond limits the collaborator call rate.
	RequestsPerSecond float64

	// Burst is the rate limiter burst size.
	Burst int

	// BreakerName labels the circuit breaker in logs and metrics.
	BreakerName string

	// BreakerConsecutiveFailures opens the breaker after this many
	// consecutive failed requests.
	BreakerConsecutiveFailures uint32

	// BreakerTimeout is how long the breaker stays open before probing
	// again.
	BreakerTimeout time.Duration
}

// DefaultFetcherConfig returns the default fetcher configuration.
func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		BatchSize:                  30,
		RequestsPerSecond:          4,
		Burst:                      2,
		BreakerName:                "embedding-provider",
		BreakerConsecutiveFailures: 3,
		BreakerTimeout:             time.Minute,
	}
}

// Fetcher pulls missing vectors from the Provider into the cache in
// bounded, rate-limited, circuit-broken batches. Any failure degrades
// the affected pairs to cache misses; a fetch problem never aborts a
// recommendation pass.
type Fetcher struct {
	provider Provider
	cache    *Cache
	config   FetcherConfig
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[[]PairEmbedding]
	logger   zerolog.Logger
}

// NewFetcher creates a fetcher over the given provider and cache. Zero
// config values fall back to defaults.
func NewFetcher(provider Provider, cache *Cache, config FetcherConfig, logger zerolog.Logger) *Fetcher {
	defaults := DefaultFetcherConfig()
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if config.Burst <= 0 {
		config.Burst = defaults.Burst
	}
	if config.BreakerName == "" {
		config.BreakerName = defaults.BreakerName
	}
	if config.BreakerConsecutiveFailures == 0 {
		config.BreakerConsecutiveFailures = defaults.BreakerConsecutiveFailures
	}
	if config.BreakerTimeout <= 0 {
		config.BreakerTimeout = defaults.BreakerTimeout
	}

	f := &Fetcher{
		provider: provider,
		cache:    cache,
		config:   config,
		limiter:  rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		logger:   logger,
	}

	metrics.CircuitBreakerState.WithLabelValues(config.BreakerName).Set(0) // 0 = closed

	f.cb = gobreaker.NewCircuitBreaker[[]PairEmbedding](gobreaker.Settings{
		Name:    config.BreakerName,
		Timeout: config.BreakerTimeout,

		// Batch cadence is a handful of requests per pass, so trip on a
		// short run of consecutive failures rather than a windowed rate.
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerConsecutiveFailures
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().
				Str("breaker", name).
				Str("from", breakerStateString(from)).
				Str("to", breakerStateString(to)).
				Msg("embedding breaker state transition")
			metrics.RecordBreakerTransition(name, breakerStateString(from), breakerStateString(to), breakerStateFloat(to))
		},
	})

	return f
}

// Prefetch ensures vectors for the given pairs are cached, requesting
// only pairs that are missing or expired, deduplicated and batched.
// Batches run sequentially and the call returns once all have been
// attempted. Returns how many vectors were stored and how many pairs
// could not be resolved.
func (f *Fetcher) Prefetch(ctx context.Context, pairs []Pair, locale string) (stored, failed int) {
	missing := f.missingPairs(pairs)
	if len(missing) == 0 {
		return 0, 0
	}

	for begin := 0; begin < len(missing); begin += f.config.BatchSize {
		end := begin + f.config.BatchSize
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[begin:end]

		if err := f.limiter.Wait(ctx); err != nil {
			errType := "rate_limit"
			if ctx.Err() != nil {
				errType = "canceled"
			}
			metrics.RecordEmbeddingFetch(len(batch), 0, errType)
			failed += len(missing) - begin
			f.logger.Warn().
				Err(err).
				Int("remaining", len(missing)-begin).
				Msg("embedding fetch aborted waiting for rate limiter")
			return stored, failed
		}

		start := time.Now()
		results, err := f.cb.Execute(func() ([]PairEmbedding, error) {
			return f.provider.Embeddings(ctx, batch, locale)
		})
		duration := time.Since(start)

		if err != nil {
			errType := classifyFetchError(err)
			metrics.RecordEmbeddingFetch(len(batch), duration, errType)
			failed += len(batch)
			f.logger.Warn().
				Err(err).
				Str("error_type", errType).
				Int("batch_size", len(batch)).
				Msg("embedding fetch batch failed, affected pairs degrade to no data")
			continue
		}

		metrics.RecordEmbeddingFetch(len(batch), duration, "")
		for _, pe := range results {
			if len(pe.Vector) == 0 {
				failed++
				continue
			}
			f.cache.Put(pe.Pair.Key(), pe.Vector)
			stored++
		}
	}

	return stored, failed
}

// missingPairs deduplicates the request and keeps only pairs without a
// live cache entry.
func (f *Fetcher) missingPairs(pairs []Pair) []Pair {
	seen := make(map[string]struct{}, len(pairs))
	missing := make([]Pair, 0, len(pairs))

	for _, p := range pairs {
		key := p.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if f.cache.Contains(key) {
			continue
		}
		missing = append(missing, p)
	}

	return missing
}

// classifyFetchError buckets a fetch failure for metrics.
func classifyFetchError(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "collaborator"
	}
}

func breakerStateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func breakerStateFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
