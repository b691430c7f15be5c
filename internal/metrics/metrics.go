// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the recommendation pipeline:
// - Orchestration pass latency and outcomes
// - Embedding cache efficiency and fetch behavior
// - Genre lookups
// - Model training runs
// - Store persistence
// - Change-notification coalescing
//
// Collectors register on the default registry; exposition is the host
// application's concern.

var (
	// Recommendation Pass Metrics
	PassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "showlist_pass_duration_seconds",
			Help:    "Duration of recommendation passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"}, // "completed", "gated", "empty_input"
	)

	PassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showlist_passes_total",
			Help: "Total number of recommendation passes",
		},
		[]string{"outcome"},
	)

	CandidatesScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showlist_candidates_scored_total",
			Help: "Total number of candidate events scored",
		},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "showlist_recommendations_returned",
			Help:    "Number of recommendations returned per pass",
			Buckets: []float64{0, 1, 5, 10, 20, 40, 80, 160},
		},
	)

	// Embedding Cache Metrics
	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showlist_embedding_cache_hits_total",
			Help: "Total number of embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showlist_embedding_cache_misses_total",
			Help: "Total number of embedding cache misses (includes expired reads)",
		},
	)

	EmbeddingCacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showlist_embedding_cache_evictions_total",
			Help: "Total number of capacity evictions from the embedding cache",
		},
	)

	EmbeddingCacheExpirations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showlist_embedding_cache_expirations_total",
			Help: "Total number of entries purged after TTL expiry",
		},
	)

	EmbeddingCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "showlist_embedding_cache_entries",
			Help: "Current number of cached embedding vectors",
		},
	)

	// Embedding Fetch Metrics
	EmbeddingFetchBatches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showlist_embedding_fetch_batches_total",
			Help: "Total number of embedding fetch batches issued",
		},
	)

	EmbeddingFetchBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "showlist_embedding_fetch_batch_size",
			Help:    "Number of (artist, venue) pairs per fetch batch",
			Buckets: []float64{1, 5, 10, 15, 20, 25, 30},
		},
	)

	EmbeddingFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "showlist_embedding_fetch_duration_seconds",
			Help:    "Duration of embedding collaborator calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	EmbeddingFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showlist_embedding_fetch_errors_total",
			Help: "Total number of failed embedding fetch batches",
		},
		[]string{"error_type"}, // "collaborator", "breaker_open", "rate_limit", "canceled"
	)

	// Genre Lookup Metrics
	GenreLookupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showlist_genre_lookups_total",
			Help: "Total number of genre collaborator lookups",
		},
	)

	GenreLookupErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showlist_genre_lookup_errors_total",
			Help: "Total number of failed genre lookups (degraded to no-data)",
		},
	)

	// Training Metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showlist_training_runs_total",
			Help: "Total number of model training runs",
		},
		[]string{"outcome"}, // "success", "failure", "skipped"
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "showlist_training_duration_seconds",
			Help:    "Duration of model training runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	TrainingExamples = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "showlist_training_examples",
			Help:    "Number of examples per training run",
			Buckets: []float64{10, 20, 50, 100, 250, 500, 1000},
		},
	)

	TrainingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "showlist_training_last_success_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	// Store Metrics
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showlist_store_operations_total",
			Help: "Total number of recommendation store operations",
		},
		[]string{"operation", "result"}, // operation: "save", "load", "clear"; result: "success", "failure"
	)

	StoreDroppedPastEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showlist_store_dropped_past_events_total",
			Help: "Total number of persisted recommendations dropped on load as past-dated",
		},
	)

	// Change Notification Metrics
	ChangeNotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showlist_change_notifications_total",
			Help: "Total number of change notifications received",
		},
		[]string{"topic"}, // "favorites.changed", "catalog.changed"
	)

	CoalescedTriggersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showlist_coalesced_triggers_total",
			Help: "Total number of triggers absorbed into a pending quiet-period window",
		},
	)

	IgnoredInFlightTriggersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "showlist_ignored_inflight_triggers_total",
			Help: "Total number of triggers ignored because a computation was in flight",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "showlist_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "showlist_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordPass records one recommendation pass.
func RecordPass(outcome string, duration time.Duration, returned int) {
	PassDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	PassesTotal.WithLabelValues(outcome).Inc()
	if outcome == "completed" {
		RecommendationsReturned.Observe(float64(returned))
	}
}

// RecordEmbeddingFetch records one embedding collaborator batch call.
func RecordEmbeddingFetch(batchSize int, duration time.Duration, errType string) {
	EmbeddingFetchBatches.Inc()
	EmbeddingFetchBatchSize.Observe(float64(batchSize))
	EmbeddingFetchDuration.Observe(duration.Seconds())
	if errType != "" {
		EmbeddingFetchErrors.WithLabelValues(errType).Inc()
	}
}

// RecordGenreLookup records one genre collaborator lookup.
func RecordGenreLookup(err error) {
	GenreLookupsTotal.Inc()
	if err != nil {
		GenreLookupErrors.Inc()
	}
}

// RecordTrainingRun records a training run and its outcome.
func RecordTrainingRun(duration time.Duration, examples int, err error) {
	TrainingDuration.Observe(duration.Seconds())
	TrainingExamples.Observe(float64(examples))
	if err != nil {
		TrainingRunsTotal.WithLabelValues("failure").Inc()
		return
	}
	TrainingRunsTotal.WithLabelValues("success").Inc()
	TrainingLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordTrainingSkipped records a training trigger that did not meet the
// growth threshold.
func RecordTrainingSkipped() {
	TrainingRunsTotal.WithLabelValues("skipped").Inc()
}

// RecordStoreOperation records a store save/load/clear and its result.
func RecordStoreOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	StoreOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordBreakerTransition records a circuit breaker state change and
// updates the state gauge.
func RecordBreakerTransition(name, from, to string, stateValue float64) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(stateValue)
}
