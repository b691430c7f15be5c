// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/logging"
	"github.com/aasimsyed/showlist/internal/metrics"
	"github.com/aasimsyed/showlist/internal/recommend/embedding"
)

// ListStore persists the most recently computed recommendation list.
// It is defined here rather than in the storage package so this package
// stays free of persistence dependencies; storage.Store satisfies it.
type ListStore interface {
	// Save replaces the persisted list with recs.
	Save(recs []Recommendation) error

	// Load returns the persisted list with past-dated entries dropped,
	// or nil when nothing usable is stored.
	Load() []Recommendation

	// Clear removes the persisted list.
	Clear() error
}

// Engine orchestrates a recommendation pass: it builds the affinity and
// genre profiles, prefetches embeddings, scores every candidate through
// the blended signal set, and ranks and persists the surviving entries.
// All collaborator failures degrade the affected signal to zero; a pass
// never fails outright.
type Engine struct {
	config *Config
	logger zerolog.Logger
	clock  Clock

	scorer Scorer
	genres GenreLookup
	store  ListStore

	fetcher *embedding.Fetcher
	vectors *embedding.Cache
	towers  *embedding.TwoTower

	trainMu          sync.Mutex
	lastTrainedCount int
}

// pass bundles the per-pass state shared by every candidate scored in a
// single ComputeRecommendations call.
type pass struct {
	profile         *AffinityProfile
	profileFeatures []float64
	genreProfile    GenreProfile
	userVector      []float64
	exclude         map[EventKey]struct{}
	logger          zerolog.Logger
}

// NewEngine creates a recommendation engine around the given scorer. The
// scorer variant (learned or heuristic) is chosen by the caller once, at
// construction; the engine never switches it mid-flight. A nil config
// selects the defaults.
func NewEngine(cfg *Config, scorer Scorer, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}

	return &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		clock:  NewRealClock(),
		scorer: scorer,
		towers: embedding.NewTwoTower(),
	}, nil
}

// SetClock overrides the engine clock. Tests use it to pin dates.
func (e *Engine) SetClock(clock Clock) {
	if clock != nil {
		e.clock = clock
	}
}

// SetGenreLookup attaches the genre collaborator. Without one the genre
// component scores zero for every candidate.
func (e *Engine) SetGenreLookup(lookup GenreLookup) {
	e.genres = lookup
}

// SetListStore attaches the persistence backend for computed lists.
// Without one lists are served from memory only.
func (e *Engine) SetListStore(store ListStore) {
	e.store = store
}

// SetEmbeddings attaches the embedding cache and its fetcher. Without a
// cache the two-tower component scores zero; without a fetcher the
// engine scores from whatever the cache already holds.
func (e *Engine) SetEmbeddings(cache *embedding.Cache, fetcher *embedding.Fetcher) {
	e.vectors = cache
	e.fetcher = fetcher
}

// GetConfig returns a copy of the engine configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// Dispose releases the scorer's resources.
func (e *Engine) Dispose() {
	e.scorer.Dispose()
}

// ComputeRecommendations runs a full pass over the catalog and returns
// the ranked, truncated recommendation list. It never returns an error:
// collaborator failures degrade their signal and an interrupted pass
// returns nil. A non-positive limit selects the configured default.
func (e *Engine) ComputeRecommendations(ctx context.Context, catalog Catalog, favorites []FavoriteItem, limit int, locale string) []Recommendation {
	start := time.Now()
	limit = e.clampLimit(limit)
	logger := e.passLogger()

	if len(catalog) == 0 {
		logger.Debug().Msg("empty catalog, nothing to recommend")
		metrics.RecordPass("empty_input", time.Since(start), 0)
		return nil
	}

	profile := BuildProfile(favorites, e.clock)
	if !profile.HasMinimumHistory() {
		logger.Debug().
			Int("interactions", profile.TotalInteractions).
			Int("required", MinInteractionsForRecommendations).
			Msg("below interaction minimum, suppressing recommendations")
		metrics.RecordPass("gated", time.Since(start), 0)
		return nil
	}

	p := &pass{
		profile:         &profile,
		profileFeatures: EncodeProfile(&profile),
		genreProfile:    BuildGenreProfile(ctx, favorites, e.genres, logger),
		exclude:         favoriteKeys(favorites),
		logger:          logger,
	}
	p.userVector = e.prefetchEmbeddings(ctx, favorites, catalog, p.exclude, locale, logger)

	recs, err := e.scoreCatalog(ctx, catalog, p)
	if err != nil {
		logger.Warn().Err(err).Msg("recommendation pass interrupted")
		metrics.RecordPass("canceled", time.Since(start), 0)
		return nil
	}

	sortRecommendations(recs)
	if len(recs) > limit {
		recs = recs[:limit]
	}

	e.persistList(recs, logger)

	logger.Info().
		Int("days", len(catalog)).
		Int("favorites", len(favorites)).
		Int("returned", len(recs)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("recommendation pass complete")
	metrics.RecordPass("completed", time.Since(start), len(recs))

	return recs
}

// CachedList returns the persisted list, already filtered of past-dated
// entries, or nil when no store is attached or nothing usable is stored.
func (e *Engine) CachedList() []Recommendation {
	if e.store == nil {
		return nil
	}
	return e.store.Load()
}

// ClearCachedList removes the persisted list.
func (e *Engine) ClearCachedList() error {
	if e.store == nil {
		return nil
	}
	return e.store.Clear()
}

// TrainIfNeeded runs a training pass when the favorites set is large
// enough and has grown enough since the last pass. It returns whether
// training ran; a skipped pass is not an error.
func (e *Engine) TrainIfNeeded(ctx context.Context, favorites []FavoriteItem) (bool, error) {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	if len(favorites) < e.config.Training.MinFavorites ||
		len(favorites)-e.lastTrainedCount < e.config.Training.MinNewFavorites {
		metrics.RecordTrainingSkipped()
		e.logger.Debug().
			Int("favorites", len(favorites)).
			Int("last_trained_on", e.lastTrainedCount).
			Msg("training skipped, growth threshold not met")
		return false, nil
	}

	return true, e.train(ctx, favorites)
}

// Train runs a training pass unconditionally, bypassing the growth gate.
func (e *Engine) Train(ctx context.Context, favorites []FavoriteItem) error {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()
	return e.train(ctx, favorites)
}

// TrainedOnCount returns the favorites-set size of the last successful
// training pass, zero when none has run.
func (e *Engine) TrainedOnCount() int {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()
	return e.lastTrainedCount
}

// train fits the scorer on the current favorites. Callers hold trainMu.
func (e *Engine) train(ctx context.Context, favorites []FavoriteItem) error {
	start := time.Now()
	examples := BuildTrainingExamples(favorites, e.clock)

	trainCtx, cancel := context.WithTimeout(ctx, e.config.Training.Timeout)
	defer cancel()

	err := e.scorer.Train(trainCtx, examples)
	metrics.RecordTrainingRun(time.Since(start), len(examples), err)
	if err != nil {
		e.logger.Warn().Err(err).Msg("training failed, scorer keeps its previous state")
		return fmt.Errorf("train scorer: %w", err)
	}

	e.lastTrainedCount = len(favorites)
	e.logger.Info().
		Str("scorer", e.scorer.Name()).
		Int("examples", len(examples)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("training complete")
	return nil
}

// scoreCatalog scores every non-favorited candidate and returns the
// entries that survive the keep rule. Cancellation is checked once per
// catalog day.
func (e *Engine) scoreCatalog(ctx context.Context, catalog Catalog, p *pass) ([]Recommendation, error) {
	recs := make([]Recommendation, 0, 64)
	for _, day := range catalog {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range day.Events {
			event := day.Events[i]
			if _, favorited := p.exclude[event.Key()]; favorited {
				continue
			}
			if rec, keep := e.scoreCandidate(ctx, p, event, day.Date); keep {
				recs = append(recs, rec)
			}
		}
	}
	return recs, nil
}

// scoreCandidate blends all four signals for one candidate and applies
// the keep rule: a candidate survives when its final score clears the
// threshold or its explanation carries at least one reason.
func (e *Engine) scoreCandidate(ctx context.Context, p *pass, event CandidateEvent, date string) (Recommendation, bool) {
	learned := e.scorer.Score(p.profileFeatures, EncodeCandidate(&event))
	genres := e.candidateGenres(ctx, event.Artist, p.logger)

	components := ComponentScores{
		RuleBased: RuleBasedScore(p.profile, event),
		Learned:   learned,
		Genre:     p.genreProfile.Match(genres),
		TwoTower:  e.twoTowerScore(p.userVector, event),
	}
	final := e.config.Weights.Blend(components)

	explanation := BuildExplanation(ExplanationInput{
		Profile:         p.profile,
		Candidate:       event,
		RawScore:        learned,
		CandidateGenres: genres,
		GenreProfile:    p.genreProfile,
		EventDate:       date,
	}, e.clock)

	metrics.CandidatesScored.Inc()

	if final <= e.config.KeepThreshold && len(explanation.Reasons) == 0 {
		return Recommendation{}, false
	}
	return Recommendation{
		Event:       event,
		EventDate:   date,
		Final:       final,
		Components:  components,
		Explanation: explanation,
	}, true
}

// candidateGenres resolves the candidate artist's genres. A lookup
// failure degrades the genre signal for this candidate to zero.
func (e *Engine) candidateGenres(ctx context.Context, artist string, logger zerolog.Logger) []string {
	if e.genres == nil {
		return nil
	}
	genres, err := e.genres.Genres(ctx, artist)
	metrics.RecordGenreLookup(err)
	if err != nil {
		logger.Debug().Err(err).Str("artist", artist).
			Msg("genre lookup failed, genre signal degrades to zero")
		return nil
	}
	return genres
}

// twoTowerScore computes the embedding-similarity score for a candidate,
// zero when the cache is absent or either vector is missing.
func (e *Engine) twoTowerScore(userVector []float64, event CandidateEvent) float64 {
	if e.vectors == nil || len(userVector) == 0 {
		return 0
	}
	itemVector, ok := e.vectors.Get(embedding.CacheKey(event.Artist, event.Venue))
	if !ok {
		return 0
	}
	return e.towers.Score(userVector, itemVector)
}

// prefetchEmbeddings warms the embedding cache for every pair the pass
// will touch, then folds the favorite-pair vectors into the user vector.
// It returns nil when no cache is attached or no favorite has a vector.
func (e *Engine) prefetchEmbeddings(ctx context.Context, favorites []FavoriteItem, catalog Catalog, exclude map[EventKey]struct{}, locale string, logger zerolog.Logger) []float64 {
	if e.vectors == nil {
		return nil
	}

	pairs := make([]embedding.Pair, 0, len(favorites)+len(catalog)*8)
	for _, fav := range favorites {
		pairs = append(pairs, embedding.Pair{Artist: fav.Artist, Venue: fav.Venue})
	}
	for _, day := range catalog {
		for _, event := range day.Events {
			if _, favorited := exclude[event.Key()]; favorited {
				continue
			}
			pairs = append(pairs, embedding.Pair{Artist: event.Artist, Venue: event.Venue})
		}
	}

	if e.fetcher != nil {
		stored, failed := e.fetcher.Prefetch(ctx, pairs, locale)
		if failed > 0 {
			logger.Debug().Int("stored", stored).Int("failed", failed).
				Msg("embedding prefetch partially degraded")
		}
	}

	vectors := make([][]float64, 0, len(favorites))
	for _, fav := range favorites {
		if vec, ok := e.vectors.Get(embedding.CacheKey(fav.Artist, fav.Venue)); ok {
			vectors = append(vectors, vec)
		}
	}
	return e.towers.UserVector(vectors)
}

// persistList saves the computed list best-effort: a store failure is
// logged and otherwise ignored, the in-memory result is still returned.
func (e *Engine) persistList(recs []Recommendation, logger zerolog.Logger) {
	if e.store == nil {
		return
	}
	if err := e.store.Save(recs); err != nil {
		logger.Warn().Err(err).Msg("failed to persist recommendation list")
	}
}

// clampLimit resolves the effective result limit: non-positive selects
// the default, anything above the maximum is capped.
func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		limit = e.config.Limits.DefaultLimit
	}
	if limit > e.config.Limits.MaxLimit {
		limit = e.config.Limits.MaxLimit
	}
	return limit
}

// passLogger returns a logger tagged with a fresh pass ID so every line
// of one pass is correlatable.
func (e *Engine) passLogger() zerolog.Logger {
	return e.logger.With().Str("pass_id", logging.GeneratePassID()).Logger()
}

// favoriteKeys builds the exclusion set of already-favorited events.
func favoriteKeys(favorites []FavoriteItem) map[EventKey]struct{} {
	keys := make(map[EventKey]struct{}, len(favorites))
	for _, fav := range favorites {
		keys[fav.Key()] = struct{}{}
	}
	return keys
}

// sortRecommendations orders entries by event date ascending, then by
// final score descending within a date. The sort is stable so equal
// entries keep catalog order. Unparseable dates take sort key zero and
// group at the front.
func sortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		ki, kj := dateSortKey(recs[i].EventDate), dateSortKey(recs[j].EventDate)
		if ki != kj {
			return ki < kj
		}
		return recs[i].Final > recs[j].Final
	})
}

// dateSortKey converts an event date to a comparable key, zero when the
// date does not parse.
func dateSortKey(date string) int64 {
	if t, ok := ParseEventDate(date); ok {
		return t.Unix()
	}
	return 0
}
