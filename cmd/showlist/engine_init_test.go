// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/config"
	"github.com/aasimsyed/showlist/internal/recommend"
)

// testConfig builds a fully populated app config on the in-memory
// backend so tests never touch ambient files or env.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Engine: config.EngineConfig{
			Weights:       config.WeightsConfig{TwoTower: 0.35, RuleBased: 0.5, Genre: 0.2, Learned: 0.10},
			KeepThreshold: 20,
			Limits:        config.LimitsConfig{DefaultLimit: 20, MaxLimit: 100},
			Training:      config.TrainingConfig{MinFavorites: 10, MinNewFavorites: 3, Timeout: time.Minute},
		},
		Embedding: config.EmbeddingConfig{
			CacheCapacity:     300,
			CacheTTL:          7 * 24 * time.Hour,
			FetchBatchSize:    30,
			RequestsPerSecond: 4,
			FetchBurst:        2,
			BreakerFailures:   3,
			BreakerTimeout:    time.Minute,
		},
		Storage: config.StorageConfig{InMemory: true, KeepModelVersions: 3},
		Events:  config.EventsConfig{RecomputeQuiet: 500 * time.Millisecond, TrainingQuiet: 2 * time.Second},
		Supervisor: config.SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestBuildEngineConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Engine.KeepThreshold = 33
	cfg.Engine.Weights.Genre = 0.4
	cfg.Engine.Limits.MaxLimit = 42
	cfg.Engine.Training.MinFavorites = 6

	engineCfg := buildEngineConfig(cfg)

	if engineCfg.KeepThreshold != 33 {
		t.Errorf("KeepThreshold = %v, want 33", engineCfg.KeepThreshold)
	}
	if engineCfg.Weights.Genre != 0.4 {
		t.Errorf("Weights.Genre = %v, want 0.4", engineCfg.Weights.Genre)
	}
	if engineCfg.Weights.TwoTower != 0.35 {
		t.Errorf("Weights.TwoTower = %v, want 0.35", engineCfg.Weights.TwoTower)
	}
	if engineCfg.Limits.MaxLimit != 42 {
		t.Errorf("Limits.MaxLimit = %d, want 42", engineCfg.Limits.MaxLimit)
	}
	if engineCfg.Training.MinFavorites != 6 {
		t.Errorf("Training.MinFavorites = %d, want 6", engineCfg.Training.MinFavorites)
	}
	if err := engineCfg.Validate(); err != nil {
		t.Errorf("mapped engine config failed validation: %v", err)
	}
}

func TestBuildFetcherConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Embedding.FetchBatchSize = 12
	cfg.Embedding.BreakerFailures = 5

	fc := buildFetcherConfig(cfg)

	if fc.BatchSize != 12 {
		t.Errorf("BatchSize = %d, want 12", fc.BatchSize)
	}
	if fc.BreakerConsecutiveFailures != 5 {
		t.Errorf("BreakerConsecutiveFailures = %d, want 5", fc.BreakerConsecutiveFailures)
	}
	if fc.RequestsPerSecond != 4 {
		t.Errorf("RequestsPerSecond = %v, want 4", fc.RequestsPerSecond)
	}
	if fc.BreakerName == "" {
		t.Error("BreakerName should not be empty")
	}
}

func TestBuildTreeConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Supervisor.ShutdownTimeout = 3 * time.Second

	tc := buildTreeConfig(cfg)

	if tc.FailureThreshold != 5 {
		t.Errorf("FailureThreshold = %v, want 5", tc.FailureThreshold)
	}
	if tc.ShutdownTimeout != 3*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 3s", tc.ShutdownTimeout)
	}
}

func TestBuildScoringConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Storage.KeepModelVersions = 7

	sc := buildScoringConfig(cfg)

	if !sc.UseLearned {
		t.Error("UseLearned should default to true")
	}
	if sc.Learned.KeepVersions != 7 {
		t.Errorf("Learned.KeepVersions = %d, want 7", sc.Learned.KeepVersions)
	}
}

func TestRunOnceEndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "catalog.json")
	catalogContent := `[
		{"date": "2027-03-14", "events": [
			{"artist": "Mitski", "venue": "The Independent", "time": "8:00 pm", "has_ticket_link": true},
			{"artist": "Totally Unknown Act", "venue": "Nowhere Bar", "time": "9:00 pm"}
		]}
	]`
	if err := os.WriteFile(catalogPath, []byte(catalogContent), 0o600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	favoritesPath := filepath.Join(dir, "favorites.json")
	favoritesContent := `[
		{"artist": "Mitski", "venue": "Fox Theater", "time": "8:00 pm"},
		{"artist": "Mitski", "venue": "The Catalyst", "time": "9:00 pm"},
		{"artist": "Alvvays", "venue": "The Catalyst", "time": "7:30 pm"}
	]`
	if err := os.WriteFile(favoritesPath, []byte(favoritesContent), 0o600); err != nil {
		t.Fatalf("failed to write favorites: %v", err)
	}

	genresPath := filepath.Join(dir, "genres.json")
	genresContent := `{"Mitski": ["indie rock"], "Alvvays": ["indie rock", "dream pop"]}`
	if err := os.WriteFile(genresPath, []byte(genresContent), 0o600); err != nil {
		t.Fatalf("failed to write genres: %v", err)
	}

	outputPath := filepath.Join(dir, "out.json")
	opts := runOptions{
		CatalogPath:   catalogPath,
		FavoritesPath: favoritesPath,
		GenresPath:    genresPath,
		OutputPath:    outputPath,
		Locale:        "en",
	}

	ctx := context.Background()
	comps, err := initComponents(ctx, testConfig(t), opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("initComponents() error = %v", err)
	}
	defer comps.Close()

	if err := runOnce(ctx, comps, opts); err != nil {
		t.Fatalf("runOnce() error = %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	var recs []recommend.Recommendation
	if err := json.Unmarshal(data, &recs); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(recs) == 0 {
		t.Fatal("runOnce() produced no recommendations for a favorited artist")
	}
	if recs[0].Event.Artist != "Mitski" {
		t.Errorf("top recommendation artist = %q, want Mitski", recs[0].Event.Artist)
	}
	if len(recs[0].Explanation.Reasons) == 0 {
		t.Error("top recommendation has no explanation reasons")
	}
	for _, rec := range recs {
		if rec.Event.Artist == "Totally Unknown Act" {
			t.Error("unknown act with no signal should have been dropped")
		}
	}

	// The pass persisted the list to the store.
	stored := comps.Store.Load()
	if len(stored) != len(recs) {
		t.Errorf("store has %d recommendations, output has %d", len(stored), len(recs))
	}
	if cached := comps.Engine.CachedList(); len(cached) != len(recs) {
		t.Errorf("CachedList() returned %d recommendations, want %d", len(cached), len(recs))
	}
}

func TestRunOnceMissingCatalog(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	favoritesPath := filepath.Join(dir, "favorites.json")
	if err := os.WriteFile(favoritesPath, []byte("[]"), 0o600); err != nil {
		t.Fatalf("failed to write favorites: %v", err)
	}

	opts := runOptions{
		CatalogPath:   filepath.Join(dir, "missing.json"),
		FavoritesPath: favoritesPath,
		Locale:        "en",
	}

	ctx := context.Background()
	comps, err := initComponents(ctx, testConfig(t), opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("initComponents() error = %v", err)
	}
	defer comps.Close()

	if err := runOnce(ctx, comps, opts); err == nil {
		t.Error("runOnce() succeeded without a catalog file")
	}
}

func TestInitComponentsDiskMode(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Storage.InMemory = false
	cfg.Storage.DataDir = t.TempDir()

	ctx := context.Background()
	comps, err := initComponents(ctx, cfg, runOptions{Locale: "en"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("initComponents() error = %v", err)
	}
	defer comps.Close()

	if _, err := os.Stat(cfg.Storage.RecommendationsDir()); err != nil {
		t.Errorf("recommendations dir missing: %v", err)
	}
	if _, err := os.Stat(cfg.Storage.ModelsDir()); err != nil {
		t.Errorf("models dir missing: %v", err)
	}

	catalog := recommend.Catalog{
		{Date: "2027-03-14", Events: []recommend.CandidateEvent{
			{Artist: "Mitski", Venue: "The Independent", Time: "8:00 pm"},
		}},
	}
	favorites := []recommend.FavoriteItem{
		{Artist: "Mitski", Venue: "Fox Theater", Time: "8:00 pm"},
		{Artist: "Mitski", Venue: "The Catalyst", Time: "9:00 pm"},
		{Artist: "Alvvays", Venue: "The Catalyst", Time: "7:30 pm"},
	}

	recs := comps.Engine.ComputeRecommendations(ctx, catalog, favorites, 0, "en")
	if len(recs) == 0 {
		t.Error("ComputeRecommendations() returned nothing in disk mode")
	}

	// Close twice to confirm idempotence; main closes explicitly before
	// fatal exits and again via defer.
	comps.Close()
	comps.Close()
}
