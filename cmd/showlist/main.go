// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

// Package main is the entry point for the showlist command-line tool.
//
// Showlist ranks the upcoming events in a local catalog against a
// listener's favorites history and emits personalized recommendations
// as JSON. Scoring blends affinity rules, a learned model, genre
// overlap, and embedding similarity; every recommendation carries its
// component scores and a human-readable explanation.
//
// # Operating Modes
//
// One-shot (default): read the catalog and favorites files, compute the
// ranked list, write it to stdout (or -output), persist it to the local
// store, and exit. The learned scorer trains opportunistically after
// the output is written when enough new favorites have accumulated.
//
// Watch (-watch): keep running, poll the input files, and recompute
// whenever they change. Bursts of changes are debounced through a
// quiet-period coalescer, model training is deferred behind a longer
// quiet period, and everything runs under a suture supervision tree.
// SIGINT and SIGTERM trigger graceful shutdown.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - SHOWLIST_-prefixed environment variables
//   - Config file (showlist.yaml, or SHOWLIST_CONFIG_PATH)
//   - Built-in defaults
//
// See the internal/config package for every setting.
//
// # Input Files
//
// The catalog is a JSON array of days, each with a date and its events:
//
//	[
//	  {"date": "2026-09-12", "events": [
//	    {"artist": "Mitski", "venue": "Fox Theater", "time": "8:00 pm",
//	     "has_ticket_link": true}
//	  ]}
//	]
//
// Favorites are a JSON array of saved events:
//
//	[
//	  {"artist": "Mitski", "venue": "Fox Theater", "time": "8:00 pm",
//	   "date": "2026-06-01"}
//	]
//
// Two optional lookup tables stand in for the genre and embedding
// collaborators. -genres maps artist names to genre lists:
//
//	{"Mitski": ["indie rock", "art pop"]}
//
// -embeddings maps "artist|venue" pairs to description vectors:
//
//	{"Mitski|Fox Theater": [0.12, -0.4, 0.9]}
//
// Absent or malformed tables disable the matching score component; the
// pass itself always completes.
//
// # Example Usage
//
// One-shot with all collaborators:
//
//	showlist -catalog catalog.json -favorites favorites.json \
//	  -genres genres.json -embeddings embeddings.json -limit 10
//
// Watch mode writing refreshed output to a file:
//
//	showlist -watch -output recommendations.json
//
// Ephemeral run without touching disk:
//
//	export SHOWLIST_STORAGE_IN_MEMORY=true
//	showlist -catalog catalog.json -favorites favorites.json
package main

import (
	"context"
	"flag"
	"time"

	"github.com/aasimsyed/showlist/internal/config"
	"github.com/aasimsyed/showlist/internal/logging"
)

// runOptions carries the command-line flags through the run paths.
type runOptions struct {
	CatalogPath    string
	FavoritesPath  string
	GenresPath     string
	EmbeddingsPath string
	OutputPath     string
	Limit          int
	Locale         string
	PollInterval   time.Duration
}

func main() {
	var (
		catalogPath    = flag.String("catalog", "catalog.json", "path to the event catalog JSON file")
		favoritesPath  = flag.String("favorites", "favorites.json", "path to the favorites JSON file")
		genresPath     = flag.String("genres", "", "optional artist-to-genres JSON lookup table")
		embeddingsPath = flag.String("embeddings", "", "optional pair-embedding JSON lookup table")
		outputPath     = flag.String("output", "", "write recommendations to this file instead of stdout")
		limit          = flag.Int("limit", 0, "maximum recommendations to return (0 = configured default)")
		locale         = flag.String("locale", "en", "locale hint forwarded to collaborators")
		watch          = flag.Bool("watch", false, "keep running and recompute when input files change")
		pollInterval   = flag.Duration("poll", 2*time.Second, "input file poll interval in watch mode")
	)
	flag.Parse()

	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logger := logging.Logger()

	opts := runOptions{
		CatalogPath:    *catalogPath,
		FavoritesPath:  *favoritesPath,
		GenresPath:     *genresPath,
		EmbeddingsPath: *embeddingsPath,
		OutputPath:     *outputPath,
		Limit:          *limit,
		Locale:         *locale,
		PollInterval:   *pollInterval,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	comps, err := initComponents(ctx, cfg, opts, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize engine")
	}
	defer comps.Close()

	if *watch {
		if err := runWatch(ctx, cfg, comps, opts); err != nil {
			comps.Close()
			logging.Fatal().Err(err).Msg("Watch mode failed")
		}
		logging.Info().Msg("Application stopped gracefully")
		return
	}

	if err := runOnce(ctx, comps, opts); err != nil {
		comps.Close()
		logging.Fatal().Err(err).Msg("Recommendation pass failed")
	}
}
