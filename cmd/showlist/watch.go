// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/config"
	"github.com/aasimsyed/showlist/internal/events"
	"github.com/aasimsyed/showlist/internal/logging"
	"github.com/aasimsyed/showlist/internal/supervisor"
	"github.com/aasimsyed/showlist/internal/supervisor/services"
)

// runWatch keeps the process alive and recomputes whenever the input
// files change. The file watcher publishes change notifications on the
// bus; the recompute and training services debounce them behind their
// quiet periods. All three run under the supervision tree.
func runWatch(ctx context.Context, cfg *config.Config, comps *components, opts runOptions) error {
	logger := comps.Logger

	bus := events.NewBus(logger)
	defer func() {
		if err := bus.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	compute := func(ctx context.Context) {
		catalog, err := loadCatalog(opts.CatalogPath)
		if err != nil {
			logger.Warn().Err(err).Msg("Catalog unavailable, skipping recompute")
			return
		}
		favorites, err := loadFavorites(opts.FavoritesPath)
		if err != nil {
			logger.Warn().Err(err).Msg("Favorites unavailable, computing with empty history")
			favorites = nil
		}

		recs := comps.Engine.ComputeRecommendations(ctx, catalog, favorites, opts.Limit, opts.Locale)

		if err := writeRecommendations(opts.OutputPath, recs); err != nil {
			logger.Error().Err(err).Msg("Failed to write recommendations")
		}
	}

	recompute := services.NewRecomputeService(bus, cfg.Events.RecomputeQuiet, compute, logger)
	training := services.NewTrainingService(bus, comps.Engine,
		&fileFavoritesSource{path: opts.FavoritesPath}, cfg.Events.TrainingQuiet, logger)
	watcher := newWatchService(bus, opts.PollInterval, opts.CatalogPath, opts.FavoritesPath, logger)

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, buildTreeConfig(cfg))
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddComputeService(recompute)
	tree.AddComputeService(training)
	tree.AddComputeService(watcher)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logger.Info().
		Str("catalog", opts.CatalogPath).
		Str("favorites", opts.FavoritesPath).
		Dur("poll", opts.PollInterval).
		Msg("Starting watch mode")

	// Initial pass before the services attach; every later pass flows
	// through the coalesced notification path.
	compute(watchCtx)

	errCh := tree.ServeBackground(watchCtx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-watchCtx.Done():
		logger.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logger.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	return nil
}

// fileState is the snapshot a poll compares against.
type fileState struct {
	exists  bool
	modTime time.Time
	size    int64
}

// watchTarget pairs an input file with the notification it publishes.
type watchTarget struct {
	path    string
	publish func(reason string) error
	known   fileState
}

// watchService polls the input files and publishes a change
// notification whenever one is created, modified, or removed. mtime
// polling keeps the watcher portable; the quiet-period coalescer
// downstream absorbs any duplicate triggers.
type watchService struct {
	targets []*watchTarget
	poll    time.Duration
	logger  zerolog.Logger
	name    string
}

// newWatchService creates a watcher over the catalog and favorites
// files.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func newWatchService(bus *events.Bus, poll time.Duration, catalogPath, favoritesPath string, logger zerolog.Logger) *watchService {
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &watchService{
		targets: []*watchTarget{
			{path: catalogPath, publish: bus.PublishCatalogChanged},
			{path: favoritesPath, publish: bus.PublishFavoritesChanged},
		},
		poll:   poll,
		logger: logger.With().Str("component", "file-watcher").Logger(),
		name:   "file-watcher",
	}
}

// Serve implements suture.Service. It baselines the current file states
// without publishing, so startup never reads as a change, then polls
// until the context is canceled.
func (w *watchService) Serve(ctx context.Context) error {
	for _, target := range w.targets {
		target.known = statFile(target.path)
	}

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	w.logger.Debug().Dur("poll", w.poll).Msg("file watcher started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug().Msg("file watcher stopping")
			return ctx.Err()
		case <-ticker.C:
			w.scan()
		}
	}
}

// scan compares each target against its last known state and publishes
// on change.
func (w *watchService) scan() {
	for _, target := range w.targets {
		current := statFile(target.path)
		if current == target.known {
			continue
		}

		reason := changeReason(target.known, current)
		target.known = current

		if err := target.publish(reason); err != nil {
			w.logger.Warn().Err(err).Str("path", target.path).Msg("failed to publish change notification")
			continue
		}
		w.logger.Debug().Str("path", target.path).Str("reason", reason).Msg("input file changed")
	}
}

// String implements suture's service naming.
func (w *watchService) String() string {
	return w.name
}

func changeReason(prev, current fileState) string {
	switch {
	case !current.exists:
		return "removed"
	case !prev.exists:
		return "created"
	default:
		return "modified"
	}
}

func statFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{exists: true, modTime: info.ModTime(), size: info.Size()}
}
