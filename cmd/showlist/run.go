// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package main

import (
	"context"
	"fmt"
)

// runOnce executes a single recommendation pass: load inputs, compute,
// emit, then train opportunistically. Training runs after the output is
// written so a slow training run never delays the result, and a
// training failure never fails the command.
func runOnce(ctx context.Context, comps *components, opts runOptions) error {
	catalog, err := loadCatalog(opts.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	favorites, err := loadFavorites(opts.FavoritesPath)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}

	recs := comps.Engine.ComputeRecommendations(ctx, catalog, favorites, opts.Limit, opts.Locale)

	if err := writeRecommendations(opts.OutputPath, recs); err != nil {
		return err
	}

	if trained, err := comps.Engine.TrainIfNeeded(ctx, favorites); err != nil {
		comps.Logger.Warn().Err(err).Msg("Training failed, keeping previous model")
	} else if trained {
		comps.Logger.Info().Int("favorites", len(favorites)).Msg("Learned scorer trained")
	}

	return nil
}
