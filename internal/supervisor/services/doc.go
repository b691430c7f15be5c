// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

/*
Package services provides suture.Service wrappers for the reactive half of
the recommendation engine.

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers subscribe to the change-notification bus, coalesce bursts of
notifications through a quiet-period timer, and invoke engine work only
after the burst settles.

# Available Services

Recompute Service (RecomputeService):
  - Subscribes to favorites.changed and catalog.changed
  - Coalesces notifications with a short quiet period (default 500 ms)
  - Invokes the recompute callback once per settled burst
  - At most one recompute runs at a time; triggers during a run are dropped

Training Service (TrainingService):
  - Subscribes to favorites.changed only
  - Coalesces with a longer quiet period (default 2 s) so interactive
    recomputation always runs first
  - Re-checks the growth gate at drain time and trains the learned scorer
  - Training failures are logged and never propagated

# Usage Example

	bus := events.NewBus(logger)
	tree, _ := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())

	recompute := services.NewRecomputeService(bus, 500*time.Millisecond, func(ctx context.Context) {
	    recs := engine.ComputeRecommendations(ctx, catalog, favorites, 0, locale)
	    publish(recs)
	}, logger)
	tree.AddComputeService(recompute)

	training := services.NewTrainingService(bus, engine, favoritesSource, 2*time.Second, logger)
	tree.AddComputeService(training)

	errCh := tree.ServeBackground(ctx)

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

Subscription failures are returned so the supervisor re-establishes the
service against the bus. Work failures (a failed training run, a recompute
whose inputs are unreadable) are logged inside the drain callback and never
returned, so a bad input file cannot wedge the service into a restart loop.

# Service Identification

All services implement fmt.Stringer for supervisor log messages:

	INFO recompute-service: starting
	INFO training-service: stopped

# See Also

  - internal/events: the bus and the quiet-period coalescer
  - internal/supervisor: the tree that manages these services
*/
package services
