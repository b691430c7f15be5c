// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

// Package supervisor builds the suture service tree that keeps the
// reactive recommendation pipeline running.
//
// The tree is intentionally small: a root supervisor with one compute
// layer holding the recompute and training services. Supervision gives
// the pipeline crash isolation - a panicking drain restarts that one
// service with backoff while the host keeps serving the cached list.
//
// Usage:
//
//	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
//	if err != nil {
//	    return err
//	}
//	tree.AddComputeService(recomputeService)
//	tree.AddComputeService(trainingService)
//	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    return err
//	}
//
// Suture events (service failures, restarts, backoff) are logged through
// a sutureslog hook; pass the slog logger from logging.NewSlogLogger so
// supervisor output lands in the same zerolog stream as everything else.
package supervisor
