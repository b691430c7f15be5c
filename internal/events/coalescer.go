// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package events

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/metrics"
)

// Quiet periods for the two drain kinds. Training waits longer so an
// interactive recompute always lands first after a favoriting burst.
const (
	// DefaultRecomputeQuiet is the quiet period before a recompute drain.
	DefaultRecomputeQuiet = 500 * time.Millisecond

	// DefaultTrainingQuiet is the quiet period before a training drain.
	DefaultTrainingQuiet = 2000 * time.Millisecond
)

// Coalescer collapses bursts of change notifications into single drain
// runs. Notify arms a quiet-period timer; a notification during the
// window replaces the pending drain and restarts the window, so only
// the last trigger of a burst produces work. Notifications arriving
// while a drain is in flight are dropped outright: at most one drain
// runs at a time and nothing queues behind it.
type Coalescer struct {
	name   string
	quiet  time.Duration
	drain  func(ctx context.Context)
	logger zerolog.Logger

	// notify carries at most one pending trigger. A trigger that lands
	// in the buffer just before a drain starts counts as pre-drain and
	// re-arms the window afterward.
	notify   chan struct{}
	inFlight atomic.Bool
}

// NewCoalescer creates a coalescer that runs drain after quiet with no
// new notifications. A non-positive quiet selects the recompute default.
func NewCoalescer(name string, quiet time.Duration, drain func(ctx context.Context), logger zerolog.Logger) *Coalescer {
	if quiet <= 0 {
		quiet = DefaultRecomputeQuiet
	}
	return &Coalescer{
		name:   name,
		quiet:  quiet,
		drain:  drain,
		logger: logger.With().Str("component", "events").Str("coalescer", name).Logger(),
		notify: make(chan struct{}, 1),
	}
}

// Notify records a change trigger. Safe for concurrent use; never
// blocks.
func (c *Coalescer) Notify() {
	if c.inFlight.Load() {
		metrics.IgnoredInFlightTriggersTotal.Inc()
		c.logger.Debug().Msg("trigger ignored, drain in flight")
		return
	}
	select {
	case c.notify <- struct{}{}:
	default:
		// A trigger is already pending; this one folds into it.
		metrics.CoalescedTriggersTotal.Inc()
	}
}

// Run processes triggers until ctx is canceled. It always returns
// ctx.Err(); drains run synchronously inside the loop.
func (c *Coalescer) Run(ctx context.Context) error {
	timer := time.NewTimer(c.quiet)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	armed := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-c.notify:
			if armed {
				// The pending drain is replaced, not stacked.
				metrics.CoalescedTriggersTotal.Inc()
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(c.quiet)
			armed = true

		case <-timer.C:
			armed = false
			c.runDrain(ctx)
		}
	}
}

func (c *Coalescer) runDrain(ctx context.Context) {
	c.inFlight.Store(true)
	defer c.inFlight.Store(false)

	start := time.Now()
	c.logger.Debug().Msg("quiet period elapsed, draining")
	c.drain(ctx)
	c.logger.Debug().Dur("duration", time.Since(start)).Msg("drain complete")
}
