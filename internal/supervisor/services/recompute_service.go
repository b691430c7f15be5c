// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

// Package services provides Suture service wrappers around the
// recommendation engine's reactive pieces.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/events"
)

// ChangeBus is the subscription surface of the change-notification bus.
// Defined here so services work against the bus without importing its
// concrete construction.
type ChangeBus interface {
	// Subscribe returns a channel of messages for a topic.
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// RecomputeService listens on both change topics and runs the compute
// callback after the quiet period, so a burst of favoriting or a catalog
// refresh produces one recompute instead of many.
type RecomputeService struct {
	bus       ChangeBus
	coalescer *events.Coalescer
	logger    zerolog.Logger
	name      string
}

// NewRecomputeService creates a recompute service. A non-positive quiet
// selects the 500 ms default; compute runs once per drained burst.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecomputeService(bus ChangeBus, quiet time.Duration, compute func(ctx context.Context), logger zerolog.Logger) *RecomputeService {
	if quiet <= 0 {
		quiet = events.DefaultRecomputeQuiet
	}
	return &RecomputeService{
		bus:       bus,
		coalescer: events.NewCoalescer("recompute", quiet, compute, logger),
		logger:    logger.With().Str("service", "recompute").Logger(),
		name:      "recompute-service",
	}
}

// Serve implements the suture.Service interface. It subscribes to both
// change topics and runs the coalescer loop until ctx is canceled.
func (s *RecomputeService) Serve(ctx context.Context) error {
	favorites, err := s.bus.Subscribe(ctx, events.TopicFavoritesChanged)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", events.TopicFavoritesChanged, err)
	}
	catalog, err := s.bus.Subscribe(ctx, events.TopicCatalogChanged)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", events.TopicCatalogChanged, err)
	}

	s.logger.Info().Msg("recompute service running")

	go s.forward(ctx, favorites)
	go s.forward(ctx, catalog)

	err = s.coalescer.Run(ctx)
	s.logger.Info().Msg("recompute service shutting down")
	return err
}

// forward turns every received change message into a coalescer trigger.
func (s *RecomputeService) forward(ctx context.Context, messages <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			msg.Ack()
			s.coalescer.Notify()
		}
	}
}

// String returns the service name for logging.
func (s *RecomputeService) String() string {
	return s.name
}
