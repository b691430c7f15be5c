// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/events"
	"github.com/aasimsyed/showlist/internal/recommend"
)

// Trainer is the training surface of the recommendation engine. The
// growth gate lives behind TrainIfNeeded and is re-checked at drain
// time, not at notification time.
type Trainer interface {
	// TrainIfNeeded trains when the favorites set has grown enough.
	TrainIfNeeded(ctx context.Context, favorites []recommend.FavoriteItem) (bool, error)
}

// FavoritesSource supplies the current favorites set at drain time.
type FavoritesSource interface {
	// Favorites returns the host's current favorites.
	Favorites(ctx context.Context) ([]recommend.FavoriteItem, error)
}

// TrainingService listens on the favorites topic and runs scorer
// training after its quiet period. The period is longer than the
// recompute one so interactive recomputation always lands first after a
// favoriting burst. Training failures are logged, never escalated.
type TrainingService struct {
	bus       ChangeBus
	trainer   Trainer
	source    FavoritesSource
	coalescer *events.Coalescer
	logger    zerolog.Logger
	name      string
}

// NewTrainingService creates a training service. A non-positive quiet
// selects the 2000 ms default.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainingService(bus ChangeBus, trainer Trainer, source FavoritesSource, quiet time.Duration, logger zerolog.Logger) *TrainingService {
	if quiet <= 0 {
		quiet = events.DefaultTrainingQuiet
	}
	s := &TrainingService{
		bus:     bus,
		trainer: trainer,
		source:  source,
		logger:  logger.With().Str("service", "training").Logger(),
		name:    "training-service",
	}
	s.coalescer = events.NewCoalescer("training", quiet, s.drain, logger)
	return s
}

// Serve implements the suture.Service interface.
func (s *TrainingService) Serve(ctx context.Context) error {
	favorites, err := s.bus.Subscribe(ctx, events.TopicFavoritesChanged)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", events.TopicFavoritesChanged, err)
	}

	s.logger.Info().Msg("training service running")

	go s.forward(ctx, favorites)

	err = s.coalescer.Run(ctx)
	s.logger.Info().Msg("training service shutting down")
	return err
}

// drain loads the current favorites and hands them to the trainer,
// which applies the growth gate itself.
func (s *TrainingService) drain(ctx context.Context) {
	favorites, err := s.source.Favorites(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("favorites unavailable, skipping training drain")
		return
	}

	trained, err := s.trainer.TrainIfNeeded(ctx, favorites)
	if err != nil {
		s.logger.Warn().Err(err).Msg("training failed")
		return
	}
	if trained {
		s.logger.Info().Int("favorites", len(favorites)).Msg("training drain complete")
	}
}

func (s *TrainingService) forward(ctx context.Context, messages <-chan *message.Message) {
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
func (s *TrainingService) String() string {
	return s.name
}
