// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package storage

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/metrics"
	"github.com/aasimsyed/showlist/internal/recommend"
)

// recommendationsKey is where the current recommendation list lives in
// the backend.
const recommendationsKey = "recommendations:current"

// storedList is the persisted JSON payload for a recommendation list.
type storedList struct {
	SavedAt         time.Time                  `json:"saved_at"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// Store persists the computed recommendation list so hosts can show the
// previous results before the first recompute of a session finishes.
type Store struct {
	backend Backend
	clock   recommend.Clock
	logger  zerolog.Logger
}

var _ recommend.ListStore = (*Store)(nil)

// NewStore creates a recommendation store over the given backend. A nil
// clock defaults to wall time.
func NewStore(backend Backend, clock recommend.Clock, logger zerolog.Logger) *Store {
	if clock == nil {
		clock = recommend.NewRealClock()
	}
	return &Store{
		backend: backend,
		clock:   clock,
		logger:  logger,
	}
}

// Save persists the list as-is, component scores and explanations
// included, stamped with the save time.
func (s *Store) Save(recs []recommend.Recommendation) error {
	payload := storedList{
		SavedAt:         s.clock.Now(),
		Recommendations: recs,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordStoreOperation("save", err)
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	err = s.backend.Put(recommendationsKey, data)
	metrics.RecordStoreOperation("save", err)
	if err != nil {
		return fmt.Errorf("persist recommendations: %w", err)
	}

	s.logger.Debug().
		Int("count", len(recs)).
		Msg("recommendation list saved")
	return nil
}

// Load returns the persisted list with past events dropped: entries
// whose event date parses strictly before today (date-only) are
// filtered out, while unparseable dates are kept. Any storage or
// decoding failure is logged and read as "no cached data" so callers
// never have to distinguish a broken store from an empty one.
func (s *Store) Load() []recommend.Recommendation {
	data, ok, err := s.backend.Get(recommendationsKey)
	metrics.RecordStoreOperation("load", err)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load recommendation list, treating as empty")
		return nil
	}
	if !ok {
		return nil
	}

	var payload storedList
	if err := json.Unmarshal(data, &payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to decode recommendation list, treating as empty")
		return nil
	}

	kept := payload.Recommendations[:0]
	dropped := 0
	for _, rec := range payload.Recommendations {
		if days, parsed := recommend.DaysUntil(rec.EventDate, s.clock); parsed && days < 0 {
			dropped++
			continue
		}
		kept = append(kept, rec)
	}

	if dropped > 0 {
		metrics.StoreDroppedPastEvents.Add(float64(dropped))
		s.logger.Debug().
			Int("dropped", dropped).
			Int("kept", len(kept)).
			Time("saved_at", payload.SavedAt).
			Msg("dropped past events from loaded recommendations")
	}

	return kept
}

// Clear removes the persisted list.
func (s *Store) Clear() error {
	err := s.backend.Delete(recommendationsKey)
	metrics.RecordStoreOperation("clear", err)
	if err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}
	return nil
}
