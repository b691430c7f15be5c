// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/recommend"
	"github.com/aasimsyed/showlist/internal/recommend/embedding"
)

// loadCatalog reads a catalog file: a JSON array of days with events.
func loadCatalog(path string) (recommend.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var catalog recommend.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return catalog, nil
}

// loadFavorites reads a favorites file: a JSON array of saved events.
func loadFavorites(path string) ([]recommend.FavoriteItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read favorites: %w", err)
	}

	var favorites []recommend.FavoriteItem
	if err := json.Unmarshal(data, &favorites); err != nil {
		return nil, fmt.Errorf("parse favorites %s: %w", path, err)
	}
	return favorites, nil
}

// writeRecommendations emits the ranked list as indented JSON, to
// stdout when path is empty or atomically to the file otherwise. An
// empty list is written as [] rather than null so downstream consumers
// always see an array.
func writeRecommendations(path string, recs []recommend.Recommendation) error {
	if recs == nil {
		recs = []recommend.Recommendation{}
	}

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil { //nolint:gosec // output file is world-readable by design
		return fmt.Errorf("write recommendations: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace recommendations file: %w", err)
	}
	return nil
}

// fileFavoritesSource re-reads the favorites file on demand so the
// training service always trains on the current history.
type fileFavoritesSource struct {
	path string
}

func (s *fileFavoritesSource) Favorites(_ context.Context) ([]recommend.FavoriteItem, error) {
	return loadFavorites(s.path)
}

// fileGenreLookup serves genre lookups from a JSON table of artist ->
// genres. It stands in for the real genre collaborator, which is a
// remote service in the host application.
type fileGenreLookup struct {
	genres map[string][]string
}

// newFileGenreLookup loads the lookup table. A missing or malformed
// table returns nil: the genre component degrades to zero rather than
// failing the run.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func newFileGenreLookup(path string, logger zerolog.Logger) *fileGenreLookup {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Genre table unavailable, genre scoring disabled")
		return nil
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Genre table malformed, genre scoring disabled")
		return nil
	}

	table := make(map[string][]string, len(raw))
	for artist, genres := range raw {
		table[normalizeKey(artist)] = genres
	}

	logger.Info().Int("artists", len(table)).Str("path", path).Msg("Genre table loaded")
	return &fileGenreLookup{genres: table}
}

func (l *fileGenreLookup) Genres(_ context.Context, artist string) ([]string, error) {
	return l.genres[normalizeKey(artist)], nil
}

// fileEmbeddingProvider serves pair embeddings from a JSON table of
// "artist|venue" -> vector. Pairs absent from the table are omitted
// from the result, which the fetcher records as failed lookups.
type fileEmbeddingProvider struct {
	vectors map[string][]float64
}

// newFileEmbeddingProvider loads the vector table. A missing or
// malformed table returns nil and the two-tower component scores zero.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func newFileEmbeddingProvider(path string, logger zerolog.Logger) *fileEmbeddingProvider {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Embedding table unavailable, two-tower scoring disabled")
		return nil
	}

	var raw map[string][]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("Embedding table malformed, two-tower scoring disabled")
		return nil
	}

	table := make(map[string][]float64, len(raw))
	for key, vector := range raw {
		table[normalizeKey(key)] = vector
	}

	logger.Info().Int("pairs", len(table)).Str("path", path).Msg("Embedding table loaded")
	return &fileEmbeddingProvider{vectors: table}
}

func (p *fileEmbeddingProvider) Embeddings(_ context.Context, pairs []embedding.Pair, _ string) ([]embedding.PairEmbedding, error) {
	results := make([]embedding.PairEmbedding, 0, len(pairs))
	for _, pair := range pairs {
		vector, ok := p.vectors[normalizeKey(pair.Key())]
		if !ok {
			continue
		}
		results = append(results, embedding.PairEmbedding{Pair: pair, Vector: vector})
	}
	return results, nil
}

// normalizeKey makes table lookups forgiving about case and padding in
// hand-authored files.
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
