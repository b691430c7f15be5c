// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package recommend

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/metrics"
)

// MaxGenreProfileArtists caps how many favorited artists feed the genre
// profile. Only the most recently favorited distinct artists are looked
// up, bounding collaborator traffic regardless of history size.
const MaxGenreProfileArtists = 20

// CanonicalGenre normalizes a genre name for set comparison.
func CanonicalGenre(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RecentUniqueArtists returns up to limit distinct artist names from the
// favorites set, most recent first. The favorites list is append-ordered,
// so recency is position from the end. Empty artist names are skipped.
func RecentUniqueArtists(favorites []FavoriteItem, limit int) []string {
	if limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{}, limit)
	artists := make([]string, 0, limit)

	for i := len(favorites) - 1; i >= 0 && len(artists) < limit; i-- {
		artist := favorites[i].Artist
		if artist == "" {
			continue
		}
		if _, dup := seen[artist]; dup {
			continue
		}
		seen[artist] = struct{}{}
		artists = append(artists, artist)
	}

	return artists
}

// GenreProfile is the user's taste expressed as a set of canonical genre
// names, derived from their recently favorited artists. Built fresh each
// pass; a lookup failure shrinks the profile rather than failing it.
type GenreProfile struct {
	// Genres is the set of canonical genre names.
	Genres map[string]struct{}

	// ResolvedArtists is how many artists contributed genres.
	ResolvedArtists int

	// FailedLookups is how many artist lookups failed and were skipped.
	FailedLookups int
}

// BuildGenreProfile derives a GenreProfile from the favorites set using
// the genre collaborator. A nil lookup yields an empty profile, which
// scores every candidate's genre signal as zero.
func BuildGenreProfile(ctx context.Context, favorites []FavoriteItem, lookup GenreLookup, logger zerolog.Logger) GenreProfile {
	profile := GenreProfile{Genres: make(map[string]struct{})}
	if lookup == nil {
		return profile
	}

	for _, artist := range RecentUniqueArtists(favorites, MaxGenreProfileArtists) {
		if ctx.Err() != nil {
			break
		}

		genres, err := lookup.Genres(ctx, artist)
		metrics.RecordGenreLookup(err)
		if err != nil {
			profile.FailedLookups++
			logger.Debug().
				Err(err).
				Str("artist", artist).
				Msg("genre lookup failed, artist contributes no genre data")
			continue
		}

		profile.ResolvedArtists++
		for _, genre := range genres {
			if canonical := CanonicalGenre(genre); canonical != "" {
				profile.Genres[canonical] = struct{}{}
			}
		}
	}

	return profile
}

// Size returns the number of distinct genres in the profile.
func (p GenreProfile) Size() int {
	return len(p.Genres)
}

// Match scores a candidate's genres against the profile: the fraction of
// the candidate's distinct genres that appear in the profile. Returns 0
// when either side is empty, so absent data never beats a weak match.
func (p GenreProfile) Match(genres []string) float64 {
	if len(p.Genres) == 0 || len(genres) == 0 {
		return 0
	}

	distinct := make(map[string]struct{}, len(genres))
	for _, genre := range genres {
		if canonical := CanonicalGenre(genre); canonical != "" {
			distinct[canonical] = struct{}{}
		}
	}
	if len(distinct) == 0 {
		return 0
	}

	matched := 0
	for genre := range distinct {
		if _, ok := p.Genres[genre]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(distinct))
}
