// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package recommend

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// stubGenreLookup answers genre lookups from a fixture map and records
// the order of artists asked for.
type stubGenreLookup struct {
	mu     sync.Mutex
	genres map[string][]string
	errFor map[string]error
	calls  []string
}

func (s *stubGenreLookup) Genres(_ context.Context, artist string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, artist)
	if err, ok := s.errFor[artist]; ok {
		return nil, err
	}
	return s.genres[artist], nil
}

func (s *stubGenreLookup) calledArtists() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func TestCanonicalGenre(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Rock", "rock"},
		{"trims whitespace", "  Indie Rock ", "indie rock"},
		{"already canonical", "shoegaze", "shoegaze"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CanonicalGenre(tt.input); got != tt.want {
				t.Errorf("CanonicalGenre(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRecentUniqueArtists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		favorites []FavoriteItem
		limit     int
		want      []string
	}{
		{
			name: "dedupes and orders most recent first",
			favorites: []FavoriteItem{
				{Artist: "Mitski"},
				{Artist: "Big Thief"},
				{Artist: "Mitski"},
				{Artist: "Alvvays"},
			},
			limit: 20,
			want:  []string{"Alvvays", "Mitski", "Big Thief"},
		},
		{
			name: "caps at limit",
			favorites: []FavoriteItem{
				{Artist: "a"}, {Artist: "b"}, {Artist: "c"}, {Artist: "d"},
			},
			limit: 2,
			want:  []string{"d", "c"},
		},
		{
			name: "skips empty artist names",
			favorites: []FavoriteItem{
				{Artist: "Mitski"},
				{Artist: ""},
				{Artist: "Big Thief"},
			},
			limit: 20,
			want:  []string{"Big Thief", "Mitski"},
		},
		{
			name:      "non-positive limit",
			favorites: []FavoriteItem{{Artist: "Mitski"}},
			limit:     0,
			want:      nil,
		},
		{
			name:      "empty favorites",
			favorites: nil,
			limit:     20,
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RecentUniqueArtists(tt.favorites, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("RecentUniqueArtists() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("RecentUniqueArtists()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildGenreProfile(t *testing.T) {
	t.Parallel()

	lookup := &stubGenreLookup{
		genres: map[string][]string{
			"Mitski":    {"Indie Rock", "Art Pop"},
			"Big Thief": {"indie rock", "Folk"},
			"Alvvays":   {"Shoegaze"},
		},
	}
	favorites := []FavoriteItem{
		{Artist: "Mitski"},
		{Artist: "Big Thief"},
		{Artist: "Alvvays"},
	}

	profile := BuildGenreProfile(context.Background(), favorites, lookup, zerolog.Nop())

	if profile.ResolvedArtists != 3 {
		t.Errorf("ResolvedArtists = %d, want 3", profile.ResolvedArtists)
	}
	if profile.FailedLookups != 0 {
		t.Errorf("FailedLookups = %d, want 0", profile.FailedLookups)
	}
	// "Indie Rock" and "indie rock" collapse to one canonical genre.
	wantGenres := []string{"indie rock", "art pop", "folk", "shoegaze"}
	if profile.Size() != len(wantGenres) {
		t.Errorf("Size() = %d, want %d (genres: %v)", profile.Size(), len(wantGenres), profile.Genres)
	}
	for _, genre := range wantGenres {
		if _, ok := profile.Genres[genre]; !ok {
			t.Errorf("profile missing genre %q", genre)
		}
	}

	// Lookups run most recent favorite first.
	calls := lookup.calledArtists()
	wantOrder := []string{"Alvvays", "Big Thief", "Mitski"}
	for i := range wantOrder {
		if calls[i] != wantOrder[i] {
			t.Errorf("lookup order[%d] = %q, want %q", i, calls[i], wantOrder[i])
		}
	}
}

func TestBuildGenreProfile_LookupFailureDegrades(t *testing.T) {
	t.Parallel()

	lookup := &stubGenreLookup{
		genres: map[string][]string{
			"Mitski": {"Indie Rock"},
		},
		errFor: map[string]error{
			"Big Thief": errors.New("genre service unavailable"),
		},
	}
	favorites := []FavoriteItem{
		{Artist: "Mitski"},
		{Artist: "Big Thief"},
	}

	profile := BuildGenreProfile(context.Background(), favorites, lookup, zerolog.Nop())

	if profile.FailedLookups != 1 {
		t.Errorf("FailedLookups = %d, want 1", profile.FailedLookups)
	}
	if profile.ResolvedArtists != 1 {
		t.Errorf("ResolvedArtists = %d, want 1", profile.ResolvedArtists)
	}
	if _, ok := profile.Genres["indie rock"]; !ok {
		t.Error("surviving artist's genres should still be in the profile")
	}
}

func TestBuildGenreProfile_CapsLookups(t *testing.T) {
	t.Parallel()

	lookup := &stubGenreLookup{genres: map[string][]string{}}
	favorites := make([]FavoriteItem, 0, MaxGenreProfileArtists+5)
	for i := 0; i < MaxGenreProfileArtists+5; i++ {
		favorites = append(favorites, FavoriteItem{Artist: "artist-" + strconv.Itoa(i)})
	}

	BuildGenreProfile(context.Background(), favorites, lookup, zerolog.Nop())

	if got := len(lookup.calledArtists()); got != MaxGenreProfileArtists {
		t.Errorf("lookup calls = %d, want %d", got, MaxGenreProfileArtists)
	}
}

func TestBuildGenreProfile_NilLookup(t *testing.T) {
	t.Parallel()

	profile := BuildGenreProfile(context.Background(), []FavoriteItem{{Artist: "Mitski"}}, nil, zerolog.Nop())

	if profile.Size() != 0 {
		t.Errorf("Size() = %d, want 0 with no collaborator", profile.Size())
	}
	if got := profile.Match([]string{"rock"}); got != 0 {
		t.Errorf("Match() = %v, want 0 for an empty profile", got)
	}
}

func TestBuildGenreProfile_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lookup := &stubGenreLookup{genres: map[string][]string{"Mitski": {"rock"}}}
	profile := BuildGenreProfile(ctx, []FavoriteItem{{Artist: "Mitski"}}, lookup, zerolog.Nop())

	if got := len(lookup.calledArtists()); got != 0 {
		t.Errorf("lookup calls = %d, want 0 on canceled context", got)
	}
	if profile.Size() != 0 {
		t.Errorf("Size() = %d, want 0 on canceled context", profile.Size())
	}
}

func TestGenreProfile_Match(t *testing.T) {
	t.Parallel()

	profile := GenreProfile{Genres: map[string]struct{}{
		"indie rock": {},
		"art pop":    {},
		"shoegaze":   {},
	}}

	tests := []struct {
		name   string
		genres []string
		want   float64
	}{
		{"full overlap", []string{"indie rock", "art pop"}, 1},
		{"half overlap", []string{"Indie Rock", "jazz"}, 0.5},
		{"no overlap", []string{"jazz", "blues"}, 0},
		{"case and whitespace insensitive", []string{"  SHOEGAZE "}, 1},
		{"duplicates count once", []string{"indie rock", "Indie Rock", "jazz"}, 0.5},
		{"empty candidate genres", nil, 0},
		{"whitespace-only genres", []string{"  ", ""}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := profile.Match(tt.genres); got != tt.want {
				t.Errorf("Match(%v) = %v, want %v", tt.genres, got, tt.want)
			}
		})
	}
}

func TestGenreProfile_MatchEmptyProfile(t *testing.T) {
	t.Parallel()

	profile := GenreProfile{Genres: map[string]struct{}{}}
	if got := profile.Match([]string{"rock"}); got != 0 {
		t.Errorf("Match() = %v, want 0 for an empty profile", got)
	}
}
