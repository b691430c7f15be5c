// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package recommend

import (
	"context"
	"time"
)

// TimeBucket classifies event start times into coarse time-of-day buckets.
type TimeBucket int

const (
	// BucketMorning covers local hours [6, 12).
	BucketMorning TimeBucket = iota
	// BucketAfternoon covers local hours [12, 17).
	BucketAfternoon
	// BucketEvening covers local hours [17, 22).
	BucketEvening
	// BucketLateNight covers the remaining hours, and is the bucket for
	// events whose start time is missing or unparseable.
	BucketLateNight

	// NumTimeBuckets is the number of time-of-day buckets.
	NumTimeBuckets = 4
)

// String returns a human-readable name for the time bucket.
func (b TimeBucket) String() string {
	switch b {
	case BucketMorning:
		return "morning"
	case BucketAfternoon:
		return "afternoon"
	case BucketEvening:
		return "evening"
	case BucketLateNight:
		return "late-night"
	default:
		return "unknown"
	}
}

// ClassifyHour maps a local hour (0-23) to its time bucket.
func ClassifyHour(hour int) TimeBucket {
	switch {
	case hour >= 6 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 17:
		return BucketAfternoon
	case hour >= 17 && hour < 22:
		return BucketEvening
	default:
		return BucketLateNight
	}
}

// FavoriteItem is one entry of the user's favorited set. The set is an
// ordered list owned by the host; this engine only reads it.
type FavoriteItem struct {
	// Artist is the performing artist or act name.
	Artist string `json:"artist"`

	// Venue is the venue name.
	Venue string `json:"venue"`

	// Time is the event start time as displayed in the catalog
	// ("8:00 pm", "15:04", "3 pm"). May be empty.
	Time string `json:"time,omitempty"`

	// Date is the owning catalog date in YYYY-MM-DD form, when the host
	// recorded it at favoriting time. Optional; it only feeds the
	// day-of-week histogram.
	Date string `json:"date,omitempty"`
}

// CandidateEvent is one event from the external catalog being considered
// for recommendation. Immutable once parsed.
type CandidateEvent struct {
	// Artist is the performing artist or act name.
	Artist string `json:"artist"`

	// Venue is the venue name.
	Venue string `json:"venue"`

	// Time is the displayed start time. May be empty.
	Time string `json:"time,omitempty"`

	// Date is the owning catalog date in YYYY-MM-DD form.
	Date string `json:"date,omitempty"`

	// HasTicketLink reports whether the listing carries a ticket link.
	HasTicketLink bool `json:"has_ticket_link,omitempty"`

	// HasMapLink reports whether the listing carries a venue map link.
	HasMapLink bool `json:"has_map_link,omitempty"`
}

// CatalogDay groups the candidate events of a single calendar date.
type CatalogDay struct {
	// Date is the calendar date in YYYY-MM-DD form.
	Date string `json:"date"`

	// Events are the day's candidate events.
	Events []CandidateEvent `json:"events"`
}

// Catalog is the external event catalog, one entry per date.
type Catalog []CatalogDay

// EventKey is the identity of an event for favorite-exclusion and lookup:
// exact equality of artist, venue, and time.
type EventKey struct {
	Artist string
	Venue  string
	Time   string
}

// Key returns the identity key of a favorite item.
func (f FavoriteItem) Key() EventKey {
	return EventKey{Artist: f.Artist, Venue: f.Venue, Time: f.Time}
}

// Key returns the identity key of a candidate event.
func (c CandidateEvent) Key() EventKey {
	return EventKey{Artist: c.Artist, Venue: c.Venue, Time: c.Time}
}

// AffinityProfile aggregates the user's favoriting history into the
// counters every scoring signal reads. It is rebuilt from scratch on each
// pass, never patched incrementally, so identical input always yields an
// identical profile.
type AffinityProfile struct {
	// ArtistCounts maps artist name to favorite count.
	ArtistCounts map[string]int `json:"artist_counts"`

	// VenueCounts maps venue name to favorite count.
	VenueCounts map[string]int `json:"venue_counts"`

	// TimeOfDay is the favorite count per time bucket, indexed by TimeBucket.
	TimeOfDay [NumTimeBuckets]int `json:"time_of_day"`

	// DayOfWeek is the favorite count per weekday (0=Sunday, 6=Saturday),
	// counting only favorites that carry a parseable date.
	DayOfWeek [7]int `json:"day_of_week"`

	// TotalInteractions is the size of the favorites set at build time.
	TotalInteractions int `json:"total_interactions"`

	// UpdatedAt is when the profile was built.
	UpdatedAt time.Time `json:"updated_at"`
}

// ComponentScores is the per-signal breakdown behind a blended score.
type ComponentScores struct {
	// RuleBased is the affinity-count score on its native 0-70 scale.
	RuleBased float64 `json:"rule_based"`

	// Learned is the model (or heuristic fallback) score in [0,1].
	Learned float64 `json:"learned"`

	// Genre is the genre-overlap score in [0,1].
	Genre float64 `json:"genre"`

	// TwoTower is the embedding-similarity score in [0,1].
	TwoTower float64 `json:"two_tower"`
}

// Explanation is the human-readable rationale attached to a recommendation.
type Explanation struct {
	// Reasons are the individual reason strings, in scoring order.
	Reasons []string `json:"reasons"`

	// Confidence is the normalized point total in [0,1].
	Confidence float64 `json:"confidence"`

	// Summary is the single-line rollup of the reasons.
	Summary string `json:"summary"`
}

// Recommendation is one ranked output entry.
type Recommendation struct {
	// Event is the recommended candidate.
	Event CandidateEvent `json:"event"`

	// EventDate is the owning catalog date (YYYY-MM-DD). Kept alongside
	// the event so staleness filtering survives persistence.
	EventDate string `json:"event_date"`

	// Final is the blended score on the 0-100 scale.
	Final float64 `json:"final"`

	// Components is the per-signal score breakdown.
	Components ComponentScores `json:"components"`

	// Explanation is the rationale shown to the user.
	Explanation Explanation `json:"explanation"`
}

// Clock abstracts "now" so passes and tests can pin the current date.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// realClock is the production Clock backed by time.Now.
type realClock struct{}

// Now returns the current time.
func (realClock) Now() time.Time {
	return time.Now()
}

// NewRealClock returns a Clock backed by time.Now.
func NewRealClock() Clock {
	return realClock{}
}

// GenreLookup resolves an artist to its genre names. The collaborator is
// external and independently cached; failures degrade the genre signal
// to zero rather than failing the pass.
type GenreLookup interface {
	// Genres returns the genre names for an artist.
	Genres(ctx context.Context, artist string) ([]string, error)
}

// TrainingExample is one supervised example for scorer training. The
// engine labels every favorited item 1 (positive-only feedback).
type TrainingExample struct {
	// Features is the combined feature vector (FeatureVectorSize wide).
	Features []float64 `json:"features"`

	// Label is the target value in [0,1].
	Label float64 `json:"label"`
}

// Scorer produces a [0,1] score from profile and candidate features.
// The engine owns exactly one scorer, selected at construction; both the
// learned and heuristic variants satisfy this contract and never return
// out-of-range values or errors for malformed input (missing features
// read as zero).
type Scorer interface {
	// Name returns the scorer identifier ("learned", "heuristic").
	Name() string

	// Init prepares the scorer (loads persisted weights where they exist).
	Init(ctx context.Context) error

	// Score returns a [0,1] score for the candidate against the profile.
	Score(profileFeatures, candidateFeatures []float64) float64

	// Train fits the scorer on positive examples. Best-effort: a failure
	// leaves the previous state untouched.
	Train(ctx context.Context, examples []TrainingExample) error

	// IsTrained reports whether a training pass has completed.
	IsTrained() bool

	// Dispose releases scorer resources.
	Dispose()
}

// IsRecommended reports whether the candidate appears in the given
// recommendations, by artist+venue+time equality.
func IsRecommended(candidate CandidateEvent, recs []Recommendation) bool {
	_, ok := LookupRecommendation(candidate, recs)
	return ok
}

// LookupRecommendation finds the recommendation entry for a candidate, by
// artist+venue+time equality. The second return is false when absent.
func LookupRecommendation(candidate CandidateEvent, recs []Recommendation) (*Recommendation, bool) {
	key := candidate.Key()
	for i := range recs {
		if recs[i].Event.Key() == key {
			return &recs[i], true
		}
	}
	return nil, false
}
