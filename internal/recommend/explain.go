// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package recommend

import (
	"fmt"
	"math"
)

// Explanation point budget. Points sum across components and normalize
// to confidence as min(points/100, 1).
const (
	artistPointsPerFavorite = 20
	maxArtistPoints         = 40
	venuePointsPerFavorite  = 15
	maxVenuePoints          = 30

	// maxTimeOfDayPoints scale with the bucket's share of total mass,
	// granted only when the candidate's bucket holds more than
	// timeOfDayShareGate of it.
	maxTimeOfDayPoints = 20
	timeOfDayShareGate = 0.3

	// Model boost: raw scores above the floor map linearly onto
	// 0..maxModelPoints; above strongMatchThreshold the reason wording
	// changes.
	modelBoostFloor      = 0.5
	strongMatchThreshold = 0.7
	maxModelPoints       = 10

	// Recency boost: 2*(recencyWindowDays - days_until) points for events
	// inside the window, peaking at 14 for same-day events.
	recencyWindowDays = 7
	happeningSoonDays = 3
)

// ExplanationInput carries the evidence the generator reads. Profile and
// genre fields are optional; absent evidence simply contributes nothing.
type ExplanationInput struct {
	// Profile is the user's affinity profile.
	Profile *AffinityProfile

	// Candidate is the event being explained.
	Candidate CandidateEvent

	// RawScore is the learned (or fallback) scorer output in [0,1].
	RawScore float64

	// CandidateGenres is the candidate artist's genre evidence.
	CandidateGenres []string

	// GenreProfile is the user's genre taste set.
	GenreProfile GenreProfile

	// EventDate is the candidate's owning catalog date (YYYY-MM-DD).
	EventDate string
}

// BuildExplanation produces the deterministic rationale for a candidate:
// reason strings in scoring order, a point-budgeted confidence, and a
// one-line summary. Identical input always yields an identical result.
func BuildExplanation(input ExplanationInput, clock Clock) Explanation {
	var points float64
	var reasons []string

	if input.Profile != nil {
		if count := input.Profile.ArtistCounts[input.Candidate.Artist]; count > 0 {
			points += math.Min(float64(count)*artistPointsPerFavorite, maxArtistPoints)
			reasons = append(reasons, artistReason(input.Candidate.Artist, count))
		}

		if count := input.Profile.VenueCounts[input.Candidate.Venue]; count > 0 {
			points += math.Min(float64(count)*venuePointsPerFavorite, maxVenuePoints)
			reasons = append(reasons, venueReason(input.Candidate.Venue, count))
		}

		bucket := TimeBucketFor(input.Candidate.Time)
		if share := input.Profile.BucketShare(bucket); share > timeOfDayShareGate {
			points += share * maxTimeOfDayPoints
			reasons = append(reasons, timeOfDayReason(bucket))
		}
	}

	if input.RawScore > modelBoostFloor {
		points += (input.RawScore - modelBoostFloor) / (1 - modelBoostFloor) * maxModelPoints
		if input.RawScore > strongMatchThreshold {
			reasons = append(reasons, "strong match with events you have favorited")
		} else {
			reasons = append(reasons, "similar to events you have favorited")
		}
	}

	if days, ok := DaysUntil(input.EventDate, clock); ok && days >= 0 && days <= recencyWindowDays {
		if boost := float64(2 * (recencyWindowDays - days)); boost > 0 {
			points += boost
			if days <= happeningSoonDays {
				reasons = append(reasons, "happening soon")
			} else {
				reasons = append(reasons, fmt.Sprintf("coming up in %d days", days))
			}
		}
	}

	// Genre overlap carries no points but is still worth telling the
	// user about.
	if genre := matchedGenre(input.GenreProfile, input.CandidateGenres); genre != "" {
		reasons = append(reasons, fmt.Sprintf("matches your taste in %s", genre))
	}

	return Explanation{
		Reasons:    reasons,
		Confidence: math.Min(points/100, 1),
		Summary:    summarize(reasons),
	}
}

// RuleBasedScore is the deterministic affinity-count component on its
// native 0-70 scale: capped artist points plus capped venue points, the
// same budget the explanation uses.
func RuleBasedScore(profile *AffinityProfile, candidate CandidateEvent) float64 {
	if profile == nil {
		return 0
	}
	artist := math.Min(float64(profile.ArtistCounts[candidate.Artist])*artistPointsPerFavorite, maxArtistPoints)
	venue := math.Min(float64(profile.VenueCounts[candidate.Venue])*venuePointsPerFavorite, maxVenuePoints)
	return artist + venue
}

func artistReason(artist string, count int) string {
	if count == 1 {
		return fmt.Sprintf("you favorited %s once", artist)
	}
	return fmt.Sprintf("you favorited %s %d times", artist, count)
}

func venueReason(venue string, count int) string {
	if count == 1 {
		return fmt.Sprintf("you favorited events at %s once", venue)
	}
	return fmt.Sprintf("you favorited events at %s %d times", venue, count)
}

func timeOfDayReason(bucket TimeBucket) string {
	if bucket == BucketLateNight {
		return "happens late at night, when you go out most"
	}
	return fmt.Sprintf("happens in the %s, when you go out most", bucket)
}

// matchedGenre returns the first candidate genre present in the profile,
// in the candidate's own genre order, or "" when there is no overlap.
func matchedGenre(profile GenreProfile, genres []string) string {
	if len(profile.Genres) == 0 {
		return ""
	}
	for _, genre := range genres {
		canonical := CanonicalGenre(genre)
		if canonical == "" {
			continue
		}
		if _, ok := profile.Genres[canonical]; ok {
			return canonical
		}
	}
	return ""
}

// summarize rolls the reasons up into one line.
func summarize(reasons []string) string {
	switch len(reasons) {
	case 0:
		return "similar to events you might enjoy"
	case 1:
		return reasons[0]
	case 2:
		return reasons[0] + " and " + reasons[1]
	default:
		return fmt.Sprintf("%s, %s, and %d more", reasons[0], reasons[1], len(reasons)-2)
	}
}
