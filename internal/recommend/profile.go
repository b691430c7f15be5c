// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package recommend

// MinInteractionsForRecommendations is the profile gate: recommendation
// computation is skipped entirely while the favorites set is smaller.
const MinInteractionsForRecommendations = 3

// BuildProfile derives an AffinityProfile from the favorites set.
//
// The build is a full recompute: counters start from zero on every call,
// so identical input always produces an identical profile. An empty
// favorites set yields a zero-valued profile with no error.
func BuildProfile(favorites []FavoriteItem, clock Clock) AffinityProfile {
	profile := AffinityProfile{
		ArtistCounts:      make(map[string]int),
		VenueCounts:       make(map[string]int),
		TotalInteractions: len(favorites),
		UpdatedAt:         clock.Now(),
	}

	for _, fav := range favorites {
		if fav.Artist != "" {
			profile.ArtistCounts[fav.Artist]++
		}
		if fav.Venue != "" {
			profile.VenueCounts[fav.Venue]++
		}

		profile.TimeOfDay[TimeBucketFor(fav.Time)]++

		// The weekday histogram only counts favorites whose owning date
		// was recorded and parses; hosts that do not record dates simply
		// leave it empty.
		if date, ok := ParseEventDate(fav.Date); ok {
			profile.DayOfWeek[int(date.Weekday())]++
		}
	}

	return profile
}

// HasMinimumHistory reports whether the profile clears the interaction
// gate for recommendation computation.
func (p *AffinityProfile) HasMinimumHistory() bool {
	return p.TotalInteractions >= MinInteractionsForRecommendations
}

// TopArtistCount returns the largest artist favorite count, or 0 for an
// empty profile.
func (p *AffinityProfile) TopArtistCount() int {
	return maxCount(p.ArtistCounts)
}

// TopVenueCount returns the largest venue favorite count, or 0 for an
// empty profile.
func (p *AffinityProfile) TopVenueCount() int {
	return maxCount(p.VenueCounts)
}

// BucketShare returns the fraction of total time-bucket mass held by one
// bucket, or 0 when no favorites carry a time.
func (p *AffinityProfile) BucketShare(bucket TimeBucket) float64 {
	total := 0
	for _, n := range p.TimeOfDay {
		total += n
	}
	if total == 0 {
		return 0
	}
	return float64(p.TimeOfDay[bucket]) / float64(total)
}

// maxCount returns the largest value in a counter map.
func maxCount(counts map[string]int) int {
	maxN := 0
	for _, n := range counts {
		if n > maxN {
			maxN = n
		}
	}
	return maxN
}
