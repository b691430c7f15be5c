// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package recommend

import "strings"

// FeatureVectorSize is the fixed model input width. Encoded features are
// truncated or zero-padded to exactly this length.
const FeatureVectorSize = 10

// nameHashModulus bounds the polynomial rolling hash of artist and venue
// names before normalization.
const nameHashModulus = 1000

// EncodeProfile maps an affinity profile to its feature slice:
//
//	[0] top artist count, self-normalized (1 when any artist exists, else 0)
//	[1] top venue count, self-normalized
//	[2..5] time-of-day histogram, normalized by its own max
//	[6] day-preference summary (max weekday count / total interactions)
//
// Self-normalization by the slice's own maximum intentionally degenerates
// the top-count features to 1 or 0; the histogram keeps its shape.
func EncodeProfile(profile *AffinityProfile) []float64 {
	features := make([]float64, 7)

	if profile.TopArtistCount() > 0 {
		features[0] = 1
	}
	if profile.TopVenueCount() > 0 {
		features[1] = 1
	}

	maxBucket := 0
	for _, n := range profile.TimeOfDay {
		if n > maxBucket {
			maxBucket = n
		}
	}
	if maxBucket > 0 {
		for i, n := range profile.TimeOfDay {
			features[2+i] = float64(n) / float64(maxBucket)
		}
	}

	if profile.TotalInteractions > 0 {
		maxDay := 0
		for _, n := range profile.DayOfWeek {
			if n > maxDay {
				maxDay = n
			}
		}
		features[6] = float64(maxDay) / float64(profile.TotalInteractions)
	}

	return features
}

// EncodeCandidate maps a candidate event to its feature slice:
//
//	[0] artist name hash / 1000
//	[1] venue name hash / 1000
//	[2] time-of-day bucket index / 4
//	[3] ticket link flag
//	[4] map link flag
func EncodeCandidate(candidate *CandidateEvent) []float64 {
	features := make([]float64, 5)

	features[0] = float64(hashName(candidate.Artist)) / float64(nameHashModulus)
	features[1] = float64(hashName(candidate.Venue)) / float64(nameHashModulus)
	features[2] = float64(TimeBucketFor(candidate.Time)) / float64(NumTimeBuckets)
	if candidate.HasTicketLink {
		features[3] = 1
	}
	if candidate.HasMapLink {
		features[4] = 1
	}

	return features
}

// CombineFeatures concatenates profile and candidate features and clamps
// the result to exactly FeatureVectorSize: extra trailing values are
// truncated, short vectors are zero-padded. With the standard encoders the
// two link flags fall past the boundary and are dropped from the model
// input.
func CombineFeatures(profileFeatures, candidateFeatures []float64) []float64 {
	combined := make([]float64, 0, FeatureVectorSize)
	combined = append(combined, profileFeatures...)
	combined = append(combined, candidateFeatures...)

	if len(combined) > FeatureVectorSize {
		combined = combined[:FeatureVectorSize]
	}
	for len(combined) < FeatureVectorSize {
		combined = append(combined, 0)
	}

	return combined
}

// BuildTrainingExamples converts a favorites set into positive training
// examples: every favorite is labeled 1 against the profile built from
// the full set. Favoriting is positive-only feedback, there are no
// negative examples.
func BuildTrainingExamples(favorites []FavoriteItem, clock Clock) []TrainingExample {
	if len(favorites) == 0 {
		return nil
	}

	profile := BuildProfile(favorites, clock)
	profileFeatures := EncodeProfile(&profile)

	examples := make([]TrainingExample, 0, len(favorites))
	for _, fav := range favorites {
		candidate := CandidateEvent{Artist: fav.Artist, Venue: fav.Venue, Time: fav.Time}
		examples = append(examples, TrainingExample{
			Features: CombineFeatures(profileFeatures, EncodeCandidate(&candidate)),
			Label:    1,
		})
	}
	return examples
}

// hashName maps a name to a stable integer in [0, nameHashModulus) with a
// polynomial rolling hash over the lowercased text.
func hashName(name string) int {
	h := 0
	for _, ch := range strings.ToLower(name) {
		h = (h*31 + int(ch)) % nameHashModulus
	}
	return h
}
