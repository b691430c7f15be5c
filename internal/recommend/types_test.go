// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package recommend

import (
	"testing"
)

func TestTimeBucket_String(t *testing.T) {
	tests := []struct {
		name     string
		bucket   TimeBucket
		expected string
	}{
		{"morning", BucketMorning, "morning"},
		{"afternoon", BucketAfternoon, "afternoon"},
		{"evening", BucketEvening, "evening"},
		{"late-night", BucketLateNight, "late-night"},
		{"unknown value", TimeBucket(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.bucket.String()
			if result != tt.expected {
				t.Errorf("TimeBucket(%d).String() = %q, want %q", tt.bucket, result, tt.expected)
			}
		})
	}
}

func TestClassifyHour(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		expected TimeBucket
	}{
		{"midnight is late-night", 0, BucketLateNight},
		{"5am is late-night", 5, BucketLateNight},
		{"6am starts morning", 6, BucketMorning},
		{"11am is morning", 11, BucketMorning},
		{"noon starts afternoon", 12, BucketAfternoon},
		{"4pm is afternoon", 16, BucketAfternoon},
		{"5pm starts evening", 17, BucketEvening},
		{"9pm is evening", 21, BucketEvening},
		{"10pm starts late-night", 22, BucketLateNight},
		{"11pm is late-night", 23, BucketLateNight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyHour(tt.hour)
			if result != tt.expected {
				t.Errorf("ClassifyHour(%d) = %v, want %v", tt.hour, result, tt.expected)
			}
		})
	}
}

func TestEventKey_Equality(t *testing.T) {
	fav := FavoriteItem{Artist: "The National", Venue: "Fox Theater", Time: "8:00 pm"}
	cand := CandidateEvent{Artist: "The National", Venue: "Fox Theater", Time: "8:00 pm", Date: "2026-09-01"}

	if fav.Key() != cand.Key() {
		t.Error("expected favorite and candidate with same artist/venue/time to share a key")
	}

	other := CandidateEvent{Artist: "The National", Venue: "Fox Theater", Time: "9:00 pm"}
	if fav.Key() == other.Key() {
		t.Error("expected differing times to produce differing keys")
	}
}

func TestIsRecommended(t *testing.T) {
	recs := []Recommendation{
		{Event: CandidateEvent{Artist: "Caroline Rose", Venue: "Great American", Time: "8:00 pm"}, Final: 42},
		{Event: CandidateEvent{Artist: "Mild High Club", Venue: "The Chapel", Time: "9:00 pm"}, Final: 31},
	}

	tests := []struct {
		name      string
		candidate CandidateEvent
		expected  bool
	}{
		{
			name:      "present candidate",
			candidate: CandidateEvent{Artist: "Caroline Rose", Venue: "Great American", Time: "8:00 pm"},
			expected:  true,
		},
		{
			name:      "same artist different venue",
			candidate: CandidateEvent{Artist: "Caroline Rose", Venue: "The Chapel", Time: "8:00 pm"},
			expected:  false,
		},
		{
			name:      "absent candidate",
			candidate: CandidateEvent{Artist: "Unknown Act", Venue: "Nowhere", Time: ""},
			expected:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecommended(tt.candidate, recs); got != tt.expected {
				t.Errorf("IsRecommended() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLookupRecommendation(t *testing.T) {
	recs := []Recommendation{
		{Event: CandidateEvent{Artist: "Caroline Rose", Venue: "Great American", Time: "8:00 pm"}, Final: 42},
	}

	rec, ok := LookupRecommendation(CandidateEvent{Artist: "Caroline Rose", Venue: "Great American", Time: "8:00 pm"}, recs)
	if !ok {
		t.Fatal("expected lookup to find recommendation")
	}
	if rec.Final != 42 {
		t.Errorf("expected Final 42, got %v", rec.Final)
	}

	if _, ok := LookupRecommendation(CandidateEvent{Artist: "Nobody"}, recs); ok {
		t.Error("expected lookup miss for unknown candidate")
	}

	if _, ok := LookupRecommendation(CandidateEvent{}, nil); ok {
		t.Error("expected lookup miss on empty list")
	}
}
