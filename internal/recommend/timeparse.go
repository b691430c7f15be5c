// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package recommend

import (
	"strings"
	"time"
)

// clockLayouts are the start-time formats seen in event listings, tried in
// order. Twelve-hour layouts come first so a trailing meridiem is not
// rejected by the 24-hour layout.
var clockLayouts = []string{
	"3:04 pm",
	"3:04pm",
	"3 pm",
	"3pm",
	"15:04",
}

// EventHour parses a displayed start time ("8:00 pm", "15:04", "3 pm")
// and returns the local hour (0-23). The second return is false when the
// string is empty or matches no known layout.
func EventHour(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}

// TimeBucketFor maps a displayed start time to its time-of-day bucket.
// Missing or unparseable times land in the late-night bucket.
func TimeBucketFor(s string) TimeBucket {
	hour, ok := EventHour(s)
	if !ok {
		return BucketLateNight
	}
	return ClassifyHour(hour)
}

// ParseEventDate parses a catalog date in YYYY-MM-DD form. The second
// return is false when the string is empty or unparseable; callers treat
// such dates as "not past" for staleness filtering and as sort key zero
// for ordering.
func ParseEventDate(s string) (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysUntil returns the whole-day distance from today (per the clock) to
// the event date, date-only. Negative for past dates. The second return
// is false when the date is unparseable.
func DaysUntil(date string, clock Clock) (int, bool) {
	eventDate, ok := ParseEventDate(date)
	if !ok {
		return 0, false
	}

	now := clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	event := time.Date(eventDate.Year(), eventDate.Month(), eventDate.Day(), 0, 0, 0, 0, now.Location())

	return int(event.Sub(today).Hours() / 24), true
}
