// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package validation

import (
	"strings"
	"testing"
)

// ===================================================================================================
// Singleton Validator Tests
// ===================================================================================================

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}

	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// ===================================================================================================
// ValidateStruct Tests
// ===================================================================================================

// engineSettings mirrors the shape of the configuration structs this
// package exists to validate.
type engineSettings struct {
	LogLevel      string  `validate:"oneof=trace debug info warn error"`
	Limit         int     `validate:"min=1,max=500"`
	CacheCapacity int     `validate:"gt=0"`
	GenreWeight   float64 `validate:"gte=0,lte=1"`
	Enabled       bool
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input engineSettings
	}{
		{
			name: "typical values",
			input: engineSettings{
				LogLevel:      "info",
				Limit:         40,
				CacheCapacity: 300,
				GenreWeight:   0.2,
			},
		},
		{
			name: "boundary values",
			input: engineSettings{
				LogLevel:      "trace",
				Limit:         1,
				CacheCapacity: 1,
				GenreWeight:   1.0,
			},
		},
		{
			name: "zero weight allowed",
			input: engineSettings{
				LogLevel:      "error",
				Limit:         500,
				CacheCapacity: 10,
				GenreWeight:   0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     engineSettings
		wantField string
		wantTag   string
	}{
		{
			name: "unknown log level",
			input: engineSettings{
				LogLevel:      "verbose",
				Limit:         40,
				CacheCapacity: 300,
				GenreWeight:   0.2,
			},
			wantField: "LogLevel",
			wantTag:   "oneof",
		},
		{
			name: "limit too high",
			input: engineSettings{
				LogLevel:      "info",
				Limit:         9999,
				CacheCapacity: 300,
				GenreWeight:   0.2,
			},
			wantField: "Limit",
			wantTag:   "max",
		},
		{
			name: "zero capacity",
			input: engineSettings{
				LogLevel:      "info",
				Limit:         40,
				CacheCapacity: 0,
				GenreWeight:   0.2,
			},
			wantField: "CacheCapacity",
			wantTag:   "gt",
		},
		{
			name: "weight above one",
			input: engineSettings{
				LogLevel:      "info",
				Limit:         40,
				CacheCapacity: 300,
				GenreWeight:   1.5,
			},
			wantField: "GenreWeight",
			wantTag:   "lte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}

			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 field error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, errs[0].Field())
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("expected tag %q, got %q", tt.wantTag, errs[0].Tag())
			}
		})
	}
}

func TestValidateStruct_MultipleErrors(t *testing.T) {
	input := engineSettings{
		LogLevel:      "loud",
		Limit:         0,
		CacheCapacity: -1,
		GenreWeight:   2.0,
	}

	err := ValidateStruct(&input)
	if err == nil {
		t.Fatal("ValidateStruct() expected error, got nil")
	}

	if len(err.Errors()) != 4 {
		t.Errorf("expected 4 field errors, got %d: %v", len(err.Errors()), err)
	}

	// Combined message joins individual messages with semicolons.
	if !strings.Contains(err.Error(), ";") {
		t.Errorf("expected joined error message, got: %s", err.Error())
	}
}

// ===================================================================================================
// Error Translation Tests
// ===================================================================================================

func TestTranslatedMessages(t *testing.T) {
	tests := []struct {
		name        string
		input       interface{}
		wantMessage string
	}{
		{
			name: "oneof includes allowed values",
			input: &struct {
				Format string `validate:"oneof=json console"`
			}{Format: "xml"},
			wantMessage: "Format must be one of: json console",
		},
		{
			name: "gte includes bound",
			input: &struct {
				Weight float64 `validate:"gte=0"`
			}{Weight: -0.5},
			wantMessage: "Weight must be greater than or equal to 0",
		},
		{
			name: "string min counts characters",
			input: &struct {
				Name string `validate:"min=3"`
			}{Name: "ab"},
			wantMessage: "Name must be at least 3 characters",
		},
		{
			name: "numeric max has no characters suffix",
			input: &struct {
				Count int `validate:"max=10"`
			}{Count: 11},
			wantMessage: "Count must be at most 10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}
			if err.Error() != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, err.Error())
			}
		})
	}
}
