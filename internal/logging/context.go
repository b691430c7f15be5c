// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// contextKey is the private type for logging context keys.
type contextKey string

// passIDKey is the context key carrying the recommendation pass ID.
// Every orchestration pass gets its own ID so that the profile build,
// embedding fetches, scoring, and persistence for one pass can be
// correlated across log lines.
const passIDKey contextKey = "pass_id"

// GeneratePassID creates a new unique pass ID.
// Returns the first 8 characters of a UUID for readability.
func GeneratePassID() string {
	return uuid.New().String()[:8]
}

// ContextWithPassID returns a new context carrying the given pass ID.
func ContextWithPassID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, passIDKey, id)
}

// ContextWithNewPassID returns a context carrying a freshly generated pass ID.
//
//	ctx = logging.ContextWithNewPassID(ctx)
func ContextWithNewPassID(ctx context.Context) context.Context {
	return ContextWithPassID(ctx, GeneratePassID())
}

// PassIDFromContext retrieves the pass ID from context.
// Returns empty string if not present.
func PassIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(passIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns a logger with the pass ID (when present) attached.
//
//	logging.Ctx(ctx).Info().Msg("Scoring candidates")
//	// Output: {"level":"info","pass_id":"abc12345","message":"Scoring candidates"}
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := Logger()
	if passID := PassIDFromContext(ctx); passID != "" {
		logger = logger.With().Str("pass_id", passID).Logger()
	}
	return &logger
}

// WithComponent creates a child logger with a component field.
// Use this to create component-specific loggers.
//
//	cacheLogger := logging.WithComponent("embedding-cache")
//	cacheLogger.Info().Msg("Cache primed")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
