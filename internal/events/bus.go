// Showlist - Live Event Discovery and Recommendations
// Copyright 2026 Aasim S. (aasimsyed)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/aasimsyed/showlist

// Package events carries change notifications from the host to the
// recommendation services: an in-process watermill pub/sub bus plus the
// quiet-period coalescer that turns notification bursts into single
// recompute or training runs.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/aasimsyed/showlist/internal/metrics"
)

// Topics the host publishes on.
const (
	// TopicFavoritesChanged signals that the favorites set changed.
	TopicFavoritesChanged = "favorites.changed"

	// TopicCatalogChanged signals that the event catalog changed.
	TopicCatalogChanged = "catalog.changed"
)

// ChangeEvent is the JSON payload of a change notification.
type ChangeEvent struct {
	// Reason is a short human-readable cause ("favorite added",
	// "catalog refresh").
	Reason string `json:"reason"`

	// Timestamp is when the change was published.
	Timestamp time.Time `json:"timestamp"`
}

// Bus is the in-process change-notification pub/sub. Both sides run in
// the same process, so the gochannel transport carries messages without
// a broker; subscribers receive every message published after they
// subscribe.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger
}

// NewBus creates the change-notification bus.
func NewBus(logger zerolog.Logger) *Bus {
	busLogger := logger.With().Str("component", "events").Logger()
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 16},
			newWatermillLogger(busLogger),
		),
		logger: busLogger,
	}
}

// PublishFavoritesChanged notifies subscribers that the favorites set
// changed.
func (b *Bus) PublishFavoritesChanged(reason string) error {
	return b.publish(TopicFavoritesChanged, reason)
}

// PublishCatalogChanged notifies subscribers that the catalog changed.
func (b *Bus) PublishCatalogChanged(reason string) error {
	return b.publish(TopicCatalogChanged, reason)
}

func (b *Bus) publish(topic, reason string) error {
	payload, err := json.Marshal(ChangeEvent{
		Reason:    reason,
		Timestamp: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}

	metrics.ChangeNotificationsTotal.WithLabelValues(topic).Inc()
	b.logger.Debug().Str("topic", topic).Str("reason", reason).Msg("change published")
	return nil
}

// Subscribe returns a channel of messages for a topic. The channel
// closes when ctx is canceled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// watermillLogger adapts zerolog to watermill's LoggerAdapter.
type watermillLogger struct {
	logger zerolog.Logger
}

func newWatermillLogger(logger zerolog.Logger) watermillLogger {
	return watermillLogger{logger: logger}
}

func (w watermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	w.event(w.logger.Error().Err(err), fields).Msg(msg)
}

func (w watermillLogger) Info(msg string, fields watermill.LogFields) {
	w.event(w.logger.Info(), fields).Msg(msg)
}

func (w watermillLogger) Debug(msg string, fields watermill.LogFields) {
	w.event(w.logger.Debug(), fields).Msg(msg)
}

func (w watermillLogger) Trace(msg string, fields watermill.LogFields) {
	w.event(w.logger.Trace(), fields).Msg(msg)
}

func (w watermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := w.logger.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}
	return watermillLogger{logger: ctx.Logger()}
}

func (w watermillLogger) event(e *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for key, value := range fields {
		e = e.Interface(key, value)
	}
	return e
}
