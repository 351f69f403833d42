// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

// Package events implements the in-process change notifier.
//
// Every committed write to the primary store publishes a ChangeEvent on a
// Watermill Go-channel pub/sub. Delivery is fire-and-forget: publishing
// happens after commit, a failed or slow subscriber never fails or delays
// the write, and there is no replay. Subscribers keep the search index and
// WebSocket clients up to date.
package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"

	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/metrics"
	"github.com/storekeep/storekeep/internal/models"
)

// TopicChanges carries every entity change event.
const TopicChanges = "storekeep.changes"

// Metadata keys set on published messages.
const (
	MetadataEntity = "entity"
	MetadataOp     = "op"
)

// Bus is the in-process change-event pub/sub.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates the bus. Subscribers have a small buffer; a subscriber
// that stops draining loses events rather than blocking publishers.
func NewBus() *Bus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		BlockPublishUntilSubscriberAck: false,
	}, NewLoggerAdapter())
	return &Bus{pubsub: pubsub}
}

// Publish sends a change event to all current subscribers. Errors are
// returned for the caller to log; they must never fail the write that
// produced the event.
func (b *Bus) Publish(event models.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataEntity, event.Entity)
	msg.Metadata.Set(MetadataOp, event.Op)

	if err := b.pubsub.Publish(TopicChanges, msg); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	metrics.ChangeEventsPublished.WithLabelValues(event.Entity, event.Op).Inc()
	return nil
}

// Notify publishes fire-and-forget: failures are logged and swallowed.
func (b *Bus) Notify(entity, op, id string, payload interface{}) {
	event := models.NewChangeEvent(entity, op, id, payload)
	if err := b.Publish(event); err != nil {
		logging.Warn().Err(err).
			Str("entity", entity).
			Str("op", op).
			Str("id", id).
			Msg("change event dropped")
	}
}

// Subscribe returns a channel of raw change messages. The channel closes
// when ctx is cancelled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	messages, err := b.pubsub.Subscribe(ctx, TopicChanges)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", TopicChanges, err)
	}
	return messages, nil
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() error {
	if err := b.pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close event bus: %w", err)
	}
	return nil
}

// DecodeEvent unmarshals a bus message back into a ChangeEvent.
func DecodeEvent(msg *message.Message) (models.ChangeEvent, error) {
	var event models.ChangeEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return models.ChangeEvent{}, fmt.Errorf("failed to decode change event: %w", err)
	}
	return event, nil
}
