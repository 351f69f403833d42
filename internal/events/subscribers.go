// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"

	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/metrics"
	"github.com/storekeep/storekeep/internal/models"
	"github.com/storekeep/storekeep/internal/search"
)

// decodePayload re-decodes a change event's payload into a concrete model.
func decodePayload[T any](event models.ChangeEvent) (*T, error) {
	raw, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode payload: %w", err)
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", event.Entity, err)
	}
	return &out, nil
}

// Indexer consumes change events and keeps the search index in sync.
// Category/location changes are deliberately ignored: product documents
// carry denormalized display names and stay stale until the next reindex.
type Indexer struct {
	bus    *Bus
	engine *search.Engine
}

// NewIndexer wires the indexer to a bus and an engine.
func NewIndexer(bus *Bus, engine *search.Engine) *Indexer {
	return &Indexer{bus: bus, engine: engine}
}

// Serve consumes events until ctx is cancelled. Implements suture.Service.
func (ix *Indexer) Serve(ctx context.Context) error {
	messages, err := ix.bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	logging.Info().Msg("search indexer subscribed to change events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			ix.handle(msg)
			msg.Ack()
		}
	}
}

// handle applies one event to the index. Failures are logged; an event is
// never retried.
func (ix *Indexer) handle(msg *message.Message) {
	event, err := DecodeEvent(msg)
	if err != nil {
		logging.Warn().Err(err).Msg("undecodable change event skipped")
		return
	}

	if err := ix.apply(event); err != nil {
		metrics.SearchIndexErrors.WithLabelValues(collectionFor(event.Entity), "apply").Inc()
		logging.Warn().Err(err).
			Str("entity", event.Entity).
			Str("op", event.Op).
			Str("id", event.ID).
			Msg("change event not applied to search index")
	}
}

func (ix *Indexer) apply(event models.ChangeEvent) error {
	collection := collectionFor(event.Entity)
	if collection == "" {
		return nil
	}

	if event.Op == models.OpDeleted {
		return ix.engine.Delete(collection, event.ID)
	}

	switch event.Entity {
	case models.EntityProduct:
		p, err := decodePayload[models.Product](event)
		if err != nil {
			return err
		}
		return ix.engine.Upsert(collection, event.ID, search.NewProductDocument(p))
	case models.EntityStockMovement:
		m, err := decodePayload[models.StockMovement](event)
		if err != nil {
			return err
		}
		return ix.engine.Upsert(collection, event.ID, search.NewMovementDocument(m))
	case models.EntityProductAttribute:
		a, err := decodePayload[models.ProductAttribute](event)
		if err != nil {
			return err
		}
		return ix.engine.Upsert(collection, event.ID, search.NewAttributeDocument(a))
	}
	return nil
}

// collectionFor maps an entity tag to its search collection, or "" for
// entities that are not indexed directly.
func collectionFor(entity string) string {
	switch entity {
	case models.EntityProduct:
		return search.CollectionProducts
	case models.EntityStockMovement:
		return search.CollectionMovements
	case models.EntityProductAttribute:
		return search.CollectionAttributes
	default:
		return ""
	}
}

// ChangeBroadcaster receives decoded change events for fan-out to
// WebSocket clients.
type ChangeBroadcaster interface {
	BroadcastChange(event models.ChangeEvent)
}

// Broadcaster consumes change events and forwards them to a
// ChangeBroadcaster (the WebSocket hub).
type Broadcaster struct {
	bus  *Bus
	sink ChangeBroadcaster
}

// NewBroadcaster wires the broadcaster to a bus and a sink.
func NewBroadcaster(bus *Bus, sink ChangeBroadcaster) *Broadcaster {
	return &Broadcaster{bus: bus, sink: sink}
}

// Serve consumes events until ctx is cancelled. Implements suture.Service.
func (b *Broadcaster) Serve(ctx context.Context) error {
	messages, err := b.bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	logging.Info().Msg("websocket broadcaster subscribed to change events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := DecodeEvent(msg)
			if err != nil {
				logging.Warn().Err(err).Msg("undecodable change event skipped")
			} else {
				b.sink.BroadcastChange(event)
			}
			msg.Ack()
		}
	}
}
