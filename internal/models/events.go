// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package models

import "time"

// Entity type tags carried in change events and WebSocket broadcasts.
const (
	EntityProduct          = "product"
	EntityCategory         = "category"
	EntityLocation         = "location"
	EntityStockMovement    = "stock_movement"
	EntityProductAttribute = "product_attribute"
	EntityTodo             = "todo"
)

// Change operation tags.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// ChangeEvent describes a committed mutation of a primary-store entity.
// Events are published after the primary-store commit succeeds and are
// delivered best-effort: no retry, no ordering guarantee between concurrent
// writes.
type ChangeEvent struct {
	Entity     string      `json:"entity"`
	Op         string      `json:"op"`
	ID         string      `json:"id"`
	Payload    interface{} `json:"payload,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewChangeEvent stamps a change event with the current time.
func NewChangeEvent(entity, op, id string, payload interface{}) ChangeEvent {
	return ChangeEvent{
		Entity:     entity,
		Op:         op,
		ID:         id,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}
