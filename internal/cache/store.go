// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

// Package cache provides the TTL cache used by the list/search read path.
//
// The package is split into two layers:
//
//   - Store: a raw key/value store with per-entry TTL. Two backends exist,
//     an in-process map (memory.go) and Badger (badger.go). Store operations
//     return errors.
//   - Cache: the best-effort wrapper every caller goes through. Store errors
//     never escape it: a failing get/exists degrades to a miss, a failing
//     set/delete is logged and swallowed.
//
// Cache entries are point-in-time snapshots. Nothing keeps them consistent
// with the primary store between a write and their natural TTL expiry, except
// the explicit enumerated sweep in sweep.go.
package cache

import (
	"context"
	"time"
)

// Store is a key/value store with per-entry time-to-live.
//
// Get and Exists report presence of a live (non-expired) entry. Set always
// overwrites; entries are never patched in place.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}
