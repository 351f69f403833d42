// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/metrics"
)

// Cache is the best-effort TTL cache every read-path caller goes through.
//
// No operation ever surfaces a store error: Get and Exists degrade to a miss,
// Set and Delete log and swallow. Callers therefore treat the cache as purely
// optional and must always be able to fall through to the primary store.
type Cache struct {
	store      Store
	defaultTTL time.Duration

	hits    atomic.Uint64
	misses  atomic.Uint64
	sets    atomic.Uint64
	deletes atomic.Uint64
}

// Stats is a point-in-time snapshot of cache activity. Entries is -1 when
// the backing store cannot report its size.
type Stats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Sets    uint64 `json:"sets"`
	Deletes uint64 `json:"deletes"`
	Entries int    `json:"entries"`
}

// New wraps store with best-effort semantics. defaultTTL applies to Set and
// SetJSON; SetWithTTL overrides it per call.
func New(store Store, defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = 60 * time.Second
	}
	return &Cache{store: store, defaultTTL: defaultTTL}
}

// DefaultTTL returns the TTL applied when no explicit TTL is given.
func (c *Cache) DefaultTTL() time.Duration {
	return c.defaultTTL
}

// Get returns the cached bytes for key, or a miss. A store error is logged
// and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache get failed, treating as miss")
		metrics.CacheErrors.WithLabelValues("get").Inc()
		metrics.CacheMisses.WithLabelValues(keyOperation(key)).Inc()
		c.misses.Add(1)
		return nil, false
	}
	if !ok {
		metrics.CacheMisses.WithLabelValues(keyOperation(key)).Inc()
		c.misses.Add(1)
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(keyOperation(key)).Inc()
	c.hits.Add(1)
	return value, true
}

// GetJSON decodes the cached value for key into out. A decode failure is a
// miss, never a corrupt object: out is left untouched and false is returned.
func (c *Cache) GetJSON(ctx context.Context, key string, out interface{}) bool {
	value, ok := c.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(value, out); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache entry undecodable, treating as miss")
		metrics.CacheErrors.WithLabelValues("decode").Inc()
		return false
	}
	return true
}

// Set stores value under key with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value []byte) {
	c.SetWithTTL(ctx, key, value, c.defaultTTL)
}

// SetWithTTL stores value under key with an explicit TTL. Store errors are
// logged and swallowed.
func (c *Cache) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	c.sets.Add(1)
	if err := c.store.Set(ctx, key, value, ttl); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache set failed, ignoring")
		metrics.CacheErrors.WithLabelValues("set").Inc()
	}
}

// SetJSON encodes value as JSON and stores it with the default TTL.
// Marshal failures are logged and swallowed.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	c.SetJSONWithTTL(ctx, key, value, c.defaultTTL)
}

// SetJSONWithTTL encodes value as JSON and stores it with an explicit TTL.
func (c *Cache) SetJSONWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache value unencodable, skipping set")
		metrics.CacheErrors.WithLabelValues("encode").Inc()
		return
	}
	c.SetWithTTL(ctx, key, data, ttl)
}

// Delete removes key. Store errors are logged and swallowed.
func (c *Cache) Delete(ctx context.Context, key string) {
	c.deletes.Add(1)
	if err := c.store.Delete(ctx, key); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache delete failed, ignoring")
		metrics.CacheErrors.WithLabelValues("delete").Inc()
	}
}

// Exists reports whether key holds a live entry. Store errors are reported
// as absent.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	ok, err := c.store.Exists(ctx, key)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("cache exists failed, treating as absent")
		metrics.CacheErrors.WithLabelValues("exists").Inc()
		return false
	}
	return ok
}

// DeleteByPattern is not supported by the underlying store primitives and
// logs a no-op. Bulk invalidation must use the enumeration strategy in
// Sweeper instead.
func (c *Cache) DeleteByPattern(ctx context.Context, pattern string) {
	logging.Ctx(ctx).Warn().
		Str("pattern", pattern).
		Msg("pattern-based cache delete is not supported; use the enumerated sweep")
}

// Stats snapshots the activity counters. Entry count is available only for
// stores that can report their size (the memory store).
func (c *Cache) Stats() Stats {
	entries := -1
	if lener, ok := c.store.(interface{ Len() int }); ok {
		entries = lener.Len()
	}
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Sets:    c.sets.Load(),
		Deletes: c.deletes.Load(),
		Entries: entries,
	}
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}
