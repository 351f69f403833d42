// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

// Package inventory is the orchestrating service layer.
//
// Reads follow a two-tier policy: list requests with a free-text term go to
// the search index (degrading to an empty page if the index is unhealthy),
// all other list requests are cache-aside over the primary store with a
// short TTL. Writes go to the primary store first; after commit a change
// event is published fire-and-forget to keep the index and WebSocket
// clients current. Caches are never invalidated per write — the TTL bounds
// staleness, and only a mass reindex triggers the enumerated sweep.
package inventory

import (
	"github.com/storekeep/storekeep/internal/cache"
	"github.com/storekeep/storekeep/internal/database"
	"github.com/storekeep/storekeep/internal/events"
	"github.com/storekeep/storekeep/internal/models"
	"github.com/storekeep/storekeep/internal/search"
)

// AlertSink receives operational broadcasts (the WebSocket hub).
type AlertSink interface {
	BroadcastReindexCompleted(indexed, failed int, durationMS int64)
	BroadcastLowStock(p *models.Product)
}

// noopSink is used when no hub is wired (tests, headless runs).
type noopSink struct{}

func (noopSink) BroadcastReindexCompleted(int, int, int64) {}
func (noopSink) BroadcastLowStock(*models.Product)         {}

// Service orchestrates the primary store, cache, search index and change
// notifier.
type Service struct {
	db      *database.DB
	cache   *cache.Cache
	sweeper *cache.Sweeper
	search  *search.GuardedEngine
	bus     *events.Bus
	alerts  AlertSink
}

// Options configures New. Search and Alerts are optional; Search nil means
// term queries fall back to the primary store's LIKE matching.
type Options struct {
	DB      *database.DB
	Cache   *cache.Cache
	Sweeper *cache.Sweeper
	Search  *search.GuardedEngine
	Bus     *events.Bus
	Alerts  AlertSink
}

// New wires the service.
func New(opts Options) *Service {
	alerts := opts.Alerts
	if alerts == nil {
		alerts = noopSink{}
	}
	return &Service{
		db:      opts.DB,
		cache:   opts.Cache,
		sweeper: opts.Sweeper,
		search:  opts.Search,
		bus:     opts.Bus,
		alerts:  alerts,
	}
}

// CacheStats snapshots the page cache activity counters.
func (s *Service) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{Entries: -1}
	}
	return s.cache.Stats()
}

// searchEnabled reports whether term queries can use the search index.
func (s *Service) searchEnabled() bool {
	return s.search != nil
}

// notify publishes a change event fire-and-forget.
func (s *Service) notify(entity, op, id string, payload interface{}) {
	if s.bus != nil {
		s.bus.Notify(entity, op, id, payload)
	}
}

// ListQuery is a paginated list request. Term distinguishes absent (nil)
// from empty (""): both take the cache-aside path under distinct cache
// keys. A non-empty term is routed to the search tier when it is enabled;
// otherwise it falls back to cache-aside over primary-store LIKE
// filtering, keyed under its own term segment.
type ListQuery struct {
	Page       int
	PageSize   int
	CategoryID string
	LocationID string
	Term       *string
}

// hasTerm reports whether the query carries a non-empty search term.
func (q ListQuery) hasTerm() bool {
	return q.Term != nil && *q.Term != ""
}

// cacheable reports whether this query may be served from cache. Only
// termless (nil or empty term) queries are cached; the sweeper enumerates
// exactly those keys.
func (q ListQuery) cacheable() bool {
	return !q.hasTerm()
}
