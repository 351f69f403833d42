// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package cache

import (
	"context"

	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/metrics"
)

// SweepBounds parameterizes the enumerated cache sweep. The bounds are a
// heuristic, not a registry of populated keys: any cached page outside them
// (page 11, a pageSize that is not a step multiple, an arbitrary search term)
// is left stale until natural TTL expiry.
type SweepBounds struct {
	MaxPage  int
	MinSize  int
	MaxSize  int
	SizeStep int
}

// DefaultSweepBounds returns the production bounds: pages 1-10, page sizes
// 10-100 in steps of 10.
func DefaultSweepBounds() SweepBounds {
	return SweepBounds{MaxPage: 10, MinSize: 10, MaxSize: 100, SizeStep: 10}
}

// Sweeper clears the cache entries most likely to be stale after a bulk
// operation, by enumerating a bounded slice of the key space and issuing a
// delete for every combination. Delete failures are already swallowed by the
// Cache layer, so a sweep can never fail the operation that triggered it.
type Sweeper struct {
	cache      *Cache
	bounds     SweepBounds
	operations []string
}

// NewSweeper builds a sweeper over the given list operations. Zero-valued
// bounds fields fall back to the defaults.
func NewSweeper(c *Cache, bounds SweepBounds, operations ...string) *Sweeper {
	def := DefaultSweepBounds()
	if bounds.MaxPage <= 0 {
		bounds.MaxPage = def.MaxPage
	}
	if bounds.MinSize <= 0 {
		bounds.MinSize = def.MinSize
	}
	if bounds.MaxSize <= 0 {
		bounds.MaxSize = def.MaxSize
	}
	if bounds.SizeStep <= 0 {
		bounds.SizeStep = def.SizeStep
	}
	if len(operations) == 0 {
		operations = []string{OpProductList}
	}
	return &Sweeper{cache: c, bounds: bounds, operations: operations}
}

// Bounds returns the sweep bounds in use.
func (s *Sweeper) Bounds() SweepBounds {
	return s.bounds
}

// Sweep enumerates page/size/filter/term combinations and deletes each key:
// for every page and stepped page size, the unfiltered variant plus one
// variant per known category and per known location, each with both the
// absent-term and empty-string-term key forms. Returns the number of delete
// calls issued.
func (s *Sweeper) Sweep(ctx context.Context, categoryIDs, locationIDs []string) int {
	// nil and "" are distinct key segments; both were written historically.
	terms := []*string{nil, StringPtr("")}

	deletes := 0
	deleteKey := func(op string, page, size int, categoryID, locationID *string) {
		for _, term := range terms {
			s.cache.Delete(ctx, ListKey(op, page, size, categoryID, locationID, term))
			metrics.CacheSweepDeletes.Inc()
			deletes++
		}
	}

	for _, op := range s.operations {
		for page := 1; page <= s.bounds.MaxPage; page++ {
			for size := s.bounds.MinSize; size <= s.bounds.MaxSize; size += s.bounds.SizeStep {
				deleteKey(op, page, size, nil, nil)
				for _, categoryID := range categoryIDs {
					deleteKey(op, page, size, StringPtr(categoryID), nil)
				}
				for _, locationID := range locationIDs {
					deleteKey(op, page, size, nil, StringPtr(locationID))
				}
			}
		}
	}

	logging.Ctx(ctx).Info().
		Int("deletes", deletes).
		Int("categories", len(categoryIDs)).
		Int("locations", len(locationIDs)).
		Msg("cache sweep completed")

	return deletes
}
