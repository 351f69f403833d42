// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package inventory

import (
	"context"
	"errors"

	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/search"
)

// ErrSearchDisabled is returned by index maintenance operations when no
// search engine is configured.
var ErrSearchDisabled = errors.New("search index is disabled")

// Reindex rebuilds the products collection from the primary store, then
// performs the bounded cache sweep so stale cached lists do not outlive the
// rebuilt index, and finally broadcasts completion to WebSocket clients.
//
// The sweep enumerates list keys for every page/size combination within the
// configured bounds, crossed with every category and location id and both
// termless key forms. Keys outside the bounds are left to TTL expiry.
func (s *Service) Reindex(ctx context.Context) (*search.ReindexSummary, error) {
	if !s.searchEnabled() {
		return nil, ErrSearchDisabled
	}

	summary, err := s.search.Engine().Reindex(ctx, s.db)
	if err != nil {
		return nil, err
	}

	categoryIDs, err := s.db.ListCategoryIDs(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("sweep proceeding without category ids")
	}
	locationIDs, err := s.db.ListLocationIDs(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("sweep proceeding without location ids")
	}
	s.sweeper.Sweep(ctx, categoryIDs, locationIDs)

	s.alerts.BroadcastReindexCompleted(summary.IndexedCount, summary.FailedCount, summary.DurationMS)
	return summary, nil
}

// SearchStats reports per-collection document counts.
func (s *Service) SearchStats(ctx context.Context) (map[string]uint64, error) {
	if !s.searchEnabled() {
		return nil, ErrSearchDisabled
	}

	stats := make(map[string]uint64, len(search.Collections))
	for _, collection := range search.Collections {
		count, err := s.search.Engine().CountDocuments(collection)
		if err != nil {
			return nil, err
		}
		stats[collection] = count
	}
	return stats, nil
}
