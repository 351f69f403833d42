// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package api

import (
	"errors"
	"net/http"

	"github.com/storekeep/storekeep/internal/inventory"
	"github.com/storekeep/storekeep/internal/logging"
)

// Reindex handles POST /api/v1/admin/reindex. It rebuilds the product
// search index synchronously and returns the rebuild summary; WebSocket
// clients additionally receive a completion broadcast.
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Reindex(r.Context())
	if err != nil {
		if errors.Is(err, inventory.ErrSearchDisabled) {
			respondError(w, http.StatusConflict, "search index is disabled")
			return
		}
		logging.Error().Err(err).Msg("reindex failed")
		respondError(w, http.StatusInternalServerError, "reindex failed")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// CacheStats handles GET /api/v1/admin/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.CacheStats())
}

// SearchStats handles GET /api/v1/admin/search/stats.
func (h *Handler) SearchStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.SearchStats(r.Context())
	if err != nil {
		if errors.Is(err, inventory.ErrSearchDisabled) {
			respondError(w, http.StatusConflict, "search index is disabled")
			return
		}
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
