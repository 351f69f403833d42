// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package api

import (
	"net/http"

	"github.com/storekeep/storekeep/internal/logging"
)

// SuggestDescriptionRequest asks for a generated product description.
type SuggestDescriptionRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	Category string `json:"category" validate:"max=128"`
}

// SuggestDescription handles POST /api/v1/ai/suggest-description. The
// suggestion is advisory: the caller decides whether to store it.
func (h *Handler) SuggestDescription(w http.ResponseWriter, r *http.Request) {
	if h.aiClient == nil {
		respondError(w, http.StatusNotImplemented, "AI suggestions are disabled")
		return
	}

	var req SuggestDescriptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	suggestion, err := h.aiClient.SuggestDescription(r.Context(), req.Name, req.Category)
	if err != nil {
		logging.Warn().Err(err).Msg("description suggestion failed")
		respondError(w, http.StatusBadGateway, "suggestion service unavailable")
		return
	}
	respondJSON(w, http.StatusOK, suggestion)
}
