// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/inventory"
	"github.com/storekeep/storekeep/internal/models"
)

// MovementRequest is the create payload for stock movements. Movements are
// immutable once written, so there is no update payload.
type MovementRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Type      string `json:"type" validate:"required,oneof=IN OUT ADJUSTMENT"`
	Quantity  int64  `json:"quantity" validate:"min=0"`
	Note      string `json:"note" validate:"max=1024"`
}

// ListMovements handles GET /api/v1/movements.
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	page, pageSize := h.parsePagination(r)
	result, err := h.svc.ListMovements(r.Context(), inventory.MovementQuery{
		Page:      page,
		PageSize:  pageSize,
		ProductID: r.URL.Query().Get("product_id"),
		Term:      termParam(r),
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetMovement handles GET /api/v1/movements/{id}.
func (h *Handler) GetMovement(w http.ResponseWriter, r *http.Request) {
	movement, err := h.svc.GetMovement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, movement)
}

// CreateMovement handles POST /api/v1/movements. The acting username is
// recorded on the movement for the audit trail.
func (h *Handler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	movement := &models.StockMovement{
		ProductID: req.ProductID,
		Type:      models.MovementType(req.Type),
		Quantity:  req.Quantity,
		Note:      req.Note,
	}
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		movement.CreatedBy = claims.Username
	}

	created, err := h.svc.CreateMovement(r.Context(), movement)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// DeleteMovement handles DELETE /api/v1/movements/{id}. Removing a movement
// erases the audit row only; the product quantity is not rewound.
func (h *Handler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteMovement(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// AttributeRequest is the create/update payload for product attributes.
type AttributeRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Name      string `json:"name" validate:"required,max=128"`
	Value     string `json:"value" validate:"required,max=1024"`
}

// ListAttributes handles GET /api/v1/attributes.
func (h *Handler) ListAttributes(w http.ResponseWriter, r *http.Request) {
	page, pageSize := h.parsePagination(r)
	result, err := h.svc.ListAttributes(r.Context(), inventory.AttributeQuery{
		Page:      page,
		PageSize:  pageSize,
		ProductID: r.URL.Query().Get("product_id"),
		Term:      termParam(r),
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetAttribute handles GET /api/v1/attributes/{id}.
func (h *Handler) GetAttribute(w http.ResponseWriter, r *http.Request) {
	attribute, err := h.svc.GetAttribute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, attribute)
}

// CreateAttribute handles POST /api/v1/attributes.
func (h *Handler) CreateAttribute(w http.ResponseWriter, r *http.Request) {
	var req AttributeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.svc.CreateAttribute(r.Context(), &models.ProductAttribute{
		ProductID: req.ProductID,
		Name:      req.Name,
		Value:     req.Value,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// UpdateAttribute handles PUT /api/v1/attributes/{id}.
func (h *Handler) UpdateAttribute(w http.ResponseWriter, r *http.Request) {
	var req AttributeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.svc.UpdateAttribute(r.Context(), &models.ProductAttribute{
		ID:        chi.URLParam(r, "id"),
		ProductID: req.ProductID,
		Name:      req.Name,
		Value:     req.Value,
	})
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteAttribute handles DELETE /api/v1/attributes/{id}.
func (h *Handler) DeleteAttribute(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAttribute(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
