// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storekeep/storekeep/internal/inventory"
	"github.com/storekeep/storekeep/internal/models"
)

// ProductRequest is the create/update payload for products.
type ProductRequest struct {
	SKU         string  `json:"sku" validate:"required,max=64"`
	Name        string  `json:"name" validate:"required,max=256"`
	Description string  `json:"description" validate:"max=4096"`
	CategoryID  string  `json:"category_id" validate:"omitempty,uuid"`
	LocationID  string  `json:"location_id" validate:"omitempty,uuid"`
	MinQuantity int64   `json:"min_quantity" validate:"min=0"`
	Price       float64 `json:"price" validate:"min=0"`
}

func (req *ProductRequest) model(id string) *models.Product {
	return &models.Product{
		ID:          id,
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		LocationID:  req.LocationID,
		MinQuantity: req.MinQuantity,
		Price:       req.Price,
	}
}

// ListProducts handles GET /api/v1/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := h.parsePagination(r)
	query := inventory.ListQuery{
		Page:       page,
		PageSize:   pageSize,
		CategoryID: r.URL.Query().Get("category_id"),
		LocationID: r.URL.Query().Get("location_id"),
		Term:       termParam(r),
	}

	result, err := h.svc.ListProducts(r.Context(), query)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetProduct handles GET /api/v1/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), req.model(""))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/{id}. Quantity is absent from
// the payload on purpose: stock levels only change through movements.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.svc.UpdateProduct(r.Context(), req.model(chi.URLParam(r, "id")))
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
