// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package search

import (
	"time"

	"github.com/storekeep/storekeep/internal/models"
)

// Logical collection names. Each document id equals the primary-store
// entity id.
const (
	CollectionProducts   = "products"
	CollectionMovements  = "stock-movements"
	CollectionAttributes = "product-attributes"
)

// Collections lists every logical collection.
var Collections = []string{CollectionProducts, CollectionMovements, CollectionAttributes}

// ProductDocument is the denormalized read model indexed for a product.
// Joined display names (category, location) are captured at indexing time:
// a later category rename does not cascade into documents already indexed
// and stays stale until the next reindex.
type ProductDocument struct {
	ID           string    `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	LocationID   string    `json:"location_id"`
	LocationName string    `json:"location_name"`
	Quantity     float64   `json:"quantity"`
	MinQuantity  float64   `json:"min_quantity"`
	Price        float64   `json:"price"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// SortTS is the most recent of UpdatedAt/CreatedAt as Unix seconds,
	// precomputed at indexing time so results can sort on one field.
	SortTS float64 `json:"sort_ts"`
}

// MovementDocument is the denormalized read model for a stock movement.
type MovementDocument struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	ProductSKU  string    `json:"product_sku"`
	Type        string    `json:"type"`
	Quantity    float64   `json:"quantity"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
	SortTS      float64   `json:"sort_ts"`
}

// AttributeDocument is the denormalized read model for a product attribute.
type AttributeDocument struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Name        string    `json:"name"`
	Value       string    `json:"value"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	SortTS      float64   `json:"sort_ts"`
}

// sortTS picks whichever timestamp is populated, preferring the update time.
func sortTS(createdAt, updatedAt time.Time) float64 {
	if !updatedAt.IsZero() && updatedAt.After(createdAt) {
		return float64(updatedAt.Unix())
	}
	if createdAt.IsZero() {
		return 0
	}
	return float64(createdAt.Unix())
}

// NewProductDocument builds the index document for a product.
func NewProductDocument(p *models.Product) *ProductDocument {
	return &ProductDocument{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		LocationID:   p.LocationID,
		LocationName: p.LocationName,
		Quantity:     float64(p.Quantity),
		MinQuantity:  float64(p.MinQuantity),
		Price:        p.Price,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		SortTS:       sortTS(p.CreatedAt, p.UpdatedAt),
	}
}

// NewMovementDocument builds the index document for a stock movement.
func NewMovementDocument(m *models.StockMovement) *MovementDocument {
	return &MovementDocument{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		ProductSKU:  m.ProductSKU,
		Type:        string(m.Type),
		Quantity:    float64(m.Quantity),
		Note:        m.Note,
		CreatedAt:   m.CreatedAt,
		SortTS:      sortTS(m.CreatedAt, time.Time{}),
	}
}

// NewAttributeDocument builds the index document for a product attribute.
func NewAttributeDocument(a *models.ProductAttribute) *AttributeDocument {
	return &AttributeDocument{
		ID:          a.ID,
		ProductID:   a.ProductID,
		ProductName: a.ProductName,
		Name:        a.Name,
		Value:       a.Value,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		SortTS:      sortTS(a.CreatedAt, a.UpdatedAt),
	}
}

// Product converts a product document back into the API read model.
func (d *ProductDocument) Product() models.Product {
	return models.Product{
		ID:           d.ID,
		SKU:          d.SKU,
		Name:         d.Name,
		Description:  d.Description,
		CategoryID:   d.CategoryID,
		CategoryName: d.CategoryName,
		LocationID:   d.LocationID,
		LocationName: d.LocationName,
		Quantity:     int64(d.Quantity),
		MinQuantity:  int64(d.MinQuantity),
		Price:        d.Price,
		LowStock:     d.MinQuantity > 0 && d.Quantity <= d.MinQuantity,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
