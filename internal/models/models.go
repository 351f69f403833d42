// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

// Package models defines the core domain types shared across the application.
package models

import "time"

// MovementType identifies the direction of a stock movement.
type MovementType string

const (
	MovementIn         MovementType = "IN"
	MovementOut        MovementType = "OUT"
	MovementAdjustment MovementType = "ADJUSTMENT"
)

// Product is the central inventory entity. CategoryName and LocationName are
// joined display fields populated by list/get queries so that read models and
// search documents need no further lookups.
type Product struct {
	ID           string    `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	CategoryID   string    `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	LocationID   string    `json:"location_id,omitempty"`
	LocationName string    `json:"location_name,omitempty"`
	Quantity     int64     `json:"quantity"`
	MinQuantity  int64     `json:"min_quantity"`
	Price        float64   `json:"price"`
	LowStock     bool      `json:"low_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Category groups products. Renaming a category does not cascade into
// already-indexed product documents until the next reindex.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Location is a physical storage location (warehouse, shelf, bin).
type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// StockMovement records a single quantity change for a product. Movements are
// immutable once recorded; the product's on-hand quantity is adjusted in the
// same transaction that inserts the movement.
type StockMovement struct {
	ID          string       `json:"id"`
	ProductID   string       `json:"product_id"`
	ProductName string       `json:"product_name,omitempty"`
	ProductSKU  string       `json:"product_sku,omitempty"`
	Type        MovementType `json:"type"`
	Quantity    int64        `json:"quantity"`
	Note        string       `json:"note,omitempty"`
	CreatedBy   string       `json:"created_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ProductAttribute is a free-form name/value pair attached to a product.
type ProductAttribute struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	Name        string    `json:"name"`
	Value       string    `json:"value"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// Todo is a lightweight task item for warehouse staff.
type Todo struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
}

// User roles, ordered by privilege.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// User is an authenticated operator. PasswordHash is bcrypt and never
// serialized.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Page is a paginated query result. TotalPages is derived from TotalItems and
// PageSize at construction time.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPage builds a Page with derived TotalPages. An empty items slice is
// normalized to a non-nil slice so JSON encodes [] rather than null.
func NewPage[T any](items []T, page, pageSize int, totalItems int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	}
	return &Page[T]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// EmptyPage returns a page with intact pagination metadata and no items.
// Used when the search tier fails and the read path degrades to an empty
// result rather than an error.
func EmptyPage[T any](page, pageSize int) *Page[T] {
	return NewPage[T](nil, page, pageSize, 0)
}
