// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/storekeep/storekeep/internal/models"
)

// productColumns is the SELECT list shared by all product reads, with
// category and location display names joined in.
const productColumns = `
	p.id, p.sku, p.name, p.description, p.category_id, c.name,
	p.location_id, l.name, p.quantity, p.min_quantity, p.price,
	p.created_at, p.updated_at`

const productJoins = `
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN locations l ON l.id = p.location_id`

// ProductListOptions filters and paginates ListProducts. Term is used as a
// LIKE contains-match over name, SKU and description; it is the degraded
// fallback, not the search index.
type ProductListOptions struct {
	Page       int
	PageSize   int
	CategoryID string
	LocationID string
	Term       string
}

// CreateProduct inserts a new product. A missing ID is generated.
func (db *DB) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO products (id, sku, name, description, category_id, location_id,
			quantity, min_quantity, price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SKU, p.Name, nullIfEmpty(p.Description),
		nullIfEmpty(p.CategoryID), nullIfEmpty(p.LocationID),
		p.Quantity, p.MinQuantity, p.Price, p.CreatedAt, nil,
	)
	observe("insert", "products", start, err)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("sku %q: %w", p.SKU, ErrConflict)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by ID with joined display names.
func (db *DB) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT`+productColumns+productJoins+` WHERE p.id = ?`, id)
	p, err := scanProduct(row)
	observe("select", "products", start, err)
	return p, err
}

// UpdateProduct overwrites all mutable fields of an existing product.
// Quantity is not touched here; it changes only through stock movements.
func (db *DB) UpdateProduct(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()

	start := time.Now()
	result, err := db.conn.ExecContext(ctx,
		`UPDATE products SET sku = ?, name = ?, description = ?, category_id = ?,
			location_id = ?, min_quantity = ?, price = ?, updated_at = ?
		WHERE id = ?`,
		p.SKU, p.Name, nullIfEmpty(p.Description),
		nullIfEmpty(p.CategoryID), nullIfEmpty(p.LocationID),
		p.MinQuantity, p.Price, p.UpdatedAt, p.ID,
	)
	observe("update", "products", start, err)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("sku %q: %w", p.SKU, ErrConflict)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return requireRowAffected(result)
}

// DeleteProduct removes a product and its attributes. Movements are kept as
// an audit trail.
func (db *DB) DeleteProduct(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	start := time.Now()
	if _, err := tx.ExecContext(ctx, `DELETE FROM product_attributes WHERE product_id = ?`, id); err != nil {
		observe("delete", "products", start, err)
		return fmt.Errorf("failed to delete product attributes: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	observe("delete", "products", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if err := requireRowAffected(result); err != nil {
		return err
	}
	return tx.Commit()
}

// ListProducts returns a page of products with optional category/location
// filters and an optional LIKE term over name, SKU and description.
func (db *DB) ListProducts(ctx context.Context, opts ProductListOptions) (*models.Page[models.Product], error) {
	where := ` WHERE 1=1`
	args := []any{}
	if opts.CategoryID != "" {
		where += ` AND p.category_id = ?`
		args = append(args, opts.CategoryID)
	}
	if opts.LocationID != "" {
		where += ` AND p.location_id = ?`
		args = append(args, opts.LocationID)
	}
	if opts.Term != "" {
		where += ` AND (lower(p.name) LIKE ? ESCAPE '\'
			OR lower(p.sku) LIKE ? ESCAPE '\'
			OR lower(p.description) LIKE ? ESCAPE '\')`
		pattern := likePattern(opts.Term)
		args = append(args, pattern, pattern, pattern)
	}

	var total int64
	start := time.Now()
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*)`+productJoins+where, args...).Scan(&total)
	observe("count", "products", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	page, pageSize := normalizePage(opts.Page, opts.PageSize)
	args = append(args, pageSize, (page-1)*pageSize)

	start = time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT`+productColumns+productJoins+where+
			` ORDER BY coalesce(p.updated_at, p.created_at) DESC, p.id LIMIT ? OFFSET ?`,
		args...)
	observe("select", "products", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer closeRows(rows)

	items, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	return models.NewPage(items, page, pageSize, total), nil
}

// AllProducts streams every product (with joined names) for a full reindex.
func (db *DB) AllProducts(ctx context.Context) ([]models.Product, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT`+productColumns+productJoins+` ORDER BY p.created_at, p.id`)
	observe("select_all", "products", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	defer closeRows(rows)
	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return items, nil
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*models.Product, error) {
	var p models.Product
	var description, categoryID, categoryName, locationID, locationName sql.NullString
	var updatedAt sql.NullTime

	err := s.Scan(&p.ID, &p.SKU, &p.Name, &description, &categoryID, &categoryName,
		&locationID, &locationName, &p.Quantity, &p.MinQuantity, &p.Price,
		&p.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	p.Description = description.String
	p.CategoryID = categoryID.String
	p.CategoryName = categoryName.String
	p.LocationID = locationID.String
	p.LocationName = locationName.String
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	p.LowStock = p.MinQuantity > 0 && p.Quantity <= p.MinQuantity
	return &p, nil
}
