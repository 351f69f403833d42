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

const attributeColumns = `
	a.id, a.product_id, p.name, a.name, a.value, a.created_at, a.updated_at`

const attributeJoins = `
	FROM product_attributes a
	LEFT JOIN products p ON p.id = a.product_id`

// AttributeListOptions filters and paginates ListAttributes.
type AttributeListOptions struct {
	Page      int
	PageSize  int
	ProductID string
	Term      string
}

// CreateAttribute inserts a name/value attribute on a product.
func (db *DB) CreateAttribute(ctx context.Context, a *models.ProductAttribute) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	var exists bool
	if err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) > 0 FROM products WHERE id = ?`, a.ProductID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to verify product: %w", err)
	}
	if !exists {
		return fmt.Errorf("product %s: %w", a.ProductID, ErrForeignKey)
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO product_attributes (id, product_id, name, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.ProductID, a.Name, a.Value, a.CreatedAt, nil,
	)
	observe("insert", "product_attributes", start, err)
	if err != nil {
		return fmt.Errorf("failed to create attribute: %w", err)
	}
	return nil
}

// GetAttribute retrieves an attribute by ID with the joined product name.
func (db *DB) GetAttribute(ctx context.Context, id string) (*models.ProductAttribute, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT`+attributeColumns+attributeJoins+` WHERE a.id = ?`, id)
	a, err := scanAttribute(row)
	observe("select", "product_attributes", start, err)
	return a, err
}

// UpdateAttribute overwrites an attribute's name and value.
func (db *DB) UpdateAttribute(ctx context.Context, a *models.ProductAttribute) error {
	a.UpdatedAt = time.Now().UTC()

	start := time.Now()
	result, err := db.conn.ExecContext(ctx,
		`UPDATE product_attributes SET name = ?, value = ?, updated_at = ? WHERE id = ?`,
		a.Name, a.Value, a.UpdatedAt, a.ID,
	)
	observe("update", "product_attributes", start, err)
	if err != nil {
		return fmt.Errorf("failed to update attribute: %w", err)
	}
	return requireRowAffected(result)
}

// DeleteAttribute removes an attribute.
func (db *DB) DeleteAttribute(ctx context.Context, id string) error {
	start := time.Now()
	result, err := db.conn.ExecContext(ctx, `DELETE FROM product_attributes WHERE id = ?`, id)
	observe("delete", "product_attributes", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete attribute: %w", err)
	}
	return requireRowAffected(result)
}

// ListAttributes returns a page of attributes with an optional product
// filter and LIKE term over attribute name, value and product name.
func (db *DB) ListAttributes(ctx context.Context, opts AttributeListOptions) (*models.Page[models.ProductAttribute], error) {
	where := ` WHERE 1=1`
	args := []any{}
	if opts.ProductID != "" {
		where += ` AND a.product_id = ?`
		args = append(args, opts.ProductID)
	}
	if opts.Term != "" {
		where += ` AND (lower(a.name) LIKE ? ESCAPE '\'
			OR lower(a.value) LIKE ? ESCAPE '\'
			OR lower(p.name) LIKE ? ESCAPE '\')`
		pattern := likePattern(opts.Term)
		args = append(args, pattern, pattern, pattern)
	}

	var total int64
	start := time.Now()
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*)`+attributeJoins+where, args...).Scan(&total)
	observe("count", "product_attributes", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to count attributes: %w", err)
	}

	page, pageSize := normalizePage(opts.Page, opts.PageSize)
	args = append(args, pageSize, (page-1)*pageSize)

	start = time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT`+attributeColumns+attributeJoins+where+
			` ORDER BY coalesce(a.updated_at, a.created_at) DESC, a.id LIMIT ? OFFSET ?`,
		args...)
	observe("select", "product_attributes", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list attributes: %w", err)
	}
	defer closeRows(rows)

	var items []models.ProductAttribute
	for rows.Next() {
		a, err := scanAttribute(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attributes: %w", err)
	}
	return models.NewPage(items, page, pageSize, total), nil
}

func scanAttribute(s scanner) (*models.ProductAttribute, error) {
	var a models.ProductAttribute
	var productName sql.NullString
	var updatedAt sql.NullTime

	err := s.Scan(&a.ID, &a.ProductID, &productName, &a.Name, &a.Value, &a.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan attribute: %w", err)
	}

	a.ProductName = productName.String
	if updatedAt.Valid {
		a.UpdatedAt = updatedAt.Time
	}
	return &a, nil
}
