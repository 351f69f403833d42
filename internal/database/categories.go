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

// CreateCategory inserts a new category.
func (db *DB) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, nullIfEmpty(c.Description), c.CreatedAt, nil,
	)
	observe("insert", "categories", start, err)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("category %q: %w", c.Name, ErrConflict)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category by ID.
func (db *DB) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	observe("select", "categories", start, err)
	return c, err
}

// UpdateCategory renames or re-describes a category. Already-indexed product
// documents keep the old name until the next reindex.
func (db *DB) UpdateCategory(ctx context.Context, c *models.Category) error {
	c.UpdatedAt = time.Now().UTC()

	start := time.Now()
	result, err := db.conn.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		c.Name, nullIfEmpty(c.Description), c.UpdatedAt, c.ID,
	)
	observe("update", "categories", start, err)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("category %q: %w", c.Name, ErrConflict)
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireRowAffected(result)
}

// DeleteCategory removes a category and detaches its products.
func (db *DB) DeleteCategory(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	start := time.Now()
	if _, err := tx.ExecContext(ctx, `UPDATE products SET category_id = NULL WHERE category_id = ?`, id); err != nil {
		observe("delete", "categories", start, err)
		return fmt.Errorf("failed to detach products: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	observe("delete", "categories", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if err := requireRowAffected(result); err != nil {
		return err
	}
	return tx.Commit()
}

// ListCategories returns all categories ordered by name.
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name`)
	observe("select", "categories", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer closeRows(rows)

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return items, nil
}

// ListCategoryIDs returns every category id, for cache-invalidation
// enumeration.
func (db *DB) ListCategoryIDs(ctx context.Context) ([]string, error) {
	return db.listIDs(ctx, "categories")
}

// listIDs returns the id column of a table. table must be a literal, never
// user input.
func (db *DB) listIDs(ctx context.Context, table string) ([]string, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM `+table+` ORDER BY id`)
	observe("select_ids", table, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s ids: %w", table, err)
	}
	defer closeRows(rows)

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s ids: %w", table, err)
	}
	return ids, nil
}

func scanCategory(s scanner) (*models.Category, error) {
	var c models.Category
	var description sql.NullString
	var updatedAt sql.NullTime

	err := s.Scan(&c.ID, &c.Name, &description, &c.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	c.Description = description.String
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return &c, nil
}
