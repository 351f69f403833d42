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

const movementColumns = `
	m.id, m.product_id, p.name, p.sku, m.type, m.quantity, m.note,
	m.created_by, m.created_at`

const movementJoins = `
	FROM stock_movements m
	LEFT JOIN products p ON p.id = m.product_id`

// MovementListOptions filters and paginates ListMovements.
type MovementListOptions struct {
	Page      int
	PageSize  int
	ProductID string
	Term      string
}

// CreateMovement records a stock movement and applies it to the product's
// on-hand quantity in the same transaction:
//
//   - IN adds the movement quantity
//   - OUT subtracts it, failing with ErrInsufficientStock if the result
//     would be negative
//   - ADJUSTMENT sets the on-hand quantity to the movement quantity
//     (a stocktake correction)
//
// Movements are immutable once committed.
func (db *DB) CreateMovement(ctx context.Context, m *models.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Quantity < 0 {
		return fmt.Errorf("movement quantity must not be negative")
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	var current int64
	start := time.Now()
	err = tx.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = ?`, m.ProductID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		observe("insert", "stock_movements", start, err)
		return fmt.Errorf("product %s: %w", m.ProductID, ErrForeignKey)
	}
	if err != nil {
		observe("insert", "stock_movements", start, err)
		return fmt.Errorf("failed to read product quantity: %w", err)
	}

	var next int64
	switch m.Type {
	case models.MovementIn:
		next = current + m.Quantity
	case models.MovementOut:
		next = current - m.Quantity
		if next < 0 {
			return fmt.Errorf("product %s has %d on hand, cannot remove %d: %w",
				m.ProductID, current, m.Quantity, ErrInsufficientStock)
		}
	case models.MovementAdjustment:
		next = m.Quantity
	default:
		return fmt.Errorf("unknown movement type %q", m.Type)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO stock_movements (id, product_id, type, quantity, note, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProductID, string(m.Type), m.Quantity,
		nullIfEmpty(m.Note), nullIfEmpty(m.CreatedBy), m.CreatedAt,
	); err != nil {
		observe("insert", "stock_movements", start, err)
		return fmt.Errorf("failed to record movement: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE products SET quantity = ?, updated_at = ? WHERE id = ?`,
		next, m.CreatedAt, m.ProductID,
	); err != nil {
		observe("insert", "stock_movements", start, err)
		return fmt.Errorf("failed to apply movement to product: %w", err)
	}

	err = tx.Commit()
	observe("insert", "stock_movements", start, err)
	if err != nil {
		return fmt.Errorf("failed to commit movement: %w", err)
	}
	return nil
}

// GetMovement retrieves a movement by ID with joined product fields.
func (db *DB) GetMovement(ctx context.Context, id string) (*models.StockMovement, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT`+movementColumns+movementJoins+` WHERE m.id = ?`, id)
	m, err := scanMovement(row)
	observe("select", "stock_movements", start, err)
	return m, err
}

// DeleteMovement removes the audit row only. The product's quantity is not
// rewound; use a compensating movement for that.
func (db *DB) DeleteMovement(ctx context.Context, id string) error {
	start := time.Now()
	result, err := db.conn.ExecContext(ctx, `DELETE FROM stock_movements WHERE id = ?`, id)
	observe("delete", "stock_movements", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
	}
	return requireRowAffected(result)
}

// ListMovements returns a page of movements, newest first, with an optional
// product filter and LIKE term over product name, SKU and note.
func (db *DB) ListMovements(ctx context.Context, opts MovementListOptions) (*models.Page[models.StockMovement], error) {
	where := ` WHERE 1=1`
	args := []any{}
	if opts.ProductID != "" {
		where += ` AND m.product_id = ?`
		args = append(args, opts.ProductID)
	}
	if opts.Term != "" {
		where += ` AND (lower(p.name) LIKE ? ESCAPE '\'
			OR lower(p.sku) LIKE ? ESCAPE '\'
			OR lower(m.note) LIKE ? ESCAPE '\')`
		pattern := likePattern(opts.Term)
		args = append(args, pattern, pattern, pattern)
	}

	var total int64
	start := time.Now()
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*)`+movementJoins+where, args...).Scan(&total)
	observe("count", "stock_movements", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to count movements: %w", err)
	}

	page, pageSize := normalizePage(opts.Page, opts.PageSize)
	args = append(args, pageSize, (page-1)*pageSize)

	start = time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT`+movementColumns+movementJoins+where+
			` ORDER BY m.created_at DESC, m.id LIMIT ? OFFSET ?`,
		args...)
	observe("select", "stock_movements", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer closeRows(rows)

	var items []models.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movements: %w", err)
	}
	return models.NewPage(items, page, pageSize, total), nil
}

func scanMovement(s scanner) (*models.StockMovement, error) {
	var m models.StockMovement
	var productName, productSKU, note, createdBy sql.NullString
	var movementType string

	err := s.Scan(&m.ID, &m.ProductID, &productName, &productSKU, &movementType,
		&m.Quantity, &note, &createdBy, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan movement: %w", err)
	}

	m.ProductName = productName.String
	m.ProductSKU = productSKU.String
	m.Type = models.MovementType(movementType)
	m.Note = note.String
	m.CreatedBy = createdBy.String
	return &m, nil
}
