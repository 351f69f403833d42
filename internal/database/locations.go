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

// CreateLocation inserts a new storage location.
func (db *DB) CreateLocation(ctx context.Context, l *models.Location) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO locations (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.Name, nullIfEmpty(l.Description), l.CreatedAt, nil,
	)
	observe("insert", "locations", start, err)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("location %q: %w", l.Name, ErrConflict)
		}
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}

// GetLocation retrieves a location by ID.
func (db *DB) GetLocation(ctx context.Context, id string) (*models.Location, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM locations WHERE id = ?`, id)
	l, err := scanLocation(row)
	observe("select", "locations", start, err)
	return l, err
}

// UpdateLocation renames or re-describes a location.
func (db *DB) UpdateLocation(ctx context.Context, l *models.Location) error {
	l.UpdatedAt = time.Now().UTC()

	start := time.Now()
	result, err := db.conn.ExecContext(ctx,
		`UPDATE locations SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
		l.Name, nullIfEmpty(l.Description), l.UpdatedAt, l.ID,
	)
	observe("update", "locations", start, err)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("location %q: %w", l.Name, ErrConflict)
		}
		return fmt.Errorf("failed to update location: %w", err)
	}
	return requireRowAffected(result)
}

// DeleteLocation removes a location and detaches its products.
func (db *DB) DeleteLocation(ctx context.Context, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	start := time.Now()
	if _, err := tx.ExecContext(ctx, `UPDATE products SET location_id = NULL WHERE location_id = ?`, id); err != nil {
		observe("delete", "locations", start, err)
		return fmt.Errorf("failed to detach products: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	observe("delete", "locations", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	if err := requireRowAffected(result); err != nil {
		return err
	}
	return tx.Commit()
}

// ListLocations returns all locations ordered by name.
func (db *DB) ListLocations(ctx context.Context) ([]models.Location, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM locations ORDER BY name`)
	observe("select", "locations", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer closeRows(rows)

	items := []models.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locations: %w", err)
	}
	return items, nil
}

// ListLocationIDs returns every location id, for cache-invalidation
// enumeration.
func (db *DB) ListLocationIDs(ctx context.Context) ([]string, error) {
	return db.listIDs(ctx, "locations")
}

func scanLocation(s scanner) (*models.Location, error) {
	var l models.Location
	var description sql.NullString
	var updatedAt sql.NullTime

	err := s.Scan(&l.ID, &l.Name, &description, &l.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan location: %w", err)
	}

	l.Description = description.String
	if updatedAt.Valid {
		l.UpdatedAt = updatedAt.Time
	}
	return &l, nil
}
