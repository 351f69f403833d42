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

// CreateTodo inserts a task item.
func (db *DB) CreateTodo(ctx context.Context, t *models.Todo) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO todos (id, title, completed, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Completed, t.DueDate, t.CreatedAt, nil,
	)
	observe("insert", "todos", start, err)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// GetTodo retrieves a task by ID.
func (db *DB) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, title, completed, due_date, created_at, updated_at FROM todos WHERE id = ?`, id)
	t, err := scanTodo(row)
	observe("select", "todos", start, err)
	return t, err
}

// UpdateTodo overwrites a task's title, completion state and due date.
func (db *DB) UpdateTodo(ctx context.Context, t *models.Todo) error {
	t.UpdatedAt = time.Now().UTC()

	start := time.Now()
	result, err := db.conn.ExecContext(ctx,
		`UPDATE todos SET title = ?, completed = ?, due_date = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Completed, t.DueDate, t.UpdatedAt, t.ID,
	)
	observe("update", "todos", start, err)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return requireRowAffected(result)
}

// DeleteTodo removes a task.
func (db *DB) DeleteTodo(ctx context.Context, id string) error {
	start := time.Now()
	result, err := db.conn.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	observe("delete", "todos", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return requireRowAffected(result)
}

// ListTodos returns all tasks, incomplete first, then by due date.
func (db *DB) ListTodos(ctx context.Context) ([]models.Todo, error) {
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, completed, due_date, created_at, updated_at
		FROM todos ORDER BY completed, due_date NULLS LAST, created_at`)
	observe("select", "todos", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer closeRows(rows)

	items := []models.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return items, nil
}

func scanTodo(s scanner) (*models.Todo, error) {
	var t models.Todo
	var dueDate, updatedAt sql.NullTime

	err := s.Scan(&t.ID, &t.Title, &t.Completed, &dueDate, &t.CreatedAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan todo: %w", err)
	}

	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	if updatedAt.Valid {
		t.UpdatedAt = updatedAt.Time
	}
	return &t, nil
}
