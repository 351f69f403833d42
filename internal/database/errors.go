// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package database

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on unique-constraint violations (duplicate
	// SKU, username, etc.).
	ErrConflict = errors.New("already exists")

	// ErrInsufficientStock is returned when an OUT movement would drive a
	// product's on-hand quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrForeignKey is returned when a referenced category, location or
	// product does not exist.
	ErrForeignKey = errors.New("referenced entity does not exist")
)
