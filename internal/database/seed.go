// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package database

import (
	"context"
	"fmt"

	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/models"
)

// SeedDemoData inserts a small demo inventory when the products table is
// empty. Enabled via database.seed_data; intended for first-run evaluation,
// never for production data.
func (db *DB) SeedDemoData(ctx context.Context) error {
	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM products`).Scan(&count); err != nil {
		return fmt.Errorf("failed to check for existing data: %w", err)
	}
	if count > 0 {
		return nil
	}

	warehouse := &models.Location{Name: "Main Warehouse", Description: "Primary storage"}
	if err := db.CreateLocation(ctx, warehouse); err != nil {
		return err
	}

	categories := map[string]*models.Category{
		"Electronics": {Name: "Electronics"},
		"Office":      {Name: "Office", Description: "Office supplies and furniture"},
	}
	for _, c := range categories {
		if err := db.CreateCategory(ctx, c); err != nil {
			return err
		}
	}

	products := []*models.Product{
		{SKU: "ELEC-0001", Name: "Laptop Charger 65W", Description: "USB-C wall charger",
			CategoryID: categories["Electronics"].ID, LocationID: warehouse.ID, MinQuantity: 5, Price: 39.95},
		{SKU: "ELEC-0002", Name: "Wireless Mouse", Description: "2.4 GHz optical mouse",
			CategoryID: categories["Electronics"].ID, LocationID: warehouse.ID, MinQuantity: 10, Price: 19.90},
		{SKU: "OFFC-0001", Name: "Desk Lamp", Description: "LED desk lamp with dimmer",
			CategoryID: categories["Office"].ID, LocationID: warehouse.ID, MinQuantity: 3, Price: 24.50},
	}
	for _, p := range products {
		if err := db.CreateProduct(ctx, p); err != nil {
			return err
		}
		movement := &models.StockMovement{
			ProductID: p.ID,
			Type:      models.MovementIn,
			Quantity:  20,
			Note:      "initial stock",
		}
		if err := db.CreateMovement(ctx, movement); err != nil {
			return err
		}
	}

	logging.Info().Int("products", len(products)).Msg("demo data seeded")
	return nil
}
