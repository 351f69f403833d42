// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package search

import (
	"testing"
	"time"

	"github.com/storekeep/storekeep/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(t.TempDir())
	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	})
	return e
}

func testProduct(id, sku, name string) *models.Product {
	return &models.Product{
		ID:        id,
		SKU:       sku,
		Name:      name,
		Quantity:  10,
		Price:     9.99,
		CreatedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	e := newTestEngine(t)
	for i := 0; i < 2; i++ {
		if err := e.EnsureSchema(CollectionProducts); err != nil {
			t.Fatalf("EnsureSchema attempt %d failed: %v", i+1, err)
		}
	}

	count, err := e.CountDocuments(CollectionProducts)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty collection, got %d documents", count)
	}
}

func TestEnsureSchemaUnknownCollection(t *testing.T) {
	e := newTestEngine(t)
	if err := e.EnsureSchema("nonsense"); err == nil {
		t.Error("expected error for unknown collection")
	}
}

func TestUpsertAndCount(t *testing.T) {
	e := newTestEngine(t)

	p := testProduct("p1", "SKU-001", "Laptop Charger")
	if err := e.Upsert(CollectionProducts, p.ID, NewProductDocument(p)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Second upsert of the same id overwrites, not duplicates.
	p.Name = "Laptop Charger 65W"
	if err := e.Upsert(CollectionProducts, p.ID, NewProductDocument(p)); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	count, err := e.CountDocuments(CollectionProducts)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 document, got %d", count)
	}
}

func TestDeleteDocument(t *testing.T) {
	e := newTestEngine(t)

	p := testProduct("p1", "SKU-001", "Laptop Charger")
	if err := e.Upsert(CollectionProducts, p.ID, NewProductDocument(p)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := e.Delete(CollectionProducts, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := e.Delete(CollectionProducts, "missing"); err != nil {
		t.Errorf("deleting an absent id should not error, got: %v", err)
	}

	count, err := e.CountDocuments(CollectionProducts)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 documents after delete, got %d", count)
	}
}

func TestDeleteCollectionRecreates(t *testing.T) {
	e := newTestEngine(t)

	p := testProduct("p1", "SKU-001", "Laptop Charger")
	if err := e.Upsert(CollectionProducts, p.ID, NewProductDocument(p)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := e.DeleteCollection(CollectionProducts); err != nil {
		t.Fatalf("DeleteCollection failed: %v", err)
	}
	if err := e.EnsureSchema(CollectionProducts); err != nil {
		t.Fatalf("EnsureSchema after delete failed: %v", err)
	}

	count, err := e.CountDocuments(CollectionProducts)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected recreated collection to be empty, got %d documents", count)
	}
}

func TestSortTS(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt time.Time
		updatedAt time.Time
		want      float64
	}{
		{"updated wins", created, updated, float64(updated.Unix())},
		{"no update falls back to created", created, time.Time{}, float64(created.Unix())},
		{"both zero", time.Time{}, time.Time{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sortTS(tt.createdAt, tt.updatedAt); got != tt.want {
				t.Errorf("sortTS() = %v, want %v", got, tt.want)
			}
		})
	}
}
