// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/storekeep/storekeep/internal/models"
)

type stubProductSource struct {
	products []models.Product
	err      error
}

func (s *stubProductSource) AllProducts(ctx context.Context) ([]models.Product, error) {
	return s.products, s.err
}

func TestReindexFromScratch(t *testing.T) {
	e := newTestEngine(t)

	source := &stubProductSource{}
	for i := 1; i <= 5; i++ {
		source.products = append(source.products, *testProduct(
			fmt.Sprintf("p%d", i),
			fmt.Sprintf("SKU-%03d", i),
			fmt.Sprintf("Widget %d", i),
		))
	}

	summary, err := e.Reindex(context.Background(), source)
	if err != nil {
		t.Fatalf("Reindex failed: %v", err)
	}
	if summary.TotalProducts != 5 || summary.IndexedCount != 5 || summary.FailedCount != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(summary.Errors) != 0 {
		t.Errorf("expected no errors, got %v", summary.Errors)
	}

	count, err := e.CountDocuments(CollectionProducts)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 documents, got %d", count)
	}
}

func TestReindexDropsStaleDocuments(t *testing.T) {
	e := newTestEngine(t)

	// A document whose source row no longer exists.
	stale := testProduct("stale", "SKU-OLD", "Discontinued Widget")
	if err := e.Upsert(CollectionProducts, stale.ID, NewProductDocument(stale)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	source := &stubProductSource{products: []models.Product{*testProduct("p1", "SKU-001", "Widget")}}
	if _, err := e.Reindex(context.Background(), source); err != nil {
		t.Fatalf("Reindex failed: %v", err)
	}

	count, err := e.CountDocuments(CollectionProducts)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected stale document dropped, got %d documents", count)
	}

	page, err := e.SearchProducts(context.Background(), ProductQuery{Term: "discontinued", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("SearchProducts failed: %v", err)
	}
	if page.TotalItems != 0 {
		t.Errorf("stale document still searchable: %v", resultIDs(page))
	}
}

func TestReindexEmptySource(t *testing.T) {
	e := newTestEngine(t)

	summary, err := e.Reindex(context.Background(), &stubProductSource{})
	if err != nil {
		t.Fatalf("Reindex failed: %v", err)
	}
	if summary.TotalProducts != 0 || summary.IndexedCount != 0 {
		t.Errorf("unexpected summary for empty source: %+v", summary)
	}

	// All schemas exist afterward.
	for _, collection := range Collections {
		if _, err := e.CountDocuments(collection); err != nil {
			t.Errorf("collection %s not usable after reindex: %v", collection, err)
		}
	}
}

func TestReindexSourceError(t *testing.T) {
	e := newTestEngine(t)

	wantErr := errors.New("primary store down")
	if _, err := e.Reindex(context.Background(), &stubProductSource{err: wantErr}); !errors.Is(err, wantErr) {
		t.Errorf("expected wrapped source error, got: %v", err)
	}
}

func TestReindexCancelled(t *testing.T) {
	e := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &stubProductSource{products: []models.Product{*testProduct("p1", "SKU-001", "Widget")}}
	if _, err := e.Reindex(ctx, source); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

// faultyIndexer fails Upsert for selected product IDs and delegates
// everything else to a real engine.
type faultyIndexer struct {
	engine  *Engine
	failIDs map[string]bool
}

func (f *faultyIndexer) DeleteCollection(collection string) error {
	return f.engine.DeleteCollection(collection)
}

func (f *faultyIndexer) EnsureSchema(collection string) error {
	return f.engine.EnsureSchema(collection)
}

func (f *faultyIndexer) Upsert(collection, id string, doc interface{}) error {
	if f.failIDs[id] {
		return fmt.Errorf("index write failed for %s", id)
	}
	return f.engine.Upsert(collection, id, doc)
}

func TestReindexPartialFailureSummary(t *testing.T) {
	e := newTestEngine(t)

	// 20 products, 12 of which fail to index: the summary counts every
	// failure but carries at most maxReindexErrors messages.
	const total, failing = 20, 12
	source := &stubProductSource{}
	idx := &faultyIndexer{engine: e, failIDs: map[string]bool{}}
	for i := 1; i <= total; i++ {
		id := fmt.Sprintf("p%d", i)
		source.products = append(source.products, *testProduct(
			id, fmt.Sprintf("SKU-%03d", i), fmt.Sprintf("Widget %d", i),
		))
		if i <= failing {
			idx.failIDs[id] = true
		}
	}

	summary, err := reindexInto(context.Background(), idx, source)
	if err != nil {
		t.Fatalf("reindex failed: %v", err)
	}

	if summary.TotalProducts != total {
		t.Errorf("expected %d total, got %d", total, summary.TotalProducts)
	}
	if summary.IndexedCount != total-failing {
		t.Errorf("expected %d indexed, got %d", total-failing, summary.IndexedCount)
	}
	if summary.FailedCount != failing {
		t.Errorf("expected %d failed, got %d", failing, summary.FailedCount)
	}
	if len(summary.Errors) != maxReindexErrors {
		t.Errorf("expected %d error messages, got %d", maxReindexErrors, len(summary.Errors))
	}

	count, err := e.CountDocuments(CollectionProducts)
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != total-failing {
		t.Errorf("expected %d documents, got %d", total-failing, count)
	}
}

func TestReindexFewFailuresAllEnumerated(t *testing.T) {
	e := newTestEngine(t)

	source := &stubProductSource{}
	idx := &faultyIndexer{engine: e, failIDs: map[string]bool{"p2": true, "p4": true}}
	for i := 1; i <= 5; i++ {
		source.products = append(source.products, *testProduct(
			fmt.Sprintf("p%d", i), fmt.Sprintf("SKU-%03d", i), fmt.Sprintf("Widget %d", i),
		))
	}

	summary, err := reindexInto(context.Background(), idx, source)
	if err != nil {
		t.Fatalf("reindex failed: %v", err)
	}
	if summary.IndexedCount != 3 || summary.FailedCount != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if len(summary.Errors) != 2 {
		t.Errorf("expected both failures enumerated, got %v", summary.Errors)
	}
}
