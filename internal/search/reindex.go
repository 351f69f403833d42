// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package search

import (
	"context"
	"fmt"
	"time"

	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/metrics"
	"github.com/storekeep/storekeep/internal/models"
)

// maxReindexErrors caps the error messages carried in a reindex summary.
// Failures beyond the cap still count, they just aren't enumerated.
const maxReindexErrors = 10

// ProductSource supplies every product for a full reindex, with joined
// category/location display names populated.
type ProductSource interface {
	AllProducts(ctx context.Context) ([]models.Product, error)
}

// ReindexSummary reports the outcome of a full product reindex.
type ReindexSummary struct {
	TotalProducts int      `json:"total_products"`
	IndexedCount  int      `json:"indexed_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors,omitempty"`
	DurationMS    int64    `json:"duration_ms"`
}

// productIndexer is the index-write surface a reindex drives. *Engine
// satisfies it; tests substitute fault-injecting wrappers.
type productIndexer interface {
	DeleteCollection(collection string) error
	EnsureSchema(collection string) error
	Upsert(collection, id string, doc interface{}) error
}

// Reindex rebuilds the products collection from scratch: the existing
// collection is dropped, every collection's schema is (re)ensured, and all
// products from the source are indexed one by one. Per-document failures do
// not abort the run.
//
// Movements and attributes keep their collections; only their schemas are
// verified, since their documents are immutable or re-upserted on write.
func (e *Engine) Reindex(ctx context.Context, source ProductSource) (*ReindexSummary, error) {
	return reindexInto(ctx, e, source)
}

func reindexInto(ctx context.Context, idx productIndexer, source ProductSource) (*ReindexSummary, error) {
	start := time.Now()
	logging.Info().Msg("full reindex started")

	if err := idx.DeleteCollection(CollectionProducts); err != nil {
		return nil, fmt.Errorf("reindex failed: %w", err)
	}
	for _, collection := range Collections {
		if err := idx.EnsureSchema(collection); err != nil {
			return nil, fmt.Errorf("reindex failed: %w", err)
		}
	}

	products, err := source.AllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("reindex failed to load products: %w", err)
	}

	summary := &ReindexSummary{TotalProducts: len(products)}
	for i := range products {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("reindex aborted: %w", err)
		}
		p := &products[i]
		if err := idx.Upsert(CollectionProducts, p.ID, NewProductDocument(p)); err != nil {
			summary.FailedCount++
			if len(summary.Errors) < maxReindexErrors {
				summary.Errors = append(summary.Errors, fmt.Sprintf("product %s: %v", p.ID, err))
			}
			continue
		}
		summary.IndexedCount++
	}

	elapsed := time.Since(start)
	summary.DurationMS = elapsed.Milliseconds()

	metrics.ReindexDuration.Observe(elapsed.Seconds())
	metrics.ReindexDocuments.WithLabelValues("indexed").Add(float64(summary.IndexedCount))
	metrics.ReindexDocuments.WithLabelValues("failed").Add(float64(summary.FailedCount))

	logging.Info().
		Int("total", summary.TotalProducts).
		Int("indexed", summary.IndexedCount).
		Int("failed", summary.FailedCount).
		Dur("duration", elapsed).
		Msg("full reindex finished")
	return summary, nil
}
