// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package inventory

import (
	"context"

	"github.com/storekeep/storekeep/internal/cache"
	"github.com/storekeep/storekeep/internal/database"
	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/models"
	"github.com/storekeep/storekeep/internal/search"
)

// optionalSegment maps "" to an absent cache-key segment.
func optionalSegment(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ListProducts serves a paginated product list.
//
// With a non-empty term and a healthy index the search tier answers,
// bypassing the cache; any search failure (including breaker fast-fails)
// degrades to an empty page with intact pagination metadata — never an
// error, never a primary-store fallback that would stampede the database.
// Every other request is cache-aside over the primary store, keyed by the
// full query including the term segment, so a term query with search
// disabled still populates its own cache entry (LIKE filtering at the
// store).
func (s *Service) ListProducts(ctx context.Context, q ListQuery) (*models.Page[models.Product], error) {
	if q.hasTerm() && s.searchEnabled() {
		page, err := s.search.SearchProducts(ctx, search.ProductQuery{
			Term:       *q.Term,
			CategoryID: q.CategoryID,
			LocationID: q.LocationID,
			Page:       q.Page,
			PageSize:   q.PageSize,
		})
		if err != nil {
			logging.Warn().Err(err).Str("term", *q.Term).Msg("product search degraded to empty page")
			return models.EmptyPage[models.Product](q.Page, q.PageSize), nil
		}
		return page, nil
	}

	key := cache.ListKey(cache.OpProductList, q.Page, q.PageSize,
		optionalSegment(q.CategoryID), optionalSegment(q.LocationID), q.Term)

	var cached models.Page[models.Product]
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	opts := database.ProductListOptions{
		Page:       q.Page,
		PageSize:   q.PageSize,
		CategoryID: q.CategoryID,
		LocationID: q.LocationID,
	}
	if q.hasTerm() {
		opts.Term = *q.Term
	}
	page, err := s.db.ListProducts(ctx, opts)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, page)
	return page, nil
}

// GetProduct reads a single product. Single-entity reads always hit the
// primary store; only lists are cached.
func (s *Service) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.db.GetProduct(ctx, id)
}

// CreateProduct stores a product and notifies subscribers post-commit.
func (s *Service) CreateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if err := s.db.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	created, err := s.db.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	s.notify(models.EntityProduct, models.OpCreated, created.ID, created)
	return created, nil
}

// UpdateProduct overwrites a product's mutable fields and notifies
// subscribers post-commit.
func (s *Service) UpdateProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	if err := s.db.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}

	updated, err := s.db.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	s.notify(models.EntityProduct, models.OpUpdated, updated.ID, updated)
	return updated, nil
}

// DeleteProduct removes a product and notifies subscribers post-commit.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.db.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.notify(models.EntityProduct, models.OpDeleted, id, nil)
	return nil
}
