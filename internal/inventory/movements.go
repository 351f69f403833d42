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
)

// MovementQuery paginates and filters movement lists.
type MovementQuery struct {
	Page      int
	PageSize  int
	ProductID string
	Term      *string
}

// ListMovements serves a paginated movement list. Term queries go to the
// search tier when it is enabled (degrading to an empty page on failure);
// with search disabled they fall back to cache-aside over the primary
// store under the term-keyed entry. Product-filtered queries bypass the
// cache: the sweeper cannot enumerate per-product keys.
func (s *Service) ListMovements(ctx context.Context, q MovementQuery) (*models.Page[models.StockMovement], error) {
	term := ""
	if q.Term != nil {
		term = *q.Term
	}

	if term != "" && s.searchEnabled() {
		page, err := s.search.SearchMovements(ctx, term, q.Page, q.PageSize)
		if err != nil {
			logging.Warn().Err(err).Str("term", term).Msg("movement search degraded to empty page")
			return models.EmptyPage[models.StockMovement](q.Page, q.PageSize), nil
		}
		return page, nil
	}

	if q.ProductID != "" {
		return s.db.ListMovements(ctx, database.MovementListOptions{
			Page: q.Page, PageSize: q.PageSize, ProductID: q.ProductID, Term: term,
		})
	}

	key := cache.ListKey(cache.OpMovementList, q.Page, q.PageSize, nil, nil, q.Term)

	var cached models.Page[models.StockMovement]
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	page, err := s.db.ListMovements(ctx, database.MovementListOptions{
		Page: q.Page, PageSize: q.PageSize, Term: term,
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, page)
	return page, nil
}

// GetMovement reads a single movement.
func (s *Service) GetMovement(ctx context.Context, id string) (*models.StockMovement, error) {
	return s.db.GetMovement(ctx, id)
}

// CreateMovement records a movement, applies it to the product's on-hand
// quantity, and notifies subscribers of both the movement and the changed
// product. A low-stock alert is broadcast when the movement drops the
// product to or below its minimum.
func (s *Service) CreateMovement(ctx context.Context, m *models.StockMovement) (*models.StockMovement, error) {
	if err := s.db.CreateMovement(ctx, m); err != nil {
		return nil, err
	}

	created, err := s.db.GetMovement(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	s.notify(models.EntityStockMovement, models.OpCreated, created.ID, created)

	product, err := s.db.GetProduct(ctx, m.ProductID)
	if err == nil {
		s.notify(models.EntityProduct, models.OpUpdated, product.ID, product)
		if product.LowStock {
			s.alerts.BroadcastLowStock(product)
		}
	} else {
		logging.Warn().Err(err).Str("product_id", m.ProductID).Msg("post-movement product refresh failed")
	}

	return created, nil
}

// DeleteMovement removes the audit row without rewinding stock.
func (s *Service) DeleteMovement(ctx context.Context, id string) error {
	if err := s.db.DeleteMovement(ctx, id); err != nil {
		return err
	}
	s.notify(models.EntityStockMovement, models.OpDeleted, id, nil)
	return nil
}

// AttributeQuery paginates and filters attribute lists.
type AttributeQuery struct {
	Page      int
	PageSize  int
	ProductID string
	Term      *string
}

// ListAttributes mirrors ListMovements' routing for product attributes.
func (s *Service) ListAttributes(ctx context.Context, q AttributeQuery) (*models.Page[models.ProductAttribute], error) {
	term := ""
	if q.Term != nil {
		term = *q.Term
	}

	if term != "" && s.searchEnabled() {
		page, err := s.search.SearchAttributes(ctx, term, q.Page, q.PageSize)
		if err != nil {
			logging.Warn().Err(err).Str("term", term).Msg("attribute search degraded to empty page")
			return models.EmptyPage[models.ProductAttribute](q.Page, q.PageSize), nil
		}
		return page, nil
	}

	if q.ProductID != "" {
		return s.db.ListAttributes(ctx, database.AttributeListOptions{
			Page: q.Page, PageSize: q.PageSize, ProductID: q.ProductID, Term: term,
		})
	}

	key := cache.ListKey(cache.OpAttributeList, q.Page, q.PageSize, nil, nil, q.Term)

	var cached models.Page[models.ProductAttribute]
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	page, err := s.db.ListAttributes(ctx, database.AttributeListOptions{
		Page: q.Page, PageSize: q.PageSize, Term: term,
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, page)
	return page, nil
}

// GetAttribute reads a single attribute.
func (s *Service) GetAttribute(ctx context.Context, id string) (*models.ProductAttribute, error) {
	return s.db.GetAttribute(ctx, id)
}

// CreateAttribute stores an attribute and notifies subscribers.
func (s *Service) CreateAttribute(ctx context.Context, a *models.ProductAttribute) (*models.ProductAttribute, error) {
	if err := s.db.CreateAttribute(ctx, a); err != nil {
		return nil, err
	}
	created, err := s.db.GetAttribute(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	s.notify(models.EntityProductAttribute, models.OpCreated, created.ID, created)
	return created, nil
}

// UpdateAttribute overwrites an attribute and notifies subscribers.
func (s *Service) UpdateAttribute(ctx context.Context, a *models.ProductAttribute) (*models.ProductAttribute, error) {
	if err := s.db.UpdateAttribute(ctx, a); err != nil {
		return nil, err
	}
	updated, err := s.db.GetAttribute(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	s.notify(models.EntityProductAttribute, models.OpUpdated, updated.ID, updated)
	return updated, nil
}

// DeleteAttribute removes an attribute and notifies subscribers.
func (s *Service) DeleteAttribute(ctx context.Context, id string) error {
	if err := s.db.DeleteAttribute(ctx, id); err != nil {
		return err
	}
	s.notify(models.EntityProductAttribute, models.OpDeleted, id, nil)
	return nil
}
