// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package inventory

import (
	"context"

	"github.com/storekeep/storekeep/internal/models"
)

// Categories, locations and todos are small reference tables: lists are
// served straight from the primary store, writes notify subscribers like
// every other entity. Category/location renames leave indexed product
// documents stale until the next reindex.

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.db.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.db.GetCategory(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	if err := s.db.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.notify(models.EntityCategory, models.OpCreated, c.ID, c)
	return c, nil
}

func (s *Service) UpdateCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	if err := s.db.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	s.notify(models.EntityCategory, models.OpUpdated, c.ID, c)
	return c, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.db.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.notify(models.EntityCategory, models.OpDeleted, id, nil)
	return nil
}

func (s *Service) ListLocations(ctx context.Context) ([]models.Location, error) {
	return s.db.ListLocations(ctx)
}

func (s *Service) GetLocation(ctx context.Context, id string) (*models.Location, error) {
	return s.db.GetLocation(ctx, id)
}

func (s *Service) CreateLocation(ctx context.Context, l *models.Location) (*models.Location, error) {
	if err := s.db.CreateLocation(ctx, l); err != nil {
		return nil, err
	}
	s.notify(models.EntityLocation, models.OpCreated, l.ID, l)
	return l, nil
}

func (s *Service) UpdateLocation(ctx context.Context, l *models.Location) (*models.Location, error) {
	if err := s.db.UpdateLocation(ctx, l); err != nil {
		return nil, err
	}
	s.notify(models.EntityLocation, models.OpUpdated, l.ID, l)
	return l, nil
}

func (s *Service) DeleteLocation(ctx context.Context, id string) error {
	if err := s.db.DeleteLocation(ctx, id); err != nil {
		return err
	}
	s.notify(models.EntityLocation, models.OpDeleted, id, nil)
	return nil
}

func (s *Service) ListTodos(ctx context.Context) ([]models.Todo, error) {
	return s.db.ListTodos(ctx)
}

func (s *Service) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	return s.db.GetTodo(ctx, id)
}

func (s *Service) CreateTodo(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	if err := s.db.CreateTodo(ctx, t); err != nil {
		return nil, err
	}
	s.notify(models.EntityTodo, models.OpCreated, t.ID, t)
	return t, nil
}

func (s *Service) UpdateTodo(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	if err := s.db.UpdateTodo(ctx, t); err != nil {
		return nil, err
	}
	s.notify(models.EntityTodo, models.OpUpdated, t.ID, t)
	return t, nil
}

func (s *Service) DeleteTodo(ctx context.Context, id string) error {
	if err := s.db.DeleteTodo(ctx, id); err != nil {
		return err
	}
	s.notify(models.EntityTodo, models.OpDeleted, id, nil)
	return nil
}
