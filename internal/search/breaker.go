// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package search

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/metrics"
	"github.com/storekeep/storekeep/internal/models"
)

// BreakerConfig tunes the circuit breaker guarding search queries.
type BreakerConfig struct {
	// MaxFailures is the consecutive-failure count that opens the circuit.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before probing half-open.
	Timeout time.Duration
}

// GuardedEngine wraps an Engine's query methods with a circuit breaker.
// While the circuit is open queries fail fast without touching the index;
// callers degrade those failures to empty results, so a broken index slows
// nothing down and breaks nothing upstream.
//
// NOTE: The breaker uses real time (via sony/gobreaker) for its timeout
// calculations. Index writes (upserts, deletes, reindex) bypass the breaker:
// they are already fire-and-forget.
type GuardedEngine struct {
	engine *Engine
	cb     *gobreaker.CircuitBreaker[any]
}

// NewGuardedEngine wraps engine with a breaker configured from cfg. Zero
// values fall back to 5 consecutive failures and a 30 second open interval.
func NewGuardedEngine(engine *Engine, cfg BreakerConfig) *GuardedEngine {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	metrics.SearchBreakerState.Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "search-queries",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", breakerStateString(from)).
				Str("to", breakerStateString(to)).
				Msg("search circuit breaker state transition")
			metrics.SearchBreakerState.Set(breakerStateFloat(to))
		},
	})

	return &GuardedEngine{engine: engine, cb: cb}
}

// Engine exposes the wrapped engine for index maintenance paths that do not
// go through the breaker.
func (g *GuardedEngine) Engine() *Engine {
	return g.engine
}

// IsRejection reports whether err is a fast-fail from an open breaker
// rather than a genuine query failure.
func IsRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// SearchProducts runs a guarded product search.
func (g *GuardedEngine) SearchProducts(ctx context.Context, q ProductQuery) (*models.Page[models.Product], error) {
	result, err := g.cb.Execute(func() (any, error) {
		return g.engine.SearchProducts(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Page[models.Product]), nil
}

// SearchMovements runs a guarded stock-movement search.
func (g *GuardedEngine) SearchMovements(ctx context.Context, term string, page, pageSize int) (*models.Page[models.StockMovement], error) {
	result, err := g.cb.Execute(func() (any, error) {
		return g.engine.SearchMovements(ctx, term, page, pageSize)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Page[models.StockMovement]), nil
}

// SearchAttributes runs a guarded product-attribute search.
func (g *GuardedEngine) SearchAttributes(ctx context.Context, term string, page, pageSize int) (*models.Page[models.ProductAttribute], error) {
	result, err := g.cb.Execute(func() (any, error) {
		return g.engine.SearchAttributes(ctx, term, page, pageSize)
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Page[models.ProductAttribute]), nil
}

func breakerStateString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func breakerStateFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
