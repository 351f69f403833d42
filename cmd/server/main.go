// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

// Package main is the entry point for the Storekeep server.
//
// Storekeep is a self-hosted inventory and stock management backend. It
// tracks products, stock movements, categories, locations, and product
// attributes, and exposes them over a REST API with partial-match search,
// a cache-aside read path, and real-time change notifications over
// WebSocket.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered load from defaults, config file, and
//     environment variables (Koanf v2)
//  2. Database: DuckDB primary store, schema migration, optional demo seed
//  3. Cache: memory or BadgerDB page cache with TTL expiry
//  4. Search: bleve edge-n-gram indexes behind a circuit breaker (optional)
//  5. Event bus: Watermill in-process pub/sub feeding the search indexer
//     and the WebSocket broadcaster
//  6. Authentication: JWT with bcrypt credentials, or no-auth mode
//  7. Authorization: Casbin RBAC (viewer/editor/admin)
//  8. HTTP server: chi REST API supervised by a suture tree
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (STOREKEEP_ prefix)
//   - Config file (config.yaml)
//   - Built-in defaults
//
// For JWT authentication (default):
//   - STOREKEEP_SECURITY_JWT_SECRET: 32+ character secret for token signing
//   - STOREKEEP_SECURITY_ADMIN_USERNAME: bootstrap admin username
//   - STOREKEEP_SECURITY_ADMIN_PASSWORD: bootstrap admin password (8+ chars)
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (shutdown timeout)
//   - Closes the event bus, search indexes, cache, and database
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/storekeep/storekeep/internal/ai"
	"github.com/storekeep/storekeep/internal/api"
	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/authz"
	"github.com/storekeep/storekeep/internal/cache"
	"github.com/storekeep/storekeep/internal/config"
	"github.com/storekeep/storekeep/internal/database"
	"github.com/storekeep/storekeep/internal/events"
	"github.com/storekeep/storekeep/internal/inventory"
	"github.com/storekeep/storekeep/internal/logging"
	"github.com/storekeep/storekeep/internal/search"
	"github.com/storekeep/storekeep/internal/supervisor"
	ws "github.com/storekeep/storekeep/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("search_enabled", cfg.Search.Enabled).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	if cfg.Database.SeedData {
		if err := db.SeedDemoData(context.Background()); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed demo data")
		}
		logging.Info().Msg("Demo data seeded")
	}

	store, err := newCacheStore(&cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cache store")
	}
	pageCache := cache.New(store, cfg.Cache.TTL)
	defer func() {
		if err := pageCache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()

	sweeper := cache.NewSweeper(pageCache, cache.SweepBounds{
		MaxPage:  cfg.Cache.SweepMaxPage,
		MinSize:  cfg.Cache.SweepMinSize,
		MaxSize:  cfg.Cache.SweepMaxSize,
		SizeStep: cfg.Cache.SweepSizeStep,
	}, cache.OpProductList, cache.OpMovementList, cache.OpAttributeList)

	// Search is optional. With it disabled the read path falls back to
	// database LIKE filtering and the admin reindex endpoints return 409.
	var engine *search.Engine
	var guarded *search.GuardedEngine
	if cfg.Search.Enabled {
		engine = search.NewEngine(cfg.Search.Path)
		defer func() {
			if err := engine.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing search indexes")
			}
		}()
		guarded = search.NewGuardedEngine(engine, search.BreakerConfig{
			MaxFailures: cfg.Search.BreakerMaxFailures,
			Timeout:     cfg.Search.BreakerTimeout,
		})
		logging.Info().Str("path", cfg.Search.Path).Msg("Search engine enabled")
	} else {
		logging.Info().Msg("Search disabled - list endpoints use database filtering")
	}

	bus := events.NewBus()
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	wsHub := ws.NewHub()

	svc := inventory.New(inventory.Options{
		DB:      db,
		Cache:   pageCache,
		Sweeper: sweeper,
		Search:  guarded,
		Bus:     bus,
		Alerts:  wsHub,
	})

	var jwtManager *auth.JWTManager
	var authenticator *auth.Authenticator
	switch cfg.Security.AuthMode {
	case "jwt":
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		authenticator = auth.NewAuthenticator(db, jwtManager)
		if cfg.Security.AdminUsername != "" && cfg.Security.AdminPassword != "" {
			if err := authenticator.EnsureAdmin(context.Background(),
				cfg.Security.AdminUsername, cfg.Security.AdminPassword); err != nil {
				logging.Fatal().Err(err).Msg("Failed to ensure admin user")
			}
		}
		logging.Info().Msg("JWT authentication enabled")
	case "none":
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  All endpoints are accessible without credentials!")
		logging.Warn().Msg("  Use this mode only for local development or isolated networks.")
		logging.Warn().Msg("============================================================")
	}

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	defer enforcer.Close()

	aiClient := ai.NewClient(&cfg.AI)
	if aiClient != nil {
		logging.Info().Str("model", cfg.AI.Model).Msg("AI description suggestions enabled")
	}

	handler := api.NewHandler(svc, db, cfg, authenticator, aiClient, wsHub)
	router := api.NewRouter(handler, jwtManager, authz.NewMiddleware(enforcer))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())
	tree.AddMessagingService(supervisor.NewHubService(wsHub))
	if engine != nil {
		tree.AddMessagingService(events.NewIndexer(bus, engine))
	}
	tree.AddMessagingService(events.NewBroadcaster(bus, wsHub))
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	logging.Info().Msg("Application stopped gracefully")
}

// newCacheStore selects the cache backend from configuration.
func newCacheStore(cfg *config.CacheConfig) (cache.Store, error) {
	switch cfg.Backend {
	case "badger":
		return cache.NewBadgerStore(cfg.Path)
	default:
		return cache.NewMemoryStore(), nil
	}
}
