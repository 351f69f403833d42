// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/authz"
	"github.com/storekeep/storekeep/internal/middleware"
)

// Router assembles the HTTP routing tree.
type Router struct {
	handler    *Handler
	jwtManager *auth.JWTManager
	authzMW    *authz.Middleware
}

// NewRouter creates the router. jwtManager may be nil (auth mode "none"),
// in which case requests run as an anonymous admin but still pass through
// the authorization layer.
func NewRouter(handler *Handler, jwtManager *auth.JWTManager, authzMW *authz.Middleware) *Router {
	return &Router{
		handler:    handler,
		jwtManager: jwtManager,
		authzMW:    authzMW,
	}
}

// Setup builds the chi routing tree with the full middleware stack.
func (rt *Router) Setup() http.Handler {
	cfg := rt.handler.cfg
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus scrape endpoint, outside the authenticated tree.
	r.Handle("/metrics", promhttp.Handler())

	// Health endpoints are unauthenticated so orchestrators can probe them,
	// with a permissive rate limit against abuse.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/", rt.handler.Health)
		r.Get("/live", rt.handler.HealthLive)
		r.Get("/ready", rt.handler.HealthReady)
	})

	// Login gets the strictest rate limit to slow brute forcing.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(httprate.LimitByIP(5, 5*time.Minute)).Post("/login", rt.handler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(rt.jwtManager))
			r.Get("/me", rt.handler.Me)
		})
	})

	// All data endpoints are authenticated and authorized.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.Security.RateLimitReqs, cfg.Security.RateLimitWindow))
		r.Use(middleware.PrometheusMetrics)
		r.Use(middleware.Authenticate(rt.jwtManager))
		r.Use(rt.authzMW.Authorize)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", rt.handler.ListProducts)
			r.Post("/", rt.handler.CreateProduct)
			r.Get("/{id}", rt.handler.GetProduct)
			r.Put("/{id}", rt.handler.UpdateProduct)
			r.Delete("/{id}", rt.handler.DeleteProduct)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", rt.handler.ListCategories)
			r.Post("/", rt.handler.CreateCategory)
			r.Get("/{id}", rt.handler.GetCategory)
			r.Put("/{id}", rt.handler.UpdateCategory)
			r.Delete("/{id}", rt.handler.DeleteCategory)
		})

		r.Route("/locations", func(r chi.Router) {
			r.Get("/", rt.handler.ListLocations)
			r.Post("/", rt.handler.CreateLocation)
			r.Get("/{id}", rt.handler.GetLocation)
			r.Put("/{id}", rt.handler.UpdateLocation)
			r.Delete("/{id}", rt.handler.DeleteLocation)
		})

		r.Route("/movements", func(r chi.Router) {
			r.Get("/", rt.handler.ListMovements)
			r.Post("/", rt.handler.CreateMovement)
			r.Get("/{id}", rt.handler.GetMovement)
			r.Delete("/{id}", rt.handler.DeleteMovement)
		})

		r.Route("/attributes", func(r chi.Router) {
			r.Get("/", rt.handler.ListAttributes)
			r.Post("/", rt.handler.CreateAttribute)
			r.Get("/{id}", rt.handler.GetAttribute)
			r.Put("/{id}", rt.handler.UpdateAttribute)
			r.Delete("/{id}", rt.handler.DeleteAttribute)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", rt.handler.ListTodos)
			r.Post("/", rt.handler.CreateTodo)
			r.Get("/{id}", rt.handler.GetTodo)
			r.Put("/{id}", rt.handler.UpdateTodo)
			r.Delete("/{id}", rt.handler.DeleteTodo)
		})

		r.Post("/ai/suggest-description", rt.handler.SuggestDescription)

		r.Get("/ws", rt.handler.WebSocket)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/reindex", rt.handler.Reindex)
			r.Get("/search/stats", rt.handler.SearchStats)
			r.Get("/cache/stats", rt.handler.CacheStats)
			r.Get("/users", rt.handler.ListUsers)
			r.Post("/users", rt.handler.CreateUser)
			r.Put("/users/{id}/role", rt.handler.UpdateUserRole)
			r.Delete("/users/{id}", rt.handler.DeleteUser)
		})
	})

	return r
}
