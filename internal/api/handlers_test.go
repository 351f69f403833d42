// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/authz"
	"github.com/storekeep/storekeep/internal/cache"
	"github.com/storekeep/storekeep/internal/config"
	"github.com/storekeep/storekeep/internal/database"
	"github.com/storekeep/storekeep/internal/inventory"
	"github.com/storekeep/storekeep/internal/models"
	"github.com/storekeep/storekeep/internal/search"
	ws "github.com/storekeep/storekeep/internal/websocket"
)

type testServer struct {
	router        http.Handler
	db            *database.DB
	authenticator *auth.Authenticator
	jwtManager    *auth.JWTManager
}

func testConfig() *config.Config {
	return &config.Config{
		Security: config.SecurityConfig{
			AuthMode:        "jwt",
			JWTSecret:       "test-secret-0123456789-0123456789-ok",
			SessionTimeout:  time.Hour,
			RateLimitReqs:   10000,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		API: config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}
}

// setupServer wires a full router over real components: in-memory DuckDB,
// memory cache, temp-dir search index. withAuth=false runs auth mode
// "none" (anonymous admin).
func setupServer(t *testing.T, withAuth bool) *testServer {
	t.Helper()
	cfg := testConfig()

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	c := cache.New(cache.NewMemoryStore(), time.Minute)
	t.Cleanup(func() { _ = c.Close() })

	engine := search.NewEngine(t.TempDir())
	t.Cleanup(func() { _ = engine.Close() })

	svc := inventory.New(inventory.Options{
		DB:      db,
		Cache:   c,
		Sweeper: cache.NewSweeper(c, cache.DefaultSweepBounds(), cache.OpProductList, cache.OpMovementList, cache.OpAttributeList),
		Search:  search.NewGuardedEngine(engine, search.BreakerConfig{}),
	})

	hub := ws.NewHub()

	var jwtManager *auth.JWTManager
	var authenticator *auth.Authenticator
	if withAuth {
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			t.Fatalf("NewJWTManager failed: %v", err)
		}
		authenticator = auth.NewAuthenticator(db, jwtManager)
	}

	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{})
	if err != nil {
		t.Fatalf("NewEnforcer failed: %v", err)
	}
	t.Cleanup(enforcer.Close)

	handler := NewHandler(svc, db, cfg, authenticator, nil, hub)
	router := NewRouter(handler, jwtManager, authz.NewMiddleware(enforcer)).Setup()

	return &testServer{
		router:        router,
		db:            db,
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestProductCRUDOverHTTP(t *testing.T) {
	ts := setupServer(t, false)

	rec := ts.request(t, http.MethodPost, "/api/v1/products", "", ProductRequest{
		SKU: "SKU-001", Name: "Laptop Charger", Price: 39.99, MinQuantity: 3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[models.Product](t, rec)
	if created.ID == "" || created.SKU != "SKU-001" {
		t.Fatalf("unexpected created product: %+v", created)
	}

	rec = ts.request(t, http.MethodGet, "/api/v1/products/"+created.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d", rec.Code)
	}

	rec = ts.request(t, http.MethodPut, "/api/v1/products/"+created.ID, "", ProductRequest{
		SKU: "SKU-001", Name: "Laptop Charger 65W", Price: 44.99,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got %d: %s", rec.Code, rec.Body.String())
	}
	if updated := decodeBody[models.Product](t, rec); updated.Name != "Laptop Charger 65W" {
		t.Errorf("update not applied: %+v", updated)
	}

	rec = ts.request(t, http.MethodDelete, "/api/v1/products/"+created.ID, "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: got %d", rec.Code)
	}

	rec = ts.request(t, http.MethodGet, "/api/v1/products/"+created.ID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", rec.Code)
	}
}

func TestCreateProductValidation(t *testing.T) {
	ts := setupServer(t, false)

	rec := ts.request(t, http.MethodPost, "/api/v1/products", "", map[string]string{"name": "No SKU"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing sku: got %d, want 400", rec.Code)
	}

	rec = ts.request(t, http.MethodPost, "/api/v1/products", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body: got %d, want 400", rec.Code)
	}
}

func TestDuplicateSKUConflict(t *testing.T) {
	ts := setupServer(t, false)

	body := ProductRequest{SKU: "SKU-001", Name: "Widget"}
	if rec := ts.request(t, http.MethodPost, "/api/v1/products", "", body); rec.Code != http.StatusCreated {
		t.Fatalf("first create: got %d", rec.Code)
	}
	if rec := ts.request(t, http.MethodPost, "/api/v1/products", "", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate create: got %d, want 409", rec.Code)
	}
}

func TestMovementInsufficientStock(t *testing.T) {
	ts := setupServer(t, false)

	rec := ts.request(t, http.MethodPost, "/api/v1/products", "", ProductRequest{SKU: "SKU-001", Name: "Widget"})
	product := decodeBody[models.Product](t, rec)

	rec = ts.request(t, http.MethodPost, "/api/v1/movements", "", MovementRequest{
		ProductID: product.ID, Type: "OUT", Quantity: 5,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("over-draw: got %d, want 422: %s", rec.Code, rec.Body.String())
	}

	rec = ts.request(t, http.MethodPost, "/api/v1/movements", "", MovementRequest{
		ProductID: product.ID, Type: "BOGUS", Quantity: 5,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad type: got %d, want 400", rec.Code)
	}
}

func TestPageSizeClamped(t *testing.T) {
	ts := setupServer(t, false)

	rec := ts.request(t, http.MethodGet, "/api/v1/products?page_size=9999", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	page := decodeBody[models.Page[models.Product]](t, rec)
	if page.PageSize != 100 {
		t.Errorf("page size not clamped: got %d, want 100", page.PageSize)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := setupServer(t, false)

	if rec := ts.request(t, http.MethodGet, "/api/v1/health/live", "", nil); rec.Code != http.StatusOK {
		t.Errorf("live: got %d", rec.Code)
	}
	if rec := ts.request(t, http.MethodGet, "/api/v1/health/ready", "", nil); rec.Code != http.StatusOK {
		t.Errorf("ready: got %d", rec.Code)
	}
	if rec := ts.request(t, http.MethodGet, "/metrics", "", nil); rec.Code != http.StatusOK {
		t.Errorf("metrics: got %d", rec.Code)
	}
}

func TestLoginAndRoleEnforcement(t *testing.T) {
	ts := setupServer(t, true)
	ctx := context.Background()

	if _, err := ts.authenticator.CreateUser(ctx, "viewer1", "password123", models.RoleViewer); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := ts.authenticator.CreateUser(ctx, "editor1", "password123", models.RoleEditor); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	rec := ts.request(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: "viewer1", Password: "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d: %s", rec.Code, rec.Body.String())
	}
	viewerToken := decodeBody[LoginResponse](t, rec).Token

	rec = ts.request(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: "viewer1", Password: "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login: got %d, want 401", rec.Code)
	}

	editorToken, err := ts.jwtManager.GenerateToken("editor1", models.RoleEditor)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	// No token at all.
	if rec := ts.request(t, http.MethodGet, "/api/v1/products", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list: got %d, want 401", rec.Code)
	}

	// Viewer can read but not write.
	if rec := ts.request(t, http.MethodGet, "/api/v1/products", viewerToken, nil); rec.Code != http.StatusOK {
		t.Errorf("viewer list: got %d, want 200", rec.Code)
	}
	rec = ts.request(t, http.MethodPost, "/api/v1/products", viewerToken, ProductRequest{SKU: "S", Name: "N"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer create: got %d, want 403", rec.Code)
	}

	// Editor can write but not reach admin endpoints.
	rec = ts.request(t, http.MethodPost, "/api/v1/products", editorToken, ProductRequest{SKU: "S", Name: "N"})
	if rec.Code != http.StatusCreated {
		t.Errorf("editor create: got %d, want 201", rec.Code)
	}
	if rec := ts.request(t, http.MethodPost, "/api/v1/admin/reindex", editorToken, nil); rec.Code != http.StatusForbidden {
		t.Errorf("editor reindex: got %d, want 403", rec.Code)
	}

	// Me endpoint reflects the token identity.
	rec = ts.request(t, http.MethodGet, "/api/v1/auth/me", viewerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: got %d", rec.Code)
	}
	if me := decodeBody[map[string]string](t, rec); me["role"] != models.RoleViewer {
		t.Errorf("unexpected identity: %v", me)
	}
}

func TestAdminReindexAndStats(t *testing.T) {
	ts := setupServer(t, false)

	for i := 0; i < 3; i++ {
		rec := ts.request(t, http.MethodPost, "/api/v1/products", "", ProductRequest{
			SKU: fmt.Sprintf("SKU-%03d", i), Name: fmt.Sprintf("Widget %d", i),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d: got %d", i, rec.Code)
		}
	}

	rec := ts.request(t, http.MethodPost, "/api/v1/admin/reindex", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reindex: got %d: %s", rec.Code, rec.Body.String())
	}
	summary := decodeBody[search.ReindexSummary](t, rec)
	if summary.IndexedCount != 3 {
		t.Errorf("expected 3 indexed, got %+v", summary)
	}

	rec = ts.request(t, http.MethodGet, "/api/v1/admin/search/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: got %d", rec.Code)
	}
	stats := decodeBody[map[string]uint64](t, rec)
	if stats[search.CollectionProducts] != 3 {
		t.Errorf("expected 3 product documents, got %v", stats)
	}
}

func TestAdminCacheStats(t *testing.T) {
	ts := setupServer(t, false)

	// Two identical list reads: one miss that populates, one hit.
	for i := 0; i < 2; i++ {
		rec := ts.request(t, http.MethodGet, "/api/v1/products", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("list %d: got %d", i, rec.Code)
		}
	}

	rec := ts.request(t, http.MethodGet, "/api/v1/admin/cache/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cache stats: got %d", rec.Code)
	}
	stats := decodeBody[cache.Stats](t, rec)
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %+v", stats)
	}
	if stats.Entries != 1 {
		t.Errorf("expected 1 cached entry, got %+v", stats)
	}
}

func TestAISuggestDisabled(t *testing.T) {
	ts := setupServer(t, false)
	rec := ts.request(t, http.MethodPost, "/api/v1/ai/suggest-description", "", SuggestDescriptionRequest{Name: "Widget"})
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("got %d, want 501", rec.Code)
	}
}

func TestSearchTermOverHTTP(t *testing.T) {
	ts := setupServer(t, false)

	rec := ts.request(t, http.MethodPost, "/api/v1/products", "", ProductRequest{SKU: "SKU-001", Name: "Laptop Charger"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d", rec.Code)
	}
	if rec := ts.request(t, http.MethodPost, "/api/v1/admin/reindex", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("reindex: got %d", rec.Code)
	}

	rec = ts.request(t, http.MethodGet, "/api/v1/products?term=lap", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: got %d", rec.Code)
	}
	page := decodeBody[models.Page[models.Product]](t, rec)
	if page.TotalItems != 1 {
		t.Errorf("expected 1 hit for partial term, got %d", page.TotalItems)
	}
}
