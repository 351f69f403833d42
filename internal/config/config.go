// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

// Package config loads and validates application configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//  1. Environment variables
//  2. YAML config file
//  3. Built-in defaults
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Cache     CacheConfig     `koanf:"cache"`
	Search    SearchConfig    `koanf:"search"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	AI        AIConfig        `koanf:"ai"`
	API       APIConfig       `koanf:"api"`
	WebSocket WebSocketConfig `koanf:"websocket"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds primary-store (DuckDB) settings.
type DatabaseConfig struct {
	Path     string `koanf:"path" validate:"required"`
	Threads  int    `koanf:"threads"`
	SeedData bool   `koanf:"seed_data"`
}

// CacheConfig holds cache-store settings. Backend selects the underlying
// key/value store: "memory" (process-local map) or "badger" (persistent,
// native per-entry TTL).
type CacheConfig struct {
	Backend string        `koanf:"backend" validate:"oneof=memory badger"`
	Path    string        `koanf:"path"`
	TTL     time.Duration `koanf:"ttl" validate:"min=1s"`

	// Sweep bounds for the enumerated cache invalidation performed after a
	// mass reindex. The sweep is a heuristic: keys outside these bounds are
	// left to expire naturally.
	SweepMaxPage  int `koanf:"sweep_max_page"`
	SweepMinSize  int `koanf:"sweep_min_size"`
	SweepMaxSize  int `koanf:"sweep_max_size"`
	SweepSizeStep int `koanf:"sweep_size_step"`
}

// SearchConfig holds search-index settings.
type SearchConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`

	// Breaker settings for the circuit breaker guarding index queries.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	AuthMode        string        `koanf:"auth_mode" validate:"oneof=jwt none"`
	JWTSecret       string        `koanf:"jwt_secret"`
	SessionTimeout  time.Duration `koanf:"session_timeout"`
	AdminUsername   string        `koanf:"admin_username"`
	AdminPassword   string        `koanf:"admin_password"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// AIConfig holds settings for the external text-generation collaborator.
// Credentials resolve from the environment; the core never reads them.
type AIConfig struct {
	Enabled bool          `koanf:"enabled"`
	BaseURL string        `koanf:"base_url"`
	APIKey  string        `koanf:"api_key"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`
}

// APIConfig holds request-shaping defaults for list endpoints.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size" validate:"min=1"`
	MaxPageSize     int `koanf:"max_page_size" validate:"min=1"`
}

// WebSocketConfig holds real-time push settings.
type WebSocketConfig struct {
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	PongTimeout    time.Duration `koanf:"pong_timeout"`
	MaxMessageSize int64         `koanf:"max_message_size"`
}

// defaultConfig returns the built-in defaults, applied before file and
// environment overrides.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8970,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:     "/data/storekeep.duckdb",
			Threads:  0, // 0 = runtime.NumCPU()
			SeedData: false,
		},
		Cache: CacheConfig{
			Backend:       "memory",
			Path:          "/data/cache",
			TTL:           60 * time.Second,
			SweepMaxPage:  10,
			SweepMinSize:  10,
			SweepMaxSize:  100,
			SweepSizeStep: 10,
		},
		Search: SearchConfig{
			Enabled:            true,
			Path:               "/data/search",
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			JWTSecret:       "",
			SessionTimeout:  24 * time.Hour,
			AdminUsername:   "",
			AdminPassword:   "",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		AI: AIConfig{
			Enabled: false,
			BaseURL: "",
			APIKey:  "",
			Model:   "gpt-4o-mini",
			Timeout: 30 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		WebSocket: WebSocketConfig{
			WriteTimeout:   10 * time.Second,
			PongTimeout:    60 * time.Second,
			MaxMessageSize: 512,
		},
	}
}

// Validate checks structural constraints and cross-field rules that the
// struct tags cannot express.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Security.AuthMode == "jwt" {
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("security.jwt_secret must be at least 32 characters when auth_mode=jwt")
		}
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("security.admin_username and security.admin_password are required when auth_mode=jwt")
		}
		if len(c.Security.AdminPassword) < 8 {
			return fmt.Errorf("security.admin_password must be at least 8 characters")
		}
	}

	if c.Cache.Backend == "badger" && c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required when cache.backend=badger")
	}
	if c.Search.Enabled && c.Search.Path == "" {
		return fmt.Errorf("search.path is required when search.enabled=true")
	}
	if c.Cache.SweepSizeStep <= 0 || c.Cache.SweepMinSize <= 0 || c.Cache.SweepMaxPage <= 0 {
		return fmt.Errorf("cache sweep bounds must be positive")
	}
	if c.Cache.SweepMaxSize < c.Cache.SweepMinSize {
		return fmt.Errorf("cache.sweep_max_size must be >= cache.sweep_min_size")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("api.max_page_size must be >= api.default_page_size")
	}

	return nil
}
