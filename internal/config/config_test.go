// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a configuration that passes Validate.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = strings.Repeat("s", 32)
	cfg.Security.AdminUsername = "admin"
	cfg.Security.AdminPassword = "changeme123"
	return cfg
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Cache.TTL != 60*time.Second {
		t.Errorf("default cache TTL = %v, want 60s", cfg.Cache.TTL)
	}
	if cfg.Cache.SweepMaxPage != 10 {
		t.Errorf("default sweep max page = %d, want 10", cfg.Cache.SweepMaxPage)
	}
	if cfg.Cache.SweepMinSize != 10 || cfg.Cache.SweepMaxSize != 100 || cfg.Cache.SweepSizeStep != 10 {
		t.Errorf("default sweep size bounds = %d..%d step %d, want 10..100 step 10",
			cfg.Cache.SweepMinSize, cfg.Cache.SweepMaxSize, cfg.Cache.SweepSizeStep)
	}
	if !cfg.Search.Enabled {
		t.Error("search should be enabled by default")
	}
	if cfg.Server.Port != 8970 {
		t.Errorf("default port = %d, want 8970", cfg.Server.Port)
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateJWTRequirements(t *testing.T) {
	cfg := validConfig()
	cfg.Security.JWTSecret = "short"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short JWT secret")
	}

	cfg = validConfig()
	cfg.Security.AdminUsername = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing admin username")
	}

	cfg = validConfig()
	cfg.Security.AdminPassword = "short"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for short admin password")
	}
}

func TestValidateAuthModeNoneSkipsJWTChecks(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.AuthMode = "none"
	if err := cfg.Validate(); err != nil {
		t.Errorf("auth_mode=none should not require JWT settings: %v", err)
	}
}

func TestValidateSweepBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.SweepSizeStep = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero sweep step")
	}

	cfg = validConfig()
	cfg.Cache.SweepMaxSize = 5
	cfg.Cache.SweepMinSize = 10
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for max size < min size")
	}
}

func TestValidateCacheBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Backend = "redis"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown cache backend")
	}

	cfg = validConfig()
	cfg.Cache.Backend = "badger"
	cfg.Cache.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for badger backend without path")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"CACHE_TTL", "cache.ttl"},
		{"CACHE_SWEEP_MAX_PAGE", "cache.sweep_max_page"},
		{"SEARCH_ENABLED", "search.enabled"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"STOREKEEP_AI_KEY", "ai.api_key"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}
