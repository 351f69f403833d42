// Storekeep - Inventory and Stock Management Backend
// Copyright 2026 Storekeep Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/storekeep/storekeep

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/storekeep/config.yaml",
	"/etc/storekeep/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unrecognized variables are dropped so unrelated environment noise cannot
// leak into the configuration.
//
// Examples:
//   - HTTP_PORT        -> server.port
//   - DUCKDB_PATH      -> database.path
//   - CACHE_TTL        -> cache.ttl
//   - JWT_SECRET       -> security.jwt_secret
//   - STOREKEEP_AI_KEY -> ai.api_key
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server
		"http_host":      "server.host",
		"http_port":      "server.port",
		"http_timeout":   "server.read_timeout",
		"shutdown_grace": "server.shutdown_timeout",

		// Primary store
		"duckdb_path":    "database.path",
		"duckdb_threads": "database.threads",
		"seed_data":      "database.seed_data",

		// Cache
		"cache_backend":         "cache.backend",
		"cache_path":            "cache.path",
		"cache_ttl":             "cache.ttl",
		"cache_sweep_max_page":  "cache.sweep_max_page",
		"cache_sweep_min_size":  "cache.sweep_min_size",
		"cache_sweep_max_size":  "cache.sweep_max_size",
		"cache_sweep_size_step": "cache.sweep_size_step",

		// Search
		"search_enabled":              "search.enabled",
		"search_path":                 "search.path",
		"search_breaker_max_failures": "search.breaker_max_failures",
		"search_breaker_timeout":      "search.breaker_timeout",

		// Security
		"auth_mode":         "security.auth_mode",
		"jwt_secret":        "security.jwt_secret",
		"session_timeout":   "security.session_timeout",
		"admin_username":    "security.admin_username",
		"admin_password":    "security.admin_password",
		"rate_limit_reqs":   "security.rate_limit_reqs",
		"rate_limit_window": "security.rate_limit_window",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// External AI collaborator (credentials resolve here, never in core)
		"storekeep_ai_enabled":  "ai.enabled",
		"storekeep_ai_base_url": "ai.base_url",
		"storekeep_ai_key":      "ai.api_key",
		"storekeep_ai_model":    "ai.model",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return "" // drop unknown variables
}
