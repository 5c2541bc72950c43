// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

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

// DefaultConfigPaths lists where config files are searched, in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lowisko/config.yaml",
	"/etc/lowisko/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CONFIG_PATH"

// Load loads configuration with layered sources (highest priority wins):
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadClient loads configuration for the terminal client from the same
// layered sources. Server-only settings such as database.url and
// security.jwt_secret are not required.
func LoadClient() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateClient(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

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
//
// Examples:
//   - DATABASE_URL      -> database.url
//   - JWT_SECRET        -> security.jwt_secret
//   - HTTP_PORT         -> server.port
//   - LOCALSTORE_PATH   -> localstore.path
//   - MAP_DEFAULT_ZOOM  -> map.default_zoom
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"http_host":   "server.host",
		"http_port":   "server.port",
		"environment": "server.environment",

		"database_url":   "database.url",
		"db_max_conns":   "database.max_conns",
		"seed_mock_data": "database.seed_mock_data",

		"jwt_secret":        "security.jwt_secret",
		"session_timeout":   "security.session_timeout",
		"bcrypt_cost":       "security.bcrypt_cost",
		"rate_limit_reqs":   "security.rate_limit_reqs",
		"rate_limit_window": "security.rate_limit_window",
		"auth_rate_limit":   "security.auth_rate_limit",
		"cors_origins":      "security.cors_origins",

		"localstore_path":      "localstore.path",
		"localstore_in_memory": "localstore.in_memory",

		"map_default_zoom":       "map.default_zoom",
		"map_default_longitude":  "map.default_longitude",
		"map_default_latitude":   "map.default_latitude",
		"map_drawer_close_delay": "map.drawer_close_delay",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	// Unknown variables are dropped rather than guessed into config paths.
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when they arrive as plain strings from env vars.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		str, ok := val.(string)
		if !ok {
			return fmt.Errorf("unexpected type for %s: %T", path, val)
		}
		parts := strings.Split(str, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				trimmed = append(trimmed, t)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}
