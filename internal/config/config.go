// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

// Package config loads and validates application configuration using
// Koanf v2 with layered sources: built-in defaults, optional YAML file,
// environment variables (highest priority).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration for the Lowisko server.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Security   SecurityConfig   `koanf:"security"`
	LocalStore LocalStoreConfig `koanf:"localstore"`
	Map        MapConfig        `koanf:"map"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL          string        `koanf:"url"`
	MaxConns     int32         `koanf:"max_conns"`
	ConnTimeout  time.Duration `koanf:"conn_timeout"`
	SeedMockData bool          `koanf:"seed_mock_data"`
}

// SecurityConfig holds authentication and rate-limit settings.
type SecurityConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	SessionTimeout  time.Duration `koanf:"session_timeout"`
	BcryptCost      int           `koanf:"bcrypt_cost"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	AuthRateLimit   int           `koanf:"auth_rate_limit"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LocalStoreConfig holds the durable local key-value store settings.
// The store keeps the persisted map-UI snapshot and the bearer token.
type LocalStoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// MapConfig holds the default map viewport and drawer behaviour.
type MapConfig struct {
	DefaultZoom      float64       `koanf:"default_zoom"`
	DefaultLongitude float64       `koanf:"default_longitude"`
	DefaultLatitude  float64       `koanf:"default_latitude"`
	DrawerCloseDelay time.Duration `koanf:"drawer_close_delay"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultLocalStorePath keeps client state under the user's home
// directory, falling back to the working directory.
func defaultLocalStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lowisko"
	}
	return filepath.Join(home, ".lowisko")
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			URL:          "",
			MaxConns:     10,
			ConnTimeout:  10 * time.Second,
			SeedMockData: false,
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			SessionTimeout:  7 * 24 * time.Hour,
			BcryptCost:      12,
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
			AuthRateLimit:   10,
			CORSOrigins:     []string{"*"},
		},
		LocalStore: LocalStoreConfig{
			Path:     defaultLocalStorePath(),
			InMemory: false,
		},
		Map: MapConfig{
			// Lake-region defaults matching the client INITIAL_VIEW_STATE.
			DefaultZoom:      15,
			DefaultLongitude: 14.62492450285754,
			DefaultLatitude:  53.37144547012011,
			DrawerCloseDelay: 300 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for invalid or missing values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required (set DATABASE_URL)")
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required (set JWT_SECRET)")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 characters, got %d", len(c.Security.JWTSecret))
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("security.bcrypt_cost must be between 4 and 31, got %d", c.Security.BcryptCost)
	}
	return c.ValidateClient()
}

// ValidateClient checks only the settings the terminal client consumes:
// the local store and the map defaults. The client has no database or
// JWT secret, so Load's server checks do not apply to it.
func (c *Config) ValidateClient() error {
	if !c.LocalStore.InMemory && c.LocalStore.Path == "" {
		return fmt.Errorf("localstore.path is required unless localstore.in_memory is true")
	}
	if c.Map.DefaultZoom < 0 {
		return fmt.Errorf("map.default_zoom must be non-negative, got %g", c.Map.DefaultZoom)
	}
	if c.Map.DefaultLongitude < -180 || c.Map.DefaultLongitude > 180 {
		return fmt.Errorf("map.default_longitude out of range: %g", c.Map.DefaultLongitude)
	}
	if c.Map.DefaultLatitude < -90 || c.Map.DefaultLatitude > 90 {
		return fmt.Errorf("map.default_latitude out of range: %g", c.Map.DefaultLatitude)
	}
	return nil
}
