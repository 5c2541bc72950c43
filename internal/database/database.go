// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

// Package database provides PostgreSQL access for accounts, fish catches
// and the statistics queries behind the stats endpoints.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lowisko/lowisko/internal/config"
	"github.com/lowisko/lowisko/internal/logging"
)

// Store wraps a pgx connection pool with the application's queries
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and ensures the schema exists
func New(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	connCtx := ctx
	if cfg.ConnTimeout > 0 {
		var cancel context.CancelFunc
		connCtx, cancel = context.WithTimeout(ctx, cfg.ConnTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(connCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logging.Info().Int32("max_conns", poolCfg.MaxConns).Msg("Database connected")
	return s, nil
}

// Close releases the pool resources
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks database connectivity for health reporting
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// initSchema creates the tables and the stats view when they are missing.
// Statements are idempotent so startup is safe against an existing schema.
func (s *Store) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS fish_catches (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
			lake_id VARCHAR(255) NOT NULL,
			fish VARCHAR(100) NOT NULL,
			length DOUBLE PRECISION,
			weight DOUBLE PRECISION,
			date DATE NOT NULL,
			time TIME NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fish_catches_lake_id ON fish_catches(lake_id)`,
		`CREATE INDEX IF NOT EXISTS idx_fish_catches_user_id ON fish_catches(user_id)`,
		`CREATE OR REPLACE VIEW user_fishing_stats AS
			SELECT
				u.id,
				u.username,
				COUNT(fc.id) AS total_catches,
				COUNT(DISTINCT fc.lake_id) AS lakes_visited,
				COUNT(DISTINCT fc.fish) AS species_caught,
				COALESCE(AVG(fc.weight), 0) AS avg_weight,
				COALESCE(AVG(fc.length), 0) AS avg_length,
				MAX(fc.weight) AS biggest_fish_weight,
				MAX(fc.length) AS longest_fish_length,
				MIN(fc.date) AS first_catch_date,
				MAX(fc.date) AS last_catch_date
			FROM users u
			LEFT JOIN fish_catches fc ON fc.user_id = u.id
			GROUP BY u.id, u.username`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
