// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package database

import (
	"context"
	"fmt"

	"github.com/lowisko/lowisko/internal/logging"
	"github.com/lowisko/lowisko/internal/models"
)

// SeedMockData inserts a handful of demo catches so a fresh development
// database renders something on the map. It is a no-op when any catches
// already exist.
func (s *Store) SeedMockData(ctx context.Context) error {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM fish_catches`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count fish catches: %w", err)
	}
	if count > 0 {
		return nil
	}

	length := func(v float64) *float64 { return &v }
	demo := []models.CreateFishCatch{
		{LakeID: "Jezioro Głębokie", Fish: "Szczupak", Length: length(67.0), Weight: length(2.8), Date: "2026-08-12", Time: "05:45:00"},
		{LakeID: "Jezioro Głębokie", Fish: "Okoń", Length: length(24.5), Weight: length(0.4), Date: "2026-08-15", Time: "18:20:00"},
		{LakeID: "Jezioro Szmaragdowe", Fish: "Lin", Length: length(41.0), Weight: length(1.1), Date: "2026-08-20", Time: "06:30:00"},
	}

	for _, fc := range demo {
		if _, err := s.CreateFishCatch(ctx, nil, fc); err != nil {
			return fmt.Errorf("failed to seed mock data: %w", err)
		}
	}

	logging.Info().Int("catches", len(demo)).Msg("Seeded mock fish catches")
	return nil
}
