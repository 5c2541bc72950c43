// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lowisko/lowisko/internal/models"
)

// UserStats assembles one user's statistics: the overview row from the
// user_fishing_stats view plus recent catches, favorite lakes and the
// species breakdown.
func (s *Store) UserStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	var (
		stats     models.UserStats
		avgWeight float64
		avgLength float64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT username, total_catches, lakes_visited, species_caught,
			avg_weight, avg_length, biggest_fish_weight, longest_fish_length,
			to_char(first_catch_date, 'YYYY-MM-DD'),
			to_char(last_catch_date, 'YYYY-MM-DD')
		 FROM user_fishing_stats WHERE id = $1`, userID).Scan(
		&stats.Overview.Username,
		&stats.Overview.TotalCatches,
		&stats.Overview.LakesVisited,
		&stats.Overview.SpeciesCaught,
		&avgWeight,
		&avgLength,
		&stats.Overview.BiggestFishWeight,
		&stats.Overview.LongestFishLength,
		&stats.Overview.FirstCatchDate,
		&stats.Overview.LastCatchDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user stats: %w", err)
	}
	stats.Overview.AvgWeight = fmt.Sprintf("%.2f", avgWeight)
	stats.Overview.AvgLength = fmt.Sprintf("%.1f", avgLength)

	if stats.RecentCatches, err = s.recentCatches(ctx, userID); err != nil {
		return nil, err
	}
	if stats.FavoriteLakes, err = s.favoriteLakes(ctx, userID); err != nil {
		return nil, err
	}
	if stats.SpeciesBreakdown, err = s.speciesBreakdown(ctx, userID); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *Store) recentCatches(ctx context.Context, userID int64) ([]models.FishCatch, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+fishCatchColumns+`
		 FROM fish_catches WHERE user_id = $1
		 ORDER BY date DESC, time DESC LIMIT 10`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent catches: %w", err)
	}
	defer rows.Close()

	catches := make([]models.FishCatch, 0)
	for rows.Next() {
		var fc models.FishCatch
		if err := rows.Scan(&fc.ID, &fc.UserID, &fc.LakeID, &fc.Fish, &fc.Length, &fc.Weight,
			&fc.Date, &fc.Time, &fc.CreatedAt, &fc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent catch: %w", err)
		}
		catches = append(catches, fc)
	}
	return catches, rows.Err()
}

func (s *Store) favoriteLakes(ctx context.Context, userID int64) ([]models.FavoriteLake, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT lake_id, COUNT(*) AS catch_count,
			to_char(MAX(date), 'YYYY-MM-DD') AS last_visit
		 FROM fish_catches WHERE user_id = $1
		 GROUP BY lake_id
		 ORDER BY catch_count DESC, last_visit DESC
		 LIMIT 5`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorite lakes: %w", err)
	}
	defer rows.Close()

	lakes := make([]models.FavoriteLake, 0)
	for rows.Next() {
		var lake models.FavoriteLake
		if err := rows.Scan(&lake.LakeID, &lake.CatchCount, &lake.LastVisit); err != nil {
			return nil, fmt.Errorf("failed to scan favorite lake: %w", err)
		}
		lakes = append(lakes, lake)
	}
	return lakes, rows.Err()
}

func (s *Store) speciesBreakdown(ctx context.Context, userID int64) ([]models.SpeciesBreakdown, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT fish AS species, COUNT(*) AS count,
			COALESCE(AVG(length), 0) AS avg_length,
			COALESCE(AVG(weight), 0) AS avg_weight,
			MAX(weight) AS biggest_weight,
			MAX(length) AS longest_length
		 FROM fish_catches WHERE user_id = $1
		 GROUP BY fish
		 ORDER BY count DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query species breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make([]models.SpeciesBreakdown, 0)
	for rows.Next() {
		var (
			sb        models.SpeciesBreakdown
			avgLength float64
			avgWeight float64
		)
		if err := rows.Scan(&sb.Species, &sb.Count, &avgLength, &avgWeight,
			&sb.BiggestWeight, &sb.LongestLength); err != nil {
			return nil, fmt.Errorf("failed to scan species breakdown: %w", err)
		}
		sb.AvgLength = fmt.Sprintf("%.1f", avgLength)
		sb.AvgWeight = fmt.Sprintf("%.2f", avgWeight)
		breakdown = append(breakdown, sb)
	}
	return breakdown, rows.Err()
}

// PlatformStats assembles the public platform-wide statistics
func (s *Store) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	var stats models.PlatformStats

	err := s.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users WHERE is_active = TRUE),
			(SELECT COUNT(*) FROM fish_catches),
			(SELECT COUNT(DISTINCT fish) FROM fish_catches WHERE fish IS NOT NULL),
			(SELECT COUNT(DISTINCT lake_id) FROM fish_catches WHERE lake_id IS NOT NULL)`).Scan(
		&stats.TotalUsers,
		&stats.TotalCatches,
		&stats.TotalSpeciesCaught,
		&stats.TotalLakesWithCatches,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query platform totals: %w", err)
	}

	if stats.BiggestFish, err = s.biggestFish(ctx); err != nil {
		return nil, err
	}
	if stats.MostPopularSpecies, err = s.popularSpecies(ctx); err != nil {
		return nil, err
	}
	if stats.MostActiveLakes, err = s.activeLakes(ctx); err != nil {
		return nil, err
	}

	err = s.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM fish_catches WHERE date >= CURRENT_DATE - INTERVAL '1 day'),
			(SELECT COUNT(*) FROM fish_catches WHERE date >= CURRENT_DATE - INTERVAL '7 days'),
			(SELECT COUNT(*) FROM fish_catches WHERE date >= CURRENT_DATE - INTERVAL '30 days'),
			(SELECT COUNT(*) FROM users WHERE created_at >= CURRENT_DATE - INTERVAL '30 days')`).Scan(
		&stats.RecentActivity.CatchesLast24h,
		&stats.RecentActivity.CatchesLast7d,
		&stats.RecentActivity.CatchesLast30d,
		&stats.RecentActivity.NewUsersLast30d,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent activity: %w", err)
	}

	return &stats, nil
}

func (s *Store) biggestFish(ctx context.Context) (*models.BiggestFish, error) {
	var (
		fish   models.BiggestFish
		caught *string
		length *float64
	)
	err := s.pool.QueryRow(ctx,
		`SELECT fc.fish, fc.weight, fc.length, u.username,
			to_char(fc.date, 'YYYY-MM-DD'), fc.lake_id
		 FROM fish_catches fc
		 LEFT JOIN users u ON fc.user_id = u.id
		 WHERE fc.weight IS NOT NULL
		 ORDER BY fc.weight DESC
		 LIMIT 1`).Scan(&fish.Species, &fish.Weight, &length, &caught, &fish.Date, &fish.Lake)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query biggest fish: %w", err)
	}

	if length != nil {
		fish.Length = *length
	}
	fish.CaughtBy = "Anonimowy"
	if caught != nil {
		fish.CaughtBy = *caught
	}
	return &fish, nil
}

func (s *Store) popularSpecies(ctx context.Context) ([]models.PopularSpecie, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT fish AS species, COUNT(*) AS catch_count,
			ROUND(COUNT(*) * 100.0 / (SELECT COUNT(*) FROM fish_catches WHERE fish IS NOT NULL), 1) AS percentage
		 FROM fish_catches
		 WHERE fish IS NOT NULL
		 GROUP BY fish
		 ORDER BY catch_count DESC
		 LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular species: %w", err)
	}
	defer rows.Close()

	species := make([]models.PopularSpecie, 0)
	for rows.Next() {
		var sp models.PopularSpecie
		if err := rows.Scan(&sp.Species, &sp.CatchCount, &sp.Percentage); err != nil {
			return nil, fmt.Errorf("failed to scan popular species: %w", err)
		}
		species = append(species, sp)
	}
	return species, rows.Err()
}

func (s *Store) activeLakes(ctx context.Context) ([]models.ActiveLake, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT lake_id, COUNT(*) AS catch_count, COUNT(DISTINCT user_id) AS unique_anglers
		 FROM fish_catches
		 WHERE lake_id IS NOT NULL
		 GROUP BY lake_id
		 ORDER BY catch_count DESC
		 LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active lakes: %w", err)
	}
	defer rows.Close()

	lakes := make([]models.ActiveLake, 0)
	for rows.Next() {
		var lake models.ActiveLake
		if err := rows.Scan(&lake.LakeID, &lake.CatchCount, &lake.UniqueAnglers); err != nil {
			return nil, fmt.Errorf("failed to scan active lake: %w", err)
		}
		lakes = append(lakes, lake)
	}
	return lakes, rows.Err()
}
