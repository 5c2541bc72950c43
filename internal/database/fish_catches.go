// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package database

import (
	"context"
	"fmt"

	"github.com/lowisko/lowisko/internal/models"
)

// fishCatchColumns selects catch rows with date and time pre-formatted to
// the wire formats the frontend submits (YYYY-MM-DD, HH:MM:SS).
const fishCatchColumns = `id, user_id, lake_id, fish, length, weight,
	to_char(date, 'YYYY-MM-DD') AS date,
	to_char(time, 'HH24:MI:SS') AS time,
	created_at, updated_at`

// CreateFishCatch inserts a catch record and returns the stored row.
// userID is nil for anonymous submissions.
func (s *Store) CreateFishCatch(ctx context.Context, userID *int64, req models.CreateFishCatch) (*models.FishCatch, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO fish_catches (user_id, lake_id, fish, length, weight, date, time)
		 VALUES ($1, $2, $3, $4, $5, $6::date, $7::time)
		 RETURNING `+fishCatchColumns,
		userID, req.LakeID, req.Fish, req.Length, req.Weight, req.Date, req.Time)

	var fc models.FishCatch
	err := row.Scan(&fc.ID, &fc.UserID, &fc.LakeID, &fc.Fish, &fc.Length, &fc.Weight,
		&fc.Date, &fc.Time, &fc.CreatedAt, &fc.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert fish catch: %w", err)
	}
	return &fc, nil
}

// ListFishCatches returns catches ordered newest first, optionally scoped
// to one lake.
func (s *Store) ListFishCatches(ctx context.Context, lakeID string) ([]models.FishCatch, error) {
	query := `SELECT ` + fishCatchColumns + ` FROM fish_catches`
	args := []interface{}{}
	if lakeID != "" {
		query += ` WHERE lake_id = $1`
		args = append(args, lakeID)
	}
	query += ` ORDER BY date DESC, time DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fish catches: %w", err)
	}
	defer rows.Close()

	catches := make([]models.FishCatch, 0)
	for rows.Next() {
		var fc models.FishCatch
		if err := rows.Scan(&fc.ID, &fc.UserID, &fc.LakeID, &fc.Fish, &fc.Length, &fc.Weight,
			&fc.Date, &fc.Time, &fc.CreatedAt, &fc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fish catch: %w", err)
		}
		catches = append(catches, fc)
	}
	return catches, rows.Err()
}
