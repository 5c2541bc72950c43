// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package models

import (
	"time"
)

// FishCatch represents a single row in the fish_catches table.
// Date and Time are kept as strings in the wire formats the frontend
// submits (YYYY-MM-DD and HH:MM:SS).
type FishCatch struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	LakeID    string    `json:"lake_id"`
	Fish      string    `json:"fish"`
	Length    *float64  `json:"length"`
	Weight    *float64  `json:"weight"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateFishCatch is the payload for POST /api/fish-catch
type CreateFishCatch struct {
	LakeID string   `json:"lake_id" validate:"required"`
	Fish   string   `json:"fish" validate:"required"`
	Length *float64 `json:"length" validate:"omitempty,gt=0"`
	Weight *float64 `json:"weight" validate:"omitempty,gt=0"`
	Date   string   `json:"date" validate:"required,catch_date"`
	Time   string   `json:"time" validate:"required,catch_time"`
}

// FishCatchResponse wraps fish catch reads and writes.
// Data holds either a single FishCatch or a slice of them.
type FishCatchResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}
