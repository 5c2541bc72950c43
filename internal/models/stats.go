// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package models

// UserStats aggregates one angler's fishing history for GET /api/user/stats
type UserStats struct {
	Overview         UserStatsOverview  `json:"overview"`
	RecentCatches    []FishCatch        `json:"recent_catches"`
	FavoriteLakes    []FavoriteLake     `json:"favorite_lakes"`
	SpeciesBreakdown []SpeciesBreakdown `json:"species_breakdown"`
}

// UserStatsOverview is the headline row of a user's statistics.
// Averages are pre-formatted strings so the frontend renders them verbatim.
type UserStatsOverview struct {
	Username          string   `json:"username"`
	TotalCatches      int      `json:"total_catches"`
	LakesVisited      int      `json:"lakes_visited"`
	SpeciesCaught     int      `json:"species_caught"`
	AvgWeight         string   `json:"avg_weight"`
	AvgLength         string   `json:"avg_length"`
	BiggestFishWeight *float64 `json:"biggest_fish_weight"`
	LongestFishLength *float64 `json:"longest_fish_length"`
	FirstCatchDate    *string  `json:"first_catch_date"`
	LastCatchDate     *string  `json:"last_catch_date"`
}

// FavoriteLake is a lake ranked by the user's catch count
type FavoriteLake struct {
	LakeID     string `json:"lake_id"`
	CatchCount int    `json:"catch_count"`
	LastVisit  string `json:"last_visit"`
}

// SpeciesBreakdown summarizes the user's catches per species
type SpeciesBreakdown struct {
	Species       string   `json:"species"`
	Count         int      `json:"count"`
	AvgLength     string   `json:"avg_length"`
	AvgWeight     string   `json:"avg_weight"`
	BiggestWeight *float64 `json:"biggest_weight"`
	LongestLength *float64 `json:"longest_length"`
}

// UserStatsResponse wraps UserStats for the API
type UserStatsResponse struct {
	Success bool      `json:"success"`
	Data    UserStats `json:"data"`
}

// PlatformStats is the public, unauthenticated global statistics payload
// for GET /api/stats/global.
type PlatformStats struct {
	TotalUsers            int             `json:"total_users"`
	TotalCatches          int             `json:"total_catches"`
	TotalSpeciesCaught    int             `json:"total_species_caught"`
	TotalLakesWithCatches int             `json:"total_lakes_with_catches"`
	BiggestFish           *BiggestFish    `json:"biggest_fish"`
	MostPopularSpecies    []PopularSpecie `json:"most_popular_species"`
	MostActiveLakes       []ActiveLake    `json:"most_active_lakes"`
	RecentActivity        RecentActivity  `json:"recent_activity"`
}

// BiggestFish is the platform record catch by weight
type BiggestFish struct {
	Species  string  `json:"species"`
	Weight   float64 `json:"weight"`
	Length   float64 `json:"length"`
	CaughtBy string  `json:"caught_by"`
	Date     string  `json:"date"`
	Lake     string  `json:"lake"`
}

// PopularSpecie is a species ranked by platform-wide catch count
type PopularSpecie struct {
	Species    string  `json:"species"`
	CatchCount int     `json:"catch_count"`
	Percentage float64 `json:"percentage"`
}

// ActiveLake is a lake ranked by platform-wide catch count
type ActiveLake struct {
	LakeID        string `json:"lake_id"`
	CatchCount    int    `json:"catch_count"`
	UniqueAnglers int    `json:"unique_anglers"`
}

// RecentActivity counts catches and signups over rolling windows
type RecentActivity struct {
	CatchesLast24h  int `json:"catches_last_24h"`
	CatchesLast7d   int `json:"catches_last_7d"`
	CatchesLast30d  int `json:"catches_last_30d"`
	NewUsersLast30d int `json:"new_users_last_30d"`
}
