// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lowisko/lowisko/internal/auth"
	"github.com/lowisko/lowisko/internal/cache"
	"github.com/lowisko/lowisko/internal/database"
	"github.com/lowisko/lowisko/internal/logging"
	"github.com/lowisko/lowisko/internal/metrics"
	"github.com/lowisko/lowisko/internal/models"
)

// UserStats handles GET /api/user/stats for the authenticated user.
func (h *Handler) UserStats(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "No token provided")
		return
	}
	userID, err := claims.UserID()
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	key := fmt.Sprintf("%s%d", cache.UserStatsKeyspace, userID)
	if cached, ok := h.cache.Get(key); ok {
		metrics.StatsCacheHits.Inc()
		respondJSON(w, http.StatusOK, cached)
		return
	}
	metrics.StatsCacheMisses.Inc()

	stats, err := h.store.UserStats(r.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		logging.Error().Err(err).Int64("user_id", userID).Msg("Failed to compute user stats")
		respondError(w, http.StatusInternalServerError, "Failed to fetch user statistics")
		return
	}

	resp := models.UserStatsResponse{Success: true, Data: *stats}
	h.cache.Set(key, resp)
	respondJSON(w, http.StatusOK, resp)
}

// GlobalStats handles GET /api/stats/global. The response is the bare
// platform stats object, cached briefly because it touches every table.
func (h *Handler) GlobalStats(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.Get(cache.KeyPlatformStats); ok {
		metrics.StatsCacheHits.Inc()
		respondJSON(w, http.StatusOK, cached)
		return
	}
	metrics.StatsCacheMisses.Inc()

	stats, err := h.store.PlatformStats(r.Context())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to compute platform stats")
		respondError(w, http.StatusInternalServerError, "Nie udało się pobrać statystyk platformy")
		return
	}

	h.cache.Set(cache.KeyPlatformStats, stats)
	respondJSON(w, http.StatusOK, stats)
}
