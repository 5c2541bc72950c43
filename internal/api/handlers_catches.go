// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package api

import (
	"net/http"

	"github.com/lowisko/lowisko/internal/auth"
	"github.com/lowisko/lowisko/internal/logging"
	"github.com/lowisko/lowisko/internal/metrics"
	"github.com/lowisko/lowisko/internal/models"
	"github.com/lowisko/lowisko/internal/validation"
)

// CreateFishCatch handles POST /api/fish-catch. Authentication is
// optional; anonymous catches are stored without a user.
func (h *Handler) CreateFishCatch(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFishCatch
	if err := decodeJSON(w, r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, models.FishCatchResponse{
			Success: false,
			Error:   "Missing required fields: lake_id, fish, date, time",
		})
		return
	}

	if req.LakeID == "" || req.Fish == "" || req.Date == "" || req.Time == "" {
		respondJSON(w, http.StatusBadRequest, models.FishCatchResponse{
			Success: false,
			Error:   "Missing required fields: lake_id, fish, date, time",
		})
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		respondJSON(w, http.StatusBadRequest, models.FishCatchResponse{
			Success: false,
			Error:   verr.ToAPIError().Message,
		})
		return
	}

	// OptionalAuth leaves claims nil for anonymous requests.
	var userID *int64
	if claims := auth.ClaimsFromContext(r.Context()); claims != nil {
		if id, err := claims.UserID(); err == nil {
			userID = &id
		}
	}

	created, err := h.store.CreateFishCatch(r.Context(), userID, req)
	if err != nil {
		logging.Error().Err(err).Str("lake_id", req.LakeID).Msg("Failed to record catch")
		respondJSON(w, http.StatusInternalServerError, models.FishCatchResponse{
			Success: false,
			Error:   "Failed to save fish catch",
		})
		return
	}

	metrics.CatchesRecorded.Inc()

	// Stats are derived from catches, so any cached aggregate is stale now.
	h.cache.Clear()

	if h.hub != nil {
		h.hub.BroadcastCatchRecorded(created)
	}

	respondJSON(w, http.StatusCreated, models.FishCatchResponse{
		Success: true,
		Data:    created,
	})
}

// ListFishCatches handles GET /api/fish-catch with an optional lake_id
// query filter.
func (h *Handler) ListFishCatches(w http.ResponseWriter, r *http.Request) {
	lakeID := r.URL.Query().Get("lake_id")

	catches, err := h.store.ListFishCatches(r.Context(), lakeID)
	if err != nil {
		logging.Error().Err(err).Str("lake_id", lakeID).Msg("Failed to list catches")
		respondJSON(w, http.StatusInternalServerError, models.FishCatchResponse{
			Success: false,
			Error:   "Failed to fetch fish catches",
		})
		return
	}

	respondJSON(w, http.StatusOK, models.FishCatchResponse{
		Success: true,
		Data:    catches,
	})
}
