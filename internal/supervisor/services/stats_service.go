// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package services

import (
	"context"
	"time"

	"github.com/lowisko/lowisko/internal/logging"
	"github.com/lowisko/lowisko/internal/models"
)

// StatsSource provides the aggregate to broadcast.
type StatsSource interface {
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
}

// StatsBroadcaster pushes stats updates to connected clients.
type StatsBroadcaster interface {
	BroadcastStatsUpdate(totalCatches int)
	GetClientCount() int
}

// StatsBroadcastService periodically pushes platform totals to
// websocket clients so open dashboards stay current without polling.
type StatsBroadcastService struct {
	source   StatsSource
	hub      StatsBroadcaster
	interval time.Duration
	name     string
}

// NewStatsBroadcastService creates the broadcaster. Intervals under a
// second are raised to the 30s default to protect the database.
func NewStatsBroadcastService(source StatsSource, hub StatsBroadcaster, interval time.Duration) *StatsBroadcastService {
	if interval < time.Second {
		interval = 30 * time.Second
	}
	return &StatsBroadcastService{
		source:   source,
		hub:      hub,
		interval: interval,
		name:     "stats-broadcast",
	}
}

// Serve implements suture.Service. Query failures are logged and
// retried on the next tick rather than restarting the service.
func (s *StatsBroadcastService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if s.hub.GetClientCount() == 0 {
				continue
			}
			stats, err := s.source.PlatformStats(ctx)
			if err != nil {
				logging.Warn().Err(err).Msg("Stats broadcast query failed")
				continue
			}
			s.hub.BroadcastStatsUpdate(stats.TotalCatches)
		}
	}
}

// String identifies the service in suture logs.
func (s *StatsBroadcastService) String() string {
	return s.name
}
