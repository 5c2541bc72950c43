// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package services

import (
	"context"
	"time"

	"github.com/lowisko/lowisko/internal/logging"
)

// GCStore is a store with a value log garbage collection cycle.
type GCStore interface {
	RunGC(discardRatio float64) error
}

// LocalStoreGCService periodically compacts the BadgerDB value log.
// Badger never reclaims value log space on its own.
type LocalStoreGCService struct {
	store        GCStore
	interval     time.Duration
	discardRatio float64
	name         string
}

// NewLocalStoreGCService creates the GC loop. The 0.5 discard ratio is
// Badger's recommended setting.
func NewLocalStoreGCService(store GCStore, interval time.Duration) *LocalStoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &LocalStoreGCService{
		store:        store,
		interval:     interval,
		discardRatio: 0.5,
		name:         "localstore-gc",
	}
}

// Serve implements suture.Service.
func (g *LocalStoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := g.store.RunGC(g.discardRatio); err != nil {
				logging.Warn().Err(err).Msg("Local store GC failed")
			}
		}
	}
}

// String identifies the service in suture logs.
func (g *LocalStoreGCService) String() string {
	return g.name
}
