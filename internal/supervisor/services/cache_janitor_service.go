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

// Sweeper removes expired cache entries in bulk.
type Sweeper interface {
	Sweep() int64
}

// CacheJanitorService periodically sweeps the statistics cache so
// abandoned keys do not sit in memory until the next read touches them.
type CacheJanitorService struct {
	cache    Sweeper
	interval time.Duration
	name     string
}

// NewCacheJanitorService creates the sweep loop.
func NewCacheJanitorService(cache Sweeper, interval time.Duration) *CacheJanitorService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CacheJanitorService{
		cache:    cache,
		interval: interval,
		name:     "cache-janitor",
	}
}

// Serve implements suture.Service.
func (j *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if evicted := j.cache.Sweep(); evicted > 0 {
				logging.Debug().Int64("evicted", evicted).Msg("Swept expired cache entries")
			}
		}
	}
}

// String identifies the service in suture logs.
func (j *CacheJanitorService) String() string {
	return j.name
}
