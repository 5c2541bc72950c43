// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeGCStore struct {
	cycles atomic.Int64
	err    error
}

func (f *fakeGCStore) RunGC(_ float64) error {
	f.cycles.Add(1)
	return f.err
}

func TestLocalStoreGCServiceRunsCycles(t *testing.T) {
	store := &fakeGCStore{}
	svc := NewLocalStoreGCService(store, time.Hour)
	svc.interval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := svc.Serve(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve returned %v", err)
	}
	if store.cycles.Load() == 0 {
		t.Error("no GC cycles ran")
	}
}

func TestLocalStoreGCServiceSurvivesErrors(t *testing.T) {
	store := &fakeGCStore{err: errors.New("value log locked")}
	svc := NewLocalStoreGCService(store, time.Hour)
	svc.interval = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	_ = svc.Serve(ctx)
	if store.cycles.Load() < 2 {
		t.Errorf("cycles = %d, want retries after failure", store.cycles.Load())
	}
}

func TestLocalStoreGCServiceDefaults(t *testing.T) {
	svc := NewLocalStoreGCService(&fakeGCStore{}, 0)
	if svc.interval != 10*time.Minute {
		t.Errorf("interval = %v, want 10m", svc.interval)
	}
	if svc.discardRatio != 0.5 {
		t.Errorf("discardRatio = %v, want 0.5", svc.discardRatio)
	}
	if svc.String() != "localstore-gc" {
		t.Errorf("String() = %q", svc.String())
	}
}
