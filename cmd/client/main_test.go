// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package main

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lowisko/lowisko/internal/apiclient"
	"github.com/lowisko/lowisko/internal/localstore"
	"github.com/lowisko/lowisko/internal/models"
	"github.com/lowisko/lowisko/internal/session"
)

// rejectingService refuses every token so session verification fails
// with a server rejection.
type rejectingService struct{}

func (rejectingService) Login(context.Context, string, string) (string, *models.User, error) {
	return "", nil, errors.New("unused")
}

func (rejectingService) Register(context.Context, string, string, string) (string, *models.User, error) {
	return "", nil, errors.New("unused")
}

func (rejectingService) Me(context.Context, string) (*models.User, error) {
	return nil, &apiclient.StatusError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}
}

func (rejectingService) Logout(context.Context) error {
	return nil
}

func TestWhoamiTreatsRejectedTokenAsLoggedOut(t *testing.T) {
	tokens := localstore.NewMemoryStore()
	if err := tokens.Set(localstore.TokenKey, []byte("stale")); err != nil {
		t.Fatal(err)
	}
	a := &app{sess: session.NewStore(rejectingService{}, tokens)}

	if err := a.whoami(context.Background()); err != nil {
		t.Errorf("whoami must not surface verification failures, got %v", err)
	}
}

func TestStatsWithoutSessionPromptsLogin(t *testing.T) {
	a := &app{sess: session.NewStore(rejectingService{}, localstore.NewMemoryStore())}

	if err := a.stats(context.Background()); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("stats without a session = %v, want errNotLoggedIn", err)
	}
}

type countingGC struct {
	cycles atomic.Int64
}

func (g *countingGC) RunGC(_ float64) error {
	g.cycles.Add(1)
	return nil
}

func TestMapSessionRunsLocalStoreGC(t *testing.T) {
	gc := &countingGC{}
	a := &app{gc: gc, gcInterval: 5 * time.Millisecond}

	stop := a.startLocalStoreGC()
	deadline := time.Now().Add(time.Second)
	for gc.cycles.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	stop()

	if gc.cycles.Load() == 0 {
		t.Error("no GC cycles ran while the map was open")
	}
}

func TestLocalStoreGCSkippedWithoutValueLog(t *testing.T) {
	a := &app{}
	stop := a.startLocalStoreGC()
	stop()
}
