// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package mapstate

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// recordingPersister captures every snapshot handed to it.
type recordingPersister struct {
	mu        sync.Mutex
	snapshots []State
	fail      bool
}

func (p *recordingPersister) SaveSnapshot(s State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("storage unavailable")
	}
	p.snapshots = append(p.snapshots, s)
	return nil
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snapshots)
}

func (p *recordingPersister) last() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshots[len(p.snapshots)-1]
}

func TestStorePersistsAfterEveryTransition(t *testing.T) {
	persister := &recordingPersister{}
	store := NewStore(DefaultState(), persister)

	store.OpenDrawer(1, 2, Properties{"name": String("Lake X")})
	store.Dispatch(SetZoom{Zoom: 10})
	store.CloseDrawer(0)

	// open + setZoom + startClose + finalize
	if got := persister.count(); got != 4 {
		t.Errorf("persist count = %d, want 4", got)
	}
	if persister.last().Phase() != PhaseClosed {
		t.Errorf("last persisted phase = %v, want closed", persister.last().Phase())
	}
}

func TestStoreSwallowsPersistenceFailures(t *testing.T) {
	persister := &recordingPersister{fail: true}
	store := NewStore(DefaultState(), persister)

	// Must not panic and the in-memory transition must still apply.
	store.OpenDrawer(1, 2, Properties{"name": String("Lake X")})

	if !store.IsDrawerOpen() {
		t.Error("transition must apply even when persistence fails")
	}
}

func TestStoreSelectors(t *testing.T) {
	store := NewStore(DefaultState(), nil)
	store.OpenDrawer(1, 2, Properties{"name": String("Lake X")})

	popup := store.Popup()
	if popup == nil || popup.Longitude != 1 || popup.Latitude != 2 {
		t.Fatalf("popup = %+v", popup)
	}
	if !store.IsDrawerOpen() {
		t.Error("IsDrawerOpen = false")
	}
	if id := store.SelectedLakeID(); id == nil || *id != "Lake X" {
		t.Errorf("SelectedLakeID = %v", deref(id))
	}
	if store.Zoom() != DefaultZoom {
		t.Errorf("Zoom = %g", store.Zoom())
	}
	lon, lat := store.Center()
	if lon != DefaultLongitude || lat != DefaultLatitude {
		t.Errorf("Center = (%g, %g)", lon, lat)
	}
}

func TestStoreSelectorsReturnCopies(t *testing.T) {
	store := NewStore(DefaultState(), nil)
	store.OpenDrawer(1, 2, Properties{"name": String("Lake X")})

	popup := store.Popup()
	popup.Properties["name"] = String("mutated")

	if name, _ := store.Popup().Properties["name"].AsString(); name != "Lake X" {
		t.Errorf("store state mutated through selector result: %q", name)
	}
}

func TestStoreSubscriberNotification(t *testing.T) {
	store := NewStore(DefaultState(), nil)

	var got []DrawerPhase
	var mu sync.Mutex
	unsubscribe := store.Subscribe(func(s State) {
		mu.Lock()
		got = append(got, s.Phase())
		mu.Unlock()
	})

	store.OpenDrawer(1, 2, nil)
	store.CloseDrawer(0)
	unsubscribe()
	store.Dispatch(SetZoom{Zoom: 9})

	mu.Lock()
	defer mu.Unlock()
	want := []DrawerPhase{PhaseOpen, PhaseClosing, PhaseClosed}
	if len(got) != len(want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCloseDrawerSynchronousWhenDelayZero(t *testing.T) {
	store := NewStore(DefaultState(), nil)
	store.OpenDrawer(1, 2, Properties{"name": String("Lake X")})

	store.CloseDrawer(0)

	if store.State().Phase() != PhaseClosed {
		t.Errorf("phase = %v, want closed immediately", store.State().Phase())
	}
}

func TestCloseDrawerDelayedFinalize(t *testing.T) {
	store := NewStore(DefaultState(), nil)
	store.OpenDrawer(1, 2, Properties{"name": String("Lake X")})

	store.CloseDrawer(30 * time.Millisecond)

	if store.State().Phase() != PhaseClosing {
		t.Fatalf("phase = %v, want closing during the animation", store.State().Phase())
	}
	if store.Popup() == nil {
		t.Fatal("popup must be renderable while closing")
	}

	waitForPhase(t, store, PhaseClosed, time.Second)
}

func TestReopenCancelsPendingFinalize(t *testing.T) {
	store := NewStore(DefaultState(), nil)
	store.OpenDrawer(1, 2, Properties{"name": String("Lake X")})
	store.CloseDrawer(20 * time.Millisecond)

	// Reopen for a different lake before the finalize fires.
	store.OpenDrawer(3, 4, Properties{"name": String("Lake Y")})

	// Give the stale timer a chance to misbehave.
	time.Sleep(80 * time.Millisecond)

	s := store.State()
	if s.Phase() != PhaseOpen {
		t.Fatalf("phase = %v, stale finalize cleared a reopened drawer", s.Phase())
	}
	if s.SelectedLakeID == nil || *s.SelectedLakeID != "Lake Y" {
		t.Errorf("selected lake = %v, want Lake Y", deref(s.SelectedLakeID))
	}
}

func TestSecondCloseSupersedesFirst(t *testing.T) {
	store := NewStore(DefaultState(), nil)
	store.OpenDrawer(1, 2, Properties{"name": String("Lake X")})
	store.CloseDrawer(200 * time.Millisecond)
	store.OpenDrawer(3, 4, Properties{"name": String("Lake Y")})
	store.CloseDrawer(10 * time.Millisecond)

	waitForPhase(t, store, PhaseClosed, time.Second)
}

func waitForPhase(t *testing.T, store *Store, want DrawerPhase, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if store.State().Phase() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("phase = %v after %v, want %v", store.State().Phase(), timeout, want)
}
