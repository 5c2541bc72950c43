// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package mapstate

import (
	"sync"
	"time"

	"github.com/lowisko/lowisko/internal/logging"
)

// Persister receives the state after every effective transition and writes
// the durable snapshot. Persistence is best-effort: errors are logged and
// swallowed, never propagated into a transition.
type Persister interface {
	SaveSnapshot(State) error
}

// DefaultCloseDelay is how long the drawer close animation runs before the
// popup payload may be cleared.
const DefaultCloseDelay = 300 * time.Millisecond

// Store is the single authoritative container for map-UI state.
//
// Dispatch applies actions atomically in dispatch order (single-writer).
// Subscribers are notified with an immutable snapshot after each effective
// transition. Every open/close cycle carries a monotonic interaction id so
// a finalize scheduled by an earlier close cannot clear a popup that a
// newer open has repopulated.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
	now       func() time.Time

	subs    map[int]func(State)
	nextSub int

	// interaction is bumped by every OpenLakeDrawer; a pending finalize
	// fires only if the id it captured is still current.
	interaction  uint64
	pendingClose *time.Timer
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the store's clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store with the given initial state. The persister may
// be nil, in which case transitions are not persisted.
func NewStore(initial State, persister Persister, opts ...Option) *Store {
	s := &Store{
		state:     initial.clone(),
		persister: persister,
		now:       time.Now,
		subs:      make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies one action. Effects run after the state swap: the
// snapshot write is best-effort, and subscribers see the new state in
// registration order.
func (s *Store) Dispatch(action Action) {
	s.dispatch(action, nil)
}

// dispatch applies one action, optionally guarded by a predicate evaluated
// under the store lock so the check and the transition are atomic.
func (s *Store) dispatch(action Action, guard func() bool) {
	s.mu.Lock()

	if guard != nil && !guard() {
		s.mu.Unlock()
		return
	}

	if _, ok := action.(OpenLakeDrawer); ok {
		// A new interaction invalidates any pending finalize from a
		// previous close cycle.
		s.interaction++
		if s.pendingClose != nil {
			s.pendingClose.Stop()
			s.pendingClose = nil
		}
	}

	next, effects := reduce(s.state, action, s.now())
	s.state = next

	var persistState State
	persist := false
	for _, effect := range effects {
		if effect == EffectPersist && s.persister != nil {
			persistState = next.clone()
			persist = true
		}
	}

	var notify []func(State)
	var notifyState State
	if len(effects) > 0 && len(s.subs) > 0 {
		notify = make([]func(State), 0, len(s.subs))
		for _, fn := range s.subs {
			notify = append(notify, fn)
		}
		notifyState = next.clone()
	}
	s.mu.Unlock()

	if persist {
		if err := s.persister.SaveSnapshot(persistState); err != nil {
			logging.Debug().Err(err).Str("action", action.actionName()).Msg("snapshot write failed")
		}
	}
	for _, fn := range notify {
		fn(notifyState.clone())
	}
}

// Subscribe registers fn to run after every effective transition. The
// returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// OpenDrawer dispatches OpenLakeDrawer for the clicked feature.
func (s *Store) OpenDrawer(longitude, latitude float64, properties Properties) {
	s.Dispatch(OpenLakeDrawer{Longitude: longitude, Latitude: latitude, Properties: properties})
}

// CloseDrawer runs the two-phase close: the drawer hides immediately and
// the popup payload is cleared once delay has elapsed. A delay <= 0
// finalizes synchronously. The scheduled finalize is conditioned on the
// interaction id: if a new OpenDrawer arrives first, it is a no-op.
func (s *Store) CloseDrawer(delay time.Duration) {
	s.Dispatch(StartCloseLakeDrawer{})

	if delay <= 0 {
		s.Dispatch(FinalizeCloseLakeDrawer{})
		return
	}

	s.mu.Lock()
	captured := s.interaction
	if s.pendingClose != nil {
		s.pendingClose.Stop()
	}
	s.pendingClose = time.AfterFunc(delay, func() {
		s.finalizeClose(captured)
	})
	s.mu.Unlock()
}

// finalizeClose completes a scheduled close if the interaction that
// requested it is still current and the drawer is still closing.
func (s *Store) finalizeClose(interaction uint64) {
	s.dispatch(FinalizeCloseLakeDrawer{}, func() bool {
		if s.interaction != interaction || s.state.Phase() != PhaseClosing {
			return false
		}
		s.pendingClose = nil
		return true
	})
}

// State returns an immutable snapshot of the full state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Popup returns the current popup, or nil when the drawer is closed.
func (s *Store) Popup() *PopupInfo {
	return s.State().Popup
}

// IsDrawerOpen reports whether the lake drawer is open.
func (s *Store) IsDrawerOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.DrawerOpen
}

// SelectedLakeID returns the selected lake identity, or nil.
func (s *Store) SelectedLakeID() *string {
	return s.State().SelectedLakeID
}

// Zoom returns the viewport zoom level.
func (s *Store) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Zoom
}

// Center returns the viewport center as (longitude, latitude).
func (s *Store) Center() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Longitude, s.state.Latitude
}
