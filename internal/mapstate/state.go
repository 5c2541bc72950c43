// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

// Package mapstate holds the authoritative map-UI state: viewport, the
// popup for the last clicked lake, and the lake drawer lifecycle. All
// mutation happens through named actions applied by a pure reducer; the
// Store wraps the reducer with single-writer dispatch, subscriber
// notification, and best-effort snapshot persistence after every
// transition.
package mapstate

// Default viewport: the lake region the map opens on when no snapshot
// has been persisted yet.
const (
	DefaultZoom      = 15.0
	DefaultLongitude = 14.62492450285754
	DefaultLatitude  = 53.37144547012011
)

// PopupInfo is the record of the map feature (lake) last clicked.
// It exists only while the drawer is open or closing.
type PopupInfo struct {
	Longitude  float64    `json:"longitude"`
	Latitude   float64    `json:"latitude"`
	Properties Properties `json:"properties"`
}

// DrawerPhase is the lake drawer lifecycle phase.
type DrawerPhase int

const (
	// PhaseClosed: no popup, drawer hidden.
	PhaseClosed DrawerPhase = iota
	// PhaseOpen: popup set, drawer visible.
	PhaseOpen
	// PhaseClosing: drawer hidden but popup retained so the closing
	// animation can still render lake data.
	PhaseClosing
)

func (p DrawerPhase) String() string {
	switch p {
	case PhaseOpen:
		return "open"
	case PhaseClosing:
		return "closing"
	default:
		return "closed"
	}
}

// State is the full map-UI state. Values are treated as immutable: the
// reducer copies on write and selectors hand out deep copies, so holders
// of a State never observe later transitions.
type State struct {
	Zoom      float64
	Longitude float64
	Latitude  float64

	Popup          *PopupInfo
	DrawerOpen     bool
	SelectedLakeID *string

	// LastInteraction is the ms-epoch timestamp of the last transition.
	// Session-transient: never restored from a persisted snapshot.
	LastInteraction *int64
}

// DefaultState returns the initial state with the default viewport.
func DefaultState() State {
	return StateWithViewport(DefaultZoom, DefaultLongitude, DefaultLatitude)
}

// StateWithViewport returns a closed-drawer state centered on the given
// viewport. Used when the configured default differs from the canonical
// lake region.
func StateWithViewport(zoom, longitude, latitude float64) State {
	return State{
		Zoom:      zoom,
		Longitude: longitude,
		Latitude:  latitude,
	}
}

// Phase derives the drawer lifecycle phase from the state.
func (s State) Phase() DrawerPhase {
	switch {
	case s.Popup != nil && s.DrawerOpen:
		return PhaseOpen
	case s.Popup != nil:
		return PhaseClosing
	default:
		return PhaseClosed
	}
}

// clone returns a deep copy of the state.
func (s State) clone() State {
	out := s
	if s.Popup != nil {
		popup := *s.Popup
		popup.Properties = s.Popup.Properties.Clone()
		out.Popup = &popup
	}
	if s.SelectedLakeID != nil {
		id := *s.SelectedLakeID
		out.SelectedLakeID = &id
	}
	if s.LastInteraction != nil {
		ts := *s.LastInteraction
		out.LastInteraction = &ts
	}
	return out
}
