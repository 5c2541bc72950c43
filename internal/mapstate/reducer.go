// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package mapstate

import "time"

// Action is a named map-UI state transition.
type Action interface {
	actionName() string
}

// OpenLakeDrawer sets the popup to the clicked feature, derives the
// selected lake id, and opens the drawer. Valid in any phase; reopening
// replaces the popup data.
type OpenLakeDrawer struct {
	Longitude  float64
	Latitude   float64
	Properties Properties
}

// StartCloseLakeDrawer hides the drawer but keeps the popup so the close
// animation can still render lake data.
type StartCloseLakeDrawer struct{}

// FinalizeCloseLakeDrawer clears the popup and selection once the close
// animation has completed. A safe no-op when the drawer is already closed.
type FinalizeCloseLakeDrawer struct{}

// UpdatePopupProperties replaces the popup's property bag and re-derives
// the selected lake id. A no-op when no popup exists.
type UpdatePopupProperties struct {
	Properties Properties
}

// SetZoom sets the viewport zoom level.
type SetZoom struct {
	Zoom float64
}

// SetViewState applies a partial viewport update; nil fields keep their
// prior values.
type SetViewState struct {
	Zoom      *float64
	Longitude *float64
	Latitude  *float64
}

func (OpenLakeDrawer) actionName() string          { return "openLakeDrawer" }
func (StartCloseLakeDrawer) actionName() string    { return "startCloseLakeDrawer" }
func (FinalizeCloseLakeDrawer) actionName() string { return "finalizeCloseLakeDrawer" }
func (UpdatePopupProperties) actionName() string   { return "updatePopupProperties" }
func (SetZoom) actionName() string                 { return "setZoom" }
func (SetViewState) actionName() string            { return "setViewState" }

// Effect is a side effect requested by the reducer, executed by the Store
// outside the pure state transition.
type Effect int

// EffectPersist requests a best-effort snapshot write after the transition.
const EffectPersist Effect = iota

// reduce applies one action to the state. Pure: no clocks, no I/O — the
// caller supplies now, and requested side effects come back as an effect
// list. No-op transitions return no effects so the store skips the
// persistence write.
func reduce(s State, action Action, now time.Time) (State, []Effect) {
	next := s.clone()
	ts := now.UnixMilli()

	switch a := action.(type) {
	case OpenLakeDrawer:
		next.Popup = &PopupInfo{
			Longitude:  a.Longitude,
			Latitude:   a.Latitude,
			Properties: a.Properties.Clone(),
		}
		next.SelectedLakeID = ExtractLakeID(a.Properties)
		next.DrawerOpen = true
		next.LastInteraction = &ts

	case StartCloseLakeDrawer:
		next.DrawerOpen = false
		next.LastInteraction = &ts

	case FinalizeCloseLakeDrawer:
		if next.Phase() == PhaseClosed {
			return s, nil
		}
		next.Popup = nil
		next.SelectedLakeID = nil
		next.LastInteraction = &ts

	case UpdatePopupProperties:
		if next.Popup == nil {
			return s, nil
		}
		next.Popup.Properties = a.Properties.Clone()
		next.SelectedLakeID = ExtractLakeID(a.Properties)
		next.LastInteraction = &ts

	case SetZoom:
		next.Zoom = a.Zoom
		next.LastInteraction = &ts

	case SetViewState:
		if a.Zoom != nil {
			next.Zoom = *a.Zoom
		}
		if a.Longitude != nil {
			next.Longitude = *a.Longitude
		}
		if a.Latitude != nil {
			next.Latitude = *a.Latitude
		}
		next.LastInteraction = &ts

	default:
		return s, nil
	}

	return next, []Effect{EffectPersist}
}
