// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package mapstate

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/lowisko/lowisko/internal/localstore"
)

// Codec round-trips the durable subset of map-UI state through the local
// store under localstore.MapUIKey.
//
// The codec is deliberately stricter than a generic deserializer: a stored
// record with the drawer closed never yields a popup, even if one is
// present in the blob. This keeps a stale lake popup from reappearing
// after a reload with the drawer closed.
type Codec struct {
	store localstore.Store
}

// NewCodec creates a codec over the given store.
func NewCodec(store localstore.Store) *Codec {
	return &Codec{store: store}
}

// persistedSnapshot is the wire shape written under MapUIKey.
// Pointer fields on load distinguish "absent" from zero values: zoom,
// longitude, and latitude are mandatory for a valid restore.
type persistedSnapshot struct {
	Zoom             *float64        `json:"zoom"`
	Longitude        *float64        `json:"longitude"`
	Latitude         *float64        `json:"latitude"`
	SelectedLakeID   *string         `json:"selectedLakeId"`
	IsLakeDrawerOpen bool            `json:"isLakeDrawerOpen"`
	PopupInfo        json.RawMessage `json:"popupInfo"`
}

type persistedPopup struct {
	Longitude  *float64        `json:"longitude"`
	Latitude   *float64        `json:"latitude"`
	Properties json.RawMessage `json:"properties"`
}

// SaveSnapshot writes the durable subset of state. The popup is omitted
// unless the drawer is open. Implements Persister; the caller treats
// failures as best-effort.
func (c *Codec) SaveSnapshot(s State) error {
	record := struct {
		Zoom             float64    `json:"zoom"`
		Longitude        float64    `json:"longitude"`
		Latitude         float64    `json:"latitude"`
		SelectedLakeID   *string    `json:"selectedLakeId"`
		IsLakeDrawerOpen bool       `json:"isLakeDrawerOpen"`
		PopupInfo        *PopupInfo `json:"popupInfo"`
	}{
		Zoom:             s.Zoom,
		Longitude:        s.Longitude,
		Latitude:         s.Latitude,
		SelectedLakeID:   s.SelectedLakeID,
		IsLakeDrawerOpen: s.DrawerOpen,
	}
	if s.DrawerOpen {
		record.PopupInfo = s.Popup
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.store.Set(localstore.MapUIKey, data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores the persisted state. The second return is false —
// never an error — when no usable snapshot exists: absent key, malformed
// JSON, missing or non-numeric zoom/longitude/latitude, or an out-of-range
// viewport. Callers fall back to hardcoded defaults.
//
// On success: LastInteraction is always nil (session-transient); the popup
// is restored only when the drawer was open and the stored popup has
// numeric coordinates, otherwise the popup is nil and the drawer forced
// closed.
func (c *Codec) LoadSnapshot() (State, bool) {
	data, err := c.store.Get(localstore.MapUIKey)
	if err != nil {
		// Absent key and read failures alike mean "no value".
		return State{}, false
	}

	var record persistedSnapshot
	if err := json.Unmarshal(data, &record); err != nil {
		return State{}, false
	}
	if record.Zoom == nil || record.Longitude == nil || record.Latitude == nil {
		return State{}, false
	}
	if !viewportInRange(*record.Zoom, *record.Longitude, *record.Latitude) {
		return State{}, false
	}

	popup := restorePopup(record.PopupInfo)

	s := State{
		Zoom:           *record.Zoom,
		Longitude:      *record.Longitude,
		Latitude:       *record.Latitude,
		SelectedLakeID: record.SelectedLakeID,
	}
	if record.IsLakeDrawerOpen && popup != nil {
		s.Popup = popup
		s.DrawerOpen = true
	}
	return s, true
}

func viewportInRange(zoom, longitude, latitude float64) bool {
	return zoom >= 0 &&
		longitude >= -180 && longitude <= 180 &&
		latitude >= -90 && latitude <= 90
}

// restorePopup reconstructs the stored popup, or nil when it is absent or
// lacks numeric coordinates. An unreadable property bag degrades to nil
// properties rather than discarding the popup.
func restorePopup(raw json.RawMessage) *PopupInfo {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var stored persistedPopup
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil
	}
	if stored.Longitude == nil || stored.Latitude == nil {
		return nil
	}

	popup := &PopupInfo{Longitude: *stored.Longitude, Latitude: *stored.Latitude}
	if len(stored.Properties) > 0 && string(stored.Properties) != "null" {
		var props Properties
		if err := json.Unmarshal(stored.Properties, &props); err == nil {
			popup.Properties = props
		}
	}
	return popup
}
