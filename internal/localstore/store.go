// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

// Package localstore provides the durable local key-value store shared by
// the map-UI snapshot codec and the auth session store. The two writers use
// distinct, non-overlapping keys; writes are idempotent snapshots of current
// state, so last-write-wins is acceptable.
package localstore

import "errors"

// Well-known keys. Keep these stable: existing installations have data
// persisted under them.
const (
	// MapUIKey holds the JSON-encoded persisted map-UI snapshot.
	MapUIKey = "mapUiStateV2"

	// TokenKey holds the raw bearer-token string.
	TokenKey = "token"
)

// ErrKeyNotFound is returned by Get when no value exists under the key.
var ErrKeyNotFound = errors.New("localstore: key not found")

// Store is a string-keyed durable byte store.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(key string) ([]byte, error)

	// Set stores value under key, replacing any existing value.
	Set(key string, value []byte) error

	// Delete removes the value under key. Deleting an absent key is not
	// an error.
	Delete(key string) error

	// Close releases underlying resources.
	Close() error
}
