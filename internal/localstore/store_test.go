// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package localstore

import (
	"errors"
	"testing"
)

// storeFactories lists every Store implementation under test.
func storeFactories(t *testing.T) map[string]Store {
	t.Helper()

	badgerStore, err := OpenBadger(t.TempDir())
	if err != nil {
		t.Fatalf("open badger store: %v", err)
	}
	t.Cleanup(func() {
		if err := badgerStore.Close(); err != nil {
			t.Errorf("close badger store: %v", err)
		}
	})

	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": badgerStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(MapUIKey, []byte(`{"zoom":15}`)); err != nil {
				t.Fatalf("set: %v", err)
			}

			got, err := store.Get(MapUIKey)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != `{"zoom":15}` {
				t.Errorf("got %q, want %q", got, `{"zoom":15}`)
			}
		})
	}
}

func TestStoreGetMissingKey(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("nope")
			if !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("expected ErrKeyNotFound, got %v", err)
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(TokenKey, []byte("bearer-value")); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Delete(TokenKey); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := store.Get(TokenKey); !errors.Is(err, ErrKeyNotFound) {
				t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
			}

			// Deleting an absent key is not an error.
			if err := store.Delete(TokenKey); err != nil {
				t.Errorf("delete absent key: %v", err)
			}
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	for name, store := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(MapUIKey, []byte("old")); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(MapUIKey, []byte("new")); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			got, err := store.Get(MapUIKey)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if string(got) != "new" {
				t.Errorf("got %q after overwrite, want %q", got, "new")
			}
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Set("k", []byte("abc")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get("k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got[0] = 'X'

	again, err := store.Get("k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(again) != "abc" {
		t.Errorf("stored value mutated through returned slice: %q", again)
	}
}
