// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTreeAppliesDefaults(t *testing.T) {
	tree := NewTree(testLogger(), TreeConfig{})

	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", tree.config.FailureThreshold)
	}
	if tree.config.FailureDecay != 30.0 {
		t.Errorf("FailureDecay = %v, want 30.0", tree.config.FailureDecay)
	}
	if tree.config.FailureBackoff != 15*time.Second {
		t.Errorf("FailureBackoff = %v, want 15s", tree.config.FailureBackoff)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", tree.config.ShutdownTimeout)
	}
	if tree.Root() == nil {
		t.Error("Root() returned nil")
	}
}

// stubService blocks until canceled and records that it ran.
type stubService struct {
	started chan struct{}
}

func (s *stubService) Serve(ctx context.Context) error {
	select {
	case s.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string { return "stub" }

func TestTreeRunsAndStopsServices(t *testing.T) {
	tree := NewTree(testLogger(), DefaultTreeConfig())

	data := &stubService{started: make(chan struct{}, 1)}
	messaging := &stubService{started: make(chan struct{}, 1)}
	api := &stubService{started: make(chan struct{}, 1)}

	tree.AddDataService(data)
	tree.AddMessagingService(messaging)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, svc := range []*stubService{data, messaging, api} {
		select {
		case <-svc.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("service %s did not start", svc)
		}
	}

	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not stop after cancel")
	}
}
