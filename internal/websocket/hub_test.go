// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/lowisko/lowisko/internal/metrics"
	"github.com/lowisko/lowisko/internal/models"
)

// newTestClient builds a client without a live connection; the pumps are
// not started so the send channel can be drained directly.
func newTestClient(hub *Hub) *Client {
	return NewClient(hub, nil)
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("hub did not stop")
		}
	})
	return hub, cancel
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.GetClientCount() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("client count = %d, want %d", hub.GetClientCount(), want)
}

func TestRegisterUnregister(t *testing.T) {
	hub, _ := startHub(t)

	client := newTestClient(hub)
	hub.Register <- client
	waitForClients(t, hub, 1)

	hub.Unregister <- client
	waitForClients(t, hub, 0)

	// Unregister closes the send channel.
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed send channel")
		}
	case <-time.After(time.Second):
		t.Error("send channel not closed")
	}
}

func waitForGauge(t *testing.T, want float64) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if testutil.ToFloat64(metrics.WebSocketConnections) == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("connection gauge = %g, want %g", testutil.ToFloat64(metrics.WebSocketConnections), want)
}

func TestConnectionGaugeTracksClients(t *testing.T) {
	hub, cancel := startHub(t)

	first := newTestClient(hub)
	second := newTestClient(hub)
	hub.Register <- first
	hub.Register <- second
	waitForClients(t, hub, 2)
	waitForGauge(t, 2)

	hub.Unregister <- first
	waitForClients(t, hub, 1)
	waitForGauge(t, 1)

	cancel()
	waitForGauge(t, 0)
}

func TestBroadcastCatchRecorded(t *testing.T) {
	hub, _ := startHub(t)

	c1 := newTestClient(hub)
	c2 := newTestClient(hub)
	hub.Register <- c1
	hub.Register <- c2
	waitForClients(t, hub, 2)

	hub.BroadcastCatchRecorded(&models.FishCatch{ID: 1, LakeID: "Jezioro Głębokie", Fish: "Szczupak"})

	for _, client := range []*Client{c1, c2} {
		select {
		case msg := <-client.send:
			if msg.Type != MessageTypeCatchRecorded {
				t.Errorf("type = %q", msg.Type)
			}
			fc, ok := msg.Data.(*models.FishCatch)
			if !ok || fc.LakeID != "Jezioro Głębokie" {
				t.Errorf("data = %+v", msg.Data)
			}
		case <-time.After(time.Second):
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	hub, _ := startHub(t)

	slow := newTestClient(hub)
	slow.send = make(chan Message) // unbuffered and never drained
	hub.Register <- slow
	waitForClients(t, hub, 1)

	hub.BroadcastStatsUpdate(10)
	waitForClients(t, hub, 0)
}

func TestShutdownClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	client := newTestClient(hub)
	hub.Register <- client
	waitForClients(t, hub, 1)

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("err = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("clients remain after shutdown: %d", hub.GetClientCount())
	}
}

func TestMarshalMessage(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"type":"pong","data":null}` {
		t.Errorf("json = %s", data)
	}
}
