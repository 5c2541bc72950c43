// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

// Package websocket pushes live events to connected map clients. When a
// fish catch is recorded the hub broadcasts it so open lake drawers can
// refresh without polling.
package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/lowisko/lowisko/internal/logging"
	"github.com/lowisko/lowisko/internal/metrics"
	"github.com/lowisko/lowisko/internal/models"
)

// Message types for WebSocket communication
const (
	MessageTypeCatchRecorded = "catch_recorded"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
	MessageTypeStatsUpdate   = "stats_update"
)

// Message represents a WebSocket message
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext runs the hub until the context is canceled. Client
// lifecycle events take priority over broadcasts so client state is
// consistent before messages go out. Designed for suture supervision.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

func (h *Hub) shutdown(ctx context.Context) {
	count := h.GetClientCount()
	h.closeAllClients()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", reason).
		Int("clients_closed", count).
		Msg("websocket hub stopped")
}

// broadcastToClients sends a message to all connected clients in client-ID
// order. Clients with a full send buffer are dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WebSocketConnections.Set(float64(len(h.clients)))
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WebSocketConnections.Set(float64(len(h.clients)))
}

// BroadcastCatchRecorded notifies all clients that a fish catch was
// recorded so open lake drawers can refresh their catch tables.
func (h *Hub) BroadcastCatchRecorded(fc *models.FishCatch) {
	message := Message{
		Type: MessageTypeCatchRecorded,
		Data: fc,
	}

	select {
	case h.broadcast <- message:
		logging.Debug().Str("lake_id", fc.LakeID).Msg("broadcast catch_recorded")
	default:
		logging.Warn().Msg("broadcast channel full, dropping catch_recorded message")
	}
}

// StatsUpdateData is the payload of a stats_update message
type StatsUpdateData struct {
	Timestamp    string `json:"timestamp"`
	TotalCatches int    `json:"total_catches"`
}

// BroadcastStatsUpdate notifies clients that platform totals changed
func (h *Hub) BroadcastStatsUpdate(totalCatches int) {
	message := Message{
		Type: MessageTypeStatsUpdate,
		Data: StatsUpdateData{
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
			TotalCatches: totalCatches,
		},
	}

	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Msg("broadcast channel full, dropping stats_update message")
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
