// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package models

// ErrorResponse is the flat error shape used by auth and stats endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse carries an informational message, e.g. logout confirmation
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthStatus is the health check response
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	Uptime            float64 `json:"uptime_seconds"`
}
