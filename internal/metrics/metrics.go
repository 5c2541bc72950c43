// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

// Package metrics exposes Prometheus instrumentation for the API, the
// statistics cache and the websocket hub. Served at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lowisko_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lowisko_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lowisko_api_active_requests",
			Help: "Number of API requests currently in flight",
		},
	)

	// Fish catch metrics
	CatchesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lowisko_catches_recorded_total",
			Help: "Total number of fish catches recorded",
		},
	)

	// Stats cache metrics
	StatsCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lowisko_stats_cache_hits_total",
			Help: "Total number of statistics cache hits",
		},
	)

	StatsCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lowisko_stats_cache_misses_total",
			Help: "Total number of statistics cache misses",
		},
	)

	// WebSocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lowisko_websocket_connections",
			Help: "Number of connected websocket clients",
		},
	)

	// Auth metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lowisko_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"operation", "outcome"}, // operation: login|register|verify, outcome: success|failure
	)
)

// RecordAPIRequest records duration and count for one API request
func RecordAPIRequest(method, path, status string, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, path, status).Inc()
}

// TrackActiveRequest adjusts the in-flight request gauge
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordAuthAttempt counts an auth operation outcome
func RecordAuthAttempt(operation string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	AuthAttempts.WithLabelValues(operation, outcome).Inc()
}
