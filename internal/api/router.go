// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lowisko/lowisko/internal/middleware"
)

// NewRouter builds the chi router with the full middleware chain and
// all API routes mounted.
func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global rate limit keyed by client IP.
	r.Use(httprate.Limit(
		h.cfg.Security.RateLimitReqs,
		h.cfg.Security.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// Tighter limit on credential endpoints.
			r.Use(httprate.Limit(
				h.cfg.Security.AuthRateLimit,
				h.cfg.Security.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			))

			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/logout", h.Logout)
			r.With(h.jwtManager.RequireAuth).Get("/me", h.Me)
		})

		r.Route("/fish-catch", func(r chi.Router) {
			r.With(h.jwtManager.OptionalAuth).Post("/", h.CreateFishCatch)
			r.Get("/", h.ListFishCatches)
		})

		r.With(h.jwtManager.RequireAuth).Get("/user/stats", h.UserStats)
		r.Get("/stats/global", h.GlobalStats)

		r.Get("/health", h.Health)
		r.Get("/ws", h.WebSocket)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
