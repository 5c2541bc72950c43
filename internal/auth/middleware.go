// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/lowisko/lowisko/internal/models"
)

type contextKey string

// ClaimsContextKey is the request context key holding the validated *Claims
const ClaimsContextKey contextKey = "claims"

// ExtractBearerToken pulls the token out of an "Authorization: Bearer x"
// header. Returns "" when the header is missing or not a bearer scheme.
func ExtractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

// ClaimsFromContext returns the claims placed by the middleware, nil when
// the request was not authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(ClaimsContextKey).(*Claims)
	return claims
}

// RequireAuth rejects requests without a valid bearer token with 401.
// Valid claims are placed into the request context.
func (m *JWTManager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			unauthorized(w, "No token provided")
			return
		}

		claims, err := m.ValidateToken(token)
		if err != nil {
			unauthorized(w, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth places claims in the context when a valid token is present
// and passes the request through either way. Invalid tokens are treated
// as anonymous rather than rejected.
func (m *JWTManager) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractBearerToken(r.Header.Get("Authorization"))
		if token != "" {
			if claims, err := m.ValidateToken(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(models.ErrorResponse{Error: message})
}
