// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

/*
client.go - Lowisko HTTP API Client

Typed client for the Lowisko REST API, used by the interactive map client
and by the session store. All calls go through a circuit breaker so a dead
backend fails fast instead of piling up timeouts.

Resilience Mechanisms:
  - Circuit Breaker: opens after 60% failure rate with minimum 10 requests
  - Context: all methods accept context for cancellation
  - Error body reads capped at 64KB
*/
package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/lowisko/lowisko/internal/logging"
	"github.com/lowisko/lowisko/internal/models"
)

// maxErrorBodySize limits how much of an error response body is read
const maxErrorBodySize = 64 * 1024 // 64KB

// StatusError is returned when the server answers with a non-2xx status.
// Message carries the server-provided error text when one was decodable.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Client talks to the Lowisko backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates an API client for the given base URL, e.g.
// "http://localhost:8080". The trailing slash is optional.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "lowisko-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
		},
	})

	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
	}
}

// doJSON performs a request and decodes a 2xx response body into result.
// Non-2xx responses become *StatusError with the server's error message
// when the body carries one.
func (c *Client) doJSON(ctx context.Context, method, path, token string, payload, result interface{}) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	respBody, err := c.cb.Execute(func() ([]byte, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{
				StatusCode: resp.StatusCode,
				Message:    decodeErrorMessage(data),
			}
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// decodeErrorMessage pulls the error text out of either error shape the
// API uses: {"error": "..."} or {"success": false, "error": "..."}.
func decodeErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}

// Login exchanges credentials for a token and the account it belongs to
func (c *Client) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	req := models.LoginRequest{Email: email, Password: password}
	var resp models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return "", nil, err
	}
	return resp.Token, &resp.User, nil
}

// Register creates an account and returns its first token
func (c *Client) Register(ctx context.Context, username, email, password string) (string, *models.User, error) {
	req := models.RegisterRequest{Username: username, Email: email, Password: password}
	var resp models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", req, &resp); err != nil {
		return "", nil, err
	}
	return resp.Token, &resp.User, nil
}

// Me fetches the account behind a token. A 401 means the token is no
// longer valid.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var resp models.MeResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout informs the server of logout. Token invalidation is client-side,
// the call exists for a consistent API surface.
func (c *Client) Logout(ctx context.Context) error {
	var resp models.MessageResponse
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", "", nil, &resp)
}

// CreateFishCatch records a catch for a lake
func (c *Client) CreateFishCatch(ctx context.Context, token string, req models.CreateFishCatch) (*models.FishCatch, error) {
	var resp struct {
		Success bool             `json:"success"`
		Data    models.FishCatch `json:"data"`
		Error   string           `json:"error"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/fish-catch", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// ListFishCatches returns catches, optionally filtered to a single lake
func (c *Client) ListFishCatches(ctx context.Context, lakeID string) ([]models.FishCatch, error) {
	path := "/api/fish-catch"
	if lakeID != "" {
		path += "?lake_id=" + url.QueryEscape(lakeID)
	}
	var resp struct {
		Success bool               `json:"success"`
		Data    []models.FishCatch `json:"data"`
		Error   string             `json:"error"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// UserStats fetches the authenticated user's fishing statistics
func (c *Client) UserStats(ctx context.Context, token string) (*models.UserStats, error) {
	var resp models.UserStatsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/stats", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

// GlobalStats fetches public platform-wide statistics
func (c *Client) GlobalStats(ctx context.Context) (*models.PlatformStats, error) {
	var resp models.PlatformStats
	if err := c.doJSON(ctx, http.MethodGet, "/api/stats/global", "", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
