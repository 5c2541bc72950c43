// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package models

import (
	"time"
)

// User represents an authenticated account as returned by the API.
// The password hash never leaves the database layer.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	IsActive  bool       `json:"isActive"`
}

// LoginRequest is the payload for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the payload for POST /api/auth/register.
// Username and password constraints mirror the registration form.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50,username_chars"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,password_strength"`
}

// AuthResponse is returned by login and register on success
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// MeResponse wraps the current user for GET /api/auth/me
type MeResponse struct {
	User User `json:"user"`
}
