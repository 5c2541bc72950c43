// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lowisko/lowisko/internal/models"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("not found")

// UserRecord is a user row including the password hash. It never crosses
// the API boundary; handlers convert it to models.User.
type UserRecord struct {
	models.User
	PasswordHash string
}

// GetUserByEmail returns the user owning an email address
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*UserRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, is_active, created_at, last_login
		 FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetUserByID returns a user by primary key
func (s *Store) GetUserByID(ctx context.Context, id int64) (*UserRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, email, password_hash, is_active, created_at, last_login
		 FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*UserRecord, error) {
	var u UserRecord
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// UsernameExists reports whether a username is already taken
func (s *Store) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// EmailExists reports whether an email address already has an account
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// CreateUser inserts a new account and returns it with generated fields
func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash string) (*UserRecord, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, created_at, last_login)
		 VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		 RETURNING id, username, email, password_hash, is_active, created_at, last_login`,
		username, email, passwordHash)
	return scanUser(row)
}

// TouchLastLogin stamps the user's last successful login
func (s *Store) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET last_login = CURRENT_TIMESTAMP WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}
