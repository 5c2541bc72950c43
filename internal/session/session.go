// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

// Package session holds the client-side authentication state: who is
// logged in, the bearer token, and the last user-facing failure. The
// token is mirrored into the local store so a restarted client can
// verify it and resume the session.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/lowisko/lowisko/internal/apiclient"
	"github.com/lowisko/lowisko/internal/localstore"
	"github.com/lowisko/lowisko/internal/logging"
	"github.com/lowisko/lowisko/internal/models"
)

// Localized failure strings shown to the user
const (
	msgNetworkFailure  = "Wystąpił błąd sieci"
	msgLoginFallback   = "Logowanie nie powiodło się"
	msgRegisterFailure = "Rejestracja nie powiodła się"
)

// FailureKind classifies why an auth operation failed
type FailureKind int

const (
	// FailureServerRejected means the server answered with an error; the
	// message carries the server's text verbatim when it sent one.
	FailureServerRejected FailureKind = iota
	// FailureNetwork means the request never produced a server answer
	FailureNetwork
	// FailureNoSession means verification ran without a stored token
	FailureNoSession
)

// Failure is a classified auth error with its user-facing message
type Failure struct {
	Kind    FailureKind
	Message string
}

// State is an immutable view of the session at one point in time
type State struct {
	User            *models.User
	Token           string
	IsLoading       bool
	IsAuthenticated bool
	Failure         *Failure
}

// CredentialService is the backend surface the session store needs.
// Implemented by apiclient.Client in production and by fakes in tests.
type CredentialService interface {
	Login(ctx context.Context, email, password string) (token string, user *models.User, err error)
	Register(ctx context.Context, username, email, password string) (token string, user *models.User, err error)
	Me(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context) error
}

// Store is the auth session container. All mutation goes through its
// methods; reads return copies.
type Store struct {
	mu         sync.Mutex
	state      State
	svc        CredentialService
	tokens     localstore.Store
	generation uint64
}

// NewStore creates an anonymous session backed by the given credential
// service and token store.
func NewStore(svc CredentialService, tokens localstore.Store) *Store {
	return &Store{svc: svc, tokens: tokens}
}

// State returns a copy of the current session state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneLocked()
}

func (s *Store) cloneLocked() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	if st.Failure != nil {
		f := *st.Failure
		st.Failure = &f
	}
	return st
}

// begin marks the session pending and returns the generation the caller
// belongs to. Results arriving after a Logout bumped the generation are
// discarded.
func (s *Store) begin(clearFailure bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = true
	if clearFailure {
		s.state.Failure = nil
	}
	return s.generation
}

// stale reports whether gen no longer matches the live session
func (s *Store) staleLocked(gen uint64) bool {
	return gen != s.generation
}

// Login authenticates with email and password. On success the session
// becomes authenticated and the token is stored durably; a failure drops
// any previous session and leaves a classified Failure.
func (s *Store) Login(ctx context.Context, email, password string) error {
	gen := s.begin(true)

	token, user, err := s.svc.Login(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleLocked(gen) {
		return err
	}
	s.state.IsLoading = false

	if err != nil {
		failure := classify(err, msgLoginFallback)
		s.resetLocked()
		s.deleteTokenLocked()
		s.state.Failure = failure
		return err
	}

	s.establishLocked(token, user)
	return nil
}

// Register creates an account and signs in with it
func (s *Store) Register(ctx context.Context, username, email, password string) error {
	gen := s.begin(true)

	token, user, err := s.svc.Register(ctx, username, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleLocked(gen) {
		return err
	}
	s.state.IsLoading = false

	if err != nil {
		failure := classify(err, msgRegisterFailure)
		s.resetLocked()
		s.deleteTokenLocked()
		s.state.Failure = failure
		return err
	}

	s.establishLocked(token, user)
	return nil
}

// VerifyToken resumes a session from the durably stored token. Failures
// never surface to the user: missing token leaves the session anonymous,
// and a rejected or unreachable verification clears both the session and
// the stored token.
func (s *Store) VerifyToken(ctx context.Context) *Failure {
	raw, err := s.tokens.Get(localstore.TokenKey)
	if err != nil || len(raw) == 0 {
		return &Failure{Kind: FailureNoSession}
	}
	token := string(raw)

	gen := s.begin(false)

	user, err := s.svc.Me(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staleLocked(gen) {
		return nil
	}
	s.state.IsLoading = false

	if err != nil {
		s.resetLocked()
		s.deleteTokenLocked()

		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) {
			return &Failure{Kind: FailureServerRejected, Message: statusErr.Message}
		}
		return &Failure{Kind: FailureNetwork, Message: msgNetworkFailure}
	}

	s.establishLocked(token, user)
	return nil
}

// Logout drops the session and the stored token. In-flight operations
// started before the logout can no longer mutate the session.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	s.resetLocked()
	s.deleteTokenLocked()
	s.mu.Unlock()

	// Best effort; the server holds no session state for JWT auth.
	if err := s.svc.Logout(ctx); err != nil {
		logging.Debug().Err(err).Msg("Logout notification failed")
	}
}

// ClearError drops the displayed failure without touching the session
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Failure = nil
}

// IsAuthenticated reports whether a user is signed in
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsAuthenticated
}

// Token returns the live bearer token, empty when anonymous
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// User returns a copy of the signed-in user, nil when anonymous
func (s *Store) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

func (s *Store) establishLocked(token string, user *models.User) {
	s.state.Token = token
	s.state.User = user
	s.state.IsAuthenticated = true
	s.state.Failure = nil

	if err := s.tokens.Set(localstore.TokenKey, []byte(token)); err != nil {
		logging.Debug().Err(err).Msg("Failed to persist session token")
	}
}

func (s *Store) resetLocked() {
	s.state.User = nil
	s.state.Token = ""
	s.state.IsAuthenticated = false
	s.state.IsLoading = false
	s.state.Failure = nil
}

func (s *Store) deleteTokenLocked() {
	if err := s.tokens.Delete(localstore.TokenKey); err != nil && !errors.Is(err, localstore.ErrKeyNotFound) {
		logging.Debug().Err(err).Msg("Failed to delete session token")
	}
}

// classify maps a credential service error to a user-facing Failure.
// Server rejections keep the server's message when present, otherwise
// the operation's fallback text; anything else reads as a network error.
func classify(err error, fallback string) *Failure {
	var statusErr *apiclient.StatusError
	if errors.As(err, &statusErr) {
		msg := statusErr.Message
		if msg == "" {
			msg = fallback
		}
		return &Failure{Kind: FailureServerRejected, Message: msg}
	}
	return &Failure{Kind: FailureNetwork, Message: msgNetworkFailure}
}
