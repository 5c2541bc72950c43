// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/lowisko/lowisko/internal/apiclient"
	"github.com/lowisko/lowisko/internal/localstore"
	"github.com/lowisko/lowisko/internal/models"
)

// fakeService scripts credential service outcomes per method
type fakeService struct {
	loginToken string
	loginUser  *models.User
	loginErr   error

	registerToken string
	registerUser  *models.User
	registerErr   error

	meUser *models.User
	meErr  error

	// barrier, when set, blocks Login until released so tests can
	// interleave a Logout with an in-flight login; started is closed
	// once Login has been entered
	barrier chan struct{}
	started chan struct{}

	logoutCalls int
}

func (f *fakeService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.barrier != nil {
		<-f.barrier
	}
	return f.loginToken, f.loginUser, f.loginErr
}

func (f *fakeService) Register(ctx context.Context, username, email, password string) (string, *models.User, error) {
	return f.registerToken, f.registerUser, f.registerErr
}

func (f *fakeService) Me(ctx context.Context, token string) (*models.User, error) {
	return f.meUser, f.meErr
}

func (f *fakeService) Logout(ctx context.Context) error {
	f.logoutCalls++
	return nil
}

func anna() *models.User {
	return &models.User{ID: 7, Username: "anna", Email: "a@b.pl", IsActive: true}
}

func TestLoginSuccessEstablishesSessionAndStoresToken(t *testing.T) {
	tokens := localstore.NewMemoryStore()
	store := NewStore(&fakeService{loginToken: "tok-1", loginUser: anna()}, tokens)

	if err := store.Login(context.Background(), "a@b.pl", "Haslo123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	st := store.State()
	if !st.IsAuthenticated || st.IsLoading {
		t.Errorf("state = %+v", st)
	}
	if st.Token != "tok-1" || st.User == nil || st.User.Username != "anna" {
		t.Errorf("session = token %q user %+v", st.Token, st.User)
	}
	if st.Failure != nil {
		t.Errorf("failure = %+v", st.Failure)
	}

	raw, err := tokens.Get(localstore.TokenKey)
	if err != nil || string(raw) != "tok-1" {
		t.Errorf("stored token = %q, err %v", raw, err)
	}
}

func TestLoginServerRejectionKeepsServerMessage(t *testing.T) {
	svc := &fakeService{
		loginErr: &apiclient.StatusError{StatusCode: http.StatusUnauthorized, Message: "Nieprawidłowy email lub hasło"},
	}
	store := NewStore(svc, localstore.NewMemoryStore())

	if err := store.Login(context.Background(), "a@b.pl", "zle"); err == nil {
		t.Fatal("expected error")
	}

	st := store.State()
	if st.IsAuthenticated {
		t.Error("rejected login must not authenticate")
	}
	if st.Failure == nil || st.Failure.Kind != FailureServerRejected {
		t.Fatalf("failure = %+v", st.Failure)
	}
	if st.Failure.Message != "Nieprawidłowy email lub hasło" {
		t.Errorf("message = %q", st.Failure.Message)
	}
}

func TestRejectedLoginClearsPreviousSession(t *testing.T) {
	svc := &fakeService{loginToken: "tok-1", loginUser: anna()}
	tokens := localstore.NewMemoryStore()
	store := NewStore(svc, tokens)

	if err := store.Login(context.Background(), "a@b.pl", "Haslo123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	svc.loginToken = ""
	svc.loginUser = nil
	svc.loginErr = &apiclient.StatusError{StatusCode: http.StatusUnauthorized, Message: "Nieprawidłowy email lub hasło"}

	if err := store.Login(context.Background(), "a@b.pl", "zle"); err == nil {
		t.Fatal("expected error")
	}

	st := store.State()
	if st.IsAuthenticated || st.User != nil || st.Token != "" {
		t.Errorf("session survived rejected login: %+v", st)
	}
	if st.Failure == nil || st.Failure.Kind != FailureServerRejected {
		t.Fatalf("failure = %+v", st.Failure)
	}
	if _, err := tokens.Get(localstore.TokenKey); !errors.Is(err, localstore.ErrKeyNotFound) {
		t.Errorf("stored token survived rejected login, err = %v", err)
	}
}

func TestLoginServerRejectionWithoutMessageUsesFallback(t *testing.T) {
	svc := &fakeService{loginErr: &apiclient.StatusError{StatusCode: http.StatusInternalServerError}}
	store := NewStore(svc, localstore.NewMemoryStore())

	_ = store.Login(context.Background(), "a@b.pl", "x")

	st := store.State()
	if st.Failure == nil || st.Failure.Message != "Logowanie nie powiodło się" {
		t.Errorf("failure = %+v", st.Failure)
	}
}

func TestLoginNetworkFailureIsLocalized(t *testing.T) {
	store := NewStore(&fakeService{loginErr: errors.New("dial tcp: connection refused")}, localstore.NewMemoryStore())

	_ = store.Login(context.Background(), "a@b.pl", "x")

	st := store.State()
	if st.Failure == nil || st.Failure.Kind != FailureNetwork {
		t.Fatalf("failure = %+v", st.Failure)
	}
	if st.Failure.Message != "Wystąpił błąd sieci" {
		t.Errorf("message = %q", st.Failure.Message)
	}
}

func TestRegisterFallbackMessage(t *testing.T) {
	svc := &fakeService{registerErr: &apiclient.StatusError{StatusCode: http.StatusConflict}}
	store := NewStore(svc, localstore.NewMemoryStore())

	_ = store.Register(context.Background(), "anna", "a@b.pl", "Haslo123")

	st := store.State()
	if st.Failure == nil || st.Failure.Message != "Rejestracja nie powiodła się" {
		t.Errorf("failure = %+v", st.Failure)
	}
}

func TestVerifyTokenWithoutStoredTokenIsSilent(t *testing.T) {
	store := NewStore(&fakeService{}, localstore.NewMemoryStore())

	failure := store.VerifyToken(context.Background())
	if failure == nil || failure.Kind != FailureNoSession {
		t.Fatalf("failure = %+v", failure)
	}

	st := store.State()
	if st.IsAuthenticated || st.Failure != nil {
		t.Errorf("state = %+v", st)
	}
}

func TestVerifyTokenSuccessResumesSession(t *testing.T) {
	tokens := localstore.NewMemoryStore()
	if err := tokens.Set(localstore.TokenKey, []byte("tok-1")); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	store := NewStore(&fakeService{meUser: anna()}, tokens)

	if failure := store.VerifyToken(context.Background()); failure != nil {
		t.Fatalf("failure = %+v", failure)
	}

	st := store.State()
	if !st.IsAuthenticated || st.Token != "tok-1" || st.User == nil {
		t.Errorf("state = %+v", st)
	}
}

func TestVerifyTokenRejectionClearsStoredToken(t *testing.T) {
	tokens := localstore.NewMemoryStore()
	if err := tokens.Set(localstore.TokenKey, []byte("stale")); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	svc := &fakeService{meErr: &apiclient.StatusError{StatusCode: http.StatusUnauthorized, Message: "Invalid token"}}
	store := NewStore(svc, tokens)

	failure := store.VerifyToken(context.Background())
	if failure == nil || failure.Kind != FailureServerRejected {
		t.Fatalf("failure = %+v", failure)
	}

	// Verification failures never surface in the session state.
	st := store.State()
	if st.Failure != nil || st.IsAuthenticated {
		t.Errorf("state = %+v", st)
	}
	if _, err := tokens.Get(localstore.TokenKey); !errors.Is(err, localstore.ErrKeyNotFound) {
		t.Errorf("stale token should be deleted, got err %v", err)
	}
}

func TestVerifyTokenNetworkFailureClearsStoredToken(t *testing.T) {
	tokens := localstore.NewMemoryStore()
	if err := tokens.Set(localstore.TokenKey, []byte("tok-1")); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	store := NewStore(&fakeService{meErr: errors.New("timeout")}, tokens)

	failure := store.VerifyToken(context.Background())
	if failure == nil || failure.Kind != FailureNetwork {
		t.Fatalf("failure = %+v", failure)
	}
	if _, err := tokens.Get(localstore.TokenKey); !errors.Is(err, localstore.ErrKeyNotFound) {
		t.Errorf("token should be deleted, got err %v", err)
	}
}

func TestLogoutClearsSessionAndToken(t *testing.T) {
	tokens := localstore.NewMemoryStore()
	svc := &fakeService{loginToken: "tok-1", loginUser: anna()}
	store := NewStore(svc, tokens)

	if err := store.Login(context.Background(), "a@b.pl", "Haslo123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	store.Logout(context.Background())

	st := store.State()
	if st.IsAuthenticated || st.User != nil || st.Token != "" {
		t.Errorf("state after logout = %+v", st)
	}
	if _, err := tokens.Get(localstore.TokenKey); !errors.Is(err, localstore.ErrKeyNotFound) {
		t.Errorf("token should be deleted, got err %v", err)
	}
	if svc.logoutCalls != 1 {
		t.Errorf("logout calls = %d", svc.logoutCalls)
	}
}

func TestLogoutDiscardsInFlightLogin(t *testing.T) {
	barrier := make(chan struct{})
	started := make(chan struct{})
	svc := &fakeService{loginToken: "tok-late", loginUser: anna(), barrier: barrier, started: started}
	store := NewStore(svc, localstore.NewMemoryStore())

	done := make(chan error, 1)
	go func() {
		done <- store.Login(context.Background(), "a@b.pl", "Haslo123")
	}()

	<-started
	store.Logout(context.Background())
	close(barrier)
	<-done

	// The login completed after logout bumped the generation, so its
	// result must not resurrect the session.
	st := store.State()
	if st.IsAuthenticated || st.Token != "" {
		t.Errorf("late login result applied: %+v", st)
	}
}

func TestClearError(t *testing.T) {
	svc := &fakeService{loginErr: &apiclient.StatusError{StatusCode: http.StatusUnauthorized, Message: "nope"}}
	store := NewStore(svc, localstore.NewMemoryStore())

	_ = store.Login(context.Background(), "a@b.pl", "x")
	if store.State().Failure == nil {
		t.Fatal("expected a failure to clear")
	}

	store.ClearError()
	if store.State().Failure != nil {
		t.Error("failure should be cleared")
	}
}
