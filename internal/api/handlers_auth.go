// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package api

import (
	"errors"
	"net/http"

	"github.com/lowisko/lowisko/internal/auth"
	"github.com/lowisko/lowisko/internal/database"
	"github.com/lowisko/lowisko/internal/logging"
	"github.com/lowisko/lowisko/internal/metrics"
	"github.com/lowisko/lowisko/internal/models"
	"github.com/lowisko/lowisko/internal/validation"
)

// Polish user-facing auth messages
const (
	msgCredentialsRequired  = "Email i hasło są wymagane"
	msgInvalidCredentials   = "Nieprawidłowy email lub hasło"
	msgAccountDeactivated   = "Konto zostało dezaktywowane"
	msgInternalError        = "Błąd wewnętrzny serwera"
	msgRegisterRequired     = "Nazwa użytkownika, email i hasło są wymagane"
	msgUsernameLength       = "Nazwa użytkownika musi mieć od 3 do 50 znaków"
	msgUsernameChars        = "Nazwa użytkownika może zawierać tylko litery, cyfry i podkreślenia"
	msgEmailFormat          = "Nieprawidłowy format adresu email"
	msgPasswordLength       = "Hasło musi mieć co najmniej 6 znaków"
	msgPasswordStrength     = "Hasło musi zawierać co najmniej jedną wielką literę, jedną małą literę i jedną cyfrę"
	msgUsernameTaken        = "Nazwa użytkownika jest już zajęta"
	msgEmailTaken           = "Konto na ten adres email już istnieje"
)

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgCredentialsRequired)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, msgCredentialsRequired)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, database.ErrNotFound) {
		metrics.RecordAuthAttempt("login", false)
		respondError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}
	if err != nil {
		logging.Error().Err(err).Msg("Login lookup failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	if !user.IsActive {
		metrics.RecordAuthAttempt("login", false)
		respondError(w, http.StatusUnauthorized, msgAccountDeactivated)
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		metrics.RecordAuthAttempt("login", false)
		respondError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	if err := h.store.TouchLastLogin(r.Context(), user.ID); err != nil {
		logging.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to update last login")
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Email, user.Username)
	if err != nil {
		logging.Error().Err(err).Msg("Token generation failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	metrics.RecordAuthAttempt("login", true)
	respondJSON(w, http.StatusOK, models.AuthResponse{
		Token: token,
		User: models.User{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			IsActive: true,
		},
	})
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, msgRegisterRequired)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, msgRegisterRequired)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		respondError(w, http.StatusBadRequest, registerMessage(verr))
		return
	}

	taken, err := h.store.UsernameExists(r.Context(), req.Username)
	if err != nil {
		logging.Error().Err(err).Msg("Username check failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if taken {
		respondError(w, http.StatusConflict, msgUsernameTaken)
		return
	}

	exists, err := h.store.EmailExists(r.Context(), req.Email)
	if err != nil {
		logging.Error().Err(err).Msg("Email check failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	if exists {
		respondError(w, http.StatusConflict, msgEmailTaken)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.Security.BcryptCost)
	if err != nil {
		logging.Error().Err(err).Msg("Password hashing failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, req.Email, hash)
	if err != nil {
		logging.Error().Err(err).Msg("User creation failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Email, user.Username)
	if err != nil {
		logging.Error().Err(err).Msg("Token generation failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	metrics.RecordAuthAttempt("register", true)
	respondJSON(w, http.StatusCreated, models.AuthResponse{
		Token: token,
		User: models.User{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			IsActive: true,
		},
	})
}

// registerMessage maps the first failed validation tag to the Polish
// message the registration form shows.
func registerMessage(verr *validation.RequestValidationError) string {
	for _, fe := range verr.Errors() {
		switch fe.Field() {
		case "Username":
			switch fe.Tag() {
			case "min", "max":
				return msgUsernameLength
			case "username_chars":
				return msgUsernameChars
			}
		case "Email":
			return msgEmailFormat
		case "Password":
			switch fe.Tag() {
			case "min":
				return msgPasswordLength
			case "password_strength":
				return msgPasswordStrength
			}
		}
	}
	return msgRegisterRequired
}

// Me handles GET /api/auth/me. RequireAuth has already validated the
// token; this refreshes the user from the database.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		logging.Error().Err(err).Msg("User lookup failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if !user.IsActive {
		respondError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	}

	metrics.RecordAuthAttempt("verify", true)
	respondJSON(w, http.StatusOK, models.MeResponse{User: user.User})
}

// Logout handles POST /api/auth/logout. JWT auth is stateless so the
// endpoint only confirms; the client discards the token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}
