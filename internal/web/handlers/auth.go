package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/kozaktomas/photo-sheet/internal/auth"
	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/logging"
	"github.com/kozaktomas/photo-sheet/internal/mail"
	"github.com/kozaktomas/photo-sheet/internal/web/middleware"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	config         *config.Config
	sessionManager *middleware.SessionManager
	otp            *auth.OTPManager
	mailer         mail.Mailer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config, sm *middleware.SessionManager, otp *auth.OTPManager, mailer mail.Mailer) *AuthHandler {
	return &AuthHandler{
		config:         cfg,
		sessionManager: sm,
		otp:            otp,
		mailer:         mailer,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Guest    bool   `json:"guest"`
	Verified bool   `json:"verified"`
}

func userToResponse(u *database.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		Guest:    u.Guest,
		Verified: u.Verified,
	}
}

// LoginResponse represents a login response
type LoginResponse struct {
	Success   bool          `json:"success"`
	SessionID string        `json:"session_id,omitempty"`
	ExpiresAt string        `json:"expires_at,omitempty"`
	User      *UserResponse `json:"user,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// startSession creates a session for user, sets the cookie and writes the
// login response.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *database.User) {
	session, err := h.sessionManager.CreateSession(r.Context(), user.ID, user.Guest)
	if err != nil {
		respondInternalError(w, r, "failed to create session", err)
		return
	}

	h.sessionManager.SetSessionCookie(w, r, session)

	respondJSON(w, http.StatusOK, LoginResponse{
		Success:   true,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		User:      userToResponse(user),
	})
}

// sendCode issues a fresh verification code and mails it.
func (h *AuthHandler) sendCode(r *http.Request, email string) error {
	code, err := h.otp.Issue(r.Context(), email)
	if err != nil {
		return err
	}
	return h.mailer.SendVerificationCode(r.Context(), email, code, constants.OTPTTL)
}

// Guest starts an anonymous session backed by a guest account
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	users, err := database.GetUserWriter(r.Context())
	if err != nil {
		respondInternalError(w, r, "storage unavailable", err)
		return
	}

	user := &database.User{Guest: true}
	if err := users.CreateUser(r.Context(), user); err != nil {
		respondInternalError(w, r, "failed to create guest", err)
		return
	}

	h.startSession(w, r, user)
}

// Register creates an unverified account and mails a verification code.
// Registering again with an unverified address replaces its password.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondInternalError(w, r, "failed to hash password", err)
		return
	}

	users, err := database.GetUserWriter(r.Context())
	if err != nil {
		respondInternalError(w, r, "storage unavailable", err)
		return
	}

	name := strings.TrimSpace(req.Name)
	existing, err := users.GetUserByEmail(r.Context(), email)
	switch {
	case err == nil && existing.Verified:
		respondError(w, http.StatusConflict, "an account with this e-mail already exists")
		return
	case err == nil:
		existing.PasswordHash = hash
		existing.Name = name
		if err := users.UpdateUser(r.Context(), existing); err != nil {
			respondInternalError(w, r, "failed to update account", err)
			return
		}
	case errors.Is(err, database.ErrNotFound):
		user := &database.User{Email: email, Name: name, PasswordHash: hash}
		if err := users.CreateUser(r.Context(), user); err != nil {
			if errors.Is(err, database.ErrConflict) {
				respondError(w, http.StatusConflict, "an account with this e-mail already exists")
				return
			}
			respondInternalError(w, r, "failed to create account", err)
			return
		}
	default:
		respondInternalError(w, r, "failed to look up account", err)
		return
	}

	if err := h.sendCode(r, email); err != nil {
		respondInternalError(w, r, "failed to send verification code", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success":               true,
		"email":                 email,
		"verification_required": true,
	})
}

// Verify confirms an e-mail address with its code and signs the user in
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil || strings.TrimSpace(req.Code) == "" {
		respondError(w, http.StatusBadRequest, "email and code are required")
		return
	}

	if err := h.otp.Verify(r.Context(), email, strings.TrimSpace(req.Code)); err != nil {
		switch {
		case errors.Is(err, auth.ErrTooManyAttempts):
			respondError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, auth.ErrInvalidCode), errors.Is(err, auth.ErrCodeExpired):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondInternalError(w, r, "failed to verify code", err)
		}
		return
	}

	users, err := database.GetUserWriter(r.Context())
	if err != nil {
		respondInternalError(w, r, "storage unavailable", err)
		return
	}
	user, err := users.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusBadRequest, auth.ErrCodeExpired.Error())
			return
		}
		respondInternalError(w, r, "failed to look up account", err)
		return
	}

	if !user.Verified {
		user.Verified = true
		if err := users.UpdateUser(r.Context(), user); err != nil {
			respondInternalError(w, r, "failed to update account", err)
			return
		}
	}

	logging.FromContext(r.Context()).Info("account verified", "user_id", user.ID)
	h.startSession(w, r, user)
}

// Resend mails a new code to an unverified account. The response does not
// reveal whether the address is registered.
func (h *AuthHandler) Resend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	users, err := database.GetUserWriter(r.Context())
	if err != nil {
		respondInternalError(w, r, "storage unavailable", err)
		return
	}
	user, err := users.GetUserByEmail(r.Context(), email)
	if err == nil && !user.Verified && user.PasswordHash != "" {
		if err := h.sendCode(r, email); err != nil {
			logging.FromContext(r.Context()).Error("failed to resend code", "email", sanitizeForLog(email), "err", err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Login handles e-mail and password login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Require both email and password
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	users, err := database.GetUserWriter(r.Context())
	if err != nil {
		respondInternalError(w, r, "storage unavailable", err)
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	var user *database.User
	if err == nil {
		user, err = users.GetUserByEmail(r.Context(), email)
	}
	if err != nil && !errors.Is(err, database.ErrNotFound) && !errors.Is(err, auth.ErrInvalidEmail) {
		respondInternalError(w, r, "failed to look up account", err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondJSON(w, http.StatusUnauthorized, LoginResponse{
			Success: false,
			Error:   "invalid credentials",
		})
		return
	}
	if !user.Verified {
		respondJSON(w, http.StatusForbidden, LoginResponse{
			Success: false,
			Error:   "e-mail address not verified",
		})
		return
	}

	h.startSession(w, r, user)
}

// Logout handles user logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessionManager.GetSessionFromRequest(r); session != nil {
		h.sessionManager.DeleteSession(r.Context(), session.ID)
	}

	h.sessionManager.ClearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// StatusResponse represents the auth status response
type StatusResponse struct {
	Authenticated bool          `json:"authenticated"`
	Guest         bool          `json:"guest,omitempty"`
	ExpiresAt     string        `json:"expires_at,omitempty"`
	User          *UserResponse `json:"user,omitempty"`
}

// Status checks if the user is authenticated by validating the session.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	session := h.sessionManager.GetSessionFromRequest(r)
	if session == nil {
		respondJSON(w, http.StatusOK, StatusResponse{Authenticated: false})
		return
	}

	resp := StatusResponse{
		Authenticated: true,
		Guest:         session.Guest,
		ExpiresAt:     session.ExpiresAt.Format(time.RFC3339),
	}
	if users, err := database.GetUserWriter(r.Context()); err == nil {
		if user, err := users.GetUser(r.Context(), session.UserID); err == nil {
			resp.User = userToResponse(user)
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
