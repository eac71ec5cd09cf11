package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/kozaktomas/photo-sheet/internal/auth"
	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/logging"
	"github.com/kozaktomas/photo-sheet/internal/web/middleware"
)

// googleAuth is the part of auth.GoogleProvider the handler needs.
type googleAuth interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleUser, error)
}

// OAuthHandler handles the Google sign-in redirect flow
type OAuthHandler struct {
	config         *config.Config
	sessionManager *middleware.SessionManager
	provider       googleAuth
	states         *auth.StateStore
}

// NewOAuthHandler creates a new OAuth handler. provider may be nil when Google
// sign-in is not configured.
func NewOAuthHandler(cfg *config.Config, sm *middleware.SessionManager, provider googleAuth, states *auth.StateStore) *OAuthHandler {
	return &OAuthHandler{
		config:         cfg,
		sessionManager: sm,
		provider:       provider,
		states:         states,
	}
}

func (h *OAuthHandler) enabled() bool {
	return h.provider != nil && h.states != nil
}

// Start redirects the browser to the Google consent page
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !h.enabled() {
		respondError(w, http.StatusNotFound, "google sign-in is not configured")
		return
	}

	state, err := h.states.Generate(r.Context())
	if err != nil {
		respondInternalError(w, r, "failed to start sign-in", err)
		return
	}
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the flow, linking the Google account to an existing
// user with the same verified e-mail or creating a new one.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.enabled() {
		respondError(w, http.StatusNotFound, "google sign-in is not configured")
		return
	}

	query := r.URL.Query()
	if e := query.Get("error"); e != "" {
		respondError(w, http.StatusUnauthorized, "google sign-in was cancelled")
		return
	}

	ok, err := h.states.Validate(r.Context(), query.Get("state"))
	if err != nil {
		respondInternalError(w, r, "failed to check state", err)
		return
	}
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid or expired state")
		return
	}

	code := query.Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	profile, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		logging.FromContext(r.Context()).Warn("google exchange failed", "err", err)
		respondError(w, http.StatusBadGateway, "google sign-in failed")
		return
	}

	user, err := h.findOrCreateUser(r.Context(), profile)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidEmail) {
			respondError(w, http.StatusBadRequest, "google account has no usable e-mail")
			return
		}
		respondInternalError(w, r, "failed to sign in", err)
		return
	}

	session, err := h.sessionManager.CreateSession(r.Context(), user.ID, false)
	if err != nil {
		respondInternalError(w, r, "failed to create session", err)
		return
	}
	h.sessionManager.SetSessionCookie(w, r, session)

	target := h.config.Web.BaseURL
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *OAuthHandler) findOrCreateUser(ctx context.Context, profile *auth.GoogleUser) (*database.User, error) {
	users, err := database.GetUserWriter(ctx)
	if err != nil {
		return nil, err
	}

	user, err := users.GetUserByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	email, err := auth.NormalizeEmail(profile.Email)
	if err != nil || !profile.EmailVerified {
		return nil, auth.ErrInvalidEmail
	}

	user, err = users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if !user.Verified {
			// The password came from an unconfirmed registration.
			user.PasswordHash = ""
		}
		user.GoogleID = profile.ID
		user.Verified = true
		if user.Name == "" {
			user.Name = profile.Name
		}
		if err := users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		logging.FromContext(ctx).Info("linked google account", "user_id", user.ID)
		return user, nil
	case errors.Is(err, database.ErrNotFound):
		user = &database.User{
			Email:    email,
			Name:     profile.Name,
			GoogleID: profile.ID,
			Verified: true,
		}
		if err := users.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	default:
		return nil, err
	}
}
