package web

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-sheet/internal/auth"
	"github.com/kozaktomas/photo-sheet/internal/web/handlers"
	"github.com/kozaktomas/photo-sheet/internal/web/middleware"
	"github.com/kozaktomas/photo-sheet/internal/web/static"
)

func (s *Server) setupRoutes(sessionManager *middleware.SessionManager) {
	// Optional services stay nil interfaces when unconfigured
	var remover handlers.BackgroundRemover
	if s.deps.Remover != nil {
		remover = s.deps.Remover
	}

	oauthHandler := handlers.NewOAuthHandler(s.config, sessionManager, nil, nil)
	if s.deps.Google != nil {
		oauthHandler = handlers.NewOAuthHandler(s.config, sessionManager, s.deps.Google, auth.NewStateStore(s.deps.KV))
	}

	// Create handlers
	otp := auth.NewOTPManager(s.deps.KV)
	authHandler := handlers.NewAuthHandler(s.config, sessionManager, otp, s.deps.Mailer)
	configHandler := handlers.NewConfigHandler(s.config)
	layoutHandler := handlers.NewLayoutHandler(s.config, remover)
	photoHandler := handlers.NewPhotoHandler(s.config, remover)
	presetHandler := handlers.NewPresetHandler()

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Get("/health", handlers.HealthCheck)
		r.Get("/config", configHandler.Get)
		r.Get("/sizes", configHandler.Sizes)
		r.Post("/layout/plan", layoutHandler.Plan)

		// Auth
		r.Post("/auth/guest", authHandler.Guest)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/verify", authHandler.Verify)
		r.Post("/auth/resend", authHandler.Resend)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/status", authHandler.Status)
		r.Get("/auth/google", oauthHandler.Start)
		r.Get("/auth/google/callback", oauthHandler.Callback)

		// Guests and accounts
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(sessionManager))

			r.Post("/photos/remove-background", photoHandler.RemoveBackground)
			r.Post("/preview", layoutHandler.Preview)
			r.Post("/export", layoutHandler.Export)

			// Accounts only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAccount)

				r.Get("/presets", presetHandler.List)
				r.Post("/presets", presetHandler.Create)
				r.Get("/presets/{id}", presetHandler.Get)
				r.Put("/presets/{id}", presetHandler.Update)
				r.Delete("/presets/{id}", presetHandler.Delete)
			})
		})
	})

	// Front page for everything else
	s.router.Get("/*", serveFrontend)
}

// serveFrontend serves embedded files by path and the front page for any
// other path.
func serveFrontend(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name != "" && name != "index.html" {
		if info, err := fs.Stat(static.FS(), name); err == nil && !info.IsDir() {
			http.ServeFileFS(w, r, static.FS(), name)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(static.Index())
}
