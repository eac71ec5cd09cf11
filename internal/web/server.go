package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kozaktomas/photo-sheet/internal/auth"
	"github.com/kozaktomas/photo-sheet/internal/bgremove"
	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/kvstore"
	"github.com/kozaktomas/photo-sheet/internal/logging"
	"github.com/kozaktomas/photo-sheet/internal/mail"
	"github.com/kozaktomas/photo-sheet/internal/web/middleware"
)

// Dependencies are the services the server is wired to. Remover and Google
// may be nil when the feature is not configured.
type Dependencies struct {
	Logger  *log.Logger
	KV      kvstore.Store
	Mailer  mail.Mailer
	Remover *bgremove.Client
	Google  *auth.GoogleProvider
}

// Server represents the web server
type Server struct {
	config         *config.Config
	deps           Dependencies
	router         *chi.Mux
	httpServer     *http.Server
	sessionManager *middleware.SessionManager
}

// NewServer creates a new web server. Sessions are persisted through
// sessionRepo when it is non-nil.
func NewServer(cfg *config.Config, deps Dependencies, sessionRepo database.SessionRepository) *Server {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.KV == nil {
		deps.KV = kvstore.NewMemoryStore()
	}
	if deps.Mailer == nil {
		deps.Mailer = mail.NewLogMailer(cfg.Mail.From, deps.Logger)
	}

	r := chi.NewRouter()

	// Create session manager with optional persistence
	sessionManager := middleware.NewSessionManager(cfg.Web.SessionSecret, sessionRepo)
	sessionManager.SetSecureCookies(cfg.Web.SecureCookies)
	sessionManager.SetLogger(deps.Logger.WithPrefix("sessions"))

	s := &Server{
		config:         cfg,
		deps:           deps,
		router:         r,
		sessionManager: sessionManager,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(logging.RequestLogger(deps.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(2 * time.Minute))
	r.Use(middleware.CORS(cfg.Web.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())

	// Set up routes
	s.setupRoutes(sessionManager)

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute, // exports with background removal can be slow
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.deps.Logger.Info("starting web server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.deps.Logger.Info("shutting down web server")

	// Stop the session cleanup goroutine
	if s.sessionManager != nil {
		s.sessionManager.Stop()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
