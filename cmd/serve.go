package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-sheet/internal/auth"
	"github.com/kozaktomas/photo-sheet/internal/bgremove"
	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/database/memory"
	"github.com/kozaktomas/photo-sheet/internal/database/postgres"
	"github.com/kozaktomas/photo-sheet/internal/kvstore"
	"github.com/kozaktomas/photo-sheet/internal/mail"
	"github.com/kozaktomas/photo-sheet/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Photo Sheet web server.

Accounts, presets and sessions are stored in PostgreSQL when DATABASE_URL is
set and in memory otherwise. Verification codes and OAuth state use Redis when
REDIS_URL is set.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides WEB_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides WEB_HOST)")
	serveCmd.Flags().String("session-secret", "", "Secret for signing session cookies (overrides WEB_SESSION_SECRET)")
}

// applyServeFlags lets explicit flags override the loaded configuration.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if port := mustGetInt(cmd, "port"); port > 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
	if secret := mustGetString(cmd, "session-secret"); secret != "" {
		cfg.Web.SessionSecret = secret
	}
}

// initStorage registers the storage backend and returns its session
// repository with a function that releases it.
func initStorage(ctx context.Context, cfg *config.Config, logger *log.Logger) (database.SessionRepository, func(), error) {
	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory storage; data is lost on restart")
		store := memory.New()
		memory.Register(store)
		return store, func() {}, nil
	}

	logger.Info("connecting to PostgreSQL")
	pool, applied, err := postgres.Initialize(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	for _, v := range applied {
		logger.Info("applied migration", "version", v)
	}
	logger.Info("using PostgreSQL backend")
	closePool := func() {
		if err := pool.Close(); err != nil {
			logger.Error("failed to close database pool", "err", err)
		}
	}
	return database.GetSessionRepository(), closePool, nil
}

// initKV connects to Redis when configured and falls back to memory.
func initKV(ctx context.Context, cfg *config.Config, logger *log.Logger) (kvstore.Store, error) {
	if cfg.Redis.URL == "" {
		logger.Info("REDIS_URL not set, keeping verification codes in memory")
		return kvstore.NewMemoryStore(), nil
	}
	store, err := kvstore.NewRedisStore(ctx, cfg.Redis.URL, "photo-sheet:")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("using Redis for verification codes")
	return store, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyServeFlags(cmd, cfg)
	logger := newLogger(cfg)

	if cfg.Web.SessionSecret == "" {
		logger.Warn("WEB_SESSION_SECRET not set, using the development secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionRepo, closeStorage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	kv, err := initKV(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer kv.Close()

	deps := web.Dependencies{
		Logger: logger,
		KV:     kv,
		Mailer: mail.NewLogMailer(cfg.Mail.From, logger.WithPrefix("mail")),
	}
	if len(cfg.RemoveBG.APIKeys) > 0 {
		timeout := time.Duration(cfg.RemoveBG.TimeoutSeconds) * time.Second
		deps.Remover = bgremove.New(cfg.RemoveBG.URL, cfg.RemoveBG.APIKeys, timeout, logger.WithPrefix("remove-bg"))
		logger.Info("background removal enabled", "keys", len(cfg.RemoveBG.APIKeys))
	}
	if cfg.Google.Enabled() {
		deps.Google = auth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.GoogleRedirectURL())
		logger.Info("google sign-in enabled", "redirect", cfg.GoogleRedirectURL())
	}

	server := web.NewServer(cfg, deps, sessionRepo)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during shutdown", "err", err)
		}
	}()

	logger.Info("Photo Sheet is running", "url", fmt.Sprintf("http://%s:%d", cfg.Web.Host, cfg.Web.Port))

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
