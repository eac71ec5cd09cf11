package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "photo-sheet",
	Short: "Lay out passport and ID photos on printable A4 sheets",
	Long: `Photo Sheet arranges copies of a passport or ID photo on an A4 page and
exports the page as PDF, PNG or JPEG ready for printing.

It runs as a web service (serve) or directly from the command line
(plan, render).`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file applied on top of the environment (default $PHOTO_SHEET_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadConfig reads the environment and the optional --config file.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("PHOTO_SHEET_CONFIG")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// newLogger creates the process logger for cfg, writing to stderr.
func newLogger(cfg *config.Config) *log.Logger {
	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.Log.Level))
	log.SetDefault(logger)
	return logger
}
