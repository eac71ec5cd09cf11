package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photo-sheet/internal/database/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending PostgreSQL migrations",
	Long: `Connect to DATABASE_URL and apply any migrations that have not run yet.
The server does this on startup as well.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		newLogger(cfg)
		if cfg.Database.URL == "" {
			return errors.New("DATABASE_URL environment variable is required")
		}
		pool, applied, err := postgres.Initialize(cmd.Context(), &cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		versions, err := pool.MigrationsApplied(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, v := range applied {
			fmt.Fprintf(out, "applied %s\n", v)
		}
		fmt.Fprintf(out, "%d migration(s) applied, schema at %s\n", len(applied), versions[len(versions)-1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
