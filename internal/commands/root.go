package commands

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/config"
	"github.com/cmlabs-hris/worktracker-backend-go/internal/pkg/database"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "worktrackctl",
	Short: "Operator tool for the work hours tracker",
	Long: `worktrackctl runs maintenance tasks against the work hours tracker database:
schema migrations, holiday imports, stale session cleanup and development tokens.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "worktrackctl %s (commit %s, built %s)\n", version, commit, date)
	},
}

// withDB loads configuration, connects to PostgreSQL and closes the pool after fn.
func withDB(ctx context.Context, fn func(cfg *config.Config, db *database.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	return fn(cfg, db)
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(holidaysCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(versionCmd)
}
