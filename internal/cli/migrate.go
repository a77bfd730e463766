package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JustJay7/court-fetcher/internal/config"
	"github.com/JustJay7/court-fetcher/internal/database"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			db, err := database.Initialize(dbOptions(cfg))
			if err != nil {
				return err
			}
			defer database.Close(db)

			fmt.Fprintln(cmd.OutOrStdout(), "Database migrations completed successfully")
			return nil
		},
	}
}
