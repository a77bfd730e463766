package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd returns the court-fetcher command. Without a subcommand it serves
// the HTTP API.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "court-fetcher",
		Short: "Search Indian court cases and fetch their documents",
		Long: `court-fetcher serves an HTTP API for case searches, document downloads
and daily cause lists, recording every query in a relational store.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}

	cmd.AddCommand(ServeCmd())
	cmd.AddCommand(MigrateCmd())
	cmd.AddCommand(DoctorCmd())
	cmd.AddCommand(PruneCmd())

	return cmd
}
