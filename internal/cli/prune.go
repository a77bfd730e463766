package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// PruneCmd returns the prune command for removing old downloaded documents
func PruneCmd() *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete downloaded documents older than a given age",
		Long: `Delete downloaded document files older than the given age and clear their
cached path, so the next download fetches them again.

Defaults to DOCUMENT_MAX_AGE when --older-than is not given.

Examples:
  court-fetcher prune --older-than 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("older-than") {
				olderThan = a.cfg.DocumentMaxAge
			}
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive (or set DOCUMENT_MAX_AGE)")
			}

			n, err := a.svc.PruneDocuments(cmd.Context(), olderThan)
			if err != nil {
				return fmt.Errorf("prune failed after %d documents: %w", n, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d documents older than %s\n", n, olderThan)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Minimum age of documents to delete")

	return cmd
}
