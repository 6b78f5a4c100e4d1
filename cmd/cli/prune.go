package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/polica/planogram-service/internal/database"
)

var (
	pruneOlderThan time.Duration
	pruneArchive   bool
)

// pruneRunsCmd represents the prune-runs command
var pruneRunsCmd = &cobra.Command{
	Use:   "prune-runs",
	Short: "Expire optimization runs older than a retention window",
	Long: `Delete optimization runs whose created_at is older than the retention
window. With --archive the expired rows are copied into the archive table
before removal, inside the same transaction.`,
	Example: `  planogram prune-runs --older-than 720h
  planogram prune-runs --older-than 2160h --archive`,
	RunE: runPruneRuns,
}

func init() {
	rootCmd.AddCommand(pruneRunsCmd)

	pruneRunsCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "Retention window, e.g. 720h for 30 days (required)")
	pruneRunsCmd.Flags().BoolVar(&pruneArchive, "archive", false, "Copy expired runs to the archive table before deleting")
	pruneRunsCmd.MarkFlagRequired("older-than")
}

func runPruneRuns(cmd *cobra.Command, args []string) error {
	if pruneOlderThan <= 0 {
		return fmt.Errorf("--older-than must be a positive duration")
	}

	ctx := context.Background()

	var (
		removed int64
		err     error
	)
	if pruneArchive {
		removed, err = database.ArchiveRuns(ctx, pruneOlderThan)
	} else {
		removed, err = database.PruneRuns(ctx, pruneOlderThan)
	}
	if err != nil {
		return fmt.Errorf("failed to expire runs: %w", err)
	}

	if pruneArchive {
		fmt.Printf("Archived and removed %d runs older than %s\n", removed, pruneOlderThan)
	} else {
		fmt.Printf("Removed %d runs older than %s\n", removed, pruneOlderThan)
	}
	return nil
}
