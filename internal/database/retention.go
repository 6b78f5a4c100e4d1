package database

import (
	"context"
	"fmt"
	"time"
)

// PruneRuns deletes runs older than the retention window and returns the
// number of rows removed.
func PruneRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	pool := Pool()
	if pool == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	cutoff := time.Now().Add(-olderThan)
	tag, err := pool.Exec(ctx, `DELETE FROM planogram_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ArchiveRuns moves runs older than the retention window into
// planogram_runs_archive and removes them from the live table. Copy and
// delete share one transaction so a failure leaves both tables unchanged.
func ArchiveRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	pool := Pool()
	if pool == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	cutoff := time.Now().Add(-olderThan)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO planogram_runs_archive
		SELECT * FROM planogram_runs WHERE created_at < $1
		ON CONFLICT (id) DO NOTHING
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to copy runs to archive: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM planogram_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete archived runs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return tag.RowsAffected(), nil
}
