package database

import (
	"context"
	"fmt"
	"time"
)

// Run is one persisted optimization run: the summary figures plus the full
// result document for replay and inspection.
type Run struct {
	ID               string    `json:"id"`                // run_{base62}
	StoreName        string    `json:"store_name"`        // Store the planogram was built for
	StoreType        string    `json:"store_type"`        // flagship, standard, express
	Strategy         string    `json:"strategy"`          // Allocation strategy used
	FacingMode       string    `json:"facing_mode"`       // Facing calculator override, empty for native
	Fingerprint      string    `json:"fingerprint"`       // Digest of the produced layout
	RequestKey       string    `json:"request_key"`       // Digest of the canonical request inputs
	Success          bool      `json:"success"`           // Whether the run placed any products
	ProductsTotal    int       `json:"products_total"`    // Products submitted after filtering
	ProductsPlaced   int       `json:"products_placed"`   // Products that found a position
	ProductsRejected int       `json:"products_rejected"` // Products that did not fit
	SpaceUtilization float64   `json:"space_utilization"` // Average shelf utilization percent
	WarningCount     int       `json:"warning_count"`     // Advisory findings on the run
	DurationMs       int64     `json:"duration_ms"`       // Engine time in milliseconds
	Result           *string   `json:"result,omitempty"`  // Full result document, JSON
	CreatedAt        time.Time `json:"created_at"`
}

// RunFilter contains options for listing runs.
type RunFilter struct {
	StoreName *string
	Strategy  *string
	Since     *time.Time
	Limit     int
	Offset    int
}

// runColumns is the select list shared by every run query.
const runColumns = `id, store_name, store_type, strategy, facing_mode,
		fingerprint, request_key, success, products_total, products_placed,
		products_rejected, space_utilization, warning_count, duration_ms,
		result, created_at`

// EnsureSchema creates the run history tables when they do not exist yet.
// Called once after Connect; deployments with managed migrations can skip it.
func EnsureSchema(ctx context.Context) error {
	pool := Pool()
	if pool == nil {
		return fmt.Errorf("database not initialized")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS planogram_runs (
			id TEXT PRIMARY KEY,
			store_name TEXT NOT NULL,
			store_type TEXT NOT NULL,
			strategy TEXT NOT NULL,
			facing_mode TEXT NOT NULL DEFAULT '',
			fingerprint TEXT NOT NULL,
			request_key TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			products_total INTEGER NOT NULL,
			products_placed INTEGER NOT NULL,
			products_rejected INTEGER NOT NULL,
			space_utilization DOUBLE PRECISION NOT NULL,
			warning_count INTEGER NOT NULL,
			duration_ms BIGINT NOT NULL,
			result JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS planogram_runs_created_at_idx
			ON planogram_runs (created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS planogram_runs_fingerprint_idx
			ON planogram_runs (fingerprint)`,
		`CREATE TABLE IF NOT EXISTS planogram_runs_archive
			(LIKE planogram_runs INCLUDING ALL)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// InsertRun persists one optimization run.
func InsertRun(ctx context.Context, run *Run) error {
	pool := Pool()
	if pool == nil {
		return fmt.Errorf("database not initialized")
	}

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO planogram_runs (
			id, store_name, store_type, strategy, facing_mode,
			fingerprint, request_key, success, products_total, products_placed,
			products_rejected, space_utilization, warning_count, duration_ms,
			result, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
	`

	_, err := pool.Exec(ctx, query,
		run.ID, run.StoreName, run.StoreType, run.Strategy, run.FacingMode,
		run.Fingerprint, run.RequestKey, run.Success, run.ProductsTotal,
		run.ProductsPlaced, run.ProductsRejected, run.SpaceUtilization,
		run.WarningCount, run.DurationMs, run.Result, run.CreatedAt,
	)
	return err
}

// GetRunByID retrieves a run by its identifier.
func GetRunByID(ctx context.Context, id string) (*Run, error) {
	pool := Pool()
	if pool == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `SELECT ` + runColumns + ` FROM planogram_runs WHERE id = $1`
	row := pool.QueryRow(ctx, query, id)

	var run Run
	err := row.Scan(
		&run.ID, &run.StoreName, &run.StoreType, &run.Strategy, &run.FacingMode,
		&run.Fingerprint, &run.RequestKey, &run.Success, &run.ProductsTotal,
		&run.ProductsPlaced, &run.ProductsRejected, &run.SpaceUtilization,
		&run.WarningCount, &run.DurationMs, &run.Result, &run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns retrieves runs newest first with optional filters.
func ListRuns(ctx context.Context, filter RunFilter) ([]Run, int64, error) {
	pool := Pool()
	if pool == nil {
		return nil, 0, fmt.Errorf("database not initialized")
	}

	query := `SELECT ` + runColumns + ` FROM planogram_runs WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM planogram_runs WHERE 1=1`
	args := make([]interface{}, 0, 5)
	argIdx := 1

	if filter.StoreName != nil {
		clause := fmt.Sprintf(" AND store_name = $%d", argIdx)
		query += clause
		countQuery += clause
		args = append(args, *filter.StoreName)
		argIdx++
	}
	if filter.Strategy != nil {
		clause := fmt.Sprintf(" AND strategy = $%d", argIdx)
		query += clause
		countQuery += clause
		args = append(args, *filter.Strategy)
		argIdx++
	}
	if filter.Since != nil {
		clause := fmt.Sprintf(" AND created_at >= $%d", argIdx)
		query += clause
		countQuery += clause
		args = append(args, *filter.Since)
		argIdx++
	}

	var total int64
	if err := pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, filter.Offset)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		err := rows.Scan(
			&run.ID, &run.StoreName, &run.StoreType, &run.Strategy, &run.FacingMode,
			&run.Fingerprint, &run.RequestKey, &run.Success, &run.ProductsTotal,
			&run.ProductsPlaced, &run.ProductsRejected, &run.SpaceUtilization,
			&run.WarningCount, &run.DurationMs, &run.Result, &run.CreatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}
