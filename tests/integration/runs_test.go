package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/polica/planogram-service/internal/database"
	"github.com/polica/planogram-service/internal/pkg/runid"
	"github.com/polica/planogram-service/internal/sweepers"
)

// setupRunsDB starts a disposable Postgres container and connects the run
// repository to it. The returned cleanup closes the pool and the container.
func setupRunsDB(ctx context.Context, t testing.TB) (func(), error) {
	if testing.Short() {
		return nil, fmt.Errorf("skipping integration test in short mode")
	}

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(60*time.Second),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(1).
					WithStartupTimeout(60*time.Second),
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("connection string: %w", err)
	}

	if err := database.Connect(ctx, connStr, 10, 2, 0, 0); err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	cleanup := func() {
		database.Close()
		container.Terminate(ctx)
	}
	return cleanup, nil
}

// seedRun inserts one run with the given store, strategy, and age.
func seedRun(ctx context.Context, t *testing.T, store, strategy string, age time.Duration) *database.Run {
	t.Helper()

	result := `{"success": true}`
	run := &database.Run{
		ID:               runid.New(),
		StoreName:        store,
		StoreType:        "standard",
		Strategy:         strategy,
		Fingerprint:      "fp-" + store,
		RequestKey:       "rk-" + store,
		Success:          true,
		ProductsTotal:    40,
		ProductsPlaced:   38,
		ProductsRejected: 2,
		SpaceUtilization: 71.5,
		WarningCount:     1,
		DurationMs:       9,
		Result:           &result,
		CreatedAt:        time.Now().Add(-age).UTC(),
	}
	require.NoError(t, database.InsertRun(ctx, run))
	return run
}

// TestRunHistoryRoundTrip verifies that a persisted run comes back intact.
func TestRunHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()

	cleanup, err := setupRunsDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
		return
	}
	defer cleanup()

	result := `{"runId": "run_x", "success": true, "productsPlaced": 42}`
	run := &database.Run{
		ID:               runid.New(),
		StoreName:        "Round Trip Store",
		StoreType:        "flagship",
		Strategy:         "sales_velocity",
		FacingMode:       "stock_based",
		Fingerprint:      "3a91c47be2",
		RequestKey:       "f08d6512aa",
		Success:          true,
		ProductsTotal:    45,
		ProductsPlaced:   42,
		ProductsRejected: 3,
		SpaceUtilization: 78.4,
		WarningCount:     2,
		DurationMs:       12,
		Result:           &result,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, database.InsertRun(ctx, run))

	got, err := database.GetRunByID(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "Round Trip Store", got.StoreName)
	assert.Equal(t, "flagship", got.StoreType)
	assert.Equal(t, "sales_velocity", got.Strategy)
	assert.Equal(t, "stock_based", got.FacingMode)
	assert.Equal(t, "3a91c47be2", got.Fingerprint)
	assert.Equal(t, "f08d6512aa", got.RequestKey)
	assert.True(t, got.Success)
	assert.Equal(t, 45, got.ProductsTotal)
	assert.Equal(t, 42, got.ProductsPlaced)
	assert.Equal(t, 3, got.ProductsRejected)
	assert.InDelta(t, 78.4, got.SpaceUtilization, 1e-9)
	assert.Equal(t, 2, got.WarningCount)
	assert.Equal(t, int64(12), got.DurationMs)
	require.NotNil(t, got.Result)
	assert.JSONEq(t, result, *got.Result)
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, 2*time.Second)

	// Unknown id surfaces pgx.ErrNoRows for the handler's 404 mapping
	_, err = database.GetRunByID(ctx, "run_000000000000000000000000")
	require.Error(t, err)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

// TestRunHistoryListFilters verifies filtering, ordering, and paging.
func TestRunHistoryListFilters(t *testing.T) {
	ctx := context.Background()

	cleanup, err := setupRunsDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
		return
	}
	defer cleanup()

	newest := seedRun(ctx, t, "Mall Kiosk", "balanced", 1*time.Hour)
	seedRun(ctx, t, "Mall Kiosk", "sales_velocity", 2*time.Hour)
	seedRun(ctx, t, "City Flagship", "balanced", 3*time.Hour)
	seedRun(ctx, t, "City Flagship", "value_density", 26*time.Hour)
	oldest := seedRun(ctx, t, "City Flagship", "balanced", 50*time.Hour)

	// No filter: everything, newest first
	runs, total, err := database.ListRuns(ctx, database.RunFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, runs, 5)
	assert.Equal(t, newest.ID, runs[0].ID)
	assert.Equal(t, oldest.ID, runs[4].ID)

	// Store filter
	store := "City Flagship"
	runs, total, err = database.ListRuns(ctx, database.RunFilter{StoreName: &store})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	for _, r := range runs {
		assert.Equal(t, store, r.StoreName)
	}

	// Strategy filter
	strategy := "balanced"
	runs, total, err = database.ListRuns(ctx, database.RunFilter{Strategy: &strategy})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	// Store and strategy combined
	runs, total, err = database.ListRuns(ctx, database.RunFilter{StoreName: &store, Strategy: &strategy})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// Since filter keeps the last day only
	since := time.Now().Add(-24 * time.Hour)
	runs, total, err = database.ListRuns(ctx, database.RunFilter{Since: &since})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, runs, 3)

	// Paging: limit caps the page, total counts everything
	runs, total, err = database.ListRuns(ctx, database.RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, runs, 2)
	assert.Equal(t, newest.ID, runs[0].ID)

	runs, _, err = database.ListRuns(ctx, database.RunFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, oldest.ID, runs[0].ID)
}

// TestRunRetentionSweep verifies the sweeper expires old runs, and archives
// them first when archiving is on.
func TestRunRetentionSweep(t *testing.T) {
	ctx := context.Background()

	cleanup, err := setupRunsDB(ctx, t)
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
		return
	}
	defer cleanup()

	nop := zerolog.Nop()

	fresh := seedRun(ctx, t, "Keeper Store", "balanced", 1*time.Hour)
	seedRun(ctx, t, "Expired Store", "balanced", 72*time.Hour)

	// Plain sweep deletes expired runs outright
	sweeper := sweepers.NewRetentionSweeper(&nop, time.Hour, 48*time.Hour, false)
	require.NoError(t, sweeper.Sweep(ctx))

	runs, total, err := database.ListRuns(ctx, database.RunFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, runs, 1)
	assert.Equal(t, fresh.ID, runs[0].ID)

	// Archiving sweep moves expired runs into the archive table
	expired := seedRun(ctx, t, "Archived Store", "balanced", 72*time.Hour)

	archiver := sweepers.NewRetentionSweeper(&nop, time.Hour, 48*time.Hour, true)
	require.NoError(t, archiver.Sweep(ctx))

	_, total, err = database.ListRuns(ctx, database.RunFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	var archived int
	err = database.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM planogram_runs_archive WHERE id = $1`, expired.ID).Scan(&archived)
	require.NoError(t, err)
	assert.Equal(t, 1, archived)
}
