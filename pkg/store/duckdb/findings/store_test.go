package findings

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storemodels "github.com/az-tools/protection-atlas/pkg/models/store"
	"github.com/az-tools/protection-atlas/pkg/store/duckdb"
)

type fixture struct {
	db    *sql.DB
	store Store
}

func setupTestDB(t *testing.T) fixture {
	t.Helper()

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	store, err := NewStore(db)
	require.NoError(t, err)

	return fixture{db: db, store: store}
}

func sampleRun(id, resourceGroup string, startedAt time.Time) storemodels.AuditRun {
	return storemodels.AuditRun{
		ID:            id,
		ResourceGroup: resourceGroup,
		StartedAt:     startedAt,
		FindingCount:  1,
		WarningCount:  0,
	}
}

func TestNewStore_NilDB(t *testing.T) {
	store, err := NewStore(nil)
	assert.Nil(t, store)
	assert.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := setupTestDB(t)
	startedAt := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

	run := sampleRun("run-1", "prod-rg", startedAt)
	finding := storemodels.Finding{
		RunID:    run.ID,
		Subject:  "/subscriptions/s/resourceGroups/prod-rg/providers/Microsoft.Compute/virtualMachines/vm-a",
		Category: "unprotected_vm",
		Severity: "high",
		Detail:   "vm-a has no replication or backup protection",
	}

	require.NoError(t, f.store.Add(ctx, run, []storemodels.Finding{finding}))

	t.Run("findings are returned within the window", func(t *testing.T) {
		got, err := f.store.GetFindings(ctx, "prod-rg", startedAt.AddDate(0, 0, -1))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, finding, got[0])
	})

	t.Run("findings before the window are filtered out", func(t *testing.T) {
		got, err := f.store.GetFindings(ctx, "prod-rg", startedAt.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("other resource groups see nothing", func(t *testing.T) {
		got, err := f.store.GetFindings(ctx, "other-rg", startedAt.AddDate(0, 0, -1))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("runs are listed newest first", func(t *testing.T) {
		newer := sampleRun("run-2", "prod-rg", startedAt.Add(time.Hour))
		require.NoError(t, f.store.Add(ctx, newer, nil))

		runs, err := f.store.GetRuns(ctx, "prod-rg")
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, "run-2", runs[0].ID)
		assert.Equal(t, "run-1", runs[1].ID)
	})
}

func TestStore_EmptyDetailScansAsEmptyString(t *testing.T) {
	ctx := context.Background()
	f := setupTestDB(t)
	startedAt := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

	run := sampleRun("run-1", "prod-rg", startedAt)
	require.NoError(t, f.store.Add(ctx, run, []storemodels.Finding{{
		RunID:    run.ID,
		Subject:  "vm-a",
		Category: "backup_paused",
		Severity: "medium",
	}}))

	got, err := f.store.GetFindings(ctx, "prod-rg", startedAt.AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "", got[0].Detail)
}

func TestStore_AddUsesTransactionFromContext(t *testing.T) {
	ctx := context.Background()
	f := setupTestDB(t)
	startedAt := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)

	tx, err := f.db.BeginTx(ctx, nil)
	require.NoError(t, err)

	txCtx := duckdb.WithTransaction(ctx, tx)
	require.NoError(t, f.store.Add(txCtx, sampleRun("run-rollback", "prod-rg", startedAt), nil))
	require.NoError(t, tx.Rollback())

	runs, err := f.store.GetRuns(ctx, "prod-rg")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_AddInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO audit_runs").
		WillReturnError(fmt.Errorf("constraint violation"))

	run := sampleRun("run-1", "prod-rg", time.Now())
	err = store.Add(context.Background(), run, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetFindingsQueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT f.run_id").
		WillReturnError(fmt.Errorf("connection reset"))

	_, err = store.GetFindings(context.Background(), "prod-rg", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prod-rg")
	assert.NoError(t, mock.ExpectationsWereMet())
}
