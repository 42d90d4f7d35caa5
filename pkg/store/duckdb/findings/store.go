package findings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	storemodels "github.com/az-tools/protection-atlas/pkg/models/store"
	"github.com/az-tools/protection-atlas/pkg/store/duckdb"
)

// Store persists audit runs and their findings so coverage gaps can be
// tracked between runs. Writes honor a transaction carried in the context;
// reads always go to the pool.
type Store interface {
	Add(ctx context.Context, run storemodels.AuditRun, findings []storemodels.Finding) error
	GetFindings(ctx context.Context, resourceGroup string, since time.Time) ([]storemodels.Finding, error)
	GetRuns(ctx context.Context, resourceGroup string) ([]storemodels.AuditRun, error)
}

type findingStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &findingStore{db: db}, nil
}

func (s *findingStore) Add(ctx context.Context, run storemodels.AuditRun, findings []storemodels.Finding) error {
	runQuery := `
		INSERT INTO audit_runs (id, resource_group, started_at, finding_count, warning_count)
		VALUES (?, ?, ?, ?, ?)`
	findingQuery := `
		INSERT INTO findings (run_id, subject, category, severity, detail)
		VALUES (?, ?, ?, ?, ?)`

	exec := s.execer(ctx)
	if _, err := exec.ExecContext(ctx, runQuery,
		run.ID, run.ResourceGroup, run.StartedAt, run.FindingCount, run.WarningCount); err != nil {
		return fmt.Errorf("failed to insert audit run %s: %w", run.ID, err)
	}

	for _, f := range findings {
		if _, err := exec.ExecContext(ctx, findingQuery,
			run.ID, f.Subject, f.Category, f.Severity, f.Detail); err != nil {
			return fmt.Errorf("failed to insert finding for %s: %w", f.Subject, err)
		}
	}
	return nil
}

func (s *findingStore) GetFindings(ctx context.Context, resourceGroup string, since time.Time) ([]storemodels.Finding, error) {
	query := `
		SELECT f.run_id, f.subject, f.category, f.severity, f.detail
		FROM findings f
		JOIN audit_runs r ON r.id = f.run_id
		WHERE r.resource_group = ? AND r.started_at >= ?
		ORDER BY r.started_at DESC`

	rows, err := s.db.QueryContext(ctx, query, resourceGroup, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings for %s: %w", resourceGroup, err)
	}
	defer rows.Close()

	var findings []storemodels.Finding
	for rows.Next() {
		var f storemodels.Finding
		var detail sql.NullString
		if err := rows.Scan(&f.RunID, &f.Subject, &f.Category, &f.Severity, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Detail = detail.String
		findings = append(findings, f)
	}
	return findings, rows.Err()
}

func (s *findingStore) GetRuns(ctx context.Context, resourceGroup string) ([]storemodels.AuditRun, error) {
	query := `
		SELECT id, resource_group, started_at, finding_count, warning_count
		FROM audit_runs
		WHERE resource_group = ?
		ORDER BY started_at DESC`

	rows, err := s.db.QueryContext(ctx, query, resourceGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit runs for %s: %w", resourceGroup, err)
	}
	defer rows.Close()

	var runs []storemodels.AuditRun
	for rows.Next() {
		var run storemodels.AuditRun
		if err := rows.Scan(&run.ID, &run.ResourceGroup, &run.StartedAt, &run.FindingCount, &run.WarningCount); err != nil {
			return nil, fmt.Errorf("failed to scan audit run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *findingStore) execer(ctx context.Context) execer {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx
	}
	return s.db
}
