package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const AuditRunsSchema = `
	CREATE TABLE IF NOT EXISTS audit_runs (
		id VARCHAR NOT NULL,
		resource_group VARCHAR NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finding_count INTEGER NOT NULL,
		warning_count INTEGER NOT NULL,
		PRIMARY KEY (id)
	);
`
const FindingsSchema = `
	CREATE TABLE IF NOT EXISTS findings (
		run_id VARCHAR NOT NULL,
		subject VARCHAR NOT NULL,
		category VARCHAR NOT NULL,
		severity VARCHAR NOT NULL,
		detail VARCHAR
	);
`

var bootQueries = []string{
	AuditRunsSchema,
	FindingsSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
