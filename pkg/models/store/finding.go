package store

import "time"

// AuditRun is the persisted header of one audit execution.
type AuditRun struct {
	ID            string
	ResourceGroup string
	StartedAt     time.Time
	FindingCount  int
	WarningCount  int
}

// Finding is the persisted form of a single audit finding.
type Finding struct {
	RunID    string
	Subject  string
	Category string
	Severity string
	Detail   string
}
