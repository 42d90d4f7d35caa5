package domain

type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

type FindingCategory string

const (
	CategoryUnprotectedVM      FindingCategory = "unprotected_vm"
	CategoryUnprotectedDisk    FindingCategory = "unprotected_disk"
	CategoryBackupPaused       FindingCategory = "backup_paused"
	CategoryBackupPending      FindingCategory = "backup_pending"
	CategoryBackupUnhealthy    FindingCategory = "backup_unhealthy"
	CategoryPrecheckFailed     FindingCategory = "precheck_failed"
	CategoryBackupStale        FindingCategory = "backup_stale"
	CategoryDiskNotInBackupSet FindingCategory = "disk_not_in_backup_set"
)

// Finding is one independent fact about one resource. A single resource may
// carry several findings from the same run.
type Finding struct {
	Subject  string
	Category FindingCategory
	Severity Severity
	Detail   string
}

// Warning records a provider call that failed for a resource. The audit
// continues past it; a warning means "not checked", not "no issue".
type Warning struct {
	Resource string
	Message  string
}
