package domain

import "time"

type VaultRef struct {
	ID            string
	Name          string
	ResourceGroup string
}

type FabricRef struct {
	ID   string
	Name string
}

type ProtectionContainerRef struct {
	ID     string
	Name   string
	Fabric string
}

type BackupContainerRef struct {
	ID   string
	Name string
}

// ReplicationRecord is a Site Recovery protected item snapshot: the source
// resource it replicates and the managed disks the replication covers.
type ReplicationRecord struct {
	SourceResourceID string
	CoveredDiskIDs   []string
	Vault            VaultRef
	Fabric           FabricRef
	Container        ProtectionContainerRef
}

// BackupStatus is the answer to "is this VM backed up anywhere, and where".
type BackupStatus struct {
	BackedUp bool
	VaultID  string
}

type ProtectionState string

const (
	ProtectionStateProtected ProtectionState = "Protected"
	ProtectionStateStopped   ProtectionState = "ProtectionStopped"
	ProtectionStateIRPending ProtectionState = "IRPending"
)

type HealthStatus string

const (
	HealthStatusHealthy    HealthStatus = "Healthy"
	HealthStatusNotHealthy HealthStatus = "NotHealthy"
)

type PrecheckStatus string

const (
	PrecheckStatusPassed PrecheckStatus = "Passed"
	PrecheckStatusFailed PrecheckStatus = "Failed"
)

// DiskLUNFilter restricts which attachment slots a backup item covers.
// With Exclude false the listed LUNs are the only ones protected; with
// Exclude true every LUN except the listed ones is protected.
type DiskLUNFilter struct {
	LUNs    []int32
	Exclude bool
}

// BackupRecord is an Azure Backup protected item snapshot for an IaaS VM.
// LastBackupTime is nil when no recovery point exists yet. A nil DiskFilter
// means every attached disk is protected.
type BackupRecord struct {
	VirtualMachineID string
	Vault            VaultRef
	ProtectionState  ProtectionState
	HealthStatus     HealthStatus
	PrecheckStatus   PrecheckStatus
	LastBackupTime   *time.Time
	DiskFilter       *DiskLUNFilter
}

// ProtectsLUN reports whether the record covers the given attachment slot.
func (r BackupRecord) ProtectsLUN(lun int32) bool {
	if r.DiskFilter == nil {
		return true
	}
	listed := false
	for _, l := range r.DiskFilter.LUNs {
		if l == lun {
			listed = true
			break
		}
	}
	if r.DiskFilter.Exclude {
		return !listed
	}
	return listed
}
