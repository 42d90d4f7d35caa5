package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
)

// EvaluateBackupRecord applies the secondary health rules to one backed-up
// VM. The rules are independent and non-exclusive: a single VM can trip
// several of them in the same run.
func EvaluateBackupRecord(
	vm domain.VirtualMachine,
	record domain.BackupRecord,
	now time.Time,
	settings Settings,
) []domain.Finding {
	var findings []domain.Finding

	if record.ProtectionState == domain.ProtectionStateStopped {
		findings = append(findings, domain.Finding{
			Subject:  vm.ID,
			Category: domain.CategoryBackupPaused,
			Severity: domain.SeverityMedium,
			Detail:   fmt.Sprintf("backup protection for %s is stopped", vm.Name),
		})
	}

	if record.ProtectionState == domain.ProtectionStateIRPending {
		findings = append(findings, domain.Finding{
			Subject:  vm.ID,
			Category: domain.CategoryBackupPending,
			Severity: domain.SeverityMedium,
			Detail:   fmt.Sprintf("initial backup for %s has not completed", vm.Name),
		})
	}

	if record.HealthStatus != domain.HealthStatusHealthy {
		findings = append(findings, domain.Finding{
			Subject:  vm.ID,
			Category: domain.CategoryBackupUnhealthy,
			Severity: domain.SeverityHigh,
			Detail:   fmt.Sprintf("backup health for %s is %s", vm.Name, record.HealthStatus),
		})
	}

	if record.PrecheckStatus != domain.PrecheckStatusPassed {
		findings = append(findings, domain.Finding{
			Subject:  vm.ID,
			Category: domain.CategoryPrecheckFailed,
			Severity: domain.SeverityMedium,
			Detail:   fmt.Sprintf("backup pre-check for %s did not pass", vm.Name),
		})
	}

	// A VM that never produced a recovery point has no age to measure; the
	// IRPending rule already covers it.
	if record.LastBackupTime != nil && now.Sub(*record.LastBackupTime) >= settings.StalenessWindow() {
		findings = append(findings, domain.Finding{
			Subject:  vm.ID,
			Category: domain.CategoryBackupStale,
			Severity: domain.SeverityMedium,
			Detail: fmt.Sprintf("last backup of %s at %s is at least %d days old",
				vm.Name, record.LastBackupTime.Format(time.RFC3339), settings.StalenessDays),
		})
	}

	for _, disk := range vm.DataDisks {
		if !record.ProtectsLUN(disk.LUN) {
			findings = append(findings, domain.Finding{
				Subject:  vm.ID,
				Category: domain.CategoryDiskNotInBackupSet,
				Severity: domain.SeverityHigh,
				Detail:   fmt.Sprintf("data disk %s at lun %d is not in the protected disk set of %s", disk.Name, disk.LUN, vm.Name),
			})
		}
	}

	return findings
}

// collectBackupRecords lists a vault's protected items across all of its
// backup containers, indexed by normalized source VM ID. Failures are
// returned as warnings; whatever was listed is still usable.
func collectBackupRecords(
	ctx context.Context,
	catalog BackupCatalog,
	vault domain.VaultRef,
) (map[string]domain.BackupRecord, []domain.Warning) {
	records := make(map[string]domain.BackupRecord)
	var warnings []domain.Warning

	containers, err := catalog.ListBackupContainers(ctx, vault)
	if err != nil {
		warnings = append(warnings, domain.Warning{
			Resource: vault.ID,
			Message:  fmt.Sprintf("failed to list backup containers for vault %s: %v", vault.Name, err),
		})
		return records, warnings
	}

	for _, container := range containers {
		items, err := catalog.ListProtectedItems(ctx, vault, container)
		if err != nil {
			warnings = append(warnings, domain.Warning{
				Resource: container.ID,
				Message:  fmt.Sprintf("failed to list protected items in container %s: %v", container.Name, err),
			})
			continue
		}
		for _, item := range items {
			if item.VirtualMachineID == "" {
				continue
			}
			records[domain.NormalizeResourceID(item.VirtualMachineID)] = item
		}
	}
	return records, warnings
}
