package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Auditor runs the protection coverage audit: a single linear pass that
// enumerates replication coverage, cross-checks the VM inventory against it,
// falls back to backup coverage and emits findings. No state survives a run.
type Auditor struct {
	providers Providers
	now       func() time.Time
}

func NewAuditor(providers Providers) *Auditor {
	return &Auditor{
		providers: providers,
		now:       time.Now,
	}
}

// Audit evaluates the protection coverage of every VM and attached disk in
// resourceGroup. Provider failures never abort the run; they surface as
// warnings on the report, and the remaining resources are still checked.
func (a *Auditor) Audit(ctx context.Context, resourceGroup string, settings Settings) (domain.AuditReport, error) {
	logger := zerolog.Ctx(ctx)
	if settings.StalenessDays <= 0 {
		settings.StalenessDays = DefaultSettings().StalenessDays
	}

	report := domain.AuditReport{
		ResourceGroup: resourceGroup,
		GeneratedAt:   a.now(),
		Summary:       map[string]any{},
	}

	coverage := CollectReplicationCoverage(ctx, a.providers.Vaults, a.providers.Replication, resourceGroup)
	report.Warnings = append(report.Warnings, coverage.Warnings()...)

	inv, err := BuildInventory(ctx, a.providers.Inventory, resourceGroup)
	if err != nil {
		logger.Warn().Err(err).Str("resource_group", resourceGroup).Msg("inventory unavailable")
		report.Warnings = append(report.Warnings, domain.Warning{Resource: resourceGroup, Message: err.Error()})
		report.Summary["vms_evaluated"] = 0
		return report, nil
	}
	report.Evaluated = inv.Resources()

	replicatedVMs := 0
	unprotectedVMs := 0
	vaultAssignments := make(map[string][]domain.VirtualMachine)

	for _, vm := range inv.VirtualMachines {
		if record, ok := coverage.Lookup(vm.ID); ok {
			replicatedVMs++
			for _, disk := range MissingDisks(vm, record) {
				report.Findings = append(report.Findings, domain.Finding{
					Subject:  disk.ID,
					Category: domain.CategoryUnprotectedDisk,
					Severity: domain.SeverityHigh,
					Detail:   fmt.Sprintf("disk %s of %s is absent from the replication disk set", disk.Name, vm.Name),
				})
			}
			continue
		}

		status, err := a.providers.BackupStatus.GetBackupStatus(ctx, vm)
		if err != nil {
			logger.Warn().Err(err).Str("vm", vm.Name).Msg("backup status lookup failed")
			report.Warnings = append(report.Warnings, domain.Warning{
				Resource: vm.ID,
				Message:  fmt.Sprintf("failed to query backup status for %s: %v", vm.Name, err),
			})
			continue
		}

		if !status.BackedUp {
			unprotectedVMs++
			report.Findings = append(report.Findings, domain.Finding{
				Subject:  vm.ID,
				Category: domain.CategoryUnprotectedVM,
				Severity: domain.SeverityHigh,
				Detail:   fmt.Sprintf("virtual machine %s has neither replication nor backup protection", vm.Name),
			})
			continue
		}

		key := domain.NormalizeResourceID(status.VaultID)
		vaultAssignments[key] = append(vaultAssignments[key], vm)
	}

	backedUpVMs := 0
	for vaultID, vms := range vaultAssignments {
		backedUpVMs += len(vms)
		vault := vaultRefFromID(vaultID)

		records, warnings := collectBackupRecords(ctx, a.providers.Backups, vault)
		for _, w := range warnings {
			logger.Warn().Str("resource", w.Resource).Msg(w.Message)
		}
		report.Warnings = append(report.Warnings, warnings...)

		for _, vm := range vms {
			record, ok := records[domain.NormalizeResourceID(vm.ID)]
			if !ok {
				// The status provider said the vault owns this VM but the
				// vault listing disagrees. Treat as provider inconsistency.
				logger.Warn().Str("vm", vm.Name).Str("vault", vault.Name).Msg("protected item missing from vault listing")
				report.Warnings = append(report.Warnings, domain.Warning{
					Resource: vm.ID,
					Message:  fmt.Sprintf("vault %s reports no protected item for %s", vault.Name, vm.Name),
				})
				continue
			}
			report.Findings = append(report.Findings, EvaluateBackupRecord(vm, record, a.now(), settings)...)
		}
	}

	report.Summary["vms_evaluated"] = len(inv.VirtualMachines)
	report.Summary["replicated_vms"] = replicatedVMs
	report.Summary["backed_up_vms"] = backedUpVMs
	report.Summary["unprotected_vms"] = unprotectedVMs
	report.Summary["findings"] = len(report.Findings)
	report.Summary["warnings"] = len(report.Warnings)

	return report, nil
}

// vaultRefFromID rebuilds a vault reference from its ARM resource ID.
func vaultRefFromID(vaultID string) domain.VaultRef {
	name := vaultID
	if idx := strings.LastIndex(vaultID, "/"); idx >= 0 {
		name = vaultID[idx+1:]
	}
	return domain.VaultRef{
		ID:            vaultID,
		Name:          name,
		ResourceGroup: domain.ResourceGroupOf(vaultID),
	}
}
