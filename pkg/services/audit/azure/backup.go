package azure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/recoveryservices/armrecoveryservicesbackup/v4"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
)

const iaasVMFilter = "backupManagementType eq 'AzureIaasVM'"

// BackupProvider answers backup status questions and lists a vault's backup
// containers and protected items.
type BackupProvider struct {
	status     *armrecoveryservicesbackup.BackupStatusClient
	containers *armrecoveryservicesbackup.BackupProtectionContainersClient
	items      *armrecoveryservicesbackup.BackupProtectedItemsClient
}

func NewBackupProvider(cfg *Config) (*BackupProvider, error) {
	status, err := armrecoveryservicesbackup.NewBackupStatusClient(cfg.SubscriptionID, cfg.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup status client: %w", err)
	}
	containers, err := armrecoveryservicesbackup.NewBackupProtectionContainersClient(cfg.SubscriptionID, cfg.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup containers client: %w", err)
	}
	items, err := armrecoveryservicesbackup.NewBackupProtectedItemsClient(cfg.SubscriptionID, cfg.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup items client: %w", err)
	}
	return &BackupProvider{status: status, containers: containers, items: items}, nil
}

func (p *BackupProvider) GetBackupStatus(ctx context.Context, vm domain.VirtualMachine) (domain.BackupStatus, error) {
	request := armrecoveryservicesbackup.BackupStatusRequest{
		ResourceID:   to.Ptr(vm.ID),
		ResourceType: to.Ptr(armrecoveryservicesbackup.DataSourceTypeVM),
	}
	resp, err := p.status.Get(ctx, vm.Location, request, nil)
	if err != nil {
		return domain.BackupStatus{}, fmt.Errorf("failed to get backup status for %s: %w", vm.Name, err)
	}

	vaultID := deref(resp.VaultID)
	backedUp := vaultID != ""
	if resp.ProtectionStatus != nil && *resp.ProtectionStatus == armrecoveryservicesbackup.ProtectionStatusNotProtected {
		backedUp = false
	}
	return domain.BackupStatus{BackedUp: backedUp, VaultID: vaultID}, nil
}

func (p *BackupProvider) ListBackupContainers(ctx context.Context, vault domain.VaultRef) ([]domain.BackupContainerRef, error) {
	var containers []domain.BackupContainerRef

	opts := &armrecoveryservicesbackup.BackupProtectionContainersClientListOptions{
		Filter: to.Ptr(iaasVMFilter),
	}
	pager := p.containers.NewListPager(vault.Name, vault.ResourceGroup, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list backup containers for vault %s: %w", vault.Name, err)
		}
		for _, container := range page.Value {
			if container == nil {
				continue
			}
			containers = append(containers, domain.BackupContainerRef{
				ID:   deref(container.ID),
				Name: deref(container.Name),
			})
		}
	}
	return containers, nil
}

func (p *BackupProvider) ListProtectedItems(
	ctx context.Context,
	vault domain.VaultRef,
	container domain.BackupContainerRef,
) ([]domain.BackupRecord, error) {
	var records []domain.BackupRecord

	opts := &armrecoveryservicesbackup.BackupProtectedItemsClientListOptions{
		Filter: to.Ptr(iaasVMFilter + " and itemType eq 'VM'"),
	}
	pager := p.items.NewListPager(vault.Name, vault.ResourceGroup, opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list protected items for vault %s: %w", vault.Name, err)
		}
		for _, item := range page.Value {
			if item == nil || item.Properties == nil {
				continue
			}
			record, containerName, ok := mapProtectedItem(item.Properties, vault)
			if !ok || !containerMatches(container.Name, containerName) {
				continue
			}
			records = append(records, record)
		}
	}
	return records, nil
}

// containerMatches compares the container name reported on an item against
// the enumerated container. The two APIs disagree on the prefix segments of
// the name, so the shorter form only has to be a suffix of the longer one.
func containerMatches(enumerated, reported string) bool {
	if reported == "" {
		return true
	}
	e, r := strings.ToLower(enumerated), strings.ToLower(reported)
	return strings.HasSuffix(e, r) || strings.HasSuffix(r, e)
}

func mapProtectedItem(
	props armrecoveryservicesbackup.ProtectedItemClassification,
	vault domain.VaultRef,
) (domain.BackupRecord, string, bool) {
	switch item := props.(type) {
	case *armrecoveryservicesbackup.AzureIaaSComputeVMProtectedItem:
		return mapIaaSVMFields(
			item.VirtualMachineID, item.ProtectionState, item.ProtectionStatus,
			item.HealthStatus, item.LastBackupTime, item.ExtendedProperties,
			vault,
		), deref(item.ContainerName), true
	case *armrecoveryservicesbackup.AzureIaaSClassicComputeVMProtectedItem:
		return mapIaaSVMFields(
			item.VirtualMachineID, item.ProtectionState, item.ProtectionStatus,
			item.HealthStatus, item.LastBackupTime, item.ExtendedProperties,
			vault,
		), deref(item.ContainerName), true
	default:
		return domain.BackupRecord{}, "", false
	}
}

func mapIaaSVMFields(
	vmID *string,
	protectionState *armrecoveryservicesbackup.ProtectionState,
	protectionStatus *string,
	healthStatus *armrecoveryservicesbackup.HealthStatus,
	lastBackupTime *time.Time,
	extended *armrecoveryservicesbackup.ExtendedProperties,
	vault domain.VaultRef,
) domain.BackupRecord {
	record := domain.BackupRecord{
		VirtualMachineID: deref(vmID),
		Vault:            vault,
		ProtectionState:  domain.ProtectionStateProtected,
		HealthStatus:     domain.HealthStatusHealthy,
		PrecheckStatus:   domain.PrecheckStatusPassed,
		LastBackupTime:   lastBackupTime,
	}

	if protectionState != nil {
		record.ProtectionState = domain.ProtectionState(*protectionState)
	}
	// ProtectionStatus is the item health ("Healthy"/"Unhealthy"); the
	// HealthStatus enum carries the pre-check outcome (Passed/ActionRequired/...).
	if protectionStatus != nil && !strings.EqualFold(*protectionStatus, string(domain.HealthStatusHealthy)) {
		record.HealthStatus = domain.HealthStatusNotHealthy
	}
	if healthStatus != nil && *healthStatus != armrecoveryservicesbackup.HealthStatusPassed {
		record.PrecheckStatus = domain.PrecheckStatusFailed
	}

	if extended != nil && extended.DiskExclusionProperties != nil {
		filter := &domain.DiskLUNFilter{Exclude: true}
		if extended.DiskExclusionProperties.IsInclusionList != nil {
			filter.Exclude = !*extended.DiskExclusionProperties.IsInclusionList
		}
		for _, lun := range extended.DiskExclusionProperties.DiskLunList {
			if lun != nil {
				filter.LUNs = append(filter.LUNs, *lun)
			}
		}
		record.DiskFilter = filter
	}
	return record
}
