package audit

import (
	"context"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
)

// VaultEnumerator lists the Recovery Services vaults in scope for a run.
type VaultEnumerator interface {
	ListVaults(ctx context.Context) ([]domain.VaultRef, error)
}

// ReplicationTopology walks a vault's Site Recovery hierarchy down to the
// replicated items.
type ReplicationTopology interface {
	ListFabrics(ctx context.Context, vault domain.VaultRef) ([]domain.FabricRef, error)
	ListProtectionContainers(
		ctx context.Context,
		vault domain.VaultRef,
		fabric domain.FabricRef,
	) ([]domain.ProtectionContainerRef, error)
	ListReplicatedItems(
		ctx context.Context,
		vault domain.VaultRef,
		container domain.ProtectionContainerRef,
	) ([]domain.ReplicationRecord, error)
}

// VMInventory lists the virtual machines of a resource group together with
// their disk profiles.
type VMInventory interface {
	ListVirtualMachines(ctx context.Context, resourceGroup string) ([]domain.VirtualMachine, error)
}

// BackupStatusProvider answers whether a single VM is backed up and by
// which vault.
type BackupStatusProvider interface {
	GetBackupStatus(ctx context.Context, vm domain.VirtualMachine) (domain.BackupStatus, error)
}

// BackupCatalog lists a vault's backup containers and their protected items.
type BackupCatalog interface {
	ListBackupContainers(ctx context.Context, vault domain.VaultRef) ([]domain.BackupContainerRef, error)
	ListProtectedItems(
		ctx context.Context,
		vault domain.VaultRef,
		container domain.BackupContainerRef,
	) ([]domain.BackupRecord, error)
}

// Providers bundles the external collaborators the auditor consumes. All
// calls are synchronous remote lookups; failures are tolerated per resource.
type Providers struct {
	Vaults       VaultEnumerator
	Replication  ReplicationTopology
	Inventory    VMInventory
	BackupStatus BackupStatusProvider
	Backups      BackupCatalog
}
