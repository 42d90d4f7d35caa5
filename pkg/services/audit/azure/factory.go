package azure

import (
	"context"
	"fmt"

	"github.com/az-tools/protection-atlas/pkg/services/audit"
)

// ProviderFactory builds the full Azure provider set from a CLI profile.
func ProviderFactory(ctx context.Context, profile string) (audit.Providers, error) {
	cfg, err := LoadConfig(ctx, profile)
	if err != nil {
		return audit.Providers{}, fmt.Errorf("failed to load Azure credentials: %w", err)
	}

	vaults, err := NewVaultProvider(cfg)
	if err != nil {
		return audit.Providers{}, err
	}
	inventory, err := NewInventoryProvider(cfg)
	if err != nil {
		return audit.Providers{}, err
	}
	backups, err := NewBackupProvider(cfg)
	if err != nil {
		return audit.Providers{}, err
	}

	return audit.Providers{
		Vaults:       vaults,
		Replication:  NewReplicationProvider(cfg),
		Inventory:    inventory,
		BackupStatus: backups,
		Backups:      backups,
	}, nil
}
