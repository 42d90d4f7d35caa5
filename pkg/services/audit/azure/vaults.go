package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/recoveryservices/armrecoveryservices"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
)

// VaultProvider enumerates Recovery Services vaults across the subscription.
// Vaults often live in a different resource group than the VMs they protect,
// so the scope is the whole subscription.
type VaultProvider struct {
	client *armrecoveryservices.VaultsClient
}

func NewVaultProvider(cfg *Config) (*VaultProvider, error) {
	client, err := armrecoveryservices.NewVaultsClient(cfg.SubscriptionID, cfg.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create vaults client: %w", err)
	}
	return &VaultProvider{client: client}, nil
}

func (p *VaultProvider) ListVaults(ctx context.Context) ([]domain.VaultRef, error) {
	var vaults []domain.VaultRef

	pager := p.client.NewListBySubscriptionIDPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list recovery vaults: %w", err)
		}
		for _, vault := range page.Value {
			if vault == nil || vault.ID == nil {
				continue
			}
			vaults = append(vaults, domain.VaultRef{
				ID:            deref(vault.ID),
				Name:          deref(vault.Name),
				ResourceGroup: domain.ResourceGroupOf(deref(vault.ID)),
			})
		}
	}
	return vaults, nil
}
