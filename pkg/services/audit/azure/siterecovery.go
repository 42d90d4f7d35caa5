package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/recoveryservices/armrecoveryservicessiterecovery/v2"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
)

// ReplicationProvider walks the Site Recovery topology of a vault. The SDK
// scopes its clients to a single vault, so a client factory is built per
// vault reference.
type ReplicationProvider struct {
	cfg *Config
}

func NewReplicationProvider(cfg *Config) *ReplicationProvider {
	return &ReplicationProvider{cfg: cfg}
}

func (p *ReplicationProvider) clientFactory(vault domain.VaultRef) (*armrecoveryservicessiterecovery.ClientFactory, error) {
	factory, err := armrecoveryservicessiterecovery.NewClientFactory(
		p.cfg.SubscriptionID, p.cfg.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create site recovery clients for vault %s: %w", vault.Name, err)
	}
	return factory, nil
}

func (p *ReplicationProvider) ListFabrics(ctx context.Context, vault domain.VaultRef) ([]domain.FabricRef, error) {
	factory, err := p.clientFactory(vault)
	if err != nil {
		return nil, err
	}

	var fabrics []domain.FabricRef
	pager := factory.NewReplicationFabricsClient().NewListPager(vault.Name, vault.ResourceGroup, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list fabrics for vault %s: %w", vault.Name, err)
		}
		for _, fabric := range page.Value {
			if fabric == nil {
				continue
			}
			fabrics = append(fabrics, domain.FabricRef{
				ID:   deref(fabric.ID),
				Name: deref(fabric.Name),
			})
		}
	}
	return fabrics, nil
}

func (p *ReplicationProvider) ListProtectionContainers(
	ctx context.Context,
	vault domain.VaultRef,
	fabric domain.FabricRef,
) ([]domain.ProtectionContainerRef, error) {
	factory, err := p.clientFactory(vault)
	if err != nil {
		return nil, err
	}

	var containers []domain.ProtectionContainerRef
	pager := factory.NewReplicationProtectionContainersClient().NewListByReplicationFabricsPager(vault.Name, vault.ResourceGroup, fabric.Name, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list protection containers for fabric %s: %w", fabric.Name, err)
		}
		for _, container := range page.Value {
			if container == nil {
				continue
			}
			containers = append(containers, domain.ProtectionContainerRef{
				ID:     deref(container.ID),
				Name:   deref(container.Name),
				Fabric: fabric.Name,
			})
		}
	}
	return containers, nil
}

func (p *ReplicationProvider) ListReplicatedItems(
	ctx context.Context,
	vault domain.VaultRef,
	container domain.ProtectionContainerRef,
) ([]domain.ReplicationRecord, error) {
	factory, err := p.clientFactory(vault)
	if err != nil {
		return nil, err
	}

	var records []domain.ReplicationRecord
	client := factory.NewReplicationProtectedItemsClient()
	pager := client.NewListByReplicationProtectionContainersPager(vault.Name, vault.ResourceGroup, container.Fabric, container.Name, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list replicated items in container %s: %w", container.Name, err)
		}
		for _, item := range page.Value {
			if item == nil || item.Properties == nil {
				continue
			}
			record, ok := mapReplicatedItem(item.Properties, vault, container)
			if !ok {
				continue
			}
			records = append(records, record)
		}
	}
	return records, nil
}

// mapReplicatedItem extracts the source resource and covered disks from the
// provider-specific replication details. Only Azure-to-Azure items carry a
// managed-disk mapping; other replication providers are skipped.
func mapReplicatedItem(
	props *armrecoveryservicessiterecovery.ReplicationProtectedItemProperties,
	vault domain.VaultRef,
	container domain.ProtectionContainerRef,
) (domain.ReplicationRecord, bool) {
	details, ok := props.ProviderSpecificDetails.(*armrecoveryservicessiterecovery.A2AReplicationDetails)
	if !ok || details.FabricObjectID == nil {
		return domain.ReplicationRecord{}, false
	}

	record := domain.ReplicationRecord{
		SourceResourceID: *details.FabricObjectID,
		Vault:            vault,
		Fabric:           domain.FabricRef{Name: container.Fabric},
		Container:        container,
	}
	for _, disk := range details.ProtectedManagedDisks {
		if disk == nil || disk.DiskID == nil {
			continue
		}
		record.CoveredDiskIDs = append(record.CoveredDiskIDs, *disk.DiskID)
	}
	return record, true
}
