package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v2"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
)

// InventoryProvider lists virtual machines and their disk profiles through
// the compute resource provider.
type InventoryProvider struct {
	client *armcompute.VirtualMachinesClient
}

func NewInventoryProvider(cfg *Config) (*InventoryProvider, error) {
	client, err := armcompute.NewVirtualMachinesClient(cfg.SubscriptionID, cfg.Credentials, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual machines client: %w", err)
	}
	return &InventoryProvider{client: client}, nil
}

func (p *InventoryProvider) ListVirtualMachines(ctx context.Context, resourceGroup string) ([]domain.VirtualMachine, error) {
	var vms []domain.VirtualMachine

	pager := p.client.NewListPager(resourceGroup, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list virtual machines in %s: %w", resourceGroup, err)
		}
		for _, vm := range page.Value {
			if vm == nil || vm.ID == nil {
				continue
			}
			vms = append(vms, mapVirtualMachine(vm, resourceGroup))
		}
	}
	return vms, nil
}

func mapVirtualMachine(vm *armcompute.VirtualMachine, resourceGroup string) domain.VirtualMachine {
	out := domain.VirtualMachine{
		ID:            deref(vm.ID),
		Name:          deref(vm.Name),
		ResourceGroup: resourceGroup,
		Location:      deref(vm.Location),
	}

	if vm.Properties == nil || vm.Properties.StorageProfile == nil {
		return out
	}
	profile := vm.Properties.StorageProfile

	if profile.OSDisk != nil {
		out.OSDisk = domain.AttachedDisk{
			Name: deref(profile.OSDisk.Name),
			LUN:  -1,
		}
		if profile.OSDisk.ManagedDisk != nil {
			out.OSDisk.ID = deref(profile.OSDisk.ManagedDisk.ID)
		}
	}

	for _, disk := range profile.DataDisks {
		if disk == nil {
			continue
		}
		attached := domain.AttachedDisk{
			Name: deref(disk.Name),
		}
		if disk.Lun != nil {
			attached.LUN = *disk.Lun
		}
		if disk.ManagedDisk != nil {
			attached.ID = deref(disk.ManagedDisk.ID)
		}
		out.DataDisks = append(out.DataDisks, attached)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
