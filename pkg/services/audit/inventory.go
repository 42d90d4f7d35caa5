package audit

import (
	"context"
	"fmt"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
)

// Inventory is the expected state of a resource group: every VM and the
// disks each one is supposed to have covered.
type Inventory struct {
	VirtualMachines []domain.VirtualMachine

	byID map[string]domain.VirtualMachine
}

// BuildInventory snapshots the VM inventory of a resource group.
func BuildInventory(ctx context.Context, provider VMInventory, resourceGroup string) (*Inventory, error) {
	vms, err := provider.ListVirtualMachines(ctx, resourceGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to list virtual machines in %s: %w", resourceGroup, err)
	}

	inv := &Inventory{
		VirtualMachines: vms,
		byID:            make(map[string]domain.VirtualMachine, len(vms)),
	}
	for _, vm := range vms {
		inv.byID[domain.NormalizeResourceID(vm.ID)] = vm
	}
	return inv, nil
}

// Resources flattens the inventory into the set of protectable resources:
// each VM plus each of its attached disks.
func (inv *Inventory) Resources() []domain.ProtectableResource {
	var resources []domain.ProtectableResource
	for _, vm := range inv.VirtualMachines {
		resources = append(resources, domain.ProtectableResource{
			ID:            vm.ID,
			Kind:          domain.ResourceKindVirtualMachine,
			ResourceGroup: vm.ResourceGroup,
		})
		for _, disk := range vm.Disks() {
			if disk.ID == "" {
				continue
			}
			resources = append(resources, domain.ProtectableResource{
				ID:            disk.ID,
				Kind:          domain.ResourceKindManagedDisk,
				ResourceGroup: vm.ResourceGroup,
			})
		}
	}
	return resources
}

// ExpectedDisks returns the disks the given VM should have protected, or
// nil when the VM is not part of the inventory.
func (inv *Inventory) ExpectedDisks(vmID string) []domain.AttachedDisk {
	vm, ok := inv.byID[domain.NormalizeResourceID(vmID)]
	if !ok {
		return nil
	}
	return vm.Disks()
}
