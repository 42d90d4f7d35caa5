package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// ReplicationCoverage indexes Site Recovery protected items by their source
// VM, filtered down to one target resource group.
type ReplicationCoverage struct {
	records  map[string]domain.ReplicationRecord
	warnings []domain.Warning
}

// CollectReplicationCoverage walks every vault's fabrics, protection
// containers and replicated items, keeping the items whose source resource
// lives in resourceGroup. Provider failures are recorded as warnings and
// the walk continues with the remaining scopes.
func CollectReplicationCoverage(
	ctx context.Context,
	vaults VaultEnumerator,
	topology ReplicationTopology,
	resourceGroup string,
) *ReplicationCoverage {
	logger := zerolog.Ctx(ctx)
	cov := &ReplicationCoverage{records: make(map[string]domain.ReplicationRecord)}

	vaultList, err := vaults.ListVaults(ctx)
	if err != nil {
		cov.warn(logger, "vaults", fmt.Sprintf("failed to list recovery vaults: %v", err))
		return cov
	}

	for _, vault := range vaultList {
		fabrics, err := topology.ListFabrics(ctx, vault)
		if err != nil {
			cov.warn(logger, vault.ID, fmt.Sprintf("failed to list fabrics for vault %s: %v", vault.Name, err))
			continue
		}
		for _, fabric := range fabrics {
			containers, err := topology.ListProtectionContainers(ctx, vault, fabric)
			if err != nil {
				cov.warn(logger, fabric.ID, fmt.Sprintf("failed to list protection containers for fabric %s: %v", fabric.Name, err))
				continue
			}
			for _, container := range containers {
				items, err := topology.ListReplicatedItems(ctx, vault, container)
				if err != nil {
					cov.warn(logger, container.ID, fmt.Sprintf("failed to list replicated items in container %s: %v", container.Name, err))
					continue
				}
				for _, item := range items {
					if item.SourceResourceID == "" {
						continue
					}
					if !strings.EqualFold(domain.ResourceGroupOf(item.SourceResourceID), resourceGroup) {
						continue
					}
					cov.records[domain.NormalizeResourceID(item.SourceResourceID)] = item
				}
			}
		}
	}
	return cov
}

func (c *ReplicationCoverage) warn(logger *zerolog.Logger, resource, message string) {
	logger.Warn().Str("resource", resource).Msg(message)
	c.warnings = append(c.warnings, domain.Warning{Resource: resource, Message: message})
}

// Lookup returns the replication record for a VM, if any.
func (c *ReplicationCoverage) Lookup(vmID string) (domain.ReplicationRecord, bool) {
	record, ok := c.records[domain.NormalizeResourceID(vmID)]
	return record, ok
}

// Size is the number of replicated source VMs in scope.
func (c *ReplicationCoverage) Size() int {
	return len(c.records)
}

// Warnings returns the provider failures hit during collection.
func (c *ReplicationCoverage) Warnings() []domain.Warning {
	return c.warnings
}

// MissingDisks returns the disks of vm absent from the record's covered
// disk set. A disk is only considered covered when its full resource path
// appears in the provider-reported list.
func MissingDisks(vm domain.VirtualMachine, record domain.ReplicationRecord) []domain.AttachedDisk {
	covered := make(map[string]struct{}, len(record.CoveredDiskIDs))
	for _, id := range record.CoveredDiskIDs {
		covered[domain.NormalizeResourceID(id)] = struct{}{}
	}

	var missing []domain.AttachedDisk
	for _, disk := range vm.Disks() {
		if disk.ID == "" {
			continue
		}
		if _, ok := covered[domain.NormalizeResourceID(disk.ID)]; !ok {
			missing = append(missing, disk)
		}
	}
	return missing
}
