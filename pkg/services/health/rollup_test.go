package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
)

const (
	vmID   = "/subscriptions/s/resourceGroups/rg/providers/Microsoft.Compute/virtualMachines/vm-a"
	diskID = "/subscriptions/s/resourceGroups/rg/providers/Microsoft.Compute/disks/vm-a-data-0"
)

func TestStateForCategory(t *testing.T) {
	tests := []struct {
		category domain.FindingCategory
		state    domain.HealthState
	}{
		{domain.CategoryUnprotectedVM, domain.HealthStateUnhealthy},
		{domain.CategoryUnprotectedDisk, domain.HealthStateUnhealthy},
		{domain.CategoryBackupUnhealthy, domain.HealthStateUnhealthy},
		{domain.CategoryDiskNotInBackupSet, domain.HealthStateUnhealthy},
		{domain.CategoryBackupPaused, domain.HealthStateDegraded},
		{domain.CategoryBackupPending, domain.HealthStateDegraded},
		{domain.CategoryBackupStale, domain.HealthStateDegraded},
		{domain.CategoryPrecheckFailed, domain.HealthStateDegraded},
		{domain.FindingCategory("something_new"), domain.HealthStateUnknown},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.state, StateForCategory(tt.category))
		})
	}
}

func TestEvaluate(t *testing.T) {
	evaluated := []domain.ProtectableResource{
		{ID: vmID, Kind: domain.ResourceKindVirtualMachine, ResourceGroup: "rg"},
		{ID: diskID, Kind: domain.ResourceKindManagedDisk, ResourceGroup: "rg"},
	}

	t.Run("resources without findings stay healthy", func(t *testing.T) {
		rollup := Evaluate(domain.AuditReport{Evaluated: evaluated})

		require.Len(t, rollup.Resources, 2)
		for _, rh := range rollup.Resources {
			assert.Equal(t, domain.HealthStateHealthy, rh.State)
			assert.Zero(t, rh.FindingCount)
		}
		assert.Equal(t, 2, rollup.Distribution[domain.HealthStateHealthy])
	})

	t.Run("worst finding wins per resource", func(t *testing.T) {
		rollup := Evaluate(domain.AuditReport{
			Evaluated: evaluated,
			Findings: []domain.Finding{
				{Subject: vmID, Category: domain.CategoryBackupStale},
				{Subject: vmID, Category: domain.CategoryBackupUnhealthy},
			},
		})

		require.Len(t, rollup.Resources, 2)
		assert.Equal(t, domain.HealthStateUnhealthy, rollup.Resources[0].State)
		assert.Equal(t, 2, rollup.Resources[0].FindingCount)
		assert.Equal(t, domain.HealthStateHealthy, rollup.Resources[1].State)
		assert.Equal(t, 1, rollup.Distribution[domain.HealthStateUnhealthy])
		assert.Equal(t, 1, rollup.Distribution[domain.HealthStateHealthy])
	})

	t.Run("a degraded finding never downgrades an unhealthy resource", func(t *testing.T) {
		rollup := Evaluate(domain.AuditReport{
			Evaluated: evaluated,
			Findings: []domain.Finding{
				{Subject: vmID, Category: domain.CategoryBackupUnhealthy},
				{Subject: vmID, Category: domain.CategoryBackupPaused},
			},
		})
		assert.Equal(t, domain.HealthStateUnhealthy, rollup.Resources[0].State)
	})

	t.Run("finding subjects outside the evaluated set are added", func(t *testing.T) {
		orphan := "/subscriptions/s/resourceGroups/rg/providers/Microsoft.Compute/disks/orphan"
		rollup := Evaluate(domain.AuditReport{
			Evaluated: evaluated,
			Findings: []domain.Finding{
				{Subject: orphan, Category: domain.CategoryUnprotectedDisk},
			},
		})

		require.Len(t, rollup.Resources, 3)
		assert.Equal(t, orphan, rollup.Resources[2].Subject)
		assert.Equal(t, domain.HealthStateUnhealthy, rollup.Resources[2].State)
	})

	t.Run("subject matching ignores casing", func(t *testing.T) {
		rollup := Evaluate(domain.AuditReport{
			Evaluated: evaluated,
			Findings: []domain.Finding{
				{
					Subject:  "/subscriptions/s/resourceGroups/rg/providers/Microsoft.Compute/virtualMachines/VM-A",
					Category: domain.CategoryUnprotectedVM,
				},
			},
		})
		require.Len(t, rollup.Resources, 2)
		assert.Equal(t, domain.HealthStateUnhealthy, rollup.Resources[0].State)
	})
}
