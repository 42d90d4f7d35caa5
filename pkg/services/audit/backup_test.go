package audit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
)

func healthyRecord(vmID string, lastBackup *time.Time) domain.BackupRecord {
	return domain.BackupRecord{
		VirtualMachineID: vmID,
		ProtectionState:  domain.ProtectionStateProtected,
		HealthStatus:     domain.HealthStatusHealthy,
		PrecheckStatus:   domain.PrecheckStatusPassed,
		LastBackupTime:   lastBackup,
	}
}

func TestEvaluateBackupRecord(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -1)
	settings := DefaultSettings()
	vm := testVM("vm-a")

	tests := []struct {
		name     string
		mutate   func(r *domain.BackupRecord)
		expected []domain.FindingCategory
	}{
		{
			name:     "healthy record has no findings",
			mutate:   func(r *domain.BackupRecord) {},
			expected: nil,
		},
		{
			name: "stopped protection",
			mutate: func(r *domain.BackupRecord) {
				r.ProtectionState = domain.ProtectionStateStopped
			},
			expected: []domain.FindingCategory{domain.CategoryBackupPaused},
		},
		{
			name: "initial replication pending",
			mutate: func(r *domain.BackupRecord) {
				r.ProtectionState = domain.ProtectionStateIRPending
			},
			expected: []domain.FindingCategory{domain.CategoryBackupPending},
		},
		{
			name: "unhealthy backup",
			mutate: func(r *domain.BackupRecord) {
				r.HealthStatus = domain.HealthStatusNotHealthy
			},
			expected: []domain.FindingCategory{domain.CategoryBackupUnhealthy},
		},
		{
			name: "failed pre-check",
			mutate: func(r *domain.BackupRecord) {
				r.PrecheckStatus = domain.PrecheckStatusFailed
			},
			expected: []domain.FindingCategory{domain.CategoryPrecheckFailed},
		},
		{
			name: "rules accumulate",
			mutate: func(r *domain.BackupRecord) {
				r.ProtectionState = domain.ProtectionStateStopped
				r.HealthStatus = domain.HealthStatusNotHealthy
				r.PrecheckStatus = domain.PrecheckStatusFailed
			},
			expected: []domain.FindingCategory{
				domain.CategoryBackupPaused,
				domain.CategoryBackupUnhealthy,
				domain.CategoryPrecheckFailed,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := healthyRecord(vm.ID, &recent)
			tt.mutate(&record)

			findings := EvaluateBackupRecord(vm, record, now, settings)
			assert.ElementsMatch(t, tt.expected, findingCategories(findings))
			for _, f := range findings {
				assert.Equal(t, vm.ID, f.Subject)
			}
		})
	}
}

func TestEvaluateBackupRecord_StalenessBoundary(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	settings := Settings{StalenessDays: 90}
	vm := testVM("vm-a")

	t.Run("backup exactly at the threshold is stale", func(t *testing.T) {
		exactly := now.AddDate(0, 0, -90)
		findings := EvaluateBackupRecord(vm, healthyRecord(vm.ID, &exactly), now, settings)

		require.Len(t, findings, 1)
		assert.Equal(t, domain.CategoryBackupStale, findings[0].Category)
		assert.Contains(t, findings[0].Detail, "90 days")
	})

	t.Run("backup one day inside the window is fresh", func(t *testing.T) {
		inside := now.AddDate(0, 0, -89)
		findings := EvaluateBackupRecord(vm, healthyRecord(vm.ID, &inside), now, settings)
		assert.Empty(t, findings)
	})

	t.Run("never backed up skips the stale rule", func(t *testing.T) {
		findings := EvaluateBackupRecord(vm, healthyRecord(vm.ID, nil), now, settings)
		assert.Empty(t, findings)
	})
}

func TestEvaluateBackupRecord_DiskFilter(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -1)
	vm := testVM("vm-a",
		domain.AttachedDisk{ID: diskResourceID("vm-a-data-0"), Name: "vm-a-data-0", LUN: 0},
		domain.AttachedDisk{ID: diskResourceID("vm-a-data-1"), Name: "vm-a-data-1", LUN: 1},
	)

	tests := []struct {
		name     string
		filter   *domain.DiskLUNFilter
		expected []domain.FindingCategory
	}{
		{
			name:     "no filter protects all disks",
			filter:   nil,
			expected: nil,
		},
		{
			name:     "inclusion list covering all luns",
			filter:   &domain.DiskLUNFilter{LUNs: []int32{0, 1}},
			expected: nil,
		},
		{
			name:   "inclusion list missing a lun",
			filter: &domain.DiskLUNFilter{LUNs: []int32{0}},
			expected: []domain.FindingCategory{
				domain.CategoryDiskNotInBackupSet,
			},
		},
		{
			name:   "exclusion list drops a lun",
			filter: &domain.DiskLUNFilter{LUNs: []int32{1}, Exclude: true},
			expected: []domain.FindingCategory{
				domain.CategoryDiskNotInBackupSet,
			},
		},
		{
			name:     "empty exclusion list keeps everything",
			filter:   &domain.DiskLUNFilter{Exclude: true},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := healthyRecord(vm.ID, &recent)
			record.DiskFilter = tt.filter

			findings := EvaluateBackupRecord(vm, record, now, DefaultSettings())
			assert.ElementsMatch(t, tt.expected, findingCategories(findings))
		})
	}
}

func TestCollectBackupRecords(t *testing.T) {
	ctx := context.Background()
	vault := domain.VaultRef{ID: testVaultID, Name: "vault-1", ResourceGroup: "vault-rg"}

	t.Run("indexes items by normalized vm id", func(t *testing.T) {
		catalog := new(mockCatalog)
		container := domain.BackupContainerRef{ID: "bc-1", Name: "bc-1"}
		catalog.On("ListBackupContainers", mock.Anything, vault).
			Return([]domain.BackupContainerRef{container}, nil)
		catalog.On("ListProtectedItems", mock.Anything, vault, container).
			Return([]domain.BackupRecord{
				{VirtualMachineID: vmResourceID("VM-A")},
				{VirtualMachineID: ""},
			}, nil)

		records, warnings := collectBackupRecords(ctx, catalog, vault)
		assert.Empty(t, warnings)
		require.Len(t, records, 1)
		_, ok := records[domain.NormalizeResourceID(vmResourceID("vm-a"))]
		assert.True(t, ok)
	})

	t.Run("container listing failure returns a warning", func(t *testing.T) {
		catalog := new(mockCatalog)
		catalog.On("ListBackupContainers", mock.Anything, vault).
			Return(nil, fmt.Errorf("forbidden"))

		records, warnings := collectBackupRecords(ctx, catalog, vault)
		assert.Empty(t, records)
		require.Len(t, warnings, 1)
		assert.Equal(t, vault.ID, warnings[0].Resource)
	})

	t.Run("a broken container does not block the others", func(t *testing.T) {
		catalog := new(mockCatalog)
		broken := domain.BackupContainerRef{ID: "bc-broken", Name: "bc-broken"}
		good := domain.BackupContainerRef{ID: "bc-good", Name: "bc-good"}
		catalog.On("ListBackupContainers", mock.Anything, vault).
			Return([]domain.BackupContainerRef{broken, good}, nil)
		catalog.On("ListProtectedItems", mock.Anything, vault, broken).
			Return(nil, fmt.Errorf("timeout"))
		catalog.On("ListProtectedItems", mock.Anything, vault, good).
			Return([]domain.BackupRecord{{VirtualMachineID: vmResourceID("vm-a")}}, nil)

		records, warnings := collectBackupRecords(ctx, catalog, vault)
		assert.Len(t, records, 1)
		require.Len(t, warnings, 1)
		assert.Equal(t, broken.ID, warnings[0].Resource)
	})
}
