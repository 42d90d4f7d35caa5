package health

import (
	"github.com/az-tools/protection-atlas/pkg/models/domain"
)

// Rollup is the per-resource health view of one audit report, in the style
// of the Azure Monitor health-model states.
type Rollup struct {
	Resources    []domain.ResourceHealth
	Distribution map[domain.HealthState]int
}

// StateForCategory maps a finding category to the health state it implies
// for the finding's subject.
func StateForCategory(c domain.FindingCategory) domain.HealthState {
	switch c {
	case domain.CategoryUnprotectedVM,
		domain.CategoryUnprotectedDisk,
		domain.CategoryBackupUnhealthy,
		domain.CategoryDiskNotInBackupSet:
		return domain.HealthStateUnhealthy
	case domain.CategoryBackupPaused,
		domain.CategoryBackupPending,
		domain.CategoryBackupStale,
		domain.CategoryPrecheckFailed:
		return domain.HealthStateDegraded
	default:
		return domain.HealthStateUnknown
	}
}

// Evaluate collapses a report's findings into one state per resource. Every
// evaluated resource starts Healthy; each finding can only push its subject
// toward a worse state, never back.
func Evaluate(report domain.AuditReport) Rollup {
	states := make(map[string]domain.ResourceHealth)
	var order []string

	for _, res := range report.Evaluated {
		key := domain.NormalizeResourceID(res.ID)
		if _, ok := states[key]; ok {
			continue
		}
		states[key] = domain.ResourceHealth{Subject: res.ID, State: domain.HealthStateHealthy}
		order = append(order, key)
	}

	for _, f := range report.Findings {
		key := domain.NormalizeResourceID(f.Subject)
		rh, ok := states[key]
		if !ok {
			rh = domain.ResourceHealth{Subject: f.Subject, State: domain.HealthStateHealthy}
			order = append(order, key)
		}
		rh.FindingCount++
		if state := StateForCategory(f.Category); stateRank(state) > stateRank(rh.State) {
			rh.State = state
		}
		states[key] = rh
	}

	rollup := Rollup{Distribution: make(map[domain.HealthState]int)}
	for _, key := range order {
		rh := states[key]
		rollup.Resources = append(rollup.Resources, rh)
		rollup.Distribution[rh.State]++
	}
	return rollup
}

func stateRank(s domain.HealthState) int {
	switch s {
	case domain.HealthStateHealthy:
		return 0
	case domain.HealthStateUnknown:
		return 1
	case domain.HealthStateDegraded:
		return 2
	case domain.HealthStateUnhealthy:
		return 3
	default:
		return 1
	}
}
