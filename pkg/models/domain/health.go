package domain

// HealthState mirrors the Azure Monitor health-model states.
type HealthState string

const (
	HealthStateHealthy   HealthState = "Healthy"
	HealthStateDegraded  HealthState = "Degraded"
	HealthStateUnhealthy HealthState = "Unhealthy"
	HealthStateUnknown   HealthState = "Unknown"
)

// ResourceHealth is the rolled-up state of one audited resource.
type ResourceHealth struct {
	Subject      string
	State        HealthState
	FindingCount int
}
