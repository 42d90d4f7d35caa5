package api

import "time"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Finding struct {
	Subject  string   `json:"subject"`
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

type Warning struct {
	Resource string `json:"resource"`
	Message  string `json:"message"`
}

type ResourceHealth struct {
	Subject      string `json:"subject"`
	State        string `json:"state"`
	FindingCount int    `json:"finding_count"`
}

type AuditReport struct {
	ResourceGroup string           `json:"resource_group"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Summary       map[string]any   `json:"summary"`
	Findings      []Finding        `json:"findings"`
	Warnings      []Warning        `json:"warnings"`
	Health        []ResourceHealth `json:"health,omitempty"`
}

type Platform struct {
	Name string `json:"name"`
}
