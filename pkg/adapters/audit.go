package adapters

import (
	"github.com/az-tools/protection-atlas/pkg/models/api"
	"github.com/az-tools/protection-atlas/pkg/models/domain"
	storemodels "github.com/az-tools/protection-atlas/pkg/models/store"
)

func MapSeverityDomainToApi(s domain.Severity) api.Severity {
	switch s {
	case domain.SeverityLow:
		return api.SeverityLow
	case domain.SeverityMedium:
		return api.SeverityMedium
	case domain.SeverityHigh:
		return api.SeverityHigh
	case domain.SeverityCritical:
		return api.SeverityCritical
	default:
		return api.SeverityLow
	}
}

func MapFindingDomainToApi(f domain.Finding) api.Finding {
	return api.Finding{
		Subject:  f.Subject,
		Category: string(f.Category),
		Severity: MapSeverityDomainToApi(f.Severity),
		Detail:   f.Detail,
	}
}

func MapWarningDomainToApi(w domain.Warning) api.Warning {
	return api.Warning{
		Resource: w.Resource,
		Message:  w.Message,
	}
}

func MapResourceHealthDomainToApi(h domain.ResourceHealth) api.ResourceHealth {
	return api.ResourceHealth{
		Subject:      h.Subject,
		State:        string(h.State),
		FindingCount: h.FindingCount,
	}
}

func MapAuditReportDomainToApi(r domain.AuditReport) api.AuditReport {
	res := api.AuditReport{
		ResourceGroup: r.ResourceGroup,
		GeneratedAt:   r.GeneratedAt,
		Summary:       map[string]any{},
		Findings:      make([]api.Finding, 0, len(r.Findings)),
		Warnings:      make([]api.Warning, 0, len(r.Warnings)),
	}
	// copy summary as-is
	for k, v := range r.Summary {
		res.Summary[k] = v
	}
	for _, f := range r.Findings {
		res.Findings = append(res.Findings, MapFindingDomainToApi(f))
	}
	for _, w := range r.Warnings {
		res.Warnings = append(res.Warnings, MapWarningDomainToApi(w))
	}
	return res
}

func MapFindingDomainToStore(runID string, f domain.Finding) storemodels.Finding {
	return storemodels.Finding{
		RunID:    runID,
		Subject:  f.Subject,
		Category: string(f.Category),
		Severity: string(MapSeverityDomainToApi(f.Severity)),
		Detail:   f.Detail,
	}
}

func MapFindingStoreToApi(f storemodels.Finding) api.Finding {
	return api.Finding{
		Subject:  f.Subject,
		Category: f.Category,
		Severity: api.Severity(f.Severity),
		Detail:   f.Detail,
	}
}
