package domain

import "time"

// AuditReport is the full outcome of one protection coverage run.
// Findings and warnings carry no ordering guarantees; they are independent
// facts and should be compared set-wise.
type AuditReport struct {
	ResourceGroup string
	GeneratedAt   time.Time
	Evaluated     []ProtectableResource
	Summary       map[string]any
	Findings      []Finding
	Warnings      []Warning
}

// FindingsFor returns the findings whose subject is the given resource ID.
func (r AuditReport) FindingsFor(resourceID string) []Finding {
	id := NormalizeResourceID(resourceID)
	var out []Finding
	for _, f := range r.Findings {
		if NormalizeResourceID(f.Subject) == id {
			out = append(out, f)
		}
	}
	return out
}
