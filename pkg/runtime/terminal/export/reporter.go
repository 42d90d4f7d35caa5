package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/az-tools/protection-atlas/pkg/models/domain"
	"github.com/az-tools/protection-atlas/pkg/services/health"
)

type TableConfig struct {
	SubjectWidth  int
	CategoryWidth int
	SeverityWidth int
	DetailWidth   int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		SubjectWidth:  60,
		CategoryWidth: 24,
		SeverityWidth: 10,
		DetailWidth:   60,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

type reportView struct {
	Report *domain.AuditReport
	Rollup health.Rollup
}

func (c *Reporter) Handle(report *domain.AuditReport, rollup health.Rollup) error {
	funcMap := template.FuncMap{
		"formatRow": func(subject, category, severity, detail interface{}) string {
			return fmt.Sprintf("| %-*v | %-*v | %-*v | %-*v |",
				c.config.SubjectWidth, subject,
				c.config.CategoryWidth, category,
				c.config.SeverityWidth, severity,
				c.config.DetailWidth, detail)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.SubjectWidth+2),
				strings.Repeat("-", c.config.CategoryWidth+2),
				strings.Repeat("-", c.config.SeverityWidth+2),
				strings.Repeat("-", c.config.DetailWidth+2))
		},
		"severity": severityLabel,
	}

	tmpl := `
Protection Coverage Audit: {{.Report.ResourceGroup}}
Generated: {{.Report.GeneratedAt.Format "2006-01-02 15:04:05"}}

=== Summary ===
{{range $key, $value := .Report.Summary}}
{{$key}}: {{$value}}
{{end}}
{{if .Report.Findings}}
=== Findings ===
{{separator}}
{{formatRow "Subject" "Category" "Severity" "Detail"}}
{{separator}}
{{range .Report.Findings}}{{formatRow .Subject .Category (severity .Severity) .Detail}}
{{end}}{{separator}}
{{else}}
No findings. All audited resources are covered.
{{end}}
{{if .Report.Warnings}}
=== Warnings (resources that could not be fully checked) ===
{{range .Report.Warnings}}
- {{.Resource}}: {{.Message}}
{{end}}
{{end}}
=== Health ===
{{range $state, $count := .Rollup.Distribution}}
{{$state}}: {{$count}}
{{end}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, reportView{Report: report, Rollup: rollup})
}

func severityLabel(s domain.Severity) string {
	switch s {
	case domain.SeverityLow:
		return "low"
	case domain.SeverityMedium:
		return "medium"
	case domain.SeverityHigh:
		return "high"
	case domain.SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}
