package render

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/rocjay1/finpulse/internal/aggregate"
	"github.com/rocjay1/finpulse/internal/models"
)

// View is everything the console report shows.
type View struct {
	Settings   models.Settings
	Result     *models.ReportResult
	Trend      []aggregate.TrendPoint
	Categories []aggregate.CategoryTotal
	Totals     aggregate.Totals
}

// NewView derives a View from a report and the collection it was built from.
func NewView(settings models.Settings, result *models.ReportResult, txns []models.Transaction) *View {
	v := &View{
		Settings:   settings,
		Result:     result,
		Categories: aggregate.CategorySummary(txns),
		Totals:     aggregate.ComputeTotals(txns),
	}
	if result != nil {
		v.Trend = aggregate.SortTrend(result.Metrics.MonthlyTrend)
	}
	return v
}

// Band is the label of the score band.
func (v *View) Band() string {
	switch {
	case v.Result == nil:
		return "n/a"
	case v.Result.Critical():
		return "CRITICAL"
	case v.Result.Healthy():
		return "HEALTHY"
	default:
		return "WATCH"
	}
}

const reportTemplate = `
{{.Settings.CompanyName}} ({{.Settings.Industry}}, {{.Settings.Language}})
Transactions: {{.Totals.Count}}  In: {{.Totals.Inflow.StringFixed 2}}  Out: {{.Totals.Outflow.StringFixed 2}}  Net: {{.Totals.Net.StringFixed 2}}
{{with .Result}}
Health score: {{.Score}}/100 [{{$.Band}}]
Runway: {{.Metrics.RunwayMonths.StringFixed 1}} months{{if not .RunwayComfortable}} (short){{end}}
Burn rate: {{.Metrics.BurnRate.StringFixed 2}}
Net margin: {{.Metrics.NetMarginPercent.StringFixed 1}}%
{{if .AIAnalysis.RiskLevel}}Risk level: {{.AIAnalysis.RiskLevel}}
{{end}}
=== Summary ===
{{.AIAnalysis.Summary}}
{{if .AIAnalysis.Actions}}
=== Actions ===
{{range $i, $a := .AIAnalysis.Actions}}{{inc $i}}. {{$a}}
{{end}}{{end}}{{if .Metrics.ComplianceAlerts}}
=== Compliance ===
{{range .Metrics.ComplianceAlerts}}- {{.}}
{{end}}{{end}}{{end}}{{if .Trend}}
=== Monthly trend ===
{{range .Trend}}{{.Key}}: {{.Value.StringFixed 2}}
{{end}}{{end}}
=== Categories ===
{{range .Categories}}{{.Category}}: {{.TotalAmount.StringFixed 2}} ({{.TransactionCount}})
{{end}}`

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// Reporter outputs reports to the console in a formatted text form
type Reporter struct {
	writer io.Writer
	tmpl   *template.Template
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		tmpl:   template.Must(template.New("report").Funcs(funcs).Parse(reportTemplate)),
	}
}

func (r *Reporter) Handle(view *View) error {
	if err := r.tmpl.Execute(r.writer, view); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
