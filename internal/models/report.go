package models

import (
	"github.com/shopspring/decimal"
)

// ReportResult is the analysis bundle returned by the remote authority for a
// given (transactions, language, industry) snapshot. It is replaced
// wholesale, never patched.
type ReportResult struct {
	Score      int        `json:"score"`
	Metrics    Metrics    `json:"metrics"`
	AIAnalysis AIAnalysis `json:"ai_analysis"`
}

// Metrics holds the scalar KPIs and the monthly trend.
type Metrics struct {
	TotalRevenue     decimal.Decimal            `json:"total_revenue"`
	TotalExpenses    decimal.Decimal            `json:"total_expenses"`
	NetIncome        decimal.Decimal            `json:"net_income"`
	BurnRate         decimal.Decimal            `json:"burn_rate"`
	RunwayMonths     decimal.Decimal            `json:"runway_months"`
	NetMarginPercent decimal.Decimal            `json:"net_margin_percent"`
	MonthlyTrend     map[string]decimal.Decimal `json:"monthly_trend"`
	ComplianceAlerts []string                   `json:"compliance_alerts,omitempty"`
}

// AIAnalysis is the generated commentary.
type AIAnalysis struct {
	Summary   string   `json:"summary"`
	Actions   []string `json:"actions"`
	RiskLevel string   `json:"risk_level,omitempty"`
}

// Critical reports whether the score is in the critical band (below 50).
func (r *ReportResult) Critical() bool {
	return r.Score < 50
}

// Healthy reports whether the score is above 70.
func (r *ReportResult) Healthy() bool {
	return r.Score > 70
}

// RunwayComfortable reports whether the runway exceeds six months.
func (r *ReportResult) RunwayComfortable() bool {
	return r.Metrics.RunwayMonths.GreaterThan(decimal.NewFromInt(6))
}
