// Package aggregate derives read-only views of a transaction collection:
// category totals, an ordered trend series and a CSV export.
package aggregate

import (
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/shopspring/decimal"
)

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category         models.Category `json:"category"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	TransactionCount int             `json:"transaction_count"`
}

// CategorySummary sums amounts per category. Categories appear in the order
// they are first seen in txns.
func CategorySummary(txns []models.Transaction) []CategoryTotal {
	pos := make(map[models.Category]int)
	var out []CategoryTotal

	for _, t := range txns {
		i, ok := pos[t.Category]
		if !ok {
			i = len(out)
			pos[t.Category] = i
			out = append(out, CategoryTotal{Category: t.Category, TotalAmount: decimal.Zero})
		}
		out[i].TotalAmount = out[i].TotalAmount.Add(t.Amount)
		out[i].TransactionCount++
	}
	return out
}

// CategoryMap is CategorySummary keyed by category.
func CategoryMap(txns []models.Transaction) map[models.Category]decimal.Decimal {
	out := make(map[models.Category]decimal.Decimal)
	for _, t := range txns {
		out[t.Category] = out[t.Category].Add(t.Amount)
	}
	return out
}

// Totals splits a collection into money in and money out.
type Totals struct {
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
	Count   int             `json:"count"`
}

// ComputeTotals sums positive amounts into Inflow and negative amounts into
// Outflow (kept negative).
func ComputeTotals(txns []models.Transaction) Totals {
	tot := Totals{Inflow: decimal.Zero, Outflow: decimal.Zero, Net: decimal.Zero, Count: len(txns)}
	for _, t := range txns {
		if t.Amount.IsNegative() {
			tot.Outflow = tot.Outflow.Add(t.Amount)
		} else {
			tot.Inflow = tot.Inflow.Add(t.Amount)
		}
	}
	tot.Net = tot.Inflow.Add(tot.Outflow)
	return tot
}
