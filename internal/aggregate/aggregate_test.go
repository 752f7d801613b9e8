package aggregate

import (
	"bytes"
	"testing"
	"time"

	"github.com/rocjay1/finpulse/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(cat models.Category, amount string) models.Transaction {
	return models.Transaction{Category: cat, Amount: decimal.RequireFromString(amount)}
}

func TestCategorySummary(t *testing.T) {
	txns := []models.Transaction{
		txn(models.CategoryRevenue, "1000"),
		txn(models.CategoryRent, "-200"),
		txn(models.CategoryRevenue, "500"),
	}

	summary := CategorySummary(txns)

	require.Len(t, summary, 2)
	assert.Equal(t, models.CategoryRevenue, summary[0].Category)
	assert.True(t, summary[0].TotalAmount.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, 2, summary[0].TransactionCount)
	assert.Equal(t, models.CategoryRent, summary[1].Category)
	assert.True(t, summary[1].TotalAmount.Equal(decimal.NewFromInt(-200)))

	m := CategoryMap(txns)
	assert.Len(t, m, 2)
	assert.True(t, m[models.CategoryRevenue].Equal(decimal.NewFromInt(1500)))
	assert.True(t, m[models.CategoryRent].Equal(decimal.NewFromInt(-200)))
}

func TestCategorySummary_Empty(t *testing.T) {
	assert.Empty(t, CategorySummary(nil))
	assert.Empty(t, CategoryMap(nil))
}

func TestComputeTotals(t *testing.T) {
	tot := ComputeTotals([]models.Transaction{
		txn(models.CategoryRevenue, "1000"),
		txn(models.CategoryRent, "-200"),
		txn(models.CategorySoftware, "-49.99"),
	})

	assert.True(t, tot.Inflow.Equal(decimal.NewFromInt(1000)))
	assert.True(t, tot.Outflow.Equal(decimal.RequireFromString("-249.99")))
	assert.True(t, tot.Net.Equal(decimal.RequireFromString("750.01")))
	assert.Equal(t, 3, tot.Count)
}

func TestFormatCSV(t *testing.T) {
	txns := []models.Transaction{
		{ID: "x", Date: "2024-01-15", Description: `He said "hi"`, Category: models.CategoryMarketing, Amount: decimal.RequireFromString("-42.5")},
		{ID: "y", Date: "2024-01-16", Description: "Coffee, beans", Category: models.CategoryOperational, Amount: decimal.NewFromInt(12)},
	}

	out := FormatCSV(txns)

	assert.Equal(t,
		"Date,Description,Category,Amount\n"+
			`2024-01-15,"He said ""hi""",Marketing,-42.5`+"\n"+
			`2024-01-16,"Coffee, beans",Operational,12`,
		out)
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, CSVHeader, buf.String())
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, time.March, 7, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "report_2024-03-07.csv", ExportFilename(now))
}

func TestSortTrend(t *testing.T) {
	trend := map[string]decimal.Decimal{
		"2024-03-01": decimal.NewFromInt(100),
		"2024-01-01": decimal.NewFromInt(-50),
		"2024-02-01": decimal.NewFromInt(10),
	}

	points := SortTrend(trend)

	require.Len(t, points, 3)
	assert.Equal(t, "2024-01-01", points[0].Key)
	assert.True(t, points[0].Value.Equal(decimal.NewFromInt(-50)))
	assert.Equal(t, "2024-02-01", points[1].Key)
	assert.True(t, points[1].Value.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "2024-03-01", points[2].Key)
	assert.True(t, points[2].Value.Equal(decimal.NewFromInt(100)))
}

func TestSortTrend_MonthKeysAndUnparsable(t *testing.T) {
	trend := map[string]decimal.Decimal{
		"total":   decimal.NewFromInt(1),
		"2024-11": decimal.NewFromInt(2),
		"2023-12": decimal.NewFromInt(3),
		"average": decimal.NewFromInt(4),
	}

	points := SortTrend(trend)

	keys := make([]string, len(points))
	for i, p := range points {
		keys[i] = p.Key
	}
	assert.Equal(t, []string{"2023-12", "2024-11", "average", "total"}, keys)
}
