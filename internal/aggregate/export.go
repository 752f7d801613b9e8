package aggregate

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rocjay1/finpulse/internal/models"
)

// CSVHeader is the first line of every export.
const CSVHeader = "Date,Description,Category,Amount"

// FormatCSV renders txns as CSV. Descriptions are always quoted with inner
// quotes doubled; the other columns are written raw. Lines are joined with
// "\n" and there is no trailing newline.
func FormatCSV(txns []models.Transaction) string {
	lines := make([]string, 0, len(txns)+1)
	lines = append(lines, CSVHeader)
	for _, t := range txns {
		lines = append(lines, strings.Join([]string{
			t.Date,
			quote(t.Description),
			string(t.Category),
			t.Amount.String(),
		}, ","))
	}
	return strings.Join(lines, "\n")
}

// WriteCSV writes FormatCSV(txns) to w.
func WriteCSV(w io.Writer, txns []models.Transaction) error {
	if _, err := io.WriteString(w, FormatCSV(txns)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// ExportFilename names an export taken at now.
func ExportFilename(now time.Time) string {
	return "report_" + now.Format(time.DateOnly) + ".csv"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
