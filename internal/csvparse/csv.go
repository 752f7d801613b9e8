package csvparse

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rocjay1/finpulse/internal/models"
	"github.com/shopspring/decimal"
)

// ParseCSV parses transactions from a CSV string in the export layout
// (Date,Description,Category,Amount, with an optional ID column).
// It returns the valid rows and a list of error messages for invalid rows.
func ParseCSV(content string) ([]models.RawTransaction, []string) {
	return Parse(strings.NewReader(content))
}

// Parse is ParseCSV over a reader.
func Parse(r io.Reader) ([]models.RawTransaction, []string) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) < 2 {
		return []models.RawTransaction{}, nil // Empty or header-only
	}

	headers := parseHeaders(records[0])
	var transactions []models.RawTransaction
	var errors []string

	for i, record := range records[1:] {
		rowNum := i + 2
		if len(record) < len(headers) {
			errors = append(errors, fmt.Sprintf("Row %d: Not enough fields", rowNum))
			continue
		}

		rowMap := make(map[string]string)
		for j, header := range headers {
			rowMap[header] = strings.TrimSpace(record[j])
		}

		t, err := mapToTransaction(rowMap)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		transactions = append(transactions, *t)
	}

	return transactions, errors
}

// parseHeaders normalizes header names so "amount" and " Amount " match.
func parseHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return headers
}

func mapToTransaction(row map[string]string) (*models.RawTransaction, error) {
	dateStr := row["date"]
	if dateStr == "" {
		return nil, fmt.Errorf("missing Date")
	}
	if _, err := time.Parse(time.DateOnly, dateStr); err != nil {
		return nil, fmt.Errorf("invalid Date format: %s", dateStr)
	}

	description := row["description"]
	if description == "" {
		return nil, fmt.Errorf("missing Description")
	}

	amountStr := row["amount"]
	if amountStr == "" {
		return nil, fmt.Errorf("missing Amount")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Amount: %s", amountStr)
	}

	return &models.RawTransaction{
		ID:          row["id"],
		Date:        dateStr,
		Description: description,
		Category:    models.Category(row["category"]),
		Amount:      amount,
	}, nil
}
