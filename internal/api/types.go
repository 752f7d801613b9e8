package api

import (
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/shopspring/decimal"
)

func init() {
	// The remote authority expects JSON numbers for amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// ReportRequest is the body of a generate-report call.
type ReportRequest struct {
	CompanyName  string               `json:"company_name"`
	Industry     models.Industry      `json:"industry"`
	Language     models.Language      `json:"language"`
	Transactions []models.Transaction `json:"transactions"`
}

// NewReportRequest builds a request from a settings record and a collection snapshot.
func NewReportRequest(settings models.Settings, txns []models.Transaction) ReportRequest {
	company := settings.CompanyName
	if company == "" {
		company = models.DefaultCompanyName
	}
	return ReportRequest{
		CompanyName:  company,
		Industry:     settings.Industry,
		Language:     settings.Language,
		Transactions: txns,
	}
}

// UploadResponse is returned by the upload-file endpoint. Ids are optional.
type UploadResponse struct {
	Transactions []models.RawTransaction `json:"transactions"`
	Message      string                  `json:"message,omitempty"`
}

type updateResponse struct {
	Message string `json:"message"`
}
