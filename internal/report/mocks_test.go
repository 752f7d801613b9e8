package report

import (
	"context"
	"sync"

	"github.com/rocjay1/finpulse/internal/api"
	"github.com/rocjay1/finpulse/internal/models"
)

// MockGenerator is a mock implementation of Generator that records requests
type MockGenerator struct {
	GenerateReportFunc func(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error)

	mu       sync.Mutex
	requests []api.ReportRequest
}

func (m *MockGenerator) GenerateReport(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateReportFunc != nil {
		return m.GenerateReportFunc(ctx, req)
	}
	return &models.ReportResult{Score: 80}, nil
}

func (m *MockGenerator) Requests() []api.ReportRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]api.ReportRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
