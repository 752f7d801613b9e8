package session

import (
	"context"
	"io"
	"sync"

	"github.com/rocjay1/finpulse/internal/api"
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rocjay1/finpulse/internal/services"
)

// MockRemote is a mock implementation of Remote
type MockRemote struct {
	GenerateReportFunc    func(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error)
	UploadFileFunc        func(ctx context.Context, filename string, r io.Reader) (*api.UploadResponse, error)
	UpdateTransactionFunc func(ctx context.Context, id string, update models.TransactionUpdate) error

	mu      sync.Mutex
	reports []api.ReportRequest
}

func (m *MockRemote) GenerateReport(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error) {
	m.mu.Lock()
	m.reports = append(m.reports, req)
	m.mu.Unlock()
	if m.GenerateReportFunc != nil {
		return m.GenerateReportFunc(ctx, req)
	}
	return &models.ReportResult{Score: 70}, nil
}

func (m *MockRemote) UploadFile(ctx context.Context, filename string, r io.Reader) (*api.UploadResponse, error) {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, filename, r)
	}
	return &api.UploadResponse{}, nil
}

func (m *MockRemote) UpdateTransaction(ctx context.Context, id string, update models.TransactionUpdate) error {
	if m.UpdateTransactionFunc != nil {
		return m.UpdateTransactionFunc(ctx, id, update)
	}
	return nil
}

func (m *MockRemote) ReportRequests() []api.ReportRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.ReportRequest(nil), m.reports...)
}

// MockSnapshots is an in-memory SnapshotStore
type MockSnapshots struct {
	SaveFunc func(ctx context.Context, snap services.Snapshot) error
	saved    map[string]services.Snapshot
}

func (m *MockSnapshots) Save(ctx context.Context, snap services.Snapshot) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, snap)
	}
	if m.saved == nil {
		m.saved = make(map[string]services.Snapshot)
	}
	m.saved[snap.Name] = snap
	return nil
}

func (m *MockSnapshots) Load(ctx context.Context, name string) (*services.Snapshot, error) {
	snap, ok := m.saved[name]
	if !ok {
		return nil, services.ErrSnapshotNotFound
	}
	return &snap, nil
}

// MockArchiver is a mock implementation of Archiver
type MockArchiver struct {
	UploadFunc   func(ctx context.Context, blobName string, data []byte) error
	DownloadFunc func(ctx context.Context, blobName string) ([]byte, error)
}

func (m *MockArchiver) Download(ctx context.Context, blobName string) ([]byte, error) {
	if m.DownloadFunc != nil {
		return m.DownloadFunc(ctx, blobName)
	}
	return nil, nil
}

func (m *MockArchiver) Upload(ctx context.Context, blobName string, data []byte) error {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, blobName, data)
	}
	return nil
}

// MockEvents records published events
type MockEvents struct {
	mu     sync.Mutex
	events []services.SessionEvent
}

func (m *MockEvents) Publish(ctx context.Context, ev services.SessionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *MockEvents) Types() []services.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []services.EventType
	for _, ev := range m.events {
		out = append(out, ev.Type)
	}
	return out
}
