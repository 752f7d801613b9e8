package handler

import (
	"context"
	"io"

	"github.com/rocjay1/finpulse/internal/api"
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockRemote struct {
	mock.Mock
}

func (m *mockRemote) GenerateReport(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReportResult), args.Error(1)
}

func (m *mockRemote) UploadFile(ctx context.Context, filename string, r io.Reader) (*api.UploadResponse, error) {
	args := m.Called(ctx, filename, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.UploadResponse), args.Error(1)
}

func (m *mockRemote) UpdateTransaction(ctx context.Context, id string, update models.TransactionUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

type mockArchiver struct {
	mock.Mock
}

func (m *mockArchiver) Upload(ctx context.Context, blobName string, data []byte) error {
	args := m.Called(ctx, blobName, data)
	return args.Error(0)
}

func (m *mockArchiver) Download(ctx context.Context, blobName string) ([]byte, error) {
	args := m.Called(ctx, blobName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
