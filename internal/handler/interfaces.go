package handler

import (
	"context"
	"io"

	"github.com/rocjay1/finpulse/internal/aggregate"
	"github.com/rocjay1/finpulse/internal/edit"
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rocjay1/finpulse/internal/report"
	"github.com/rocjay1/finpulse/internal/session"
)

// TransactionReader exposes the current collection.
type TransactionReader interface {
	Transactions() []models.Transaction
	Transaction(id string) (models.Transaction, error)
	Revision() uint64
	Summary() []aggregate.CategoryTotal
	Totals() aggregate.Totals
	ExportCSV(w io.Writer) (string, error)
}

// Ingestor replaces the collection.
type Ingestor interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*session.UploadResult, error)
	Uploading() bool
	ImportCSV(r io.Reader) (*session.UploadResult, error)
}

// Editor drives the edit lifecycle.
type Editor interface {
	BeginEdit(id string) error
	UpdateDraft(field edit.Field, value string) error
	CommitEdit(ctx context.Context) error
	CancelEdit()
	EditState() edit.State
	RowStatus(id string) edit.RowStatus
}

// Reporter exposes the report and its settings.
type Reporter interface {
	Report() report.State
	Refresh(ctx context.Context) (*models.ReportResult, error)
	Settings() models.Settings
	SetSettings(settings models.Settings) (bool, error)
}

// Archiver saves and restores sessions.
type Archiver interface {
	Name() string
	Archive(ctx context.Context) error
	Restore(ctx context.Context, name string) (int, error)
	ArchiveExport(ctx context.Context) (string, error)
	RestoreUpload(ctx context.Context, blobName string) (*session.UploadResult, error)
}

// SessionAPI is everything the HTTP surface needs from a session.
type SessionAPI interface {
	TransactionReader
	Ingestor
	Editor
	Reporter
	Archiver
}

var _ SessionAPI = (*session.Session)(nil)
