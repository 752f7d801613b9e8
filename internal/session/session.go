// Package session wires identity assignment, the transaction store, the edit
// reconciler and the report orchestrator into one user session.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rocjay1/finpulse/internal/aggregate"
	"github.com/rocjay1/finpulse/internal/api"
	"github.com/rocjay1/finpulse/internal/csvparse"
	"github.com/rocjay1/finpulse/internal/edit"
	"github.com/rocjay1/finpulse/internal/identity"
	"github.com/rocjay1/finpulse/internal/ledger"
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rocjay1/finpulse/internal/report"
	"github.com/rocjay1/finpulse/internal/services"
	"github.com/rs/zerolog"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrStorageDisabled     = errors.New("storage is not configured")
	ErrUploadInProgress    = errors.New("an upload is already in progress")
	ErrNoValidRows         = errors.New("no valid rows")
	ErrForeignUpload       = errors.New("archived upload belongs to another session")
)

// Remote is the part of the remote authority a session talks to.
type Remote interface {
	GenerateReport(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error)
	UploadFile(ctx context.Context, filename string, r io.Reader) (*api.UploadResponse, error)
	UpdateTransaction(ctx context.Context, id string, update models.TransactionUpdate) error
}

// SnapshotStore persists whole sessions.
type SnapshotStore interface {
	Save(ctx context.Context, snap services.Snapshot) error
	Load(ctx context.Context, name string) (*services.Snapshot, error)
}

// Archiver keeps copies of uploaded files and exports.
type Archiver interface {
	Upload(ctx context.Context, blobName string, data []byte) error
	Download(ctx context.Context, blobName string) ([]byte, error)
}

// EventPublisher receives session events.
type EventPublisher interface {
	Publish(ctx context.Context, ev services.SessionEvent) error
}

// Dependencies holds the collaborators of a Session. Only Remote is
// required; nil storage collaborators disable their features.
type Dependencies struct {
	Remote    Remote
	Snapshots SnapshotStore
	Archive   Archiver
	Events    EventPublisher
	// Generator defaults to a Sequence in the session namespace.
	Generator identity.Generator
	Logger    zerolog.Logger
}

// UploadResult reports the outcome of an upload or import.
type UploadResult struct {
	Count    int      `json:"count"`
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Session is one user's working set of transactions and its report.
type Session struct {
	name string
	deps Dependencies
	log  zerolog.Logger
	ctx  context.Context

	assigner *identity.Assigner
	store    *ledger.Store
	edits    *edit.Reconciler
	reports  *report.Orchestrator

	uploading atomic.Bool
	events    sync.WaitGroup
	now       func() time.Time
}

// New creates a Session named name. ctx bounds background report requests
// and event publishing.
func New(ctx context.Context, name string, settings models.Settings, deps Dependencies) *Session {
	log := deps.Logger.With().Str("session", name).Logger()
	gen := deps.Generator
	if gen == nil {
		gen = identity.NewSequence(name)
	}

	s := &Session{
		name: name,
		deps: deps,
		log:  log,
		ctx:  ctx,
		now:  time.Now,
	}
	s.assigner = identity.NewAssigner(gen, log)
	s.store = ledger.NewStore(log)
	s.edits = edit.NewReconciler(deps.Remote, s.store, log)
	s.reports = report.New(deps.Remote, s.store, settings, log,
		report.WithContext(ctx),
		report.WithSink(s.reportSettled),
	)
	s.store.Subscribe(s.reports.TransactionsChanged)
	return s
}

// Name identifies the session and its snapshot.
func (s *Session) Name() string { return s.name }

// Upload sends a file to the remote for extraction and replaces the
// collection with the result.
func (s *Session) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	if !s.uploading.CompareAndSwap(false, true) {
		return nil, ErrUploadInProgress
	}
	defer s.uploading.Store(false)

	if s.deps.Archive != nil {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		if err := s.deps.Archive.Upload(ctx, services.UploadBlobName(s.name, filename, s.now()), data); err != nil {
			s.log.Warn().Err(err).Str("filename", filename).Msg("failed to archive upload")
		}
		r = bytes.NewReader(data)
	}
	return s.extract(ctx, filename, r)
}

// RestoreUpload re-runs extraction on a previously archived upload of this
// session and replaces the collection with the result.
func (s *Session) RestoreUpload(ctx context.Context, blobName string) (*UploadResult, error) {
	if s.deps.Archive == nil {
		return nil, ErrStorageDisabled
	}
	filename, ok := services.UploadFilename(s.name, blobName)
	if !ok {
		return nil, fmt.Errorf("failed to restore upload %s: %w", blobName, ErrForeignUpload)
	}
	if !s.uploading.CompareAndSwap(false, true) {
		return nil, ErrUploadInProgress
	}
	defer s.uploading.Store(false)

	data, err := s.deps.Archive.Download(ctx, blobName)
	if err != nil {
		return nil, fmt.Errorf("failed to restore upload %s: %w", blobName, err)
	}
	s.log.Info().Str("blob_name", blobName).Int("size_bytes", len(data)).Msg("restoring archived upload")
	return s.extract(ctx, filename, bytes.NewReader(data))
}

func (s *Session) extract(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	resp, err := s.deps.Remote.UploadFile(ctx, filename, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	txns := s.replace(resp.Transactions)
	s.log.Info().Str("filename", filename).Int("count", len(txns)).Msg("upload processed")
	return &UploadResult{Count: len(txns), Message: resp.Message}, nil
}

// Uploading reports whether an upload is in progress.
func (s *Session) Uploading() bool { return s.uploading.Load() }

// Load replaces the collection with raw, e.g. for an initial load.
func (s *Session) Load(raw []models.RawTransaction) []models.Transaction {
	return s.replace(raw)
}

// ImportCSV replaces the collection with the rows of a previously exported
// CSV. Invalid rows are skipped and returned as warnings.
func (s *Session) ImportCSV(r io.Reader) (*UploadResult, error) {
	raw, warnings := csvparse.Parse(r)
	if len(raw) == 0 && len(warnings) > 0 {
		return &UploadResult{Warnings: warnings}, fmt.Errorf("failed to import csv: %w", ErrNoValidRows)
	}
	for _, w := range warnings {
		s.log.Warn().Str("warning", w).Msg("skipped csv row")
	}

	txns := s.replace(raw)
	return &UploadResult{Count: len(txns), Warnings: warnings}, nil
}

func (s *Session) replace(raw []models.RawTransaction) []models.Transaction {
	txns := s.assigner.Assign(raw)
	s.store.ReplaceAll(txns)
	s.publish(services.SessionEvent{Type: services.EventUploadReplaced, Count: len(txns)})
	return txns
}

// Transactions returns the current collection.
func (s *Session) Transactions() []models.Transaction { return s.store.Snapshot() }

// Transaction returns one record.
func (s *Session) Transaction(id string) (models.Transaction, error) {
	txn, ok := s.store.Get(id)
	if !ok {
		return models.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
	}
	return txn, nil
}

// Revision identifies the current collection.
func (s *Session) Revision() uint64 { return s.store.Revision() }

// Summary returns per-category totals of the current collection.
func (s *Session) Summary() []aggregate.CategoryTotal {
	return aggregate.CategorySummary(s.store.Snapshot())
}

// Totals returns inflow, outflow and net of the current collection.
func (s *Session) Totals() aggregate.Totals {
	return aggregate.ComputeTotals(s.store.Snapshot())
}

// ExportCSV writes the collection as CSV and returns the file name to use.
func (s *Session) ExportCSV(w io.Writer) (string, error) {
	name := aggregate.ExportFilename(s.now())
	if err := aggregate.WriteCSV(w, s.store.Snapshot()); err != nil {
		return "", err
	}
	return name, nil
}

// ArchiveExport stores a CSV export in blob storage and returns its blob name.
func (s *Session) ArchiveExport(ctx context.Context) (string, error) {
	if s.deps.Archive == nil {
		return "", ErrStorageDisabled
	}
	var buf bytes.Buffer
	name, err := s.ExportCSV(&buf)
	if err != nil {
		return "", err
	}
	blob := services.ExportBlobName(s.name, name)
	if err := s.deps.Archive.Upload(ctx, blob, buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to archive export: %w", err)
	}
	return blob, nil
}

// BeginEdit starts editing the transaction with the given id.
func (s *Session) BeginEdit(id string) error {
	txn, err := s.Transaction(id)
	if err != nil {
		return err
	}
	return s.edits.Begin(txn)
}

// UpdateDraft changes one field of the active draft.
func (s *Session) UpdateDraft(field edit.Field, value string) error {
	return s.edits.UpdateDraft(field, value)
}

// CommitEdit saves the active draft.
func (s *Session) CommitEdit(ctx context.Context) error {
	row, _ := s.edits.State().(edit.EditingRow)
	if _, err := s.edits.Commit(ctx); err != nil {
		return err
	}
	s.publish(services.SessionEvent{Type: services.EventTransactionEdited, TransactionID: row.ID})
	return nil
}

// CancelEdit discards the active draft.
func (s *Session) CancelEdit() { s.edits.Cancel() }

// EditState returns the edit slot.
func (s *Session) EditState() edit.State { return s.edits.State() }

// RowStatus returns the edit status of one row.
func (s *Session) RowStatus(id string) edit.RowStatus { return s.edits.Status(id) }

// Report returns the current report state.
func (s *Session) Report() report.State { return s.reports.State() }

// Refresh regenerates the report with the current inputs.
func (s *Session) Refresh(ctx context.Context) (*models.ReportResult, error) {
	return s.reports.Refresh(ctx)
}

// Settings returns the current report settings.
func (s *Session) Settings() models.Settings { return s.reports.Settings() }

// SetSettings replaces the report settings.
func (s *Session) SetSettings(settings models.Settings) (bool, error) {
	if err := settings.Validate(); err != nil {
		return false, err
	}
	return s.reports.SetSettings(settings), nil
}

// Archive saves the session to the snapshot store.
func (s *Session) Archive(ctx context.Context) error {
	if s.deps.Snapshots == nil {
		return ErrStorageDisabled
	}
	txns, revision := s.store.SnapshotWithRevision()
	snap := services.Snapshot{
		Name:         s.name,
		Settings:     s.reports.Settings(),
		Transactions: txns,
		Revision:     revision,
		SavedAt:      s.now().UTC(),
	}
	if err := s.deps.Snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to archive session: %w", err)
	}
	s.publish(services.SessionEvent{Type: services.EventSnapshotSaved, Count: len(txns)})
	return nil
}

// Restore loads the named snapshot. Settings are applied before the
// collection is replaced.
func (s *Session) Restore(ctx context.Context, name string) (int, error) {
	if s.deps.Snapshots == nil {
		return 0, ErrStorageDisabled
	}
	snap, err := s.deps.Snapshots.Load(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to restore session %s: %w", name, err)
	}
	if err := snap.Settings.Validate(); err == nil {
		s.reports.SetSettings(snap.Settings)
	} else {
		s.log.Warn().Err(err).Str("snapshot", name).Msg("ignoring invalid snapshot settings")
	}

	// Snapshot transactions already carry ids; assigning again only fills gaps.
	raw := make([]models.RawTransaction, len(snap.Transactions))
	for i, t := range snap.Transactions {
		raw[i] = models.RawTransaction(t)
	}
	txns := s.replace(raw)
	s.log.Info().Str("snapshot", name).Int("count", len(txns)).Msg("restored session")
	return len(txns), nil
}

// Close waits for outstanding report requests and event publishing.
func (s *Session) Close() {
	s.reports.Wait()
	s.events.Wait()
}

func (s *Session) reportSettled(ev report.Event) {
	out := services.SessionEvent{}
	switch ev.Kind {
	case report.EventGenerated:
		score := ev.Result.Score
		out.Type = services.EventReportGenerated
		out.Score = &score
	case report.EventFailed:
		out.Type = services.EventReportFailed
		out.Error = ev.Err.Error()
	default:
		return
	}
	s.publish(out)
}

func (s *Session) publish(ev services.SessionEvent) {
	if s.deps.Events == nil {
		return
	}
	ev.Session = s.name
	ev.At = s.now().UTC()

	s.events.Add(1)
	go func() {
		defer s.events.Done()
		if err := s.deps.Events.Publish(s.ctx, ev); err != nil {
			s.log.Warn().Err(err).Str("type", string(ev.Type)).Msg("failed to publish session event")
		}
	}()
}
