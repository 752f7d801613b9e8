package report

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rocjay1/finpulse/internal/api"
	"github.com/rocjay1/finpulse/internal/ledger"
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rs/zerolog"
)

// ErrNoTransactions is returned by Refresh when there is nothing to analyze.
var ErrNoTransactions = errors.New("no transactions to analyze")

// ErrEmptyResult is recorded when the remote answers without a report.
var ErrEmptyResult = errors.New("failed to generate report: empty result")

// Generator produces a report from the remote authority.
type Generator interface {
	GenerateReport(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error)
}

// Source supplies the current collection together with its revision.
type Source interface {
	SnapshotWithRevision() ([]models.Transaction, uint64)
}

// State is what a view renders: the last accepted result (possibly stale
// while a newer request is loading), the loading flag and the last error.
type State struct {
	Result  *models.ReportResult
	Loading bool
	Err     error
	// Seq is the tag of the request that produced Result.
	Seq uint64
}

// Orchestrator regenerates the report whenever the collection or the
// settings change. Only the response of the latest issued request is kept.
type Orchestrator struct {
	remote Generator
	source Source
	log    zerolog.Logger
	ctx    context.Context

	mu       sync.Mutex
	settings models.Settings
	seq      uint64
	inflight int
	result   *models.ReportResult
	resultSq uint64
	lastErr  error
	sinks    []Sink

	wg sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithContext sets the parent context of change-triggered requests.
func WithContext(ctx context.Context) Option {
	return func(o *Orchestrator) { o.ctx = ctx }
}

// WithSink registers fn to receive report events.
func WithSink(fn Sink) Option {
	return func(o *Orchestrator) { o.sinks = append(o.sinks, fn) }
}

// New creates an Orchestrator with the given initial settings.
func New(remote Generator, source Source, settings models.Settings, log zerolog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		remote:   remote,
		source:   source,
		settings: settings,
		log:      log.With().Str("component", "report").Logger(),
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TransactionsChanged is a ledger.Listener.
func (o *Orchestrator) TransactionsChanged(change ledger.Change) {
	o.log.Debug().
		Str("kind", string(change.Kind)).
		Uint64("revision", change.Revision).
		Msg("transactions changed")
	o.trigger("transactions")
}

// SetSettings replaces the settings record. It returns false, and issues no
// request, when s equals the current settings.
func (o *Orchestrator) SetSettings(s models.Settings) bool {
	o.mu.Lock()
	if o.settings == s {
		o.mu.Unlock()
		return false
	}
	o.settings = s
	o.mu.Unlock()

	o.trigger("settings")
	return true
}

// SetLanguage changes the language of the generated commentary.
func (o *Orchestrator) SetLanguage(lang models.Language) bool {
	s := o.Settings()
	s.Language = lang
	return o.SetSettings(s)
}

// SetIndustry changes the benchmark industry.
func (o *Orchestrator) SetIndustry(industry models.Industry) bool {
	s := o.Settings()
	s.Industry = industry
	return o.SetSettings(s)
}

// Settings returns the current settings.
func (o *Orchestrator) Settings() models.Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// State returns the current report state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return State{Result: o.result, Loading: o.inflight > 0, Err: o.lastErr, Seq: o.resultSq}
}

// Loading reports whether any request is outstanding.
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight > 0
}

// Refresh issues a request with the current inputs and waits for it.
func (o *Orchestrator) Refresh(ctx context.Context) (*models.ReportResult, error) {
	seq, req, ok := o.issue("refresh")
	if !ok {
		return nil, ErrNoTransactions
	}
	return o.run(ctx, seq, req)
}

// Wait blocks until every change-triggered request has settled.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) trigger(reason string) {
	seq, req, ok := o.issue(reason)
	if !ok {
		return
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		_, _ = o.run(o.ctx, seq, req)
	}()
}

// issue builds the next request and tags it. It reports false when the
// collection is empty. The snapshot is read under o.mu so a higher tag never
// carries an older collection than a lower one. The store calls listeners
// outside its own lock, so o.mu before store.mu cannot deadlock.
func (o *Orchestrator) issue(reason string) (uint64, api.ReportRequest, bool) {
	o.mu.Lock()
	txns, revision := o.source.SnapshotWithRevision()
	if len(txns) == 0 {
		o.mu.Unlock()
		o.log.Debug().Str("reason", reason).Msg("no transactions, skipping report")
		return 0, api.ReportRequest{}, false
	}
	o.seq++
	seq := o.seq
	o.inflight++
	req := api.NewReportRequest(o.settings, txns)
	o.mu.Unlock()

	o.log.Info().
		Str("reason", reason).
		Uint64("seq", seq).
		Uint64("revision", revision).
		Int("count", len(txns)).
		Str("language", string(req.Language)).
		Str("industry", string(req.Industry)).
		Msg("requesting report")
	return seq, req, true
}

func (o *Orchestrator) run(ctx context.Context, seq uint64, req api.ReportRequest) (*models.ReportResult, error) {
	result, err := o.remote.GenerateReport(ctx, req)
	switch {
	case err != nil:
		err = fmt.Errorf("failed to generate report: %w", err)
	case result == nil:
		err = ErrEmptyResult
	}
	if err != nil {
		result = nil
	}

	o.mu.Lock()
	o.inflight--
	latest := seq == o.seq
	switch {
	case err != nil && latest:
		o.lastErr = err
	case err == nil && latest:
		o.result = result
		o.resultSq = seq
		o.lastErr = nil
	}
	sinks := o.sinks
	o.mu.Unlock()

	ev := Event{Seq: seq, Result: result, Err: err}
	switch {
	case err != nil:
		ev.Kind = EventFailed
		o.log.Error().Err(err).Uint64("seq", seq).Bool("latest", latest).Msg("report request failed")
	case latest:
		ev.Kind = EventGenerated
		o.log.Info().Uint64("seq", seq).Int("score", result.Score).Msg("report updated")
	default:
		ev.Kind = EventDiscarded
		o.log.Info().Uint64("seq", seq).Msg("discarding stale report response")
	}
	for _, fn := range sinks {
		fn(ev)
	}

	return result, err
}
