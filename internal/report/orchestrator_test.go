package report

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rocjay1/finpulse/internal/api"
	"github.com/rocjay1/finpulse/internal/ledger"
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{ID: "t1", Date: "2024-01-05", Description: "Invoice 1", Category: models.CategoryRevenue, Amount: decimal.NewFromInt(500)},
		{ID: "t2", Date: "2024-01-09", Description: "Rent", Category: models.CategoryRent, Amount: decimal.NewFromInt(-200)},
	}
}

func newOrchestrator(gen Generator, opts ...Option) (*Orchestrator, *ledger.Store) {
	store := ledger.NewStore(zerolog.Nop())
	o := New(gen, store, models.DefaultSettings(), zerolog.Nop(), opts...)
	store.Subscribe(o.TransactionsChanged)
	return o, store
}

func TestReplaceAll_IssuesOneRequest(t *testing.T) {
	// Setup
	gen := &MockGenerator{}
	o, store := newOrchestrator(gen)

	// Execute
	store.ReplaceAll(sampleTransactions())
	o.Wait()

	// Assert
	reqs := gen.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, sampleTransactions(), reqs[0].Transactions)
	assert.Equal(t, models.DefaultCompanyName, reqs[0].CompanyName)
	assert.Equal(t, models.LanguageEnglish, reqs[0].Language)
	assert.Equal(t, models.IndustryRetail, reqs[0].Industry)

	st := o.State()
	require.NotNil(t, st.Result)
	assert.Equal(t, 80, st.Result.Score)
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
}

func TestEmptyCollection_NoRequest(t *testing.T) {
	gen := &MockGenerator{}
	o, store := newOrchestrator(gen)

	store.ReplaceAll(nil)
	assert.True(t, o.SetLanguage(models.LanguageFrench))
	o.Wait()

	assert.Empty(t, gen.Requests())
	assert.Nil(t, o.State().Result)

	_, err := o.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoTransactions)
}

func TestSettingsChange_CarriesNewValues(t *testing.T) {
	gen := &MockGenerator{}
	o, store := newOrchestrator(gen)
	store.ReplaceAll(sampleTransactions())
	o.Wait()

	assert.True(t, o.SetLanguage(models.LanguageSpanish))
	o.Wait()
	assert.True(t, o.SetIndustry(models.IndustryTechSaaS))
	o.Wait()

	reqs := gen.Requests()
	require.Len(t, reqs, 3)
	assert.Equal(t, models.LanguageSpanish, reqs[1].Language)
	assert.Equal(t, models.IndustryRetail, reqs[1].Industry)
	assert.Equal(t, models.LanguageSpanish, reqs[2].Language)
	assert.Equal(t, models.IndustryTechSaaS, reqs[2].Industry)
}

func TestUnchangedSettings_NoRequest(t *testing.T) {
	gen := &MockGenerator{}
	o, store := newOrchestrator(gen)
	store.ReplaceAll(sampleTransactions())
	o.Wait()

	assert.False(t, o.SetLanguage(models.LanguageEnglish))
	assert.False(t, o.SetSettings(models.DefaultSettings()))
	o.Wait()

	assert.Len(t, gen.Requests(), 1)
}

func TestPatch_RequestReflectsEdit(t *testing.T) {
	gen := &MockGenerator{}
	o, store := newOrchestrator(gen)
	store.ReplaceAll(sampleTransactions())
	o.Wait()

	desc := "Office rent"
	require.True(t, store.PatchOne("t2", models.TransactionPatch{Description: &desc}))
	assert.False(t, store.PatchOne("missing", models.TransactionPatch{Description: &desc}))
	o.Wait()

	reqs := gen.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Office rent", reqs[1].Transactions[1].Description)
}

func TestFailure_KeepsPreviousResult(t *testing.T) {
	// Setup
	fail := false
	gen := &MockGenerator{GenerateReportFunc: func(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return &models.ReportResult{Score: 42}, nil
	}}
	var events []Event
	var mu sync.Mutex
	o, store := newOrchestrator(gen, WithSink(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}))
	store.ReplaceAll(sampleTransactions())
	o.Wait()

	// Execute
	fail = true
	_, err := o.Refresh(context.Background())

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	st := o.State()
	assert.False(t, st.Loading)
	require.NotNil(t, st.Result)
	assert.Equal(t, 42, st.Result.Score)
	assert.ErrorContains(t, st.Err, "boom")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 2)
	assert.Equal(t, EventGenerated, events[0].Kind)
	assert.Equal(t, EventFailed, events[1].Kind)
}

func TestSuccessClearsError(t *testing.T) {
	calls := 0
	gen := &MockGenerator{GenerateReportFunc: func(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("unavailable")
		}
		return &models.ReportResult{Score: 75}, nil
	}}
	o, store := newOrchestrator(gen)
	store.ReplaceAll(sampleTransactions())
	o.Wait()
	assert.Error(t, o.State().Err)

	res, err := o.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Healthy())
	assert.NoError(t, o.State().Err)
}

func TestStaleResponseDiscarded(t *testing.T) {
	// Setup: the first request blocks until the second has completed.
	releaseFirst := make(chan struct{})
	firstStarted := make(chan struct{})
	gen := &MockGenerator{GenerateReportFunc: func(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error) {
		if req.Language == models.LanguageEnglish {
			close(firstStarted)
			<-releaseFirst
			return &models.ReportResult{Score: 10}, nil
		}
		return &models.ReportResult{Score: 90}, nil
	}}
	var kinds []EventKind
	var mu sync.Mutex
	o, store := newOrchestrator(gen, WithSink(func(ev Event) {
		mu.Lock()
		kinds = append(kinds, ev.Kind)
		mu.Unlock()
	}))

	// Execute
	store.ReplaceAll(sampleTransactions())
	<-firstStarted
	assert.True(t, o.Loading())

	res, err := o.Refresh(withLanguage(t, o, models.LanguageGerman))
	require.NoError(t, err)
	assert.Equal(t, 90, res.Score)
	assert.True(t, o.Loading())

	close(releaseFirst)
	o.Wait()

	// Assert
	st := o.State()
	assert.False(t, st.Loading)
	require.NotNil(t, st.Result)
	assert.Equal(t, 90, st.Result.Score)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, kinds, EventDiscarded)
}

// withLanguage changes the language without triggering a background request
// by swapping the settings under the lock, then returns a context for Refresh.
func withLanguage(t *testing.T, o *Orchestrator, lang models.Language) context.Context {
	t.Helper()
	o.mu.Lock()
	o.settings.Language = lang
	o.mu.Unlock()
	return context.Background()
}

func TestWithContext_PassedToBackgroundRequests(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "session")
	var got any
	gen := &MockGenerator{GenerateReportFunc: func(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error) {
		got = ctx.Value(key{})
		return &models.ReportResult{Score: 60}, nil
	}}
	o, store := newOrchestrator(gen, WithContext(ctx))

	store.ReplaceAll(sampleTransactions())
	o.Wait()

	assert.Equal(t, "session", got)
}

// stallingSource holds the first snapshot read until release is closed.
type stallingSource struct {
	store   *ledger.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *stallingSource) SnapshotWithRevision() ([]models.Transaction, uint64) {
	txns, rev := s.store.SnapshotWithRevision()
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.entered)
		<-s.release
	}
	return txns, rev
}

func TestConcurrentIssue_LatestTagCarriesLatestCollection(t *testing.T) {
	// Setup: the settings-triggered request stalls while reading revision 1,
	// and a replace lands before it is tagged.
	gen := &MockGenerator{GenerateReportFunc: func(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error) {
		return &models.ReportResult{Score: len(req.Transactions)}, nil
	}}
	store := ledger.NewStore(zerolog.Nop())
	store.ReplaceAll(sampleTransactions()[:1])
	src := &stallingSource{store: store, entered: make(chan struct{}), release: make(chan struct{})}
	o := New(gen, src, models.DefaultSettings(), zerolog.Nop())
	notified := make(chan struct{}, 1)
	store.Subscribe(func(ledger.Change) { notified <- struct{}{} })
	store.Subscribe(o.TransactionsChanged)

	// Execute
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		o.SetLanguage(models.LanguageFrench)
	}()
	<-src.entered
	go func() {
		defer wg.Done()
		store.ReplaceAll(sampleTransactions())
	}()
	<-notified
	close(src.release)
	wg.Wait()
	o.Wait()

	// Assert
	require.Len(t, gen.Requests(), 2)
	st := o.State()
	require.NotNil(t, st.Result)
	assert.Equal(t, 2, st.Result.Score, "accepted report must be built from the latest collection")
	assert.Equal(t, uint64(2), st.Seq)
}

func TestNilResult_TreatedAsFailure(t *testing.T) {
	var kinds []EventKind
	var mu sync.Mutex
	gen := &MockGenerator{GenerateReportFunc: func(ctx context.Context, req api.ReportRequest) (*models.ReportResult, error) {
		return nil, nil
	}}
	o, store := newOrchestrator(gen, WithSink(func(ev Event) {
		mu.Lock()
		kinds = append(kinds, ev.Kind)
		mu.Unlock()
	}))

	store.ReplaceAll(sampleTransactions())
	o.Wait()

	st := o.State()
	assert.Nil(t, st.Result)
	assert.ErrorIs(t, st.Err, ErrEmptyResult)

	res, err := o.Refresh(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrEmptyResult)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventKind{EventFailed, EventFailed}, kinds)
}
