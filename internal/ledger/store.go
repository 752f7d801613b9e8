package ledger

import (
	"sync"

	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rs/zerolog"
)

// ChangeKind says which mutation produced a Change.
type ChangeKind string

const (
	ChangeReplaced ChangeKind = "replaced"
	ChangePatched  ChangeKind = "patched"
)

// Change describes a mutation of the collection.
type Change struct {
	Kind     ChangeKind
	Revision uint64
	Count    int
	// ID is set for ChangePatched.
	ID string
}

// Listener is notified after a mutation is visible to readers.
type Listener func(Change)

// Store holds the canonical ordered transaction collection of a session.
// It is safe for concurrent use. Readers always receive copies.
type Store struct {
	mu        sync.RWMutex
	txns      []models.Transaction
	index     map[string]int
	revision  uint64
	listeners []Listener
	log       zerolog.Logger
}

// NewStore creates an empty Store.
func NewStore(log zerolog.Logger) *Store {
	return &Store{
		index: make(map[string]int),
		log:   log.With().Str("component", "ledger").Logger(),
	}
}

// Subscribe registers fn to be called on every mutation.
func (s *Store) Subscribe(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// ReplaceAll swaps the entire collection. It is the only ingestion path.
func (s *Store) ReplaceAll(txns []models.Transaction) {
	next := make([]models.Transaction, len(txns))
	copy(next, txns)
	index := make(map[string]int, len(next))
	for i, t := range next {
		index[t.ID] = i
	}

	s.mu.Lock()
	s.txns = next
	s.index = index
	s.revision++
	change := Change{Kind: ChangeReplaced, Revision: s.revision, Count: len(next)}
	listeners := s.listeners
	s.mu.Unlock()

	s.log.Info().Int("count", change.Count).Uint64("revision", change.Revision).Msg("replaced transactions")
	notify(listeners, change)
}

// PatchOne merges patch over the record with the given id, keeping its
// position. An unknown id leaves the store unchanged and returns false.
func (s *Store) PatchOne(id string, patch models.TransactionPatch) bool {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		revision := s.revision
		s.mu.Unlock()
		s.log.Warn().Str("id", id).Uint64("revision", revision).Msg("patch skipped: transaction not found")
		return false
	}

	s.txns[i] = patch.Apply(s.txns[i])
	s.revision++
	change := Change{Kind: ChangePatched, Revision: s.revision, Count: len(s.txns), ID: id}
	listeners := s.listeners
	s.mu.Unlock()

	s.log.Info().Str("id", id).Uint64("revision", change.Revision).Msg("patched transaction")
	notify(listeners, change)
	return true
}

// Snapshot returns a copy of the collection in order.
func (s *Store) Snapshot() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}

// SnapshotWithRevision returns a copy of the collection and the revision it belongs to.
func (s *Store) SnapshotWithRevision() ([]models.Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Transaction, len(s.txns))
	copy(out, s.txns)
	return out, s.revision
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return models.Transaction{}, false
	}
	return s.txns[i], true
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txns)
}

// Revision increases by one on every mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func notify(listeners []Listener, change Change) {
	for _, fn := range listeners {
		fn(change)
	}
}
