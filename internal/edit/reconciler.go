package edit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rs/zerolog"
)

var (
	ErrNoActiveEdit    = errors.New("no active edit")
	ErrSaveInFlight    = errors.New("a save for this transaction is still in flight")
	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownCategory = errors.New("unknown category")
)

// Updater confirms an edit with the remote authority.
type Updater interface {
	UpdateTransaction(ctx context.Context, id string, update models.TransactionUpdate) error
}

// Patcher applies a confirmed edit to the local collection.
type Patcher interface {
	PatchOne(id string, patch models.TransactionPatch) bool
}

// Reconciler manages the lifecycle of in-place edits. The local collection
// is only patched after the remote has confirmed the save.
type Reconciler struct {
	remote Updater
	store  Patcher
	log    zerolog.Logger

	mu     sync.Mutex
	state  State
	saving map[string]bool
}

// NewReconciler creates a Reconciler with no active edit.
func NewReconciler(remote Updater, store Patcher, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		remote: remote,
		store:  store,
		log:    log.With().Str("component", "edit").Logger(),
		state:  NoActiveEdit{},
		saving: make(map[string]bool),
	}
}

// Begin starts editing txn, discarding any other uncommitted draft.
func (r *Reconciler) Begin(txn models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saving[txn.ID] {
		return fmt.Errorf("cannot edit %s: %w", txn.ID, ErrSaveInFlight)
	}
	if prev, ok := r.state.(EditingRow); ok && prev.ID != txn.ID {
		r.log.Debug().Str("id", prev.ID).Msg("discarding uncommitted draft")
	}

	r.state = EditingRow{ID: txn.ID, Draft: txn}
	r.log.Debug().Str("id", txn.ID).Msg("edit started")
	return nil
}

// UpdateDraft changes one field of the active draft. Nothing else is touched.
func (r *Reconciler) UpdateDraft(field Field, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.state.(EditingRow)
	if !ok {
		return ErrNoActiveEdit
	}

	switch field {
	case FieldDescription:
		row.Draft.Description = value
	case FieldCategory:
		cat := models.Category(value)
		if !cat.Known() {
			return fmt.Errorf("%w: %q", ErrUnknownCategory, value)
		}
		row.Draft.Category = cat
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	r.state = row
	return nil
}

// Commit sends the draft to the remote. On success the store is patched with
// the confirmed fields and the row returns to viewing. On failure the draft
// stays active and the store is untouched.
func (r *Reconciler) Commit(ctx context.Context) (models.TransactionUpdate, error) {
	r.mu.Lock()
	row, ok := r.state.(EditingRow)
	if !ok {
		r.mu.Unlock()
		return models.TransactionUpdate{}, ErrNoActiveEdit
	}
	if r.saving[row.ID] {
		r.mu.Unlock()
		return models.TransactionUpdate{}, fmt.Errorf("cannot save %s: %w", row.ID, ErrSaveInFlight)
	}
	r.saving[row.ID] = true
	r.mu.Unlock()

	update := models.TransactionUpdate{
		Category:    row.Draft.Category,
		Description: row.Draft.Description,
	}

	r.log.Info().Str("id", row.ID).Str("category", string(update.Category)).Msg("saving transaction")
	err := r.remote.UpdateTransaction(ctx, row.ID, update)
	if err != nil {
		r.mu.Lock()
		delete(r.saving, row.ID)
		r.mu.Unlock()

		r.log.Error().Err(err).Str("id", row.ID).Msg("failed to save transaction")
		return models.TransactionUpdate{}, fmt.Errorf("failed to save transaction %s: %w", row.ID, err)
	}

	r.store.PatchOne(row.ID, update.Patch())

	r.mu.Lock()
	delete(r.saving, row.ID)
	if cur, ok := r.state.(EditingRow); ok && cur.ID == row.ID {
		r.state = NoActiveEdit{}
	}
	r.mu.Unlock()

	r.log.Info().Str("id", row.ID).Msg("transaction saved")
	return update, nil
}

// Cancel discards the active draft. In-flight saves are not affected.
func (r *Reconciler) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if row, ok := r.state.(EditingRow); ok {
		r.log.Debug().Str("id", row.ID).Msg("edit cancelled")
	}
	r.state = NoActiveEdit{}
}

// State returns the current edit slot.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Saving reports whether a save for id is outstanding.
func (r *Reconciler) Saving(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saving[id]
}

// Status returns the state of the row with the given id.
func (r *Reconciler) Status(id string) RowStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saving[id] {
		return StatusSaving
	}
	if row, ok := r.state.(EditingRow); ok && row.ID == id {
		return StatusEditing
	}
	return StatusViewing
}
