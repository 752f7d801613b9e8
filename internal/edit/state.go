package edit

import "github.com/rocjay1/finpulse/internal/models"

// State is the single edit slot of a session: either NoActiveEdit or EditingRow.
type State interface {
	isState()
}

// NoActiveEdit means every row is being viewed.
type NoActiveEdit struct{}

// EditingRow holds the working copy of the row being edited.
type EditingRow struct {
	ID    string
	Draft models.Transaction
}

func (NoActiveEdit) isState() {}
func (EditingRow) isState()   {}

// RowStatus is the state of one row as shown to the user.
type RowStatus string

const (
	StatusViewing RowStatus = "viewing"
	StatusEditing RowStatus = "editing"
	StatusSaving  RowStatus = "saving"
)

// Field names an editable transaction field.
type Field string

const (
	FieldDescription Field = "description"
	FieldCategory    Field = "category"
)
