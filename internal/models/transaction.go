package models

import (
	"github.com/shopspring/decimal"
)

// Transaction is one dated ledger entry held by the session.
// A positive Amount is an inflow, a negative Amount an outflow.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"` // ISO 8601 date string
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
}

// RawTransaction is a transaction as received from an upload, before an id
// has been assigned. ID may be empty.
type RawTransaction struct {
	ID          string          `json:"id,omitempty"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
}

// TransactionPatch carries the mutable fields of a transaction.
// Nil fields are left untouched when the patch is applied.
type TransactionPatch struct {
	Description *string
	Category    *Category
}

// Apply returns a copy of t with the present patch fields merged over it.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	return t
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return p.Description == nil && p.Category == nil
}

// TransactionUpdate is the body sent to the remote authority when an edit is saved.
type TransactionUpdate struct {
	Category    Category `json:"category"`
	Description string   `json:"description"`
}

// Patch converts a confirmed update into a store patch.
func (u TransactionUpdate) Patch() TransactionPatch {
	desc := u.Description
	cat := u.Category
	return TransactionPatch{Description: &desc, Category: &cat}
}
