package identity

import (
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rs/zerolog"
)

// Assigner turns freshly received records into transactions that all carry
// a non-empty id, unique within the batch.
type Assigner struct {
	gen Generator
	log zerolog.Logger
}

// NewAssigner creates an Assigner drawing synthetic ids from gen.
func NewAssigner(gen Generator, log zerolog.Logger) *Assigner {
	return &Assigner{gen: gen, log: log.With().Str("component", "identity").Logger()}
}

// Assign returns the batch in the same order with ids filled in.
// Supplied ids are kept unless they repeat an earlier record of the batch.
// Empty categories become Uncategorized.
func (a *Assigner) Assign(raw []models.RawTransaction) []models.Transaction {
	supplied := make(map[string]bool, len(raw))
	for _, r := range raw {
		if r.ID != "" {
			supplied[r.ID] = true
		}
	}

	used := make(map[string]bool, len(raw))
	out := make([]models.Transaction, 0, len(raw))
	synthesized := 0

	for i, r := range raw {
		id := r.ID
		if id != "" && used[id] {
			a.log.Warn().Str("id", id).Int("position", i).Msg("duplicate id in batch, assigning a new one")
			id = ""
		}
		if id == "" {
			id = a.fresh(used, supplied)
			synthesized++
		}
		used[id] = true

		out = append(out, models.Transaction{
			ID:          id,
			Date:        r.Date,
			Description: r.Description,
			Category:    r.Category.OrUncategorized(),
			Amount:      r.Amount,
		})
	}

	a.log.Debug().Int("count", len(out)).Int("synthesized", synthesized).Msg("assigned transaction ids")
	return out
}

// fresh draws ids until one is free in this batch, including ids supplied by
// records further down.
func (a *Assigner) fresh(used, supplied map[string]bool) string {
	for {
		id := a.gen.Next()
		if id != "" && !used[id] && !supplied[id] {
			return id
		}
	}
}
