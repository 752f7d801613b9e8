package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocjay1/finpulse/internal/aggregate"
	"github.com/rocjay1/finpulse/internal/edit"
	"github.com/rocjay1/finpulse/internal/logger"
	"github.com/rocjay1/finpulse/internal/models"
)

type transactionView struct {
	models.Transaction
	Status edit.RowStatus `json:"status"`
}

type transactionsResponse struct {
	Revision     uint64            `json:"revision"`
	Uploading    bool              `json:"uploading"`
	Transactions []transactionView `json:"transactions"`
}

type summaryResponse struct {
	Categories []aggregate.CategoryTotal `json:"categories"`
	Totals     aggregate.Totals          `json:"totals"`
}

// HandleListTransactions returns the collection with each row's edit status.
func (d *Dependencies) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	txns := d.Session.Transactions()
	views := make([]transactionView, len(txns))
	for i, t := range txns {
		views[i] = transactionView{Transaction: t, Status: d.Session.RowStatus(t.ID)}
	}

	WriteJSON(w, r, http.StatusOK, transactionsResponse{
		Revision:     d.Session.Revision(),
		Uploading:    d.Session.Uploading(),
		Transactions: views,
	})
}

func (d *Dependencies) HandleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	txn, err := d.Session.Transaction(id)
	if err != nil {
		writeFailure(w, r, "Failed to get transaction", err)
		return
	}
	WriteJSON(w, r, http.StatusOK, transactionView{Transaction: txn, Status: d.Session.RowStatus(id)})
}

// HandleSummary returns category totals and inflow/outflow.
func (d *Dependencies) HandleSummary(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, summaryResponse{
		Categories: d.Session.Summary(),
		Totals:     d.Session.Totals(),
	})
}

// HandleExport downloads the collection as CSV.
func (d *Dependencies) HandleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	name, err := d.Session.ExportCSV(&buf)
	if err != nil {
		writeFailure(w, r, "Failed to export csv", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("failed to write csv response")
	}
}
