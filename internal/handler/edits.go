package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rocjay1/finpulse/internal/edit"
	"github.com/rocjay1/finpulse/internal/logger"
	"github.com/rocjay1/finpulse/internal/models"
)

type editStateResponse struct {
	Active bool                `json:"active"`
	ID     string              `json:"id,omitempty"`
	Draft  *models.Transaction `json:"draft,omitempty"`
	Status edit.RowStatus      `json:"status,omitempty"`
}

type draftRequest struct {
	Field edit.Field `json:"field"`
	Value string     `json:"value"`
}

func (d *Dependencies) editState() editStateResponse {
	row, ok := d.Session.EditState().(edit.EditingRow)
	if !ok {
		return editStateResponse{}
	}
	draft := row.Draft
	return editStateResponse{Active: true, ID: row.ID, Draft: &draft, Status: d.Session.RowStatus(row.ID)}
}

// HandleGetEdit returns the active edit, if any.
func (d *Dependencies) HandleGetEdit(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, d.editState())
}

// HandleBeginEdit starts editing the transaction in the URL.
func (d *Dependencies) HandleBeginEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := d.Session.BeginEdit(id); err != nil {
		writeFailure(w, r, "Failed to begin edit", err)
		return
	}
	logger.FromContext(r.Context()).Debug().Str("id", id).Msg("edit started")
	WriteJSON(w, r, http.StatusOK, d.editState())
}

// HandleUpdateDraft changes one field of the draft.
func (d *Dependencies) HandleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.FromContext(r.Context()).Warn().Err(err).Msg("invalid draft request body")
		WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := d.Session.UpdateDraft(req.Field, req.Value); err != nil {
		writeFailure(w, r, "Failed to update draft", err)
		return
	}
	WriteJSON(w, r, http.StatusOK, d.editState())
}

// HandleCommitEdit saves the draft through the remote.
func (d *Dependencies) HandleCommitEdit(w http.ResponseWriter, r *http.Request) {
	if err := d.Session.CommitEdit(r.Context()); err != nil {
		writeFailure(w, r, "Failed to save transaction", err)
		return
	}
	WriteJSON(w, r, http.StatusOK, d.editState())
}

// HandleCancelEdit discards the draft.
func (d *Dependencies) HandleCancelEdit(w http.ResponseWriter, r *http.Request) {
	d.Session.CancelEdit()
	WriteJSON(w, r, http.StatusOK, d.editState())
}
