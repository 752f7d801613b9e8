package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// HandleArchive saves the session snapshot.
func (d *Dependencies) HandleArchive(w http.ResponseWriter, r *http.Request) {
	if err := d.Session.Archive(r.Context()); err != nil {
		writeFailure(w, r, "Failed to archive session", err)
		return
	}
	WriteJSON(w, r, http.StatusOK, map[string]string{"status": "success", "snapshot": d.Session.Name()})
}

// HandleRestore replaces the session with a saved snapshot.
func (d *Dependencies) HandleRestore(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	count, err := d.Session.Restore(r.Context(), name)
	if err != nil {
		writeFailure(w, r, "Failed to restore session", err)
		return
	}
	WriteJSON(w, r, http.StatusOK, map[string]any{"status": "success", "snapshot": name, "count": count})
}

// HandleArchiveExport stores a CSV export in blob storage.
func (d *Dependencies) HandleArchiveExport(w http.ResponseWriter, r *http.Request) {
	blob, err := d.Session.ArchiveExport(r.Context())
	if err != nil {
		writeFailure(w, r, "Failed to archive export", err)
		return
	}
	WriteJSON(w, r, http.StatusOK, map[string]string{"status": "success", "blobName": blob})
}

// HandleRestoreUpload re-extracts an archived upload. Body: {"blobName": "..."}.
func (d *Dependencies) HandleRestoreUpload(w http.ResponseWriter, r *http.Request) {
	var body struct {
		BlobName string `json:"blobName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.BlobName == "" {
		WriteError(w, r, http.StatusBadRequest, "Request body must contain blobName")
		return
	}

	res, err := d.Session.RestoreUpload(r.Context(), body.BlobName)
	if err != nil {
		writeFailure(w, r, "Failed to restore upload", err)
		return
	}
	WriteJSON(w, r, http.StatusOK, res)
}
