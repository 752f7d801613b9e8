package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/rocjay1/finpulse/internal/logger"
)

const maxUploadBytes = 10 << 20

// HandleUpload forwards an uploaded file to the remote for extraction and
// replaces the session's transactions with the result.
func (d *Dependencies) HandleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	// 10MB limit
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Warn().Err(err).Int("max_size_mb", 10).Msg("failed to parse multipart form")
		WriteError(w, r, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Warn().Err(err).Msg("failed to get file from form")
		WriteError(w, r, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	log.Info().Str("filename", filename).Int64("size_bytes", header.Size).Msg("received file upload")

	res, err := d.Session.Upload(r.Context(), filename, file)
	if err != nil {
		writeFailure(w, r, "Failed to process upload", err)
		return
	}

	log.Info().Str("filename", filename).Int("count", res.Count).Msg("successfully processed upload")
	WriteJSON(w, r, http.StatusOK, res)
}

// HandleImport replaces the session's transactions with a previously
// exported CSV, sent either as multipart field "file" or as the raw body.
func (d *Dependencies) HandleImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	var src io.Reader = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			log.Warn().Err(err).Msg("failed to parse multipart form")
			WriteError(w, r, http.StatusBadRequest, "File too large or invalid form")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			WriteError(w, r, http.StatusBadRequest, "Failed to get file")
			return
		}
		defer file.Close()
		src = file
	}

	res, err := d.Session.ImportCSV(src)
	if err != nil {
		writeFailure(w, r, "Failed to import csv", err)
		return
	}

	log.Info().Int("count", res.Count).Int("skipped", len(res.Warnings)).Msg("imported csv")
	WriteJSON(w, r, http.StatusOK, res)
}
