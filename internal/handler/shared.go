package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocjay1/finpulse/internal/api"
	"github.com/rocjay1/finpulse/internal/edit"
	"github.com/rocjay1/finpulse/internal/logger"
	"github.com/rocjay1/finpulse/internal/report"
	"github.com/rocjay1/finpulse/internal/services"
	"github.com/rocjay1/finpulse/internal/session"
)

// Dependencies holds the services required by the handlers.
type Dependencies struct {
	Session SessionAPI
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.FromContext(r.Context()).Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, r, status, map[string]string{"error": message})
}

// writeFailure logs err and maps it to a status code.
func writeFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg(msg)
	} else {
		log.Warn().Err(err).Int("status", status).Msg(msg)
	}
	WriteError(w, r, status, msg+": "+err.Error())
}

func statusFor(err error) int {
	var remoteErr *api.RemoteError
	switch {
	case errors.Is(err, session.ErrTransactionNotFound),
		errors.Is(err, services.ErrSnapshotNotFound),
		errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, edit.ErrNoActiveEdit),
		errors.Is(err, edit.ErrSaveInFlight),
		errors.Is(err, session.ErrUploadInProgress),
		errors.Is(err, report.ErrNoTransactions):
		return http.StatusConflict
	case errors.Is(err, edit.ErrUnknownField),
		errors.Is(err, edit.ErrUnknownCategory),
		errors.Is(err, session.ErrForeignUpload):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoValidRows):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrStorageDisabled):
		return http.StatusNotImplemented
	case errors.As(err, &remoteErr), errors.Is(err, api.ErrTransport),
		errors.Is(err, report.ErrEmptyResult):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
