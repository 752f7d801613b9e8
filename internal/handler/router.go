package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter mounts every session endpoint under /api/v1.
func NewRouter(deps *Dependencies, log zerolog.Logger) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(RequestLogger(log))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/transactions", deps.HandleListTransactions)
		r.Get("/transactions/{id}", deps.HandleGetTransaction)
		r.Post("/transactions/{id}/edit", deps.HandleBeginEdit)

		r.Post("/upload", deps.HandleUpload)
		r.Post("/import", deps.HandleImport)
		r.Get("/export", deps.HandleExport)
		r.Get("/summary", deps.HandleSummary)

		r.Route("/edit", func(r chi.Router) {
			r.Get("/", deps.HandleGetEdit)
			r.Patch("/", deps.HandleUpdateDraft)
			r.Post("/commit", deps.HandleCommitEdit)
			r.Delete("/", deps.HandleCancelEdit)
		})

		r.Get("/report", deps.HandleGetReport)
		r.Post("/report/refresh", deps.HandleRefreshReport)
		r.Get("/settings", deps.HandleGetSettings)
		r.Put("/settings", deps.HandleUpdateSettings)

		r.Post("/archive", deps.HandleArchive)
		r.Post("/archive/export", deps.HandleArchiveExport)
		r.Post("/restore/{name}", deps.HandleRestore)
		r.Post("/uploads/restore", deps.HandleRestoreUpload)
	})

	return router
}
