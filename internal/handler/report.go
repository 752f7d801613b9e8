package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rocjay1/finpulse/internal/aggregate"
	"github.com/rocjay1/finpulse/internal/logger"
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/rocjay1/finpulse/internal/report"
)

type reportResponse struct {
	Loading bool                   `json:"loading"`
	Result  *models.ReportResult   `json:"result"`
	Trend   []aggregate.TrendPoint `json:"trend,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

type settingsBody struct {
	CompanyName string          `json:"company_name"`
	Language    models.Language `json:"language"`
	Industry    models.Industry `json:"industry"`
}

func newReportResponse(st report.State) reportResponse {
	resp := reportResponse{Loading: st.Loading, Result: st.Result}
	if st.Result != nil {
		resp.Trend = aggregate.SortTrend(st.Result.Metrics.MonthlyTrend)
	}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	return resp
}

// HandleGetReport returns the last report, the loading flag and the last error.
func (d *Dependencies) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, r, http.StatusOK, newReportResponse(d.Session.Report()))
}

// HandleRefreshReport regenerates the report and waits for it.
func (d *Dependencies) HandleRefreshReport(w http.ResponseWriter, r *http.Request) {
	if _, err := d.Session.Refresh(r.Context()); err != nil {
		writeFailure(w, r, "Failed to generate report", err)
		return
	}
	WriteJSON(w, r, http.StatusOK, newReportResponse(d.Session.Report()))
}

func (d *Dependencies) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	s := d.Session.Settings()
	WriteJSON(w, r, http.StatusOK, settingsBody{CompanyName: s.CompanyName, Language: s.Language, Industry: s.Industry})
}

// HandleUpdateSettings merges the given fields over the current settings.
// Empty fields keep their current value.
func (d *Dependencies) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body settingsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		WriteError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	next := d.Session.Settings()
	if body.CompanyName != "" {
		next.CompanyName = body.CompanyName
	}
	if body.Language != "" {
		next.Language = body.Language
	}
	if body.Industry != "" {
		next.Industry = body.Industry
	}
	if err := next.Validate(); err != nil {
		WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	changed, err := d.Session.SetSettings(next)
	if err != nil {
		writeFailure(w, r, "Failed to update settings", err)
		return
	}
	logger.FromContext(r.Context()).Info().
		Bool("changed", changed).
		Str("language", string(next.Language)).
		Str("industry", string(next.Industry)).
		Msg("settings updated")

	WriteJSON(w, r, http.StatusOK, settingsBody{CompanyName: next.CompanyName, Language: next.Language, Industry: next.Industry})
}
