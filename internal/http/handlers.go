package http

import (
	"net/http"

	"bankstat/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	payload, err := s.reports.Dashboard(r.Context(), trimmed(q, "at"))
	if err != nil {
		writeError(w, r, log.OpDashboard, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	payload, err := s.reports.Events(r.Context(), trimmed(q, "date"), trimmed(q, "range"))
	if err != nil {
		writeError(w, r, log.OpEvents, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCashback(w http.ResponseWriter, r *http.Request) {
	period, err := parseMonthParams(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpCashback, err)
		return
	}
	payload, err := s.reports.Cashback(r.Context(), period.Year, period.Month)
	if err != nil {
		writeError(w, r, log.OpCashback, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSpending(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	payload, err := s.reports.Spending(r.Context(), trimmed(q, "category"), trimmed(q, "date"))
	if err != nil {
		writeError(w, r, log.OpSpending, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

type reportRequestResponse struct {
	ID     string `json:"id"`
	Report string `json:"report"`
	Status string `json:"status"`
}

func (s *Server) handleRequestReport(w http.ResponseWriter, r *http.Request) {
	body, err := decodeReportRequest(w, r)
	if err != nil {
		writeError(w, r, log.OpPublish, err)
		return
	}
	id, err := s.reports.RequestReport(r.Context(), body.Report, body.params(), body.Filename)
	if err != nil {
		writeError(w, r, log.OpPublish, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Report request queued",
		log.FieldReport, body.Report,
		"id", id)
	writeJSON(w, http.StatusAccepted, reportRequestResponse{ID: id, Report: body.Report, Status: "queued"})
}
