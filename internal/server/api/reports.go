package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MDidoStar/blinkwell/internal/store"
)

// ReportsHandler serves the archived report collection.
type ReportsHandler struct {
	reports *store.ReportRepository
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(reports *store.ReportRepository) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Register mounts the report routes on the router.
func (h *ReportsHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/reports", h.list).Methods("GET")
	r.HandleFunc("/api/reports/{id}", h.get).Methods("GET")
	r.HandleFunc("/api/reports/{id}", h.delete).Methods("DELETE")
	r.HandleFunc("/api/reports/{id}/pdf", h.pdf).Methods("GET")
}

type reportSummaryResponse struct {
	ID         string `json:"id"`
	Country    string `json:"country"`
	City       string `json:"city"`
	Age        int    `json:"age"`
	FrameCount int    `json:"frame_count"`
	CreatedAt  string `json:"created_at"`
}

type reportResponse struct {
	reportSummaryResponse
	Text string `json:"text"`
}

type listReportsResponse struct {
	Reports []reportSummaryResponse `json:"reports"`
}

func toSummaryResponse(s *store.ReportSummary) reportSummaryResponse {
	return reportSummaryResponse{
		ID:         s.ID,
		Country:    s.Country,
		City:       s.City,
		Age:        s.Age,
		FrameCount: s.FrameCount,
		CreatedAt:  s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *ReportsHandler) list(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list reports")
		return
	}

	response := listReportsResponse{
		Reports: make([]reportSummaryResponse, 0, len(reports)),
	}
	for _, s := range reports {
		response.Reports = append(response.Reports, toSummaryResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *ReportsHandler) get(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.GetByID(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get report")
		return
	}

	writeJSON(w, http.StatusOK, reportResponse{
		reportSummaryResponse: reportSummaryResponse{
			ID:         rep.ID,
			Country:    rep.Country,
			City:       rep.City,
			Age:        rep.Age,
			FrameCount: rep.FrameCount,
			CreatedAt:  rep.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		Text: rep.Text,
	})
}

func (h *ReportsHandler) delete(w http.ResponseWriter, r *http.Request) {
	err := h.reports.Delete(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete report")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ReportsHandler) pdf(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.GetByID(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Report not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get report")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="blink_analysis_report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.PDF)))
	w.Write(rep.PDF)
}
