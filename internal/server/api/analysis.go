package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MDidoStar/blinkwell/internal/analysis"
	"github.com/MDidoStar/blinkwell/internal/report"
	"github.com/MDidoStar/blinkwell/internal/store"
)

// maxUploadBytes bounds the frame archive upload. 120 JPEG frames at VGA
// resolution stay far under this.
const maxUploadBytes = 64 << 20

// AnalysisHandler accepts a captured frame archive, runs the screening
// analysis, and archives the resulting report.
type AnalysisHandler struct {
	analyzer *analysis.Analyzer
	reports  *store.ReportRepository
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analyzer *analysis.Analyzer, reports *store.ReportRepository) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer, reports: reports}
}

// Register mounts the analysis route on the router.
func (h *AnalysisHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/analysis", h.analyze).Methods("POST")
}

type analysisResponse struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	FrameCount int    `json:"frame_count"`
	CreatedAt  string `json:"created_at"`
}

// analyze handles POST /api/analysis. It expects a multipart form with a
// "frames" ZIP file and country, city, and age fields.
func (h *AnalysisHandler) analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, _, err := r.FormFile("frames")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'frames' archive")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read 'frames' archive")
		return
	}

	age, err := strconv.Atoi(r.FormValue("age"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Field 'age' must be a number")
		return
	}

	frames, err := analysis.ExtractFramesBytes(data)
	if err != nil {
		if errors.Is(err, analysis.ErrNoFrames) {
			writeError(w, http.StatusBadRequest, "No JPG files found in the ZIP")
			return
		}
		writeError(w, http.StatusBadRequest, "Failed to read ZIP file")
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), analysis.Request{
		Frames:  frames,
		Country: r.FormValue("country"),
		City:    r.FormValue("city"),
		Age:     age,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "Analysis failed: "+err.Error())
		return
	}

	pdfBytes, err := report.Build(report.Document{
		Thumbnail: frames[0],
		Body:      result.Text,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	rep := &store.Report{
		Country:    result.Country,
		City:       result.City,
		Age:        result.Age,
		FrameCount: result.FrameCount,
		Text:       result.Text,
		Thumbnail:  frames[0],
		PDF:        pdfBytes,
	}
	if err := h.reports.Create(rep); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to archive report")
		return
	}

	writeJSON(w, http.StatusCreated, analysisResponse{
		ID:         rep.ID,
		Text:       rep.Text,
		FrameCount: rep.FrameCount,
		CreatedAt:  rep.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}
