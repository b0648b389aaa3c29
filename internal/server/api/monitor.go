package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/MDidoStar/blinkwell/internal/blink"
	"github.com/MDidoStar/blinkwell/internal/monitor"
)

// MonitorController is the slice of the monitor the HTTP layer needs.
type MonitorController interface {
	Start() error
	Stop()
	Status() blink.Snapshot
	LastError() error
}

// MonitorHandler handles HTTP requests controlling the live monitor.
type MonitorHandler struct {
	ctrl MonitorController
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(ctrl MonitorController) *MonitorHandler {
	return &MonitorHandler{ctrl: ctrl}
}

// Register mounts the monitor routes on the router.
func (h *MonitorHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/monitor/start", h.start).Methods("POST")
	r.HandleFunc("/api/monitor/stop", h.stop).Methods("POST")
	r.HandleFunc("/api/monitor/status", h.status).Methods("GET")
}

type statusResponse struct {
	blink.Snapshot
	LastError string `json:"last_error,omitempty"`
}

func (h *MonitorHandler) start(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Start(); err != nil {
		if errors.Is(err, monitor.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, "Monitor is already running")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to start monitor: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.ctrl.Status())
}

func (h *MonitorHandler) stop(w http.ResponseWriter, r *http.Request) {
	h.ctrl.Stop()
	writeJSON(w, http.StatusOK, h.ctrl.Status())
}

func (h *MonitorHandler) status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Snapshot: h.ctrl.Status()}
	if err := h.ctrl.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
