// Package server provides the HTTP server for the blink monitoring and
// analysis application.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MDidoStar/blinkwell/internal/analysis"
	"github.com/MDidoStar/blinkwell/internal/demographics"
	"github.com/MDidoStar/blinkwell/internal/monitor"
	"github.com/MDidoStar/blinkwell/internal/server/api"
	"github.com/MDidoStar/blinkwell/internal/store"
)

// Config holds the server configuration. Nil components leave their routes
// unregistered, which keeps tests and partial deployments simple.
type Config struct {
	Store    *store.Store
	Monitor  *monitor.Monitor
	Catalog  *demographics.Catalog
	Analyzer *analysis.Analyzer

	// StaticDir, when set, serves the web UI from disk.
	StaticDir string
}

// Server represents the application HTTP server.
type Server struct {
	config Config
	router *mux.Router
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		router: mux.NewRouter(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	if s.config.Monitor != nil {
		api.NewMonitorHandler(s.config.Monitor).Register(s.router)
		s.router.Handle("/api/monitor/stream", NewStreamHandler(s.config.Monitor)).Methods("GET")
		s.router.Handle("/api/monitor/ws", NewSnapshotsHandler(s.config.Monitor))
	}

	if s.config.Catalog != nil {
		api.NewDemographicsHandler(s.config.Catalog).Register(s.router)
	}

	if s.config.Analyzer != nil && s.config.Store != nil {
		api.NewAnalysisHandler(s.config.Analyzer, s.config.Store.Reports()).Register(s.router)
	}

	if s.config.Store != nil {
		api.NewReportsHandler(s.config.Store.Reports()).Register(s.router)
	}

	if s.config.StaticDir != "" {
		s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.config.StaticDir)))
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
