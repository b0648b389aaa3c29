package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// CatalogSource is the slice of the demographics catalog the HTTP layer needs.
type CatalogSource interface {
	Countries() []string
	Cities(country string) []string
	Ages() []int
}

// DemographicsHandler serves the dropdown data for the analysis page.
type DemographicsHandler struct {
	catalog CatalogSource
}

// NewDemographicsHandler creates a new DemographicsHandler.
func NewDemographicsHandler(catalog CatalogSource) *DemographicsHandler {
	return &DemographicsHandler{catalog: catalog}
}

// Register mounts the demographics routes on the router.
func (h *DemographicsHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/demographics/countries", h.countries).Methods("GET")
	r.HandleFunc("/api/demographics/cities", h.cities).Methods("GET")
	r.HandleFunc("/api/demographics/ages", h.ages).Methods("GET")
}

func (h *DemographicsHandler) countries(w http.ResponseWriter, r *http.Request) {
	countries := h.catalog.Countries()
	if countries == nil {
		countries = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"countries": countries})
}

func (h *DemographicsHandler) cities(w http.ResponseWriter, r *http.Request) {
	country := r.URL.Query().Get("country")
	if country == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'country' is required")
		return
	}

	cities := h.catalog.Cities(country)
	if cities == nil {
		cities = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"cities": cities})
}

func (h *DemographicsHandler) ages(w http.ResponseWriter, r *http.Request) {
	ages := h.catalog.Ages()
	if ages == nil {
		ages = []int{}
	}
	writeJSON(w, http.StatusOK, map[string][]int{"ages": ages})
}
