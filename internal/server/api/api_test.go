package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"github.com/MDidoStar/blinkwell/internal/analysis"
	"github.com/MDidoStar/blinkwell/internal/blink"
	"github.com/MDidoStar/blinkwell/internal/gemini"
	"github.com/MDidoStar/blinkwell/internal/monitor"
	"github.com/MDidoStar/blinkwell/internal/store"
)

// fakeController is a MonitorController test double.
type fakeController struct {
	running  bool
	startErr error
	lastErr  error
}

func (f *fakeController) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.running = true
	return nil
}

func (f *fakeController) Stop() { f.running = false }

func (f *fakeController) Status() blink.Snapshot {
	phase := blink.PhaseIdle
	if f.running {
		phase = blink.PhaseRunning
	}
	return blink.Snapshot{Phase: phase.String(), Target: blink.NormalMax}
}

func (f *fakeController) LastError() error { return f.lastErr }

type fakeCatalog struct{}

func (fakeCatalog) Countries() []string { return []string{"Egypt", "Italy"} }

func (fakeCatalog) Cities(country string) []string {
	if country == "Italy" {
		return []string{"Milan", "Rome"}
	}
	return nil
}

func (fakeCatalog) Ages() []int { return []int{19, 34} }

func monitorRouter(ctrl MonitorController) *mux.Router {
	r := mux.NewRouter()
	NewMonitorHandler(ctrl).Register(r)
	return r
}

func TestMonitorHandler_StartStopStatus(t *testing.T) {
	ctrl := &fakeController{}
	router := monitorRouter(ctrl)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/monitor/start", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("start status = %d, want 200", w.Code)
	}

	var snap blink.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode start response: %v", err)
	}
	if snap.Phase != blink.PhaseRunning.String() {
		t.Errorf("phase after start = %q, want running", snap.Phase)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/monitor/stop", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("stop status = %d, want 200", w.Code)
	}
	if ctrl.running {
		t.Error("controller still running after stop")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/monitor/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status status = %d, want 200", w.Code)
	}
}

func TestMonitorHandler_StartConflict(t *testing.T) {
	router := monitorRouter(&fakeController{startErr: monitor.ErrAlreadyRunning})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/monitor/start", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("start status = %d, want 409", w.Code)
	}
}

func TestMonitorHandler_MethodNotAllowed(t *testing.T) {
	router := monitorRouter(&fakeController{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/monitor/start", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET start status = %d, want 405", w.Code)
	}
}

func TestDemographicsHandler(t *testing.T) {
	router := mux.NewRouter()
	NewDemographicsHandler(fakeCatalog{}).Register(router)

	tests := []struct {
		path string
		want string
	}{
		{"/api/demographics/countries", `"Italy"`},
		{"/api/demographics/cities?country=Italy", `"Rome"`},
		{"/api/demographics/ages", `34`},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", tt.path, w.Code)
			continue
		}
		if !bytes.Contains(w.Body.Bytes(), []byte(tt.want)) {
			t.Errorf("GET %s body %q is missing %q", tt.path, w.Body.String(), tt.want)
		}
	}
}

func TestDemographicsHandler_CitiesRequiresCountry(t *testing.T) {
	router := mux.NewRouter()
	NewDemographicsHandler(fakeCatalog{}).Register(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/demographics/cities", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDemographicsHandler_UnknownCountryReturnsEmptyList(t *testing.T) {
	router := mux.NewRouter()
	NewDemographicsHandler(fakeCatalog{}).Register(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/demographics/cities?country=Atlantis", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"cities":[]`)) {
		t.Errorf("body %q should carry an empty list, not null", w.Body.String())
	}
}

func testReports(t *testing.T) *store.ReportRepository {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s.Reports()
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 180, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func framesArchive(t *testing.T, frames ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i, frame := range frames {
		f, err := w.Create(fmt.Sprintf("frame_%03d.jpg", i))
		if err != nil {
			t.Fatalf("failed to create zip entry: %v", err)
		}
		if _, err := f.Write(frame); err != nil {
			t.Fatalf("failed to write zip entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close zip writer: %v", err)
	}
	return buf.Bytes()
}

func analysisRequest(t *testing.T, archive []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if archive != nil {
		fw, err := mw.CreateFormFile("frames", "captured_frames.zip")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := fw.Write(archive); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/analysis", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAnalysisHandler(t *testing.T) {
	repo := testReports(t)
	gen := gemini.NewMockGenerator("Observations: blink rate looks typical.")

	router := mux.NewRouter()
	NewAnalysisHandler(analysis.NewAnalyzer(gen), repo).Register(router)

	frame := testJPEG(t)
	archive := framesArchive(t, frame, frame, frame)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, analysisRequest(t, archive, map[string]string{
		"country": "Italy",
		"city":    "Rome",
		"age":     "34",
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID         string `json:"id"`
		Text       string `json:"text"`
		FrameCount int    `json:"frame_count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.FrameCount != 3 {
		t.Errorf("frame count = %d, want 3", resp.FrameCount)
	}
	if resp.Text != "Observations: blink rate looks typical." {
		t.Errorf("text = %q", resp.Text)
	}

	rep, err := repo.GetByID(resp.ID)
	if err != nil {
		t.Fatalf("report was not archived: %v", err)
	}
	if len(rep.PDF) == 0 {
		t.Error("archived report has no PDF payload")
	}
	if rep.Country != "Italy" || rep.City != "Rome" || rep.Age != 34 {
		t.Errorf("unexpected patient context: %+v", rep)
	}
}

func TestAnalysisHandler_BadRequests(t *testing.T) {
	repo := testReports(t)
	gen := gemini.NewMockGenerator("unused")

	router := mux.NewRouter()
	NewAnalysisHandler(analysis.NewAnalyzer(gen), repo).Register(router)

	frame := testJPEG(t)

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"missing archive", analysisRequest(t, nil, map[string]string{"age": "34"})},
		{"bad age", analysisRequest(t, framesArchive(t, frame), map[string]string{"age": "old"})},
		{"empty archive", analysisRequest(t, framesArchive(t), map[string]string{"age": "34"})},
		{"not a zip", analysisRequest(t, []byte("nope"), map[string]string{"age": "34"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tt.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestReportsHandler(t *testing.T) {
	repo := testReports(t)
	rep := &store.Report{
		Country: "Egypt",
		City:    "Cairo",
		Age:     19,
		Text:    "All clear.",
		PDF:     []byte("%PDF-1.4 test"),
	}
	if err := repo.Create(rep); err != nil {
		t.Fatalf("failed to seed report: %v", err)
	}

	router := mux.NewRouter()
	NewReportsHandler(repo).Register(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(rep.ID)) {
		t.Error("list is missing the seeded report")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports/"+rep.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("All clear.")) {
		t.Error("get response is missing the report text")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports/"+rep.ID+"/pdf", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("pdf status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("pdf content type = %q", ct)
	}
	if w.Body.String() != "%PDF-1.4 test" {
		t.Error("pdf payload mismatch")
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/reports/"+rep.ID, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/reports/"+rep.ID, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestReportsHandler_NotFound(t *testing.T) {
	router := mux.NewRouter()
	NewReportsHandler(testReports(t)).Register(router)

	for _, path := range []string{"/api/reports/missing", "/api/reports/missing/pdf"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, w.Code)
		}
	}
}
