package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MDidoStar/blinkwell/internal/blink"
)

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected health body: %s", w.Body.String())
	}
}

func TestServer_UnconfiguredRoutesAbsent(t *testing.T) {
	s := New(Config{})

	paths := []string{
		"/api/monitor/status",
		"/api/demographics/countries",
		"/api/reports",
	}
	for _, path := range paths {
		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, w.Code)
		}
	}
}

// fakeFrames serves a fixed JPEG payload.
type fakeFrames struct {
	frame []byte
}

func (f *fakeFrames) LatestFrame() []byte { return f.frame }

func TestStreamHandler(t *testing.T) {
	h := NewStreamHandler(&fakeFrames{frame: []byte{0xff, 0xd8, 0xff, 0xd9}})

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest("GET", "/api/monitor/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("content type = %q", ct)
	}
	body := w.Body.String()
	if !strings.Contains(body, "--frame") {
		t.Error("stream body is missing the part boundary")
	}
	if !strings.Contains(body, "Content-Type: image/jpeg") {
		t.Error("stream body is missing the jpeg part header")
	}
}

func TestStreamHandler_NoFrameYet(t *testing.T) {
	h := NewStreamHandler(&fakeFrames{})

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest("GET", "/api/monitor/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Body.Len() != 0 {
		t.Errorf("expected no parts before the first frame, got %q", w.Body.String())
	}
}

// fakeSnapshots hands each subscriber the same channel.
type fakeSnapshots struct {
	ch        chan blink.Snapshot
	cancelled atomic.Bool
}

func (f *fakeSnapshots) Subscribe() (<-chan blink.Snapshot, func()) {
	return f.ch, func() { f.cancelled.Store(true) }
}

func TestSnapshotsHandler(t *testing.T) {
	source := &fakeSnapshots{ch: make(chan blink.Snapshot, 1)}
	srv := httptest.NewServer(NewSnapshotsHandler(source))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/monitor/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	defer conn.Close()

	source.ch <- blink.Snapshot{
		Phase:  blink.PhaseRunning.String(),
		Blinks: 7,
		Target: blink.NormalMax,
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var snap blink.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}
	if snap.Blinks != 7 || snap.Phase != blink.PhaseRunning.String() {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
}

func TestSnapshotsHandler_ReleasesSubscriptionOnClose(t *testing.T) {
	source := &fakeSnapshots{ch: make(chan blink.Snapshot)}
	srv := httptest.NewServer(NewSnapshotsHandler(source))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/monitor/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial websocket: %v", err)
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if source.cancelled.Load() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("subscription was not released after the client disconnected")
}
