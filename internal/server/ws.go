package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/MDidoStar/blinkwell/internal/blink"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local UI only
	},
}

// SnapshotSource hands out a session snapshot subscription. The cancel
// function releases it.
type SnapshotSource interface {
	Subscribe() (<-chan blink.Snapshot, func())
}

// SnapshotsHandler pushes live session snapshots to WebSocket clients. Each
// connection holds its own subscription, so a slow client only loses its own
// updates.
type SnapshotsHandler struct {
	source SnapshotSource
}

// NewSnapshotsHandler creates a new SnapshotsHandler with the given source.
func NewSnapshotsHandler(source SnapshotSource) *SnapshotsHandler {
	return &SnapshotsHandler{source: source}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *SnapshotsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	snapshots, cancel := h.source.Subscribe()
	defer cancel()

	// Reads only serve to detect the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			msg, err := json.Marshal(snap)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}
