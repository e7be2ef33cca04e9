package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/ayusman/fluidportrait/internal/detector"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const (
	maxLandmarkMessage = 1 << 20
	writeTimeout       = time.Second
)

// LandmarkSink receives landmark results from an external source.
type LandmarkSink interface {
	IngestFace(face detector.FaceLandmarks)
	IngestHands(hands []detector.HandLandmarks)
	AttachRemote()
	DetachRemote()
}

// LandmarksHandler accepts landmark results over WebSocket. Each message
// is a JSON object with optional "face" and "hands" keys; a missing key
// leaves that result unchanged and null clears it.
type LandmarksHandler struct {
	sink LandmarkSink
}

// NewLandmarksHandler creates a new LandmarksHandler feeding sink.
func NewLandmarksHandler(sink LandmarkSink) *LandmarksHandler {
	return &LandmarksHandler{sink: sink}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LandmarksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxLandmarkMessage)

	h.sink.AttachRemote()
	defer h.sink.DetachRemote()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if err := h.ingest(data); err != nil {
			log.Printf("landmark message rejected: %v", err)
		}
	}
}

var jsonNull = []byte("null")

func (h *LandmarksHandler) ingest(data []byte) error {
	var msg map[string]json.RawMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	if raw, ok := msg["face"]; ok {
		var face detector.FaceLandmarks
		if !bytes.Equal(raw, jsonNull) {
			if err := json.Unmarshal(raw, &face); err != nil {
				return fmt.Errorf("decode face: %w", err)
			}
		}
		if len(face) == 0 {
			face = nil
		}
		h.sink.IngestFace(face)
	}

	if raw, ok := msg["hands"]; ok {
		var hands []detector.HandLandmarks
		if !bytes.Equal(raw, jsonNull) {
			var err error
			if hands, err = detector.DecodeHands(raw); err != nil {
				return err
			}
		}
		h.sink.IngestHands(hands)
	}
	return nil
}

// EventsHandler pushes the state snapshot to WebSocket clients.
type EventsHandler struct {
	source   Portrait
	interval time.Duration

	mu      sync.RWMutex
	clients map[string]*websocket.Conn
}

// NewEventsHandler creates a new EventsHandler pushing every interval.
func NewEventsHandler(source Portrait, interval time.Duration) *EventsHandler {
	return &EventsHandler{
		source:   source,
		interval: interval,
		clients:  make(map[string]*websocket.Conn),
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
	}()

	// Reading handles control frames and notices when the client goes away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var lastFrame uint64
	sent := false
	for {
		snap := h.source.Snapshot()
		if !sent || snap.Frame != lastFrame {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
			lastFrame, sent = snap.Frame, true
		}

		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
