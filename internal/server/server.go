// Package server provides the HTTP server for the particle portrait.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/fluidportrait/internal/detector"
	"github.com/ayusman/fluidportrait/internal/server/api"
)

// Portrait is the part of the application the server drives.
type Portrait interface {
	api.StateSource
	api.ActionRunner
	api.Resizer
	LatestJPEG() []byte
	IngestFace(face detector.FaceLandmarks)
	IngestHands(hands []detector.HandLandmarks)
	AttachRemote()
	DetachRemote()
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Portrait  Portrait
	// EventInterval is the gap between state pushes on /api/events.
	EventInterval time.Duration
}

// DefaultEventInterval pushes state at roughly 15 Hz.
const DefaultEventInterval = 66 * time.Millisecond

// Server represents the HTTP server for the portrait.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	events *EventsHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	if config.EventInterval <= 0 {
		config.EventInterval = DefaultEventInterval
	}
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/themes", api.ThemesHandler)

	if p := s.config.Portrait; p != nil {
		s.events = NewEventsHandler(p, s.config.EventInterval)
		s.mux.Handle("/api/state", api.NewStateHandler(p))
		s.mux.Handle("/api/actions", api.NewActionHandler(p))
		s.mux.Handle("/api/resize", api.NewResizeHandler(p))
		s.mux.Handle("/api/landmarks", NewLandmarksHandler(p))
		s.mux.Handle("/api/events", s.events)
		s.mux.Handle("/api/stream", NewStreamHandler(p))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.events != nil {
		response["clients"] = s.events.Clients()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("Server listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
