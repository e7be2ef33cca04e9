package api

import (
	"net/http"

	"github.com/ayusman/fluidportrait/internal/app"
	"github.com/ayusman/fluidportrait/internal/theme"
)

// StateSource exposes the state published by the last frame.
type StateSource interface {
	Snapshot() app.Snapshot
}

// StateHandler serves GET /api/state.
type StateHandler struct {
	source StateSource
}

// NewStateHandler creates a new StateHandler reading from source.
func NewStateHandler(source StateSource) *StateHandler {
	return &StateHandler{source: source}
}

// ServeHTTP implements the http.Handler interface.
func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.source.Snapshot())
}

type themesResponse struct {
	Themes []string `json:"themes"`
}

// ThemesHandler serves GET /api/themes with the theme names in cycle order.
func ThemesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, themesResponse{Themes: theme.Names()})
}
