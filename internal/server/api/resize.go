package api

import (
	"encoding/json"
	"net/http"
)

// MaxCanvasSide bounds each requested canvas dimension.
const MaxCanvasSide = 8192

// Resizer queues a canvas resize for the frame loop.
type Resizer interface {
	Resize(width, height int)
}

// ResizeHandler handles POST /api/resize.
type ResizeHandler struct {
	resizer Resizer
}

// NewResizeHandler creates a ResizeHandler that forwards to resizer.
func NewResizeHandler(resizer Resizer) *ResizeHandler {
	return &ResizeHandler{resizer: resizer}
}

type resizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type resizeResponse struct {
	Width  int  `json:"width"`
	Height int  `json:"height"`
	Queued bool `json:"queued"`
}

// ServeHTTP implements the http.Handler interface.
func (h *ResizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Width <= 0 || req.Height <= 0 || req.Width > MaxCanvasSide || req.Height > MaxCanvasSide {
		writeError(w, http.StatusBadRequest, "Width and height must be between 1 and 8192")
		return
	}

	h.resizer.Resize(req.Width, req.Height)
	writeJSON(w, http.StatusAccepted, resizeResponse{Width: req.Width, Height: req.Height, Queued: true})
}
