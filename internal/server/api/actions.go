package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ayusman/fluidportrait/internal/app"
)

// ActionRunner queues user actions for the frame loop.
type ActionRunner interface {
	Do(action app.Action) error
}

// ActionHandler handles HTTP requests for /api/actions.
type ActionHandler struct {
	runner ActionRunner
}

// NewActionHandler creates a new ActionHandler that forwards to runner.
func NewActionHandler(runner ActionRunner) *ActionHandler {
	return &ActionHandler{runner: runner}
}

// ServeHTTP implements the http.Handler interface.
func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type actionRequest struct {
	Action string `json:"action"`
}

type actionResponse struct {
	Action string `json:"action"`
	Queued bool   `json:"queued"`
}

type listActionsResponse struct {
	Actions []string `json:"actions"`
}

// list handles GET /api/actions and returns the accepted action names.
func (h *ActionHandler) list(w http.ResponseWriter, r *http.Request) {
	response := listActionsResponse{Actions: make([]string, 0, len(app.Actions()))}
	for _, a := range app.Actions() {
		response.Actions = append(response.Actions, string(a))
	}
	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/actions and queues the named action.
func (h *ActionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	action, err := app.ParseAction(req.Action)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown action")
		return
	}

	if err := h.runner.Do(action); err != nil {
		if errors.Is(err, app.ErrQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "Action queue full")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to queue action")
		return
	}

	writeJSON(w, http.StatusAccepted, actionResponse{Action: string(action), Queued: true})
}
