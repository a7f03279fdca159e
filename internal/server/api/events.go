package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ayusman/handsign/internal/gesture"
	"github.com/ayusman/handsign/internal/store"
)

// Event list bounds.
const (
	DefaultEventLimit = 50
	MaxEventLimit     = 1000
)

// EventHandler serves the recorded gesture history.
type EventHandler struct {
	store *store.Store
}

// NewEventHandler creates a new EventHandler with the given store.
func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

type eventResponse struct {
	ID          string `json:"id"`
	Gesture     string `json:"gesture"`
	DisplayName string `json:"display_name"`
	WristX      int    `json:"wrist_x"`
	Hands       int    `json:"hands"`
	CreatedAt   string `json:"created_at"`
}

type listEventsResponse struct {
	Events []eventResponse `json:"events"`
}

type statsResponse struct {
	Counts map[string]int `json:"counts"`
	Total  int            `json:"total"`
}

type deleteEventsResponse struct {
	Deleted int64 `json:"deleted"`
}

func toEventResponse(e *store.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Gesture:     e.Gesture,
		DisplayName: gesture.Gesture(e.Gesture).DisplayName(),
		WristX:      e.WristX,
		Hands:       e.Hands,
		CreatedAt:   e.CreatedAt.Format(timeFormat),
	}
}

// ServeHTTP routes /api/events and /api/events/stats.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/events")
	path = strings.TrimPrefix(path, "/")

	switch {
	case path == "" && r.Method == http.MethodGet:
		h.list(w, r)
	case path == "" && r.Method == http.MethodDelete:
		h.prune(w, r)
	case path == "stats" && r.Method == http.MethodGet:
		h.stats(w, r)
	case path == "" || path == "stats":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// list handles GET /api/events?limit=N, newest first.
func (h *EventHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := DefaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxEventLimit)
	}

	events, err := h.store.Events().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	response := listEventsResponse{
		Events: make([]eventResponse, 0, len(events)),
	}
	for _, e := range events {
		response.Events = append(response.Events, toEventResponse(e))
	}

	writeJSON(w, http.StatusOK, response)
}

// stats handles GET /api/events/stats. Every gesture is listed, seen or not.
func (h *EventHandler) stats(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.Events().CountByGesture()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	response := statsResponse{Counts: make(map[string]int, len(gesture.All))}
	for _, g := range gesture.All {
		response.Counts[string(g)] = counts[string(g)]
		response.Total += counts[string(g)]
	}

	writeJSON(w, http.StatusOK, response)
}

// prune handles DELETE /api/events?before=<RFC3339>.
func (h *EventHandler) prune(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("before")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "before is required")
		return
	}
	before, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "before must be an RFC3339 timestamp")
		return
	}

	n, err := h.store.Events().DeleteBefore(before)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete events")
		return
	}

	writeJSON(w, http.StatusOK, deleteEventsResponse{Deleted: n})
}
