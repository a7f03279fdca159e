package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/handsign/internal/gesture"
	"github.com/ayusman/handsign/internal/plugin"
	"github.com/ayusman/handsign/internal/store"
)

// ActionHandler serves /api/actions: the plugin action bound to each gesture.
// A gesture has at most one binding.
type ActionHandler struct {
	store   *store.Store
	plugins *plugin.Manager
}

// NewActionHandler creates an ActionHandler. When plugins is not nil,
// bindings must name a discovered plugin that supports the action.
func NewActionHandler(s *store.Store, plugins *plugin.Manager) *ActionHandler {
	return &ActionHandler{store: s, plugins: plugins}
}

func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/actions"), "/")

	switch {
	case id == "" && r.Method == http.MethodGet:
		h.list(w)
	case id == "" && r.Method == http.MethodPost:
		h.create(w, r)
	case id != "" && r.Method == http.MethodGet:
		h.get(w, id)
	case id != "" && r.Method == http.MethodPut:
		h.update(w, r, id)
	case id != "" && r.Method == http.MethodDelete:
		h.delete(w, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// bindingRequest is the body of POST and PUT. On PUT, empty fields keep
// their stored value.
type bindingRequest struct {
	Gesture    string          `json:"gesture"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type actionResponse struct {
	ID         string          `json:"id"`
	Gesture    string          `json:"gesture"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listActionsResponse struct {
	Actions []actionResponse `json:"actions"`
}

func toActionResponse(a *store.Action) actionResponse {
	resp := actionResponse{
		ID:         a.ID,
		Gesture:    a.Gesture,
		PluginName: a.PluginName,
		ActionName: a.ActionName,
		Config:     a.Config,
		Enabled:    a.Enabled,
		CreatedAt:  a.CreatedAt.Format(timeFormat),
	}
	if resp.Config == nil {
		resp.Config = json.RawMessage("{}")
	}
	return resp
}

// requestError carries the HTTP status a validation failure maps to.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...interface{}) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// writeRequestError reports err with its own status, or 500 with fallback.
func writeRequestError(w http.ResponseWriter, err error, fallback string) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		writeError(w, reqErr.status, reqErr.msg)
		return
	}
	writeError(w, http.StatusInternalServerError, fallback)
}

// validate checks a complete binding. exceptID is the binding being updated,
// which may keep its own gesture.
func (h *ActionHandler) validate(a *store.Action, exceptID string) error {
	switch {
	case a.Gesture == "":
		return badRequest("gesture is required")
	case a.PluginName == "":
		return badRequest("plugin_name is required")
	case a.ActionName == "":
		return badRequest("action_name is required")
	}
	if _, err := gesture.Parse(a.Gesture); err != nil {
		return badRequest("%v", err)
	}

	if h.plugins != nil {
		p, err := h.plugins.Get(a.PluginName)
		if err != nil {
			return badRequest("unknown plugin %q", a.PluginName)
		}
		if !p.Manifest.Supports(a.ActionName) {
			return badRequest("plugin %q does not support action %q", a.PluginName, a.ActionName)
		}
	}

	existing, err := h.store.Actions().GetByGesture(a.Gesture)
	if err != nil {
		return fmt.Errorf("look up binding for %s: %w", a.Gesture, err)
	}
	if existing != nil && existing.ID != exceptID {
		return &requestError{status: http.StatusConflict, msg: "Action already bound to this gesture"}
	}
	return nil
}

func (h *ActionHandler) list(w http.ResponseWriter) {
	actions, err := h.store.Actions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list actions")
		return
	}

	response := listActionsResponse{Actions: make([]actionResponse, len(actions))}
	for i, a := range actions {
		response.Actions[i] = toActionResponse(a)
	}
	writeJSON(w, http.StatusOK, response)
}

// lookup fetches a binding, answering 404 or 500 itself when it fails.
func (h *ActionHandler) lookup(w http.ResponseWriter, id string) (*store.Action, bool) {
	action, err := h.store.Actions().GetByID(id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Action not found")
		return nil, false
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to get action")
		return nil, false
	}
	return action, true
}

func (h *ActionHandler) get(w http.ResponseWriter, id string) {
	if action, ok := h.lookup(w, id); ok {
		writeJSON(w, http.StatusOK, toActionResponse(action))
	}
}

func (h *ActionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req bindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	action := &store.Action{
		ID:         uuid.New().String(),
		Gesture:    req.Gesture,
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    req.Enabled == nil || *req.Enabled,
	}
	if action.Config == nil {
		action.Config = json.RawMessage("{}")
	}

	if err := h.validate(action, ""); err != nil {
		writeRequestError(w, err, "Failed to check existing action")
		return
	}
	if err := h.store.Actions().Create(action); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create action")
		return
	}

	writeJSON(w, http.StatusCreated, toActionResponse(action))
}

func (h *ActionHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	action, ok := h.lookup(w, id)
	if !ok {
		return
	}

	var req bindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Gesture != "" {
		action.Gesture = req.Gesture
	}
	if req.PluginName != "" {
		action.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		action.ActionName = req.ActionName
	}
	if req.Config != nil {
		action.Config = req.Config
	}
	if req.Enabled != nil {
		action.Enabled = *req.Enabled
	}

	if err := h.validate(action, action.ID); err != nil {
		writeRequestError(w, err, "Failed to check existing action")
		return
	}
	if err := h.store.Actions().Update(action); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update action")
		return
	}

	writeJSON(w, http.StatusOK, toActionResponse(action))
}

func (h *ActionHandler) delete(w http.ResponseWriter, id string) {
	err := h.store.Actions().Delete(id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Action not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to delete action")
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
