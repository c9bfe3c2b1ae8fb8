// -----------------------------------------------------------------------
// Demo Handler - REST API for generation sessions
// -----------------------------------------------------------------------

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/models"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/session"
)

// DemoHandler exposes session create/read/cancel operations
type DemoHandler struct {
	manager *session.Manager
	logger  arbor.ILogger
}

// NewDemoHandler creates a demo API handler
func NewDemoHandler(manager *session.Manager, logger arbor.ILogger) *DemoHandler {
	return &DemoHandler{
		manager: manager,
		logger:  logger,
	}
}

// CreateDemoHandler handles POST /api/demos. A backend creation failure is
// not an HTTP error: the response carries the terminal session so the UI
// renders the failure in the session view.
func (h *DemoHandler) CreateDemoHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req session.CreateDemoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	snapshot, err := h.manager.StartDemo(r.Context(), req)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusAccepted, snapshot)
}

// ListDemosHandler handles GET /api/demos with optional stage, terminal,
// limit and offset query parameters
func (h *DemoHandler) ListDemosHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	opts := &interfaces.SessionListOptions{
		Stage:  models.Stage(r.URL.Query().Get("stage")),
		Limit:  QueryInt(r, "limit", 50),
		Offset: QueryInt(r, "offset", 0),
	}
	if raw := r.URL.Query().Get("terminal"); raw != "" {
		terminal := raw == "true"
		opts.Terminal = &terminal
	}

	sessions, err := h.manager.ListSessions(r.Context(), opts)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list sessions")
		WriteError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"demos": sessions,
		"count": len(sessions),
	})
}

// GetDemoHandler handles GET /api/demos/{id}
func (h *DemoHandler) GetDemoHandler(w http.ResponseWriter, r *http.Request, demoID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	snapshot, err := h.manager.GetSession(r.Context(), demoID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Demo not found: "+demoID)
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// GetDemoLogsHandler handles GET /api/demos/{id}/logs. The after parameter
// returns only entries past the given index so the UI can poll for tails.
func (h *DemoHandler) GetDemoLogsHandler(w http.ResponseWriter, r *http.Request, demoID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	snapshot, err := h.manager.GetSession(r.Context(), demoID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Demo not found: "+demoID)
		return
	}

	logs := snapshot.Logs
	if after := QueryInt(r, "after", 0); after > 0 {
		if after >= len(logs) {
			logs = nil
		} else {
			logs = logs[after:]
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"demo_id": snapshot.ID,
		"logs":    logs,
		"total":   len(snapshot.Logs),
	})
}

// CancelDemoHandler handles POST /api/demos/{id}/cancel
func (h *DemoHandler) CancelDemoHandler(w http.ResponseWriter, r *http.Request, demoID string) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if !h.manager.CancelDemo(demoID) {
		WriteError(w, http.StatusNotFound, "No active session for demo: "+demoID)
		return
	}

	WriteSuccess(w, "Session cancelled")
}

// ExtractDemoID pulls the demo ID segment out of /api/demos/{id}[/...]
func ExtractDemoID(path string) string {
	rest := strings.TrimPrefix(path, "/api/demos/")
	if idx := strings.Index(rest, "/"); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}
