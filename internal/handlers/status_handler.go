package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/common"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/session"
)

// StatusHandler reports application status for the UI header
type StatusHandler struct {
	manager   *session.Manager
	startedAt time.Time
	logger    arbor.ILogger
}

// NewStatusHandler creates a status handler
func NewStatusHandler(manager *session.Manager, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		manager:   manager,
		startedAt: time.Now(),
		logger:    logger,
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"service":       "orchids-monitor",
		"status":        "ONLINE",
		"version":       common.GetVersion(),
		"live_sessions": h.manager.LiveCount(),
		"uptime":        time.Since(h.startedAt).Round(time.Second).String(),
	})
}
