package server

import (
	"net/http"
	"strings"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// API routes - Demos
	mux.HandleFunc("/api/demos", s.handleDemosRoute)  // GET (list), POST (create)
	mux.HandleFunc("/api/demos/", s.handleDemoRoutes) // GET /{id}, GET /{id}/logs, POST /{id}/cancel

	// API routes - System
	mux.HandleFunc("/api/logs", s.app.WSHandler.GetRecentLogsHandler)
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleDemosRoute dispatches the /api/demos collection endpoint by method
func (s *Server) handleDemosRoute(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.app.DemoHandler.CreateDemoHandler(w, r)
	case http.MethodGet:
		s.app.DemoHandler.ListDemosHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleDemoRoutes routes /api/demos/{id} and its subpaths
func (s *Server) handleDemoRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	demoID := handlers.ExtractDemoID(path)
	if demoID == "" {
		http.Error(w, "Demo ID required", http.StatusBadRequest)
		return
	}

	switch {
	case strings.HasSuffix(path, "/logs"):
		s.app.DemoHandler.GetDemoLogsHandler(w, r, demoID)
	case strings.HasSuffix(path, "/cancel"):
		s.app.DemoHandler.CancelDemoHandler(w, r, demoID)
	default:
		s.app.DemoHandler.GetDemoHandler(w, r, demoID)
	}
}
