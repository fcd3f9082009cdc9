package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, r.Method+" not allowed")
	})

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// WebSocket authenticates with a token query parameter when required
		r.Get("/ws", s.handleWebSocket)

		r.Route("/signal", func(r chi.Router) {
			r.Get("/active", s.handleActive)
			r.Get("/requests", s.handleRequests)
			r.Get("/rules", s.handleRules)
			r.Get("/log", s.handleLog)
			r.Get("/log/{index}", s.handleLogEntry)
			if s.transitions != nil {
				r.Get("/transitions", s.handleTransitions)
			}

			r.Group(func(r chi.Router) {
				r.Use(s.authMiddleware)
				r.Post("/request", s.handleRequest)
				r.Post("/release", s.handleRelease)
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	active := ""
	if def := s.arb.ActiveRule(); def != nil {
		active = def.ID
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        s.version,
		"host":           s.arb.StartupSource(),
		"active_rule":    active,
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"ws_clients":     s.hub.ClientCount(),
	})
}
