package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/accessories", func(r chi.Router) {
			r.Get("/", s.handleListAccessories)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Get("/", s.handleGetAccessory)
				r.Get("/on", s.handleReadOn)
				r.Put("/on", s.handleWriteOn)
				r.Get("/brightness", s.handleReadBrightness)
				r.Put("/brightness", s.handleWriteBrightness)
				r.Get("/history", s.handleGetHistory)
			})
		})

		r.Post("/reconcile", s.handleReconcile)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"version":     s.version,
		"accessories": s.registry.Count(),
	})
}
