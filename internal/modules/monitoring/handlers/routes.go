package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all monitoring routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/monitor", func(r chi.Router) {
		r.Post("/run", h.HandleRun)        // Trigger a cycle now
		r.Get("/latest", h.HandleLatest)   // Most recent stored run
		r.Get("/history", h.HandleHistory) // Recent run summaries
	})
}
