package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all roll routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/rolls", func(r chi.Router) {
		r.Post("/calculate", h.HandleCalculate) // Roll target for a position/alert
	})
}
