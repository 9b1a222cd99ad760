// Package handlers provides HTTP handlers for roll target calculation.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/optionsentry/optionsentry/internal/domain"
	"github.com/optionsentry/optionsentry/internal/modules/rolls"
)

// Handler handles roll HTTP requests
type Handler struct {
	calc *rolls.Calculator
	log  zerolog.Logger
}

// NewHandler creates a new rolls handler
func NewHandler(calc *rolls.Calculator, log zerolog.Logger) *Handler {
	return &Handler{
		calc: calc,
		log:  log.With().Str("handler", "rolls").Logger(),
	}
}

// calculateRequest is the payload for a roll calculation. Chain data is
// optional; without it targets come from the DTE/strike heuristics alone.
type calculateRequest struct {
	Position          domain.Position `json:"position"`
	Alert             domain.Alert    `json:"alert"`
	AvailableExpiries []string        `json:"available_expiries,omitempty"`
	AvailableStrikes  []float64       `json:"available_strikes,omitempty"`
	AsOf              string          `json:"as_of,omitempty"` // YYYY-MM-DD, defaults to today
}

// HandleCalculate computes a roll target for one position/alert pair.
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Position.Symbol == "" {
		h.writeError(w, http.StatusBadRequest, "position.symbol is required")
		return
	}
	if req.Alert.Kind == "" {
		h.writeError(w, http.StatusBadRequest, "alert.kind is required")
		return
	}

	var asOf *time.Time
	if req.AsOf != "" {
		t, err := time.Parse("2006-01-02", req.AsOf)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "as_of must be YYYY-MM-DD")
			return
		}
		asOf = &t
	}

	target := h.calc.Calculate(req.Position, req.Alert, req.AvailableExpiries, req.AvailableStrikes, asOf)
	h.writeJSON(w, http.StatusOK, target)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
