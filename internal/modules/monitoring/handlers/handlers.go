// Package handlers provides HTTP handlers for the monitoring engine.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/optionsentry/optionsentry/internal/domain"
	"github.com/optionsentry/optionsentry/internal/modules/monitoring"
)

const defaultHistoryLimit = 30

// CycleRunner triggers a monitoring cycle on demand.
type CycleRunner interface {
	RunOnce() (*domain.MonitorResult, error)
}

// Handler handles monitoring HTTP requests
type Handler struct {
	runner CycleRunner
	repo   *monitoring.RunRepository
	log    zerolog.Logger
}

// NewHandler creates a new monitoring handler
func NewHandler(runner CycleRunner, repo *monitoring.RunRepository, log zerolog.Logger) *Handler {
	return &Handler{
		runner: runner,
		repo:   repo,
		log:    log.With().Str("handler", "monitoring").Logger(),
	}
}

// HandleRun triggers one monitoring cycle and returns the full result.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.RunOnce()
	if err != nil {
		h.log.Error().Err(err).Msg("Manual cycle failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleLatest returns the most recent stored run, 404 when none exists.
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	result, err := h.repo.Latest()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if result == nil {
		h.writeError(w, http.StatusNotFound, "no monitoring runs recorded yet")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleHistory returns recent run summaries, newest first. Supports a
// ?limit= query parameter.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := h.repo.Recent(limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(runs),
		"runs":  runs,
	})
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
