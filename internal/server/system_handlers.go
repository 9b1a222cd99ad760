package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/optionsentry/optionsentry/internal/database"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log     zerolog.Logger
	dataDir string
	runsDB  *database.DB
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(log zerolog.Logger, dataDir string, runsDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:     log.With().Str("handler", "system").Logger(),
		dataDir: dataDir,
		runsDB:  runsDB,
	}
}

// HandleSystemHealth returns process and host health: CPU, RAM and
// database reachability.
func (h *SystemHandlers) HandleSystemHealth(w http.ResponseWriter, r *http.Request) {
	cpuPct, ramPct := h.getSystemStats()

	dbStatus := "ok"
	if h.runsDB != nil {
		if err := h.runsDB.HealthCheck(r.Context()); err != nil {
			dbStatus = "error: " + err.Error()
		}
	} else {
		dbStatus = "not configured"
	}

	status := "ok"
	if dbStatus != "ok" {
		status = "degraded"
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      status,
		"cpu_percent": cpuPct,
		"ram_percent": ramPct,
		"database":    dbStatus,
		"checked_at":  time.Now().Format(time.RFC3339),
	})
}

// HandleDiskUsage returns data directory sizes
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	dataSize := h.getDirSize(h.dataDir)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data_dir":     h.dataDir,
		"data_size_mb": float64(dataSize) / (1024 * 1024),
		"checked_at":   time.Now().Format(time.RFC3339),
	})
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) so the API call does not block long
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	avgCPU := 0.0
	if len(cpuPercent) > 0 {
		avgCPU = cpuPercent[0]
	}
	return avgCPU, memStat.UsedPercent
}

// getDirSize walks a directory and sums file sizes, 0 when missing.
func (h *SystemHandlers) getDirSize(dir string) int64 {
	var size int64
	_ = filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
