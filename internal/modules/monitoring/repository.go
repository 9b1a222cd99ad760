package monitoring

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/optionsentry/optionsentry/internal/database"
	"github.com/optionsentry/optionsentry/internal/domain"
)

// RunRepository persists one row per monitoring cycle: the status summary
// for quick queries plus the full result as JSON.
type RunRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// RunSummary is the lightweight per-cycle view used by history queries.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
	AlertCount int       `json:"alert_count"`
	RedCount   int       `json:"red_count"`
	NLV        *float64  `json:"nlv,omitempty"`
}

// NewRunRepository creates a repository over the runs database.
func NewRunRepository(db *database.DB, log zerolog.Logger) *RunRepository {
	return &RunRepository{
		db:  db.Conn(),
		log: log.With().Str("repository", "monitor_runs").Logger(),
	}
}

// InitSchema creates the runs table when missing.
func (r *RunRepository) InitSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS monitor_runs (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			status TEXT NOT NULL,
			alert_count INTEGER NOT NULL,
			red_count INTEGER NOT NULL,
			nlv REAL,
			result TEXT NOT NULL
		) STRICT;
		CREATE INDEX IF NOT EXISTS idx_monitor_runs_created ON monitor_runs(created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create monitor_runs schema: %w", err)
	}
	return nil
}

// Save stores one cycle result.
func (r *RunRepository) Save(result *domain.MonitorResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode monitor result: %w", err)
	}

	redCount := 0
	for _, a := range result.Alerts {
		if a.Level == domain.AlertLevelRed {
			redCount++
		}
	}

	var nlv interface{}
	if result.Capital != nil && result.Capital.NetLiquidation > 0 {
		nlv = result.Capital.NetLiquidation
	}

	_, err = r.db.Exec(
		`INSERT INTO monitor_runs (id, created_at, status, alert_count, red_count, nlv, result)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.Timestamp.Unix(), string(result.Status),
		len(result.Alerts), redCount, nlv, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save monitor run %s: %w", result.RunID, err)
	}
	return nil
}

// Latest returns the most recent result, or nil when no run exists yet.
func (r *RunRepository) Latest() (*domain.MonitorResult, error) {
	var payload string
	err := r.db.QueryRow(
		`SELECT result FROM monitor_runs ORDER BY created_at DESC, id DESC LIMIT 1`,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest monitor run: %w", err)
	}

	var result domain.MonitorResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode latest monitor run: %w", err)
	}
	return &result, nil
}

// Recent returns up to limit run summaries, newest first.
func (r *RunRepository) Recent(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(
		`SELECT id, created_at, status, alert_count, red_count, nlv
		 FROM monitor_runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query monitor runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var createdAt int64
		var nlv sql.NullFloat64
		if err := rows.Scan(&s.RunID, &createdAt, &s.Status, &s.AlertCount, &s.RedCount, &nlv); err != nil {
			return nil, fmt.Errorf("failed to scan monitor run row: %w", err)
		}
		s.Timestamp = time.Unix(createdAt, 0).UTC()
		if nlv.Valid {
			s.NLV = &nlv.Float64
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RecentNLVs returns up to limit recorded NLV values in chronological
// order, for deriving return-based statistics (Sharpe) from run history.
func (r *RunRepository) RecentNLVs(limit int) ([]float64, error) {
	if limit <= 0 {
		limit = 252
	}
	rows, err := r.db.Query(
		`SELECT nlv FROM (
			SELECT created_at, id, nlv FROM monitor_runs
			WHERE nlv IS NOT NULL
			ORDER BY created_at DESC, id DESC LIMIT ?
		 ) ORDER BY created_at ASC, id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query NLV history: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan NLV row: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
