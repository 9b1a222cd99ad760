package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/optionsentry/optionsentry/internal/domain"
	"github.com/optionsentry/optionsentry/internal/modules/monitoring"
	"github.com/optionsentry/optionsentry/internal/telemetry"
	"github.com/optionsentry/optionsentry/pkg/formulas"
)

// sharpeHistoryDays is how many stored NLV observations feed the derived
// Sharpe ratio when the snapshot does not carry one.
const sharpeHistoryDays = 90

// SnapshotSource supplies the portfolio state for a cycle.
type SnapshotSource interface {
	Load() (*domain.Snapshot, error)
}

// FileSnapshotSource reads a portfolio snapshot from a JSON file, the
// handoff format written by the broker export.
type FileSnapshotSource struct {
	Path string
}

// Load reads and decodes the snapshot file.
func (s *FileSnapshotSource) Load() (*domain.Snapshot, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.Path, err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", s.Path, err)
	}
	return &snap, nil
}

// MonitorCycleJob runs one full monitoring cycle: load the snapshot,
// evaluate, persist the run and the per-position delta memory.
type MonitorCycleJob struct {
	source   SnapshotSource
	pipeline *monitoring.Pipeline
	repo     *monitoring.RunRepository
	history  *monitoring.DeltaHistory
	metrics  *telemetry.Metrics
	log      zerolog.Logger
}

// NewMonitorCycleJob creates the cycle job. metrics may be nil.
func NewMonitorCycleJob(
	source SnapshotSource,
	pipeline *monitoring.Pipeline,
	repo *monitoring.RunRepository,
	history *monitoring.DeltaHistory,
	metrics *telemetry.Metrics,
	log zerolog.Logger,
) *MonitorCycleJob {
	return &MonitorCycleJob{
		source:   source,
		pipeline: pipeline,
		repo:     repo,
		history:  history,
		metrics:  metrics,
		log:      log.With().Str("job", "monitor_cycle").Logger(),
	}
}

// Name implements Job.
func (j *MonitorCycleJob) Name() string { return "monitor_cycle" }

// Run implements Job.
func (j *MonitorCycleJob) Run() error {
	started := time.Now()

	result, err := j.RunOnce()
	if err != nil {
		if j.metrics != nil {
			j.metrics.ObserveCycle(nil, 0, nil)
		}
		return err
	}

	j.log.Info().
		Str("run_id", result.RunID).
		Str("status", string(result.Status)).
		Int("alerts", len(result.Alerts)).
		Dur("took", time.Since(started)).
		Msg("Monitoring cycle completed")
	return nil
}

// RunOnce executes a single cycle and returns the result, used both by
// the schedule and by the manual trigger endpoint.
func (j *MonitorCycleJob) RunOnce() (*domain.MonitorResult, error) {
	started := time.Now()

	snap, err := j.source.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	j.fillSharpe(snap.Capital)

	result := j.pipeline.Run(snap.Positions, snap.Capital, snap.VIX, nil)

	var nlv *float64
	if snap.Capital != nil && snap.Capital.NetLiquidation > 0 {
		nlv = domain.Float(snap.Capital.NetLiquidation)
	}
	if j.metrics != nil {
		j.metrics.ObserveCycle(result, time.Since(started).Seconds(), nlv)
	}

	if j.repo != nil {
		if err := j.repo.Save(result); err != nil {
			return nil, fmt.Errorf("failed to persist run: %w", err)
		}
	}
	if j.history != nil {
		if err := j.history.Save(); err != nil {
			j.log.Warn().Err(err).Msg("Failed to persist delta history")
		}
	}
	return result, nil
}

// fillSharpe derives an annualized Sharpe from stored NLV history when
// the snapshot does not provide one. Best effort: on any failure the
// ratio stays nil and the capital check simply skips.
func (j *MonitorCycleJob) fillSharpe(capital *domain.CapitalSnapshot) {
	if capital == nil || capital.SharpeRatio != nil || j.repo == nil {
		return
	}
	nlvs, err := j.repo.RecentNLVs(sharpeHistoryDays)
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to load NLV history for Sharpe")
		return
	}
	returns := formulas.Returns(nlvs)
	sharpe, err := formulas.SharpeRatio(returns, 0)
	if err != nil {
		j.log.Debug().Err(err).Int("observations", len(nlvs)).Msg("Sharpe not derivable yet")
		return
	}
	capital.SharpeRatio = domain.Float(sharpe)
}
