package monitoring

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/optionsentry/optionsentry/internal/config"
	"github.com/optionsentry/optionsentry/internal/domain"
)

// Pipeline orchestrates one monitoring cycle: aggregation, the three
// monitors and suggestion generation, composed into a MonitorResult. Each
// step runs regardless of whether a sibling step produced alerts: empty
// positions skip only the portfolio and position steps, an absent capital
// snapshot skips only the capital step.
type Pipeline struct {
	aggregator  *MetricAggregator
	portfolio   *PortfolioMonitor
	positions   *PositionMonitor
	capital     *CapitalMonitor
	suggestions domain.SuggestionGenerator // may be nil
	log         zerolog.Logger
}

// NewPipeline wires a pipeline from the shared config. pricing and
// suggestions may be nil; the corresponding outputs stay empty.
func NewPipeline(cfg *config.MonitorConfig, pricing domain.PricingEngine, history *DeltaHistory, suggestions domain.SuggestionGenerator, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		aggregator:  NewMetricAggregator(pricing, log),
		portfolio:   NewPortfolioMonitor(cfg, log),
		positions:   NewPositionMonitor(cfg, history, log),
		capital:     NewCapitalMonitor(cfg, log),
		suggestions: suggestions,
		log:         log.With().Str("service", "monitoring_pipeline").Logger(),
	}
}

// Run executes one cycle. nlv overrides the NLV used for normalization;
// when nil it falls back to the capital snapshot's net liquidation, and to
// no normalization when that is absent too.
func (p *Pipeline) Run(positions []domain.Position, capital *domain.CapitalSnapshot, vix *float64, nlv *float64) *domain.MonitorResult {
	result := &domain.MonitorResult{
		RunID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Positions: positions,
		Capital:   capital,
	}

	effectiveNLV := nlv
	if effectiveNLV == nil && capital != nil && capital.NetLiquidation > 0 {
		effectiveNLV = domain.Float(capital.NetLiquidation)
	}

	if len(positions) > 0 {
		result.Metrics = p.aggregator.Aggregate(positions, effectiveNLV)
		result.Alerts = append(result.Alerts, p.portfolio.Check(result.Metrics)...)
		result.Alerts = append(result.Alerts, p.positions.Check(positions)...)
	}

	if capital != nil {
		p.aggregator.FillCapitalRatios(capital, positions)
		result.Alerts = append(result.Alerts, p.capital.Check(capital)...)
	}

	result.Status = domain.WorstLevel(result.Alerts)
	result.PositionsAtRisk, result.PositionsOpportunity = countFlaggedPositions(result.Alerts)

	if p.suggestions != nil {
		result.Suggestions = p.suggestions.Generate(result, positions, vix)
	}

	p.log.Info().
		Str("run_id", result.RunID).
		Str("status", string(result.Status)).
		Int("alerts", len(result.Alerts)).
		Int("positions", len(positions)).
		Int("at_risk", result.PositionsAtRisk).
		Msg("Monitoring cycle complete")

	return result
}

// countFlaggedPositions returns the number of distinct position IDs holding
// a red alert and a green alert respectively.
func countFlaggedPositions(alerts []domain.Alert) (atRisk, opportunity int) {
	red := make(map[string]struct{})
	green := make(map[string]struct{})
	for _, a := range alerts {
		if a.PositionID == "" {
			continue
		}
		switch a.Level {
		case domain.AlertLevelRed:
			red[a.PositionID] = struct{}{}
		case domain.AlertLevelGreen:
			green[a.PositionID] = struct{}{}
		}
	}
	return len(red), len(green)
}
