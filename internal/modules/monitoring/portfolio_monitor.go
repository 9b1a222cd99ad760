package monitoring

import (
	"github.com/rs/zerolog"

	"github.com/optionsentry/optionsentry/internal/config"
	"github.com/optionsentry/optionsentry/internal/domain"
)

// PortfolioMonitor evaluates the aggregated portfolio metrics. It is
// stateless: one generic loop over (kind, value, policy) tuples, with nil
// metrics skipped.
type PortfolioMonitor struct {
	cfg *config.MonitorConfig
	log zerolog.Logger
}

// NewPortfolioMonitor creates a new portfolio monitor.
func NewPortfolioMonitor(cfg *config.MonitorConfig, log zerolog.Logger) *PortfolioMonitor {
	return &PortfolioMonitor{
		cfg: cfg,
		log: log.With().Str("service", "portfolio_monitor").Logger(),
	}
}

// Check runs every portfolio metric through the generic evaluator and
// returns the alerts whose branch carried a message template.
func (m *PortfolioMonitor) Check(metrics *domain.PortfolioMetrics) []domain.Alert {
	if metrics == nil {
		return nil
	}
	pol := m.cfg.Portfolio

	checks := []metricCheck{
		{kind: domain.AlertBWDPct, value: metrics.BetaWeightedDeltaPct, policy: pol.BWDPct, percent: true},
		{kind: domain.AlertGammaPct, value: metrics.GammaPct, policy: pol.GammaPct, percent: true},
		{kind: domain.AlertThetaPct, value: metrics.ThetaPct, policy: pol.ThetaPct, percent: true},
		{kind: domain.AlertVegaPct, value: metrics.VegaPct, policy: pol.VegaPct, percent: true},
		{kind: domain.AlertTGRLow, value: metrics.ThetaGammaRatio, policy: pol.TGR},
		{kind: domain.AlertConcentration, value: metrics.ConcentrationHHI, policy: pol.HHI},
		{kind: domain.AlertIVHVQuality, value: metrics.VegaWeightedIVHV, policy: pol.IVHVQuality},
	}

	var alerts []domain.Alert
	for _, c := range checks {
		if a := evalMetricCheck(c); a != nil {
			alerts = append(alerts, *a)
		}
	}
	return alerts
}
