package monitoring

import (
	"github.com/rs/zerolog"

	"github.com/optionsentry/optionsentry/internal/config"
	"github.com/optionsentry/optionsentry/internal/domain"
)

// CapitalMonitor evaluates the account-level metrics. The four adequacy
// ratios go through the generic evaluator; Sharpe and Kelly usage use the
// explicit band check whose low side can be green ("room to add exposure").
// That asymmetry is deliberate and must not be folded into Evaluate.
type CapitalMonitor struct {
	cfg *config.MonitorConfig
	log zerolog.Logger
}

// NewCapitalMonitor creates a new capital monitor.
func NewCapitalMonitor(cfg *config.MonitorConfig, log zerolog.Logger) *CapitalMonitor {
	return &CapitalMonitor{
		cfg: cfg,
		log: log.With().Str("service", "capital_monitor").Logger(),
	}
}

// Check evaluates the capital snapshot. Metrics that were never computed
// (nil) are skipped.
func (m *CapitalMonitor) Check(cap *domain.CapitalSnapshot) []domain.Alert {
	if cap == nil {
		return nil
	}
	pol := m.cfg.Capital

	checks := []metricCheck{
		{kind: domain.AlertMarginUtilization, value: cap.MarginUtilization, policy: pol.MarginUtilization, percent: true},
		{kind: domain.AlertCashRatio, value: cap.CashRatio, policy: pol.CashRatio, percent: true},
		{kind: domain.AlertGrossLeverage, value: cap.GrossLeverage, policy: pol.GrossLeverage},
		{kind: domain.AlertStressTestLoss, value: cap.StressTestLoss, policy: pol.StressTestLoss, percent: true},
	}

	var alerts []domain.Alert
	for _, c := range checks {
		if a := evalMetricCheck(c); a != nil {
			alerts = append(alerts, *a)
		}
	}

	if a := evalCapitalBand(domain.AlertSharpe, cap.SharpeRatio, pol.Sharpe, false); a != nil {
		alerts = append(alerts, *a)
	}
	if a := evalCapitalBand(domain.AlertKellyUsage, cap.KellyUsage, pol.KellyUsage, true); a != nil {
		alerts = append(alerts, *a)
	}
	return alerts
}

// evalCapitalBand is the explicit three-band check for Sharpe and Kelly
// usage. Precedence: red cuts, then the green ends (low side first - a low
// reading is an opportunity to add exposure, not a breach), then the yellow
// band. Values inside no band stay silent.
func evalCapitalBand(kind domain.AlertKind, value *float64, p config.CapitalBandPolicy, percent bool) *domain.Alert {
	if value == nil {
		return nil
	}
	v := *value

	build := func(level domain.AlertLevel, msg string, threshold *float64) *domain.Alert {
		if msg == "" {
			return nil
		}
		thrText := ""
		if threshold != nil {
			thrText = formatThreshold(*threshold, percent)
		}
		a := newAlert(kind, level, renderTemplate(msg, formatMetric(v, percent), thrText))
		a.Value = value
		a.Threshold = threshold
		return &a
	}

	switch {
	case p.RedAbove != nil && v > *p.RedAbove:
		return build(domain.AlertLevelRed, p.RedMessage, p.RedAbove)
	case p.RedBelow != nil && v < *p.RedBelow:
		return build(domain.AlertLevelRed, p.RedMessage, p.RedBelow)
	case p.GreenBelow != nil && v < *p.GreenBelow:
		return build(domain.AlertLevelGreen, p.GreenLowMessage, p.GreenBelow)
	case p.GreenAbove != nil && v > *p.GreenAbove:
		return build(domain.AlertLevelGreen, p.GreenHighMessage, p.GreenAbove)
	case p.YellowLow != nil && p.YellowHigh != nil && v >= *p.YellowLow && v <= *p.YellowHigh:
		return build(domain.AlertLevelYellow, p.YellowMessage, p.YellowHigh)
	}
	return nil
}
