package monitoring

import (
	"math"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/optionsentry/optionsentry/internal/config"
	"github.com/optionsentry/optionsentry/internal/domain"
)

// PositionMonitor runs the per-position checks against the configured
// policies, applying per-strategy overrides. Its only cross-cycle state is
// the previous-delta history used by the delta-change check.
type PositionMonitor struct {
	cfg     *config.MonitorConfig
	history *DeltaHistory
	log     zerolog.Logger
}

// NewPositionMonitor creates a new position monitor.
func NewPositionMonitor(cfg *config.MonitorConfig, history *DeltaHistory, log zerolog.Logger) *PositionMonitor {
	return &PositionMonitor{
		cfg:     cfg,
		history: history,
		log:     log.With().Str("service", "position_monitor").Logger(),
	}
}

// Check evaluates every position and returns the combined alerts. A
// position may carry several simultaneous alerts. Entries for closed
// positions are pruned from the delta history afterwards.
func (m *PositionMonitor) Check(positions []domain.Position) []domain.Alert {
	var alerts []domain.Alert
	active := make(map[string]struct{}, len(positions))
	for _, p := range positions {
		active[p.ID] = struct{}{}
		alerts = append(alerts, m.checkPosition(p)...)
	}
	m.history.Prune(active)
	return alerts
}

// checkPosition runs the nine checks for one position. Evaluation is
// isolated: a panic here yields zero alerts for this position only, never
// an aborted cycle.
func (m *PositionMonitor) checkPosition(p domain.Position) (alerts []domain.Alert) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Str("position", p.ID).Str("symbol", p.Symbol).
				Msg("Position checks panicked, dropping this position's alerts for the cycle")
			alerts = nil
		}
	}()

	pol := m.cfg.PositionPoliciesFor(p.Strategy)

	add := func(a *domain.Alert) {
		if a == nil {
			return
		}
		a.Symbol = p.Symbol
		a.PositionID = p.ID
		alerts = append(alerts, *a)
	}

	add(m.checkMoneyness(p, pol))
	add(m.checkDeltaAbs(p, pol))
	add(m.checkDeltaChange(p, pol))
	add(m.checkGamma(p, pol))
	add(m.checkIVHV(p, pol))
	add(evalMetricCheck(metricCheck{kind: domain.AlertPREI, value: p.PREI, policy: pol.PREI}))
	add(m.checkDTE(p, pol))
	add(evalMetricCheck(metricCheck{kind: domain.AlertPnL, value: p.UnrealizedPLPct(), policy: pol.PnL, percent: true}))
	add(evalMetricCheck(metricCheck{kind: domain.AlertSAS, value: p.SAS, policy: pol.SAS}))
	add(m.checkPositionTGR(p, pol))

	return alerts
}

// checkMoneyness evaluates the normalized strike distance. The sign
// convention differs by right: for a short put safety grows as the
// underlying rises above the strike, for a short call as it falls below.
// The cutoffs are deliberately distinct from the OTM% policy.
func (m *PositionMonitor) checkMoneyness(p domain.Position, pol config.PositionPolicies) *domain.Alert {
	if !p.IsOption() || p.Strike == nil || *p.Strike == 0 || p.UnderlyingPrice == nil {
		return nil
	}

	var moneyness float64
	switch p.OptionType {
	case domain.OptionTypePut:
		moneyness = (*p.UnderlyingPrice - *p.Strike) / *p.Strike
	case domain.OptionTypeCall:
		moneyness = (*p.Strike - *p.UnderlyingPrice) / *p.Strike
	default:
		return nil
	}

	return evalMetricCheck(metricCheck{kind: domain.AlertMoneyness, value: &moneyness, policy: pol.Moneyness, percent: true})
}

func (m *PositionMonitor) checkDeltaAbs(p domain.Position, pol config.PositionPolicies) *domain.Alert {
	if p.Greeks.Delta == nil {
		return nil
	}
	abs := math.Abs(*p.Greeks.Delta)
	return evalMetricCheck(metricCheck{kind: domain.AlertDeltaAbs, value: &abs, policy: pol.DeltaAbs})
}

// checkDeltaChange compares the current delta to the one recorded on the
// previous cycle and records the current value for the next one. The first
// sighting of a position only seeds the history.
func (m *PositionMonitor) checkDeltaChange(p domain.Position, pol config.PositionPolicies) *domain.Alert {
	if p.Greeks.Delta == nil {
		return nil
	}
	cur := *p.Greeks.Delta
	prev, seen := m.history.Previous(p.ID)
	m.history.Record(p.ID, cur)
	if !seen {
		return nil
	}
	change := math.Abs(cur - prev)
	return evalMetricCheck(metricCheck{kind: domain.AlertDeltaChange, value: &change, policy: pol.DeltaChange})
}

// checkGamma applies the near-expiry tightening: inside the urgency window
// the red cutoff divides by the near-expiry multiplier, and a breach is red
// when expiry is imminent, yellow otherwise. Outside the window (or when
// the tightened cutoff holds) the plain band comparison applies.
func (m *PositionMonitor) checkGamma(p domain.Position, pol config.PositionPolicies) *domain.Alert {
	if p.Greeks.Gamma == nil {
		return nil
	}
	v := math.Abs(*p.Greeks.Gamma)
	timing := pol.GammaTiming

	if p.DTE != nil && *p.DTE <= timing.UrgencyDays && pol.Gamma.RedAbove != nil && timing.NearExpiryMultiplier > 0 {
		eff := *pol.Gamma.RedAbove / timing.NearExpiryMultiplier
		if v > eff {
			level := domain.AlertLevelYellow
			msg, action := pol.Gamma.MessageFor("yellow")
			if *p.DTE <= timing.UrgentRedDays {
				level = domain.AlertLevelRed
				msg, action = pol.Gamma.MessageFor("red")
			}
			if msg == "" {
				return nil
			}
			a := newAlert(domain.AlertGammaNearExpiry, level, renderTemplate(msg, formatMetric(v, false), formatThreshold(eff, false)))
			a.Value = &v
			a.Threshold = &eff
			a.SuggestedAction = action
			a.Details = map[string]interface{}{"dte": *p.DTE, "near_expiry": true}
			return &a
		}
	}

	return evalMetricCheck(metricCheck{kind: domain.AlertGamma, value: &v, policy: pol.Gamma})
}

// checkIVHV is two-sided: a low ratio degrades the premium edge (yellow), a
// high ratio is a quality signal (green). The band between stays silent.
func (m *PositionMonitor) checkIVHV(p domain.Position, pol config.PositionPolicies) *domain.Alert {
	ratio := p.IVHVRatio()
	if ratio == nil {
		return nil
	}
	if pol.IVHV.YellowHigh != nil && *ratio < *pol.IVHV.YellowHigh {
		if pol.IVHV.YellowMessage == "" {
			return nil
		}
		a := newAlert(domain.AlertIVHV, domain.AlertLevelYellow,
			renderTemplate(pol.IVHV.YellowMessage, formatMetric(*ratio, false), formatThreshold(*pol.IVHV.YellowHigh, false)))
		a.Value = ratio
		a.Threshold = pol.IVHV.YellowHigh
		a.SuggestedAction = pol.IVHV.YellowAction
		return &a
	}
	if pol.IVHV.GreenLow != nil && *ratio >= *pol.IVHV.GreenLow {
		if pol.IVHV.GreenMessage == "" {
			return nil
		}
		a := newAlert(domain.AlertIVHV, domain.AlertLevelGreen,
			renderTemplate(pol.IVHV.GreenMessage, formatMetric(*ratio, false), formatThreshold(*pol.IVHV.GreenLow, false)))
		a.Value = ratio
		a.Threshold = pol.IVHV.GreenLow
		a.SuggestedAction = pol.IVHV.GreenAction
		return &a
	}
	return nil
}

// checkDTE uses two cutoffs: at or below the urgent cutoff the position is
// red, at or below the warning cutoff yellow. Above both, nothing fires.
func (m *PositionMonitor) checkDTE(p domain.Position, pol config.PositionPolicies) *domain.Alert {
	if p.DTE == nil {
		return nil
	}
	dte := float64(*p.DTE)

	level := domain.AlertLevel("")
	var threshold *float64
	switch {
	case pol.DTE.RedBelow != nil && dte <= *pol.DTE.RedBelow:
		level = domain.AlertLevelRed
		threshold = pol.DTE.RedBelow
	case pol.DTE.YellowHigh != nil && dte <= *pol.DTE.YellowHigh:
		level = domain.AlertLevelYellow
		threshold = pol.DTE.YellowHigh
	default:
		return nil
	}

	msg, action := pol.DTE.MessageFor(string(level))
	if msg == "" {
		return nil
	}
	thrText := ""
	if threshold != nil {
		thrText = formatThreshold(*threshold, false)
	}
	a := newAlert(domain.AlertDTEWarning, level, renderTemplate(msg, strconv.Itoa(*p.DTE), thrText))
	a.Value = &dte
	a.Threshold = threshold
	a.SuggestedAction = action
	return &a
}

// checkPositionTGR is one-sided: yellow only, when the position's
// theta/gamma ratio falls below the cutoff.
func (m *PositionMonitor) checkPositionTGR(p domain.Position, pol config.PositionPolicies) *domain.Alert {
	if p.TGR == nil || pol.TGR.YellowLow == nil || *p.TGR >= *pol.TGR.YellowLow {
		return nil
	}
	if pol.TGR.YellowMessage == "" {
		return nil
	}
	a := newAlert(domain.AlertPositionTGR, domain.AlertLevelYellow,
		renderTemplate(pol.TGR.YellowMessage, formatMetric(*p.TGR, false), formatThreshold(*pol.TGR.YellowLow, false)))
	a.Value = p.TGR
	a.Threshold = pol.TGR.YellowLow
	a.SuggestedAction = pol.TGR.YellowAction
	return &a
}
