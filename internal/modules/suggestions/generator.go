// Package suggestions provides the default suggestion generator: it turns
// a cycle's alerts into ranked remediation recommendations.
package suggestions

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/optionsentry/optionsentry/internal/domain"
)

// highVIXLevel is the reading above which red findings escalate from
// "soon" to "immediate": in a fast market the same breach bites harder.
const highVIXLevel = 30.0

// Generator maps alerts to suggestions. One suggestion per flagged
// position (its worst alert wins), ranked immediate > soon > monitor.
type Generator struct {
	log zerolog.Logger
}

// NewGenerator creates the default suggestion generator.
func NewGenerator(log zerolog.Logger) *Generator {
	return &Generator{log: log.With().Str("service", "suggestion_generator").Logger()}
}

var _ domain.SuggestionGenerator = (*Generator)(nil)

// Generate builds ranked suggestions from the partial result. vix may be
// nil when no volatility reading exists.
func (g *Generator) Generate(result *domain.MonitorResult, positions []domain.Position, vix *float64) []domain.Suggestion {
	if result == nil {
		return nil
	}

	byID := make(map[string]domain.Position, len(positions))
	for _, p := range positions {
		byID[p.ID] = p
	}

	// Worst alert per position, first-encountered on equal severity.
	worst := make(map[string]domain.Alert)
	var order []string
	for _, a := range result.Alerts {
		if a.PositionID == "" {
			continue
		}
		// Green findings are opportunities, not problems; only the
		// take-profit signal warrants an entry here.
		if a.Level == domain.AlertLevelGreen && a.Kind != domain.AlertPnL {
			continue
		}
		prev, ok := worst[a.PositionID]
		if !ok {
			worst[a.PositionID] = a
			order = append(order, a.PositionID)
			continue
		}
		if a.Level.Severity() > prev.Level.Severity() {
			worst[a.PositionID] = a
		}
	}

	highVol := vix != nil && *vix >= highVIXLevel

	var out []domain.Suggestion
	for _, id := range order {
		a := worst[id]
		s := domain.Suggestion{
			PositionID: id,
			Symbol:     a.Symbol,
			Urgency:    urgencyFor(a, byID[id], highVol),
			Action:     actionFor(a),
			Reason:     a.Message,
		}
		if vix != nil && highVol && s.Urgency == domain.UrgencyImmediate {
			s.Reason = fmt.Sprintf("%s (VIX %.1f)", a.Message, *vix)
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Urgency.Rank() < out[j].Urgency.Rank()
	})
	return out
}

// urgencyFor ranks a finding. Red with imminent expiry (or any red in a
// high-VIX tape) is immediate; other reds are soon; the rest monitor.
func urgencyFor(a domain.Alert, pos domain.Position, highVol bool) domain.Urgency {
	switch a.Level {
	case domain.AlertLevelRed:
		if highVol {
			return domain.UrgencyImmediate
		}
		if pos.DTE != nil && *pos.DTE <= 3 {
			return domain.UrgencyImmediate
		}
		if a.Kind == domain.AlertGammaNearExpiry || a.Kind == domain.AlertPnL {
			return domain.UrgencyImmediate
		}
		return domain.UrgencySoon
	case domain.AlertLevelYellow:
		return domain.UrgencyMonitor
	default:
		return domain.UrgencyMonitor
	}
}

// actionFor prefers the alert's configured action and falls back to a
// kind-specific default.
func actionFor(a domain.Alert) string {
	if a.SuggestedAction != "" {
		return a.SuggestedAction
	}
	switch a.Kind {
	case domain.AlertDTEWarning, domain.AlertGammaNearExpiry, domain.AlertPositionTGR, domain.AlertTGRLow:
		return "Roll out in time"
	case domain.AlertMoneyness, domain.AlertDeltaAbs, domain.AlertDeltaChange, domain.AlertOTMPct:
		return "Roll strike away from the money"
	case domain.AlertPnL:
		if a.Level == domain.AlertLevelGreen {
			return "Close and take profit"
		}
		return "Close or roll to cap the loss"
	default:
		return "Review position"
	}
}
