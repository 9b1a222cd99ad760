// Package monitoring implements the per-cycle risk monitoring engine:
// metric aggregation, the threshold evaluator, the three monitors and the
// pipeline that composes them into a MonitorResult.
package monitoring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/optionsentry/optionsentry/internal/config"
	"github.com/optionsentry/optionsentry/internal/domain"
)

// Evaluate maps one metric value to a level under a threshold policy.
//
// Precedence is strict and never ambiguous:
//  1. red_above set and value > red_above  -> red
//  2. red_below set and value < red_below  -> red
//  3. green interval set and value inside it (lower bound inclusive, upper
//     exclusive; an infinite upper bound means "value >= lower") -> green
//  4. otherwise yellow
//
// The policy's hysteresis margin is metadata for callers doing temporal
// smoothing; Evaluate itself never consumes it. Callers must skip the check
// entirely when the value is unknown - nil never reaches this function.
func Evaluate(value float64, p config.ThresholdPolicy) domain.AlertLevel {
	if p.RedAbove != nil && value > *p.RedAbove {
		return domain.AlertLevelRed
	}
	if p.RedBelow != nil && value < *p.RedBelow {
		return domain.AlertLevelRed
	}
	if p.GreenLow != nil {
		if value >= *p.GreenLow && (p.GreenHigh == nil || value < *p.GreenHigh) {
			return domain.AlertLevelGreen
		}
	}
	return domain.AlertLevelYellow
}

// thresholdFor returns the policy bound relevant to the fired level, for
// display in the alert. Nil when the level has no configured bound.
func thresholdFor(value float64, level domain.AlertLevel, p config.ThresholdPolicy) *float64 {
	switch level {
	case domain.AlertLevelRed:
		if p.RedAbove != nil && value > *p.RedAbove {
			return p.RedAbove
		}
		return p.RedBelow
	case domain.AlertLevelYellow:
		if p.YellowHigh != nil {
			return p.YellowHigh
		}
		return p.YellowLow
	case domain.AlertLevelGreen:
		return p.GreenLow
	}
	return nil
}

// formatMetric renders a metric value for message templates. Percent-style
// metrics are plain decimals internally (0.01 = 1%) and render as "1.0%".
func formatMetric(v float64, percent bool) string {
	if percent {
		return fmt.Sprintf("%.1f%%", v*100)
	}
	return strconv.FormatFloat(v, 'g', 4, 64)
}

// formatThreshold renders a threshold bound without trailing zeros, so a
// 0.70 margin limit reads "70%" rather than "70.0%".
func formatThreshold(v float64, percent bool) string {
	if percent {
		return strconv.FormatFloat(v*100, 'f', -1, 64) + "%"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// renderTemplate substitutes {value} and {threshold} placeholders.
func renderTemplate(tpl, value, threshold string) string {
	r := strings.NewReplacer("{value}", value, "{threshold}", threshold)
	return r.Replace(tpl)
}
