// Package rolls computes concrete remediation targets (new expiry/strike)
// for flagged option positions.
package rolls

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/optionsentry/optionsentry/internal/config"
	"github.com/optionsentry/optionsentry/internal/domain"
)

// rollOTMBuffer is the distance from the underlying the theoretical target
// strike aims for: 10% out of the money.
const rollOTMBuffer = 0.10

// strikeEqualityTolerance: a computed target within this distance of the
// current strike counts as "unchanged" and is suppressed.
const strikeEqualityTolerance = 0.01

// Calculator picks a concrete roll target for one (alert, position) pair.
// Deterministic: identical inputs always produce the identical target.
type Calculator struct {
	cfg config.RollConfig
	log zerolog.Logger
}

// NewCalculator creates a roll calculator with the given DTE parameters.
func NewCalculator(cfg config.RollConfig, log zerolog.Logger) *Calculator {
	return &Calculator{
		cfg: cfg,
		log: log.With().Str("service", "roll_calculator").Logger(),
	}
}

// fixedIdealKinds roll to the ideal DTE outright: the trigger is about
// time, so clamping the current (already bad) DTE would be pointless.
var fixedIdealKinds = map[domain.AlertKind]bool{
	domain.AlertDTEWarning:      true,
	domain.AlertTGRLow:          true,
	domain.AlertPositionTGR:     true,
	domain.AlertGammaNearExpiry: true,
}

// strikeAdjustKinds are the triggers that also move the strike; everything
// else keeps the current strike ("unchanged").
var strikeAdjustKinds = map[domain.AlertKind]bool{
	domain.AlertDeltaChange: true,
	domain.AlertOTMPct:      true,
	domain.AlertMoneyness:   true,
}

// Calculate computes the roll target for a flagged position.
// availableExpiries and availableStrikes are optional real chain data; when
// absent the target is theoretical (date arithmetic, grid-snapped strike).
// today is optional and defaults to the current date. Missing underlying
// price or option type suppresses the strike adjustment rather than failing.
func (c *Calculator) Calculate(pos domain.Position, alert domain.Alert, availableExpiries []string, availableStrikes []float64, today *time.Time) domain.RollTarget {
	now := time.Now()
	if today != nil {
		now = *today
	}
	now = now.Truncate(24 * time.Hour)

	currentDTE := c.currentDTE(pos, now)
	targetDTE := c.targetDTE(alert.Kind, currentDTE)

	expiry, expiryDTE, usedExpiryChain := c.targetExpiry(targetDTE, availableExpiries, now)
	strike, usedStrikeChain := c.targetStrike(pos, alert.Kind, availableStrikes)

	usedChain := usedExpiryChain || usedStrikeChain
	target := domain.RollTarget{
		TargetExpiry:  expiry,
		TargetStrike:  strike,
		TargetDTE:     expiryDTE,
		UsedChainData: usedChain,
	}
	target.Justification = c.justification(pos, alert, currentDTE, target)
	return target
}

// currentDTE prefers the position's precomputed DTE and falls back to
// parsing the expiry string. An unparseable expiry degrades to 0.
func (c *Calculator) currentDTE(pos domain.Position, now time.Time) int {
	if pos.DTE != nil {
		return *pos.DTE
	}
	if t, ok := parseExpiry(pos.Expiry); ok {
		days := int(t.Sub(now).Hours() / 24)
		if days < 0 {
			return 0
		}
		return days
	}
	return 0
}

func (c *Calculator) targetDTE(kind domain.AlertKind, currentDTE int) int {
	if fixedIdealKinds[kind] {
		return c.cfg.IdealDTE
	}
	if currentDTE < c.cfg.MinDTE {
		return c.cfg.MinDTE
	}
	if currentDTE > c.cfg.MaxDTE {
		return c.cfg.MaxDTE
	}
	return currentDTE
}

// targetExpiry picks the chain expiry with DTE >= min_dte minimizing
// |dte - targetDTE| (first encountered wins ties). Without usable chain
// data the expiry is plain date arithmetic: today + targetDTE.
func (c *Calculator) targetExpiry(targetDTE int, availableExpiries []string, now time.Time) (expiry string, dte int, usedChain bool) {
	best := ""
	bestDTE := 0
	bestDist := math.MaxInt32
	for _, raw := range availableExpiries {
		t, ok := parseExpiry(raw)
		if !ok {
			continue
		}
		d := int(t.Sub(now).Hours() / 24)
		if d < c.cfg.MinDTE {
			continue
		}
		dist := d - targetDTE
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			best, bestDTE, bestDist = raw, d, dist
		}
	}
	if best != "" {
		return best, bestDTE, true
	}

	return now.AddDate(0, 0, targetDTE).Format("2006-01-02"), targetDTE, false
}

// targetStrike computes the 10%-OTM strike on the price-tier grid for
// strike-moving triggers, snapped to the real strike list when supplied.
// Returns nil ("unchanged") for non-strike triggers, missing inputs, or a
// target indistinguishable from the current strike.
func (c *Calculator) targetStrike(pos domain.Position, kind domain.AlertKind, availableStrikes []float64) (*float64, bool) {
	if !strikeAdjustKinds[kind] {
		return nil, false
	}
	if pos.UnderlyingPrice == nil || pos.Strike == nil {
		return nil, false
	}
	u := *pos.UnderlyingPrice
	step := strikeStep(u)

	var raw float64
	switch pos.OptionType {
	case domain.OptionTypePut:
		raw = math.Floor(u*(1-rollOTMBuffer)/step) * step
	case domain.OptionTypeCall:
		raw = math.Ceil(u*(1+rollOTMBuffer)/step) * step
	default:
		return nil, false
	}

	if math.Abs(raw-*pos.Strike) < strikeEqualityTolerance {
		return nil, false
	}

	if len(availableStrikes) == 0 {
		return &raw, false
	}

	snapped := snapStrike(raw, pos.OptionType, availableStrikes)
	if math.Abs(snapped-*pos.Strike) < strikeEqualityTolerance {
		return nil, true
	}
	return &snapped, true
}

// strikeStep returns the strike grid spacing for the underlying price
// tier: $1 below $50, $2.50 up to $100, $5 above.
func strikeStep(underlying float64) float64 {
	switch {
	case underlying < 50:
		return 1.0
	case underlying < 100:
		return 2.5
	default:
		return 5.0
	}
}

// snapStrike maps a theoretical strike onto the available lattice: a put
// rolls down to the largest strike at or below the target, a call up to
// the smallest at or above it. When no strike is on the safe side, the
// closest available one wins.
func snapStrike(target float64, right domain.OptionType, strikes []float64) float64 {
	found := false
	best := 0.0
	for _, s := range strikes {
		switch right {
		case domain.OptionTypePut:
			if s <= target && (!found || s > best) {
				best, found = s, true
			}
		case domain.OptionTypeCall:
			if s >= target && (!found || s < best) {
				best, found = s, true
			}
		}
	}
	if found {
		return best
	}

	// Fallback: closest available strike.
	closest := strikes[0]
	for _, s := range strikes[1:] {
		if math.Abs(s-target) < math.Abs(closest-target) {
			closest = s
		}
	}
	return closest
}

// parseExpiry accepts "YYYY-MM-DD" and "YYYYMMDD".
func parseExpiry(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", "20060102"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// justification summarizes the trigger, the DTE move, the strike move and
// whether real chain data backed the choice.
func (c *Calculator) justification(pos domain.Position, alert domain.Alert, currentDTE int, target domain.RollTarget) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s triggered roll: %d DTE -> %d DTE (%s)", alert.Kind, currentDTE, target.TargetDTE, target.TargetExpiry)
	if target.TargetStrike != nil && pos.Strike != nil {
		fmt.Fprintf(&b, "; strike %g -> %g", *pos.Strike, *target.TargetStrike)
	} else {
		b.WriteString("; strike unchanged")
	}
	if target.UsedChainData {
		b.WriteString("; chosen from live chain data")
	} else {
		b.WriteString("; theoretical target, no chain data")
	}
	return b.String()
}
