// Package pricing implements option repricing for stress scenarios using
// the Black-Scholes model.
package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/optionsentry/optionsentry/internal/domain"
)

// stdNormal is the standard normal distribution used for N(d1)/N(d2).
var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// Engine prices vanilla options with Black-Scholes. Good enough for
// stress scenarios: the metric needs direction and rough magnitude, not
// exchange-grade marks.
type Engine struct {
	// RiskFreeRate is the annualized rate used for discounting.
	RiskFreeRate float64
}

// NewEngine creates a pricing engine with the given annual risk-free rate.
func NewEngine(riskFreeRate float64) *Engine {
	return &Engine{RiskFreeRate: riskFreeRate}
}

var _ domain.PricingEngine = (*Engine)(nil)

// Price implements domain.PricingEngine. underlying is the (possibly
// shocked) underlying price and volScale multiplies the position's IV.
func (e *Engine) Price(pos domain.Position, underlying float64, volScale float64) (float64, error) {
	if !pos.IsOption() {
		return 0, fmt.Errorf("position %s is not an option", pos.Symbol)
	}
	if pos.Strike == nil || *pos.Strike <= 0 {
		return 0, fmt.Errorf("position %s has no strike", pos.Symbol)
	}
	if pos.IV == nil || *pos.IV <= 0 {
		return 0, fmt.Errorf("position %s has no implied volatility", pos.Symbol)
	}
	if underlying <= 0 {
		return 0, fmt.Errorf("invalid underlying price %.4f", underlying)
	}

	dte := 0
	if pos.DTE != nil {
		dte = *pos.DTE
	}
	if dte <= 0 {
		// At expiry only intrinsic value remains.
		return intrinsic(pos.OptionType, underlying, *pos.Strike), nil
	}

	t := float64(dte) / 365.0
	sigma := *pos.IV * volScale
	if sigma <= 0 {
		return 0, fmt.Errorf("invalid volatility %.4f", sigma)
	}

	k := *pos.Strike
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(underlying/k) + (e.RiskFreeRate+0.5*sigma*sigma)*t) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	discount := math.Exp(-e.RiskFreeRate * t)

	switch pos.OptionType {
	case domain.OptionTypeCall:
		return underlying*stdNormal.CDF(d1) - k*discount*stdNormal.CDF(d2), nil
	case domain.OptionTypePut:
		return k*discount*stdNormal.CDF(-d2) - underlying*stdNormal.CDF(-d1), nil
	default:
		return 0, fmt.Errorf("unknown option type %q", pos.OptionType)
	}
}

func intrinsic(ot domain.OptionType, underlying, strike float64) float64 {
	switch ot {
	case domain.OptionTypeCall:
		return math.Max(0, underlying-strike)
	default:
		return math.Max(0, strike-underlying)
	}
}
