// Package formulas holds pure financial math shared across services.
package formulas

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// tradingDaysPerYear is used to annualize daily statistics.
const tradingDaysPerYear = 252.0

var (
	ErrInsufficientData = errors.New("insufficient data points")
	ErrZeroVolatility   = errors.New("zero volatility in return series")
)

// Returns converts an equity curve into simple period returns.
// Zero or negative values terminate the series early since a ratio
// against them is meaningless.
func Returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] <= 0 {
			break
		}
		out = append(out, values[i]/values[i-1]-1)
	}
	return out
}

// SharpeRatio computes the annualized Sharpe ratio of a daily return
// series against an annual risk-free rate.
func SharpeRatio(returns []float64, riskFreeAnnual float64) (float64, error) {
	if len(returns) < 2 {
		return 0, ErrInsufficientData
	}
	rfDaily := riskFreeAnnual / tradingDaysPerYear

	mean := stat.Mean(returns, nil)
	sd := stat.StdDev(returns, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0, ErrZeroVolatility
	}
	return (mean - rfDaily) / sd * math.Sqrt(tradingDaysPerYear), nil
}

// KellyFraction returns the Kelly-optimal bet fraction for a win
// probability and win/loss payoff ratio, floored at zero.
func KellyFraction(winProb, payoffRatio float64) float64 {
	if payoffRatio <= 0 || winProb <= 0 || winProb >= 1 {
		return 0
	}
	f := winProb - (1-winProb)/payoffRatio
	if f < 0 {
		return 0
	}
	return f
}

// HHI computes the Herfindahl-Hirschman index of a weight slice. The
// weights are normalized internally, so absolute exposures are fine.
func HHI(weights []float64) float64 {
	var total float64
	for _, w := range weights {
		total += math.Abs(w)
	}
	if total == 0 {
		return 0
	}
	var hhi float64
	for _, w := range weights {
		share := math.Abs(w) / total
		hhi += share * share
	}
	return hhi
}
