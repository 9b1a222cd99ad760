package monitoring

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/optionsentry/optionsentry/internal/domain"
	"github.com/optionsentry/optionsentry/pkg/formulas"
)

// Stress scenario applied by the stress-test metric: underlying prices drop
// 15% while implied volatility rises 40%.
const (
	stressUnderlyingScale = 0.85
	stressVolScale        = 1.40
)

// MetricAggregator turns a position list plus account totals into the named
// portfolio and capital metrics. It holds no cross-cycle state; every
// division with a missing or zero denominator yields a nil metric, never an
// error.
type MetricAggregator struct {
	pricing domain.PricingEngine // may be nil: stress test metric stays nil
	log     zerolog.Logger
}

// NewMetricAggregator creates a new metric aggregator. pricing may be nil
// when no repricing engine is wired; the stress-test metric is then skipped.
func NewMetricAggregator(pricing domain.PricingEngine, log zerolog.Logger) *MetricAggregator {
	return &MetricAggregator{
		pricing: pricing,
		log:     log.With().Str("service", "metric_aggregator").Logger(),
	}
}

// Aggregate computes the portfolio metrics for one cycle. nlv may be nil;
// the NLV-normalized percentage metrics are then nil as well.
func (a *MetricAggregator) Aggregate(positions []domain.Position, nlv *float64) *domain.PortfolioMetrics {
	m := &domain.PortfolioMetrics{}

	for _, p := range positions {
		if !p.IsOption() {
			if p.CurrentPrice != nil {
				m.EquityExposure += p.Quantity * *p.CurrentPrice
			}
			continue
		}
		mult := p.EffectiveMultiplier()
		if p.Greeks.Delta != nil {
			m.TotalDelta += *p.Greeks.Delta * p.Quantity * mult
			m.BetaWeightedDelta += *p.Greeks.Delta * p.Quantity * mult * p.EffectiveBeta()
		}
		if p.Greeks.Gamma != nil {
			m.TotalGamma += *p.Greeks.Gamma * p.Quantity * mult
		}
		if p.Greeks.Theta != nil {
			m.TotalTheta += *p.Greeks.Theta * p.Quantity * mult
		}
		if p.Greeks.Vega != nil {
			m.TotalVega += *p.Greeks.Vega * p.Quantity * mult
		}
	}

	if nlv != nil && *nlv > 0 {
		m.DeltaPct = domain.Float(m.TotalDelta / *nlv)
		m.BetaWeightedDeltaPct = domain.Float(m.BetaWeightedDelta / *nlv)
		m.GammaPct = domain.Float(m.TotalGamma / *nlv)
		m.ThetaPct = domain.Float(m.TotalTheta / *nlv)
		m.VegaPct = domain.Float(m.TotalVega / *nlv)
	}

	if m.TotalGamma != 0 {
		m.ThetaGammaRatio = domain.Float(math.Abs(m.TotalTheta) / math.Abs(m.TotalGamma))
	}

	m.ConcentrationHHI = concentrationHHI(positions)
	m.VegaWeightedIVHV = vegaWeightedIVHV(positions)

	return m
}

// concentrationHHI groups absolute delta-notional by underlying, normalizes
// to shares of total absolute exposure and sums the squared shares. The
// result lies in [1/N, 1] for N underlyings with exposure, nil when total
// exposure is zero.
func concentrationHHI(positions []domain.Position) *float64 {
	notional := make(map[string]float64)
	for _, p := range positions {
		key := p.Underlying
		if key == "" {
			key = p.Symbol
		}
		if p.IsOption() {
			if p.Greeks.Delta == nil || p.UnderlyingPrice == nil {
				continue
			}
			notional[key] += math.Abs(*p.Greeks.Delta * p.Quantity * p.EffectiveMultiplier() * *p.UnderlyingPrice)
		} else if p.CurrentPrice != nil {
			notional[key] += math.Abs(p.Quantity * *p.CurrentPrice)
		}
	}

	if len(notional) == 0 {
		return nil
	}
	weights := make([]float64, 0, len(notional))
	for _, v := range notional {
		weights = append(weights, v)
	}
	hhi := formulas.HHI(weights)
	if hhi == 0 {
		return nil
	}
	return domain.Float(hhi)
}

// vegaWeightedIVHV returns the |vega*qty*multiplier|-weighted mean of each
// position's IV/HV ratio over positions with a usable ratio.
func vegaWeightedIVHV(positions []domain.Position) *float64 {
	weightSum := 0.0
	weighted := 0.0
	for _, p := range positions {
		ratio := p.IVHVRatio()
		if !p.IsOption() || ratio == nil || p.Greeks.Vega == nil {
			continue
		}
		w := math.Abs(*p.Greeks.Vega * p.Quantity * p.EffectiveMultiplier())
		weightSum += w
		weighted += w * *ratio
	}
	if weightSum == 0 {
		return nil
	}
	return domain.Float(weighted / weightSum)
}

// FillCapitalRatios computes the four capital-adequacy ratios in place.
// Ratios with a non-positive NLV denominator stay nil.
func (a *MetricAggregator) FillCapitalRatios(cap *domain.CapitalSnapshot, positions []domain.Position) {
	if cap == nil {
		return
	}
	nlv := cap.NetLiquidation
	if nlv <= 0 {
		return
	}

	cap.MarginUtilization = domain.Float(cap.MaintenanceMargin / nlv)
	cap.CashRatio = domain.Float(cap.CashBalance / nlv)
	cap.GrossLeverage = domain.Float(grossNotional(positions) / nlv)

	if loss := a.stressTestLoss(positions, nlv); loss != nil {
		cap.StressTestLoss = loss
	}
}

// grossNotional sums absolute stock notional plus strike-based option
// notional (strike x multiplier x |qty|).
func grossNotional(positions []domain.Position) float64 {
	total := 0.0
	for _, p := range positions {
		if p.IsOption() {
			if p.Strike != nil {
				total += math.Abs(*p.Strike * p.EffectiveMultiplier() * p.Quantity)
			}
		} else if p.CurrentPrice != nil {
			total += math.Abs(p.Quantity * *p.CurrentPrice)
		}
	}
	return total
}

// stressTestLoss reprices every position at underlying x0.85 and vol x1.40
// and returns (NLV - NLV_stressed) / NLV. Option repricing is delegated to
// the pricing engine; positions it cannot price are skipped.
func (a *MetricAggregator) stressTestLoss(positions []domain.Position, nlv float64) *float64 {
	if a.pricing == nil {
		return nil
	}

	change := 0.0
	for _, p := range positions {
		if !p.IsOption() {
			if p.CurrentPrice != nil {
				change += p.Quantity * *p.CurrentPrice * (stressUnderlyingScale - 1)
			}
			continue
		}
		if p.CurrentPrice == nil || p.UnderlyingPrice == nil {
			continue
		}
		stressed, err := a.pricing.Price(p, *p.UnderlyingPrice*stressUnderlyingScale, stressVolScale)
		if err != nil {
			a.log.Warn().Err(err).Str("position", p.ID).Msg("Stress repricing failed, skipping position")
			continue
		}
		change += (stressed - *p.CurrentPrice) * p.Quantity * p.EffectiveMultiplier()
	}

	stressedNLV := nlv + change
	return domain.Float((nlv - stressedNLV) / nlv)
}
