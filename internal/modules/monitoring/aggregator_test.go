package monitoring

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsentry/optionsentry/internal/domain"
)

// stubPricing returns a fixed stressed price for every option.
type stubPricing struct {
	price float64
	err   error
}

func (s stubPricing) Price(_ domain.Position, _ float64, _ float64) (float64, error) {
	return s.price, s.err
}

func TestAggregate_GreekSumsAndNormalization(t *testing.T) {
	a := NewMetricAggregator(nil, zerolog.Nop())

	positions := []domain.Position{
		{
			ID: "p1", Symbol: "p1", Underlying: "XYZ",
			Kind: domain.AssetKindOption, OptionType: domain.OptionTypePut,
			Quantity: -2, Beta: fp(1.2),
			Greeks: domain.Greeks{Delta: fp(-0.3), Gamma: fp(0.02), Theta: fp(0.05), Vega: fp(0.10)},
		},
		{
			ID: "s1", Symbol: "ABC", Kind: domain.AssetKindEquity,
			Quantity: 50, CurrentPrice: fp(20),
		},
	}

	m := a.Aggregate(positions, fp(100_000))
	require.NotNil(t, m)

	// -0.3 * -2 * 100 = 60 deltas; beta-weighted 72.
	assert.InDelta(t, 60, m.TotalDelta, 1e-9)
	assert.InDelta(t, 72, m.BetaWeightedDelta, 1e-9)
	assert.InDelta(t, -4, m.TotalGamma, 1e-9)
	assert.InDelta(t, -10, m.TotalTheta, 1e-9)
	assert.InDelta(t, -20, m.TotalVega, 1e-9)
	assert.InDelta(t, 1000, m.EquityExposure, 1e-9)

	require.NotNil(t, m.BetaWeightedDeltaPct)
	assert.InDelta(t, 72.0/100_000, *m.BetaWeightedDeltaPct, 1e-12)
	require.NotNil(t, m.ThetaGammaRatio)
	assert.InDelta(t, 2.5, *m.ThetaGammaRatio, 1e-9)
}

func TestAggregate_NoNLVSkipsPercentMetrics(t *testing.T) {
	a := NewMetricAggregator(nil, zerolog.Nop())

	m := a.Aggregate([]domain.Position{
		{ID: "s1", Kind: domain.AssetKindEquity, Quantity: 10, CurrentPrice: fp(5)},
	}, nil)

	assert.Nil(t, m.BetaWeightedDeltaPct)
	assert.Nil(t, m.GammaPct)
	assert.Nil(t, m.ThetaPct)
	assert.Nil(t, m.VegaPct)
}

func TestConcentrationHHI_TwoUnderlyings(t *testing.T) {
	// 600 vs 400 of exposure: shares 0.6/0.4, HHI 0.36+0.16 = 0.52.
	positions := []domain.Position{
		{ID: "a", Underlying: "AAA", Kind: domain.AssetKindEquity, Quantity: 6, CurrentPrice: fp(100)},
		{ID: "b", Underlying: "BBB", Kind: domain.AssetKindEquity, Quantity: 4, CurrentPrice: fp(100)},
	}

	hhi := concentrationHHI(positions)
	require.NotNil(t, hhi)
	assert.InDelta(t, 0.52, *hhi, 1e-9)
}

func TestConcentrationHHI_GroupsOptionsByUnderlying(t *testing.T) {
	// Two contracts on the same name are one concentration bucket.
	opt := func(id string, delta float64) domain.Position {
		return domain.Position{
			ID: id, Underlying: "XYZ", Kind: domain.AssetKindOption,
			OptionType: domain.OptionTypePut, Quantity: -1,
			UnderlyingPrice: fp(100),
			Greeks:          domain.Greeks{Delta: fp(delta)},
		}
	}

	hhi := concentrationHHI([]domain.Position{opt("a", -0.3), opt("b", -0.2)})
	require.NotNil(t, hhi)
	assert.InDelta(t, 1.0, *hhi, 1e-9, "single underlying is maximal concentration")
}

func TestConcentrationHHI_NoExposure(t *testing.T) {
	assert.Nil(t, concentrationHHI(nil))
	assert.Nil(t, concentrationHHI([]domain.Position{
		{ID: "a", Kind: domain.AssetKindOption, Quantity: -1}, // no delta, no price
	}))
}

func TestVegaWeightedIVHV(t *testing.T) {
	mk := func(id string, iv, hv, vega float64) domain.Position {
		return domain.Position{
			ID: id, Kind: domain.AssetKindOption, OptionType: domain.OptionTypePut,
			Quantity: -1, IV: fp(iv), HV: fp(hv),
			Greeks: domain.Greeks{Vega: fp(vega)},
		}
	}

	// Ratios 1.5 (weight 300) and 1.0 (weight 100): mean 1.375.
	v := vegaWeightedIVHV([]domain.Position{
		mk("a", 0.45, 0.30, 3.0),
		mk("b", 0.30, 0.30, 1.0),
	})
	require.NotNil(t, v)
	assert.InDelta(t, 1.375, *v, 1e-9)

	// Positions without usable ratios contribute nothing.
	assert.Nil(t, vegaWeightedIVHV([]domain.Position{mk("c", 0.4, 0, 2.0)}))
}

func TestFillCapitalRatios(t *testing.T) {
	a := NewMetricAggregator(stubPricing{price: 5.0}, zerolog.Nop())

	cap := &domain.CapitalSnapshot{
		NetLiquidation:    10_000,
		CashBalance:       2_000,
		MaintenanceMargin: 3_000,
	}
	positions := []domain.Position{
		{
			ID: "p1", Kind: domain.AssetKindOption, OptionType: domain.OptionTypePut,
			Quantity: -1, Strike: fp(90), CurrentPrice: fp(2.0), UnderlyingPrice: fp(100),
		},
		{ID: "s1", Kind: domain.AssetKindEquity, Quantity: 100, CurrentPrice: fp(50)},
	}

	a.FillCapitalRatios(cap, positions)

	require.NotNil(t, cap.MarginUtilization)
	assert.InDelta(t, 0.30, *cap.MarginUtilization, 1e-9)
	require.NotNil(t, cap.CashRatio)
	assert.InDelta(t, 0.20, *cap.CashRatio, 1e-9)

	// Gross notional: 90*100*1 + 100*50 = 14000 -> leverage 1.4.
	require.NotNil(t, cap.GrossLeverage)
	assert.InDelta(t, 1.4, *cap.GrossLeverage, 1e-9)

	// Stress: option (5.0-2.0)*-1*100 = -300, equity 5000*-0.15 = -750,
	// total -1050 on 10000 NLV.
	require.NotNil(t, cap.StressTestLoss)
	assert.InDelta(t, 0.105, *cap.StressTestLoss, 1e-9)
}

func TestFillCapitalRatios_NonPositiveNLV(t *testing.T) {
	a := NewMetricAggregator(nil, zerolog.Nop())
	cap := &domain.CapitalSnapshot{NetLiquidation: 0, CashBalance: 100}

	a.FillCapitalRatios(cap, nil)

	assert.Nil(t, cap.MarginUtilization)
	assert.Nil(t, cap.CashRatio)
	assert.Nil(t, cap.GrossLeverage)
	assert.Nil(t, cap.StressTestLoss)
}

func TestStressTestLoss_UnpriceablePositionsSkipped(t *testing.T) {
	a := NewMetricAggregator(stubPricing{err: errors.New("no vol")}, zerolog.Nop())

	cap := &domain.CapitalSnapshot{NetLiquidation: 10_000}
	positions := []domain.Position{
		{
			ID: "p1", Kind: domain.AssetKindOption, OptionType: domain.OptionTypePut,
			Quantity: -1, Strike: fp(90), CurrentPrice: fp(2.0), UnderlyingPrice: fp(100),
		},
	}

	a.FillCapitalRatios(cap, positions)

	// The only position failed to reprice: zero stressed change.
	require.NotNil(t, cap.StressTestLoss)
	assert.InDelta(t, 0.0, *cap.StressTestLoss, 1e-9)
}

func TestStressTestLoss_NilWithoutPricingEngine(t *testing.T) {
	a := NewMetricAggregator(nil, zerolog.Nop())
	cap := &domain.CapitalSnapshot{NetLiquidation: 10_000}

	a.FillCapitalRatios(cap, nil)
	assert.Nil(t, cap.StressTestLoss)
}
