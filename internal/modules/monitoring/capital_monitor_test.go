package monitoring

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsentry/optionsentry/internal/config"
	"github.com/optionsentry/optionsentry/internal/domain"
)

func newTestCapitalMonitor(t *testing.T) *CapitalMonitor {
	t.Helper()
	cfg := config.DefaultMonitorConfig()
	return NewCapitalMonitor(&cfg, zerolog.Nop())
}

func mustFind(t *testing.T, alerts []domain.Alert, kind domain.AlertKind) *domain.Alert {
	t.Helper()
	a := findByKind(alerts, kind)
	require.NotNil(t, a, "expected %s alert", kind)
	return a
}

func TestCapitalMonitor_MarginBreach(t *testing.T) {
	m := newTestCapitalMonitor(t)

	alerts := m.Check(&domain.CapitalSnapshot{
		NetLiquidation:    100_000,
		MarginUtilization: fp(0.75),
	})

	a := mustFind(t, alerts, domain.AlertMarginUtilization)
	assert.Equal(t, domain.AlertLevelRed, a.Level)
	assert.Contains(t, a.Message, "75.0%")
	assert.Contains(t, a.Message, "70%")
	assert.NotEmpty(t, a.SuggestedAction)
}

func TestCapitalMonitor_CashAndLeverageAndStress(t *testing.T) {
	m := newTestCapitalMonitor(t)

	alerts := m.Check(&domain.CapitalSnapshot{
		CashRatio:      fp(0.05), // below 10% floor
		GrossLeverage:  fp(2.5),  // above 2x cap
		StressTestLoss: fp(0.25), // above 20% scenario loss
	})

	assert.Equal(t, domain.AlertLevelRed, mustFind(t, alerts, domain.AlertCashRatio).Level)
	assert.Equal(t, domain.AlertLevelRed, mustFind(t, alerts, domain.AlertGrossLeverage).Level)
	assert.Equal(t, domain.AlertLevelRed, mustFind(t, alerts, domain.AlertStressTestLoss).Level)
}

func TestCapitalMonitor_SharpeBands(t *testing.T) {
	m := newTestCapitalMonitor(t)

	cases := []struct {
		name   string
		sharpe float64
		level  domain.AlertLevel
		silent bool
	}{
		{name: "strong", sharpe: 2.0, level: domain.AlertLevelGreen},
		{name: "mediocre", sharpe: 0.0, level: domain.AlertLevelYellow},
		{name: "negative", sharpe: -1.0, level: domain.AlertLevelRed},
		{name: "band edge stays yellow", sharpe: -0.5, level: domain.AlertLevelYellow},
		{name: "between bands is silent", sharpe: 1.0, silent: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			alerts := m.Check(&domain.CapitalSnapshot{SharpeRatio: fp(tc.sharpe)})
			if tc.silent {
				assert.Empty(t, alerts)
				return
			}
			a := mustFind(t, alerts, domain.AlertSharpe)
			assert.Equal(t, tc.level, a.Level)
		})
	}
}

func TestCapitalMonitor_KellyLowSideIsOpportunity(t *testing.T) {
	m := newTestCapitalMonitor(t)

	alerts := m.Check(&domain.CapitalSnapshot{KellyUsage: fp(0.20)})

	a := mustFind(t, alerts, domain.AlertKellyUsage)
	assert.Equal(t, domain.AlertLevelGreen, a.Level)
	assert.Contains(t, a.Message, "room to add exposure")
}

func TestCapitalMonitor_KellyUpperBands(t *testing.T) {
	m := newTestCapitalMonitor(t)

	alerts := m.Check(&domain.CapitalSnapshot{KellyUsage: fp(0.85)})
	assert.Equal(t, domain.AlertLevelRed, mustFind(t, alerts, domain.AlertKellyUsage).Level)

	alerts = m.Check(&domain.CapitalSnapshot{KellyUsage: fp(0.70)})
	assert.Equal(t, domain.AlertLevelYellow, mustFind(t, alerts, domain.AlertKellyUsage).Level)

	// 0.30..0.60 sits between all bands: no alert.
	alerts = m.Check(&domain.CapitalSnapshot{KellyUsage: fp(0.45)})
	assert.Empty(t, alerts)
}

func TestCapitalMonitor_NilMetricsSkipped(t *testing.T) {
	m := newTestCapitalMonitor(t)

	assert.Empty(t, m.Check(&domain.CapitalSnapshot{NetLiquidation: 50_000}))
	assert.Nil(t, m.Check(nil))
}

func TestEvalCapitalBand_SilentBranchEmitsNoAlert(t *testing.T) {
	pol := config.CapitalBandPolicy{
		GreenBelow: fp(0.30),
		// GreenLowMessage intentionally empty: band fires but stays silent.
	}

	a := evalCapitalBand(domain.AlertKellyUsage, fp(0.10), pol, true)
	require.Nil(t, a)
}

func TestEvalCapitalBand_RedCutsGreen(t *testing.T) {
	pol := config.CapitalBandPolicy{
		RedAbove:         fp(0.80),
		GreenAbove:       fp(0.50),
		RedMessage:       "usage {value} above {threshold}",
		GreenHighMessage: "usage {value} fine",
	}

	a := evalCapitalBand(domain.AlertKellyUsage, fp(0.90), pol, true)
	require.NotNil(t, a)
	assert.Equal(t, domain.AlertLevelRed, a.Level)
	assert.Equal(t, "usage 90.0% above 80%", a.Message)
}
