package suggestions

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsentry/optionsentry/internal/domain"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	return NewGenerator(zerolog.Nop())
}

func result(alerts ...domain.Alert) *domain.MonitorResult {
	return &domain.MonitorResult{Alerts: alerts}
}

func TestGenerate_OneSuggestionPerPosition(t *testing.T) {
	g := newTestGenerator(t)

	r := result(
		domain.Alert{PositionID: "p1", Symbol: "XYZ", Kind: domain.AlertDeltaAbs, Level: domain.AlertLevelYellow, Message: "delta drifting"},
		domain.Alert{PositionID: "p1", Symbol: "XYZ", Kind: domain.AlertMoneyness, Level: domain.AlertLevelRed, Message: "assignment risk"},
	)

	got := g.Generate(r, nil, nil)

	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].PositionID)
	assert.Equal(t, domain.UrgencySoon, got[0].Urgency)
	assert.Equal(t, "assignment risk", got[0].Reason, "the worst alert wins")
}

func TestGenerate_PortfolioAlertsProduceNoSuggestion(t *testing.T) {
	g := newTestGenerator(t)

	r := result(domain.Alert{Kind: domain.AlertConcentration, Level: domain.AlertLevelRed, Message: "concentrated"})
	assert.Empty(t, g.Generate(r, nil, nil))
}

func TestGenerate_GreenAlertsSkippedExceptTakeProfit(t *testing.T) {
	g := newTestGenerator(t)

	r := result(
		domain.Alert{PositionID: "p1", Kind: domain.AlertIVHV, Level: domain.AlertLevelGreen, Message: "premium rich"},
		domain.Alert{PositionID: "p2", Kind: domain.AlertPnL, Level: domain.AlertLevelGreen, Message: "take-profit level reached"},
	)

	got := g.Generate(r, nil, nil)

	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].PositionID)
	assert.Equal(t, "Close and take profit", got[0].Action)
}

func TestGenerate_UrgencyEscalation(t *testing.T) {
	g := newTestGenerator(t)

	positions := []domain.Position{
		{ID: "expiring", DTE: ip(2)},
		{ID: "calm", DTE: ip(30)},
	}

	r := result(
		domain.Alert{PositionID: "expiring", Kind: domain.AlertMoneyness, Level: domain.AlertLevelRed, Message: "itm"},
		domain.Alert{PositionID: "calm", Kind: domain.AlertMoneyness, Level: domain.AlertLevelRed, Message: "itm"},
		domain.Alert{PositionID: "watch", Kind: domain.AlertDeltaAbs, Level: domain.AlertLevelYellow, Message: "drift"},
	)

	got := g.Generate(r, positions, nil)
	require.Len(t, got, 3)

	// Ranked immediate > soon > monitor.
	assert.Equal(t, "expiring", got[0].PositionID)
	assert.Equal(t, domain.UrgencyImmediate, got[0].Urgency)
	assert.Equal(t, "calm", got[1].PositionID)
	assert.Equal(t, domain.UrgencySoon, got[1].Urgency)
	assert.Equal(t, "watch", got[2].PositionID)
	assert.Equal(t, domain.UrgencyMonitor, got[2].Urgency)
}

func TestGenerate_HighVIXEscalatesReds(t *testing.T) {
	g := newTestGenerator(t)

	r := result(domain.Alert{PositionID: "p1", Kind: domain.AlertMoneyness, Level: domain.AlertLevelRed, Message: "itm"})

	calm := g.Generate(r, nil, fp(18))
	require.Len(t, calm, 1)
	assert.Equal(t, domain.UrgencySoon, calm[0].Urgency)

	fast := g.Generate(r, nil, fp(35))
	require.Len(t, fast, 1)
	assert.Equal(t, domain.UrgencyImmediate, fast[0].Urgency)
	assert.Contains(t, fast[0].Reason, "VIX 35.0")
}

func TestGenerate_GammaNearExpiryIsImmediate(t *testing.T) {
	g := newTestGenerator(t)

	r := result(domain.Alert{PositionID: "p1", Kind: domain.AlertGammaNearExpiry, Level: domain.AlertLevelRed, Message: "gamma spike"})

	got := g.Generate(r, nil, nil)
	require.Len(t, got, 1)
	assert.Equal(t, domain.UrgencyImmediate, got[0].Urgency)
	assert.Equal(t, "Roll out in time", got[0].Action)
}

func TestGenerate_ConfiguredActionWins(t *testing.T) {
	g := newTestGenerator(t)

	r := result(domain.Alert{
		PositionID:      "p1",
		Kind:            domain.AlertMoneyness,
		Level:           domain.AlertLevelRed,
		Message:         "itm",
		SuggestedAction: "Roll down and out",
	})

	got := g.Generate(r, nil, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "Roll down and out", got[0].Action)
}

func TestGenerate_NilResult(t *testing.T) {
	g := newTestGenerator(t)
	assert.Nil(t, g.Generate(nil, nil, nil))
}
