package monitoring

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optionsentry/optionsentry/internal/config"
	"github.com/optionsentry/optionsentry/internal/domain"
)

// stubSuggestions records the result it was handed and returns a canned
// suggestion list.
type stubSuggestions struct {
	got *domain.MonitorResult
	out []domain.Suggestion
}

func (s *stubSuggestions) Generate(result *domain.MonitorResult, _ []domain.Position, _ *float64) []domain.Suggestion {
	s.got = result
	return s.out
}

func newTestPipeline(t *testing.T, suggestions domain.SuggestionGenerator) *Pipeline {
	t.Helper()
	cfg := config.DefaultMonitorConfig()
	return NewPipeline(&cfg, nil, NewDeltaHistory(""), suggestions, zerolog.Nop())
}

func TestPipeline_EmptyCycleIsGreen(t *testing.T) {
	p := newTestPipeline(t, nil)

	result := p.Run(nil, nil, nil, nil)

	require.NotNil(t, result)
	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.Timestamp.IsZero())
	assert.Equal(t, domain.AlertLevelGreen, result.Status)
	assert.Empty(t, result.Alerts)
	assert.Nil(t, result.Metrics)
	assert.Zero(t, result.PositionsAtRisk)
}

func TestPipeline_StatusIsWorstAlert(t *testing.T) {
	p := newTestPipeline(t, nil)

	// An at-the-money short put fires red on moneyness.
	result := p.Run([]domain.Position{shortPut("p1", 100, 100)}, nil, nil, nil)

	assert.Equal(t, domain.AlertLevelRed, result.Status)
	assert.Equal(t, 1, result.PositionsAtRisk)
	require.NotNil(t, result.Metrics)
}

func TestPipeline_CapitalOnlyCycle(t *testing.T) {
	p := newTestPipeline(t, nil)

	capital := &domain.CapitalSnapshot{
		NetLiquidation:    100_000,
		MaintenanceMargin: 75_000,
	}
	result := p.Run(nil, capital, nil, nil)

	// FillCapitalRatios ran even with no positions.
	require.NotNil(t, capital.MarginUtilization)
	assert.InDelta(t, 0.75, *capital.MarginUtilization, 1e-9)

	a := mustFind(t, result.Alerts, domain.AlertMarginUtilization)
	assert.Equal(t, domain.AlertLevelRed, a.Level)
	assert.Equal(t, domain.AlertLevelRed, result.Status)
	assert.Zero(t, result.PositionsAtRisk, "capital alerts carry no position id")
}

func TestPipeline_NLVFallsBackToCapitalSnapshot(t *testing.T) {
	p := newTestPipeline(t, nil)

	pos := shortPut("p1", 90, 100)
	pos.Greeks.Delta = fp(-0.30)
	capital := &domain.CapitalSnapshot{NetLiquidation: 50_000}

	result := p.Run([]domain.Position{pos}, capital, nil, nil)

	require.NotNil(t, result.Metrics)
	assert.NotNil(t, result.Metrics.BetaWeightedDeltaPct, "normalization uses the snapshot NLV")
}

func TestPipeline_ExplicitNLVOverridesSnapshot(t *testing.T) {
	p := newTestPipeline(t, nil)

	pos := shortPut("p1", 90, 100)
	pos.Greeks.Delta = fp(-0.30)
	capital := &domain.CapitalSnapshot{NetLiquidation: 50_000}

	withOverride := p.Run([]domain.Position{pos}, capital, nil, fp(100_000))
	withSnapshot := p.Run([]domain.Position{pos}, capital, nil, nil)

	require.NotNil(t, withOverride.Metrics.BetaWeightedDeltaPct)
	require.NotNil(t, withSnapshot.Metrics.BetaWeightedDeltaPct)
	assert.InDelta(t, *withSnapshot.Metrics.BetaWeightedDeltaPct,
		*withOverride.Metrics.BetaWeightedDeltaPct*2, 1e-12)
}

func TestPipeline_SuggestionsAttached(t *testing.T) {
	stub := &stubSuggestions{out: []domain.Suggestion{{PositionID: "p1", Action: "Roll"}}}
	p := newTestPipeline(t, stub)

	result := p.Run([]domain.Position{shortPut("p1", 100, 100)}, nil, nil, nil)

	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "Roll", result.Suggestions[0].Action)
	assert.Same(t, result, stub.got, "generator sees the assembled result")
}

func TestCountFlaggedPositions(t *testing.T) {
	alerts := []domain.Alert{
		{PositionID: "a", Level: domain.AlertLevelRed},
		{PositionID: "a", Level: domain.AlertLevelRed}, // same position counted once
		{PositionID: "b", Level: domain.AlertLevelGreen},
		{PositionID: "", Level: domain.AlertLevelRed}, // portfolio-level, ignored
		{PositionID: "c", Level: domain.AlertLevelYellow},
	}

	atRisk, opportunity := countFlaggedPositions(alerts)
	assert.Equal(t, 1, atRisk)
	assert.Equal(t, 1, opportunity)
}
