package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeThresholdFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultMonitorConfigValidates(t *testing.T) {
	cfg := DefaultMonitorConfig()
	require.NoError(t, cfg.Validate())
}

func TestLoadMonitorConfig_NoPathUsesDefaults(t *testing.T) {
	cfg, err := LoadMonitorConfig("")
	require.NoError(t, err)

	require.NotNil(t, cfg.Position.DeltaAbs.RedAbove)
	assert.InDelta(t, 0.45, *cfg.Position.DeltaAbs.RedAbove, 1e-12)
	assert.Equal(t, 35, cfg.Roll.IdealDTE)
}

func TestLoadMonitorConfig_OverlayReplacesKeys(t *testing.T) {
	path := writeThresholdFile(t, `
position:
  delta_abs:
    green_low: 0
    green_high: 0.25
    yellow_low: 0.25
    yellow_high: 0.40
    red_above: 0.40
    yellow_message: "delta {value} drifting"
    red_message: "delta {value} above {threshold}"
roll:
  ideal_dte: 40
`)

	cfg, err := LoadMonitorConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Position.DeltaAbs.RedAbove)
	assert.InDelta(t, 0.40, *cfg.Position.DeltaAbs.RedAbove, 1e-12)
	assert.Equal(t, 40, cfg.Roll.IdealDTE)

	// Untouched keys keep their defaults.
	require.NotNil(t, cfg.Position.Gamma.RedAbove)
	assert.InDelta(t, 0.10, *cfg.Position.Gamma.RedAbove, 1e-12)
	assert.Equal(t, 25, cfg.Roll.MinDTE)
}

func TestLoadMonitorConfig_InfUpperBound(t *testing.T) {
	path := writeThresholdFile(t, `
position:
  moneyness:
    green_low: 0.04
    green_high: .inf
    yellow_low: 0.02
    yellow_high: 0.04
    red_below: 0.02
    red_message: "distance {value} below {threshold}"
`)

	cfg, err := LoadMonitorConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Position.Moneyness.GreenHigh)
	assert.True(t, math.IsInf(*cfg.Position.Moneyness.GreenHigh, 1))
}

func TestLoadMonitorConfig_RejectsInvertedBand(t *testing.T) {
	path := writeThresholdFile(t, `
position:
  delta_abs:
    green_low: 0.40
    green_high: 0.20
`)

	_, err := LoadMonitorConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delta_abs")
	assert.Contains(t, err.Error(), "inverted")
}

func TestLoadMonitorConfig_RejectsGreenRedOverlap(t *testing.T) {
	path := writeThresholdFile(t, `
capital:
  margin_utilization:
    green_low: 0
    green_high: 0.80
    red_above: 0.70
`)

	_, err := LoadMonitorConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capital.margin")
}

func TestLoadMonitorConfig_RejectsBadRollOrder(t *testing.T) {
	path := writeThresholdFile(t, `
roll:
  ideal_dte: 50
  min_dte: 25
  max_dte: 45
`)

	_, err := LoadMonitorConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roll")
}

func TestLoadMonitorConfig_MissingFile(t *testing.T) {
	_, err := LoadMonitorConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestPositionPolicyOverride_ApplyReplacesWholePolicy(t *testing.T) {
	base := DefaultMonitorConfig().Position

	override := PositionPolicyOverride{
		DeltaAbs: &ThresholdPolicy{
			RedAbove:   fp(0.60),
			RedMessage: "delta {value} above {threshold}",
		},
	}
	merged := override.Apply(base)

	// Replacement is total: bands absent from the override are gone,
	// not inherited from the base policy.
	require.NotNil(t, merged.DeltaAbs.RedAbove)
	assert.InDelta(t, 0.60, *merged.DeltaAbs.RedAbove, 1e-12)
	assert.Nil(t, merged.DeltaAbs.GreenLow)
	assert.Nil(t, merged.DeltaAbs.YellowLow)

	// Untouched policies pass through unchanged.
	require.NotNil(t, merged.Moneyness.RedBelow)
	assert.InDelta(t, 0.02, *merged.Moneyness.RedBelow, 1e-12)
}

func TestPositionPoliciesFor(t *testing.T) {
	cfg := DefaultMonitorConfig()

	covered := cfg.PositionPoliciesFor("covered_call")
	require.NotNil(t, covered.Moneyness.RedBelow)
	assert.InDelta(t, -0.02, *covered.Moneyness.RedBelow, 1e-12)
	require.NotNil(t, covered.DeltaAbs.RedAbove)
	assert.InDelta(t, 0.60, *covered.DeltaAbs.RedAbove, 1e-12)

	base := cfg.PositionPoliciesFor("cash_secured_put")
	require.NotNil(t, base.Moneyness.RedBelow)
	assert.InDelta(t, 0.02, *base.Moneyness.RedBelow, 1e-12)
}

func TestValidate_StrategyOverrideIsChecked(t *testing.T) {
	cfg := DefaultMonitorConfig()
	cfg.StrategyOverrides["broken"] = PositionPolicyOverride{
		Gamma: &ThresholdPolicy{GreenLow: fp(0.10), GreenHigh: fp(0.05)},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strategy_overrides.broken.gamma")
}

func TestValidate_NegativeHysteresis(t *testing.T) {
	cfg := DefaultMonitorConfig()
	cfg.Portfolio.HHI.Hysteresis = -0.01

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hysteresis")
}
