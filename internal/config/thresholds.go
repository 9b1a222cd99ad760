package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ThresholdPolicy is one declarative green/yellow/red rule for a metric.
//
// All bounds are optional. Evaluation precedence is strict: red_above, then
// red_below, then the green interval (lower bound inclusive, an infinite
// upper bound means "value >= lower" qualifies), then yellow as fallback.
// Open bounds are written as .inf / -.inf in YAML documents.
//
// Hysteresis is a margin for callers doing temporal smoothing across cycles;
// the evaluator itself does not consume it.
type ThresholdPolicy struct {
	GreenLow   *float64 `yaml:"green_low,omitempty"`
	GreenHigh  *float64 `yaml:"green_high,omitempty"`
	YellowLow  *float64 `yaml:"yellow_low,omitempty"`
	YellowHigh *float64 `yaml:"yellow_high,omitempty"`
	RedAbove   *float64 `yaml:"red_above,omitempty"`
	RedBelow   *float64 `yaml:"red_below,omitempty"`
	Hysteresis float64  `yaml:"hysteresis,omitempty"`

	GreenMessage  string `yaml:"green_message,omitempty"`
	YellowMessage string `yaml:"yellow_message,omitempty"`
	RedMessage    string `yaml:"red_message,omitempty"`
	GreenAction   string `yaml:"green_action,omitempty"`
	YellowAction  string `yaml:"yellow_action,omitempty"`
	RedAction     string `yaml:"red_action,omitempty"`
}

// MessageFor returns the message and action templates for the branch that
// fired. An empty message means the branch is not noteworthy and no alert
// should be emitted for it.
func (p ThresholdPolicy) MessageFor(level string) (message, action string) {
	switch level {
	case "green":
		return p.GreenMessage, p.GreenAction
	case "yellow":
		return p.YellowMessage, p.YellowAction
	case "red":
		return p.RedMessage, p.RedAction
	}
	return "", ""
}

// CapitalBandPolicy is the explicit three-band shape used by Sharpe and
// Kelly usage. Unlike ThresholdPolicy its low side can be GREEN ("room to
// add exposure"), so it must not be folded into the generic evaluator.
type CapitalBandPolicy struct {
	GreenBelow *float64 `yaml:"green_below,omitempty"` // low side = opportunity to add exposure
	GreenAbove *float64 `yaml:"green_above,omitempty"`
	YellowLow  *float64 `yaml:"yellow_low,omitempty"`
	YellowHigh *float64 `yaml:"yellow_high,omitempty"`
	RedAbove   *float64 `yaml:"red_above,omitempty"`
	RedBelow   *float64 `yaml:"red_below,omitempty"`

	GreenLowMessage  string `yaml:"green_low_message,omitempty"`
	GreenHighMessage string `yaml:"green_high_message,omitempty"`
	YellowMessage    string `yaml:"yellow_message,omitempty"`
	RedMessage       string `yaml:"red_message,omitempty"`
}

// GammaTiming holds the near-expiry tightening parameters for the gamma check.
type GammaTiming struct {
	// UrgencyDays: at or below this DTE the red cutoff tightens.
	UrgencyDays int `yaml:"urgency_days"`
	// NearExpiryMultiplier divides the base red cutoff when inside the
	// urgency window (2.0 halves the cutoff).
	NearExpiryMultiplier float64 `yaml:"near_expiry_multiplier"`
	// UrgentRedDays: at or below this DTE a breach escalates to red.
	UrgentRedDays int `yaml:"urgent_red_days"`
}

// PortfolioPolicies are the threshold rules the portfolio monitor runs.
type PortfolioPolicies struct {
	BWDPct       ThresholdPolicy `yaml:"bwd_pct"`
	GammaPct     ThresholdPolicy `yaml:"gamma_pct"`
	ThetaPct     ThresholdPolicy `yaml:"theta_pct"`
	VegaPct      ThresholdPolicy `yaml:"vega_pct"`
	TGR          ThresholdPolicy `yaml:"tgr"`
	HHI          ThresholdPolicy `yaml:"hhi"`
	IVHVQuality  ThresholdPolicy `yaml:"iv_hv_quality"`
}

// PositionPolicies are the per-position threshold rules.
//
// Moneyness and OTMPct carry deliberately distinct cutoffs: moneyness is the
// assignment-risk check the monitor runs, OTMPct is the screening-side view
// of the same distance. They are configured independently and must stay so.
type PositionPolicies struct {
	Moneyness   ThresholdPolicy `yaml:"moneyness"`
	OTMPct      ThresholdPolicy `yaml:"otm_pct"`
	DeltaAbs    ThresholdPolicy `yaml:"delta_abs"`
	DeltaChange ThresholdPolicy `yaml:"delta_change"`
	Gamma       ThresholdPolicy `yaml:"gamma"`
	IVHV        ThresholdPolicy `yaml:"iv_hv"`
	PREI        ThresholdPolicy `yaml:"prei"`
	DTE         ThresholdPolicy `yaml:"dte"`
	PnL         ThresholdPolicy `yaml:"pnl"`
	SAS         ThresholdPolicy `yaml:"sas"`
	TGR         ThresholdPolicy `yaml:"tgr"`

	GammaTiming GammaTiming `yaml:"gamma_timing"`
}

// CapitalPolicies are the account-level threshold rules.
type CapitalPolicies struct {
	MarginUtilization ThresholdPolicy   `yaml:"margin_utilization"`
	CashRatio         ThresholdPolicy   `yaml:"cash_ratio"`
	GrossLeverage     ThresholdPolicy   `yaml:"gross_leverage"`
	StressTestLoss    ThresholdPolicy   `yaml:"stress_test_loss"`
	Sharpe            CapitalBandPolicy `yaml:"sharpe"`
	KellyUsage        CapitalBandPolicy `yaml:"kelly_usage"`
}

// PositionPolicyOverride replaces whole policies for one strategy. A nil
// field keeps the base policy; a set field replaces it entirely (no
// per-bound deep merge).
type PositionPolicyOverride struct {
	Moneyness   *ThresholdPolicy `yaml:"moneyness,omitempty"`
	OTMPct      *ThresholdPolicy `yaml:"otm_pct,omitempty"`
	DeltaAbs    *ThresholdPolicy `yaml:"delta_abs,omitempty"`
	DeltaChange *ThresholdPolicy `yaml:"delta_change,omitempty"`
	Gamma       *ThresholdPolicy `yaml:"gamma,omitempty"`
	IVHV        *ThresholdPolicy `yaml:"iv_hv,omitempty"`
	PREI        *ThresholdPolicy `yaml:"prei,omitempty"`
	DTE         *ThresholdPolicy `yaml:"dte,omitempty"`
	PnL         *ThresholdPolicy `yaml:"pnl,omitempty"`
	SAS         *ThresholdPolicy `yaml:"sas,omitempty"`
	TGR         *ThresholdPolicy `yaml:"tgr,omitempty"`
}

// Apply returns a copy of base with every supplied field replaced.
func (o PositionPolicyOverride) Apply(base PositionPolicies) PositionPolicies {
	out := base
	if o.Moneyness != nil {
		out.Moneyness = *o.Moneyness
	}
	if o.OTMPct != nil {
		out.OTMPct = *o.OTMPct
	}
	if o.DeltaAbs != nil {
		out.DeltaAbs = *o.DeltaAbs
	}
	if o.DeltaChange != nil {
		out.DeltaChange = *o.DeltaChange
	}
	if o.Gamma != nil {
		out.Gamma = *o.Gamma
	}
	if o.IVHV != nil {
		out.IVHV = *o.IVHV
	}
	if o.PREI != nil {
		out.PREI = *o.PREI
	}
	if o.DTE != nil {
		out.DTE = *o.DTE
	}
	if o.PnL != nil {
		out.PnL = *o.PnL
	}
	if o.SAS != nil {
		out.SAS = *o.SAS
	}
	if o.TGR != nil {
		out.TGR = *o.TGR
	}
	return out
}

// RollConfig holds the roll-target DTE parameters.
type RollConfig struct {
	IdealDTE int `yaml:"ideal_dte"`
	MinDTE   int `yaml:"min_dte"`
	MaxDTE   int `yaml:"max_dte"`
}

// MonitorConfig aggregates every threshold policy plus strategy overrides.
type MonitorConfig struct {
	Portfolio PortfolioPolicies `yaml:"portfolio"`
	Position  PositionPolicies  `yaml:"position"`
	Capital   CapitalPolicies   `yaml:"capital"`
	Roll      RollConfig        `yaml:"roll"`

	// StrategyOverrides maps a strategy label (e.g. covered_call) to
	// the position policies it replaces.
	StrategyOverrides map[string]PositionPolicyOverride `yaml:"strategy_overrides,omitempty"`
}

// PositionPoliciesFor returns the position policy set for the given
// strategy, applying the strategy override when one exists.
func (c *MonitorConfig) PositionPoliciesFor(strategy string) PositionPolicies {
	if ov, ok := c.StrategyOverrides[strategy]; ok {
		return ov.Apply(c.Position)
	}
	return c.Position
}

func fp(v float64) *float64 { return &v }

// DefaultMonitorConfig returns the built-in policy set. An explicit YAML
// document overrides these defaults key by key.
func DefaultMonitorConfig() MonitorConfig {
	inf := math.Inf(1)
	return MonitorConfig{
		Portfolio: PortfolioPolicies{
			BWDPct: ThresholdPolicy{
				GreenLow: fp(-0.10), GreenHigh: fp(0.30),
				YellowLow: fp(-0.20), YellowHigh: fp(0.50),
				RedAbove: fp(0.50), RedBelow: fp(-0.20),
				Hysteresis:    0.02,
				YellowMessage: "Beta-weighted delta {value} drifting from target band",
				RedMessage:    "Beta-weighted delta {value} breaches limit {threshold}",
				RedAction:     "Reduce directional exposure",
			},
			GammaPct: ThresholdPolicy{
				GreenLow: fp(-0.02), GreenHigh: fp(inf),
				YellowLow: fp(-0.05), YellowHigh: fp(-0.02),
				RedBelow:      fp(-0.05),
				Hysteresis:    0.005,
				YellowMessage: "Short gamma {value} building up",
				RedMessage:    "Short gamma {value} beyond limit {threshold}",
				RedAction:     "Roll or close the largest short-gamma positions",
			},
			ThetaPct: ThresholdPolicy{
				GreenLow: fp(0.0005), GreenHigh: fp(inf),
				YellowLow: fp(0), YellowHigh: fp(0.0005),
				RedBelow:      fp(0),
				Hysteresis:    0.0001,
				YellowMessage: "Theta income {value} thin for the risk carried",
				RedMessage:    "Negative theta {value}: portfolio pays to wait",
				RedAction:     "Rebuild short-premium exposure",
			},
			VegaPct: ThresholdPolicy{
				GreenLow: fp(-0.05), GreenHigh: fp(inf),
				YellowLow: fp(-0.10), YellowHigh: fp(-0.05),
				RedBelow:      fp(-0.10),
				Hysteresis:    0.01,
				YellowMessage: "Short vega {value} elevated",
				RedMessage:    "Short vega {value} beyond limit {threshold}",
				RedAction:     "Cut vega with closes or long hedges",
			},
			TGR: ThresholdPolicy{
				GreenLow: fp(1.5), GreenHigh: fp(inf),
				YellowLow: fp(0.8), YellowHigh: fp(1.5),
				RedBelow:      fp(0.5),
				Hysteresis:    0.1,
				YellowMessage: "Theta/gamma ratio {value} mediocre",
				RedMessage:    "Theta/gamma ratio {value} below {threshold}: convexity risk not paid for",
				RedAction:     "Roll positions out in time",
			},
			HHI: ThresholdPolicy{
				GreenLow: fp(0), GreenHigh: fp(0.30),
				YellowLow: fp(0.30), YellowHigh: fp(0.50),
				RedAbove:      fp(0.50),
				Hysteresis:    0.05,
				YellowMessage: "Underlying concentration HHI {value} rising",
				RedMessage:    "Underlying concentration HHI {value} above {threshold}",
				RedAction:     "Diversify across more underlyings",
			},
			IVHVQuality: ThresholdPolicy{
				GreenLow: fp(1.2), GreenHigh: fp(inf),
				YellowLow: fp(0.9), YellowHigh: fp(1.2),
				RedBelow:      fp(0.8),
				Hysteresis:    0.05,
				GreenMessage:  "Vega-weighted IV/HV {value}: premium rich",
				YellowMessage: "Vega-weighted IV/HV {value}: premium fair",
				RedMessage:    "Vega-weighted IV/HV {value}: selling cheap volatility",
			},
		},
		Position: PositionPolicies{
			Moneyness: ThresholdPolicy{
				GreenLow: fp(0.05), GreenHigh: fp(inf),
				YellowLow: fp(0.02), YellowHigh: fp(0.05),
				RedBelow:      fp(0.02),
				Hysteresis:    0.005,
				YellowMessage: "Strike distance {value} shrinking",
				RedMessage:    "Strike distance {value} below {threshold}: assignment risk",
				RedAction:     "Roll strike away from the money",
			},
			OTMPct: ThresholdPolicy{
				GreenLow: fp(0.08), GreenHigh: fp(inf),
				YellowLow: fp(0.03), YellowHigh: fp(0.08),
				RedBelow:   fp(0.03),
				Hysteresis: 0.01,
			},
			DeltaAbs: ThresholdPolicy{
				GreenLow: fp(0), GreenHigh: fp(0.30),
				YellowLow: fp(0.30), YellowHigh: fp(0.45),
				RedAbove:      fp(0.45),
				Hysteresis:    0.02,
				YellowMessage: "|Delta| {value} drifting up",
				RedMessage:    "|Delta| {value} above {threshold}",
				RedAction:     "Roll to a lower-delta strike",
			},
			DeltaChange: ThresholdPolicy{
				GreenLow: fp(0), GreenHigh: fp(0.10),
				YellowLow: fp(0.10), YellowHigh: fp(0.20),
				RedAbove:      fp(0.20),
				Hysteresis:    0.02,
				YellowMessage: "Delta moved {value} since last cycle",
				RedMessage:    "Delta moved {value} since last cycle (limit {threshold})",
				RedAction:     "Re-examine the position before the move extends",
			},
			Gamma: ThresholdPolicy{
				GreenLow: fp(0), GreenHigh: fp(0.05),
				YellowLow: fp(0.05), YellowHigh: fp(0.10),
				RedAbove:      fp(0.10),
				Hysteresis:    0.01,
				YellowMessage: "|Gamma| {value} elevated",
				RedMessage:    "|Gamma| {value} above {threshold}",
				RedAction:     "Roll out in time to shed gamma",
			},
			IVHV: ThresholdPolicy{
				// Two-sided: below yellow_high degrades the premium edge,
				// at or above green_low signals quality.
				GreenLow:      fp(1.3),
				YellowHigh:    fp(0.9),
				Hysteresis:    0.05,
				GreenMessage:  "IV/HV {value}: rich premium on this contract",
				YellowMessage: "IV/HV {value}: premium edge degraded",
			},
			PREI: ThresholdPolicy{
				GreenLow: fp(0), GreenHigh: fp(60),
				YellowLow: fp(60), YellowHigh: fp(75),
				RedAbove:      fp(75),
				Hysteresis:    2,
				YellowMessage: "PREI {value} elevated",
				RedMessage:    "PREI {value} above {threshold}",
				RedAction:     "Reduce or hedge this position",
			},
			DTE: ThresholdPolicy{
				RedBelow:      fp(7),
				YellowHigh:    fp(14),
				Hysteresis:    1,
				YellowMessage: "{value} days to expiry: plan the roll",
				RedMessage:    "{value} days to expiry: roll now",
				RedAction:     "Roll to the next monthly cycle",
			},
			PnL: ThresholdPolicy{
				GreenLow:      fp(0.50),
				RedBelow:      fp(-1.0),
				Hysteresis:    0.05,
				GreenMessage:  "Unrealized P&L {value}: take-profit level reached",
				GreenAction:   "Close and redeploy the capital",
				RedMessage:    "Unrealized P&L {value} beyond stop-loss {threshold}",
				RedAction:     "Close or roll to cap the loss",
			},
			SAS: ThresholdPolicy{
				GreenLow: fp(70), GreenHigh: fp(inf),
				YellowLow: fp(50), YellowHigh: fp(70),
				RedBelow:      fp(40),
				Hysteresis:    2,
				GreenMessage:  "SAS {value}: strong setup",
				YellowMessage: "SAS {value}: setup weakening",
				RedMessage:    "SAS {value} below {threshold}",
			},
			TGR: ThresholdPolicy{
				// One-sided: yellow only, below yellow_low.
				YellowLow:     fp(0.5),
				Hysteresis:    0.05,
				YellowMessage: "Position theta/gamma {value}: decay no longer pays for convexity",
			},
			GammaTiming: GammaTiming{
				UrgencyDays:          7,
				NearExpiryMultiplier: 2.0,
				UrgentRedDays:        3,
			},
		},
		Capital: CapitalPolicies{
			MarginUtilization: ThresholdPolicy{
				GreenLow: fp(0), GreenHigh: fp(0.50),
				YellowLow: fp(0.50), YellowHigh: fp(0.70),
				RedAbove:      fp(0.70),
				Hysteresis:    0.02,
				YellowMessage: "Margin utilization {value} climbing",
				RedMessage:    "Margin utilization {value} above {threshold}",
				RedAction:     "Free margin by closing positions",
			},
			CashRatio: ThresholdPolicy{
				GreenLow: fp(0.20), GreenHigh: fp(inf),
				YellowLow: fp(0.10), YellowHigh: fp(0.20),
				RedBelow:      fp(0.10),
				Hysteresis:    0.02,
				YellowMessage: "Cash ratio {value} thinning",
				RedMessage:    "Cash ratio {value} below {threshold}",
				RedAction:     "Raise cash before adding risk",
			},
			GrossLeverage: ThresholdPolicy{
				GreenLow: fp(0), GreenHigh: fp(1.5),
				YellowLow: fp(1.5), YellowHigh: fp(2.0),
				RedAbove:      fp(2.0),
				Hysteresis:    0.1,
				YellowMessage: "Gross leverage {value} elevated",
				RedMessage:    "Gross leverage {value} above {threshold}",
				RedAction:     "Deleverage",
			},
			StressTestLoss: ThresholdPolicy{
				GreenLow: fp(0), GreenHigh: fp(0.10),
				YellowLow: fp(0.10), YellowHigh: fp(0.20),
				RedAbove:      fp(0.20),
				Hysteresis:    0.02,
				YellowMessage: "Stress loss {value} of NLV in the -15%/+40% vol scenario",
				RedMessage:    "Stress loss {value} above {threshold}",
				RedAction:     "Cut tail exposure",
			},
			Sharpe: CapitalBandPolicy{
				GreenAbove: fp(1.5),
				YellowLow:  fp(-0.5), YellowHigh: fp(0.5),
				RedBelow:         fp(-0.5),
				GreenHighMessage: "Sharpe {value}: strategy efficiency strong",
				YellowMessage:    "Sharpe {value}: efficiency mediocre",
				RedMessage:       "Sharpe {value}: negative risk-adjusted return",
			},
			KellyUsage: CapitalBandPolicy{
				GreenBelow: fp(0.30),
				YellowLow:  fp(0.60), YellowHigh: fp(0.80),
				RedAbove:        fp(0.80),
				GreenLowMessage: "Kelly usage {value}: room to add exposure",
				YellowMessage:   "Kelly usage {value} elevated",
				RedMessage:      "Kelly usage {value} above {threshold}: oversized",
			},
		},
		Roll: RollConfig{
			IdealDTE: 35,
			MinDTE:   25,
			MaxDTE:   45,
		},
		StrategyOverrides: map[string]PositionPolicyOverride{
			// The long-stock leg buffers assignment risk, so covered calls
			// tolerate closer strikes, higher delta and shorter DTE.
			"covered_call": {
				Moneyness: &ThresholdPolicy{
					GreenLow: fp(0.02), GreenHigh: fp(inf),
					YellowLow: fp(0.0), YellowHigh: fp(0.02),
					RedBelow:      fp(-0.02),
					Hysteresis:    0.005,
					YellowMessage: "Covered call near the money ({value})",
					RedMessage:    "Covered call {value} in the money",
					RedAction:     "Roll up and out or accept assignment",
				},
				OTMPct: &ThresholdPolicy{
					GreenLow: fp(0.03), GreenHigh: fp(inf),
					YellowLow: fp(0.0), YellowHigh: fp(0.03),
					RedBelow:   fp(0.0),
					Hysteresis: 0.005,
				},
				DeltaAbs: &ThresholdPolicy{
					GreenLow: fp(0), GreenHigh: fp(0.45),
					YellowLow: fp(0.45), YellowHigh: fp(0.60),
					RedAbove:      fp(0.60),
					Hysteresis:    0.02,
					YellowMessage: "Covered-call |delta| {value} drifting up",
					RedMessage:    "Covered-call |delta| {value} above {threshold}",
					RedAction:     "Roll up and out",
				},
				DTE: &ThresholdPolicy{
					RedBelow:      fp(3),
					YellowHigh:    fp(7),
					Hysteresis:    1,
					YellowMessage: "{value} days to expiry on covered call",
					RedMessage:    "{value} days to expiry: roll or deliver",
					RedAction:     "Roll to the next cycle",
				},
			},
		},
	}
}

// LoadMonitorConfig returns the built-in defaults overlaid with the YAML
// document at path, when path is non-empty. Keys present in the document
// replace the corresponding default; everything else keeps its default.
func LoadMonitorConfig(path string) (*MonitorConfig, error) {
	cfg := DefaultMonitorConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read threshold config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse threshold config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid threshold configuration: %w", err)
	}
	return &cfg, nil
}

// Validate rejects ambiguous policies at load time so the evaluator never
// has to deal with overlapping red/green bands.
func (c *MonitorConfig) Validate() error {
	named := map[string]ThresholdPolicy{
		"portfolio.bwd_pct":        c.Portfolio.BWDPct,
		"portfolio.gamma_pct":      c.Portfolio.GammaPct,
		"portfolio.theta_pct":      c.Portfolio.ThetaPct,
		"portfolio.vega_pct":       c.Portfolio.VegaPct,
		"portfolio.tgr":            c.Portfolio.TGR,
		"portfolio.hhi":            c.Portfolio.HHI,
		"portfolio.iv_hv_quality":  c.Portfolio.IVHVQuality,
		"position.moneyness":       c.Position.Moneyness,
		"position.otm_pct":         c.Position.OTMPct,
		"position.delta_abs":       c.Position.DeltaAbs,
		"position.delta_change":    c.Position.DeltaChange,
		"position.gamma":           c.Position.Gamma,
		"position.iv_hv":           c.Position.IVHV,
		"position.prei":            c.Position.PREI,
		"position.dte":             c.Position.DTE,
		"position.pnl":             c.Position.PnL,
		"position.sas":             c.Position.SAS,
		"position.tgr":             c.Position.TGR,
		"capital.margin":           c.Capital.MarginUtilization,
		"capital.cash_ratio":       c.Capital.CashRatio,
		"capital.gross_leverage":   c.Capital.GrossLeverage,
		"capital.stress_test_loss": c.Capital.StressTestLoss,
	}
	for name, p := range named {
		if err := validatePolicy(p); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	for strategy, ov := range c.StrategyOverrides {
		merged := ov.Apply(c.Position)
		for name, p := range map[string]ThresholdPolicy{
			"moneyness": merged.Moneyness, "otm_pct": merged.OTMPct,
			"delta_abs": merged.DeltaAbs, "delta_change": merged.DeltaChange,
			"gamma": merged.Gamma, "iv_hv": merged.IVHV, "prei": merged.PREI,
			"dte": merged.DTE, "pnl": merged.PnL, "sas": merged.SAS, "tgr": merged.TGR,
		} {
			if err := validatePolicy(p); err != nil {
				return fmt.Errorf("strategy_overrides.%s.%s: %w", strategy, name, err)
			}
		}
	}
	if c.Position.GammaTiming.NearExpiryMultiplier <= 0 {
		return fmt.Errorf("position.gamma_timing: near_expiry_multiplier must be positive")
	}
	if c.Roll.MinDTE <= 0 || c.Roll.MaxDTE < c.Roll.MinDTE || c.Roll.IdealDTE < c.Roll.MinDTE || c.Roll.IdealDTE > c.Roll.MaxDTE {
		return fmt.Errorf("roll: need 0 < min_dte <= ideal_dte <= max_dte")
	}
	return nil
}

func validatePolicy(p ThresholdPolicy) error {
	if p.GreenLow != nil && p.GreenHigh != nil && *p.GreenLow > *p.GreenHigh {
		return fmt.Errorf("green interval inverted (%v > %v)", *p.GreenLow, *p.GreenHigh)
	}
	if p.YellowLow != nil && p.YellowHigh != nil && *p.YellowLow > *p.YellowHigh {
		return fmt.Errorf("yellow interval inverted (%v > %v)", *p.YellowLow, *p.YellowHigh)
	}
	if p.RedAbove != nil && p.GreenHigh != nil && !math.IsInf(*p.GreenHigh, 1) && *p.GreenHigh > *p.RedAbove {
		return fmt.Errorf("green interval overlaps red_above (%v > %v)", *p.GreenHigh, *p.RedAbove)
	}
	if p.RedBelow != nil && p.GreenLow != nil && *p.GreenLow < *p.RedBelow {
		return fmt.Errorf("green interval overlaps red_below (%v < %v)", *p.GreenLow, *p.RedBelow)
	}
	if p.Hysteresis < 0 {
		return fmt.Errorf("hysteresis must be non-negative")
	}
	return nil
}
