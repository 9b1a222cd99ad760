// Package domain provides core domain models and types.
package domain

import "time"

// AlertLevel represents the severity of a monitoring finding.
type AlertLevel string

const (
	// AlertLevelGreen marks an opportunity signal (take profit, add exposure).
	AlertLevelGreen AlertLevel = "green"
	// AlertLevelYellow marks a watch signal that needs attention soon.
	AlertLevelYellow AlertLevel = "yellow"
	// AlertLevelRed marks a risk signal that needs action.
	AlertLevelRed AlertLevel = "red"
)

// Severity returns a comparable rank for the level. Higher is worse.
func (l AlertLevel) Severity() int {
	switch l {
	case AlertLevelRed:
		return 2
	case AlertLevelYellow:
		return 1
	default:
		return 0
	}
}

// WorstLevel returns the worst level present in the given alerts.
// An empty list is green: nothing fired, nothing is wrong.
func WorstLevel(alerts []Alert) AlertLevel {
	worst := AlertLevelGreen
	for _, a := range alerts {
		if a.Level.Severity() > worst.Severity() {
			worst = a.Level
		}
	}
	return worst
}

// AssetKind distinguishes option contracts from plain equity holdings.
type AssetKind string

const (
	AssetKindOption AssetKind = "option"
	AssetKindEquity AssetKind = "equity"
)

// OptionType is the contract right for an option position.
type OptionType string

const (
	OptionTypePut  OptionType = "put"
	OptionTypeCall OptionType = "call"
)

// Strategy labels used for per-strategy policy overrides.
const (
	StrategyCoveredCall    = "covered_call"
	StrategyCashSecuredPut = "cash_secured_put"
	StrategyNakedPut       = "naked_put"
)

// DefaultOptionMultiplier is the contract multiplier for standard equity options.
const DefaultOptionMultiplier = 100.0

// Greeks holds per-contract option sensitivities. All fields are optional:
// a nil field means the value was not available upstream and any check that
// needs it is skipped for this position.
type Greeks struct {
	Delta *float64 `json:"delta,omitempty"`
	Gamma *float64 `json:"gamma,omitempty"`
	Theta *float64 `json:"theta,omitempty"`
	Vega  *float64 `json:"vega,omitempty"`
}

// Position represents one option or equity holding for a single cycle.
// Positions arrive fully populated from the upstream data bridge (prices,
// Greeks, IV/HV, derived scores) and are immutable within a cycle.
type Position struct {
	ID         string    `json:"id"`
	Symbol     string    `json:"symbol"`
	Underlying string    `json:"underlying"`
	Kind       AssetKind `json:"kind"`
	Strategy   string    `json:"strategy,omitempty"`

	// Option contract fields; zero values for equities.
	OptionType OptionType `json:"option_type,omitempty"`
	Strike     *float64   `json:"strike,omitempty"`
	Expiry     string     `json:"expiry,omitempty"` // "YYYY-MM-DD" or "YYYYMMDD"
	Multiplier float64    `json:"multiplier,omitempty"`

	Quantity        float64  `json:"quantity"` // signed; short positions are negative
	EntryPrice      *float64 `json:"entry_price,omitempty"`
	CurrentPrice    *float64 `json:"current_price,omitempty"`
	UnderlyingPrice *float64 `json:"underlying_price,omitempty"`
	Beta            *float64 `json:"beta,omitempty"`

	Greeks Greeks   `json:"greeks"`
	IV     *float64 `json:"iv,omitempty"`
	HV     *float64 `json:"hv,omitempty"`
	DTE    *int     `json:"dte,omitempty"`

	// Upstream-computed composite scores.
	PREI *float64 `json:"prei,omitempty"`
	SAS  *float64 `json:"sas,omitempty"`
	TGR  *float64 `json:"tgr,omitempty"`
}

// IsOption reports whether the position is an option contract.
func (p Position) IsOption() bool {
	return p.Kind == AssetKindOption
}

// EffectiveMultiplier returns the contract multiplier, defaulting to 100
// for standard equity options when unset.
func (p Position) EffectiveMultiplier() float64 {
	if p.Multiplier > 0 {
		return p.Multiplier
	}
	if p.IsOption() {
		return DefaultOptionMultiplier
	}
	return 1.0
}

// EffectiveBeta returns the underlying beta, defaulting to 1.0 when unknown.
func (p Position) EffectiveBeta() float64 {
	if p.Beta != nil {
		return *p.Beta
	}
	return 1.0
}

// IVHVRatio returns IV/HV, or nil when either leg is missing or HV is zero.
func (p Position) IVHVRatio() *float64 {
	if p.IV == nil || p.HV == nil || *p.HV == 0 {
		return nil
	}
	r := *p.IV / *p.HV
	return &r
}

// UnrealizedPLPct returns the unrealized P&L as a fraction of entry price,
// oriented so that a profitable position is positive regardless of side.
// For a short option, price decay toward zero is profit. Returns nil when
// entry or current price is missing or entry is zero.
func (p Position) UnrealizedPLPct() *float64 {
	if p.EntryPrice == nil || p.CurrentPrice == nil || *p.EntryPrice == 0 {
		return nil
	}
	var pct float64
	if p.Quantity < 0 {
		pct = (*p.EntryPrice - *p.CurrentPrice) / *p.EntryPrice
	} else {
		pct = (*p.CurrentPrice - *p.EntryPrice) / *p.EntryPrice
	}
	return &pct
}

// CapitalSnapshot holds account totals for one cycle. The four adequacy
// ratios are filled in by the metric aggregator; Sharpe and Kelly usage
// arrive from upstream (or are derived from run history) when available.
type CapitalSnapshot struct {
	NetLiquidation    float64 `json:"net_liquidation"`
	CashBalance       float64 `json:"cash_balance"`
	MaintenanceMargin float64 `json:"maintenance_margin"`
	RealizedPnL       float64 `json:"realized_pnl"`
	UnrealizedPnL     float64 `json:"unrealized_pnl"`

	SharpeRatio *float64 `json:"sharpe_ratio,omitempty"`
	KellyUsage  *float64 `json:"kelly_usage,omitempty"`

	MarginUtilization *float64 `json:"margin_utilization,omitempty"`
	CashRatio         *float64 `json:"cash_ratio,omitempty"`
	GrossLeverage     *float64 `json:"gross_leverage,omitempty"`
	StressTestLoss    *float64 `json:"stress_test_loss,omitempty"`
}

// PortfolioMetrics holds the cross-position aggregates for one cycle.
// Percentage fields are plain decimals (0.01 = 1%) normalized by NLV and
// are nil when NLV was unavailable or non-positive.
type PortfolioMetrics struct {
	TotalDelta        float64 `json:"total_delta"`
	BetaWeightedDelta float64 `json:"beta_weighted_delta"`
	TotalGamma        float64 `json:"total_gamma"`
	TotalTheta        float64 `json:"total_theta"`
	TotalVega         float64 `json:"total_vega"`
	EquityExposure    float64 `json:"equity_exposure"`

	DeltaPct             *float64 `json:"delta_pct,omitempty"`
	BetaWeightedDeltaPct *float64 `json:"beta_weighted_delta_pct,omitempty"`
	GammaPct             *float64 `json:"gamma_pct,omitempty"`
	ThetaPct             *float64 `json:"theta_pct,omitempty"`
	VegaPct              *float64 `json:"vega_pct,omitempty"`

	ThetaGammaRatio  *float64 `json:"theta_gamma_ratio,omitempty"`
	ConcentrationHHI *float64 `json:"concentration_hhi,omitempty"`
	VegaWeightedIVHV *float64 `json:"vega_weighted_iv_hv,omitempty"`
}

// AlertKind identifies which metric check produced an alert.
type AlertKind string

const (
	// Position-level kinds.
	AlertMoneyness       AlertKind = "moneyness"
	AlertDeltaAbs        AlertKind = "delta_abs"
	AlertDeltaChange     AlertKind = "delta_change"
	AlertGamma           AlertKind = "gamma"
	AlertGammaNearExpiry AlertKind = "gamma_near_expiry"
	AlertIVHV            AlertKind = "iv_hv"
	AlertPREI            AlertKind = "prei"
	AlertDTEWarning      AlertKind = "dte_warning"
	AlertPnL             AlertKind = "pnl"
	AlertSAS             AlertKind = "sas"
	AlertPositionTGR     AlertKind = "position_tgr"
	AlertOTMPct          AlertKind = "otm_pct"

	// Portfolio-level kinds.
	AlertBWDPct        AlertKind = "bwd_pct"
	AlertGammaPct      AlertKind = "gamma_pct"
	AlertThetaPct      AlertKind = "theta_pct"
	AlertVegaPct       AlertKind = "vega_pct"
	AlertTGRLow        AlertKind = "tgr_low"
	AlertConcentration AlertKind = "concentration"
	AlertIVHVQuality   AlertKind = "iv_hv_quality"

	// Capital-level kinds.
	AlertMarginUtilization AlertKind = "margin_utilization"
	AlertCashRatio         AlertKind = "cash_ratio"
	AlertGrossLeverage     AlertKind = "gross_leverage"
	AlertStressTestLoss    AlertKind = "stress_test_loss"
	AlertSharpe            AlertKind = "sharpe"
	AlertKellyUsage        AlertKind = "kelly_usage"
)

// Alert represents one monitoring finding.
type Alert struct {
	ID              string                 `json:"id"`
	Kind            AlertKind              `json:"kind"`
	Level           AlertLevel             `json:"level"`
	Message         string                 `json:"message"`
	Symbol          string                 `json:"symbol,omitempty"`
	PositionID      string                 `json:"position_id,omitempty"`
	Value           *float64               `json:"value,omitempty"`
	Threshold       *float64               `json:"threshold,omitempty"`
	SuggestedAction string                 `json:"suggested_action,omitempty"`
	Details         map[string]interface{} `json:"details,omitempty"`
	Timestamp       time.Time              `json:"timestamp"`
}

// Urgency ranks how soon a suggestion should be acted on.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencySoon      Urgency = "soon"
	UrgencyMonitor   Urgency = "monitor"
)

// Rank returns a comparable rank for the urgency. Lower sorts first.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyImmediate:
		return 0
	case UrgencySoon:
		return 1
	default:
		return 2
	}
}

// Suggestion is one ranked remediation recommendation.
type Suggestion struct {
	PositionID string  `json:"position_id"`
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"`
	Urgency    Urgency `json:"urgency"`
	Reason     string  `json:"reason"`
}

// MonitorResult is the per-cycle aggregate the pipeline produces.
type MonitorResult struct {
	RunID     string     `json:"run_id"`
	Timestamp time.Time  `json:"timestamp"`
	Status    AlertLevel `json:"status"`

	Alerts      []Alert           `json:"alerts"`
	Positions   []Position        `json:"positions"`
	Metrics     *PortfolioMetrics `json:"metrics,omitempty"`
	Capital     *CapitalSnapshot  `json:"capital,omitempty"`
	Suggestions []Suggestion      `json:"suggestions,omitempty"`

	// Distinct position IDs carrying a red / green alert.
	PositionsAtRisk      int `json:"positions_at_risk"`
	PositionsOpportunity int `json:"positions_opportunity"`
}

// RollTarget is the concrete remediation target for one flagged position.
// A nil TargetStrike means "keep the current strike".
type RollTarget struct {
	TargetExpiry  string   `json:"target_expiry"`
	TargetStrike  *float64 `json:"target_strike,omitempty"`
	TargetDTE     int      `json:"target_dte"`
	RollCredit    *float64 `json:"roll_credit,omitempty"` // requires live quotes, left nil
	Justification string   `json:"justification"`
	UsedChainData bool     `json:"used_chain_data"`
}

// Snapshot bundles one cycle's inputs as delivered by the data bridge.
type Snapshot struct {
	Timestamp time.Time        `json:"timestamp"`
	Positions []Position       `json:"positions"`
	Capital   *CapitalSnapshot `json:"capital,omitempty"`
	VIX       *float64         `json:"vix,omitempty"`
}

// Float returns a pointer to v. Convenience for optional numeric fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
