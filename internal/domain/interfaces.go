package domain

// SuggestionGenerator produces ranked remediation suggestions from a partial
// monitor result. The pipeline treats it as an external collaborator; the
// default implementation lives in internal/modules/suggestions.
type SuggestionGenerator interface {
	// Generate returns suggestions ordered by urgency (immediate first).
	// The result passed in has alerts, metrics and counts populated but no
	// suggestions yet. vix may be nil when no volatility reading exists.
	Generate(result *MonitorResult, positions []Position, vix *float64) []Suggestion
}

// PricingEngine reprices a single option contract under a scenario.
// Option pricing itself is outside this system; the stress-test metric only
// assembles the scenario and consumes the repriced value.
type PricingEngine interface {
	// Price returns the per-contract option price given a shocked underlying
	// price and a volatility scale factor applied to the position's IV.
	Price(pos Position, underlying float64, volScale float64) (float64, error)
}
