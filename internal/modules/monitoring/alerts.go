package monitoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/optionsentry/optionsentry/internal/config"
	"github.com/optionsentry/optionsentry/internal/domain"
)

// metricCheck is one (kind, value, policy) tuple for the generic evaluation
// loop shared by the portfolio and capital monitors. A nil value skips the
// check entirely; a fired branch with no message template emits no alert.
type metricCheck struct {
	kind    domain.AlertKind
	value   *float64
	policy  config.ThresholdPolicy
	percent bool
}

// evalMetricCheck runs one metric through the generic evaluator and builds
// the alert for the branch that fired, or nil.
func evalMetricCheck(c metricCheck) *domain.Alert {
	if c.value == nil {
		return nil
	}
	level := Evaluate(*c.value, c.policy)
	msg, action := c.policy.MessageFor(string(level))
	if msg == "" {
		return nil
	}

	thr := thresholdFor(*c.value, level, c.policy)
	thrText := ""
	if thr != nil {
		thrText = formatThreshold(*thr, c.percent)
	}

	a := newAlert(c.kind, level, renderTemplate(msg, formatMetric(*c.value, c.percent), thrText))
	a.Value = c.value
	a.Threshold = thr
	a.SuggestedAction = action
	return &a
}

// newAlert builds an alert with identity and timestamp filled in.
func newAlert(kind domain.AlertKind, level domain.AlertLevel, message string) domain.Alert {
	return domain.Alert{
		ID:        uuid.NewString(),
		Kind:      kind,
		Level:     level,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}
