package suppression

import (
	"fmt"
	"time"

	"github.com/lumen-ops/alertgate-go/internal/database/models"
)

// evaluateConditions reports whether a custom rule matches the alert. Every
// condition in the set must hold. A rule with an empty condition set never
// matches: matching everything by accident is worse than matching nothing.
func evaluateConditions(rule *models.SuppressionRule, alert *models.Alert, ec *evalContext) (bool, error) {
	if len(rule.Conditions) == 0 {
		return false, nil
	}

	for i, cond := range rule.Conditions {
		ok, err := evaluateCondition(rule, cond, alert, ec)
		if err != nil {
			return false, fmt.Errorf("condition %d of rule %s: %w", i, rule.ID, err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evaluateCondition(rule *models.SuppressionRule, cond models.RuleCondition, alert *models.Alert, ec *evalContext) (bool, error) {
	switch cond.Kind {
	case models.ConditionByMetric:
		if cond.MetricName == "" {
			return false, fmt.Errorf("by_metric condition without a metric name")
		}
		return alert.MetricName == cond.MetricName, nil

	case models.ConditionBySeverity:
		if len(cond.Severities) == 0 {
			return false, fmt.Errorf("by_severity condition without severities")
		}
		for _, s := range cond.Severities {
			if alert.Severity == s {
				return true, nil
			}
		}
		return false, nil

	case models.ConditionByWindowCount:
		windowMinutes := cond.WindowMinutes
		if windowMinutes == 0 {
			windowMinutes = rule.WindowSizeMinutes
		}
		minAlerts := cond.MinAlerts
		if minAlerts == 0 {
			minAlerts = rule.MaxAlertsPerWindow
		}
		if windowMinutes <= 0 || minAlerts <= 0 {
			return false, fmt.Errorf("by_window_count condition without window or threshold")
		}

		cutoff := ec.now.Add(-time.Duration(windowMinutes) * time.Minute)
		count := 0
		for _, prior := range ec.history {
			if prior.ID == alert.ID || prior.RuleID != alert.RuleID {
				continue
			}
			if !prior.CreatedAt.Before(cutoff) {
				count++
			}
		}
		return count >= minAlerts, nil

	case models.ConditionByRequiredTags:
		if len(cond.RequiredTags) == 0 {
			return false, fmt.Errorf("by_required_tags condition without tags")
		}
		for _, tag := range cond.RequiredTags {
			if !alert.Tags.Contains(tag) {
				return false, nil
			}
		}
		return true, nil

	default:
		return false, fmt.Errorf("unknown condition kind %q", cond.Kind)
	}
}
