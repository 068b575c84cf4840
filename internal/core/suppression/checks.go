package suppression

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/lumen-ops/alertgate-go/internal/database/models"
)

// A check is one stage of the suppression pipeline. Returning a non-nil
// result short-circuits the pipeline; returning an error marks the stage as
// "did not match" and lets the pipeline continue.
type check struct {
	name string
	run  func(alert *models.Alert, rule *models.AlertRule, ec *evalContext) (*Result, error)
}

func (e *Engine) pipeline() []check {
	return []check{
		{name: "maintenance_window", run: e.checkMaintenanceWindow},
		{name: "duplicate", run: e.checkDuplicate},
		{name: "rate_limit", run: e.checkRateLimit},
		{name: "grouping", run: func(alert *models.Alert, _ *models.AlertRule, ec *evalContext) (*Result, error) {
			return e.observeGroup(alert, ec.now), nil
		}},
		{name: "severity_threshold", run: e.checkSeverityThreshold},
		{name: "custom_rules", run: e.checkCustomRules},
	}
}

// checkMaintenanceWindow suppresses alerts covered by an active window:
// either the window suppresses everything, or it names the alert's metric
// as an affected system, or it names the alert's severity.
func (e *Engine) checkMaintenanceWindow(alert *models.Alert, _ *models.AlertRule, ec *evalContext) (*Result, error) {
	for _, window := range ec.windows {
		if !window.ActiveAt(ec.now) {
			continue
		}
		if !window.SuppressAll &&
			!window.AffectedSystems.Contains(alert.MetricName) &&
			!window.AffectedSeverities.Contains(string(alert.Severity)) {
			continue
		}

		until := window.EndsAt
		return &Result{
			ShouldSuppress: true,
			Reason:         ReasonMaintenanceWindow,
			SuppressUntil:  &until,
			Metadata: map[string]string{
				"window_id":   window.ID,
				"window_name": window.Name,
			},
		}, nil
	}
	return nil, nil
}

// checkDuplicate looks for a recent alert of the same rule that is close
// enough to be the same occurrence: either both carry a metric value and the
// values differ by at most the configured tolerance of the candidate's
// value, or their context maps overlap and enough of the shared keys agree.
func (e *Engine) checkDuplicate(alert *models.Alert, _ *models.AlertRule, ec *evalContext) (*Result, error) {
	cutoff := ec.now.Add(-e.cfg.DuplicateWindow)
	var related []string

	for _, prior := range ec.history {
		if prior.ID == alert.ID || prior.RuleID != alert.RuleID {
			continue
		}
		if prior.CreatedAt.Before(cutoff) {
			continue
		}
		if e.metricValuesMatch(alert, prior) || e.contextsMatch(alert, prior) {
			related = append(related, prior.ID)
		}
	}

	if len(related) == 0 {
		return nil, nil
	}

	until := ec.now.Add(e.cfg.DuplicateWindow)
	return &Result{
		ShouldSuppress: true,
		Reason:         ReasonDuplicateAlert,
		SuppressUntil:  &until,
		RelatedAlerts:  related,
	}, nil
}

func (e *Engine) metricValuesMatch(alert, prior *models.Alert) bool {
	if !alert.MetricValue.Valid || !prior.MetricValue.Valid {
		return false
	}
	tolerance := e.cfg.ValueTolerance * math.Abs(alert.MetricValue.Float64)
	return math.Abs(alert.MetricValue.Float64-prior.MetricValue.Float64) <= tolerance
}

func (e *Engine) contextsMatch(alert, prior *models.Alert) bool {
	shared, matching := 0, 0
	for key, value := range alert.Context {
		priorValue, ok := prior.Context[key]
		if !ok {
			continue
		}
		shared++
		if value == priorValue {
			matching++
		}
	}
	if shared == 0 {
		return false
	}
	return float64(matching)/float64(shared) >= e.cfg.ContextMatchRatio
}

// checkRateLimit enforces the owning rule's hourly cap, then its cooldown
// spacing. The two limits are independent; either one suppresses.
func (e *Engine) checkRateLimit(alert *models.Alert, rule *models.AlertRule, ec *evalContext) (*Result, error) {
	hourAgo := ec.now.Add(-time.Hour)

	count := 0
	var mostRecent time.Time
	for _, prior := range ec.history {
		if prior.ID == alert.ID || prior.RuleID != alert.RuleID {
			continue
		}
		if prior.CreatedAt.Before(hourAgo) {
			continue
		}
		count++
		if prior.CreatedAt.After(mostRecent) {
			mostRecent = prior.CreatedAt
		}
	}

	if rule.MaxAlertsPerHour > 0 && count >= rule.MaxAlertsPerHour {
		until := mostRecent.Add(time.Hour)
		return &Result{
			ShouldSuppress: true,
			Reason:         ReasonRateLimitExceeded,
			SuppressUntil:  &until,
			Metadata: map[string]string{
				"alerts_last_hour": strconv.Itoa(count),
				"max_per_hour":     strconv.Itoa(rule.MaxAlertsPerHour),
			},
		}, nil
	}

	if rule.CooldownMinutes > 0 {
		cooldown := time.Duration(rule.CooldownMinutes) * time.Minute
		var last time.Time
		for _, prior := range ec.history {
			if prior.ID == alert.ID || prior.RuleID != alert.RuleID {
				continue
			}
			if prior.CreatedAt.After(last) {
				last = prior.CreatedAt
			}
		}
		if !last.IsZero() && ec.now.Sub(last) < cooldown {
			until := last.Add(cooldown)
			return &Result{
				ShouldSuppress: true,
				Reason:         ReasonCooldownPeriod,
				SuppressUntil:  &until,
				Metadata: map[string]string{
					"cooldown_minutes": strconv.Itoa(rule.CooldownMinutes),
				},
			}, nil
		}
	}

	return nil, nil
}

// checkSeverityThreshold withholds low-priority alerts while a flood of
// critical/high alerts already indicates an ongoing incident.
func (e *Engine) checkSeverityThreshold(alert *models.Alert, _ *models.AlertRule, ec *evalContext) (*Result, error) {
	if alert.Severity != models.SeverityLow && alert.Severity != models.SeverityInfo {
		return nil, nil
	}

	cutoff := ec.now.Add(-e.cfg.SeverityFloodWindow)
	count := 0
	for _, prior := range ec.history {
		if prior.ID == alert.ID || prior.CreatedAt.Before(cutoff) {
			continue
		}
		if prior.Severity.IsHighPriority() {
			count++
		}
	}

	if count < e.cfg.SeverityFloodCount {
		return nil, nil
	}

	until := ec.now.Add(e.cfg.SeverityFloodWindow)
	return &Result{
		ShouldSuppress: true,
		Reason:         ReasonSeverityThreshold,
		SuppressUntil:  &until,
		Metadata: map[string]string{
			"high_severity_count": strconv.Itoa(count),
		},
	}, nil
}

// checkCustomRules scans enabled custom rules in descending priority order.
// A rule that fails to evaluate is treated as "did not match" so one
// malformed rule never shadows the rules below it.
func (e *Engine) checkCustomRules(alert *models.Alert, _ *models.AlertRule, ec *evalContext) (*Result, error) {
	for _, rule := range ec.rules {
		if rule.Scope.Valid && rule.Scope.String != "" && rule.Scope.String != alert.Team {
			continue
		}

		matched, err := evaluateConditions(rule, alert, ec)
		if err != nil {
			e.log.WithError(err).WithField("suppression_rule", rule.ID).
				Warn("Skipping custom rule that failed to evaluate")
			continue
		}
		if !matched {
			continue
		}

		until := ec.now.Add(time.Duration(rule.SuppressionDurationMinutes) * time.Minute)
		return &Result{
			ShouldSuppress: true,
			Reason:         ReasonCustomRuleMatched,
			SuppressUntil:  &until,
			RuleID:         rule.ID,
			Metadata: map[string]string{
				"rule_name":     rule.Name,
				"rule_priority": fmt.Sprintf("%d", rule.Priority),
			},
		}, nil
	}
	return nil, nil
}
