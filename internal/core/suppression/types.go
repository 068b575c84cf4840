package suppression

import (
	"time"
)

// Reason enumerates why a decision was made. Exactly one reason accompanies
// every result, suppressed or not.
type Reason string

const (
	ReasonMaintenanceWindow Reason = "maintenance_window"
	ReasonDuplicateAlert    Reason = "duplicate_alert"
	ReasonRateLimitExceeded Reason = "rate_limit_exceeded"
	ReasonCooldownPeriod    Reason = "cooldown_period"
	ReasonAlertGrouping     Reason = "alert_grouping"
	ReasonSeverityThreshold Reason = "high_severity_threshold"
	ReasonCustomRuleMatched Reason = "custom_rule_matched"
	ReasonNoSuppression     Reason = "no_suppression_applied"
	ReasonEvaluationError   Reason = "suppression_evaluation_error"
)

// Result is the outcome of evaluating one alert.
type Result struct {
	ShouldSuppress bool              `json:"should_suppress"`
	Reason         Reason            `json:"reason"`
	SuppressUntil  *time.Time        `json:"suppress_until,omitempty"`
	GroupKey       string            `json:"group_key,omitempty"`
	RelatedAlerts  []string          `json:"related_alerts,omitempty"`
	RuleID         string            `json:"rule_id,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// Stats is the read-only operational snapshot exposed to admin surfaces.
type Stats struct {
	ActiveGroups  int   `json:"active_groups"`
	CacheEntries  int   `json:"cache_entries"`
	LoadedRules   int   `json:"loaded_rules"`
	LoadedWindows int   `json:"loaded_windows"`
	Evaluations   int64 `json:"evaluations"`
	Suppressed    int64 `json:"suppressed"`
}
