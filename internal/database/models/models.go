package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Severity is the severity level attached to an alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// IsHighPriority reports whether the severity counts toward the
// high-severity flood threshold.
func (s Severity) IsHighPriority() bool {
	return s == SeverityCritical || s == SeverityHigh
}

// Valid reports whether the severity is one of the known levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// JSONMap is a string map persisted as a JSON column.
type JSONMap map[string]string

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal map column: %w", err)
	}
	return string(b), nil
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for map column", src)
	}
	if len(b) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(b, m)
}

// StringList is a string slice persisted as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal list column: %w", err)
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for list column", src)
	}
	if len(b) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(b, l)
}

// Contains reports whether the list contains the given value.
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}

// Alert is a single raised monitoring alert. Alerts are produced upstream,
// evaluated exactly once by the suppression engine, and terminal afterwards.
type Alert struct {
	ID          string          `db:"id" json:"id"`
	RuleID      string          `db:"rule_id" json:"rule_id"`
	Severity    Severity        `db:"severity" json:"severity"`
	MetricName  string          `db:"metric_name" json:"metric_name"`
	MetricValue sql.NullFloat64 `db:"metric_value" json:"metric_value,omitempty"`
	Context     JSONMap         `db:"context" json:"context,omitempty"`
	Tags        StringList      `db:"tags" json:"tags,omitempty"`
	Team        string          `db:"team" json:"team,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// AlertRule is the rule that produced an alert, carrying the per-rule
// frequency limits the pipeline enforces.
type AlertRule struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	MaxAlertsPerHour int       `db:"max_alerts_per_hour" json:"max_alerts_per_hour"`
	CooldownMinutes  int       `db:"cooldown_minutes" json:"cooldown_minutes"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// RuleType classifies a suppression rule.
type RuleType string

const (
	RuleTypeDuplicate   RuleType = "duplicate"
	RuleTypeRateLimit   RuleType = "rate_limit"
	RuleTypeMaintenance RuleType = "maintenance"
	RuleTypeGrouping    RuleType = "grouping"
	RuleTypeThreshold   RuleType = "threshold"
	RuleTypeCustom      RuleType = "custom"
)

// ConditionKind discriminates the variants of a custom rule condition.
type ConditionKind string

const (
	ConditionByMetric       ConditionKind = "by_metric"
	ConditionBySeverity     ConditionKind = "by_severity"
	ConditionByWindowCount  ConditionKind = "by_window_count"
	ConditionByRequiredTags ConditionKind = "by_required_tags"
)

// RuleCondition is one condition of a custom suppression rule. Kind selects
// the variant; only the fields belonging to that variant are meaningful.
type RuleCondition struct {
	Kind          ConditionKind `json:"kind"`
	MetricName    string        `json:"metric_name,omitempty"`
	Severities    []Severity    `json:"severities,omitempty"`
	WindowMinutes int           `json:"window_minutes,omitempty"`
	MinAlerts     int           `json:"min_alerts,omitempty"`
	RequiredTags  []string      `json:"required_tags,omitempty"`
}

// RuleConditions is a condition set persisted as a JSON column. All
// conditions must hold for the owning rule to match.
type RuleConditions []RuleCondition

func (c RuleConditions) Value() (driver.Value, error) {
	if c == nil {
		return "[]", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rule conditions: %w", err)
	}
	return string(b), nil
}

func (c *RuleConditions) Scan(src interface{}) error {
	if src == nil {
		*c = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for rule conditions column", src)
	}
	if len(b) == 0 {
		*c = nil
		return nil
	}
	return json.Unmarshal(b, c)
}

// SuppressionRule is an administrator-authored policy describing under what
// conditions an alert should be withheld. Rules are evaluated in descending
// priority order.
type SuppressionRule struct {
	ID                         string         `db:"id" json:"id"`
	Name                       string         `db:"name" json:"name"`
	RuleType                   RuleType       `db:"rule_type" json:"rule_type"`
	Conditions                 RuleConditions `db:"conditions" json:"conditions"`
	SuppressionDurationMinutes int            `db:"suppression_duration_minutes" json:"suppression_duration_minutes"`
	MaxAlertsPerWindow         int            `db:"max_alerts_per_window" json:"max_alerts_per_window"`
	WindowSizeMinutes          int            `db:"window_size_minutes" json:"window_size_minutes"`
	Enabled                    bool           `db:"enabled" json:"enabled"`
	Priority                   int            `db:"priority" json:"priority"`
	Scope                      sql.NullString `db:"scope" json:"scope,omitempty"`
	CreatedAt                  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt                  time.Time      `db:"updated_at" json:"updated_at"`
}

// MaintenanceWindow is a scheduled time range during which some or all
// alerts are intentionally withheld. It only suppresses while the current
// instant lies within [StartsAt, EndsAt].
type MaintenanceWindow struct {
	ID                 string     `db:"id" json:"id"`
	Name               string     `db:"name" json:"name"`
	StartsAt           time.Time  `db:"starts_at" json:"starts_at"`
	EndsAt             time.Time  `db:"ends_at" json:"ends_at"`
	AffectedSystems    StringList `db:"affected_systems" json:"affected_systems"`
	AffectedSeverities StringList `db:"affected_severities" json:"affected_severities"`
	SuppressAll        bool       `db:"suppress_all" json:"suppress_all"`
	Enabled            bool       `db:"enabled" json:"enabled"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
}

// ActiveAt reports whether the window is enabled and covers the instant.
func (w *MaintenanceWindow) ActiveAt(t time.Time) bool {
	return w.Enabled && !t.Before(w.StartsAt) && !t.After(w.EndsAt)
}

// AuditRecord is one append-only record of a suppression decision.
type AuditRecord struct {
	ID            string         `db:"id" json:"id"`
	AlertID       string         `db:"alert_id" json:"alert_id"`
	Suppressed    bool           `db:"suppressed" json:"suppressed"`
	Reason        string         `db:"reason" json:"reason"`
	RuleID        sql.NullString `db:"rule_id" json:"rule_id,omitempty"`
	SuppressUntil sql.NullTime   `db:"suppress_until" json:"suppress_until,omitempty"`
	Metadata      JSONMap        `db:"metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}
