package sqlite

import (
	"context"
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/lumen-ops/alertgate-go/internal/database/models"
)

const testSchema = `
CREATE TABLE alerts (
    id TEXT PRIMARY KEY,
    rule_id TEXT NOT NULL,
    severity TEXT NOT NULL,
    metric_name TEXT NOT NULL,
    metric_value REAL,
    context TEXT,
    tags TEXT,
    team TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE suppression_rules (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    rule_type TEXT NOT NULL,
    conditions TEXT NOT NULL DEFAULT '[]',
    suppression_duration_minutes INTEGER NOT NULL DEFAULT 0,
    max_alerts_per_window INTEGER NOT NULL DEFAULT 0,
    window_size_minutes INTEGER NOT NULL DEFAULT 0,
    enabled BOOLEAN NOT NULL DEFAULT TRUE,
    priority INTEGER NOT NULL DEFAULT 0,
    scope TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE maintenance_windows (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    starts_at DATETIME NOT NULL,
    ends_at DATETIME NOT NULL,
    affected_systems TEXT NOT NULL DEFAULT '[]',
    affected_severities TEXT NOT NULL DEFAULT '[]',
    suppress_all BOOLEAN NOT NULL DEFAULT FALSE,
    enabled BOOLEAN NOT NULL DEFAULT TRUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE suppression_audit (
    id TEXT PRIMARY KEY,
    alert_id TEXT NOT NULL,
    suppressed BOOLEAN NOT NULL,
    reason TEXT NOT NULL,
    rule_id TEXT,
    suppress_until DATETIME,
    metadata TEXT,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestAlertRepository(t *testing.T) {
	repo := NewAlertRepository(setupTestDB(t), quietLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	alerts := []*models.Alert{
		{
			ID: "a1", RuleID: "r1", Severity: models.SeverityHigh, MetricName: "cpu_usage",
			MetricValue: sql.NullFloat64{Float64: 92.5, Valid: true},
			Context:     models.JSONMap{"host": "web-1"},
			Tags:        models.StringList{"prod"},
			Team:        "platform",
			CreatedAt:   now.Add(-10 * time.Minute),
		},
		{
			ID: "a2", RuleID: "r2", Severity: models.SeverityLow, MetricName: "disk_usage",
			Team: "payments", CreatedAt: now.Add(-5 * time.Minute),
		},
		{
			ID: "a3", RuleID: "r1", Severity: models.SeverityMedium, MetricName: "cpu_usage",
			Team: "platform", CreatedAt: now.Add(-3 * time.Hour),
		},
	}
	for _, a := range alerts {
		require.NoError(t, repo.Create(ctx, a))
	}

	t.Run("get by id round-trips json columns", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "r1", got.RuleID)
		assert.Equal(t, models.SeverityHigh, got.Severity)
		assert.Equal(t, models.JSONMap{"host": "web-1"}, got.Context)
		assert.Equal(t, models.StringList{"prod"}, got.Tags)
		assert.InDelta(t, 92.5, got.MetricValue.Float64, 0.001)
	})

	t.Run("get by id reports missing alerts", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "nope")
		assert.Error(t, err)
	})

	t.Run("list since excludes older alerts", func(t *testing.T) {
		got, err := repo.ListSince(ctx, now.Add(-time.Hour), "")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a2", got[0].ID)
		assert.Equal(t, "a1", got[1].ID)
	})

	t.Run("list since filters by team", func(t *testing.T) {
		got, err := repo.ListSince(ctx, now.Add(-time.Hour), "platform")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "a1", got[0].ID)
	})

	t.Run("delete older than prunes history", func(t *testing.T) {
		deleted, err := repo.DeleteOlderThan(ctx, now.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		_, err = repo.GetByID(ctx, "a3")
		assert.Error(t, err)
	})

	t.Run("create assigns id and timestamp when missing", func(t *testing.T) {
		a := &models.Alert{RuleID: "r9", Severity: models.SeverityInfo, MetricName: "memory_usage"}
		require.NoError(t, repo.Create(ctx, a))
		assert.NotEmpty(t, a.ID)
		assert.False(t, a.CreatedAt.IsZero())
	})
}

func TestSuppressionRuleRepository(t *testing.T) {
	repo := NewSuppressionRuleRepository(setupTestDB(t), quietLogger())
	ctx := context.Background()

	high := &models.SuppressionRule{
		ID: "s-high", Name: "mute cpu noise", RuleType: models.RuleTypeCustom,
		Conditions: models.RuleConditions{
			{Kind: models.ConditionByMetric, MetricName: "cpu_usage"},
		},
		SuppressionDurationMinutes: 30, Enabled: true, Priority: 10,
		Scope: sql.NullString{String: "platform", Valid: true},
	}
	low := &models.SuppressionRule{
		ID: "s-low", Name: "catch-all", RuleType: models.RuleTypeCustom,
		Conditions: models.RuleConditions{
			{Kind: models.ConditionBySeverity, Severities: []models.Severity{models.SeverityInfo}},
		},
		Enabled: true, Priority: 1,
	}
	disabled := &models.SuppressionRule{
		ID: "s-off", Name: "retired", RuleType: models.RuleTypeCustom,
		Enabled: false, Priority: 100,
	}
	for _, r := range []*models.SuppressionRule{low, high, disabled} {
		require.NoError(t, repo.Create(ctx, r))
	}

	t.Run("get by id round-trips conditions", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "s-high")
		require.NoError(t, err)
		require.Len(t, got.Conditions, 1)
		assert.Equal(t, models.ConditionByMetric, got.Conditions[0].Kind)
		assert.Equal(t, "cpu_usage", got.Conditions[0].MetricName)
		assert.Equal(t, "platform", got.Scope.String)
	})

	t.Run("list enabled orders by priority and skips disabled", func(t *testing.T) {
		got, err := repo.ListEnabled(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "s-high", got[0].ID)
		assert.Equal(t, "s-low", got[1].ID)
	})

	t.Run("set enabled toggles a rule", func(t *testing.T) {
		require.NoError(t, repo.SetEnabled(ctx, "s-high", false))

		got, err := repo.ListEnabled(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "s-low", got[0].ID)
	})

	t.Run("set enabled reports missing rules", func(t *testing.T) {
		assert.Error(t, repo.SetEnabled(ctx, "nope", true))
	})
}

func TestMaintenanceWindowRepository(t *testing.T) {
	repo := NewMaintenanceWindowRepository(setupTestDB(t), quietLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	windows := []*models.MaintenanceWindow{
		{
			ID: "w-active", Name: "db upgrade", Enabled: true, SuppressAll: true,
			StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour),
		},
		{
			ID: "w-future", Name: "next week", Enabled: true,
			StartsAt: now.Add(24 * time.Hour), EndsAt: now.Add(26 * time.Hour),
		},
		{
			ID: "w-past", Name: "done", Enabled: true,
			StartsAt: now.Add(-4 * time.Hour), EndsAt: now.Add(-2 * time.Hour),
		},
		{
			ID: "w-disabled", Name: "off", Enabled: false, SuppressAll: true,
			StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour),
		},
	}
	for _, w := range windows {
		require.NoError(t, repo.Create(ctx, w))
	}

	t.Run("list active returns only enabled covering windows", func(t *testing.T) {
		got, err := repo.ListActiveAt(ctx, now)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "w-active", got[0].ID)
		assert.True(t, got[0].SuppressAll)
	})

	t.Run("delete expired removes ended windows", func(t *testing.T) {
		deleted, err := repo.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}

func TestAuditRepository(t *testing.T) {
	repo := NewAuditRepository(setupTestDB(t), quietLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	until := now.Add(30 * time.Minute)
	records := []*models.AuditRecord{
		{
			ID: "d1", AlertID: "a1", Suppressed: true, Reason: "duplicate_alert",
			SuppressUntil: sql.NullTime{Time: until, Valid: true},
			Metadata:      models.JSONMap{"related": "a0"},
			CreatedAt:     now.Add(-2 * time.Minute),
		},
		{
			ID: "d2", AlertID: "a2", Suppressed: false, Reason: "no_suppression_applied",
			CreatedAt: now.Add(-time.Minute),
		},
	}
	for _, rec := range records {
		require.NoError(t, repo.Append(ctx, rec))
	}

	t.Run("list recent returns newest first", func(t *testing.T) {
		got, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "d2", got[0].ID)
		assert.Equal(t, "d1", got[1].ID)
	})

	t.Run("suppression details survive the round trip", func(t *testing.T) {
		got, err := repo.ListRecent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)

		all, err := repo.ListRecent(ctx, 10)
		require.NoError(t, err)
		d1 := all[1]
		assert.True(t, d1.Suppressed)
		assert.Equal(t, "duplicate_alert", d1.Reason)
		require.True(t, d1.SuppressUntil.Valid)
		assert.WithinDuration(t, until, d1.SuppressUntil.Time, time.Second)
		assert.Equal(t, models.JSONMap{"related": "a0"}, d1.Metadata)
	})

	t.Run("append assigns id when missing", func(t *testing.T) {
		rec := &models.AuditRecord{AlertID: "a3", Suppressed: false, Reason: "no_suppression_applied"}
		require.NoError(t, repo.Append(ctx, rec))
		assert.NotEmpty(t, rec.ID)
	})
}
