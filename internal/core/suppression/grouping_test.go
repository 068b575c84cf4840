package suppression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumen-ops/alertgate-go/internal/database/models"
)

func TestGroupKey(t *testing.T) {
	base := &models.Alert{
		ID: "a1", RuleID: "r1", Severity: models.SeverityHigh, MetricName: "cpu_usage",
		Context: models.JSONMap{"host": "web-1", "region": "us-east"},
	}

	t.Run("context values do not change the key", func(t *testing.T) {
		other := *base
		other.ID = "a2"
		other.Context = models.JSONMap{"host": "web-2", "region": "eu-west"}
		assert.Equal(t, groupKey(base), groupKey(&other))
	})

	t.Run("different metric yields a different key", func(t *testing.T) {
		other := *base
		other.MetricName = "disk_usage"
		assert.NotEqual(t, groupKey(base), groupKey(&other))
	})

	t.Run("different severity yields a different key", func(t *testing.T) {
		other := *base
		other.Severity = models.SeverityLow
		assert.NotEqual(t, groupKey(base), groupKey(&other))
	})

	t.Run("extra context key yields a different key", func(t *testing.T) {
		other := *base
		other.Context = models.JSONMap{"host": "web-1", "region": "us-east", "zone": "a"}
		assert.NotEqual(t, groupKey(base), groupKey(&other))
	})
}

func TestObserveGroup_SuppressesOnceEstablished(t *testing.T) {
	f := newTestEngine(t)
	now := time.Now().UTC()

	member := func(id string) *models.Alert {
		return &models.Alert{ID: id, RuleID: "r1", Severity: models.SeverityHigh, MetricName: "cpu_usage"}
	}

	// The first three members build the group without suppressing.
	assert.Nil(t, f.engine.observeGroup(member("a1"), now))
	assert.Nil(t, f.engine.observeGroup(member("a2"), now.Add(time.Minute)))
	assert.Nil(t, f.engine.observeGroup(member("a3"), now.Add(2*time.Minute)))

	result := f.engine.observeGroup(member("a4"), now.Add(3*time.Minute))
	require.NotNil(t, result)
	assert.True(t, result.ShouldSuppress)
	assert.Equal(t, ReasonAlertGrouping, result.Reason)
	assert.NotEmpty(t, result.GroupKey)
	assert.Equal(t, []string{"a1", "a2", "a3", "a4"}, result.RelatedAlerts)
	assert.Equal(t, "4", result.Metadata["group_count"])

	// Every member joined, including the suppressed one.
	f.engine.mu.Lock()
	group := f.engine.groups[result.GroupKey]
	f.engine.mu.Unlock()
	require.NotNil(t, group)
	assert.Equal(t, 4, group.Count)
	assert.Len(t, group.AlertIDs, group.Count)
}

func TestObserveGroup_LapsedWindowRestartsGroup(t *testing.T) {
	f := newTestEngine(t)
	now := time.Now().UTC()

	alert := &models.Alert{ID: "a1", RuleID: "r1", Severity: models.SeverityHigh, MetricName: "cpu_usage"}
	for i := 0; i < 4; i++ {
		f.engine.observeGroup(alert, now)
	}

	late := &models.Alert{ID: "a5", RuleID: "r1", Severity: models.SeverityHigh, MetricName: "cpu_usage"}
	result := f.engine.observeGroup(late, now.Add(16*time.Minute))

	assert.Nil(t, result)
	f.engine.mu.Lock()
	group := f.engine.groups[groupKey(late)]
	f.engine.mu.Unlock()
	require.NotNil(t, group)
	assert.Equal(t, 1, group.Count)
	assert.Equal(t, "a5", group.FirstAlertID)
}

func TestEvictStaleGroups(t *testing.T) {
	f := newTestEngine(t)
	now := time.Now().UTC()

	fresh := &models.Alert{ID: "a1", RuleID: "r1", Severity: models.SeverityHigh, MetricName: "cpu_usage"}
	stale := &models.Alert{ID: "a2", RuleID: "r2", Severity: models.SeverityLow, MetricName: "disk_usage"}
	f.engine.observeGroup(fresh, now)
	f.engine.observeGroup(stale, now.Add(-3*time.Hour))

	f.engine.mu.Lock()
	evicted := f.engine.evictStaleGroups(now)
	remaining := len(f.engine.groups)
	f.engine.mu.Unlock()

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, remaining)
}
