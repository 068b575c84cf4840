package suppression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lumen-ops/alertgate-go/internal/database/models"
)

func TestCacheKey_BucketsByMinute(t *testing.T) {
	f := newTestEngine(t)
	alert := &models.Alert{RuleID: "r1", Severity: models.SeverityHigh, MetricName: "cpu_usage"}

	base := time.Date(2026, 8, 26, 10, 30, 5, 0, time.UTC)

	t.Run("same minute shares a key", func(t *testing.T) {
		assert.Equal(t,
			f.engine.cacheKey(alert, base),
			f.engine.cacheKey(alert, base.Add(40*time.Second)))
	})

	t.Run("next minute gets a new key", func(t *testing.T) {
		assert.NotEqual(t,
			f.engine.cacheKey(alert, base),
			f.engine.cacheKey(alert, base.Add(time.Minute)))
	})

	t.Run("different rule gets a new key", func(t *testing.T) {
		other := *alert
		other.RuleID = "r2"
		assert.NotEqual(t,
			f.engine.cacheKey(alert, base),
			f.engine.cacheKey(&other, base))
	})
}

func TestCache_StoreAndLookup(t *testing.T) {
	f := newTestEngine(t)
	now := time.Now().UTC()
	stored := Result{ShouldSuppress: true, Reason: ReasonDuplicateAlert}

	f.engine.storeCache("k1", stored, now)

	got, ok := f.engine.lookupCache("k1", now.Add(time.Minute))
	assert.True(t, ok)
	assert.Equal(t, stored, got)
}

func TestCache_ExpiredEntryIsAMiss(t *testing.T) {
	f := newTestEngine(t)
	now := time.Now().UTC()

	f.engine.storeCache("k1", Result{Reason: ReasonNoSuppression}, now)

	_, ok := f.engine.lookupCache("k1", now.Add(6*time.Minute))
	assert.False(t, ok)

	// The expired entry is gone, not just skipped.
	f.engine.mu.Lock()
	_, still := f.engine.cache["k1"]
	f.engine.mu.Unlock()
	assert.False(t, still)
}

func TestSweep_ClearsCacheAndStaleGroups(t *testing.T) {
	f := newTestEngine(t)
	now := time.Now().UTC()

	f.engine.storeCache("k1", Result{Reason: ReasonNoSuppression}, now)
	f.engine.observeGroup(&models.Alert{ID: "a1", RuleID: "r1", Severity: models.SeverityHigh, MetricName: "cpu_usage"}, now)
	f.engine.observeGroup(&models.Alert{ID: "a2", RuleID: "r2", Severity: models.SeverityLow, MetricName: "disk_usage"}, now.Add(-3*time.Hour))

	f.engine.Sweep()

	stats := f.engine.Stats()
	assert.Equal(t, 0, stats.CacheEntries)
	assert.Equal(t, 1, stats.ActiveGroups)
}
