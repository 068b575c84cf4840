package suppression

import (
	"fmt"
	"time"

	"github.com/lumen-ops/alertgate-go/internal/database/models"
)

// cacheEntry is one memoized decision with its expiry.
type cacheEntry struct {
	result    Result
	expiresAt time.Time
}

// cacheKey derives the memoization key from rule id, metric name, severity
// and the evaluation instant truncated to the configured bucket. Bucketing
// is what makes bursts of near-identical evaluations actually hit the cache.
func (e *Engine) cacheKey(alert *models.Alert, now time.Time) string {
	bucket := now.Truncate(e.cfg.CacheKeyBucket).Unix()
	return fmt.Sprintf("%s|%s|%s|%d", alert.RuleID, alert.MetricName, alert.Severity, bucket)
}

// lookupCache returns a memoized result if one is still valid. Expired
// entries are dropped on sight and treated as misses.
func (e *Engine) lookupCache(key string, now time.Time) (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.cache[key]
	if !ok {
		return Result{}, false
	}
	if now.After(entry.expiresAt) {
		delete(e.cache, key)
		return Result{}, false
	}
	return entry.result, true
}

// storeCache memoizes a decision for the configured TTL.
func (e *Engine) storeCache(key string, result Result, now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache[key] = cacheEntry{
		result:    result,
		expiresAt: now.Add(e.cfg.CacheTTL),
	}
}

// clearCache empties the decision cache. Caller must hold e.mu.
func (e *Engine) clearCache() int {
	cleared := len(e.cache)
	e.cache = make(map[string]cacheEntry)
	return cleared
}
