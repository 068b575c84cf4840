package suppression

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lumen-ops/alertgate-go/internal/database/models"
)

// alertGroup clusters closely related alerts under one signature so repeated
// occurrences can be withheld once the group is established.
type alertGroup struct {
	Key          string
	AlertIDs     []string
	FirstAlertID string
	LastAlertID  string
	Count        int
	Severities   map[models.Severity]struct{}
	FirstSeen    time.Time
	LastSeen     time.Time
}

func newAlertGroup(key string, alert *models.Alert, now time.Time) *alertGroup {
	return &alertGroup{
		Key:          key,
		AlertIDs:     []string{alert.ID},
		FirstAlertID: alert.ID,
		LastAlertID:  alert.ID,
		Count:        1,
		Severities:   map[models.Severity]struct{}{alert.Severity: {}},
		FirstSeen:    now,
		LastSeen:     now,
	}
}

// append adds a member, keeping Count equal to len(AlertIDs).
func (g *alertGroup) append(alert *models.Alert, now time.Time) {
	g.AlertIDs = append(g.AlertIDs, alert.ID)
	g.LastAlertID = alert.ID
	g.Count = len(g.AlertIDs)
	g.Severities[alert.Severity] = struct{}{}
	g.LastSeen = now
}

// groupKey derives the composite signature from metric name, severity, rule
// id and the sorted set of context keys. Hashed for a stable, bounded key.
func groupKey(alert *models.Alert) string {
	keys := make([]string, 0, len(alert.Context))
	for k := range alert.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{alert.MetricName, string(alert.Severity), alert.RuleID}
	parts = append(parts, keys...)

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:16])
}

// observeGroup records the alert in its group and decides whether grouping
// suppresses it. Every matching alert joins the group and advances its
// count; suppression only starts for alerts that arrive after the group has
// already reached the member threshold within the grouping window. A group
// whose window has lapsed is restarted with the candidate as sole member.
func (e *Engine) observeGroup(alert *models.Alert, now time.Time) *Result {
	key := groupKey(alert)

	e.mu.Lock()
	defer e.mu.Unlock()

	group, ok := e.groups[key]
	if ok && now.Sub(group.FirstSeen) <= e.cfg.GroupingWindow {
		established := group.Count >= e.cfg.GroupMemberThreshold
		group.append(alert, now)

		if established {
			related := make([]string, len(group.AlertIDs))
			copy(related, group.AlertIDs)
			return &Result{
				ShouldSuppress: true,
				Reason:         ReasonAlertGrouping,
				GroupKey:       key,
				RelatedAlerts:  related,
				Metadata: map[string]string{
					"group_count": strconv.Itoa(group.Count),
				},
			}
		}
		return nil
	}

	e.groups[key] = newAlertGroup(key, alert, now)
	return nil
}

// evictStaleGroups drops groups older than the retention horizon. Caller
// must hold e.mu.
func (e *Engine) evictStaleGroups(now time.Time) int {
	evicted := 0
	cutoff := now.Add(-e.cfg.GroupRetention)
	for key, group := range e.groups {
		if group.FirstSeen.Before(cutoff) {
			delete(e.groups, key)
			evicted++
		}
	}
	return evicted
}
