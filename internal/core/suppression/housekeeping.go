package suppression

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Housekeeper runs the periodic sweep that evicts stale alert groups and
// clears the decision cache. The sweep mutates the same state as the
// evaluation path, so it takes the engine's mutex rather than running as an
// unguarded timer.
type Housekeeper struct {
	engine *Engine
	cron   *cron.Cron
}

// NewHousekeeper schedules the sweep at the configured interval.
func NewHousekeeper(engine *Engine) (*Housekeeper, error) {
	c := cron.New()
	schedule := fmt.Sprintf("@every %s", engine.cfg.HousekeepingInterval)
	if _, err := c.AddFunc(schedule, engine.Sweep); err != nil {
		return nil, fmt.Errorf("failed to schedule housekeeping: %w", err)
	}
	return &Housekeeper{engine: engine, cron: c}, nil
}

// Start begins the periodic sweep.
func (h *Housekeeper) Start() {
	h.cron.Start()
	h.engine.log.WithField("interval", h.engine.cfg.HousekeepingInterval.String()).
		Info("Suppression housekeeping started")
}

// Stop halts the schedule and waits for a running sweep to finish.
func (h *Housekeeper) Stop() {
	ctx := h.cron.Stop()
	<-ctx.Done()
}

// Sweep evicts groups older than the retention horizon and clears the
// decision cache in full.
func (e *Engine) Sweep() {
	now := time.Now().UTC()

	e.mu.Lock()
	evicted := e.evictStaleGroups(now)
	cleared := e.clearCache()
	groupCount := len(e.groups)
	e.mu.Unlock()

	e.metrics.ActiveGroups.Set(float64(groupCount))
	e.metrics.CacheEntries.Set(0)

	e.log.WithFields(logrus.Fields{
		"groups_evicted": evicted,
		"cache_cleared":  cleared,
	}).Debug("Housekeeping sweep completed")
}
