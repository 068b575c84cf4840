package suppression

import (
	"context"
	"time"

	"github.com/lumen-ops/alertgate-go/internal/database/models"
	"github.com/lumen-ops/alertgate-go/internal/database/repositories"
	"github.com/lumen-ops/alertgate-go/pkg/errors"
	"github.com/sirupsen/logrus"
)

// evalContext is the working set one evaluation runs against: trailing
// history, enabled custom rules and currently active maintenance windows.
type evalContext struct {
	now     time.Time
	history []*models.Alert
	rules   []*models.SuppressionRule
	windows []*models.MaintenanceWindow
}

// contextBuilder loads the working set for one incoming alert. Every load
// is fail-open: if the store is unreachable the affected set is substituted
// with an empty one and evaluation proceeds, because dropping a real alert
// over an internal failure is worse than delivering a possible duplicate.
type contextBuilder struct {
	alerts  repositories.AlertRepository
	rules   repositories.SuppressionRuleRepository
	windows repositories.MaintenanceWindowRepository
	window  time.Duration
	timeout time.Duration
	log     *logrus.Logger
}

func newContextBuilder(
	alerts repositories.AlertRepository,
	rules repositories.SuppressionRuleRepository,
	windows repositories.MaintenanceWindowRepository,
	historyWindow, storeTimeout time.Duration,
	log *logrus.Logger,
) *contextBuilder {
	return &contextBuilder{
		alerts:  alerts,
		rules:   rules,
		windows: windows,
		window:  historyWindow,
		timeout: storeTimeout,
		log:     log,
	}
}

// Build assembles the working set for the alert at the given instant.
func (b *contextBuilder) Build(ctx context.Context, alert *models.Alert, now time.Time) *evalContext {
	ec := &evalContext{now: now}

	loadCtx, cancel := context.WithTimeout(ctx, b.timeout)
	history, err := b.alerts.ListSince(loadCtx, now.Add(-b.window), alert.Team)
	cancel()
	if err != nil {
		b.log.WithError(&errors.ConfigLoadError{Resource: "alert history", Err: err}).
			Warn("Proceeding with empty alert history")
	} else {
		ec.history = history
	}

	loadCtx, cancel = context.WithTimeout(ctx, b.timeout)
	rules, err := b.rules.ListEnabled(loadCtx)
	cancel()
	if err != nil {
		b.log.WithError(&errors.ConfigLoadError{Resource: "suppression rules", Err: err}).
			Warn("Proceeding with no custom suppression rules")
	} else {
		ec.rules = rules
	}

	loadCtx, cancel = context.WithTimeout(ctx, b.timeout)
	windows, err := b.windows.ListActiveAt(loadCtx, now)
	cancel()
	if err != nil {
		b.log.WithError(&errors.ConfigLoadError{Resource: "maintenance windows", Err: err}).
			Warn("Proceeding with no maintenance windows")
	} else {
		ec.windows = windows
	}

	return ec
}
