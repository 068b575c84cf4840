package suppression

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/lumen-ops/alertgate-go/internal/config"
	"github.com/lumen-ops/alertgate-go/internal/database/models"
	"github.com/lumen-ops/alertgate-go/internal/database/repositories"
	"github.com/lumen-ops/alertgate-go/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Engine decides, for every newly raised alert, whether it should be
// delivered or suppressed, and records why. It owns the in-memory group
// table and decision cache; all shared state is guarded by a single mutex so
// concurrent evaluations and the housekeeping sweep never race.
type Engine struct {
	cfg     config.SuppressionConfig
	log     *logrus.Logger
	builder *contextBuilder
	audit   repositories.AuditRepository
	metrics *Metrics

	mu           sync.Mutex
	groups       map[string]*alertGroup
	cache        map[string]cacheEntry
	loadedRules  int
	loadedWindow int
	evaluations  int64
	suppressed   int64

	auditCh chan *models.AuditRecord
	wg      sync.WaitGroup
	once    sync.Once
}

// NewEngine creates the suppression engine.
func NewEngine(
	cfg config.SuppressionConfig,
	alerts repositories.AlertRepository,
	rules repositories.SuppressionRuleRepository,
	windows repositories.MaintenanceWindowRepository,
	audit repositories.AuditRepository,
	metrics *Metrics,
	log *logrus.Logger,
) *Engine {
	e := &Engine{
		cfg:     cfg,
		log:     log,
		builder: newContextBuilder(alerts, rules, windows, cfg.HistoryWindow, cfg.StoreTimeout, log),
		audit:   audit,
		metrics: metrics,
		groups:  make(map[string]*alertGroup),
		cache:   make(map[string]cacheEntry),
		auditCh: make(chan *models.AuditRecord, cfg.AuditBufferSize),
	}

	e.wg.Add(1)
	go e.auditWorker()

	return e
}

// Evaluate is the single entry point: it decides whether the alert should
// be suppressed. It never returns an error; on any internal failure the
// engine fails open with reason suppression_evaluation_error, because
// silently dropping a real alert is worse than delivering a duplicate.
func (e *Engine) Evaluate(ctx context.Context, alert *models.Alert, rule *models.AlertRule) (result Result) {
	now := time.Now().UTC()

	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("panic", r).Error("Suppression evaluation panicked, failing open")
			result = Result{ShouldSuppress: false, Reason: ReasonEvaluationError}
		}
	}()

	if alert == nil || rule == nil {
		e.log.Error("Evaluate called without alert or rule, failing open")
		return Result{ShouldSuppress: false, Reason: ReasonEvaluationError}
	}

	key := e.cacheKey(alert, now)
	if cached, ok := e.lookupCache(key, now); ok {
		e.metrics.CacheHits.Inc()
		e.recordDecision(alert, cached, now)
		return cached
	}

	ec := e.builder.Build(ctx, alert, now)

	e.mu.Lock()
	e.loadedRules = len(ec.rules)
	e.loadedWindow = len(ec.windows)
	e.mu.Unlock()

	result = e.runPipeline(alert, rule, ec)

	e.storeCache(key, result, now)
	e.recordDecision(alert, result, now)

	return result
}

// runPipeline executes the checks in their fixed order. The first check that
// suppresses wins; a failing check is treated as "did not match".
func (e *Engine) runPipeline(alert *models.Alert, rule *models.AlertRule, ec *evalContext) Result {
	for _, c := range e.pipeline() {
		res, err := c.run(alert, rule, ec)
		if err != nil {
			evalErr := &errors.EvaluationError{Check: c.name, Err: err}
			e.log.WithError(evalErr).WithField("alert_id", alert.ID).
				Warn("Suppression check failed, continuing pipeline")
			continue
		}
		if res != nil && res.ShouldSuppress {
			return *res
		}
	}
	return Result{ShouldSuppress: false, Reason: ReasonNoSuppression}
}

// recordDecision updates counters and hands the decision to the audit
// worker. Audit failures never change the returned decision.
func (e *Engine) recordDecision(alert *models.Alert, result Result, now time.Time) {
	e.mu.Lock()
	e.evaluations++
	if result.ShouldSuppress {
		e.suppressed++
	}
	groupCount := len(e.groups)
	cacheCount := len(e.cache)
	e.mu.Unlock()

	e.metrics.Decisions.WithLabelValues(string(result.Reason), boolLabel(result.ShouldSuppress)).Inc()
	e.metrics.ActiveGroups.Set(float64(groupCount))
	e.metrics.CacheEntries.Set(float64(cacheCount))

	record := &models.AuditRecord{
		AlertID:    alert.ID,
		Suppressed: result.ShouldSuppress,
		Reason:     string(result.Reason),
		Metadata:   result.Metadata,
		CreatedAt:  now,
	}
	if result.RuleID != "" {
		record.RuleID = sql.NullString{String: result.RuleID, Valid: true}
	}
	if result.SuppressUntil != nil {
		record.SuppressUntil = sql.NullTime{Time: *result.SuppressUntil, Valid: true}
	}

	select {
	case e.auditCh <- record:
	default:
		e.metrics.AuditFailures.Inc()
		e.log.WithField("alert_id", alert.ID).Warn("Audit buffer full, dropping decision record")
	}
}

// auditWorker drains the audit channel, writing each record with bounded
// retry. Slow or failing audit I/O never blocks the evaluation path.
func (e *Engine) auditWorker() {
	defer e.wg.Done()

	for record := range e.auditCh {
		e.writeAudit(record)
	}
}

func (e *Engine) writeAudit(record *models.AuditRecord) {
	delay := e.cfg.AuditRetryDelay
	var lastErr error

	for attempt := 0; attempt <= e.cfg.AuditMaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(delay)
			delay *= 2
		}

		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.StoreTimeout)
		lastErr = e.audit.Append(ctx, record)
		cancel()
		if lastErr == nil {
			return
		}
	}

	e.metrics.AuditFailures.Inc()
	e.log.WithError(&errors.AuditWriteError{AlertID: record.AlertID, Err: lastErr}).
		Error("Giving up on audit record")
}

// Stats returns the read-only operational snapshot.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Stats{
		ActiveGroups:  len(e.groups),
		CacheEntries:  len(e.cache),
		LoadedRules:   e.loadedRules,
		LoadedWindows: e.loadedWindow,
		Evaluations:   e.evaluations,
		Suppressed:    e.suppressed,
	}
}

// Stop shuts the engine down, draining any queued audit records.
func (e *Engine) Stop() {
	e.once.Do(func() {
		close(e.auditCh)
	})
	e.wg.Wait()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
