package suppression

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments the engine maintains.
type Metrics struct {
	Decisions     *prometheus.CounterVec
	CacheHits     prometheus.Counter
	AuditFailures prometheus.Counter
	ActiveGroups  prometheus.Gauge
	CacheEntries  prometheus.Gauge
}

// NewMetrics registers the engine's instruments with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alertgate",
			Subsystem: "suppression",
			Name:      "decisions_total",
			Help:      "Suppression decisions by reason.",
		}, []string{"reason", "suppressed"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "alertgate",
			Subsystem: "suppression",
			Name:      "cache_hits_total",
			Help:      "Decisions served from the memoization cache.",
		}),
		AuditFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "alertgate",
			Subsystem: "suppression",
			Name:      "audit_failures_total",
			Help:      "Audit records that could not be persisted after retries.",
		}),
		ActiveGroups: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "alertgate",
			Subsystem: "suppression",
			Name:      "active_groups",
			Help:      "Alert groups currently held in memory.",
		}),
		CacheEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "alertgate",
			Subsystem: "suppression",
			Name:      "cache_entries",
			Help:      "Entries currently held in the decision cache.",
		}),
	}
}
