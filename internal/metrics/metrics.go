package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for the operations counter.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeReplayed  = "replayed"
	OutcomeError     = "error"
)

type Collector struct {
	registry          *prometheus.Registry
	operations        *prometheus.CounterVec
	operationDuration prometheus.Histogram
	accountsCreated   prometheus.Counter
	duplicateEvents   prometheus.Counter
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	return &Collector{
		registry: registry,
		operations: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Total number of processed ledger operations by outcome",
		}, []string{"outcome"}),
		operationDuration: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_operation_duration_seconds",
			Help:    "Time taken to apply one ledger operation",
			Buckets: prometheus.DefBuckets,
		}),
		accountsCreated: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "accounts_provisioned_total",
			Help: "Total number of accounts created from account-created events",
		}),
		duplicateEvents: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "account_created_events_duplicate_total",
			Help: "Total number of redelivered account-created events swallowed as no-ops",
		}),
	}
}

func (c *Collector) RecordOperation(outcome string, duration time.Duration) {
	c.operations.WithLabelValues(outcome).Inc()
	c.operationDuration.Observe(duration.Seconds())
}

func (c *Collector) RecordProvisioning(created bool) {
	if created {
		c.accountsCreated.Inc()
	} else {
		c.duplicateEvents.Inc()
	}
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
