package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments the sync engine. A nil *Metrics disables
// instrumentation; every method is nil-safe.
type Metrics struct {
	recordsProcessed *prometheus.CounterVec
	recordErrors     prometheus.Counter
	batchDuration    prometheus.Histogram
	batchIssues      prometheus.Gauge
}

// NewMetrics registers the sync metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		recordsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "boardssync_records_processed_total",
			Help: "Issues processed, partitioned by outcome action.",
		}, []string{"action"}),
		recordErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "boardssync_record_errors_total",
			Help: "Issues that failed to sync.",
		}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "boardssync_batch_duration_seconds",
			Help:    "Wall-clock duration of batch sync runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		batchIssues: factory.NewGauge(prometheus.GaugeOpts{
			Name: "boardssync_batch_issues",
			Help: "Issues seen by the most recent batch run.",
		}),
	}
}

func (m *Metrics) recordProcessed(action Action) {
	if m == nil {
		return
	}
	m.recordsProcessed.WithLabelValues(string(action)).Inc()
}

func (m *Metrics) recordError() {
	if m == nil {
		return
	}
	m.recordErrors.Inc()
}

func (m *Metrics) observeBatch(result *BatchResult) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(result.Duration.Seconds())
	m.batchIssues.Set(float64(result.TotalIssues))
}
