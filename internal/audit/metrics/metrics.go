package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EntriesAppended    *prometheus.CounterVec
	AppendFailures     prometheus.Counter
	IntegrityChecks    prometheus.Counter
	IntegrityFailures  prometheus.Counter
	AppendDurationSecs prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		EntriesAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sitewatch_audit_entries_appended_total",
			Help: "Total number of audit entries appended to trails",
		}, []string{"type"}),
		AppendFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewatch_audit_append_failures_total",
			Help: "Total number of rejected or failed audit appends",
		}),
		IntegrityChecks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewatch_audit_integrity_checks_total",
			Help: "Total number of trail integrity verifications",
		}),
		IntegrityFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewatch_audit_integrity_failures_total",
			Help: "Total number of trail integrity verifications that detected tampering",
		}),
		AppendDurationSecs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitewatch_audit_append_duration_seconds",
			Help:    "Latency of audit trail appends",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		}),
	}
}

func (m *Metrics) ObserveAppend(entryType string, seconds float64) {
	m.EntriesAppended.WithLabelValues(entryType).Inc()
	m.AppendDurationSecs.Observe(seconds)
}
