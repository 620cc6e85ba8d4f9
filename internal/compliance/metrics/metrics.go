package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsCreated     *prometheus.CounterVec
	Transitions       prometheus.Counter
	ImmediateNotices  prometheus.Counter
	HazardsProcessed  prometheus.Counter
	RejectedSignals   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		EventsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sitewatch_compliance_events_created_total",
			Help: "Total number of compliance events created",
		}, []string{"severity"}),
		Transitions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewatch_compliance_transitions_total",
			Help: "Total number of compliance lifecycle transitions",
		}),
		ImmediateNotices: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewatch_compliance_immediate_notifications_total",
			Help: "Total number of compliance events requiring immediate notification",
		}),
		HazardsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewatch_compliance_hazard_signals_total",
			Help: "Total number of hazard detection signals processed",
		}),
		RejectedSignals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewatch_compliance_rejected_signals_total",
			Help: "Total number of malformed signals rejected before processing",
		}),
	}
}
