package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsPublished  *prometheus.CounterVec
	EventsDropped    prometheus.Counter
	Subscribers      prometheus.Gauge
	HistoryEvictions prometheus.Counter
	Acknowledgements prometheus.Counter
	ActiveAlerts     prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sitewatch_alert_events_published_total",
			Help: "Total number of events published on the alert bus",
		}, []string{"kind"}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewatch_alert_events_dropped_total",
			Help: "Total number of events dropped from slow subscriber queues",
		}),
		Subscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sitewatch_alert_subscribers",
			Help: "Current number of alert bus subscribers",
		}),
		HistoryEvictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewatch_alert_history_evictions_total",
			Help: "Total number of alerts evicted from the bounded lifecycle history",
		}),
		Acknowledgements: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitewatch_alert_acknowledgements_total",
			Help: "Total number of alert acknowledgements",
		}),
		ActiveAlerts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sitewatch_alert_active",
			Help: "Current number of active (unacknowledged, immediate-action) alerts",
		}),
	}
}
