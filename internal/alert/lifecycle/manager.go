// Package lifecycle maintains the bounded, queryable working set of alerts
// and compliance events for live operations. It is deliberately separate from
// the audit trail: eviction here never touches the permanent record.
package lifecycle

import (
	"log/slog"
	"sync"
	"time"

	"sitewatch/internal/alert"
	alertmetrics "sitewatch/internal/alert/metrics"
	"sitewatch/internal/compliance"
	"sitewatch/pkg/domain"
)

// SystemPublisher raises system events for conditions the manager itself
// observes. The alert bus satisfies this.
type SystemPublisher interface {
	PublishSystem(ev alert.SystemEvent)
}

// Manager owns the bounded alert/compliance history. All mutation is guarded
// by one mutex held only for the O(1) update; queries copy a snapshot under
// the lock and filter outside it, so a long dashboard scan never blocks an
// acknowledgement.
type Manager struct {
	mu     sync.Mutex
	alerts []*alert.SafetyAlert
	events []*compliance.Event
	byID   map[domain.AlertID]*alert.SafetyAlert
	evByID map[domain.EventID]*compliance.Event

	maxHistory int
	retention  time.Duration

	system  SystemPublisher
	logger  *slog.Logger
	metrics *alertmetrics.Metrics
}

// Option configures the Manager.
type Option func(*Manager)

// WithMaxHistory bounds the working set (default 1000 per collection).
func WithMaxHistory(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxHistory = n
		}
	}
}

// WithRetentionWindow sets how long an alert stays eligible for the active
// view (default 72h).
func WithRetentionWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.retention = d
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(mx *alertmetrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mx }
}

// NewManager creates an empty manager. One manager is constructed at service
// start and passed by reference to producers and consumers; there is no
// package-level instance.
func NewManager(system SystemPublisher, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		byID:       make(map[domain.AlertID]*alert.SafetyAlert),
		evByID:     make(map[domain.EventID]*compliance.Event),
		maxHistory: 1000,
		retention:  72 * time.Hour,
		system:     system,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RecordAlert appends an alert to history, evicting the oldest entry when the
// bound is exceeded. A critical alert is itself evidence of system-level risk
// and synchronously raises a DEGRADED system event on the bus.
func (m *Manager) RecordAlert(a alert.SafetyAlert) {
	m.mu.Lock()
	stored := a
	m.alerts = append(m.alerts, &stored)
	m.byID[a.ID] = &stored
	evicted := m.evictLocked()
	m.mu.Unlock()

	if evicted != nil {
		m.noteEviction("alert", evicted.ID.String())
	}
	if m.metrics != nil {
		m.metrics.ActiveAlerts.Set(float64(len(m.ActiveAlerts(time.Now()))))
	}

	if a.Severity == domain.SeverityCritical && m.system != nil {
		m.system.PublishSystem(alert.SystemEvent{
			Component:  "SAFETY_MONITORING",
			Status:     alert.SystemDegraded,
			Message:    "critical safety alert " + a.ID.String() + " raised",
			Metrics:    map[string]string{"alert_id": a.ID.String(), "source_id": a.SourceID},
			OccurredAt: time.Now().UTC(),
		})
	}
}

// RecordComplianceEvent appends a compliance event to history with the same
// FIFO bound as alerts.
func (m *Manager) RecordComplianceEvent(ev compliance.Event) {
	m.mu.Lock()
	stored := ev
	m.events = append(m.events, &stored)
	m.evByID[ev.ID] = &stored
	var evictedID string
	if len(m.events) > m.maxHistory {
		oldest := m.events[0]
		m.events = m.events[1:]
		delete(m.evByID, oldest.ID)
		evictedID = oldest.ID.String()
	}
	m.mu.Unlock()

	if evictedID != "" {
		m.noteEviction("compliance_event", evictedID)
	}
}

// UpdateComplianceEvent replaces the stored event after a lifecycle
// transition. Returns false when the event has already been evicted.
func (m *Manager) UpdateComplianceEvent(ev compliance.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.evByID[ev.ID]
	if !ok {
		return false
	}
	*stored = ev
	return true
}

// AcknowledgeAlert sets the acknowledgement pair atomically. Idempotent:
// acknowledging an already-acknowledged alert is a no-op returning true.
// Returns false only when the id is unknown (evicted or never recorded).
func (m *Manager) AcknowledgeAlert(id domain.AlertID, actorID, notes string) bool {
	m.mu.Lock()
	stored, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	if !stored.Active() {
		m.mu.Unlock()
		return true
	}
	*stored = stored.Acknowledge(actorID, notes, time.Now().UTC())
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.Acknowledgements.Inc()
		m.metrics.ActiveAlerts.Set(float64(len(m.ActiveAlerts(time.Now()))))
	}
	return true
}

// Alert returns the stored alert by id.
func (m *Manager) Alert(id domain.AlertID) (alert.SafetyAlert, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[id]
	if !ok {
		return alert.SafetyAlert{}, false
	}
	return *stored, true
}

// ActiveAlerts returns unacknowledged, immediate-action alerts still inside
// the retention window, oldest first.
func (m *Manager) ActiveAlerts(now time.Time) []alert.SafetyAlert {
	cutoff := now.Add(-m.retention)
	var out []alert.SafetyAlert
	for _, a := range m.AlertHistory() {
		if a.Active() && a.RequiresImmediateAction && a.OccurredAt.After(cutoff) {
			out = append(out, a)
		}
	}
	return out
}

// UnresolvedComplianceEvents returns events still awaiting corrective work.
func (m *Manager) UnresolvedComplianceEvents() []compliance.Event {
	var out []compliance.Event
	for _, ev := range m.ComplianceHistory() {
		if ev.Unresolved() {
			out = append(out, ev)
		}
	}
	return out
}

// AlertHistory copies the current alert working set, oldest first.
func (m *Manager) AlertHistory() []alert.SafetyAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]alert.SafetyAlert, len(m.alerts))
	for i, a := range m.alerts {
		out[i] = *a
	}
	return out
}

// ComplianceHistory copies the current compliance working set, oldest first.
func (m *Manager) ComplianceHistory() []compliance.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]compliance.Event, len(m.events))
	for i, ev := range m.events {
		out[i] = *ev
	}
	return out
}

// Sweep expires settled records older than the retention window: acknowledged
// alerts and closed compliance events. The host process calls this on a fixed
// interval; the manager runs no timers of its own. Unsettled records stay
// until FIFO eviction regardless of age.
func (m *Manager) Sweep(now time.Time) (removed int) {
	cutoff := now.Add(-m.retention)

	m.mu.Lock()
	alerts := m.alerts[:0]
	for _, a := range m.alerts {
		if !a.Active() && a.OccurredAt.Before(cutoff) {
			delete(m.byID, a.ID)
			removed++
			continue
		}
		alerts = append(alerts, a)
	}
	m.alerts = alerts

	events := m.events[:0]
	for _, ev := range m.events {
		if ev.Status == compliance.StatusClosed && ev.OccurredAt.Before(cutoff) {
			delete(m.evByID, ev.ID)
			removed++
			continue
		}
		events = append(events, ev)
	}
	m.events = events
	m.mu.Unlock()

	if removed > 0 && m.logger != nil {
		m.logger.Debug("lifecycle sweep expired records", "removed", removed)
	}
	return removed
}

// evictLocked enforces the alert history bound. Caller holds m.mu.
func (m *Manager) evictLocked() *alert.SafetyAlert {
	if len(m.alerts) <= m.maxHistory {
		return nil
	}
	oldest := m.alerts[0]
	m.alerts = m.alerts[1:]
	delete(m.byID, oldest.ID)
	return oldest
}

// noteEviction makes overflow observable without ever surfacing a failure.
func (m *Manager) noteEviction(kind, id string) {
	if m.metrics != nil {
		m.metrics.HistoryEvictions.Inc()
	}
	if m.logger != nil {
		m.logger.Debug("history eviction", "kind", kind, "id", id)
	}
}
