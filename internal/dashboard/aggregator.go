// Package dashboard computes read-side summaries of site safety posture.
// Everything here is derived; the aggregator owns no state of its own.
package dashboard

import (
	"context"
	"time"

	"sitewatch/internal/alert"
	"sitewatch/internal/compliance"
	"sitewatch/pkg/domain"
)

// Snapshot is one point-in-time dashboard view over a reporting window.
type Snapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Window      string    `json:"window"`

	ActiveAlerts   int `json:"activeAlerts"`
	CriticalAlerts int `json:"criticalAlerts"`
	TotalAlerts    int `json:"totalAlerts"`

	AlertsInWindow           int `json:"alertsInWindow"`
	ComplianceEventsInWindow int `json:"complianceEventsInWindow"`

	OpenComplianceEvents    int     `json:"openComplianceEvents"`
	OverdueComplianceEvents int     `json:"overdueComplianceEvents"`
	ComplianceRate          float64 `json:"complianceRate"`
	ComplianceScore         float64 `json:"complianceScore"`

	AlertsByType      map[alert.Type]int      `json:"alertsByType"`
	SeverityBreakdown map[domain.Severity]int `json:"severityBreakdown"`
}

// LifecycleReader is the slice of the lifecycle manager the aggregator needs.
type LifecycleReader interface {
	ActiveAlerts(now time.Time) []alert.SafetyAlert
	AlertHistory() []alert.SafetyAlert
	ComplianceHistory() []compliance.Event
	UnresolvedComplianceEvents() []compliance.Event
}

// OverdueLister reports events past their correction deadline.
type OverdueLister interface {
	ListOverdue(ctx context.Context, now time.Time) ([]compliance.Event, error)
}

type Aggregator struct {
	lifecycle LifecycleReader
	overdue   OverdueLister
	now       func() time.Time
}

func NewAggregator(lifecycle LifecycleReader, overdue OverdueLister) *Aggregator {
	return &Aggregator{
		lifecycle: lifecycle,
		overdue:   overdue,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Build computes a fresh snapshot from the live working set. window bounds
// the by-type and severity tallies; a nonpositive window means unbounded.
func (a *Aggregator) Build(ctx context.Context, window time.Duration) (Snapshot, error) {
	now := a.now()
	active := a.lifecycle.ActiveAlerts(now)
	history := a.lifecycle.AlertHistory()
	events := a.lifecycle.ComplianceHistory()
	unresolved := a.lifecycle.UnresolvedComplianceEvents()

	snap := Snapshot{
		GeneratedAt:              now,
		Window:                   window.String(),
		ActiveAlerts:             len(active),
		TotalAlerts:              len(history),
		AlertsInWindow:           len(a.AlertsInWindow(window)),
		ComplianceEventsInWindow: len(a.ComplianceEventsInWindow(window)),
		OpenComplianceEvents:     len(unresolved),
		ComplianceRate:           complianceRate(events),
		ComplianceScore:          complianceScore(unresolved),
		AlertsByType:             a.AlertsByType(window),
		SeverityBreakdown:        a.SeverityDistribution(window),
	}
	for _, al := range active {
		if al.Severity == domain.SeverityCritical {
			snap.CriticalAlerts++
		}
	}

	if a.overdue != nil {
		overdue, err := a.overdue.ListOverdue(ctx, now)
		if err != nil {
			return Snapshot{}, err
		}
		snap.OverdueComplianceEvents = len(overdue)
	}
	return snap, nil
}

// AlertsInWindow returns every alert, acknowledged or not, that occurred
// within the trailing window.
func (a *Aggregator) AlertsInWindow(window time.Duration) []alert.SafetyAlert {
	cutoff := a.cutoff(window)
	var out []alert.SafetyAlert
	for _, al := range a.lifecycle.AlertHistory() {
		if al.OccurredAt.After(cutoff) {
			out = append(out, al)
		}
	}
	return out
}

// ComplianceEventsInWindow returns every tracked compliance event that
// occurred within the trailing window.
func (a *Aggregator) ComplianceEventsInWindow(window time.Duration) []compliance.Event {
	cutoff := a.cutoff(window)
	var out []compliance.Event
	for _, ev := range a.lifecycle.ComplianceHistory() {
		if ev.OccurredAt.After(cutoff) {
			out = append(out, ev)
		}
	}
	return out
}

// AlertsByType tallies alerts in the window by alert type.
func (a *Aggregator) AlertsByType(window time.Duration) map[alert.Type]int {
	out := make(map[alert.Type]int)
	for _, al := range a.AlertsInWindow(window) {
		out[al.AlertType]++
	}
	return out
}

// SeverityDistribution tallies alerts in the window by severity.
func (a *Aggregator) SeverityDistribution(window time.Duration) map[domain.Severity]int {
	out := make(map[domain.Severity]int)
	for _, al := range a.AlertsInWindow(window) {
		out[al.Severity]++
	}
	return out
}

// cutoff is the window's lower bound; a nonpositive window never excludes.
func (a *Aggregator) cutoff(window time.Duration) time.Time {
	if window <= 0 {
		return time.Time{}
	}
	return a.now().Add(-window)
}

// complianceRate is the share of tracked events that have been closed. A
// site with no events yet is fully compliant, not zero percent compliant.
func complianceRate(events []compliance.Event) float64 {
	if len(events) == 0 {
		return 100.0
	}
	closed := 0
	for _, ev := range events {
		if ev.Status == compliance.StatusClosed {
			closed++
		}
	}
	return float64(closed) / float64(len(events)) * 100.0
}

// complianceScore starts at 1.0 and subtracts the per-severity penalty of
// every unresolved event, floored at zero.
func complianceScore(unresolved []compliance.Event) float64 {
	score := 1.0
	for _, ev := range unresolved {
		score -= compliance.ScoreImpact(ev.Severity)
	}
	if score < 0 {
		return 0
	}
	return score
}
