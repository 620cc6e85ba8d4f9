// Package processor is the compliance event processor: it turns inbound
// hazard signals and manual reports into safety alerts, compliance events
// and audit entries, and drives events through the correction lifecycle.
package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sitewatch/internal/alert"
	"sitewatch/internal/audit"
	"sitewatch/internal/compliance"
	complianceMetrics "sitewatch/internal/compliance/metrics"
	"sitewatch/internal/compliance/ports"
	"sitewatch/pkg/domain"
	dErrors "sitewatch/pkg/domain-errors"
)

// Hazard is a single finding extracted from an upstream detection signal.
type Hazard struct {
	Description string
	Severity    domain.Severity
	Standard    string
}

// HazardSignal is a machine-originated detection, typically produced by
// photo analysis of a work area.
type HazardSignal struct {
	SourceID  string
	SessionID domain.SessionID
	ActorID   string
	WorkType  string
	Location  string
	Hazards   []Hazard
}

// ManualReport is a human-filed compliance report.
type ManualReport struct {
	SessionID         domain.SessionID
	ActorID           string
	EventType         compliance.EventType
	Standard          string
	Severity          domain.Severity
	Description       string
	Location          string
	EmployeesAffected int
	InjuriesReported  int
	ViolationType     compliance.ViolationType
	OccurredAt        time.Time
}

// HazardResult reports what a hazard signal produced. Event is set only
// when the findings were severe enough to open a compliance event.
type HazardResult struct {
	Alert SafetyAlertRef
	Event *compliance.Event
}

// SafetyAlertRef carries the alert raised for a signal; Raised is false for
// clean analyses.
type SafetyAlertRef struct {
	Raised bool
	Alert  alert.SafetyAlert
}

// Service coordinates signal intake. All bus emission happens synchronously
// on the caller's goroutine so regulatory notifications are never deferred
// behind a queue.
type Service struct {
	trail     ports.TrailPort
	bus       ports.BusPort
	lifecycle ports.LifecyclePort
	store     ports.EventStorePort

	// sessionID is the monitoring session whose audit trail receives
	// entries for signals that do not carry a session of their own.
	sessionID domain.SessionID

	logger  *slog.Logger
	metrics *complianceMetrics.Metrics
	now     func() time.Time
}

// Option configures optional Service behavior.
type Option func(*Service)

// WithMetrics attaches prometheus counters.
func WithMetrics(m *complianceMetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	trail ports.TrailPort,
	bus ports.BusPort,
	lifecycle ports.LifecyclePort,
	store ports.EventStorePort,
	sessionID domain.SessionID,
	logger *slog.Logger,
	opts ...Option,
) (*Service, error) {
	if trail == nil || bus == nil || lifecycle == nil || store == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "processor dependencies must not be nil")
	}
	if sessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "monitoring session id is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		trail:     trail,
		bus:       bus,
		lifecycle: lifecycle,
		store:     store,
		sessionID: sessionID,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ProcessHazardDetection ingests a detection signal. Every signal with
// findings raises a SafetyAlert and an audit entry; findings at HIGH or
// above additionally open a compliance event linked back to the alert.
func (s *Service) ProcessHazardDetection(ctx context.Context, sig HazardSignal) (HazardResult, error) {
	if sig.SourceID == "" {
		s.countRejected()
		return HazardResult{}, dErrors.New(dErrors.CodeInvalidInput, "hazard signal source id is required")
	}
	if sig.ActorID == "" {
		s.countRejected()
		return HazardResult{}, dErrors.New(dErrors.CodeInvalidInput, "hazard signal actor id is required")
	}
	for _, h := range sig.Hazards {
		if !h.Severity.IsValid() {
			s.countRejected()
			return HazardResult{}, dErrors.New(dErrors.CodeInvalidInput,
				fmt.Sprintf("hazard severity %q is invalid", h.Severity))
		}
	}
	if s.metrics != nil {
		s.metrics.HazardsProcessed.Inc()
	}

	sessionID := s.resolveSession(sig.SessionID)

	if len(sig.Hazards) == 0 {
		// Clean analysis. Goes on the record but raises nothing.
		entry, err := audit.NewEntry(sig.ActorID, "work area analyzed, no hazards found", audit.SafetyActionDetail{
			ActionTaken: "PHOTO_ANALYSIS",
			WorkType:    sig.WorkType,
			HazardCount: 0,
			PhotoCount:  1,
		})
		if err != nil {
			return HazardResult{}, err
		}
		entry = entry.WithMetadata(signalMetadata(sig))
		if _, err := s.trail.AddEntry(ctx, sessionID, entry); err != nil {
			return HazardResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "record clean analysis")
		}
		return HazardResult{}, nil
	}

	severity := maxSeverity(sig.Hazards)
	worst := worstHazard(sig.Hazards)
	message := fmt.Sprintf("%d hazard(s) detected at %s: %s", len(sig.Hazards), sig.Location, worst.Description)

	sa, err := alert.New(sig.SourceID, alert.TypeHazardDetected, severity, message)
	if err != nil {
		return HazardResult{}, err
	}
	sa.Metadata = signalMetadata(sig)
	s.lifecycle.RecordAlert(sa)
	s.bus.PublishAlert(sa)

	entry, err := audit.NewEntry(sig.ActorID, message, audit.SafetyActionDetail{
		ActionTaken: "PHOTO_ANALYSIS",
		WorkType:    sig.WorkType,
		HazardCount: len(sig.Hazards),
		PhotoCount:  1,
	})
	if err != nil {
		return HazardResult{}, err
	}
	entry = entry.WithMetadata(signalMetadata(sig))
	if _, err := s.trail.AddEntry(ctx, sessionID, entry); err != nil {
		return HazardResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "record hazard detection")
	}

	result := HazardResult{Alert: SafetyAlertRef{Raised: true, Alert: sa}}
	if !severity.AtLeast(domain.SeverityHigh) {
		return result, nil
	}

	ev, err := compliance.NewEvent(compliance.EventHazardDetected, worst.Standard, severity, message, s.now())
	if err != nil {
		return HazardResult{}, err
	}
	alertID := sa.ID
	ev.TriggeredByAlert = &alertID
	if err := s.openEvent(ctx, sessionID, sig.ActorID, &ev); err != nil {
		return HazardResult{}, err
	}
	result.Event = &ev
	return result, nil
}

// ProcessManualReport files a human-submitted compliance report.
func (s *Service) ProcessManualReport(ctx context.Context, report ManualReport) (compliance.Event, error) {
	if report.ActorID == "" {
		s.countRejected()
		return compliance.Event{}, dErrors.New(dErrors.CodeInvalidInput, "report actor id is required")
	}
	eventType := report.EventType
	if eventType == "" {
		eventType = compliance.EventManualReport
	}

	ev, err := compliance.NewEvent(eventType, report.Standard, report.Severity, report.Description, report.OccurredAt)
	if err != nil {
		s.countRejected()
		return compliance.Event{}, err
	}
	ev.EmployeesAffected = report.EmployeesAffected
	ev.InjuriesReported = report.InjuriesReported
	ev.ViolationType = report.ViolationType

	sessionID := s.resolveSession(report.SessionID)
	if err := s.openEvent(ctx, sessionID, report.ActorID, &ev); err != nil {
		return compliance.Event{}, err
	}
	return ev, nil
}

// Transition advances a compliance event through its lifecycle and records
// the move on the audit trail.
func (s *Service) Transition(ctx context.Context, id domain.EventID, next compliance.Status, actorID string) (compliance.Event, error) {
	if actorID == "" {
		return compliance.Event{}, dErrors.New(dErrors.CodeInvalidInput, "transition actor id is required")
	}
	ev, err := s.store.FindByID(ctx, id)
	if err != nil {
		return compliance.Event{}, err
	}
	prev := ev.Status
	ev, err = ev.TransitionTo(next, actorID, s.now())
	if err != nil {
		return compliance.Event{}, err
	}
	if err := s.store.Save(ctx, ev); err != nil {
		return compliance.Event{}, dErrors.Wrap(err, dErrors.CodeInternal, "persist compliance transition")
	}
	s.lifecycle.UpdateComplianceEvent(ev)
	if s.metrics != nil {
		s.metrics.Transitions.Inc()
	}

	entry, err := audit.NewEntry(actorID,
		fmt.Sprintf("compliance event %s moved from %s to %s", ev.ID, prev, next),
		audit.ComplianceDetail{
			EventID:  ev.ID,
			Standard: ev.Standard,
			Level:    ev.Severity,
			Status:   string(ev.Status),
		})
	if err != nil {
		return compliance.Event{}, err
	}
	if _, err := s.trail.AddEntry(ctx, s.sessionID, entry); err != nil {
		return compliance.Event{}, dErrors.Wrap(err, dErrors.CodeInternal, "record compliance transition")
	}

	s.bus.PublishCompliance(ev)
	s.logger.InfoContext(ctx, "compliance event transitioned",
		slog.String("event_id", ev.ID.String()),
		slog.String("from", string(prev)),
		slog.String("to", string(next)),
		slog.String("actor_id", actorID),
	)
	return ev, nil
}

// CloseEvent closes an event, recording who verified the correction.
func (s *Service) CloseEvent(ctx context.Context, id domain.EventID, actorID string) (compliance.Event, error) {
	return s.Transition(ctx, id, compliance.StatusClosed, actorID)
}

// ReopenEvent reopens a previously closed event.
func (s *Service) ReopenEvent(ctx context.Context, id domain.EventID, actorID string) (compliance.Event, error) {
	return s.Transition(ctx, id, compliance.StatusReopened, actorID)
}

// Event returns a stored compliance event.
func (s *Service) Event(ctx context.Context, id domain.EventID) (compliance.Event, error) {
	return s.store.FindByID(ctx, id)
}

// OverdueEvents lists events whose correction deadline has passed.
func (s *Service) OverdueEvents(ctx context.Context) ([]compliance.Event, error) {
	return s.store.ListOverdue(ctx, s.now())
}

// openEvent persists a newly created event, tracks it, writes the audit
// record and fans it out. Emission happens before this call returns.
func (s *Service) openEvent(ctx context.Context, sessionID domain.SessionID, actorID string, ev *compliance.Event) error {
	if err := s.store.Save(ctx, *ev); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist compliance event")
	}
	s.lifecycle.RecordComplianceEvent(*ev)
	if s.metrics != nil {
		s.metrics.EventsCreated.WithLabelValues(string(ev.Severity)).Inc()
	}

	entry, err := audit.NewEntry(actorID,
		fmt.Sprintf("compliance event opened: %s", ev.Description),
		audit.ComplianceDetail{
			EventID:  ev.ID,
			Standard: ev.Standard,
			Level:    ev.Severity,
			Status:   string(ev.Status),
		})
	if err != nil {
		return err
	}
	if _, err := s.trail.AddEntry(ctx, sessionID, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "record compliance event")
	}

	s.bus.PublishCompliance(*ev)
	if ev.RequiresImmediateNotification() {
		if s.metrics != nil {
			s.metrics.ImmediateNotices.Inc()
		}
		s.logger.WarnContext(ctx, "compliance event requires immediate notification",
			slog.String("event_id", ev.ID.String()),
			slog.String("severity", string(ev.Severity)),
			slog.String("standard", ev.Standard),
			slog.String("deadline", ev.CorrectionDeadline.Format(time.RFC3339)),
		)
	}
	return nil
}

func (s *Service) resolveSession(id domain.SessionID) domain.SessionID {
	if id.IsNil() {
		return s.sessionID
	}
	return id
}

func (s *Service) countRejected() {
	if s.metrics != nil {
		s.metrics.RejectedSignals.Inc()
	}
}

func signalMetadata(sig HazardSignal) map[string]string {
	md := map[string]string{"photoId": sig.SourceID}
	if sig.Location != "" {
		md["location"] = sig.Location
	}
	return md
}

func maxSeverity(hazards []Hazard) domain.Severity {
	max := domain.SeverityLow
	for _, h := range hazards {
		if h.Severity.Rank() > max.Rank() {
			max = h.Severity
		}
	}
	return max
}

func worstHazard(hazards []Hazard) Hazard {
	worst := hazards[0]
	for _, h := range hazards[1:] {
		if h.Severity.Rank() > worst.Severity.Rank() {
			worst = h
		}
	}
	return worst
}
