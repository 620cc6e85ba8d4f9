// Package compliance turns raw hazard and violation signals into compliance
// events and drives them through the correction lifecycle.
package compliance

import (
	"fmt"
	"time"

	"sitewatch/pkg/domain"
	dErrors "sitewatch/pkg/domain-errors"
)

// Status is the lifecycle state of a compliance event.
type Status string

const (
	StatusReported                   Status = "REPORTED"
	StatusUnderInvestigation         Status = "UNDER_INVESTIGATION"
	StatusCorrectiveActionRequired   Status = "CORRECTIVE_ACTION_REQUIRED"
	StatusCorrectiveActionInProgress Status = "CORRECTIVE_ACTION_IN_PROGRESS"
	StatusPendingVerification        Status = "PENDING_VERIFICATION"
	StatusClosed                     Status = "CLOSED"
	StatusAppealed                   Status = "APPEALED"
	StatusReopened                   Status = "REOPENED"
)

// transitions is the single source of truth for the state machine. Any state
// except APPEALED may be appealed; CLOSED may be reopened, and a reopened
// event resumes at UNDER_INVESTIGATION. There is no unrecoverable terminal
// state.
var transitions = map[Status][]Status{
	StatusReported:                   {StatusUnderInvestigation, StatusAppealed},
	StatusUnderInvestigation:         {StatusCorrectiveActionRequired, StatusAppealed},
	StatusCorrectiveActionRequired:   {StatusCorrectiveActionInProgress, StatusAppealed},
	StatusCorrectiveActionInProgress: {StatusPendingVerification, StatusAppealed},
	StatusPendingVerification:        {StatusClosed, StatusAppealed},
	StatusClosed:                     {StatusReopened, StatusAppealed},
	StatusAppealed:                   {StatusUnderInvestigation},
	StatusReopened:                   {StatusUnderInvestigation, StatusAppealed},
}

// CanTransition reports whether from → to is a legal lifecycle move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ViolationType classifies a violation per the usual regulatory taxonomy.
type ViolationType string

const (
	ViolationWillful          ViolationType = "WILLFUL"
	ViolationSerious          ViolationType = "SERIOUS"
	ViolationRepeat           ViolationType = "REPEAT"
	ViolationOtherThanSerious ViolationType = "OTHER_THAN_SERIOUS"
)

// EventType classifies where the signal came from.
type EventType string

const (
	EventHazardDetected EventType = "HAZARD_DETECTED"
	EventManualReport   EventType = "MANUAL_REPORT"
	EventNearMiss       EventType = "NEAR_MISS"
	EventInspection     EventType = "INSPECTION_FINDING"
)

// correctionDeadlines fixes the allowed correction time per severity. The
// deadline is computed once at creation and never changes, even if severity
// metadata is amended later.
var correctionDeadlines = map[domain.Severity]time.Duration{
	domain.SeverityCritical: 24 * time.Hour,
	domain.SeverityHigh:     7 * 24 * time.Hour,
	domain.SeverityMedium:   30 * 24 * time.Hour,
	domain.SeverityLow:      90 * 24 * time.Hour,
}

// scoreImpacts is the per-severity penalty used by the dashboard's compliance
// score. Read-side only, never persisted on the event.
var scoreImpacts = map[domain.Severity]float64{
	domain.SeverityCritical: 0.30,
	domain.SeverityHigh:     0.20,
	domain.SeverityMedium:   0.10,
	domain.SeverityLow:      0.05,
}

// ScoreImpact returns the compliance-score penalty for a severity.
func ScoreImpact(sev domain.Severity) float64 { return scoreImpacts[sev] }

// Event is one compliance violation or near-miss record.
//
// Invariants: Status == CLOSED implies ClosedAt and ClosedBy are set;
// CorrectionDeadline >= OccurredAt and is immutable after creation.
type Event struct {
	ID                 domain.EventID  `json:"id"`
	EventType          EventType       `json:"eventType"`
	Standard           string          `json:"standard"`
	Severity           domain.Severity `json:"severity"`
	Status             Status          `json:"status"`
	Description        string          `json:"description"`
	ViolationType      ViolationType   `json:"violationType,omitempty"`
	InjuriesReported   int             `json:"injuriesReported"`
	EmployeesAffected  int             `json:"employeesAffected"`
	CorrectionRequired bool            `json:"correctionRequired"`
	CorrectionComplete bool            `json:"correctionComplete"`
	CorrectionDeadline time.Time       `json:"correctionDeadline"`
	OccurredAt         time.Time       `json:"occurredAt"`
	ReportedAt         time.Time       `json:"reportedAt"`
	ClosedAt           *time.Time      `json:"closedAt,omitempty"`
	ClosedBy           string          `json:"closedBy,omitempty"`

	// TriggeredByAlert is a weak back-reference to the safety alert that
	// raised this event, when one did.
	TriggeredByAlert *domain.AlertID `json:"triggeredByAlert,omitempty"`
}

// NewEvent creates a compliance event in REPORTED state with its correction
// deadline fixed from severity.
func NewEvent(eventType EventType, standard string, severity domain.Severity, description string, occurredAt time.Time) (Event, error) {
	if !severity.IsValid() {
		return Event{}, dErrors.New(dErrors.CodeInvalidInput, "compliance event severity is invalid")
	}
	if description == "" {
		return Event{}, dErrors.New(dErrors.CodeInvalidInput, "compliance event description is required")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	return Event{
		ID:                 domain.NewEventID(),
		EventType:          eventType,
		Standard:           standard,
		Severity:           severity,
		Status:             StatusReported,
		Description:        description,
		CorrectionRequired: true,
		CorrectionDeadline: occurredAt.Add(correctionDeadlines[severity]),
		OccurredAt:         occurredAt,
		ReportedAt:         time.Now().UTC(),
	}, nil
}

// RequiresImmediateNotification reports whether creation must synchronously
// emit on the alert bus: critical severity, any injury, or a willful
// violation.
func (e Event) RequiresImmediateNotification() bool {
	return e.Severity == domain.SeverityCritical ||
		e.InjuriesReported > 0 ||
		e.ViolationType == ViolationWillful
}

// IsOverdue reports whether the correction deadline has passed without the
// event being closed.
func (e Event) IsOverdue(now time.Time) bool {
	return e.Status != StatusClosed && now.After(e.CorrectionDeadline)
}

// Unresolved reports whether the event still needs corrective work.
func (e Event) Unresolved() bool {
	return e.CorrectionRequired && !e.CorrectionComplete
}

// TransitionTo moves the event to the next lifecycle state. Closing requires
// an actor and stamps the ClosedAt/ClosedBy pair; reopening clears it so the
// CLOSED invariant stays one-to-one with the pair.
func (e Event) TransitionTo(next Status, actorID string, at time.Time) (Event, error) {
	if !CanTransition(e.Status, next) {
		return Event{}, dErrors.New(dErrors.CodeInvariantViolation,
			fmt.Sprintf("illegal compliance transition %s -> %s", e.Status, next))
	}
	switch next {
	case StatusClosed:
		if actorID == "" {
			return Event{}, dErrors.New(dErrors.CodeInvalidInput, "closing a compliance event requires an actor")
		}
		e.ClosedAt = &at
		e.ClosedBy = actorID
		e.CorrectionComplete = true
	case StatusReopened:
		e.ClosedAt = nil
		e.ClosedBy = ""
		e.CorrectionComplete = false
	}
	e.Status = next
	return e, nil
}
