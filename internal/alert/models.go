// Package alert holds the live-operations models: safety alerts raised by
// hazard detection and system events describing component health. The
// permanent record of the same occurrences lives in the audit trail; these
// types are the bounded, evictable working set.
package alert

import (
	"time"

	"sitewatch/pkg/domain"
	dErrors "sitewatch/pkg/domain-errors"
)

// Type classifies what a safety alert is about.
type Type string

const (
	TypeHazardDetected   Type = "HAZARD_DETECTED"
	TypePPEViolation     Type = "PPE_VIOLATION"
	TypeUnsafeCondition  Type = "UNSAFE_CONDITION"
	TypeEquipmentFailure Type = "EQUIPMENT_FAILURE"
	TypeIntegrityBreach  Type = "INTEGRITY_BREACH"
)

// SafetyAlert is one live alert. Invariant: AcknowledgedBy and AcknowledgedAt
// are both set or both null; an alert is active iff it is unacknowledged.
type SafetyAlert struct {
	ID                      domain.AlertID    `json:"id"`
	SourceID                string            `json:"sourceId"`
	AlertType               Type              `json:"alertType"`
	Severity                domain.Severity   `json:"severity"`
	Message                 string            `json:"message"`
	RequiresImmediateAction bool              `json:"requiresImmediateAction"`
	RegulatoryReportable    bool              `json:"regulatoryReportable"`
	OccurredAt              time.Time         `json:"occurredAt"`
	Metadata                map[string]string `json:"metadata,omitempty"`

	AcknowledgedBy string     `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
	AckNotes       string     `json:"ackNotes,omitempty"`
}

// New builds a validated safety alert. Immediate action and regulatory
// reportability are derived from severity at creation time.
func New(sourceID string, alertType Type, severity domain.Severity, message string) (SafetyAlert, error) {
	if sourceID == "" {
		return SafetyAlert{}, dErrors.New(dErrors.CodeInvalidInput, "alert source id is required")
	}
	if !severity.IsValid() {
		return SafetyAlert{}, dErrors.New(dErrors.CodeInvalidInput, "alert severity is invalid")
	}
	if message == "" {
		return SafetyAlert{}, dErrors.New(dErrors.CodeInvalidInput, "alert message is required")
	}
	return SafetyAlert{
		ID:                      domain.NewAlertID(),
		SourceID:                sourceID,
		AlertType:               alertType,
		Severity:                severity,
		Message:                 message,
		RequiresImmediateAction: severity.AtLeast(domain.SeverityHigh),
		RegulatoryReportable:    severity == domain.SeverityCritical,
		OccurredAt:              time.Now().UTC(),
	}, nil
}

// Active reports whether the alert is unacknowledged.
func (a SafetyAlert) Active() bool { return a.AcknowledgedBy == "" }

// Acknowledge returns a copy with the acknowledgement pair set atomically.
func (a SafetyAlert) Acknowledge(actorID, notes string, at time.Time) SafetyAlert {
	a.AcknowledgedBy = actorID
	a.AcknowledgedAt = &at
	a.AckNotes = notes
	return a
}

// SystemStatus grades a monitored component.
type SystemStatus string

const (
	SystemOK       SystemStatus = "OK"
	SystemDegraded SystemStatus = "DEGRADED"
	SystemFailed   SystemStatus = "FAILED"
)

// SystemEvent reports component health. Critical safety conditions and
// integrity violations surface as DEGRADED/FAILED system events so operators
// are paged even when no dashboard is watching alerts.
type SystemEvent struct {
	Component  string            `json:"component"`
	Status     SystemStatus      `json:"status"`
	Message    string            `json:"message,omitempty"`
	Metrics    map[string]string `json:"metrics,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// Severity maps component status onto the shared severity scale.
func (e SystemEvent) Severity() domain.Severity {
	switch e.Status {
	case SystemFailed:
		return domain.SeverityCritical
	case SystemDegraded:
		return domain.SeverityHigh
	default:
		return domain.SeverityLow
	}
}
