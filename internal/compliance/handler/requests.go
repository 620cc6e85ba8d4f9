package handler

import (
	"time"

	"sitewatch/internal/compliance"
	"sitewatch/internal/compliance/processor"
	"sitewatch/pkg/domain"
	dErrors "sitewatch/pkg/domain-errors"
)

// HazardRequest is one finding inside a hazard signal.
type HazardRequest struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Standard    string `json:"standard,omitempty"`
}

// HazardSignalRequest is the payload for POST /compliance/hazard-signals.
type HazardSignalRequest struct {
	SourceID  string          `json:"sourceId"`
	SessionID string          `json:"sessionId,omitempty"`
	ActorID   string          `json:"actorId"`
	WorkType  string          `json:"workType,omitempty"`
	Location  string          `json:"location,omitempty"`
	Hazards   []HazardRequest `json:"hazards"`
}

func (r HazardSignalRequest) Validate() error {
	if r.SourceID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "sourceId is required")
	}
	if r.ActorID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "actorId is required")
	}
	return nil
}

// ToSignal converts the request into the processor's input type.
func (r HazardSignalRequest) ToSignal() (processor.HazardSignal, error) {
	sig := processor.HazardSignal{
		SourceID: r.SourceID,
		ActorID:  r.ActorID,
		WorkType: r.WorkType,
		Location: r.Location,
	}
	if r.SessionID != "" {
		sessionID, err := domain.ParseSessionID(r.SessionID)
		if err != nil {
			return processor.HazardSignal{}, err
		}
		sig.SessionID = sessionID
	}
	for _, h := range r.Hazards {
		sev, err := domain.ParseSeverity(h.Severity)
		if err != nil {
			return processor.HazardSignal{}, err
		}
		sig.Hazards = append(sig.Hazards, processor.Hazard{
			Description: h.Description,
			Severity:    sev,
			Standard:    h.Standard,
		})
	}
	return sig, nil
}

// ManualReportRequest is the payload for POST /compliance/reports.
type ManualReportRequest struct {
	SessionID         string `json:"sessionId,omitempty"`
	ActorID           string `json:"actorId"`
	EventType         string `json:"eventType,omitempty"`
	Standard          string `json:"standard,omitempty"`
	Severity          string `json:"severity"`
	Description       string `json:"description"`
	Location          string `json:"location,omitempty"`
	EmployeesAffected int    `json:"employeesAffected,omitempty"`
	InjuriesReported  int    `json:"injuriesReported,omitempty"`
	ViolationType     string `json:"violationType,omitempty"`
	OccurredAt        string `json:"occurredAt,omitempty"`
}

func (r ManualReportRequest) Validate() error {
	if r.ActorID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "actorId is required")
	}
	if r.Description == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "description is required")
	}
	return nil
}

// ToReport converts the request into the processor's input type.
func (r ManualReportRequest) ToReport() (processor.ManualReport, error) {
	sev, err := domain.ParseSeverity(r.Severity)
	if err != nil {
		return processor.ManualReport{}, err
	}
	report := processor.ManualReport{
		ActorID:           r.ActorID,
		EventType:         compliance.EventType(r.EventType),
		Standard:          r.Standard,
		Severity:          sev,
		Description:       r.Description,
		Location:          r.Location,
		EmployeesAffected: r.EmployeesAffected,
		InjuriesReported:  r.InjuriesReported,
		ViolationType:     compliance.ViolationType(r.ViolationType),
	}
	if r.SessionID != "" {
		sessionID, err := domain.ParseSessionID(r.SessionID)
		if err != nil {
			return processor.ManualReport{}, err
		}
		report.SessionID = sessionID
	}
	if r.OccurredAt != "" {
		at, err := time.Parse(time.RFC3339, r.OccurredAt)
		if err != nil {
			return processor.ManualReport{}, dErrors.New(dErrors.CodeInvalidInput, "occurredAt must be RFC3339")
		}
		report.OccurredAt = at.UTC()
	}
	return report, nil
}

// TransitionRequest is the payload for lifecycle transition endpoints.
type TransitionRequest struct {
	Status  string `json:"status,omitempty"`
	ActorID string `json:"actorId"`
}

func (r TransitionRequest) Validate() error {
	if r.ActorID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "actorId is required")
	}
	return nil
}
