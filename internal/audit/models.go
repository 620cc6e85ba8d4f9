// Package audit implements the tamper-evident audit trail: a closed set of
// entry variants, an incremental hash chain over appended entries, and the
// trail service that serializes appends and answers snapshot queries.
package audit

import (
	"time"

	"sitewatch/pkg/domain"
	dErrors "sitewatch/pkg/domain-errors"
)

// EntryType tags the variant carried by an Entry.
type EntryType string

const (
	EntrySafetyAction    EntryType = "SAFETY_ACTION"
	EntryComplianceEvent EntryType = "COMPLIANCE_EVENT"
	EntrySecurityEvent   EntryType = "SECURITY_EVENT"
	EntryDataAccess      EntryType = "DATA_ACCESS"
	EntrySystemEvent     EntryType = "SYSTEM_EVENT"
)

// IsValid reports whether the entry type is one of the supported variants.
func (t EntryType) IsValid() bool {
	switch t {
	case EntrySafetyAction, EntryComplianceEvent, EntrySecurityEvent, EntryDataAccess, EntrySystemEvent:
		return true
	}
	return false
}

// Detail is the variant payload of an audit entry. Severity and
// RequiresAttention are derived from payload fields, never stored.
type Detail interface {
	EntryType() EntryType
	Severity() domain.Severity
	RequiresAttention() bool
}

// SafetyActionDetail records an inspector or AI-driven safety action,
// typically one analyzed photo with its detected hazards.
type SafetyActionDetail struct {
	ActionTaken string `json:"actionTaken"`
	WorkType    string `json:"workType,omitempty"`
	HazardCount int    `json:"hazardCount"`
	PhotoCount  int    `json:"photoCount"`
}

func (d SafetyActionDetail) EntryType() EntryType { return EntrySafetyAction }

func (d SafetyActionDetail) Severity() domain.Severity {
	switch {
	case d.HazardCount >= 3:
		return domain.SeverityHigh
	case d.HazardCount >= 1:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func (d SafetyActionDetail) RequiresAttention() bool { return d.HazardCount > 0 }

// ComplianceDetail records the creation or transition of a compliance event.
type ComplianceDetail struct {
	EventID  domain.EventID  `json:"eventId"`
	Standard string          `json:"standard"`
	Level    domain.Severity `json:"level"`
	Status   string          `json:"status"`
}

func (d ComplianceDetail) EntryType() EntryType      { return EntryComplianceEvent }
func (d ComplianceDetail) Severity() domain.Severity { return d.Level }
func (d ComplianceDetail) RequiresAttention() bool {
	return d.Level.AtLeast(domain.SeverityHigh)
}

// SecurityDetail records a security-relevant occurrence (failed access,
// tamper suspicion, device anomaly).
type SecurityDetail struct {
	ThreatLevel domain.Severity `json:"threatLevel"`
	SourceIP    string          `json:"sourceIp,omitempty"`
	Mechanism   string          `json:"mechanism,omitempty"`
}

func (d SecurityDetail) EntryType() EntryType      { return EntrySecurityEvent }
func (d SecurityDetail) Severity() domain.Severity { return d.ThreatLevel }
func (d SecurityDetail) RequiresAttention() bool {
	return d.ThreatLevel.AtLeast(domain.SeverityHigh)
}

// DataAccessDetail records reads/exports of regulated records.
type DataAccessDetail struct {
	Resource   string `json:"resource"`
	AccessType string `json:"accessType"`
	Granted    bool   `json:"granted"`
}

func (d DataAccessDetail) EntryType() EntryType { return EntryDataAccess }

func (d DataAccessDetail) Severity() domain.Severity {
	if !d.Granted {
		return domain.SeverityMedium
	}
	return domain.SeverityLow
}

func (d DataAccessDetail) RequiresAttention() bool { return !d.Granted }

// ComponentStatus grades a monitored component in a system entry.
type ComponentStatus string

const (
	StatusOK       ComponentStatus = "OK"
	StatusDegraded ComponentStatus = "DEGRADED"
	StatusFailed   ComponentStatus = "FAILED"
)

// SystemDetail records a system-health occurrence.
type SystemDetail struct {
	Component string            `json:"component"`
	Status    ComponentStatus   `json:"status"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

func (d SystemDetail) EntryType() EntryType { return EntrySystemEvent }

func (d SystemDetail) Severity() domain.Severity {
	switch d.Status {
	case StatusFailed:
		return domain.SeverityCritical
	case StatusDegraded:
		return domain.SeverityHigh
	default:
		return domain.SeverityLow
	}
}

func (d SystemDetail) RequiresAttention() bool { return d.Status != StatusOK }

// Entry is one immutable auditable occurrence. Exactly one variant pointer is
// set, matching Type. All fields participate in the hash chain, so an Entry
// must never be mutated after it is appended.
//
// Struct fields only (and maps, which encoding/json sorts by key) so that
// canonical serialization is deterministic and digests are reproducible.
type Entry struct {
	ID          domain.EntryID    `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	ActorID     string            `json:"actorId,omitempty"`
	Type        EntryType         `json:"type"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`

	SafetyAction *SafetyActionDetail `json:"safetyAction,omitempty"`
	Compliance   *ComplianceDetail   `json:"compliance,omitempty"`
	Security     *SecurityDetail     `json:"security,omitempty"`
	DataAccess   *DataAccessDetail   `json:"dataAccess,omitempty"`
	System       *SystemDetail       `json:"system,omitempty"`
}

// NewEntry builds a validated entry for the given variant payload.
// Timestamps are truncated to microseconds so digests survive a round trip
// through stores with microsecond precision.
func NewEntry(actorID, description string, detail Detail) (Entry, error) {
	e := Entry{
		ID:          domain.NewEntryID(),
		Timestamp:   time.Now().UTC().Truncate(time.Microsecond),
		ActorID:     actorID,
		Description: description,
	}
	switch d := detail.(type) {
	case SafetyActionDetail:
		e.Type, e.SafetyAction = EntrySafetyAction, &d
	case ComplianceDetail:
		e.Type, e.Compliance = EntryComplianceEvent, &d
	case SecurityDetail:
		e.Type, e.Security = EntrySecurityEvent, &d
	case DataAccessDetail:
		e.Type, e.DataAccess = EntryDataAccess, &d
	case SystemDetail:
		e.Type, e.System = EntrySystemEvent, &d
	default:
		return Entry{}, dErrors.New(dErrors.CodeInvalidInput, "unsupported entry detail")
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// WithMetadata returns a copy of the entry carrying the given metadata.
// Only useful before the entry is appended; appended entries are immutable.
func (e Entry) WithMetadata(md map[string]string) Entry {
	e.Metadata = md
	return e
}

// Detail returns the variant payload, or nil when the variant pointer does
// not match Type (a malformed entry Validate rejects).
func (e Entry) Detail() Detail {
	switch {
	case e.Type == EntrySafetyAction && e.SafetyAction != nil:
		return *e.SafetyAction
	case e.Type == EntryComplianceEvent && e.Compliance != nil:
		return *e.Compliance
	case e.Type == EntrySecurityEvent && e.Security != nil:
		return *e.Security
	case e.Type == EntryDataAccess && e.DataAccess != nil:
		return *e.DataAccess
	case e.Type == EntrySystemEvent && e.System != nil:
		return *e.System
	}
	return nil
}

// Severity is derived from the variant payload.
func (e Entry) Severity() domain.Severity { return e.Detail().Severity() }

// RequiresAttention is derived from the variant payload.
func (e Entry) RequiresAttention() bool { return e.Detail().RequiresAttention() }

// Validate rejects malformed entries before they reach the chain. A rejected
// entry is never partially appended.
func (e Entry) Validate() error {
	if e.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "entry id is required")
	}
	if e.Timestamp.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "entry timestamp is required")
	}
	if !e.Type.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown entry type")
	}
	if e.Description == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "entry description is required")
	}
	variants := 0
	for _, set := range []bool{
		e.SafetyAction != nil,
		e.Compliance != nil,
		e.Security != nil,
		e.DataAccess != nil,
		e.System != nil,
	} {
		if set {
			variants++
		}
	}
	if variants != 1 {
		return dErrors.New(dErrors.CodeInvalidInput, "entry must carry exactly one variant payload")
	}
	if e.Detail() == nil || e.Detail().EntryType() != e.Type {
		return dErrors.New(dErrors.CodeInvalidInput, "entry variant does not match entry type")
	}
	return nil
}
