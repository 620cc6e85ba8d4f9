package domain

import (
	"fmt"

	"github.com/google/uuid"

	dErrors "sitewatch/pkg/domain-errors"
)

// Typed IDs keep sessions, audit entries, alerts and compliance events from
// being mixed up at compile time. Construct via the Parse helpers at trust
// boundaries; direct casting bypasses validation.
type (
	// SessionID identifies one audit scope (an inspection session or shift).
	SessionID uuid.UUID
	// EntryID identifies one immutable audit trail entry.
	EntryID uuid.UUID
	// AlertID identifies one safety alert.
	AlertID uuid.UUID
	// EventID identifies one compliance event.
	EventID uuid.UUID
)

func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id EntryID) String() string   { return uuid.UUID(id).String() }
func (id AlertID) String() string   { return uuid.UUID(id).String() }
func (id EventID) String() string   { return uuid.UUID(id).String() }

func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EntryID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id AlertID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText/UnmarshalText keep the ids as canonical UUID strings in JSON
// and in database drivers.
func (id SessionID) MarshalText() ([]byte, error) { return marshalID(uuid.UUID(id)) }
func (id EntryID) MarshalText() ([]byte, error)   { return marshalID(uuid.UUID(id)) }
func (id AlertID) MarshalText() ([]byte, error)   { return marshalID(uuid.UUID(id)) }
func (id EventID) MarshalText() ([]byte, error)   { return marshalID(uuid.UUID(id)) }

func (id *SessionID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = SessionID(u)
	return err
}

func (id *EntryID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = EntryID(u)
	return err
}

func (id *AlertID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = AlertID(u)
	return err
}

func (id *EventID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	*id = EventID(u)
	return err
}

func marshalID(u uuid.UUID) ([]byte, error) { return []byte(u.String()), nil }

// NewSessionID returns a fresh random session id.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewEntryID returns a fresh random entry id.
func NewEntryID() EntryID { return EntryID(uuid.New()) }

// NewAlertID returns a fresh random alert id.
func NewAlertID() AlertID { return AlertID(uuid.New()) }

// NewEventID returns a fresh random event id.
func NewEventID() EventID { return EventID(uuid.New()) }

// ParseSessionID constructs a SessionID from external input.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session id")
	return SessionID(u), err
}

// ParseEntryID constructs an EntryID from external input.
func ParseEntryID(s string) (EntryID, error) {
	u, err := parseUUID(s, "entry id")
	return EntryID(u), err
}

// ParseAlertID constructs an AlertID from external input.
func ParseAlertID(s string) (AlertID, error) {
	u, err := parseUUID(s, "alert id")
	return AlertID(u), err
}

// ParseEventID constructs an EventID from external input.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event id")
	return EventID(u), err
}

// parseUUID enforces the shared invariant: ids must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s cannot be empty", kind))
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s is not a valid UUID", kind))
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s cannot be the nil UUID", kind))
	}
	return u, nil
}
