package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"sitewatch/pkg/domain"
	dErrors "sitewatch/pkg/domain-errors"
)

// Trail is the permanent, ordered record of one session. Entries are only
// ever appended through AppendEntry; IntegrityDigest is the chain head over
// the full sequence and Version counts appends.
//
// Trail values are immutable snapshots: AppendEntry returns a new value, so
// concurrent readers can hold an old snapshot safely.
type Trail struct {
	SessionID       domain.SessionID
	OwnerID         string
	Entries         []Entry
	Version         uint64
	IntegrityDigest string

	// Suspect is set once verification fails. It is operational state, not
	// part of the hashed record, and is never cleared automatically.
	Suspect bool
}

// NewTrail opens an empty trail for a session.
func NewTrail(sessionID domain.SessionID, ownerID string) Trail {
	return Trail{SessionID: sessionID, OwnerID: ownerID}
}

// Len returns the number of appended entries.
func (t Trail) Len() int { return len(t.Entries) }

// AppendEntry validates the entry, extends the hash chain and returns the new
// trail snapshot. The digest of entry N commits to every entry before it, so
// a single append is O(1).
//
// Callers must serialize appends to the same trail; the trail service does
// this with a per-trail lock.
func AppendEntry(t Trail, e Entry) (Trail, error) {
	if err := e.Validate(); err != nil {
		return Trail{}, err
	}
	payload, err := canonicalEntryJSON(e)
	if err != nil {
		return Trail{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "entry payload is not serializable")
	}

	next := t
	next.Entries = append(t.Entries, e)
	next.Version = t.Version + 1
	next.IntegrityDigest = chainDigest(t.IntegrityDigest, payload)
	return next, nil
}

// Verify recomputes the whole chain from the genesis head and compares it to
// the stored digest. Any mutation of any serialized entry field flips the
// result to false.
func Verify(t Trail) bool {
	head := ""
	for _, e := range t.Entries {
		payload, err := canonicalEntryJSON(e)
		if err != nil {
			return false
		}
		head = chainDigest(head, payload)
	}
	return head == t.IntegrityDigest
}

// chainDigest computes SHA-256(head || payload), hex encoded.
func chainDigest(head string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(head))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalEntry pins the serialized form the chain commits to. Field order
// is fixed by the struct, map keys are sorted by encoding/json, timestamps
// are RFC3339Nano in UTC. Changing this layout invalidates existing digests.
type canonicalEntry struct {
	ID          string            `json:"id"`
	Timestamp   string            `json:"ts"`
	ActorID     string            `json:"actor,omitempty"`
	Type        EntryType         `json:"type"`
	Description string            `json:"desc"`
	Metadata    map[string]string `json:"meta,omitempty"`

	SafetyAction *SafetyActionDetail `json:"safetyAction,omitempty"`
	Compliance   *ComplianceDetail   `json:"compliance,omitempty"`
	Security     *SecurityDetail     `json:"security,omitempty"`
	DataAccess   *DataAccessDetail   `json:"dataAccess,omitempty"`
	System       *SystemDetail       `json:"system,omitempty"`
}

func canonicalEntryJSON(e Entry) ([]byte, error) {
	return json.Marshal(canonicalEntry{
		ID:           e.ID.String(),
		Timestamp:    e.Timestamp.UTC().Format(time.RFC3339Nano),
		ActorID:      e.ActorID,
		Type:         e.Type,
		Description:  e.Description,
		Metadata:     e.Metadata,
		SafetyAction: e.SafetyAction,
		Compliance:   e.Compliance,
		Security:     e.Security,
		DataAccess:   e.DataAccess,
		System:       e.System,
	})
}
