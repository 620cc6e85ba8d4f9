package memory

import (
	"context"
	"sync"

	"sitewatch/internal/audit"
	"sitewatch/pkg/domain"
	"sitewatch/pkg/platform/sentinel"
)

// InMemoryStore is the development and test mirror for audit trails.
type InMemoryStore struct {
	mu     sync.RWMutex
	trails map[domain.SessionID]*trailRecord
}

type trailRecord struct {
	ownerID string
	entries []audit.Entry
	digest  string
	version uint64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{trails: make(map[domain.SessionID]*trailRecord)}
}

func (s *InMemoryStore) CreateTrail(_ context.Context, sessionID domain.SessionID, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.trails[sessionID]; exists {
		return sentinel.ErrConflict
	}
	s.trails[sessionID] = &trailRecord{ownerID: ownerID}
	return nil
}

func (s *InMemoryStore) Append(_ context.Context, sessionID domain.SessionID, seq uint64, entry audit.Entry, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.trails[sessionID]
	if !ok {
		return sentinel.ErrNotFound
	}
	// Insert-only: a seq we already hold means the caller retried a write
	// that actually landed, or two writers raced outside the service lock.
	if seq != rec.version+1 {
		return sentinel.ErrConflict
	}
	rec.entries = append(rec.entries, entry)
	rec.digest = digest
	rec.version = seq
	return nil
}

func (s *InMemoryStore) LoadTrail(_ context.Context, sessionID domain.SessionID) (audit.Trail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.trails[sessionID]
	if !ok {
		return audit.Trail{}, sentinel.ErrNotFound
	}
	return audit.Trail{
		SessionID:       sessionID,
		OwnerID:         rec.ownerID,
		Entries:         append([]audit.Entry{}, rec.entries...),
		Version:         rec.version,
		IntegrityDigest: rec.digest,
	}, nil
}
