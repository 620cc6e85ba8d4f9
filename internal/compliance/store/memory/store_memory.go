// Package memory is the in-memory compliance event store, the default for
// single-node deployments and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"sitewatch/internal/compliance"
	"sitewatch/pkg/domain"
	"sitewatch/pkg/platform/sentinel"
)

type Store struct {
	mu     sync.RWMutex
	events map[domain.EventID]compliance.Event
}

func NewStore() *Store {
	return &Store{events: make(map[domain.EventID]compliance.Event)}
}

func (s *Store) Save(_ context.Context, ev compliance.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[ev.ID] = ev
	return nil
}

func (s *Store) FindByID(_ context.Context, id domain.EventID) (compliance.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ev, ok := s.events[id]
	if !ok {
		return compliance.Event{}, sentinel.ErrNotFound
	}
	return ev, nil
}

func (s *Store) ListOverdue(_ context.Context, now time.Time) ([]compliance.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []compliance.Event
	for _, ev := range s.events {
		if ev.IsOverdue(now) {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CorrectionDeadline.Before(out[j].CorrectionDeadline)
	})
	return out, nil
}
