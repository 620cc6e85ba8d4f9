package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sitewatch/internal/alert"
	auditmetrics "sitewatch/internal/audit/metrics"
	"sitewatch/pkg/domain"
	dErrors "sitewatch/pkg/domain-errors"
	"sitewatch/pkg/platform/sentinel"
)

// SystemPublisher is how the service escalates integrity violations. The
// alert bus satisfies this; tests use a recording fake.
type SystemPublisher interface {
	PublishSystem(ev alert.SystemEvent)
}

// Service owns one trail per session. Appends to a trail are strictly
// serialized behind a per-trail mutex (chain correctness requires a total
// order); reads load an immutable snapshot through an atomic pointer and
// never block on in-flight appends.
type Service struct {
	mu     sync.RWMutex
	trails map[domain.SessionID]*trailHandle

	store   Store // durable mirror, never nil
	system  SystemPublisher
	logger  *slog.Logger
	metrics *auditmetrics.Metrics
}

type trailHandle struct {
	mu   sync.Mutex // serializes appends
	snap atomic.Pointer[Trail]
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics sets the metrics collector.
func WithMetrics(m *auditmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds the trail service. store receives every append
// synchronously; system receives a CRITICAL event whenever verification
// fails.
func NewService(store Store, system SystemPublisher, logger *slog.Logger, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	if system == nil {
		return nil, fmt.Errorf("system publisher is required")
	}
	s := &Service{
		trails: make(map[domain.SessionID]*trailHandle),
		store:  store,
		system: system,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// StartTrail opens a trail for a new session. Starting an already-open
// session is a conflict.
func (s *Service) StartTrail(ctx context.Context, sessionID domain.SessionID, ownerID string) (Trail, error) {
	if sessionID.IsNil() {
		return Trail{}, dErrors.New(dErrors.CodeInvalidInput, "session id is required")
	}
	s.mu.Lock()
	if _, exists := s.trails[sessionID]; exists {
		s.mu.Unlock()
		return Trail{}, dErrors.New(dErrors.CodeConflict, "audit trail already open for session")
	}
	h := &trailHandle{}
	t := NewTrail(sessionID, ownerID)
	h.snap.Store(&t)
	s.trails[sessionID] = h
	s.mu.Unlock()

	if err := s.store.CreateTrail(ctx, sessionID, ownerID); err != nil {
		return Trail{}, fmt.Errorf("create trail: %w", err)
	}
	return t, nil
}

// AddEntry appends one entry to the session's trail: validate, extend the
// chain, persist, then publish the new snapshot. A failed persist leaves the
// snapshot unchanged so the caller can retry without a gap or duplicate seq.
func (s *Service) AddEntry(ctx context.Context, sessionID domain.SessionID, e Entry) (Trail, error) {
	h, err := s.handle(sessionID)
	if err != nil {
		return Trail{}, err
	}

	start := time.Now()
	h.mu.Lock()
	defer h.mu.Unlock()

	cur := h.snap.Load()
	next, err := AppendEntry(*cur, e)
	if err != nil {
		if s.metrics != nil {
			s.metrics.AppendFailures.Inc()
		}
		return Trail{}, err
	}
	if err := s.store.Append(ctx, sessionID, next.Version, e, next.IntegrityDigest); err != nil {
		if s.metrics != nil {
			s.metrics.AppendFailures.Inc()
		}
		return Trail{}, fmt.Errorf("persist audit entry: %w", err)
	}
	h.snap.Store(&next)

	if s.metrics != nil {
		s.metrics.ObserveAppend(string(e.Type), time.Since(start).Seconds())
	}
	return next, nil
}

// Trail returns the current snapshot for a session.
func (s *Service) Trail(sessionID domain.SessionID) (Trail, error) {
	h, err := s.handle(sessionID)
	if err != nil {
		return Trail{}, err
	}
	return *h.snap.Load(), nil
}

// EntriesInRange returns entries with start <= Timestamp < end, in append
// order. Zero times mean unbounded.
func (s *Service) EntriesInRange(sessionID domain.SessionID, start, end time.Time) ([]Entry, error) {
	h, err := s.handle(sessionID)
	if err != nil {
		return nil, err
	}
	snap := h.snap.Load()
	var out []Entry
	for _, e := range snap.Entries {
		if !start.IsZero() && e.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && !e.Timestamp.Before(end) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// EntriesByType returns entries of one variant, in append order.
func (s *Service) EntriesByType(sessionID domain.SessionID, t EntryType) ([]Entry, error) {
	h, err := s.handle(sessionID)
	if err != nil {
		return nil, err
	}
	snap := h.snap.Load()
	var out []Entry
	for _, e := range snap.Entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out, nil
}

// VerifyIntegrity recomputes the chain over the session's snapshot. A
// mismatch marks the trail suspect and escalates a CRITICAL system event on
// the bus; the trail is never auto-repaired.
func (s *Service) VerifyIntegrity(ctx context.Context, sessionID domain.SessionID) (bool, error) {
	h, err := s.handle(sessionID)
	if err != nil {
		return false, err
	}
	if s.metrics != nil {
		s.metrics.IntegrityChecks.Inc()
	}

	snap := h.snap.Load()
	if Verify(*snap) {
		return true, nil
	}

	if s.metrics != nil {
		s.metrics.IntegrityFailures.Inc()
	}
	s.logger.ErrorContext(ctx, "CRITICAL: audit trail integrity violation",
		"session_id", sessionID.String(),
		"version", snap.Version,
	)
	s.markSuspect(h)
	s.system.PublishSystem(alert.SystemEvent{
		Component:  "AUDIT_TRAIL",
		Status:     alert.SystemFailed,
		Message:    "integrity digest mismatch for session " + sessionID.String(),
		Metrics:    map[string]string{"session_id": sessionID.String()},
		OccurredAt: time.Now().UTC(),
	})
	return false, sentinel.ErrTampered
}

// markSuspect flips the suspect flag under the append lock so the flag is
// not lost to a concurrent append's snapshot swap.
func (s *Service) markSuspect(h *trailHandle) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur := *h.snap.Load()
	cur.Suspect = true
	h.snap.Store(&cur)
}

func (s *Service) handle(sessionID domain.SessionID) (*trailHandle, error) {
	s.mu.RLock()
	h, ok := s.trails[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "no audit trail for session")
	}
	return h, nil
}
