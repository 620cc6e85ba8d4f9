// Package health takes component status reports, puts them on the permanent
// record and fans them out as system events.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sitewatch/internal/alert"
	"sitewatch/internal/audit"
	"sitewatch/pkg/domain"
	dErrors "sitewatch/pkg/domain-errors"
)

// Report is one component status observation.
type Report struct {
	Component string
	Status    audit.ComponentStatus
	Message   string
	Metrics   map[string]string
}

// TrailWriter appends to the audit trail.
type TrailWriter interface {
	AddEntry(ctx context.Context, sessionID domain.SessionID, e audit.Entry) (audit.Trail, error)
}

// SystemPublisher fans system events out to subscribers.
type SystemPublisher interface {
	PublishSystem(ev alert.SystemEvent)
}

// Service records component health. It remembers the last report per
// component so the readiness endpoint can summarize without re-probing.
type Service struct {
	trail     TrailWriter
	bus       SystemPublisher
	sessionID domain.SessionID
	logger    *slog.Logger

	mu     sync.RWMutex
	latest map[string]Report
}

func NewService(trail TrailWriter, bus SystemPublisher, sessionID domain.SessionID, logger *slog.Logger) (*Service, error) {
	if trail == nil || bus == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "health service dependencies must not be nil")
	}
	if sessionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "monitoring session id is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		trail:     trail,
		bus:       bus,
		sessionID: sessionID,
		logger:    logger,
		latest:    make(map[string]Report),
	}, nil
}

// Record ingests a component report. Non-OK reports are audited and
// published; OK reports only refresh the summary unless they clear a
// previously degraded component.
func (s *Service) Record(ctx context.Context, actorID string, r Report) error {
	if r.Component == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "component name is required")
	}
	switch r.Status {
	case audit.StatusOK, audit.StatusDegraded, audit.StatusFailed:
	default:
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown component status %q", r.Status))
	}

	s.mu.Lock()
	prev, seen := s.latest[r.Component]
	s.latest[r.Component] = r
	s.mu.Unlock()

	recovered := seen && prev.Status != audit.StatusOK && r.Status == audit.StatusOK
	if r.Status == audit.StatusOK && !recovered {
		return nil
	}

	desc := fmt.Sprintf("component %s reported %s", r.Component, r.Status)
	if r.Message != "" {
		desc = fmt.Sprintf("%s: %s", desc, r.Message)
	}
	entry, err := audit.NewEntry(actorID, desc, audit.SystemDetail{
		Component: r.Component,
		Status:    r.Status,
		Metrics:   r.Metrics,
	})
	if err != nil {
		return err
	}
	if _, err := s.trail.AddEntry(ctx, s.sessionID, entry); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "record health report")
	}

	s.bus.PublishSystem(alert.SystemEvent{
		Component:  r.Component,
		Status:     alert.SystemStatus(r.Status),
		Message:    r.Message,
		Metrics:    r.Metrics,
		OccurredAt: time.Now().UTC(),
	})
	if r.Status == audit.StatusFailed {
		s.logger.ErrorContext(ctx, "component failed",
			slog.String("component", r.Component),
			slog.String("message", r.Message),
		)
	}
	return nil
}

// Summary returns the latest report per component.
func (s *Service) Summary() map[string]Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Report, len(s.latest))
	for k, v := range s.latest {
		out[k] = v
	}
	return out
}

// Healthy reports whether no component is currently FAILED.
func (s *Service) Healthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.latest {
		if r.Status == audit.StatusFailed {
			return false
		}
	}
	return true
}
