// Package ports defines the processor's outbound interfaces. They match the
// audit service, alert bus and lifecycle manager but are declared here to
// keep the processor's dependencies explicit and mockable.
package ports

//go:generate mockgen -destination=mocks/mocks.go -package=mocks sitewatch/internal/compliance/ports TrailPort,BusPort,LifecyclePort,EventStorePort

import (
	"context"
	"time"

	"sitewatch/internal/alert"
	"sitewatch/internal/audit"
	"sitewatch/internal/compliance"
	"sitewatch/pkg/domain"
)

// TrailPort appends to the permanent audit record.
type TrailPort interface {
	AddEntry(ctx context.Context, sessionID domain.SessionID, e audit.Entry) (audit.Trail, error)
}

// BusPort fans occurrences out to live subscribers.
type BusPort interface {
	PublishAlert(a alert.SafetyAlert)
	PublishCompliance(ev compliance.Event)
	PublishSystem(ev alert.SystemEvent)
}

// LifecyclePort maintains the bounded operational working set.
type LifecyclePort interface {
	RecordAlert(a alert.SafetyAlert)
	RecordComplianceEvent(ev compliance.Event)
	UpdateComplianceEvent(ev compliance.Event) bool
}

// EventStorePort persists compliance events for long-term querying.
type EventStorePort interface {
	Save(ctx context.Context, ev compliance.Event) error
	FindByID(ctx context.Context, id domain.EventID) (compliance.Event, error)
	ListOverdue(ctx context.Context, now time.Time) ([]compliance.Event, error)
}
