package monitoring

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewatch/internal/alert"
	"sitewatch/internal/alert/bus"
	"sitewatch/internal/alert/lifecycle"
	"sitewatch/internal/audit"
	auditmem "sitewatch/internal/audit/store/memory"
	"sitewatch/internal/compliance"
	"sitewatch/internal/compliance/processor"
	compliancemem "sitewatch/internal/compliance/store/memory"
	"sitewatch/internal/dashboard"
	"sitewatch/internal/health"
	"sitewatch/pkg/domain"
	"sitewatch/pkg/platform/sentinel"
)

// stack wires the full monitoring pipeline on in-memory stores, the way
// cmd/server does without Postgres or Redis configured.
type stack struct {
	bus       *bus.Bus
	manager   *lifecycle.Manager
	audit     *audit.Service
	processor *processor.Service
	health    *health.Service
	events    *compliancemem.Store
	sessionID domain.SessionID
}

func newStack(t *testing.T) *stack {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eventBus := bus.New(logger)
	manager := lifecycle.NewManager(eventBus, logger)

	auditSvc, err := audit.NewService(auditmem.NewInMemoryStore(), eventBus, logger)
	require.NoError(t, err)
	sessionID := domain.NewSessionID()
	_, err = auditSvc.StartTrail(context.Background(), sessionID, "sitewatch-server")
	require.NoError(t, err)

	events := compliancemem.NewStore()
	proc, err := processor.NewService(auditSvc, eventBus, manager, events, sessionID, logger)
	require.NoError(t, err)

	healthSvc, err := health.NewService(auditSvc, eventBus, sessionID, logger)
	require.NoError(t, err)

	return &stack{
		bus:       eventBus,
		manager:   manager,
		audit:     auditSvc,
		processor: proc,
		health:    healthSvc,
		events:    events,
		sessionID: sessionID,
	}
}

func collect(sub *bus.Subscription, n int, timeout time.Duration) []bus.Envelope {
	var got []bus.Envelope
	deadline := time.After(timeout)
	for len(got) < n {
		select {
		case env, ok := <-sub.C():
			if !ok {
				return got
			}
			got = append(got, env)
		case <-deadline:
			return got
		}
	}
	return got
}

func TestCriticalHazardPipeline(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	sub := s.bus.Subscribe()
	defer sub.Cancel()

	result, err := s.processor.ProcessHazardDetection(ctx, processor.HazardSignal{
		SourceID: "photo-42",
		ActorID:  "ai-analyzer",
		WorkType: "roofing",
		Location: "building A roof",
		Hazards: []processor.Hazard{
			{Description: "worker near unguarded edge", Severity: domain.SeverityCritical, Standard: "1926.501"},
		},
	})
	require.NoError(t, err)

	// One alert and the compliance event it opened.
	require.True(t, result.Alert.Raised)
	raised := result.Alert.Alert
	assert.True(t, raised.RequiresImmediateAction)
	require.NotNil(t, result.Event)
	assert.Equal(t, raised.ID, *result.Event.TriggeredByAlert)

	// Recording a critical alert degrades the monitoring component before
	// the alert itself goes out, so three envelopes land on the bus.
	envs := collect(sub, 3, time.Second)
	require.Len(t, envs, 3)
	assert.Equal(t, bus.KindSystemEvent, envs[0].Kind)
	require.NotNil(t, envs[0].System)
	assert.Equal(t, "SAFETY_MONITORING", envs[0].System.Component)
	assert.Equal(t, alert.SystemDegraded, envs[0].System.Status)
	assert.Equal(t, bus.KindSafetyAlert, envs[1].Kind)
	assert.Equal(t, bus.KindComplianceEvent, envs[2].Kind)

	// The alert stays active until a human acknowledges it.
	active := s.manager.ActiveAlerts(time.Now().UTC())
	require.Len(t, active, 1)
	assert.Equal(t, raised.ID, active[0].ID)

	require.True(t, s.manager.AcknowledgeAlert(raised.ID, "foreman-3", "crew pulled back"))
	assert.Empty(t, s.manager.ActiveAlerts(time.Now().UTC()))

	// The trail recorded detection and event creation, and still verifies.
	trail, err := s.audit.Trail(s.sessionID)
	require.NoError(t, err)
	assert.Len(t, trail.Entries, 2)
	valid, err := s.audit.VerifyIntegrity(ctx, s.sessionID)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestManualReportDeadlineAndDashboard(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	occurred := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	ev, err := s.processor.ProcessManualReport(ctx, processor.ManualReport{
		ActorID:     "inspector-7",
		Standard:    "1926.501",
		Severity:    domain.SeverityHigh,
		Description: "fall protection missing on scaffold",
		OccurredAt:  occurred,
	})
	require.NoError(t, err)
	assert.Equal(t, occurred.Add(7*24*time.Hour), ev.CorrectionDeadline)

	// Past deadline, still open: the dashboard counts it overdue.
	agg := dashboard.NewAggregator(s.manager, s.events)
	snap, err := agg.Build(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.OpenComplianceEvents)
	assert.Equal(t, 1, snap.OverdueComplianceEvents)
	assert.Equal(t, 0.0, snap.ComplianceRate)
	assert.InDelta(t, 0.80, snap.ComplianceScore, 0.001)

	// Work the event to closure and the numbers recover.
	for _, status := range []compliance.Status{
		compliance.StatusUnderInvestigation,
		compliance.StatusCorrectiveActionRequired,
		compliance.StatusCorrectiveActionInProgress,
		compliance.StatusPendingVerification,
	} {
		_, err = s.processor.Transition(ctx, ev.ID, status, "inspector-7")
		require.NoError(t, err)
	}
	closed, err := s.processor.CloseEvent(ctx, ev.ID, "safety-manager-1")
	require.NoError(t, err)
	assert.Equal(t, compliance.StatusClosed, closed.Status)

	snap, err = agg.Build(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, snap.OpenComplianceEvents)
	assert.Zero(t, snap.OverdueComplianceEvents)
	assert.Equal(t, 100.0, snap.ComplianceRate)
	assert.Equal(t, 1.0, snap.ComplianceScore)

	// Every transition went on the trail: creation plus five moves.
	trail, err := s.audit.Trail(s.sessionID)
	require.NoError(t, err)
	assert.Len(t, trail.Entries, 6)
}

func TestTamperDetectionRaisesSystemEvent(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	sub := s.bus.Subscribe(bus.WithKinds(bus.KindSystemEvent))
	defer sub.Cancel()

	_, err := s.processor.ProcessHazardDetection(ctx, processor.HazardSignal{
		SourceID: "photo-9",
		ActorID:  "ai-analyzer",
		Hazards:  []processor.Hazard{{Description: "missing signage", Severity: domain.SeverityMedium}},
	})
	require.NoError(t, err)

	trail, err := s.audit.Trail(s.sessionID)
	require.NoError(t, err)
	require.NotEmpty(t, trail.Entries)

	// Doctor the live snapshot through the shared entry slice, the way an
	// in-process attacker holding a reference could.
	trail.Entries[0].Description = "nothing to see here"
	valid, err := s.audit.VerifyIntegrity(ctx, s.sessionID)
	assert.False(t, valid)
	require.ErrorIs(t, err, sentinel.ErrTampered)

	suspect, err := s.audit.Trail(s.sessionID)
	require.NoError(t, err)
	assert.True(t, suspect.Suspect)

	envs := collect(sub, 1, time.Second)
	require.Len(t, envs, 1)
	require.NotNil(t, envs[0].System)
	assert.Equal(t, alert.SystemFailed, envs[0].System.Status)
	assert.Equal(t, "AUDIT_TRAIL", envs[0].System.Component)
}

func TestComponentHealthFeedsTrailAndBus(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	sub := s.bus.Subscribe(bus.WithKinds(bus.KindSystemEvent))
	defer sub.Cancel()

	err := s.health.Record(ctx, "monitor", health.Report{
		Component: "kafka",
		Status:    audit.StatusDegraded,
		Message:   "broker 2 unreachable",
	})
	require.NoError(t, err)

	envs := collect(sub, 1, time.Second)
	require.Len(t, envs, 1)
	require.NotNil(t, envs[0].System)
	assert.Equal(t, "kafka", envs[0].System.Component)

	entries, err := s.audit.EntriesByType(s.sessionID, audit.EntrySystemEvent)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].RequiresAttention())
	assert.True(t, s.health.Healthy())
}
