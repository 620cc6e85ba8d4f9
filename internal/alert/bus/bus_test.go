package bus

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewatch/internal/alert"
	"sitewatch/internal/compliance"
	"sitewatch/pkg/domain"
)

func mustAlert(t *testing.T, severity domain.Severity, msg string) alert.SafetyAlert {
	t.Helper()
	a, err := alert.New("photo-1", alert.TypeHazardDetected, severity, msg)
	require.NoError(t, err)
	return a
}

func drain(sub *Subscription, n int, timeout time.Duration) ([]Envelope, error) {
	var out []Envelope
	deadline := time.After(timeout)
	for len(out) < n {
		select {
		case env, ok := <-sub.C():
			if !ok {
				return out, fmt.Errorf("channel closed after %d envelopes", len(out))
			}
			out = append(out, env)
		case <-deadline:
			return out, fmt.Errorf("timed out after %d envelopes", len(out))
		}
	}
	return out, nil
}

func TestBus_FanOut(t *testing.T) {
	b := New(slog.Default())
	s1 := b.Subscribe()
	defer s1.Cancel()
	s2 := b.Subscribe()
	defer s2.Cancel()

	b.PublishAlert(mustAlert(t, domain.SeverityHigh, "scaffold gap"))

	for _, sub := range []*Subscription{s1, s2} {
		got, err := drain(sub, 1, time.Second)
		require.NoError(t, err)
		assert.Equal(t, KindSafetyAlert, got[0].Kind)
		require.NotNil(t, got[0].Alert)
		assert.Equal(t, "scaffold gap", got[0].Alert.Message)
	}
}

func TestBus_PublishOrderPerSubscriber(t *testing.T) {
	b := New(slog.Default())
	sub := b.Subscribe()
	defer sub.Cancel()

	for i := 0; i < 5; i++ {
		b.PublishAlert(mustAlert(t, domain.SeverityLow, fmt.Sprintf("alert-%d", i)))
	}

	got, err := drain(sub, 5, time.Second)
	require.NoError(t, err)
	for i, env := range got {
		assert.Equal(t, fmt.Sprintf("alert-%d", i), env.Alert.Message)
		if i > 0 {
			assert.Greater(t, env.Seq, got[i-1].Seq)
		}
	}
}

func TestBus_SlowSubscriberLosesOnlyItsOwnOldest(t *testing.T) {
	b := New(slog.Default(), WithSubscriberBuffer(2), WithReplayDepth(1))
	slow := b.Subscribe()
	defer slow.Cancel()
	fast := b.Subscribe()
	defer fast.Cancel()

	// Publish more than the slow queue holds without consuming from it.
	for i := 0; i < 6; i++ {
		b.PublishAlert(mustAlert(t, domain.SeverityLow, fmt.Sprintf("alert-%d", i)))
		// The fast subscriber keeps up.
		got, err := drain(fast, 1, time.Second)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("alert-%d", i), got[0].Alert.Message)
	}

	// The slow subscriber kept the newest two and dropped the rest.
	got, err := drain(slow, 2, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "alert-4", got[0].Alert.Message)
	assert.Equal(t, "alert-5", got[1].Alert.Message)
	assert.Equal(t, uint64(4), slow.Dropped())
	assert.Zero(t, fast.Dropped())
}

func TestBus_ReplayForLateSubscribers(t *testing.T) {
	b := New(slog.Default(), WithReplayDepth(3))

	for i := 0; i < 5; i++ {
		b.PublishAlert(mustAlert(t, domain.SeverityLow, fmt.Sprintf("alert-%d", i)))
	}

	late := b.Subscribe()
	defer late.Cancel()

	got, err := drain(late, 3, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "alert-2", got[0].Alert.Message)
	assert.Equal(t, "alert-3", got[1].Alert.Message)
	assert.Equal(t, "alert-4", got[2].Alert.Message)
}

func TestBus_KindFilter(t *testing.T) {
	b := New(slog.Default(), WithReplayDepth(1))
	sub := b.Subscribe(WithKinds(KindSystemEvent))
	defer sub.Cancel()

	b.PublishAlert(mustAlert(t, domain.SeverityLow, "ignored"))
	ev, err := compliance.NewEvent(compliance.EventManualReport, "1926.501", domain.SeverityLow, "ignored too", time.Now().UTC())
	require.NoError(t, err)
	b.PublishCompliance(ev)
	b.PublishSystem(alert.SystemEvent{Component: "API", Status: alert.SystemDegraded, OccurredAt: time.Now().UTC()})

	got, err := drain(sub, 1, time.Second)
	require.NoError(t, err)
	assert.Equal(t, KindSystemEvent, got[0].Kind)

	select {
	case env := <-sub.C():
		t.Fatalf("unexpected extra envelope of kind %s", env.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscription_CancelIsIdempotent(t *testing.T) {
	b := New(slog.Default())
	sub := b.Subscribe()
	require.Equal(t, 1, b.SubscriberCount())

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, b.SubscriberCount())

	// Publishing after cancel must not panic on the closed channel.
	b.PublishAlert(mustAlert(t, domain.SeverityLow, "after cancel"))

	_, open := <-sub.C()
	assert.False(t, open)
}

func TestBus_PublishWithNoSubscribers(t *testing.T) {
	b := New(slog.Default())
	b.PublishAlert(mustAlert(t, domain.SeverityCritical, "nobody listening"))

	// The envelope is still retained for replay.
	sub := b.Subscribe()
	defer sub.Cancel()
	got, err := drain(sub, 1, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "nobody listening", got[0].Alert.Message)
}
