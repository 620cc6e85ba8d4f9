package handler

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewatch/internal/alert"
	"sitewatch/internal/alert/bus"
	"sitewatch/internal/alert/lifecycle"
	"sitewatch/pkg/domain"
	"sitewatch/pkg/testutil"
)

func newAlertRouter(t *testing.T) (http.Handler, *lifecycle.Manager, *bus.Bus) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	eventBus := bus.New(logger)
	manager := lifecycle.NewManager(eventBus, logger)

	r := chi.NewRouter()
	New(manager, eventBus, logger).Register(r)
	return r, manager, eventBus
}

func raiseAlert(t *testing.T, manager *lifecycle.Manager, severity domain.Severity) alert.SafetyAlert {
	t.Helper()
	a, err := alert.New("photo-1", alert.TypeHazardDetected, severity, "unguarded edge")
	require.NoError(t, err)
	manager.RecordAlert(a)
	return a
}

func TestHandleActive(t *testing.T) {
	router, manager, _ := newAlertRouter(t)
	raiseAlert(t, manager, domain.SeverityCritical)
	raiseAlert(t, manager, domain.SeverityHigh)

	rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/alerts/active"))
	testutil.AssertStatusOK(t, rec)
	testutil.AssertJSONContains(t, rec, "count", float64(2))
}

func TestHandleGet(t *testing.T) {
	router, manager, _ := newAlertRouter(t)
	a := raiseAlert(t, manager, domain.SeverityHigh)

	rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/alerts/"+a.ID.String()))
	testutil.AssertStatusOK(t, rec)
	got := testutil.UnmarshalResponse[alert.SafetyAlert](t, rec)
	assert.Equal(t, a.ID, got.ID)

	rec = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/alerts/"+domain.NewAlertID().String()))
	testutil.AssertStatusAndError(t, rec, http.StatusNotFound, "not_found")

	rec = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/alerts/not-a-uuid"))
	testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "invalid_input")
}

func TestHandleAcknowledge(t *testing.T) {
	router, manager, _ := newAlertRouter(t)
	a := raiseAlert(t, manager, domain.SeverityCritical)
	path := "/alerts/" + a.ID.String() + "/ack"

	rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, path, AcknowledgeRequest{
		ActorID: "foreman-3",
		Notes:   "crew pulled back from edge",
	}))
	testutil.AssertStatusOK(t, rec)
	got := testutil.UnmarshalResponse[alert.SafetyAlert](t, rec)
	assert.Equal(t, "foreman-3", got.AcknowledgedBy)
	require.NotNil(t, got.AcknowledgedAt)

	// Idempotent: a second ack succeeds and keeps the original actor.
	rec = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, path, AcknowledgeRequest{
		ActorID: "foreman-4",
	}))
	testutil.AssertStatusOK(t, rec)
	got = testutil.UnmarshalResponse[alert.SafetyAlert](t, rec)
	assert.Equal(t, "foreman-3", got.AcknowledgedBy)
}

func TestHandleAcknowledge_Errors(t *testing.T) {
	router, _, _ := newAlertRouter(t)

	rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost,
		"/alerts/"+domain.NewAlertID().String()+"/ack", AcknowledgeRequest{ActorID: "foreman-3"}))
	testutil.AssertStatusAndError(t, rec, http.StatusNotFound, "not_found")

	rec = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost,
		"/alerts/"+domain.NewAlertID().String()+"/ack", AcknowledgeRequest{}))
	testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "invalid_input")
}

// streamLines reads SSE frames off a live connection until the first data
// line arrives, then returns everything read so far.
func streamLines(t *testing.T, url string) (http.Header, []string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		if strings.HasPrefix(line, "data: ") {
			break
		}
	}
	return resp.Header, lines
}

func TestHandleStream(t *testing.T) {
	router, _, eventBus := newAlertRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	go func() {
		// Publish once the stream handler has subscribed.
		for eventBus.SubscriberCount() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		a, _ := alert.New("photo-1", alert.TypeHazardDetected, domain.SeverityCritical, "unguarded edge")
		eventBus.PublishAlert(a)
	}()

	header, lines := streamLines(t, server.URL+"/alerts/stream")
	assert.Equal(t, "text/event-stream", header.Get("Content-Type"))
	body := strings.Join(lines, "\n")
	assert.Contains(t, body, "event: safety_alert")
	assert.Contains(t, body, "id: 1")
	assert.Contains(t, body, "unguarded edge")
}

func TestHandleStream_KindFilter(t *testing.T) {
	router, _, eventBus := newAlertRouter(t)
	server := httptest.NewServer(router)
	defer server.Close()

	go func() {
		for eventBus.SubscriberCount() == 0 {
			time.Sleep(5 * time.Millisecond)
		}
		a, _ := alert.New("photo-1", alert.TypeHazardDetected, domain.SeverityLow, "debris")
		eventBus.PublishAlert(a)
		eventBus.PublishSystem(alert.SystemEvent{
			Component:  "kafka",
			Status:     alert.SystemDegraded,
			OccurredAt: time.Now().UTC(),
		})
	}()

	_, lines := streamLines(t, server.URL+"/alerts/stream?kinds=system_event")
	body := strings.Join(lines, "\n")
	assert.Contains(t, body, "event: system_event")
	assert.NotContains(t, body, "event: safety_alert")
}

func TestHandleStream_UnknownKind(t *testing.T) {
	router, _, _ := newAlertRouter(t)

	rec := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/alerts/stream?kinds=weather"))
	testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "invalid_input")
}
