package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sitewatch/pkg/requestcontext"
	"sitewatch/pkg/testutil"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	t.Run("generates when absent", func(t *testing.T) {
		rec := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/"))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	})

	t.Run("honors inbound header", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/")
		req.Header.Set("X-Request-ID", "gateway-123")
		rec := testutil.DoRequest(h, req)
		assert.Equal(t, "gateway-123", seen)
		assert.Equal(t, "gateway-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestContentTypeJSON(t *testing.T) {
	t.Run("stamps the default", func(t *testing.T) {
		h := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		rec := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/"))
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	})

	t.Run("streaming handlers may override", func(t *testing.T) {
		h := ContentTypeJSON(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)
		}))
		rec := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/"))
		assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	})
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	h := Recovery(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := testutil.WithRequestID(testutil.NewRequest(t, http.MethodPost, "/compliance/reports"), "req-7")
	testutil.DoRequest(h, req)

	line := buf.String()
	assert.Contains(t, line, `"status":201`)
	assert.Contains(t, line, `"path":"/compliance/reports"`)
	assert.Contains(t, line, `"request_id":"req-7"`)
}

func TestTimeout(t *testing.T) {
	var hasDeadline bool
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))

	testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/"))
	assert.True(t, hasDeadline)
}
