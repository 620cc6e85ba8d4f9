package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sitewatch/pkg/domain-errors"
	"sitewatch/pkg/platform/sentinel"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"count": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
}

func TestWriteJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWriteError_CodedErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		token  string
	}{
		{dErrors.New(dErrors.CodeInvalidInput, "bad field"), http.StatusBadRequest, "invalid_input"},
		{dErrors.New(dErrors.CodeInvariantViolation, "illegal move"), http.StatusUnprocessableEntity, "invariant_violation"},
		{dErrors.New(dErrors.CodeNotFound, "no such event"), http.StatusNotFound, "not_found"},
		{dErrors.New(dErrors.CodeConflict, "already exists"), http.StatusConflict, "conflict"},
		{dErrors.New(dErrors.CodeUnavailable, "store down"), http.StatusServiceUnavailable, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.token, body["error"])
			assert.Equal(t, tt.err.Error(), body["error_description"])
		})
	}
}

func TestWriteError_InternalHidesDescription(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, dErrors.New(dErrors.CodeInternal, "pool exhausted on shard 3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, body, "error_description")
}

func TestWriteError_WrappedCodePreserved(t *testing.T) {
	inner := dErrors.New(dErrors.CodeNotFound, "trail missing")
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("lookup: %w", inner))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody(t, rec)["error"])
}

func TestWriteError_SentinelMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		token  string
	}{
		{sentinel.ErrNotFound, http.StatusNotFound, "not_found"},
		{sentinel.ErrConflict, http.StatusConflict, "conflict"},
		{sentinel.ErrInvalidState, http.StatusUnprocessableEntity, "invariant_violation"},
		{sentinel.ErrTampered, http.StatusUnprocessableEntity, "invariant_violation"},
		{sentinel.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, fmt.Errorf("store: %w", tt.err))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.token, decodeBody(t, rec)["error"])
		})
	}
}

func TestWriteError_UnknownErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "internal_error", body["error"])
	assert.NotContains(t, body, "error_description")
}

type testPayload struct {
	Name string `json:"name"`
}

func (p testPayload) Validate() error {
	if p.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	return nil
}

func TestDecode(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"crane-3"}`))
		rec := httptest.NewRecorder()

		req, ok := Decode[testPayload](rec, r, nil)
		require.True(t, ok)
		assert.Equal(t, "crane-3", req.Name)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		rec := httptest.NewRecorder()

		_, ok := Decode[testPayload](rec, r, nil)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid_input", decodeBody(t, rec)["error"])
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","extra":true}`))
		rec := httptest.NewRecorder()

		_, ok := Decode[testPayload](rec, r, nil)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
		rec := httptest.NewRecorder()

		_, ok := Decode[testPayload](rec, r, nil)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "name is required", decodeBody(t, rec)["error_description"])
	})
}
