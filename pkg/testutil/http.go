// Package testutil provides the request/response helpers the handler and
// integration tests share.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewJSONRequest builds a request with body marshaled to JSON.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err, "marshal request body")
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewRequest builds a bodyless request.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// NewRequestWithBody builds a request around a raw string body, for tests
// that need to send malformed JSON.
func NewRequestWithBody(t *testing.T, method, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoRequest runs the request through the handler and captures the response.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// UnmarshalResponse decodes the recorded body into T.
func UnmarshalResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) *T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "unmarshal response body")
	return &out
}

// AssertStatus checks the recorded status code.
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rec.Code, "unexpected status code")
}

// AssertStatusOK checks for 200.
func AssertStatusOK(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	AssertStatus(t, rec, http.StatusOK)
}

// AssertStatusAndError checks the status code and the error token in the
// standard error body.
func AssertStatusAndError(t *testing.T, rec *httptest.ResponseRecorder, expectedStatus int, expectedToken string) {
	t.Helper()
	AssertStatus(t, rec, expectedStatus)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "unmarshal error body")
	assert.Equal(t, expectedToken, body["error"], "unexpected error token")
}

// AssertJSONContains checks one key/value pair in the recorded JSON body.
func AssertJSONContains(t *testing.T, rec *httptest.ResponseRecorder, key string, expected any) {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "unmarshal response body")
	assert.Equal(t, expected, body[key], "unexpected value for key %q", key)
}
