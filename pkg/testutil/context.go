package testutil

import (
	"net/http"

	"sitewatch/pkg/requestcontext"
)

// WithRequestID adds a correlation id to the request context, simulating
// what the RequestID middleware would do.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
