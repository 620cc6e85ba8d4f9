// Package httputil holds the JSON request/response helpers shared by every
// handler package.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "sitewatch/pkg/domain-errors"
	"sitewatch/pkg/platform/sentinel"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError maps a domain error onto an HTTP error payload. Internal
// errors hide their description; everything else passes it through.
func WriteError(w http.ResponseWriter, err error) {
	var dErr *dErrors.Error
	code := sentinelCode(err)
	if errors.As(err, &dErr) {
		code = dErr.Code
	}
	status := dErrors.ToHTTPStatus(code)

	body := map[string]string{"error": errorToken(code)}
	if code != dErrors.CodeInternal {
		body["error_description"] = err.Error()
	}
	WriteJSON(w, status, body)
}

// Validatable lets request payloads validate themselves after decoding.
type Validatable interface {
	Validate() error
}

// Decode parses the JSON body into T and runs its validation if it has
// any. On failure the error response is already written and ok is false.
func Decode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var req T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if logger != nil {
			logger.DebugContext(r.Context(), "request decode failed", "error", err)
		}
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "malformed request body"))
		return req, false
	}
	if v, ok := any(req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			WriteError(w, err)
			return req, false
		}
	}
	return req, true
}

// sentinelCode translates bare sentinel errors so stores can be used from
// handlers without wrapping every miss.
func sentinelCode(err error) dErrors.Code {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.CodeNotFound
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.CodeConflict
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.CodeInvariantViolation
	case errors.Is(err, sentinel.ErrTampered):
		return dErrors.CodeInvariantViolation
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.CodeUnavailable
	default:
		return dErrors.CodeInternal
	}
}

func errorToken(code dErrors.Code) string {
	if code == dErrors.CodeInternal {
		return "internal_error"
	}
	return string(code)
}
