package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitewatch/internal/audit"
	"sitewatch/pkg/domain"
	dErrors "sitewatch/pkg/domain-errors"
	"sitewatch/pkg/platform/httputil"
	"sitewatch/pkg/platform/sentinel"
	"sitewatch/pkg/requestcontext"
)

// Service defines the audit trail operations the handler exposes.
type Service interface {
	StartTrail(ctx context.Context, sessionID domain.SessionID, ownerID string) (audit.Trail, error)
	Trail(sessionID domain.SessionID) (audit.Trail, error)
	EntriesInRange(sessionID domain.SessionID, start, end time.Time) ([]audit.Entry, error)
	EntriesByType(sessionID domain.SessionID, t audit.EntryType) ([]audit.Entry, error)
	VerifyIntegrity(ctx context.Context, sessionID domain.SessionID) (bool, error)
}

// Handler wires audit trail endpoints to the audit service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an audit handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/sessions", h.HandleStartSession)
	r.Get("/sessions/{sessionID}", h.HandleGetTrail)
	r.Get("/sessions/{sessionID}/entries", h.HandleListEntries)
	r.Get("/sessions/{sessionID}/verify", h.HandleVerify)
}

// StartSessionRequest is the payload for POST /sessions.
type StartSessionRequest struct {
	OwnerID string `json:"ownerId"`
}

func (r StartSessionRequest) Validate() error {
	if r.OwnerID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "ownerId is required")
	}
	return nil
}

// TrailResponse summarizes a trail without dumping every entry.
type TrailResponse struct {
	SessionID       string `json:"sessionId"`
	OwnerID         string `json:"ownerId"`
	EntryCount      int    `json:"entryCount"`
	Version         uint64 `json:"version"`
	IntegrityDigest string `json:"integrityDigest"`
	Suspect         bool   `json:"suspect"`
}

func trailResponse(t audit.Trail) TrailResponse {
	return TrailResponse{
		SessionID:       t.SessionID.String(),
		OwnerID:         t.OwnerID,
		EntryCount:      len(t.Entries),
		Version:         t.Version,
		IntegrityDigest: t.IntegrityDigest,
		Suspect:         t.Suspect,
	}
}

// HandleStartSession handles POST /sessions.
func (h *Handler) HandleStartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[StartSessionRequest](w, r, h.logger)
	if !ok {
		return
	}

	trail, err := h.service.StartTrail(ctx, domain.NewSessionID(), req.OwnerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "start session failed",
			"request_id", requestcontext.RequestID(ctx),
			"owner_id", req.OwnerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "monitoring session started",
		"request_id", requestcontext.RequestID(ctx),
		"session_id", trail.SessionID,
		"owner_id", req.OwnerID,
	)
	httputil.WriteJSON(w, http.StatusCreated, trailResponse(trail))
}

// HandleGetTrail handles GET /sessions/{sessionID}.
func (h *Handler) HandleGetTrail(w http.ResponseWriter, r *http.Request) {
	sessionID, err := domain.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	trail, err := h.service.Trail(sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, trailResponse(trail))
}

// HandleListEntries handles GET /sessions/{sessionID}/entries. Accepts
// either a type filter or an RFC3339 start/end range; unbounded sides of
// the range may be omitted.
func (h *Handler) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	sessionID, err := domain.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	q := r.URL.Query()
	var entries []audit.Entry
	if t := q.Get("type"); t != "" {
		entries, err = h.service.EntriesByType(sessionID, audit.EntryType(t))
	} else {
		var start, end time.Time
		if start, err = parseTimeParam(q.Get("start")); err == nil {
			if end, err = parseTimeParam(q.Get("end")); err == nil {
				entries, err = h.service.EntriesInRange(sessionID, start, end)
			}
		}
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID.String(),
		"entries":   entries,
		"count":     len(entries),
	})
}

// VerifyResponse is the outcome of an integrity check.
type VerifyResponse struct {
	SessionID string `json:"sessionId"`
	Valid     bool   `json:"valid"`
}

// HandleVerify handles GET /sessions/{sessionID}/verify. A failed check is
// a successful verification with valid=false, not a transport error.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID, err := domain.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	valid, err := h.service.VerifyIntegrity(ctx, sessionID)
	if err != nil && !errors.Is(err, sentinel.ErrTampered) {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VerifyResponse{
		SessionID: sessionID.String(),
		Valid:     valid,
	})
}

func parseTimeParam(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "time parameters must be RFC3339")
	}
	return t, nil
}
