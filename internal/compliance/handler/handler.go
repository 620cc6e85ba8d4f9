package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitewatch/internal/compliance"
	"sitewatch/internal/compliance/processor"
	"sitewatch/pkg/domain"
	dErrors "sitewatch/pkg/domain-errors"
	"sitewatch/pkg/platform/httputil"
	"sitewatch/pkg/requestcontext"
)

// Service defines the compliance operations the handler exposes.
type Service interface {
	ProcessHazardDetection(ctx context.Context, sig processor.HazardSignal) (processor.HazardResult, error)
	ProcessManualReport(ctx context.Context, report processor.ManualReport) (compliance.Event, error)
	Transition(ctx context.Context, id domain.EventID, next compliance.Status, actorID string) (compliance.Event, error)
	CloseEvent(ctx context.Context, id domain.EventID, actorID string) (compliance.Event, error)
	ReopenEvent(ctx context.Context, id domain.EventID, actorID string) (compliance.Event, error)
	Event(ctx context.Context, id domain.EventID) (compliance.Event, error)
	OverdueEvents(ctx context.Context) ([]compliance.Event, error)
}

// Handler wires compliance endpoints to the event processor.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a compliance handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compliance/hazard-signals", h.HandleHazardSignal)
	r.Post("/compliance/reports", h.HandleManualReport)
	r.Get("/compliance/events/overdue", h.HandleOverdue)
	r.Get("/compliance/events/{eventID}", h.HandleGetEvent)
	r.Post("/compliance/events/{eventID}/transition", h.HandleTransition)
	r.Post("/compliance/events/{eventID}/close", h.HandleClose)
	r.Post("/compliance/events/{eventID}/reopen", h.HandleReopen)
}

// HandleHazardSignal handles POST /compliance/hazard-signals.
func (h *Handler) HandleHazardSignal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	req, ok := httputil.Decode[HazardSignalRequest](w, r, h.logger)
	if !ok {
		return
	}
	sig, err := req.ToSignal()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.ProcessHazardDetection(ctx, sig)
	if err != nil {
		h.logger.ErrorContext(ctx, "hazard signal processing failed",
			"request_id", requestcontext.RequestID(ctx),
			"source_id", req.SourceID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "hazard signal processed",
		"request_id", requestcontext.RequestID(ctx),
		"source_id", req.SourceID,
		"hazards", len(req.Hazards),
		"alert_raised", result.Alert.Raised,
		"event_opened", result.Event != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromHazardResult(result))
}

// HandleManualReport handles POST /compliance/reports.
func (h *Handler) HandleManualReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[ManualReportRequest](w, r, h.logger)
	if !ok {
		return
	}
	report, err := req.ToReport()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ev, err := h.service.ProcessManualReport(ctx, report)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual report processing failed",
			"request_id", requestcontext.RequestID(ctx),
			"actor_id", req.ActorID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "compliance report filed",
		"request_id", requestcontext.RequestID(ctx),
		"event_id", ev.ID,
		"severity", ev.Severity,
		"actor_id", req.ActorID,
	)
	httputil.WriteJSON(w, http.StatusCreated, ev)
}

// HandleGetEvent handles GET /compliance/events/{eventID}.
func (h *Handler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := domain.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	ev, err := h.service.Event(r.Context(), eventID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ev)
}

// HandleOverdue handles GET /compliance/events/overdue.
func (h *Handler) HandleOverdue(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.OverdueEvents(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// HandleTransition handles POST /compliance/events/{eventID}/transition.
func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, id domain.EventID, req TransitionRequest) (compliance.Event, error) {
		return h.service.Transition(ctx, id, compliance.Status(req.Status), req.ActorID)
	})
}

// HandleClose handles POST /compliance/events/{eventID}/close.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, id domain.EventID, req TransitionRequest) (compliance.Event, error) {
		return h.service.CloseEvent(ctx, id, req.ActorID)
	})
}

// HandleReopen handles POST /compliance/events/{eventID}/reopen.
func (h *Handler) HandleReopen(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, id domain.EventID, req TransitionRequest) (compliance.Event, error) {
		return h.service.ReopenEvent(ctx, id, req.ActorID)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, domain.EventID, TransitionRequest) (compliance.Event, error)) {
	ctx := r.Context()
	eventID, err := domain.ParseEventID(chi.URLParam(r, "eventID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[TransitionRequest](w, r, h.logger)
	if !ok {
		return
	}

	ev, err := apply(ctx, eventID, req)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeInvariantViolation) && !dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			h.logger.ErrorContext(ctx, "compliance transition failed",
				"request_id", requestcontext.RequestID(ctx),
				"event_id", eventID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ev)
}
