package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"sitewatch/internal/alert"
	"sitewatch/internal/alert/bus"
	"sitewatch/pkg/domain"
	dErrors "sitewatch/pkg/domain-errors"
	"sitewatch/pkg/platform/httputil"
	"sitewatch/pkg/requestcontext"
)

// Lifecycle is the slice of the lifecycle manager the handler needs.
type Lifecycle interface {
	AcknowledgeAlert(id domain.AlertID, actorID, notes string) bool
	Alert(id domain.AlertID) (alert.SafetyAlert, bool)
	ActiveAlerts(now time.Time) []alert.SafetyAlert
	AlertHistory() []alert.SafetyAlert
}

// Subscriber opens live streams on the alert bus.
type Subscriber interface {
	Subscribe(opts ...bus.SubscribeOption) *bus.Subscription
}

// Handler wires alert endpoints to the lifecycle manager and bus.
type Handler struct {
	lifecycle Lifecycle
	bus       Subscriber
	logger    *slog.Logger

	// heartbeat keeps idle SSE connections open through proxies.
	heartbeat time.Duration
}

// New constructs an alert handler with its dependencies.
func New(lifecycle Lifecycle, subscriber Subscriber, logger *slog.Logger) *Handler {
	return &Handler{
		lifecycle: lifecycle,
		bus:       subscriber,
		logger:    logger,
		heartbeat: 15 * time.Second,
	}
}

// Register mounts alert endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/alerts/active", h.HandleActive)
	r.Get("/alerts/history", h.HandleHistory)
	r.Get("/alerts/stream", h.HandleStream)
	r.Get("/alerts/{alertID}", h.HandleGet)
	r.Post("/alerts/{alertID}/ack", h.HandleAcknowledge)
}

// HandleActive handles GET /alerts/active.
func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	alerts := h.lifecycle.ActiveAlerts(time.Now().UTC())
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// HandleHistory handles GET /alerts/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	alerts := h.lifecycle.AlertHistory()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// HandleGet handles GET /alerts/{alertID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	alertID, err := domain.ParseAlertID(chi.URLParam(r, "alertID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	a, ok := h.lifecycle.Alert(alertID)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "alert not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a)
}

// AcknowledgeRequest is the payload for POST /alerts/{alertID}/ack.
type AcknowledgeRequest struct {
	ActorID string `json:"actorId"`
	Notes   string `json:"notes,omitempty"`
}

func (r AcknowledgeRequest) Validate() error {
	if r.ActorID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "actorId is required")
	}
	return nil
}

// HandleAcknowledge handles POST /alerts/{alertID}/ack. Acknowledging an
// already acknowledged alert succeeds without changing who acknowledged it.
func (h *Handler) HandleAcknowledge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	alertID, err := domain.ParseAlertID(chi.URLParam(r, "alertID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[AcknowledgeRequest](w, r, h.logger)
	if !ok {
		return
	}

	if !h.lifecycle.AcknowledgeAlert(alertID, req.ActorID, req.Notes) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "alert not found"))
		return
	}

	a, _ := h.lifecycle.Alert(alertID)
	h.logger.InfoContext(ctx, "alert acknowledged",
		"request_id", requestcontext.RequestID(ctx),
		"alert_id", alertID,
		"actor_id", req.ActorID,
	)
	httputil.WriteJSON(w, http.StatusOK, a)
}

// HandleStream handles GET /alerts/stream: a server-sent-events feed of bus
// envelopes. An optional kinds parameter narrows the feed, e.g.
// ?kinds=safety_alert,system_event.
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnavailable, "streaming not supported"))
		return
	}

	var opts []bus.SubscribeOption
	if raw := r.URL.Query().Get("kinds"); raw != "" {
		var kinds []bus.Kind
		for _, k := range strings.Split(raw, ",") {
			switch kind := bus.Kind(strings.TrimSpace(k)); kind {
			case bus.KindSafetyAlert, bus.KindComplianceEvent, bus.KindSystemEvent:
				kinds = append(kinds, kind)
			default:
				httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown kind %q", k)))
				return
			}
		}
		opts = append(opts, bus.WithKinds(kinds...))
	}

	sub := h.bus.Subscribe(opts...)
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case env, open := <-sub.C():
			if !open {
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				h.logger.ErrorContext(ctx, "encode stream envelope", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\nid: %d\ndata: %s\n\n", env.Kind, env.Seq, data)
			flusher.Flush()
		}
	}
}
