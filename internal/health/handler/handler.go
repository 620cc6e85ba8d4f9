package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitewatch/internal/audit"
	"sitewatch/internal/health"
	dErrors "sitewatch/pkg/domain-errors"
	"sitewatch/pkg/platform/httputil"
)

// Handler exposes component health intake and the liveness/readiness probes.
type Handler struct {
	service *health.Service
	logger  *slog.Logger
}

func New(service *health.Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts health endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/health/reports", h.HandleReport)
	r.Get("/healthz", h.HandleLiveness)
	r.Get("/readyz", h.HandleReadiness)
}

// ReportRequest is the payload for POST /health/reports.
type ReportRequest struct {
	ActorID   string            `json:"actorId"`
	Component string            `json:"component"`
	Status    string            `json:"status"`
	Message   string            `json:"message,omitempty"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}

func (r ReportRequest) Validate() error {
	if r.ActorID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "actorId is required")
	}
	if r.Component == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "component is required")
	}
	return nil
}

// HandleReport handles POST /health/reports.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.Decode[ReportRequest](w, r, h.logger)
	if !ok {
		return
	}
	err := h.service.Record(r.Context(), req.ActorID, health.Report{
		Component: req.Component,
		Status:    audit.ComponentStatus(req.Status),
		Message:   req.Message,
		Metrics:   req.Metrics,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

// HandleLiveness handles GET /healthz.
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleReadiness handles GET /readyz. Ready means no component is FAILED.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	summary := h.service.Summary()
	components := make(map[string]string, len(summary))
	for name, report := range summary {
		components[name] = string(report.Status)
	}
	status := http.StatusOK
	if !h.service.Healthy() {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, map[string]any{
		"ready":      status == http.StatusOK,
		"components": components,
	})
}
