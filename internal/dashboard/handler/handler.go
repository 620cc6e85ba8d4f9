package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitewatch/internal/dashboard"
	"sitewatch/internal/dashboard/cache"
	dErrors "sitewatch/pkg/domain-errors"
	"sitewatch/pkg/platform/httputil"
	"sitewatch/pkg/platform/sentinel"
)

// DefaultWindow is the reporting window when the request does not name one.
const DefaultWindow = 24 * time.Hour

// Builder computes fresh dashboard snapshots over a reporting window.
type Builder interface {
	Build(ctx context.Context, window time.Duration) (dashboard.Snapshot, error)
}

// Handler serves the dashboard snapshot, cached when Redis is configured.
type Handler struct {
	builder Builder
	cache   *cache.SnapshotCache
	logger  *slog.Logger
}

// New constructs a dashboard handler. cache may be nil.
func New(builder Builder, snapshots *cache.SnapshotCache, logger *slog.Logger) *Handler {
	return &Handler{builder: builder, cache: snapshots, logger: logger}
}

// Register mounts dashboard endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard", h.HandleSnapshot)
}

// HandleSnapshot handles GET /dashboard. ?window=1h bounds the windowed
// tallies (default 24h); ?fresh=1 recomputes and drops the cached copy.
func (h *Handler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	window, err := parseWindow(r.URL.Query().Get("window"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if r.URL.Query().Get("fresh") == "" {
		snap, err := h.cache.Get(ctx, window)
		if err == nil {
			httputil.WriteJSON(w, http.StatusOK, snap)
			return
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			// Cache trouble degrades to a recompute, never a failure.
			h.logger.WarnContext(ctx, "dashboard cache read failed", "error", err)
		}
	} else if err := h.cache.Invalidate(ctx, window); err != nil {
		h.logger.WarnContext(ctx, "dashboard cache invalidate failed", "error", err)
	}

	snap, err := h.builder.Build(ctx, window)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.cache.Put(ctx, window, snap); err != nil {
		h.logger.WarnContext(ctx, "dashboard cache write failed", "error", err)
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func parseWindow(raw string) (time.Duration, error) {
	if raw == "" {
		return DefaultWindow, nil
	}
	window, err := time.ParseDuration(raw)
	if err != nil || window <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "window must be a positive duration")
	}
	return window, nil
}
