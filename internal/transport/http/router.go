// Package httpapi assembles the public router. Handlers live next to their
// services; this package only decides middleware order and mount points.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sitewatch/internal/platform/middleware"
)

// Registrar is anything that can mount routes on the router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires middleware and mounts every registrar under /v1. The
// metrics endpoint sits outside the version prefix and the request timeout
// so scrapes and SSE streams are unaffected.
func NewRouter(logger *slog.Logger, registrars ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(api chi.Router) {
		// Streaming handlers override the header before their first write.
		api.Use(middleware.ContentTypeJSON)
		for _, reg := range registrars {
			reg.Register(api)
		}
	})
	return r
}

// WithTimeout wraps a registrar's routes in a per-request deadline. Streaming
// registrars must not use this.
func WithTimeout(d time.Duration, reg Registrar) Registrar {
	return timeoutRegistrar{d: d, reg: reg}
}

type timeoutRegistrar struct {
	d   time.Duration
	reg Registrar
}

func (t timeoutRegistrar) Register(r chi.Router) {
	r.Group(func(g chi.Router) {
		g.Use(middleware.Timeout(t.d))
		t.reg.Register(g)
	})
}
