package httpserver

import (
	"net/http"
	"time"
)

// New builds the monitoring API server. WriteTimeout stays unset: the alert
// stream endpoint holds its connection open indefinitely, so per-route
// timeouts are applied in the router instead.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
