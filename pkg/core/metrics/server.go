package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAddress is used by NewHTTPServer when addr is empty.
const DefaultAddress = ":9090"

// NewHTTPServer creates an HTTP server that exposes the client metrics at /metrics.
func NewHTTPServer(addr string) *http.Server {
	if addr == "" {
		addr = DefaultAddress
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:    addr,
		Handler: mux,
	}
}
