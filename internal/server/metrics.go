package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsServer serves a Prometheus registry's /metrics endpoint on its own
// listener, separate from the broker's TCP protocol port.
type MetricsServer struct {
	httpServer *http.Server
}

// NewMetricsServer builds a MetricsServer bound to addr, exposing reg.
func NewMetricsServer(addr string, reg *prometheus.Registry) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &MetricsServer{httpServer: &http.Server{Addr: addr, Handler: mux}}
}

// Run blocks serving HTTP until the server is shut down or fails to bind.
func (m *MetricsServer) Run() error {
	err := m.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the metrics HTTP server.
func (m *MetricsServer) Shutdown(ctx context.Context, log *zap.Logger) {
	if err := m.httpServer.Shutdown(ctx); err != nil && log != nil {
		log.Warn("metrics server shutdown error", zap.Error(err))
	}
}
