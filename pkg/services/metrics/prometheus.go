package metrics

import (
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/enpitsuLin/taiyi/pkg/config"
)

// NewPrometheusService creates a new service for gathering prometheus
// metrics.
func NewPrometheusService(cfg config.BasicService, log *zap.Logger) *Service {
	return newService(cfg, promhttp.Handler(), "Prometheus", log)
}

// NewPprofService creates a new service for gathering pprof metrics.
func NewPprofService(cfg config.BasicService, log *zap.Logger) *Service {
	handler := http.NewServeMux()
	handler.HandleFunc("/debug/pprof/", pprof.Index)
	handler.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	handler.HandleFunc("/debug/pprof/profile", pprof.Profile)
	handler.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	handler.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return newService(cfg, handler, "Pprof", log)
}

// listen binds the service address.
func listen(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
