package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/enpitsuLin/taiyi/pkg/config"
)

// Service serves metrics-like services over HTTP.
type Service struct {
	http        []*http.Server
	config      config.BasicService
	log         *zap.Logger
	serviceType string
	started     *sync.Once
}

// newService configures a basic metrics-like service for the given HTTP
// handler, address set and service name.
func newService(cfg config.BasicService, handler http.Handler, name string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	var srvs = make([]*http.Server, len(cfg.Addresses))
	for i, addr := range cfg.Addresses {
		srvs[i] = &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return &Service{
		http:        srvs,
		config:      cfg,
		serviceType: name,
		log:         log.With(zap.String("service", name)),
		started:     new(sync.Once),
	}
}

// Start runs the service if enabled.
func (ms *Service) Start() error {
	if ms == nil || !ms.config.Enabled {
		return nil
	}
	var resErr error
	ms.started.Do(func() {
		for _, srv := range ms.http {
			ms.log.Info("starting service", zap.String("endpoint", srv.Addr))

			ln, err := listen(srv.Addr)
			if err != nil {
				resErr = err
				return
			}
			srv.Addr = ln.Addr().String()
			go func(srv *http.Server) {
				err = srv.Serve(ln)
				if !errors.Is(err, http.ErrServerClosed) {
					ms.log.Error("failed to start service",
						zap.String("endpoint", srv.Addr),
						zap.Error(err))
				}
			}(srv)
		}
	})
	return resErr
}

// ShutDown stops the service.
func (ms *Service) ShutDown() {
	if ms == nil || !ms.config.Enabled {
		return
	}
	for _, srv := range ms.http {
		ms.log.Info("shutting down service", zap.String("endpoint", srv.Addr))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := srv.Shutdown(ctx)
		cancel()
		if err != nil {
			ms.log.Error("can't shut service down", zap.Error(err))
		}
	}
}
