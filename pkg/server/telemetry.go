// Package server exposes the CLI's Prometheus metrics and health checks
// over HTTP for the lifetime of an experiment.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-overcode/pkg/health"
	"github.com/dd0wney/cluso-overcode/pkg/logging"
)

// Telemetry serves /metrics and /healthz.
type Telemetry struct {
	server       *http.Server
	logger       logging.Logger
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	mu   sync.Mutex
	addr net.Addr
	done chan error
}

// NewTelemetry builds a server for addr. Nothing listens until Start.
func NewTelemetry(addr string, gatherer prometheus.Gatherer, checker *health.Checker, logger logging.Logger) *Telemetry {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", checker.HTTPHandler())

	return &Telemetry{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger:     logger.With(logging.Component("telemetry")),
		shutdownCh: make(chan struct{}),
		done:       make(chan error, 1),
	}
}

// Handler returns the server's routes.
func (t *Telemetry) Handler() http.Handler {
	return t.server.Handler
}

// Start binds the listener and serves in the background. Bind errors are
// returned directly.
func (t *Telemetry) Start() error {
	ln, err := net.Listen("tcp", t.server.Addr)
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.addr = ln.Addr()
	t.mu.Unlock()

	t.logger.Info("telemetry listening", logging.String("addr", ln.Addr().String()))
	go func() {
		err := t.server.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		t.done <- err
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (t *Telemetry) Addr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.addr
}

// Shutdown drains open connections, waiting at most timeout. It is safe
// to call more than once.
func (t *Telemetry) Shutdown(timeout time.Duration) error {
	var err error
	t.shutdownOnce.Do(func() {
		close(t.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err = t.server.Shutdown(ctx); err != nil {
			t.logger.Error("telemetry shutdown failed", logging.Error(err))
			return
		}
		if t.Addr() != nil {
			err = <-t.done
		}
		t.logger.Info("telemetry stopped")
	})
	return err
}

// IsShuttingDown returns true if shutdown has been initiated
func (t *Telemetry) IsShuttingDown() bool {
	select {
	case <-t.shutdownCh:
		return true
	default:
		return false
	}
}
