package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dd0wney/cluso-overcode/pkg/health"
)

func newTestTelemetry(t *testing.T) *Telemetry {
	t.Helper()
	reg := prometheus.NewRegistry()
	promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "overcode_test_total",
		Help: "Test counter",
	}).Add(3)

	checker := health.NewChecker()
	checker.Register("experiment", health.ProgressCheck(func() health.Progress {
		return health.Progress{Done: 1, Total: 2}
	}))
	return NewTelemetry("127.0.0.1:0", reg, checker, nil)
}

func TestTelemetryRoutes(t *testing.T) {
	tel := newTestTelemetry(t)

	rec := httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "overcode_test_total 3") {
		t.Errorf("/metrics missing counter:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	tel.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/healthz status = %d", rec.Code)
	}
	var resp health.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if _, ok := resp.Checks["experiment"]; !ok {
		t.Error("health response missing experiment check")
	}
}

func TestTelemetryStartShutdown(t *testing.T) {
	tel := newTestTelemetry(t)
	if err := tel.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if tel.Addr() == nil {
		t.Fatal("Addr() is nil after Start")
	}

	resp, err := http.Get("http://" + tel.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if tel.IsShuttingDown() {
		t.Error("IsShuttingDown() true before Shutdown")
	}
	if err := tel.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if !tel.IsShuttingDown() {
		t.Error("IsShuttingDown() false after Shutdown")
	}
	if err := tel.Shutdown(time.Second); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}

func TestTelemetryShutdownWithoutStart(t *testing.T) {
	tel := newTestTelemetry(t)
	if err := tel.Shutdown(time.Second); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestTelemetryBindError(t *testing.T) {
	first := newTestTelemetry(t)
	if err := first.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer first.Shutdown(time.Second)

	second := NewTelemetry(first.Addr().String(), prometheus.NewRegistry(), health.NewChecker(), nil)
	if err := second.Start(); err == nil {
		second.Shutdown(time.Second)
		t.Error("expected bind error on an address in use")
	}
}
