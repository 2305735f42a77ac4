package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestNewChecker(t *testing.T) {
	c := NewChecker()
	if c == nil {
		t.Fatal("NewChecker returned nil")
	}

	resp := c.Check()
	if resp.Status != StatusHealthy {
		t.Errorf("empty checker status = %s, want healthy", resp.Status)
	}
	if len(resp.Checks) != 0 {
		t.Errorf("empty checker returned %d checks", len(resp.Checks))
	}
}

func TestRegisterNamesUnnamedChecks(t *testing.T) {
	c := NewChecker()
	c.Register("sink", func() Check {
		return Check{Status: StatusHealthy}
	})

	resp := c.Check()
	got, ok := resp.Checks["sink"]
	if !ok {
		t.Fatal("check result not in response")
	}
	if got.Name != "sink" {
		t.Errorf("Name = %q, want sink", got.Name)
	}
	if got.LastChecked.IsZero() {
		t.Error("LastChecked not set")
	}
}

func TestCheckStatusAggregation(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for i, s := range tt.statuses {
				status := s
				c.Register(string(rune('a'+i)), func() Check { return Check{Status: status} })
			}
			if got := c.Check().Status; got != tt.want {
				t.Errorf("Status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestProgressCheck(t *testing.T) {
	tests := []struct {
		name    string
		p       Progress
		status  Status
		message string
	}{
		{"running", Progress{Done: 1, Total: 4}, StatusHealthy, "Running"},
		{"complete", Progress{Done: 4, Total: 4}, StatusHealthy, "Experiment complete"},
		{"failures", Progress{Done: 2, Failed: 1, Total: 4}, StatusDegraded, "Some ensembles failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := ProgressCheck(func() Progress { return tt.p })()
			if check.Status != tt.status {
				t.Errorf("Status = %s, want %s", check.Status, tt.status)
			}
			if check.Message != tt.message {
				t.Errorf("Message = %q, want %q", check.Message, tt.message)
			}
			if check.Details["total"] != tt.p.Total {
				t.Errorf("Details[total] = %v, want %d", check.Details["total"], tt.p.Total)
			}
		})
	}
}

func TestSinkCheck(t *testing.T) {
	ok := SinkCheck("postgres", func(ctx context.Context) error {
		if _, has := ctx.Deadline(); !has {
			t.Error("ping context has no deadline")
		}
		return nil
	}, time.Second)()
	if ok.Status != StatusHealthy {
		t.Errorf("Status = %s, want healthy", ok.Status)
	}

	failed := SinkCheck("postgres", func(context.Context) error {
		return errors.New("connection refused")
	}, time.Second)()
	if failed.Status != StatusUnhealthy {
		t.Errorf("Status = %s, want unhealthy", failed.Status)
	}
	if failed.Message != "connection refused" {
		t.Errorf("Message = %q", failed.Message)
	}
}

func TestMemoryCheck(t *testing.T) {
	tests := []struct {
		alloc, sys uint64
		want       Status
	}{
		{100, 1000, StatusHealthy},
		{950, 1000, StatusDegraded},
		{0, 0, StatusHealthy},
	}

	for _, tt := range tests {
		check := MemoryCheck(func() (uint64, uint64) { return tt.alloc, tt.sys })()
		if check.Status != tt.want {
			t.Errorf("MemoryCheck(%d, %d) = %s, want %s", tt.alloc, tt.sys, check.Status, tt.want)
		}
	}
}

func TestHTTPHandler(t *testing.T) {
	tests := []struct {
		name         string
		checkStatus  Status
		expectedCode int
	}{
		{"healthy returns 200", StatusHealthy, http.StatusOK},
		{"degraded returns 200", StatusDegraded, http.StatusOK},
		{"unhealthy returns 503", StatusUnhealthy, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			c.Register("test", func() Check {
				return Check{Status: tt.checkStatus}
			})

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			c.HTTPHandler()(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("expected status code %d, got %d", tt.expectedCode, rec.Code)
			}
			if rec.Header().Get("Content-Type") != "application/json" {
				t.Error("expected Content-Type application/json")
			}

			var resp Response
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.checkStatus {
				t.Errorf("expected response status %s, got %s", tt.checkStatus, resp.Status)
			}
		})
	}
}

func TestConcurrentRegistration(t *testing.T) {
	c := NewChecker()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Register(string(rune('a'+i)), func() Check { return Check{Status: StatusHealthy} })
			c.Check()
		}(i)
	}
	wg.Wait()

	if got := len(c.Check().Checks); got != 20 {
		t.Errorf("registered %d checks, want 20", got)
	}
}
