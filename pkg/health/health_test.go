package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func up(context.Context) ComponentHealth { return ComponentHealth{Status: StatusUp} }

func TestRunAggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]Check
		want   Status
	}{
		{"empty", nil, StatusUp},
		{"all up", map[string]Check{"a": up, "b": up}, StatusUp},
		{"optional down", map[string]Check{
			"a":     up,
			"redis": PingCheck(func(context.Context) error { return errors.New("refused") }, false),
		}, StatusDegraded},
		{"required down", map[string]Check{
			"redis":    Disabled("not configured"),
			"postgres": PingCheck(func(context.Context) error { return errors.New("refused") }, true),
		}, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for name, check := range tt.checks {
				c.Register(name, check)
			}
			report := c.Run(context.Background())
			if report.Status != tt.want {
				t.Errorf("Status = %s, want %s", report.Status, tt.want)
			}
			if len(report.Components) != len(tt.checks) {
				t.Errorf("got %d components, want %d", len(report.Components), len(tt.checks))
			}
		})
	}
}

func TestPingCheckMessage(t *testing.T) {
	got := PingCheck(func(context.Context) error { return errors.New("dial tcp: refused") }, true)(context.Background())
	if got.Status != StatusDown || got.Message != "dial tcp: refused" {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("kafka", Disabled("no brokers"))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("degraded should be ready, got %d", rec.Code)
	}
	var report Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decoding report: %v", err)
	}
	if report.Components["kafka"].Message != "no brokers" {
		t.Errorf("unexpected component %+v", report.Components["kafka"])
	}

	c.Register("store", PingCheck(func(context.Context) error { return errors.New("down") }, true))
	rec = httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("down should be 503, got %d", rec.Code)
	}
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewChecker().LiveHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
