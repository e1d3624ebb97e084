package metrics

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRegistryContainsGoAndProcessCollectors(t *testing.T) {
	// The default Registry should include Go and Process collectors
	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	if !names["go_goroutines"] {
		t.Error("expected go_goroutines metric from GoCollector")
	}
	if !names["process_cpu_seconds_total"] {
		t.Error("expected process_cpu_seconds_total from ProcessCollector")
	}
}

func TestCommandMetricsObserve(t *testing.T) {
	m := NewCommandMetrics()
	m.ObserveCommand("builtin", 0.01)
	m.IncExecFailure("not_found")

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	expected := []string{
		"opensh_commands_total",
		"opensh_command_duration_seconds",
		"opensh_exec_failures_total",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("expected metric %q not found", name)
		}
	}
}

func TestJobMetricsRegistered(t *testing.T) {
	m := NewJobMetrics()
	m.Active.Set(2)
	m.Total.WithLabelValues("done").Inc()

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	if !names["opensh_jobs_active"] {
		t.Error("expected opensh_jobs_active")
	}
	if !names["opensh_jobs_total"] {
		t.Error("expected opensh_jobs_total")
	}
}

func TestInfoMetricsRegistered(t *testing.T) {
	NewInfoMetrics("0.0.0-test", time.Now())

	families, err := Registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather: %v", err)
	}
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	if !names["opensh_shell_info"] {
		t.Error("expected opensh_shell_info")
	}
	if !names["opensh_shell_uptime_seconds"] {
		t.Error("expected opensh_shell_uptime_seconds")
	}
}

func TestMetricsServerStartStop(t *testing.T) {
	logger := zap.NewNop()
	srv := NewServer(19876, logger)
	srv.Start()

	// Give it time to start
	time.Sleep(100 * time.Millisecond)

	// Test /healthz
	resp, err := http.Get("http://localhost:19876/healthz")
	if err != nil {
		t.Fatalf("failed to reach healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	// Test /metrics
	resp2, err := http.Get("http://localhost:19876/metrics")
	if err != nil {
		t.Fatalf("failed to reach metrics: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp2.StatusCode)
	}

	body, _ := io.ReadAll(resp2.Body)
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("expected go_goroutines in metrics output")
	}

	srv.Stop()
}
