package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/ElGTahur/pokemon-tcg-analysis/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	if m.GetCounter() == nil {
		t.Fatalf("metric did not contain Counter value")
	}
	return m.GetCounter().GetValue()
}

func TestNewBackend(t *testing.T) {
	tests := []struct {
		name        string
		jobName     string
		gatewayURL  string
		wantErr     bool
		wantJobName string
	}{
		{"missing gateway", "tcg-etl", "", true, ""},
		{"default job name", "", "http://gw:9091", false, "tcg-etl"},
		{"explicit job name", "nightly", "http://gw:9091", false, "nightly"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBackend(tt.jobName, tt.gatewayURL)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewBackend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if b.jobName != tt.wantJobName {
				t.Errorf("jobName = %q, want %q", b.jobName, tt.wantJobName)
			}
		})
	}
}

func TestIncCounterRouting(t *testing.T) {
	b, err := NewBackend("test", "http://gw:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter("tcg_stage_total", 1, metrics.Labels{"stage": "load", "status": "success"})
	b.IncCounter("tcg_cards_total", 42, metrics.Labels{"kind": "loaded"})
	b.IncCounter("tcg_runs_total", 1, metrics.Labels{"status": "error"})
	b.IncCounter("unknown_metric", 9, nil) // must be a no-op

	if got := readCounterValue(t, b.stageCounter.WithLabelValues("load", "success")); got != 1 {
		t.Errorf("stage counter = %v, want 1", got)
	}
	if got := readCounterValue(t, b.cardCounter.WithLabelValues("loaded")); got != 42 {
		t.Errorf("card counter = %v, want 42", got)
	}
	if got := readCounterValue(t, b.runCounter.WithLabelValues("error")); got != 1 {
		t.Errorf("run counter = %v, want 1", got)
	}
}

func TestFlushPushesToGateway(t *testing.T) {
	var pushed bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushed = true
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b, err := NewBackend("test", srv.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter("tcg_cards_total", 1, metrics.Labels{"kind": "read"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if !pushed {
		t.Error("Flush never hit the gateway")
	}
}
