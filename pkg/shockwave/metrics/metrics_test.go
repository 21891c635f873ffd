package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/shockwave-http/shockwave/pkg/shockwave/http11"
	"github.com/shockwave-http/shockwave/pkg/shockwave/server"
)

func TestInstrumentCallsUnderlyingHandler(t *testing.T) {
	called := false
	h := Instrument(func(w *http11.ResponseWriter, r *http11.Request) {
		called = true
	})

	h(nil, nil)

	if !called {
		t.Error("Instrument did not call the wrapped handler")
	}
}

func TestStatsCollectorReportsConnectionCounts(t *testing.T) {
	stats := &server.Stats{}
	stats.TotalConnections.Store(3)
	stats.ActiveConnections.Store(2)

	collector := NewStatsCollector(stats)
	registry := prometheus.NewRegistry()
	registry.MustRegister(collector)

	got, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	names := make([]string, 0, len(got))
	for _, mf := range got {
		names = append(names, mf.GetName())
	}
	all := strings.Join(names, ",")
	if !strings.Contains(all, "shockwave_connections_total") {
		t.Errorf("metric families = %v, want shockwave_connections_total", names)
	}
	if !strings.Contains(all, "shockwave_active_connections") {
		t.Errorf("metric families = %v, want shockwave_active_connections", names)
	}

	if err := testutil.GatherAndCompare(registry, strings.NewReader(`
# HELP shockwave_active_connections Number of currently active connections.
# TYPE shockwave_active_connections gauge
shockwave_active_connections 2
`), "shockwave_active_connections"); err != nil {
		t.Errorf("unexpected metric value: %v", err)
	}
}
