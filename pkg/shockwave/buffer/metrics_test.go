package buffer

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestStatsCollectorRegistersExpectedMetrics(t *testing.T) {
	b := New()
	b.Append([]byte("hi"))
	b.Release()

	registry := prometheus.NewRegistry()
	registry.MustRegister(NewStatsCollector())

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	want := map[string]bool{
		"shockwave_buffer_pool_acquires_total": false,
		"shockwave_buffer_pool_releases_total": false,
		"shockwave_buffer_pool_discards_total": false,
	}
	for _, mf := range families {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing metric family %q", name)
		}
	}
}
