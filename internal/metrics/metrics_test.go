package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Launch("generate_stream")
	m.Launch("generate_stream")
	m.Refill("mt19937")
	m.Copied("mt19937", "uint32", 1000)
	m.Copied("mt19937", "uint32", 0)
	m.AllocRetry()
	m.Build("mt19937", 20*time.Millisecond)
	m.StreamOpened()
	m.StreamOpened()
	m.StreamClosed()

	if got := testutil.ToFloat64(m.launches.WithLabelValues("generate_stream")); got != 2 {
		t.Fatalf("launches: got %v", got)
	}
	if got := testutil.ToFloat64(m.elements.WithLabelValues("mt19937", "uint32")); got != 1000 {
		t.Fatalf("elements: got %v", got)
	}
	if got := testutil.ToFloat64(m.allocRetries); got != 1 {
		t.Fatalf("alloc retries: got %v", got)
	}
	if got := testutil.ToFloat64(m.openStreams); got != 1 {
		t.Fatalf("open streams: got %v", got)
	}
	if n, err := testutil.GatherAndCount(reg, "clprng_program_build_seconds"); err != nil || n != 1 {
		t.Fatalf("build histogram: n=%d err=%v", n, err)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.Launch("seed_prng")
	m.Refill("x")
	m.Copied("x", "uint32", 1)
	m.AllocRetry()
	m.Build("x", time.Second)
	m.StreamOpened()
	m.StreamClosed()
}
