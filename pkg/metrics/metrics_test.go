// Unit tests for Prometheus metrics implementation
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gcode-inspect/pkg/gcode"
)

// TestCounterBasic tests basic counter operations
func TestCounterBasic(t *testing.T) {
	c := NewCounter("test_counter", "A test counter")

	if v := c.Get(nil); v != 0 {
		t.Errorf("expected initial value 0, got %d", v)
	}

	c.Inc(nil)
	if v := c.Get(nil); v != 1 {
		t.Errorf("expected value 1 after Inc, got %d", v)
	}

	c.Add(nil, 10)
	if v := c.Get(nil); v != 11 {
		t.Errorf("expected value 11 after Add(10), got %d", v)
	}

	if c.Name() != "test_counter" || c.Help() != "A test counter" || c.Type() != TypeCounter {
		t.Errorf("unexpected metadata %q %q %v", c.Name(), c.Help(), c.Type())
	}
}

// TestCounterWithLabels tests counter with labels
func TestCounterWithLabels(t *testing.T) {
	c := NewCounter("analyses_total", "Total analyses")

	ok := Labels{"status": "ok"}
	failed := Labels{"status": "error"}

	c.Inc(ok)
	c.Inc(ok)
	c.Inc(failed)

	if v := c.Get(ok); v != 2 {
		t.Errorf("expected ok count 2, got %d", v)
	}
	if v := c.Get(failed); v != 1 {
		t.Errorf("expected error count 1, got %d", v)
	}
	if v := c.Get(Labels{"status": "other"}); v != 0 {
		t.Errorf("expected unseen label count 0, got %d", v)
	}
}

// TestCounterConcurrency tests counter thread safety
func TestCounterConcurrency(t *testing.T) {
	c := NewCounter("concurrent_counter", "Test concurrent access")
	var wg sync.WaitGroup

	numGoroutines := 50
	incsPerGoroutine := 1000

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < incsPerGoroutine; j++ {
				c.Inc(Labels{"route": "/api/analyze"})
			}
		}()
	}
	wg.Wait()

	expected := uint64(numGoroutines * incsPerGoroutine)
	if v := c.Get(Labels{"route": "/api/analyze"}); v != expected {
		t.Errorf("expected %d, got %d", expected, v)
	}
}

// TestGaugeBasic tests basic gauge operations
func TestGaugeBasic(t *testing.T) {
	g := NewGauge("test_gauge", "A test gauge")

	if v := g.Get(nil); v != 0 {
		t.Errorf("expected initial value 0, got %f", v)
	}
	g.Set(nil, 5.057)
	if v := g.Get(nil); v != 5.057 {
		t.Errorf("expected 5.057, got %f", v)
	}
	g.Add(nil, -1)
	if v := g.Get(nil); math.Abs(v-4.057) > 1e-9 {
		t.Errorf("expected 4.057, got %f", v)
	}
}

// TestHistogramBasic tests histogram observations and cumulative buckets
func TestHistogramBasic(t *testing.T) {
	h := NewHistogram("test_histogram", "A test histogram", []float64{1.0, 0.1, 0.5})
	for _, v := range []float64{0.05, 0.3, 0.8, 2.0} {
		h.Observe(nil, v)
	}

	snap := h.GetSnapshot(nil)
	if snap.Count != 4 {
		t.Errorf("expected count 4, got %d", snap.Count)
	}
	if math.Abs(snap.Sum-3.15) > 1e-9 {
		t.Errorf("expected sum 3.15, got %f", snap.Sum)
	}
	want := map[float64]uint64{0.1: 1, 0.5: 2, 1.0: 3}
	for bound, n := range want {
		if snap.Buckets[bound] != n {
			t.Errorf("bucket %v: expected %d, got %d", bound, n, snap.Buckets[bound])
		}
	}

	if empty := h.GetSnapshot(Labels{"x": "y"}); empty.Count != 0 {
		t.Errorf("expected empty snapshot, got %+v", empty)
	}
}

// TestHistogramTimer tests the timer helper
func TestHistogramTimer(t *testing.T) {
	h := NewHistogram("test_timer", "Timer", DefaultBuckets())
	done := h.Timer(nil)
	time.Sleep(time.Millisecond)
	done()

	snap := h.GetSnapshot(nil)
	if snap.Count != 1 || snap.Sum <= 0 {
		t.Errorf("expected one positive observation, got %+v", snap)
	}
}

// TestRegistryBasic tests registration
func TestRegistryBasic(t *testing.T) {
	r := NewRegistry()
	c := NewCounter("my_counter", "My counter")

	if err := r.Register(c); err != nil {
		t.Fatalf("failed to register counter: %v", err)
	}
	if r.Get("my_counter") != c {
		t.Error("registry returned a different metric")
	}
	if err := r.Register(NewGauge("my_counter", "dup")); err == nil {
		t.Error("expected error on duplicate registration")
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unknown metric")
	}
}

// TestRegistryGather tests Prometheus format output
func TestRegistryGather(t *testing.T) {
	r := NewRegistry()

	c := NewCounter("test_requests_total", "Total requests")
	c.Add(Labels{"route": "/health"}, 100)
	c.Add(Labels{"route": "/metrics"}, 50)
	r.MustRegister(c)

	g := NewGauge("test_height", "Current height")
	g.Set(nil, 25.5)
	r.MustRegister(g)

	output := r.Gather()

	for _, want := range []string{
		"# HELP test_requests_total Total requests",
		"# TYPE test_requests_total counter",
		`test_requests_total{route="/health"} 100`,
		`test_requests_total{route="/metrics"} 50`,
		"# TYPE test_height gauge",
		"test_height 25.5",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in output:\n%s", want, output)
		}
	}

	if strings.Index(output, "test_requests_total") > strings.Index(output, "test_height") {
		t.Error("metrics should be written in registration order")
	}
}

// TestHistogramGather tests histogram Prometheus format output
func TestHistogramGather(t *testing.T) {
	r := NewRegistry()

	h := NewHistogram("test_duration_seconds", "Request duration", []float64{0.1, 0.5, 1.0})
	h.Observe(nil, 0.05)
	h.Observe(nil, 0.3)
	h.Observe(nil, 0.8)
	h.Observe(nil, 2.0)
	r.MustRegister(h)

	output := r.Gather()

	for _, want := range []string{
		"# TYPE test_duration_seconds histogram",
		`test_duration_seconds_bucket{le="0.1"} 1`,
		`test_duration_seconds_bucket{le="0.5"} 2`,
		`test_duration_seconds_bucket{le="1"} 3`,
		`test_duration_seconds_bucket{le="+Inf"} 4`,
		"test_duration_seconds_count 4",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in output:\n%s", want, output)
		}
	}
}

// TestNilLabels tests that nil and empty labels are the same series
func TestNilLabels(t *testing.T) {
	c := NewCounter("test_nil", "Nil labels")
	c.Inc(nil)
	c.Inc(Labels{})
	if v := c.Get(nil); v != 2 {
		t.Errorf("expected 2, got %d", v)
	}
}

// TestSpecialCharacterEscaping tests label value escaping
func TestSpecialCharacterEscaping(t *testing.T) {
	g := NewGauge("test_escape", "Test escaping")
	g.Set(Labels{"path": `C:\gcode`}, 1)
	g.Set(Labels{"quote": `say "hi"`}, 2)

	var sb strings.Builder
	g.Write(&sb)
	output := sb.String()

	if !strings.Contains(output, `path="C:\\gcode"`) {
		t.Errorf("backslash not escaped:\n%s", output)
	}
	if !strings.Contains(output, `quote="say \"hi\""`) {
		t.Errorf("quote not escaped:\n%s", output)
	}
}

// TestRegistryHandler tests the HTTP exposition handler
func TestRegistryHandler(t *testing.T) {
	r := NewRegistry()
	c := NewCounter("served_total", "Served")
	c.Inc(nil)
	r.MustRegister(c)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "served_total 1") {
		t.Errorf("unexpected body:\n%s", body)
	}
}

// TestAnalysisMetricsObserve tests recording an analysis run
func TestAnalysisMetricsObserve(t *testing.T) {
	am := NewAnalysisMetrics()
	a := gcode.FromString("T1\nG1 Z1\nG0 X1 Z0\n")

	am.Observe(a, 20*time.Millisecond)
	am.ObserveFailure()
	am.RecordRequest("/api/analyze", "200")

	if v := am.Lines.Get(nil); v != 3 {
		t.Errorf("expected 3 lines, got %d", v)
	}
	if v := am.ToolChanges.Get(nil); v != 1 {
		t.Errorf("expected 1 tool change, got %d", v)
	}
	if v := am.Retractions.Get(nil); v != 1 {
		t.Errorf("expected 1 retraction, got %d", v)
	}
	if v := am.PrimaryHeight.Get(nil); v != 1 {
		t.Errorf("expected primary height 1, got %f", v)
	}
	if v := am.Analyses.Get(Labels{"status": StatusOK}); v != 1 {
		t.Errorf("expected 1 ok analysis, got %d", v)
	}
	if v := am.Analyses.Get(Labels{"status": StatusError}); v != 1 {
		t.Errorf("expected 1 failed analysis, got %d", v)
	}

	output := am.Gather()
	for _, want := range []string{
		"gcode_lines_total 3",
		`gcode_analyses_total{status="ok"} 1`,
		"gcode_analysis_seconds_count 1",
		`gcode_http_requests_total{code="200",route="/api/analyze"} 1`,
		"gcode_go_goroutines",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in output:\n%s", want, output)
		}
	}
}

// BenchmarkCounterIncWithLabels benchmarks counter increment with labels
func BenchmarkCounterIncWithLabels(b *testing.B) {
	c := NewCounter("bench_counter", "Benchmark counter")
	labels := Labels{"route": "/api/analyze", "code": "200"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Inc(labels)
	}
}

// BenchmarkHistogramObserve benchmarks histogram observe
func BenchmarkHistogramObserve(b *testing.B) {
	h := NewHistogram("bench_histogram", "Benchmark histogram", DefaultBuckets())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Observe(nil, float64(i%10)/10.0)
	}
}
