// Metrics collection for gcode-inspect
//
// Prometheus-compatible counters, gauges and histograms rendered in the
// Prometheus text exposition format.
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MetricType represents the type of metric
type MetricType int

const (
	TypeCounter MetricType = iota
	TypeGauge
	TypeHistogram
)

func (t MetricType) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	case TypeHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// Labels represents metric labels as key-value pairs
type Labels map[string]string

func sortedKeys(labels Labels) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// labelKey generates a unique key for a label set
func labelKey(labels Labels) string {
	var sb strings.Builder
	for i, k := range sortedKeys(labels) {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(labels[k])
	}
	return sb.String()
}

// formatLabels formats labels for Prometheus output
func formatLabels(labels Labels) string {
	if len(labels) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range sortedKeys(labels) {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s=\"%s\"", k, escapeLabel(labels[k]))
	}
	sb.WriteByte('}')
	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return strings.ReplaceAll(s, "\n", "\\n")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func withLabel(labels Labels, key, value string) Labels {
	out := make(Labels, len(labels)+1)
	for k, v := range labels {
		out[k] = v
	}
	out[key] = value
	return out
}

// Metric is the interface for all metric types
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	Write(sb *strings.Builder)
}

func writeHeader(sb *strings.Builder, m Metric) {
	fmt.Fprintf(sb, "# HELP %s %s\n# TYPE %s %s\n", m.Name(), m.Help(), m.Name(), m.Type())
}

func writeSample(sb *strings.Builder, name string, labels Labels, value string) {
	sb.WriteString(name)
	sb.WriteString(formatLabels(labels))
	sb.WriteByte(' ')
	sb.WriteString(value)
	sb.WriteByte('\n')
}

// series keeps per-label-set values in first-seen order so output is stable.
type series[T any] struct {
	mu    sync.Mutex
	index map[string]int
	items []*T
	make  func(Labels) *T
}

func (s *series[T]) get(labels Labels) *T {
	key := labelKey(labels)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[key]; ok {
		return s.items[i]
	}
	v := s.make(labels)
	s.index[key] = len(s.items)
	s.items = append(s.items, v)
	return v
}

func (s *series[T]) lookup(labels Labels) (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[labelKey(labels)]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

func (s *series[T]) each(fn func(*T)) {
	s.mu.Lock()
	items := append([]*T(nil), s.items...)
	s.mu.Unlock()
	for _, v := range items {
		fn(v)
	}
}

// Counter is a monotonically increasing metric
type Counter struct {
	name, help string
	values     series[counterValue]
}

type counterValue struct {
	labels Labels
	value  uint64
}

// NewCounter creates a new counter metric
func NewCounter(name, help string) *Counter {
	c := &Counter{name: name, help: help}
	c.values.make = func(l Labels) *counterValue { return &counterValue{labels: l} }
	return c
}

func (c *Counter) Name() string     { return c.name }
func (c *Counter) Help() string     { return c.help }
func (c *Counter) Type() MetricType { return TypeCounter }

// Inc increments the counter by 1
func (c *Counter) Inc(labels Labels) { c.Add(labels, 1) }

// Add increments the counter by delta
func (c *Counter) Add(labels Labels, delta uint64) {
	atomic.AddUint64(&c.values.get(labels).value, delta)
}

// Get returns the current counter value for labels
func (c *Counter) Get(labels Labels) uint64 {
	if cv, ok := c.values.lookup(labels); ok {
		return atomic.LoadUint64(&cv.value)
	}
	return 0
}

func (c *Counter) Write(sb *strings.Builder) {
	writeHeader(sb, c)
	c.values.each(func(cv *counterValue) {
		writeSample(sb, c.name, cv.labels, strconv.FormatUint(atomic.LoadUint64(&cv.value), 10))
	})
}

// Gauge is a metric that can go up and down
type Gauge struct {
	name, help string
	values     series[gaugeValue]
}

type gaugeValue struct {
	mu     sync.Mutex
	labels Labels
	value  float64
}

// NewGauge creates a new gauge metric
func NewGauge(name, help string) *Gauge {
	g := &Gauge{name: name, help: help}
	g.values.make = func(l Labels) *gaugeValue { return &gaugeValue{labels: l} }
	return g
}

func (g *Gauge) Name() string     { return g.name }
func (g *Gauge) Help() string     { return g.help }
func (g *Gauge) Type() MetricType { return TypeGauge }

// Set sets the gauge to value
func (g *Gauge) Set(labels Labels, value float64) {
	gv := g.values.get(labels)
	gv.mu.Lock()
	gv.value = value
	gv.mu.Unlock()
}

// Add adds delta to the gauge
func (g *Gauge) Add(labels Labels, delta float64) {
	gv := g.values.get(labels)
	gv.mu.Lock()
	gv.value += delta
	gv.mu.Unlock()
}

// Get returns the current gauge value for labels
func (g *Gauge) Get(labels Labels) float64 {
	gv, ok := g.values.lookup(labels)
	if !ok {
		return 0
	}
	gv.mu.Lock()
	defer gv.mu.Unlock()
	return gv.value
}

func (g *Gauge) Write(sb *strings.Builder) {
	writeHeader(sb, g)
	g.values.each(func(gv *gaugeValue) {
		gv.mu.Lock()
		v := gv.value
		gv.mu.Unlock()
		writeSample(sb, g.name, gv.labels, formatFloat(v))
	})
}

// Histogram tracks the distribution of observations
type Histogram struct {
	name, help string
	buckets    []float64
	values     series[histogramValue]
}

type histogramValue struct {
	mu      sync.Mutex
	labels  Labels
	count   uint64
	sum     float64
	buckets []uint64 // non-cumulative
}

// NewHistogram creates a new histogram metric with the given upper bounds
func NewHistogram(name, help string, buckets []float64) *Histogram {
	sorted := append([]float64(nil), buckets...)
	sort.Float64s(sorted)
	h := &Histogram{name: name, help: help, buckets: sorted}
	h.values.make = func(l Labels) *histogramValue {
		return &histogramValue{labels: l, buckets: make([]uint64, len(sorted))}
	}
	return h
}

// DefaultBuckets returns default histogram buckets for latency metrics
func DefaultBuckets() []float64 {
	return []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5}
}

func (h *Histogram) Name() string     { return h.name }
func (h *Histogram) Help() string     { return h.help }
func (h *Histogram) Type() MetricType { return TypeHistogram }

// Observe records a value in the histogram
func (h *Histogram) Observe(labels Labels, value float64) {
	hv := h.values.get(labels)
	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.count++
	hv.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			hv.buckets[i]++
			break
		}
	}
}

// Timer returns a function that records the elapsed time when called
func (h *Histogram) Timer(labels Labels) func() {
	start := time.Now()
	return func() { h.Observe(labels, time.Since(start).Seconds()) }
}

// HistogramSnapshot is a point-in-time copy with cumulative bucket counts
type HistogramSnapshot struct {
	Count   uint64
	Sum     float64
	Buckets map[float64]uint64
}

// GetSnapshot returns a snapshot of histogram values for labels
func (h *Histogram) GetSnapshot(labels Labels) HistogramSnapshot {
	snap := HistogramSnapshot{Buckets: make(map[float64]uint64, len(h.buckets))}
	hv, ok := h.values.lookup(labels)
	if !ok {
		return snap
	}
	hv.mu.Lock()
	defer hv.mu.Unlock()
	snap.Count, snap.Sum = hv.count, hv.sum
	var cumulative uint64
	for i, bound := range h.buckets {
		cumulative += hv.buckets[i]
		snap.Buckets[bound] = cumulative
	}
	return snap
}

func (h *Histogram) Write(sb *strings.Builder) {
	writeHeader(sb, h)
	h.values.each(func(hv *histogramValue) {
		hv.mu.Lock()
		count, sum := hv.count, hv.sum
		counts := append([]uint64(nil), hv.buckets...)
		hv.mu.Unlock()

		var cumulative uint64
		for i, bound := range h.buckets {
			cumulative += counts[i]
			writeSample(sb, h.name+"_bucket", withLabel(hv.labels, "le", formatFloat(bound)), strconv.FormatUint(cumulative, 10))
		}
		writeSample(sb, h.name+"_bucket", withLabel(hv.labels, "le", "+Inf"), strconv.FormatUint(count, 10))
		writeSample(sb, h.name+"_sum", hv.labels, formatFloat(sum))
		writeSample(sb, h.name+"_count", hv.labels, strconv.FormatUint(count, 10))
	})
}

// Registry holds metrics in registration order
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
	order   []string
}

// NewRegistry creates a new metrics registry
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]Metric)}
}

// Register adds a metric to the registry
func (r *Registry) Register(metric Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := metric.Name()
	if _, exists := r.metrics[name]; exists {
		return fmt.Errorf("metric %q already registered", name)
	}
	r.metrics[name] = metric
	r.order = append(r.order, name)
	return nil
}

// MustRegister adds a metric and panics on error
func (r *Registry) MustRegister(metric Metric) {
	if err := r.Register(metric); err != nil {
		panic(err)
	}
}

// Get returns a metric by name
func (r *Registry) Get(name string) Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics[name]
}

// Gather renders all metrics in Prometheus text format
func (r *Registry) Gather() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sb strings.Builder
	for _, name := range r.order {
		r.metrics[name].Write(&sb)
	}
	return sb.String()
}

// Handler serves Gather output.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(r.Gather()))
	})
}
