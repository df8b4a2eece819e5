// Analysis metrics definitions
//
// Copyright (C) 2026 Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	goruntime "runtime"
	"time"

	"gcode-inspect/pkg/gcode"
)

// Status label values for gcode_analyses_total.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// AnalysisMetrics holds the counters updated after each analysis run.
type AnalysisMetrics struct {
	Lines          *Counter
	ToolChanges    *Counter
	Retractions    *Counter
	Analyses       *Counter
	AnalysisTime   *Histogram
	PrimaryHeight  *Gauge
	HTTPRequests   *Counter
	GoGoroutines   *Gauge
	GoMemoryHeap   *Gauge

	registry *Registry
}

// NewAnalysisMetrics creates and registers all analysis metrics
func NewAnalysisMetrics() *AnalysisMetrics {
	am := &AnalysisMetrics{registry: NewRegistry()}

	am.Lines = NewCounter("gcode_lines_total",
		"Total source lines analyzed")
	am.ToolChanges = NewCounter("gcode_tool_changes_total",
		"Total tool changes detected")
	am.Retractions = NewCounter("gcode_retractions_total",
		"Total grouped retractions detected")
	am.Analyses = NewCounter("gcode_analyses_total",
		"Total analysis runs by status")
	am.AnalysisTime = NewHistogram("gcode_analysis_seconds",
		"Time spent analyzing a program", DefaultBuckets())
	am.PrimaryHeight = NewGauge("gcode_last_primary_height",
		"Primary retraction height of the most recent analysis")
	am.HTTPRequests = NewCounter("gcode_http_requests_total",
		"HTTP requests by route and status code")
	am.GoGoroutines = NewGauge("gcode_go_goroutines",
		"Number of active goroutines")
	am.GoMemoryHeap = NewGauge("gcode_go_memory_heap_bytes",
		"Go heap memory in use")

	for _, m := range []Metric{
		am.Lines, am.ToolChanges, am.Retractions, am.Analyses,
		am.AnalysisTime, am.PrimaryHeight, am.HTTPRequests,
		am.GoGoroutines, am.GoMemoryHeap,
	} {
		am.registry.MustRegister(m)
	}
	return am
}

// Observe records a successful analysis. a is parsed if it has not been.
func (am *AnalysisMetrics) Observe(a *gcode.Analyzer, elapsed time.Duration) {
	if !a.Parsed() {
		a.Parse()
	}
	am.Lines.Add(nil, uint64(len(a.Lines())))
	am.ToolChanges.Add(nil, uint64(len(a.ToolChanges())))
	am.Retractions.Add(nil, uint64(len(a.Retractions())))
	am.Analyses.Inc(Labels{"status": StatusOK})
	am.AnalysisTime.Observe(nil, elapsed.Seconds())

	if primary, ok := a.PrimaryHeight(); ok {
		am.PrimaryHeight.Set(nil, primary.Height)
	}
}

// ObserveFailure records an analysis that could not read its input.
func (am *AnalysisMetrics) ObserveFailure() {
	am.Analyses.Inc(Labels{"status": StatusError})
}

// RecordRequest counts one HTTP request.
func (am *AnalysisMetrics) RecordRequest(route, code string) {
	am.HTTPRequests.Inc(Labels{"route": route, "code": code})
}

// UpdateSystemMetrics updates Go runtime metrics
func (am *AnalysisMetrics) UpdateSystemMetrics() {
	var m goruntime.MemStats
	goruntime.ReadMemStats(&m)
	am.GoGoroutines.Set(nil, float64(goruntime.NumGoroutine()))
	am.GoMemoryHeap.Set(nil, float64(m.HeapAlloc))
}

// Gather returns all metrics in Prometheus text format
func (am *AnalysisMetrics) Gather() string {
	am.UpdateSystemMetrics()
	return am.registry.Gather()
}

// Registry returns the internal registry
func (am *AnalysisMetrics) Registry() *Registry {
	return am.registry
}
