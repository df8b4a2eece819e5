package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"gcode-inspect/pkg/errors"
	"gcode-inspect/pkg/export"
	"gcode-inspect/pkg/gcode"
)

const defaultSourceName = "request"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.Write([]byte(s.metrics.Gather()))
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	a, name, ok := s.analyze(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, export.NewReport(name, a, false))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	a, _, ok := s.analyze(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, a.Summarize())
}

func (s *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	a, _, ok := s.analyze(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, export.NewGeometry(a))
}

// analyze reads the request body as a program and parses it. On failure the
// error response has already been written.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) (*gcode.Analyzer, string, bool) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = defaultSourceName
	}
	cfg := s.settings()
	r.Body = http.MaxBytesReader(w, r.Body, cfg.Server.MaxBodyBytes)

	start := time.Now()
	opts := append(cfg.AnalysisOptions(), gcode.WithLogger(s.log.WithPrefix("gcode")))
	a, err := gcode.FromReader(r.Body, name, opts...)
	if err != nil {
		s.metrics.ObserveFailure()
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			jsonError(w, fmt.Sprintf("body exceeds max size (%d bytes)", cfg.Server.MaxBodyBytes), http.StatusRequestEntityTooLarge)
		case errors.Is(err, errors.ErrSourceTooLong):
			jsonError(w, err.Error(), http.StatusBadRequest)
		default:
			jsonError(w, "failed to read body", http.StatusBadRequest)
		}
		return nil, "", false
	}
	a.Parse()
	s.metrics.Observe(a, time.Since(start))
	return a, name, true
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("write response")
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
