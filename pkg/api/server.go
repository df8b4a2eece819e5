// Package api serves G-code analysis over HTTP.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"gcode-inspect/pkg/config"
	"gcode-inspect/pkg/log"
	"gcode-inspect/pkg/metrics"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	log     *log.Logger
	metrics *metrics.AnalysisMetrics

	mu      sync.Mutex
	cfg     config.Config
	running bool
}

// NewServer creates and configures the HTTP server. A nil logger discards
// output; nil metrics get a fresh set.
func NewServer(cfg config.Config, logger *log.Logger, am *metrics.AnalysisMetrics) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	if am == nil {
		am = metrics.NewAnalysisMetrics()
	}
	s := &Server{cfg: cfg, log: logger, metrics: am}
	s.setupRoutes()
	return s
}

// UpdateConfig swaps the settings used by requests that start afterwards.
// The listen address is only read when serving starts.
func (s *Server) UpdateConfig(cfg config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

func (s *Server) settings() config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log, s.metrics))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", http.HandlerFunc(s.handleMetrics))

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/summary", s.handleSummary)
		r.Post("/geometry", s.handleGeometry)
	})

	s.router = r
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := s.settings().Server.Addr
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()

	s.log.WithField("addr", ln.Addr().String()).Info("listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.setStopped()
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.setStopped()
	<-errCh
	return err
}

func (s *Server) setStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
