// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

// Package httpapi serves the scan engine's control plane: POST /v1/scan
// and POST /v1/check-query over plain JSON (spec.md §4.4, §6.4). The
// teacher's gRPC control server used protoc-generated stubs this
// module never regenerates (DESIGN.md); the server lifecycle shape —
// a net.Listener held across Start/Stop, graceful http.Server.Shutdown,
// an atomic running flag — is carried over from
// internal/observability/server.go unchanged.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/scanquery/scanquery/internal/kvengine"
	"github.com/scanquery/scanquery/internal/observability"
)

// Server hosts the scan control plane.
type Server struct {
	addr            string
	instance        *kvengine.Instance
	metrics         *observability.Metrics
	defaultMaxCount int
	listener        net.Listener
	httpServer      *http.Server
	running         atomic.Bool
}

// NewServer creates a control-plane server over instance. metrics may
// be nil, in which case scans are not observed. defaultMaxCount is
// substituted for a scan request's max_count when the request omits
// it (zero or negative).
func NewServer(addr string, instance *kvengine.Instance, metrics *observability.Metrics, defaultMaxCount int) *Server {
	return &Server{addr: addr, instance: instance, metrics: metrics, defaultMaxCount: defaultMaxCount}
}

// Start begins serving the control plane.
func (s *Server) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("httpapi server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/scan", s.handleScan)
	mux.HandleFunc("/v1/check-query", s.handleCheckQuery)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if serveErr := s.httpServer.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			slog.Error("httpapi server error", "error", serveErr)
		}
	}()

	slog.Info("httpapi server started", "addr", listener.Addr().String())
	return nil
}

// Stop gracefully shuts down the control plane server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.Load() {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown httpapi server: %w", err)
		}
	}

	s.running.Store(false)
	slog.Info("httpapi server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
