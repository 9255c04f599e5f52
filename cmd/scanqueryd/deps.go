// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package main

import (
	"context"

	"github.com/scanquery/scanquery/internal/kvengine"
	"github.com/scanquery/scanquery/internal/observability"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values use their default implementations.
type ServeDeps struct {
	// InstanceOpener opens the scan engine's backing store.
	// Default: kvengine.Open
	InstanceOpener func(ctx context.Context, cfg kvengine.Config) (*kvengine.Instance, error)

	// HTTPServerFactory creates the control-plane HTTP server.
	// Default: httpapi.NewServer
	HTTPServerFactory func(addr string, instance *kvengine.Instance, metrics *observability.Metrics, defaultMaxCount int) HTTPServer

	// ObservabilityServerFactory creates the metrics/health server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// HTTPServer is the minimal interface used from httpapi.Server.
type HTTPServer interface {
	Start() error
	Stop(ctx context.Context) error
	Addr() string
}

// ObservabilityServer is the minimal interface used from observability.Server.
type ObservabilityServer interface {
	Start() error
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}
