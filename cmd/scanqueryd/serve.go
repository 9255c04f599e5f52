// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/scanquery/scanquery/internal/config"
	"github.com/scanquery/scanquery/internal/httpapi"
	"github.com/scanquery/scanquery/internal/kvengine"
	"github.com/scanquery/scanquery/internal/logging"
	"github.com/scanquery/scanquery/internal/observability"
	"github.com/scanquery/scanquery/internal/xdg"
)

// newServeCmd creates the serve subcommand with all flags configured.
func newServeCmd() *cobra.Command {
	var flagDataDir, flagSecondaryDir, flagListenAddr, flagMetricsAddr, flagLogFormat string
	var flagMaxCount int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve range scans over the control-plane HTTP API",
		Long: `Start the scanqueryd server, which opens the embedded key-value
store and serves POST /v1/scan and POST /v1/check-query over HTTP.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(resolveConfigFile(configFile), cmd.Flags())
			if err != nil {
				return oops.Code("CONFIG_INVALID").With("operation", "load configuration").Wrap(err)
			}
			return runServeWithDeps(cmd.Context(), cfg, cmd, nil)
		},
	}

	cmd.Flags().StringVar(&flagDataDir, "data_dir", "", "path to the primary data directory (required)")
	cmd.Flags().StringVar(&flagSecondaryDir, "secondary_dir", "", "scratch directory for secondary-mode opens")
	cmd.Flags().StringVar(&flagListenAddr, "listen_addr", config.DefaultListenAddr, "control-plane HTTP listen address")
	cmd.Flags().StringVar(&flagMetricsAddr, "metrics_addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().StringVar(&flagLogFormat, "log_format", config.DefaultLogFormat, "log format (json or text)")
	cmd.Flags().IntVar(&flagMaxCount, "default_max_count", config.DefaultMaxCount, "default page size when a scan request omits max_count")

	return cmd
}

// resolveConfigFile returns explicit, if set, otherwise the XDG config
// path for scanqueryd.yaml if one exists there, otherwise "" (defaults
// and flags alone).
func resolveConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	configDir, err := xdg.ConfigDir()
	if err != nil {
		return ""
	}
	candidate := filepath.Join(configDir, "scanqueryd.yaml")
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}

// runServeWithDeps starts the server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cfg *config.ServeConfig, cmd *cobra.Command, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.InstanceOpener == nil {
		deps.InstanceOpener = kvengine.Open
	}
	if deps.HTTPServerFactory == nil {
		deps.HTTPServerFactory = func(addr string, instance *kvengine.Instance, metrics *observability.Metrics, defaultMaxCount int) HTTPServer {
			return httpapi.NewServer(addr, instance, metrics, defaultMaxCount)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}

	if err := cfg.Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "validate configuration").Wrap(err)
	}

	logging.SetDefault("scanqueryd", version, cfg.LogFormat)

	mode := kvengine.ModeReadOnly
	if cfg.SecondaryDir != "" {
		mode = kvengine.ModeSecondary
	}

	instance, err := deps.InstanceOpener(ctx, kvengine.Config{
		Dir:                cfg.DataDir,
		Mode:               mode,
		SecondaryDir:       cfg.SecondaryDir,
		OpenRetryAttempts:  cfg.OpenRetryAttempts,
		OpenRetryBaseDelay: cfg.OpenRetryBaseDelay,
	})
	if err != nil {
		return oops.Code("STORE_OPEN_FAILED").With("operation", "open data directory").With("data_dir", cfg.DataDir).Wrap(err)
	}
	defer func() {
		if closeErr := instance.Close(); closeErr != nil {
			cmd.PrintErrf("error closing store: %v\n", closeErr)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obsServer ObservabilityServer
	var metrics *observability.Metrics
	if cfg.MetricsAddr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.MetricsAddr, func() bool { return true })
		metrics = obsServer.Metrics()
		if startErr := obsServer.Start(); startErr != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").With("operation", "start observability server").With("addr", cfg.MetricsAddr).Wrap(startErr)
		}
		cmd.Println("observability server started on", obsServer.Addr())
	}

	httpServer := deps.HTTPServerFactory(cfg.ListenAddr, instance, metrics, cfg.DefaultMaxCount)
	if err := httpServer.Start(); err != nil {
		if obsServer != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = obsServer.Stop(shutdownCtx)
			shutdownCancel()
		}
		return oops.Code("HTTPAPI_START_FAILED").With("operation", "start control-plane server").With("addr", cfg.ListenAddr).Wrap(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("scanqueryd ready on", httpServer.Addr())

	select {
	case <-sigChan:
		cmd.Println("received shutdown signal")
	case <-ctx.Done():
		cmd.Println("context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		cmd.PrintErrf("error stopping control-plane server: %v\n", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			cmd.PrintErrf("error stopping observability server: %v\n", err)
		}
	}

	cmd.Println("shutdown complete")
	return nil
}
