// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ManuGH/ionoview/internal/api"
	"github.com/ManuGH/ionoview/internal/config"
	"github.com/ManuGH/ionoview/internal/daemon"
	"github.com/ManuGH/ionoview/internal/health"
	"github.com/ManuGH/ionoview/internal/log"
	"github.com/ManuGH/ionoview/internal/telemetry"
	"github.com/ManuGH/ionoview/internal/version"
)

const serviceName = "ionoview"

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.configPath)
		},
	}
}

func runServe(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Safe defaults until the config is loaded.
	log.Configure(log.Config{Level: "info", Service: serviceName, Version: version.Version})
	logger := log.WithComponent("daemon")

	loader := config.NewLoader(configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "config.load_failed").Str("config_path", configPath).Msg("failed to load configuration")
		return fmt.Errorf("load config: %w", err)
	}

	log.Configure(log.Config{Level: cfg.LogLevel, Service: serviceName, Version: cfg.Version})
	logger = log.WithComponent("daemon")

	if configPath != "" {
		logger.Info().Str(log.FieldEvent, "config.loaded").Str(log.FieldSource, "file").Str(log.FieldPath, configPath).Msg("loaded configuration from file")
	} else {
		logger.Info().Str(log.FieldEvent, "config.loaded").Str(log.FieldSource, "env+defaults").Msg("loaded configuration from environment and defaults")
	}

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "startup.check_failed").Msg("startup checks failed")
		return err
	}

	tp, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:      cfg.Telemetry.Enabled,
		Exporter:     cfg.Telemetry.Exporter,
		Endpoint:     cfg.Telemetry.Endpoint,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Version:      cfg.Version,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	holder := config.NewHolder(cfg, loader)
	srv, err := api.New(holder)
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}

	logger.Info().
		Str(log.FieldDataDir, cfg.DataDir).
		Str("layout", cfg.Layout).
		Str("listen", cfg.APIListenAddr).
		Str("metrics_listen", cfg.MetricsListenAddr).
		Bool("badge", cfg.Badge.Enabled).
		Msg("starting ionoview")

	mgr, err := daemon.NewManager(config.ParseServerConfigForApp(cfg), daemon.Deps{
		Logger:         logger,
		APIHandler:     srv.Handler(),
		MetricsHandler: promhttp.Handler(),
		MetricsAddr:    cfg.MetricsListenAddr,
	})
	if err != nil {
		return fmt.Errorf("create daemon manager: %w", err)
	}
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)

	if err := daemon.NewApp(logger, mgr, holder).Run(ctx); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "manager.failed").Msg("daemon app failed")
		return err
	}
	logger.Info().Msg("server exiting")
	return nil
}
