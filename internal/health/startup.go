// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"

	"github.com/ManuGH/ionoview/internal/badge"
	"github.com/ManuGH/ionoview/internal/catalog"
	"github.com/ManuGH/ionoview/internal/config"
	"github.com/ManuGH/ionoview/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks inspects the environment before the server starts.
// A missing media directory or badge only produces warnings: the page reports
// an unavailable catalog per request and recovers once files appear.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := checkConfig(cfg); err != nil {
		return err
	}
	checkDataDir(ctx, logger, cfg.DataDir)
	if cfg.Badge.Enabled {
		checkBadge(logger, cfg.Badge.Path)
	}

	logger.Info().Msg("startup checks finished")
	return nil
}

func checkConfig(cfg config.AppConfig) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

func checkDataDir(ctx context.Context, logger zerolog.Logger, dir string) {
	entries, err := catalog.NewLoader(dir, nil).Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Str(log.FieldDataDir, dir).Msg("media directory is not readable yet")
		return
	}
	if len(entries) == 0 {
		logger.Warn().Str(log.FieldDataDir, dir).Msg("media directory contains no TEC_<SOURCE>_<STATE>.gif files")
		return
	}
	logger.Info().Str(log.FieldDataDir, dir).Int(log.FieldEntries, len(entries)).Msg("media directory is readable")
}

func checkBadge(logger zerolog.Logger, path string) {
	v, err := badge.NewStore(path).Get(badge.Large)
	if err != nil {
		logger.Warn().Err(err).Str(log.FieldFile, path).Msg("badge image not usable, overlay will be hidden")
		return
	}
	logger.Info().Str(log.FieldFile, path).Int("width", v.Width).Int("height", v.Height).Msg("badge image ready")
}
