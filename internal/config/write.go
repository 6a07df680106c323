// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ManuGH/ionoview/internal/selection"
	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// ErrConfigExists is returned by WriteDefaultFile when the target exists and
// overwriting was not requested.
var ErrConfigExists = errors.New("config file already exists")

// ToFileConfig converts a runtime configuration into its YAML form.
func ToFileConfig(cfg AppConfig) FileConfig {
	return FileConfig{
		DataDir:      &cfg.DataDir,
		AssetBase:    &cfg.AssetBase,
		Badge:        &BadgeFileConfig{Enabled: &cfg.Badge.Enabled, Path: &cfg.Badge.Path},
		Title:        &cfg.Title,
		SourceLabels: selection.Labels(cfg.SourceLabels).Clone(),
		Layout:       &cfg.Layout,
		LogLevel:     &cfg.LogLevel,
		API:          &ListenFileConfig{ListenAddr: &cfg.APIListenAddr},
		Metrics:      &ListenFileConfig{ListenAddr: &cfg.MetricsListenAddr},
		Server: &ServerFileConfig{
			ReadTimeout:     &cfg.Server.ReadTimeout,
			WriteTimeout:    &cfg.Server.WriteTimeout,
			IdleTimeout:     &cfg.Server.IdleTimeout,
			MaxHeaderBytes:  &cfg.Server.MaxHeaderBytes,
			ShutdownTimeout: &cfg.Server.ShutdownTimeout,
		},
		RateLimit: &RateLimitFileConfig{
			Enabled:           &cfg.RateLimit.Enabled,
			RequestsPerMinute: &cfg.RateLimit.RequestsPerMinute,
		},
		Telemetry: &TelemetryFileConfig{
			Enabled:      &cfg.Telemetry.Enabled,
			Exporter:     &cfg.Telemetry.Exporter,
			Endpoint:     &cfg.Telemetry.Endpoint,
			SamplingRate: &cfg.Telemetry.SamplingRate,
		},
	}
}

// WriteDefaultFile writes the built-in configuration to path atomically.
func WriteDefaultFile(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	data, err := yaml.Marshal(ToFileConfig(Defaults()))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
