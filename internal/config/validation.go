// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// FieldError is one rejected configuration value, keyed by its YAML path.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Msg }

type checks []error

func (c *checks) fail(field, format string, args ...any) {
	*c = append(*c, &FieldError{Field: field, Msg: fmt.Sprintf(format, args...)})
}

func (c *checks) notBlank(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.fail(field, "must not be empty")
	}
}

func (c *checks) oneOf(field, value string, allowed []string) {
	if !slices.Contains(allowed, value) {
		c.fail(field, "must be one of %v, got %q", allowed, value)
	}
}

// listenAddr accepts "host:port" with an empty host and port 0.
func (c *checks) listenAddr(field, addr string) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		c.fail(field, "%v", err)
		return
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		c.fail(field, "invalid port %q", port)
	}
}

// Validate checks the semantic rules of a merged configuration. Every failure
// is reported at once as a *FieldError, joined and wrapped in ErrInvalidConfig.
func Validate(cfg AppConfig) error {
	var c checks

	c.notBlank("dataDir", cfg.DataDir)
	if !strings.HasPrefix(cfg.AssetBase, "/") {
		c.fail("assetBase", "must start with /, got %q", cfg.AssetBase)
	}
	c.oneOf("layout", cfg.Layout, Layouts())
	if cfg.LogLevel != "" {
		c.oneOf("logLevel", cfg.LogLevel, logLevels)
	}
	if cfg.Badge.Enabled {
		c.notBlank("badge.path", cfg.Badge.Path)
	}
	for source := range cfg.SourceLabels {
		// Identifiers come from file names, which use '_' as separator.
		if strings.TrimSpace(source) == "" || strings.Contains(source, "_") {
			c.fail("sourceLabels", "invalid source identifier %q", source)
		}
	}

	c.listenAddr("api.listenAddr", cfg.APIListenAddr)
	if cfg.MetricsListenAddr != "" {
		c.listenAddr("metrics.listenAddr", cfg.MetricsListenAddr)
	}
	if cfg.Server.MaxHeaderBytes < 0 {
		c.fail("server.maxHeaderBytes", "must not be negative")
	}
	if cfg.Server.WriteTimeout < 0 {
		c.fail("server.writeTimeout", "must not be negative")
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.RequestsPerMinute <= 0 {
		c.fail("rateLimit.requestsPerMinute", "must be positive, got %d", cfg.RateLimit.RequestsPerMinute)
	}

	if r := cfg.Telemetry.SamplingRate; r < 0 || r > 1 {
		c.fail("telemetry.samplingRate", "must be within [0, 1], got %g", r)
	}
	if cfg.Telemetry.Enabled {
		c.oneOf("telemetry.exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		c.notBlank("telemetry.endpoint", cfg.Telemetry.Endpoint)
	}

	if len(c) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(c...))
}
