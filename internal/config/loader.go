// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/ionoview/internal/log"
	"github.com/ManuGH/ionoview/internal/selection"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultDataDir           = "./public/gifs"
	DefaultAssetBase         = "/gifs/"
	DefaultBadgePath         = "./public/badge.png"
	DefaultTitle             = "Ionosphere Forecast Model Explorer"
	DefaultLogLevel          = "info"
	DefaultListenAddr        = ":8088"
	DefaultRequestsPerMinute = 600
	DefaultTelemetryExporter = "grpc"
	DefaultTelemetryEndpoint = "localhost:4317"
)

// Loader merges configuration with precedence ENV > File > Defaults.
type Loader struct {
	configPath string
	version    string
}

// NewLoader creates a loader. An empty configPath means defaults and
// environment only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{configPath: configPath, version: version}
}

// Path returns the configuration file path, if any.
func (l *Loader) Path() string { return l.configPath }

// Load builds and validates the effective configuration.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	cfg.Version = l.version
	cfg.ConfigPath = l.configPath

	if l.configPath != "" {
		fileCfg, err := LoadFile(l.configPath)
		if err != nil {
			return AppConfig{}, fmt.Errorf("load config file: %w", err)
		}
		mergeFile(&cfg, fileCfg)
	}

	mergeEnv(&cfg)

	if err := normalize(&cfg); err != nil {
		return AppConfig{}, err
	}
	if err := Validate(cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:   DefaultDataDir,
		AssetBase: DefaultAssetBase,
		Badge: BadgeConfig{
			Enabled: true,
			Path:    DefaultBadgePath,
		},
		Title:         DefaultTitle,
		SourceLabels:  selection.DefaultLabels(),
		Layout:        LayoutMobile,
		LogLevel:      DefaultLogLevel,
		APIListenAddr: DefaultListenAddr,
		Server: ServerRuntimeConfig{
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			MaxHeaderBytes:  defaultMaxHeaderBytes,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerMinute: DefaultRequestsPerMinute,
		},
		Telemetry: TelemetryConfig{
			Exporter:     DefaultTelemetryExporter,
			Endpoint:     DefaultTelemetryEndpoint,
			SamplingRate: 1.0,
		},
	}
}

// LoadFile parses a YAML configuration file with strict field checking.
func LoadFile(path string) (*FileConfig, error) {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseFile(data)
}

// ParseFile decodes a YAML document. Unknown keys and trailing documents are errors.
func ParseFile(data []byte) (*FileConfig, error) {
	var fileCfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&fileCfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &FileConfig{}, nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("%w: %w", ErrUnknownConfigField, err)
		}
		return nil, fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return &fileCfg, nil
}

func mergeFile(cfg *AppConfig, f *FileConfig) {
	setString(&cfg.DataDir, f.DataDir)
	setString(&cfg.AssetBase, f.AssetBase)
	setString(&cfg.Title, f.Title)
	setString(&cfg.Layout, f.Layout)
	setString(&cfg.LogLevel, f.LogLevel)

	// A label table in the file replaces the built-in one.
	if f.SourceLabels != nil {
		cfg.SourceLabels = selection.Labels(f.SourceLabels).Clone()
	}

	if b := f.Badge; b != nil {
		setValue(&cfg.Badge.Enabled, b.Enabled)
		setString(&cfg.Badge.Path, b.Path)
	}
	if f.API != nil {
		setString(&cfg.APIListenAddr, f.API.ListenAddr)
	}
	if f.Metrics != nil {
		setString(&cfg.MetricsListenAddr, f.Metrics.ListenAddr)
	}
	if s := f.Server; s != nil {
		setValue(&cfg.Server.ReadTimeout, s.ReadTimeout)
		setValue(&cfg.Server.WriteTimeout, s.WriteTimeout)
		setValue(&cfg.Server.IdleTimeout, s.IdleTimeout)
		setValue(&cfg.Server.MaxHeaderBytes, s.MaxHeaderBytes)
		setValue(&cfg.Server.ShutdownTimeout, s.ShutdownTimeout)
	}
	if r := f.RateLimit; r != nil {
		setValue(&cfg.RateLimit.Enabled, r.Enabled)
		setValue(&cfg.RateLimit.RequestsPerMinute, r.RequestsPerMinute)
	}
	if t := f.Telemetry; t != nil {
		setValue(&cfg.Telemetry.Enabled, t.Enabled)
		setString(&cfg.Telemetry.Exporter, t.Exporter)
		setString(&cfg.Telemetry.Endpoint, t.Endpoint)
		setValue(&cfg.Telemetry.SamplingRate, t.SamplingRate)
	}
}

func mergeEnv(cfg *AppConfig) {
	cfg.DataDir = ParseString(EnvPrefix+"DATA_DIR", cfg.DataDir)
	cfg.AssetBase = ParseString(EnvPrefix+"ASSET_BASE", cfg.AssetBase)
	cfg.Badge.Enabled = ParseBool(EnvPrefix+"BADGE_ENABLED", cfg.Badge.Enabled)
	cfg.Badge.Path = ParseString(EnvPrefix+"BADGE_PATH", cfg.Badge.Path)
	cfg.Title = ParseString(EnvPrefix+"TITLE", cfg.Title)
	cfg.Layout = ParseString(EnvPrefix+"LAYOUT", cfg.Layout)
	cfg.LogLevel = ParseString(EnvPrefix+"LOG_LEVEL", cfg.LogLevel)
	cfg.APIListenAddr = ParseString(EnvPrefix+"LISTEN", cfg.APIListenAddr)
	cfg.MetricsListenAddr = ParseString(EnvPrefix+"METRICS_LISTEN", cfg.MetricsListenAddr)

	cfg.Server.ReadTimeout = ParseDuration(EnvPrefix+"SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = ParseDuration(EnvPrefix+"SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = ParseDuration(EnvPrefix+"SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.MaxHeaderBytes = ParseInt(EnvPrefix+"SERVER_MAX_HEADER_BYTES", cfg.Server.MaxHeaderBytes)
	cfg.Server.ShutdownTimeout = ParseDuration(EnvPrefix+"SERVER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.RateLimit.Enabled = ParseBool(EnvPrefix+"RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled)
	cfg.RateLimit.RequestsPerMinute = ParseInt(EnvPrefix+"RATE_LIMIT_RPM", cfg.RateLimit.RequestsPerMinute)

	cfg.Telemetry.Enabled = ParseBool(EnvPrefix+"TELEMETRY_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.Exporter = ParseString(EnvPrefix+"TELEMETRY_EXPORTER", cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = ParseString(EnvPrefix+"TELEMETRY_ENDPOINT", cfg.Telemetry.Endpoint)
	cfg.Telemetry.SamplingRate = ParseFloat(EnvPrefix+"TELEMETRY_SAMPLING_RATE", cfg.Telemetry.SamplingRate)

	if raw, ok := os.LookupEnv(EnvPrefix + "SOURCE_LABELS"); ok && strings.TrimSpace(raw) != "" {
		labels, bad := ParseLabels(raw)
		if len(bad) > 0 {
			logger := log.WithComponent("config")
			logger.Warn().
				Strs("pairs", bad).
				Msg("ignoring malformed source label pairs")
		}
		cfg.SourceLabels = labels
	}
}

func normalize(cfg *AppConfig) error {
	cfg.Layout = strings.ToLower(strings.TrimSpace(cfg.Layout))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.Telemetry.Exporter = strings.ToLower(strings.TrimSpace(cfg.Telemetry.Exporter))

	// Labels are sorted byte-wise, so composed and decomposed spellings of the
	// same text must not end up in different places.
	if len(cfg.SourceLabels) > 0 {
		labels := make(map[string]string, len(cfg.SourceLabels))
		for id, label := range cfg.SourceLabels {
			labels[id] = norm.NFC.String(label)
		}
		cfg.SourceLabels = labels
	}

	if cfg.AssetBase != "" && !strings.HasSuffix(cfg.AssetBase, "/") {
		cfg.AssetBase += "/"
	}

	if strings.TrimSpace(cfg.DataDir) != "" {
		abs, err := filepath.Abs(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("resolve dataDir: %w", err)
		}
		cfg.DataDir = abs
	}
	if cfg.Badge.Path != "" {
		abs, err := filepath.Abs(cfg.Badge.Path)
		if err != nil {
			return fmt.Errorf("resolve badge.path: %w", err)
		}
		cfg.Badge.Path = abs
	}
	if cfg.Server.ShutdownTimeout > 0 && cfg.Server.ShutdownTimeout < minShutdownTimeout {
		cfg.Server.ShutdownTimeout = minShutdownTimeout
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil && strings.TrimSpace(*src) != "" {
		*dst = *src
	}
}

func setValue[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
