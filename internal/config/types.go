// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Layout names the presentation variant of the viewer page.
const (
	LayoutMobile = "mobile"
	LayoutSimple = "simple"
)

// Layouts returns every supported layout name.
func Layouts() []string {
	return []string{LayoutMobile, LayoutSimple}
}

// AppConfig is the effective runtime configuration after defaults, file and
// environment have been merged.
type AppConfig struct {
	Version    string
	ConfigPath string

	// DataDir is the directory scanned for TEC_<SOURCE>_<STATE>.gif files.
	DataDir string
	// AssetBase is the URL prefix under which files of DataDir are served.
	AssetBase string

	Badge BadgeConfig

	Title        string
	SourceLabels map[string]string
	Layout       string
	LogLevel     string

	APIListenAddr     string
	MetricsListenAddr string

	Server    ServerRuntimeConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
}

// BadgeConfig controls the institutional badge overlay.
type BadgeConfig struct {
	Enabled bool
	Path    string
}

// ServerRuntimeConfig carries HTTP server limits.
type ServerRuntimeConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	MaxHeaderBytes  int
	ShutdownTimeout time.Duration
}

// RateLimitConfig configures the per-client request limiter.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool
	Exporter     string
	Endpoint     string
	SamplingRate float64
}

// FileConfig mirrors the YAML document. Pointer fields distinguish an absent
// key from an explicit zero value.
type FileConfig struct {
	DataDir      *string              `yaml:"dataDir,omitempty"`
	AssetBase    *string              `yaml:"assetBase,omitempty"`
	Badge        *BadgeFileConfig     `yaml:"badge,omitempty"`
	Title        *string              `yaml:"title,omitempty"`
	SourceLabels map[string]string    `yaml:"sourceLabels,omitempty"`
	Layout       *string              `yaml:"layout,omitempty"`
	LogLevel     *string              `yaml:"logLevel,omitempty"`
	API          *ListenFileConfig    `yaml:"api,omitempty"`
	Metrics      *ListenFileConfig    `yaml:"metrics,omitempty"`
	Server       *ServerFileConfig    `yaml:"server,omitempty"`
	RateLimit    *RateLimitFileConfig `yaml:"rateLimit,omitempty"`
	Telemetry    *TelemetryFileConfig `yaml:"telemetry,omitempty"`
}

// BadgeFileConfig is the YAML form of BadgeConfig.
type BadgeFileConfig struct {
	Enabled *bool   `yaml:"enabled,omitempty"`
	Path    *string `yaml:"path,omitempty"`
}

// ListenFileConfig holds a listen address.
type ListenFileConfig struct {
	ListenAddr *string `yaml:"listenAddr,omitempty"`
}

// ServerFileConfig is the YAML form of ServerRuntimeConfig.
type ServerFileConfig struct {
	ReadTimeout     *time.Duration `yaml:"readTimeout,omitempty"`
	WriteTimeout    *time.Duration `yaml:"writeTimeout,omitempty"`
	IdleTimeout     *time.Duration `yaml:"idleTimeout,omitempty"`
	MaxHeaderBytes  *int           `yaml:"maxHeaderBytes,omitempty"`
	ShutdownTimeout *time.Duration `yaml:"shutdownTimeout,omitempty"`
}

// RateLimitFileConfig is the YAML form of RateLimitConfig.
type RateLimitFileConfig struct {
	Enabled           *bool `yaml:"enabled,omitempty"`
	RequestsPerMinute *int  `yaml:"requestsPerMinute,omitempty"`
}

// TelemetryFileConfig is the YAML form of TelemetryConfig.
type TelemetryFileConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	Exporter     *string  `yaml:"exporter,omitempty"`
	Endpoint     *string  `yaml:"endpoint,omitempty"`
	SamplingRate *float64 `yaml:"samplingRate,omitempty"`
}
