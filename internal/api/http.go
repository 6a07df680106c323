// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api provides the HTTP surface of ionoview: the explorer page, the
// media file server, the badge variants and the JSON catalog endpoints.
package api

import (
	"sync"

	"github.com/ManuGH/ionoview/internal/badge"
	"github.com/ManuGH/ionoview/internal/catalog"
	"github.com/ManuGH/ionoview/internal/config"
	"github.com/ManuGH/ionoview/internal/health"
	"github.com/ManuGH/ionoview/internal/viewer"
)

// ConfigSource yields the active configuration. Implemented by *config.Holder.
type ConfigSource interface {
	Current() config.AppConfig
}

// staticConfig serves a fixed configuration.
type staticConfig config.AppConfig

func (c staticConfig) Current() config.AppConfig { return config.AppConfig(c) }

// Server represents the HTTP API server for ionoview.
type Server struct {
	cfg      ConfigSource
	lister   catalog.Lister
	renderer *viewer.Renderer
	health   *health.Manager

	// assetBase is fixed at construction because it is also a route prefix.
	assetBase string

	badgeMu sync.Mutex
	badges  *badge.Store
}

// ServerOption allows functional configuration of the Server.
type ServerOption func(*Server)

// WithLister replaces the filesystem lister used for catalog scans.
func WithLister(l catalog.Lister) ServerOption {
	return func(s *Server) {
		s.lister = l
	}
}
