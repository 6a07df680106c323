// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"fmt"

	"github.com/ManuGH/ionoview/internal/badge"
	"github.com/ManuGH/ionoview/internal/catalog"
	"github.com/ManuGH/ionoview/internal/config"
	"github.com/ManuGH/ionoview/internal/health"
	"github.com/ManuGH/ionoview/internal/viewer"
)

// New creates an API server reading its configuration from src on every request.
func New(src ConfigSource, opts ...ServerOption) (*Server, error) {
	if src == nil {
		return nil, fmt.Errorf("config source is required")
	}
	renderer, err := viewer.NewRenderer()
	if err != nil {
		return nil, err
	}

	cfg := src.Current()
	s := &Server{
		cfg:       src,
		lister:    catalog.OSLister{},
		renderer:  renderer,
		assetBase: cfg.AssetBase,
	}
	if s.assetBase == "" {
		s.assetBase = config.DefaultAssetBase
	}
	for _, opt := range opts {
		opt(s)
	}

	s.health = health.NewManager(cfg.Version,
		health.CatalogScannerFunc(s.loadCatalog),
		health.WithBadgeLoader(s.loadBadge))
	return s, nil
}

// NewStatic creates a server for a fixed configuration.
func NewStatic(cfg config.AppConfig, opts ...ServerOption) (*Server, error) {
	return New(staticConfig(cfg), opts...)
}

// loadBadge decodes the small badge variant of the active configuration, so
// readiness notices a missing or corrupt image before a page does.
func (s *Server) loadBadge(_ context.Context) (bool, error) {
	cfg := s.cfg.Current()
	if !cfg.Badge.Enabled {
		return false, nil
	}
	_, err := s.badgeStore(cfg.Badge.Path).Get(badge.Small)
	return true, err
}

// loadCatalog scans the data directory of the active configuration.
func (s *Server) loadCatalog(ctx context.Context) ([]catalog.Entry, error) {
	return catalog.NewLoader(s.cfg.Current().DataDir, s.lister).Load(ctx)
}
