// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/ManuGH/ionoview/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

// V1BaseURL is the prefix of the JSON endpoints.
const V1BaseURL = "/api/v1"

// Handler returns the HTTP handler with all routes and the middleware stack.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := s.newRouter()
	s.registerPublicRoutes(r)
	s.registerV1Routes(r)
	return r
}

func (s *Server) newRouter() chi.Router {
	cfg := s.cfg.Current()
	opts := middleware.Options{
		CSP:     middleware.DefaultCSP,
		Tracing: cfg.Telemetry.Enabled,
	}
	if cfg.RateLimit.Enabled {
		opts.RateLimit = cfg.RateLimit.RequestsPerMinute
	}
	return middleware.NewRouter(opts)
}

func (s *Server) registerPublicRoutes(r chi.Router) {
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)

	r.Get("/", s.handleIndex)
	r.Get(s.assetBase+"{file}", s.handleAsset)
	r.Head(s.assetBase+"{file}", s.handleAsset)
	r.Get("/badge.png", s.handleBadge)
}

func (s *Server) registerV1Routes(r chi.Router) {
	r.Route(V1BaseURL, func(r chi.Router) {
		r.Use(middleware.CORS)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/selection", s.handleSelection)
	})
}
