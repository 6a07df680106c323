// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/ManuGH/ionoview/internal/catalog"
	"github.com/ManuGH/ionoview/internal/config"
	"github.com/ManuGH/ionoview/internal/log"
	"github.com/ManuGH/ionoview/internal/metrics"
	"github.com/ManuGH/ionoview/internal/selection"
	"github.com/ManuGH/ionoview/internal/telemetry"
	"github.com/ManuGH/ionoview/internal/viewer"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg.Current()
	opts := viewer.Options{
		Title:        cfg.Title,
		Layout:       cfg.Layout,
		AssetBase:    s.assetBase,
		BadgeEnabled: cfg.Badge.Enabled,
	}

	entries, err := s.loadCatalog(r.Context())
	if err != nil {
		telemetry.MarkFailed(r.Context(), codeCatalogUnavailable, err)
		s.writePage(w, r, http.StatusServiceUnavailable, viewer.UnavailablePage(opts))
		return
	}

	res := s.resolve(r.Context(), cfg, entries, selection.RequestFromQuery(r.URL.Query()))
	s.writePage(w, r, http.StatusOK, viewer.NewPage(res, opts))
}

// resolve runs the selection inside a span and records its outcome.
func (s *Server) resolve(ctx context.Context, cfg config.AppConfig, entries []catalog.Entry, req selection.Request) selection.Result {
	ctx, span := telemetry.StartResolve(ctx)

	res := selection.Resolve(entries, selection.Labels(cfg.SourceLabels), req)
	outcome := resolutionOutcome(res, req)

	telemetry.EndResolve(span, res.SelectedSource, string(res.SelectedState), outcome)
	metrics.RecordResolution(outcome)
	logger := log.WithComponentFromContext(ctx, "selection")
	logger.Debug().
		Str(log.FieldEvent, "selection.resolved").
		Str(log.FieldSource, res.SelectedSource).
		Str(log.FieldState, string(res.SelectedState)).
		Str("outcome", outcome).
		Msg("selection resolved")
	return res
}

func resolutionOutcome(res selection.Result, req selection.Request) string {
	switch {
	case !res.HasMatch():
		return metrics.ResolutionNoMatch
	case res.Fallback(req):
		return metrics.ResolutionFallback
	default:
		return metrics.ResolutionMatch
	}
}

func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, page viewer.Page) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, page); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "page.render_failed").
			Str("layout", page.Layout).
			Msg("failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
