// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/ManuGH/ionoview/internal/badge"
	"github.com/ManuGH/ionoview/internal/log"
	"github.com/ManuGH/ionoview/internal/metrics"
)

const assetKindBadge = "badge"

func (s *Server) handleBadge(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")
	cfg := s.cfg.Current()
	if !cfg.Badge.Enabled {
		metrics.RecordAssetRequest(assetKindBadge, "disabled")
		http.NotFound(w, r)
		return
	}

	size, err := badge.ParseSize(r.URL.Query().Get("size"))
	if err != nil {
		metrics.RecordAssetRequest(assetKindBadge, "bad_request")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	v, err := s.badgeStore(cfg.Badge.Path).Get(size)
	if err != nil {
		if errors.Is(err, badge.ErrNotFound) {
			metrics.RecordAssetRequest(assetKindBadge, "not_found")
			http.NotFound(w, r)
			return
		}
		logger.Error().Err(err).Str(log.FieldEvent, "badge.failed").Str(log.FieldPath, cfg.Badge.Path).Msg("could not prepare badge")
		metrics.RecordAssetRequest(assetKindBadge, "error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("ETag", fmt.Sprintf(`W/"%s-%x-%x"`, size, v.ModTime.UnixNano(), len(v.Data)))
	metrics.RecordAssetRequest(assetKindBadge, "served")
	http.ServeContent(w, r, "badge.png", v.ModTime, bytes.NewReader(v.Data))
}

// badgeStore returns the store for path, replacing it when the configured path changed.
func (s *Server) badgeStore(path string) *badge.Store {
	s.badgeMu.Lock()
	defer s.badgeMu.Unlock()
	if s.badges == nil || s.badges.Path() != path {
		s.badges = badge.NewStore(path)
	}
	return s.badges
}
