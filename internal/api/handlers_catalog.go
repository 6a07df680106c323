// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"net/http"

	"github.com/ManuGH/ionoview/internal/catalog"
	"github.com/ManuGH/ionoview/internal/selection"
	"github.com/ManuGH/ionoview/internal/telemetry"
	"github.com/ManuGH/ionoview/internal/viewer"
)

// CatalogEntry is one entry of the catalog listing.
type CatalogEntry struct {
	Source string        `json:"source"`
	State  catalog.State `json:"state"`
	File   string        `json:"file"`
	URL    string        `json:"url"`
}

// CatalogResponse is the body of GET /api/v1/catalog.
type CatalogResponse struct {
	Entries []CatalogEntry `json:"entries"`
}

// SelectionResponse is the body of GET /api/v1/selection.
type SelectionResponse struct {
	selection.Result
	IsFallback bool `json:"fallback"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.loadCatalog(r.Context())
	if err != nil {
		telemetry.MarkFailed(r.Context(), codeCatalogUnavailable, err)
		writeErrorCode(w, http.StatusServiceUnavailable, codeCatalogUnavailable)
		return
	}

	resp := CatalogResponse{Entries: make([]CatalogEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, CatalogEntry{
			Source: e.Source,
			State:  e.State,
			File:   e.File,
			URL:    viewer.AssetURL(s.assetBase, e),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	entries, err := s.loadCatalog(r.Context())
	if err != nil {
		telemetry.MarkFailed(r.Context(), codeCatalogUnavailable, err)
		writeErrorCode(w, http.StatusServiceUnavailable, codeCatalogUnavailable)
		return
	}

	req := selection.RequestFromQuery(r.URL.Query())
	res := s.resolve(r.Context(), s.cfg.Current(), entries, req)
	writeJSON(w, http.StatusOK, SelectionResponse{Result: res, IsFallback: res.Fallback(req)})
}
