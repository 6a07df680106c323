// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ManuGH/ionoview/internal/catalog"
	"github.com/ManuGH/ionoview/internal/log"
	"github.com/ManuGH/ionoview/internal/metrics"
	"github.com/go-chi/chi/v5"
)

const assetKindGIF = "gif"

// handleAsset serves one catalog file from the data directory. Only names
// that parse as catalog entries are served, and the resolved path must stay
// inside the data directory after following symlinks.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	logger := log.WithComponentFromContext(r.Context(), "api")
	raw := chi.URLParam(r, "file")

	deny := func(status int, reason string) {
		logger.Warn().Str(log.FieldEvent, "file_req.denied").Str(log.FieldPath, r.URL.Path).Str("reason", reason).Msg("asset request denied")
		metrics.RecordAssetRequest(assetKindGIF, reason)
		http.Error(w, http.StatusText(status), status)
	}

	name, ok := assetName(r, raw)
	if !ok {
		deny(http.StatusForbidden, "path_escape")
		return
	}
	if _, ok := catalog.Parse(name); !ok {
		deny(http.StatusNotFound, "not_catalog")
		return
	}

	dataDir := s.cfg.Current().DataDir
	realDataDir, err := filepath.EvalSymlinks(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			deny(http.StatusNotFound, "not_found")
			return
		}
		logger.Error().Err(err).Str(log.FieldEvent, "file_req.internal_error").Str(log.FieldDataDir, dataDir).Msg("could not evaluate symlinks on data dir")
		metrics.RecordAssetRequest(assetKindGIF, "error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	realPath, err := filepath.EvalSymlinks(filepath.Join(realDataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			deny(http.StatusNotFound, "not_found")
			return
		}
		logger.Error().Err(err).Str(log.FieldEvent, "file_req.internal_error").Str(log.FieldFile, name).Msg("could not evaluate symlinks")
		metrics.RecordAssetRequest(assetKindGIF, "error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Use filepath.Rel for robust containment (protects against symlink escapes).
	relPath, err := filepath.Rel(realDataDir, realPath)
	if err != nil || escapesDir(relPath) {
		logger.Warn().
			Str(log.FieldEvent, "file_req.denied").
			Str(log.FieldFile, name).
			Str("resolved_path", realPath).
			Str(log.FieldDataDir, realDataDir).
			Str("reason", "path_escape").
			Msg("path escapes data directory")
		metrics.RecordAssetRequest(assetKindGIF, "path_escape")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	// #nosec G304 -- realPath is validated to reside inside the data directory
	f, err := os.Open(realPath)
	if err != nil {
		deny(http.StatusNotFound, "not_found")
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn().Err(err).Str(log.FieldFile, name).Msg("failed to close file")
		}
	}()

	info, err := f.Stat()
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "file_req.internal_error").Str(log.FieldFile, name).Msg("could not stat opened file")
		metrics.RecordAssetRequest(assetKindGIF, "error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if info.IsDir() {
		deny(http.StatusNotFound, "directory")
		return
	}

	// Weak validator from modtime and size.
	etag := fmt.Sprintf(`W/"%x-%x"`, info.ModTime().UnixNano(), info.Size())
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		metrics.RecordAssetRequest(assetKindGIF, "not_modified")
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/gif")
	logger.Debug().Str(log.FieldEvent, "file_req.allowed").Str(log.FieldFile, name).Msg("serving file")
	metrics.RecordAssetRequest(assetKindGIF, "served")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// assetName returns the file name carried by the {file} URL parameter. chi
// matches against RawPath when the request had one, so the parameter is
// decoded exactly once in that case and used as is otherwise. The result
// must be a single path element.
func assetName(r *http.Request, param string) (string, bool) {
	name := param
	if r.URL.RawPath != "" {
		decoded, err := url.PathUnescape(param)
		if err != nil {
			return "", false
		}
		name = decoded
	}
	if name == "" || strings.ContainsAny(name, "/\\\x00") || name != filepath.Base(name) {
		return "", false
	}
	return name, true
}

func escapesDir(rel string) bool {
	return filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
