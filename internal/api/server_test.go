// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/ionoview/internal/catalog"
	"github.com/ManuGH/ionoview/internal/config"
	"github.com/ManuGH/ionoview/internal/health"
)

var gifBytes = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), gifBytes, 0o600))
	}
}

func testConfig(dir string) config.AppConfig {
	cfg := config.Defaults()
	cfg.Version = "test"
	cfg.DataDir = dir
	cfg.Badge.Path = filepath.Join(dir, "badge.png")
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestHandler(t *testing.T, cfg config.AppConfig, opts ...ServerOption) http.Handler {
	t.Helper()
	srv, err := NewStatic(cfg, opts...)
	require.NoError(t, err)
	return srv.Handler()
}

func do(h http.Handler, method, target string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func failingLister() catalog.Lister {
	return catalog.ListerFunc(func(context.Context, string) ([]string, error) {
		return nil, errors.New("permission denied")
	})
}

func TestIndex_RendersSelection(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "TEC_JPLD_Quiet.gif", "TEC_JPLD_Storm.gif", "TEC_IRI_Moderate.gif", "notes.txt")
	h := newTestHandler(t, testConfig(dir))

	rec := do(h, http.MethodGet, "/?source=IRI&state=Storm")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `src="/gifs/TEC_IRI_Moderate.gif"`)
	assert.Contains(t, body, `href="/?source=JPLD&amp;state=Moderate"`)
	assert.Contains(t, body, "Ionosphere Forecast Model Explorer")
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestIndex_EmptyDirectoryShowsPlaceholder(t *testing.T) {
	h := newTestHandler(t, testConfig(t.TempDir()))

	rec := do(h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No matching GIF found")
}

func TestIndex_CatalogUnavailable(t *testing.T) {
	h := newTestHandler(t, testConfig(t.TempDir()), WithLister(failingLister()))

	rec := do(h, http.MethodGet, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `role="alert"`)
}

func TestIndex_SimpleLayout(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "TEC_GNN_Quiet.gif")
	cfg := testConfig(dir)
	cfg.Layout = config.LayoutSimple
	h := newTestHandler(t, cfg)

	rec := do(h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "IonCast GNN")
	assert.NotContains(t, rec.Body.String(), `class="pill`)
}

func TestCatalogEndpoint(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "TEC_JPLD_Quiet.gif", "tec_iri_storm.GIF", "TEC_X_Unknown.gif")
	h := newTestHandler(t, testConfig(dir))

	rec := do(h, http.MethodGet, "/api/v1/catalog", "Origin", "https://example.org")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 2)

	byFile := map[string]CatalogEntry{}
	for _, e := range resp.Entries {
		byFile[e.File] = e
	}
	assert.Equal(t, CatalogEntry{Source: "iri", State: catalog.Storm, File: "tec_iri_storm.GIF", URL: "/gifs/tec_iri_storm.GIF"}, byFile["tec_iri_storm.GIF"])
	assert.Equal(t, "/gifs/TEC_JPLD_Quiet.gif", byFile["TEC_JPLD_Quiet.gif"].URL)
}

func TestCatalogEndpoint_Unavailable(t *testing.T) {
	h := newTestHandler(t, testConfig(t.TempDir()), WithLister(failingLister()))

	rec := do(h, http.MethodGet, "/api/v1/catalog")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"error":"catalog_unavailable"}`, rec.Body.String())
}

func TestSelectionEndpoint(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "TEC_JPLD_Quiet.gif", "TEC_JPLD_Storm.gif", "TEC_IRI_Moderate.gif")
	h := newTestHandler(t, testConfig(dir))

	rec := do(h, http.MethodGet, "/api/v1/selection?source=JPLD&state=Storm")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		SelectedSource string        `json:"selectedSource"`
		SelectedState  string        `json:"selectedState"`
		Match          catalog.Entry `json:"match"`
		Fallback       bool          `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "JPLD", body.SelectedSource)
	assert.Equal(t, "Storm", body.SelectedState)
	assert.Equal(t, "TEC_JPLD_Storm.gif", body.Match.File)
	assert.False(t, body.Fallback)

	rec = do(h, http.MethodGet, "/api/v1/selection?source=NOPE&state=storm")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "JPLD", body.SelectedSource)
	assert.Equal(t, "Quiet", body.SelectedState)
	assert.True(t, body.Fallback)
}

func TestAsset_ServesCatalogFile(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "TEC_JPLD_Quiet.gif")
	h := newTestHandler(t, testConfig(dir))

	rec := do(h, http.MethodGet, "/gifs/TEC_JPLD_Quiet.gif")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))
	assert.Equal(t, gifBytes, rec.Body.Bytes())

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	rec = do(h, http.MethodGet, "/gifs/TEC_JPLD_Quiet.gif", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestAsset_Denied(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "TEC_JPLD_Quiet.gif", "secret.gif")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "TEC_DIR_Quiet.gif"), 0o750))
	h := newTestHandler(t, testConfig(dir))

	tests := []struct {
		path string
		want int
	}{
		{"/gifs/secret.gif", http.StatusNotFound},
		{"/gifs/TEC_JPLD_Moderate.gif", http.StatusNotFound},
		{"/gifs/TEC_DIR_Quiet.gif", http.StatusNotFound},
		{"/gifs/..%2fTEC_JPLD_Quiet.gif", http.StatusForbidden},
		{"/gifs/%252e%252e%252fTEC_JPLD_Quiet.gif", http.StatusNotFound},
		{"/gifs/TEC_JPLD%5cQuiet.gif", http.StatusForbidden},
		{"/gifs/TEC_JPLD_Quiet.gif%00", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, do(h, http.MethodGet, tt.path).Code)
		})
	}
}

func TestAsset_EveryCatalogURLIsServed(t *testing.T) {
	dir := t.TempDir()
	names := []string{"TEC_50%_Quiet.gif", "TEC_v1..2_Moderate.gif", "TEC_%41_Storm.gif", "TEC_A_Storm.gif", "TEC_a b_Quiet.gif"}
	writeFiles(t, dir, names...)
	// Same name as the decoded form of TEC_%41_Storm.gif, different content.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "TEC_A_Storm.gif"), []byte("GIF89a-A"), 0o600))
	h := newTestHandler(t, testConfig(dir))

	rec := do(h, http.MethodGet, "/api/v1/catalog")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp CatalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, len(names))

	for _, e := range resp.Entries {
		t.Run(e.File, func(t *testing.T) {
			rec := do(h, http.MethodGet, e.URL)
			require.Equal(t, http.StatusOK, rec.Code, e.URL)
			want, err := os.ReadFile(filepath.Join(dir, e.File))
			require.NoError(t, err)
			assert.Equal(t, want, rec.Body.Bytes())
		})
	}
}

func TestAsset_SymlinkEscape(t *testing.T) {
	outside := t.TempDir()
	writeFiles(t, outside, "TEC_EVIL_Storm.gif")
	dir := t.TempDir()
	if err := os.Symlink(filepath.Join(outside, "TEC_EVIL_Storm.gif"), filepath.Join(dir, "TEC_EVIL_Storm.gif")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	h := newTestHandler(t, testConfig(dir))

	assert.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "/gifs/TEC_EVIL_Storm.gif").Code)
}

func TestBadge_Sizes(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 600, 300))))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "badge.png"), buf.Bytes(), 0o600))
	h := newTestHandler(t, testConfig(dir))

	for size, wantW := range map[string]int{"small": 150, "large": 400} {
		rec := do(h, http.MethodGet, "/badge.png?size="+size)
		require.Equal(t, http.StatusOK, rec.Code, size)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		img, err := png.Decode(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, wantW, img.Bounds().Dx())
	}

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/badge.png?size=huge").Code)
}

func TestBadge_MissingOrDisabled(t *testing.T) {
	cfg := testConfig(t.TempDir())
	h := newTestHandler(t, cfg)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/badge.png").Code)

	cfg.Badge.Enabled = false
	h = newTestHandler(t, cfg)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/badge.png").Code)
	assert.NotContains(t, do(h, http.MethodGet, "/").Body.String(), "Show badge large")
}

func TestHealthEndpoints(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "TEC_JPLD_Quiet.gif")
	h := newTestHandler(t, testConfig(dir))

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/healthz").Code)

	// No badge.png in dir: ready, but degraded.
	rec := do(h, http.MethodGet, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep health.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, health.StatusDegraded, rep.Status)
	assert.Equal(t, 1, rep.Catalog.Entries)
	assert.Equal(t, []string{"JPLD"}, rep.Catalog.Sources)
	require.NotNil(t, rep.Badge)
	assert.Equal(t, health.StatusDegraded, rep.Badge.Status)

	broken := newTestHandler(t, testConfig(dir), WithLister(failingLister()))
	assert.Equal(t, http.StatusOK, do(broken, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(broken, http.MethodGet, "/readyz").Code)
}

type swapConfig struct{ cfg config.AppConfig }

func (s *swapConfig) Current() config.AppConfig { return s.cfg }

func TestServer_ReadsConfigPerRequest(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "TEC_JPLD_Quiet.gif")
	src := &swapConfig{cfg: testConfig(dir)}
	srv, err := New(src)
	require.NoError(t, err)
	h := srv.Handler()

	assert.Contains(t, do(h, http.MethodGet, "/").Body.String(), "Ground Truth: JPLD")

	src.cfg.SourceLabels = map[string]string{"JPLD": "JPL Data"}
	src.cfg.Title = "Renamed"
	body := do(h, http.MethodGet, "/").Body.String()
	assert.Contains(t, body, "JPL Data")
	assert.Contains(t, body, "<title>Renamed</title>")
}
