// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/ionoview/internal/catalog"
)

func scanner(entries []catalog.Entry, err error) CatalogScanner {
	return CatalogScannerFunc(func(context.Context) ([]catalog.Entry, error) {
		return entries, err
	})
}

func entries(names ...string) []catalog.Entry {
	return catalog.Build(names)
}

func badgeLoader(enabled bool, err error) Option {
	return WithBadgeLoader(func(context.Context) (bool, error) { return enabled, err })
}

func TestManager_Check(t *testing.T) {
	errList := &catalog.UnavailableError{Dir: "/srv/gifs", Err: errors.New("permission denied")}

	tests := []struct {
		name        string
		scanner     CatalogScanner
		opts        []Option
		wantStatus  Status
		wantReady   bool
		wantEntries int
		wantBadge   *BadgeReport
	}{
		{
			name:        "catalog with entries",
			scanner:     scanner(entries("TEC_JPLD_Quiet.gif", "TEC_IRI_Storm.gif", "TEC_JPLD_Storm.gif"), nil),
			wantStatus:  StatusHealthy,
			wantReady:   true,
			wantEntries: 3,
		},
		{
			name:       "empty directory still serves placeholder",
			scanner:    scanner(nil, nil),
			wantStatus: StatusDegraded,
			wantReady:  true,
		},
		{
			name:       "unlistable directory",
			scanner:    scanner(nil, errList),
			wantStatus: StatusUnhealthy,
			wantReady:  false,
		},
		{
			name:        "broken badge degrades",
			scanner:     scanner(entries("TEC_JPLD_Quiet.gif"), nil),
			opts:        []Option{badgeLoader(true, errors.New("not a PNG"))},
			wantStatus:  StatusDegraded,
			wantReady:   true,
			wantEntries: 1,
			wantBadge:   &BadgeReport{Status: StatusDegraded, Error: "not a PNG"},
		},
		{
			name:        "disabled badge is left out",
			scanner:     scanner(entries("TEC_JPLD_Quiet.gif"), nil),
			opts:        []Option{badgeLoader(false, errors.New("ignored"))},
			wantStatus:  StatusHealthy,
			wantReady:   true,
			wantEntries: 1,
		},
		{
			name:       "unavailable catalog outranks badge",
			scanner:    scanner(nil, errList),
			opts:       []Option{badgeLoader(true, nil)},
			wantStatus: StatusUnhealthy,
			wantReady:  false,
			wantBadge:  &BadgeReport{Status: StatusHealthy},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := NewManager("v0.1.0", tt.scanner, tt.opts...).Check(context.Background())
			assert.Equal(t, tt.wantStatus, rep.Status)
			assert.Equal(t, tt.wantReady, rep.Ready)
			assert.Equal(t, tt.wantEntries, rep.Catalog.Entries)
			assert.Equal(t, tt.wantBadge, rep.Badge)
			assert.Equal(t, "v0.1.0", rep.Version)
		})
	}
}

func TestManager_Check_ListsDistinctSources(t *testing.T) {
	m := NewManager("", scanner(entries("TEC_JPLD_Quiet.gif", "TEC_IRI_Storm.gif", "TEC_JPLD_Storm.gif"), nil))
	assert.Equal(t, []string{"IRI", "JPLD"}, m.Check(context.Background()).Catalog.Sources)
}

func TestManager_Check_CarriesScanError(t *testing.T) {
	err := &catalog.UnavailableError{Dir: "/srv/gifs", Err: errors.New("no such file or directory")}
	rep := NewManager("", scanner(nil, err)).Check(context.Background())
	assert.Contains(t, rep.Catalog.Error, "/srv/gifs")
	assert.Empty(t, rep.Catalog.Sources)
}

func TestManager_ServeHealth(t *testing.T) {
	m := NewManager("v0.1.0", scanner(nil, errors.New("gone")))

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code, "liveness ignores the catalog")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var live Liveness
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &live))
	assert.Equal(t, StatusHealthy, live.Status)
	assert.NotContains(t, rec.Body.String(), "catalog")

	rec = httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rep Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, StatusUnhealthy, rep.Status)
	assert.Equal(t, "gone", rep.Catalog.Error)
}

func TestManager_ServeReady(t *testing.T) {
	tests := []struct {
		name string
		scan CatalogScanner
		want int
	}{
		{"ready", scanner(entries("TEC_JPLD_Quiet.gif"), nil), http.StatusOK},
		{"empty", scanner(nil, nil), http.StatusOK},
		{"unavailable", scanner(nil, errors.New("gone")), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewManager("", tt.scan).ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

			var rep Report
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
			assert.Equal(t, tt.want == http.StatusOK, rep.Ready)
		})
	}
}

func TestManager_ScansOnEveryCheck(t *testing.T) {
	calls := 0
	m := NewManager("", CatalogScannerFunc(func(context.Context) ([]catalog.Entry, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("not mounted yet")
		}
		return entries("TEC_JPLD_Quiet.gif"), nil
	}))

	assert.False(t, m.Check(context.Background()).Ready)
	assert.True(t, m.Check(context.Background()).Ready, "readiness recovers once the directory appears")
}
