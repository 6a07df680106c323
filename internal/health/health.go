// SPDX-License-Identifier: MIT

// Package health reports whether ionoview can serve its catalog. Liveness only
// says the process answers; readiness requires a listable media directory.
package health

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/ManuGH/ionoview/internal/catalog"
	"github.com/ManuGH/ionoview/internal/log"
)

// Status is the overall or per-component state.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CatalogScanner lists the catalog currently backing the viewer.
type CatalogScanner interface {
	Load(ctx context.Context) ([]catalog.Entry, error)
}

// CatalogScannerFunc adapts a function to CatalogScanner.
type CatalogScannerFunc func(ctx context.Context) ([]catalog.Entry, error)

func (f CatalogScannerFunc) Load(ctx context.Context) ([]catalog.Entry, error) { return f(ctx) }

// BadgeLoader decodes the badge overlay. enabled=false means the overlay is
// switched off and is left out of the report.
type BadgeLoader func(ctx context.Context) (enabled bool, err error)

// CatalogReport describes the media directory as seen by the last scan.
type CatalogReport struct {
	Status  Status   `json:"status"`
	Entries int      `json:"entries"`
	Sources []string `json:"sources,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// BadgeReport describes the badge overlay.
type BadgeReport struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Report is the body of /healthz?verbose=true and /readyz.
type Report struct {
	Status    Status        `json:"status"`
	Ready     bool          `json:"ready"`
	Version   string        `json:"version,omitempty"`
	Uptime    int64         `json:"uptime_seconds"`
	Timestamp time.Time     `json:"timestamp"`
	Catalog   CatalogReport `json:"catalog"`
	Badge     *BadgeReport  `json:"badge,omitempty"`
}

// Liveness is the body of a plain /healthz.
type Liveness struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    int64     `json:"uptime_seconds"`
	Timestamp time.Time `json:"timestamp"`
}

// Manager builds reports from a catalog scanner and an optional badge loader.
type Manager struct {
	version   string
	startedAt time.Time
	scanner   CatalogScanner
	badge     BadgeLoader
}

// Option configures a Manager.
type Option func(*Manager)

// WithBadgeLoader adds the badge overlay to the report.
func WithBadgeLoader(p BadgeLoader) Option {
	return func(m *Manager) { m.badge = p }
}

// NewManager returns a Manager that scans through scanner on every report.
func NewManager(version string, scanner CatalogScanner, opts ...Option) *Manager {
	m := &Manager{version: version, startedAt: time.Now(), scanner: scanner}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Check scans the catalog and loads the badge.
//
// An unlistable directory makes the service unhealthy and not ready. An empty
// catalog or a broken badge only degrades it: the page still renders, with a
// placeholder or without the overlay.
func (m *Manager) Check(ctx context.Context) Report {
	rep := Report{
		Status:    StatusHealthy,
		Ready:     true,
		Version:   m.version,
		Uptime:    int64(time.Since(m.startedAt).Seconds()),
		Timestamp: time.Now(),
		Catalog:   m.checkCatalog(ctx),
	}

	if m.badge != nil {
		if enabled, err := m.badge(ctx); enabled {
			rep.Badge = &BadgeReport{Status: StatusHealthy}
			if err != nil {
				rep.Badge = &BadgeReport{Status: StatusDegraded, Error: err.Error()}
			}
		}
	}

	switch {
	case rep.Catalog.Status == StatusUnhealthy:
		rep.Status = StatusUnhealthy
		rep.Ready = false
	case rep.Catalog.Status == StatusDegraded, rep.Badge != nil && rep.Badge.Status != StatusHealthy:
		rep.Status = StatusDegraded
	}
	return rep
}

func (m *Manager) checkCatalog(ctx context.Context) CatalogReport {
	entries, err := m.scanner.Load(ctx)
	if err != nil {
		return CatalogReport{Status: StatusUnhealthy, Error: err.Error()}
	}
	if len(entries) == 0 {
		return CatalogReport{Status: StatusDegraded}
	}
	sources := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		sources[e.Source] = struct{}{}
	}
	return CatalogReport{
		Status:  StatusHealthy,
		Entries: len(entries),
		Sources: slices.Sorted(maps.Keys(sources)),
	}
}

// ServeHealth answers liveness checks. It is always 200; ?verbose=true adds
// the full report without changing the status code.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("verbose") == "true" {
		writeJSON(w, r, http.StatusOK, m.Check(r.Context()))
		return
	}
	writeJSON(w, r, http.StatusOK, Liveness{
		Status:    StatusHealthy,
		Version:   m.version,
		Uptime:    int64(time.Since(m.startedAt).Seconds()),
		Timestamp: time.Now(),
	})
}

// ServeReady answers readiness checks: 503 while the catalog is unavailable.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	rep := m.Check(r.Context())
	status := http.StatusOK
	if !rep.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, r, status, rep)

	logger := log.WithComponentFromContext(r.Context(), "health")
	logger.Debug().
		Str(log.FieldEvent, "health.ready_checked").
		Str("status", string(rep.Status)).
		Int(log.FieldEntries, rep.Catalog.Entries).
		Msg("readiness checked")
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := log.WithComponentFromContext(r.Context(), "health")
		logger.Error().Err(err).Str(log.FieldEvent, "health.encode_failed").Msg("failed to encode health response")
	}
}
