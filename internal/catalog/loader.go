// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/ionoview/internal/log"
	"github.com/ManuGH/ionoview/internal/metrics"
	"github.com/ManuGH/ionoview/internal/telemetry"
)

// unavailableLog throttles the error log of a failing directory, which
// would otherwise repeat on every request.
var unavailableLog = rate.Sometimes{First: 1, Interval: 30 * time.Second}

// Loader scans one directory. It keeps no state between calls: every Load
// lists the directory again and builds a fresh slice.
type Loader struct {
	dir    string
	lister Lister
	logger zerolog.Logger
}

// NewLoader returns a Loader for dir. A nil lister means the local filesystem.
func NewLoader(dir string, lister Lister) *Loader {
	if lister == nil {
		lister = OSLister{}
	}
	return &Loader{
		dir:    dir,
		lister: lister,
		logger: log.WithComponent("catalog"),
	}
}

// Dir returns the scanned directory.
func (l *Loader) Dir() string { return l.dir }

// Load lists the directory and returns every file that matches the naming
// pattern, in listing order. Non-matching names are dropped silently. A
// listing failure is returned as an *UnavailableError.
func (l *Loader) Load(ctx context.Context) ([]Entry, error) {
	ctx, span := telemetry.StartCatalogScan(ctx, l.dir)

	start := time.Now()
	names, err := l.lister.List(ctx, l.dir)
	if err != nil {
		uerr := &UnavailableError{Dir: l.dir, Err: err}
		telemetry.EndCatalogScan(span, 0, 0, uerr)
		metrics.RecordCatalogScan(metrics.OutcomeFailure, 0, time.Since(start))
		logger := log.WithContext(ctx, l.logger)
		unavailableLog.Do(func() {
			logger.Error().
				Err(err).
				Str(log.FieldEvent, "catalog.unavailable").
				Str(log.FieldDataDir, l.dir).
				Msg("cannot list media directory")
		})
		return nil, uerr
	}

	entries := Build(names)

	telemetry.EndCatalogScan(span, len(names), len(entries), nil)
	metrics.RecordCatalogScan(metrics.OutcomeSuccess, len(entries), time.Since(start))
	logger := log.WithContext(ctx, l.logger)
	logger.Debug().
		Str(log.FieldEvent, "catalog.scanned").
		Str(log.FieldDataDir, l.dir).
		Int("files", len(names)).
		Int(log.FieldEntries, len(entries)).
		Msg("media directory scanned")

	return entries, nil
}

// Build parses a list of file names into entries, keeping listing order.
func Build(names []string) []Entry {
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		if e, ok := Parse(name); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// Load is a convenience wrapper for a single scan of dir.
func Load(ctx context.Context, lister Lister, dir string) ([]Entry, error) {
	return NewLoader(dir, lister).Load(ctx)
}
