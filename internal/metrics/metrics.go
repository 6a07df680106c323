// SPDX-License-Identifier: MIT

// Package metrics exposes the Prometheus collectors of the viewer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Resolution outcome label values.
const (
	ResolutionMatch    = "match"    // requested pair served as asked
	ResolutionFallback = "fallback" // at least one dimension fell back to a default
	ResolutionNoMatch  = "no_match" // nothing to show
)

var (
	catalogScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ionoview_catalog_scans_total",
		Help: "Total number of media directory scans by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	catalogEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ionoview_catalog_entries",
		Help: "Number of catalog entries found by the last successful scan",
	})

	catalogScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ionoview_catalog_scan_duration_seconds",
		Help:    "Duration of media directory scans",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ionoview_selection_resolutions_total",
		Help: "Selection resolutions by outcome",
	}, []string{"outcome"}) // outcome=match|fallback|no_match

	assetRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ionoview_asset_requests_total",
		Help: "Asset requests by kind and result",
	}, []string{"kind", "result"}) // kind=gif|badge

	configReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ionoview_config_reloads_total",
		Help: "Configuration reload attempts by outcome",
	}, []string{"outcome"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ionoview_http_request_duration_seconds",
		Help:    "Viewer request latency by route",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
	}, []string{"method", "route", "status"})

	httpResponseBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ionoview_http_response_bytes",
		Help:    "Viewer response sizes by route; GIF frames dominate the upper buckets",
		Buckets: prometheus.ExponentialBuckets(256, 8, 7),
	}, []string{"route"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ionoview_http_requests_in_flight",
		Help: "Viewer requests currently being served",
	})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ionoview_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})
)

// RecordCatalogScan records one directory scan. The entry gauge only moves on success.
func RecordCatalogScan(outcome string, entries int, d time.Duration) {
	catalogScansTotal.WithLabelValues(outcome).Inc()
	catalogScanDuration.Observe(d.Seconds())
	if outcome == OutcomeSuccess {
		catalogEntries.Set(float64(entries))
	}
}

// RecordResolution records the outcome of one selection resolution.
func RecordResolution(outcome string) {
	resolutionsTotal.WithLabelValues(outcome).Inc()
}

// RecordAssetRequest records a served or denied asset request.
func RecordAssetRequest(kind, result string) {
	assetRequestsTotal.WithLabelValues(kind, result).Inc()
}

// RecordConfigReload records a configuration reload attempt.
func RecordConfigReload(outcome string) {
	configReloadsTotal.WithLabelValues(outcome).Inc()
}

// TrackInFlight marks a request as started and returns the function that
// marks it done.
func TrackInFlight() (done func()) {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// RecordHTTPRequest records one finished request under its route pattern.
// Empty bodies are not observed.
func RecordHTTPRequest(method, route string, status, bytes int, d time.Duration) {
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
	if bytes > 0 {
		httpResponseBytes.WithLabelValues(route).Observe(float64(bytes))
	}
}

// RecordRateLimited records a request rejected by the rate limiter.
func RecordRateLimited() {
	rateLimitedTotal.Inc()
}
