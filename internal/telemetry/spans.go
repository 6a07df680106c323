// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Instrumentation scopes.
const (
	ScopeHTTP      = "ionoview/http"
	scopeCatalog   = "ionoview/catalog"
	scopeSelection = "ionoview/selection"
)

// Span attribute keys.
const (
	KeyCatalogDir       = attribute.Key("catalog.dir")
	KeyCatalogFiles     = attribute.Key("catalog.files")
	KeyCatalogEntries   = attribute.Key("catalog.entries")
	KeySelectionSource  = attribute.Key("selection.source")
	KeySelectionState   = attribute.Key("selection.state")
	KeySelectionOutcome = attribute.Key("selection.outcome")
	KeyHTTPRoute        = attribute.Key("http.route")
	KeyErrorCode        = attribute.Key("error.code")
)

// Tracers are looked up per call so a provider installed by Setup after
// package init is picked up.

// StartCatalogScan opens the span around one listing of dir.
func StartCatalogScan(ctx context.Context, dir string) (context.Context, trace.Span) {
	return otel.Tracer(scopeCatalog).Start(ctx, "catalog.scan",
		trace.WithAttributes(KeyCatalogDir.String(dir)))
}

// EndCatalogScan records the result of the scan and ends span. On error the
// counts are left off.
func EndCatalogScan(span trace.Span, files, entries int, err error) {
	defer span.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog unavailable")
		return
	}
	span.SetAttributes(KeyCatalogFiles.Int(files), KeyCatalogEntries.Int(entries))
}

// StartResolve opens the span around one selection.
func StartResolve(ctx context.Context) (context.Context, trace.Span) {
	return otel.Tracer(scopeSelection).Start(ctx, "selection.resolve")
}

// EndResolve records what the selection settled on and ends span. Empty
// source and state mean nothing was selected.
func EndResolve(span trace.Span, source, state, outcome string) {
	attrs := []attribute.KeyValue{KeySelectionOutcome.String(outcome)}
	if source != "" {
		attrs = append(attrs, KeySelectionSource.String(source))
	}
	if state != "" {
		attrs = append(attrs, KeySelectionState.String(state))
	}
	span.SetAttributes(attrs...)
	span.End()
}

// NameRequest renames the server span of a routed request after its chi
// pattern and marks 5xx responses as errors.
func NameRequest(span trace.Span, method, route string, status int) {
	span.SetName(method + " " + route)
	span.SetAttributes(KeyHTTPRoute.String(route))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// MarkFailed tags the span in ctx with an API error code.
func MarkFailed(ctx context.Context, code string, err error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(KeyErrorCode.String(code))
	span.RecordError(err)
}
