// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/ionoview/internal/log"
	"github.com/ManuGH/ionoview/internal/metrics"
	"github.com/ManuGH/ionoview/internal/telemetry"
)

// Observe records every request once: Prometheus latency and size under the
// chi route pattern, one access log line, and with tracing on a server span
// renamed to the route. Health endpoints are never traced.
func Observe(tracing bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := http.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			done := metrics.TrackInFlight()
			defer done()

			rec := &recorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := routeLabel(r)
			elapsed := time.Since(start)
			metrics.RecordHTTPRequest(r.Method, route, rec.status, rec.bytes, elapsed)
			if tracing {
				telemetry.NameRequest(trace.SpanFromContext(r.Context()), r.Method, route, rec.status)
			}
			accessLog(r, route, rec, elapsed)
		}))
		if !tracing {
			return h
		}
		return otelhttp.NewHandler(h, telemetry.ScopeHTTP,
			otelhttp.WithFilter(traced),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
}

func traced(r *http.Request) bool {
	return r.URL.Path != "/healthz" && r.URL.Path != "/readyz"
}

func accessLog(r *http.Request, route string, rec *recorder, elapsed time.Duration) {
	logger := log.WithComponentFromContext(r.Context(), "http")
	evt := logger.Info()
	switch {
	case rec.status >= http.StatusInternalServerError:
		evt = logger.Error()
	case rec.status >= http.StatusBadRequest:
		evt = logger.Warn()
	}
	evt.Str(log.FieldEvent, "http.request").
		Str(log.FieldMethod, r.Method).
		Str(log.FieldPath, r.URL.Path).
		Str(log.FieldRoute, route).
		Int(log.FieldStatus, rec.status).
		Int(log.FieldBytes, rec.bytes).
		Int64(log.FieldDurationMS, elapsed.Milliseconds()).
		Str(log.FieldRemoteAddr, r.RemoteAddr).
		Msg("request handled")
}

// routeLabel keeps metric cardinality bounded: file names never become labels.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// recorder captures the status and body size of a response.
type recorder struct {
	http.ResponseWriter
	status  int
	bytes   int
	written bool
}

func (rw *recorder) WriteHeader(code int) {
	if !rw.written {
		rw.status = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *recorder) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
