// SPDX-License-Identifier: MIT

// Package middleware provides the HTTP ingress middleware of the viewer.
package middleware

import (
	"github.com/go-chi/chi/v5"
)

// Options selects the optional parts of the viewer's middleware chain.
type Options struct {
	CSP       string // DefaultCSP when empty
	Tracing   bool
	RateLimit int // requests per minute per client IP, 0 disables
}

// NewRouter returns a chi router with the viewer's middleware installed,
// outermost first. Panics are caught before anything else runs; the request
// ID exists before the access log needs it; rejected requests are still
// observed.
func NewRouter(opts Options) *chi.Mux {
	r := chi.NewRouter()
	r.Use(Recoverer, RequestID, SecurityHeaders(opts.CSP), Observe(opts.Tracing))
	if opts.RateLimit > 0 {
		r.Use(RateLimit(opts.RateLimit))
	}
	return r
}
