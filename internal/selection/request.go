// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package selection

import "net/url"

// Query parameter names.
const (
	ParamSource = "source"
	ParamState  = "state"
)

// Request is the raw, already normalized user input. Empty means absent.
type Request struct {
	Source string
	State  string
}

// FirstValue returns the first of a possibly repeated parameter. Extra values
// are ignored; no values yields "".
func FirstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// RequestFromQuery normalizes query parameters into a Request.
func RequestFromQuery(q url.Values) Request {
	return Request{
		Source: FirstValue(q[ParamSource]),
		State:  FirstValue(q[ParamState]),
	}
}
