// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import "regexp"

// filePattern matches TEC_<SOURCE>_<STATE>.gif. The source may not contain an
// underscore; everything but the captured source is case-insensitive.
var filePattern = regexp.MustCompile(`(?i)^TEC_([^_]+)_(Quiet|Moderate|Storm)\.gif$`)

// Parse turns a file name into an Entry. Names that do not follow the
// pattern report false; that is not an error.
func Parse(name string) (Entry, bool) {
	m := filePattern.FindStringSubmatch(name)
	if m == nil {
		return Entry{}, false
	}
	st, ok := ParseState(m[2])
	if !ok {
		return Entry{}, false
	}
	return Entry{Source: m[1], State: st, File: name}, true
}

// FileName builds the canonical file name for a source and state.
func FileName(source string, st State) string {
	return "TEC_" + source + "_" + string(st) + ".gif"
}
