// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package selection resolves a consistent (source, state) pair from a catalog
// and raw user input. Resolution is pure: the same catalog, labels and request
// always produce the same Result.
package selection

import (
	"net/url"
	"slices"
	"strings"

	"github.com/ManuGH/ionoview/internal/catalog"
)

// Link is a navigation target for one selectable option.
type Link struct {
	Source string        `json:"source"`
	State  catalog.State `json:"state,omitempty"`
	Label  string        `json:"label"`
	Href   string        `json:"href"`
	Active bool          `json:"active"`
}

// Result is the full selection context for one request.
type Result struct {
	// Sources holds the distinct sources, sorted by display label.
	Sources []string `json:"sources"`
	// States holds the states present for any source, in display order.
	States []catalog.State `json:"states"`

	DefaultSource string        `json:"defaultSource,omitempty"`
	DefaultState  catalog.State `json:"defaultState,omitempty"`

	// SelectedSource is empty only when the catalog is empty.
	SelectedSource string `json:"selectedSource,omitempty"`
	// RequestedState is the preliminary state before it was constrained to the source.
	RequestedState catalog.State `json:"requestedState,omitempty"`
	// SelectedState is the final state, always one of StatesForSource or NoState.
	SelectedState catalog.State `json:"selectedState,omitempty"`

	// StatesForSource holds the states available for SelectedSource, in display order.
	StatesForSource []catalog.State `json:"statesForSource"`

	// Match is nil when nothing can be shown.
	Match *catalog.Entry `json:"match,omitempty"`

	SourceLinks []Link `json:"sourceLinks"`
	StateLinks  []Link `json:"stateLinks"`
}

// HasMatch reports whether an entry was selected.
func (r Result) HasMatch() bool { return r.Match != nil }

// Resolve computes the selection context for entries and req.
func Resolve(entries []catalog.Entry, labels Labels, req Request) Result {
	sources := distinctSources(entries, labels)
	states := statesWhere(entries, func(catalog.Entry) bool { return true })

	var res Result
	res.Sources = sources
	res.States = states
	if len(sources) > 0 {
		res.DefaultSource = sources[0]
	}
	if len(states) > 0 {
		res.DefaultState = states[0]
	}

	res.SelectedSource = res.DefaultSource
	if req.Source != "" && slices.Contains(sources, req.Source) {
		res.SelectedSource = req.Source
	}

	res.RequestedState = res.DefaultState
	if st, ok := catalog.LookupState(req.State); ok && slices.Contains(states, st) {
		res.RequestedState = st
	}

	selected := res.SelectedSource
	res.StatesForSource = statesWhere(entries, func(e catalog.Entry) bool { return e.Source == selected })

	switch {
	case slices.Contains(res.StatesForSource, res.RequestedState):
		res.SelectedState = res.RequestedState
	case len(res.StatesForSource) > 0:
		res.SelectedState = res.StatesForSource[0]
	default:
		res.SelectedState = catalog.NoState
	}

	for i := range entries {
		if entries[i].Source == res.SelectedSource && entries[i].State == res.SelectedState {
			match := entries[i]
			res.Match = &match
			break
		}
	}

	res.SourceLinks = make([]Link, 0, len(sources))
	for _, src := range sources {
		res.SourceLinks = append(res.SourceLinks, Link{
			Source: src,
			State:  res.SelectedState,
			Label:  labels.Label(src),
			Href:   URLFor(src, res.SelectedState),
			Active: src == res.SelectedSource,
		})
	}
	res.StateLinks = make([]Link, 0, len(res.StatesForSource))
	for _, st := range res.StatesForSource {
		res.StateLinks = append(res.StateLinks, Link{
			Source: res.SelectedSource,
			State:  st,
			Label:  st.String(),
			Href:   URLFor(res.SelectedSource, st),
			Active: st == res.SelectedState,
		})
	}

	return res
}

// Fallback reports whether a supplied parameter was overridden. Absent
// parameters take the default and do not count.
func (r Result) Fallback(req Request) bool {
	return (req.Source != "" && req.Source != r.SelectedSource) ||
		(req.State != "" && req.State != string(r.SelectedState))
}

// URLFor builds the page link for a source and state. A missing state is left out.
func URLFor(source string, st catalog.State) string {
	q := url.Values{}
	q.Set(ParamSource, source)
	if st != catalog.NoState {
		q.Set(ParamState, string(st))
	}
	// url.Values.Encode sorts keys, which keeps source before state.
	return "/?" + q.Encode()
}

// distinctSources returns each source once, ordered by label then identifier.
func distinctSources(entries []catalog.Entry, labels Labels) []string {
	seen := make(map[string]struct{}, len(entries))
	sources := make([]string, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.Source]; ok {
			continue
		}
		seen[e.Source] = struct{}{}
		sources = append(sources, e.Source)
	}
	slices.SortFunc(sources, func(a, b string) int {
		if c := strings.Compare(labels.Label(a), labels.Label(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return sources
}

// statesWhere returns, in display order, the states of entries accepted by keep.
func statesWhere(entries []catalog.Entry, keep func(catalog.Entry) bool) []catalog.State {
	out := make([]catalog.State, 0, 3)
	for _, st := range catalog.States() {
		for _, e := range entries {
			if e.State == st && keep(e) {
				out = append(out, st)
				break
			}
		}
	}
	return out
}
