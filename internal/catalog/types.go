// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package catalog discovers forecast animations on disk and turns their file
// names into typed entries.
package catalog

import "strings"

// State is the intensity level an animation is tagged with.
type State string

const (
	Quiet    State = "Quiet"
	Moderate State = "Moderate"
	Storm    State = "Storm"
)

// NoState marks the absence of a resolvable state.
const NoState State = ""

// States returns the closed set of states in display order.
func States() []State {
	return []State{Quiet, Moderate, Storm}
}

// ParseState canonicalizes s case-insensitively. Used for file names, where
// the state word may appear in any casing.
func ParseState(s string) (State, bool) {
	for _, st := range States() {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return NoState, false
}

// LookupState accepts only the canonical literal. Query values go through
// this, so "storm" is treated like any other unknown value.
func LookupState(s string) (State, bool) {
	for _, st := range States() {
		if s == string(st) {
			return st, true
		}
	}
	return NoState, false
}

func (s State) String() string { return string(s) }

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	_, ok := LookupState(string(s))
	return ok
}

// Entry is one discovered animation file.
type Entry struct {
	Source string `json:"source"`
	State  State  `json:"state"`
	File   string `json:"file"`
}
